package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"
	EnvEnvFile  = "ENV_FILE"

	EnvJWTSecret    = "JWT_SECRET"
	EnvJWTTTL       = "JWT_TTL"
	EnvOTPTTL       = "OTP_TTL"
	EnvCookieSecure = "COOKIE_SECURE"

	EnvCORSAllowedOrigins = "CORS_ALLOWED_ORIGINS"

	EnvTrustProxyHeaders      = "TRUST_PROXY_HEADERS"
	EnvRateLimitRequests      = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow        = "RATE_LIMIT_WINDOW"
	EnvLoginRateLimitRequests = "LOGIN_RATE_LIMIT_REQUESTS"
	EnvLoginRateLimitWindow   = "LOGIN_RATE_LIMIT_WINDOW"
	EnvOTPRateLimitRequests   = "OTP_RATE_LIMIT_REQUESTS"
	EnvOTPRateLimitWindow     = "OTP_RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvHousekeepingSchedule = "HOUSEKEEPING_SCHEDULE"
	EnvDefaultPhoneRegion   = "DEFAULT_PHONE_REGION"

	EnvKafkaEnabled       = "KAFKA_ENABLED"
	EnvKafkaBrokers       = "KAFKA_BROKERS"
	EnvNotificationsTopic = "NOTIFICATIONS_TOPIC"
	EnvNotifierGroupID    = "NOTIFIER_GROUP_ID"

	EnvSendGridAPIKey    = "SENDGRID_API_KEY"
	EnvSendGridFromEmail = "SENDGRID_FROM_EMAIL"
	EnvSendGridFromName  = "SENDGRID_FROM_NAME"
)
