package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"bookspace/pkg/client"
	"bookspace/pkg/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	ServiceName string

	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	Port string

	JWTSecret    string
	JWTTTL       time.Duration
	OTPTTL       time.Duration
	CookieSecure bool

	CORSAllowedOrigins []string

	// TrustProxyHeaders keys rate limits on X-Forwarded-For instead of the
	// connection address. Enable only behind a proxy that sets the header.
	TrustProxyHeaders bool

	RateLimitRequests      int
	RateLimitWindow        time.Duration
	LoginRateLimitRequests int
	LoginRateLimitWindow   time.Duration
	OTPRateLimitRequests   int
	OTPRateLimitWindow     time.Duration

	RequestTimeout time.Duration
	IdempotencyTTL time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	HousekeepingSchedule string
	DefaultPhoneRegion   string

	KafkaEnabled       bool
	KafkaBrokers       []string
	NotificationsTopic string
	NotifierGroupID    string

	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string

	Log    *logger.Logger
	Client *client.Client
}

func Load(serviceName string) *Config {
	envFile := getEnvStr(EnvEnvFile, DefaultEnvFile)
	envErr := godotenv.Load(envFile)

	cfg := &Config{
		ServiceName: serviceName,

		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		Port: getEnvStr(EnvPort, DefaultPort),

		JWTSecret:    getEnvStr(EnvJWTSecret, ""),
		JWTTTL:       getEnvDuration(EnvJWTTTL, DefaultJWTTTL),
		OTPTTL:       getEnvDuration(EnvOTPTTL, DefaultOTPTTL),
		CookieSecure: getEnvBool(EnvCookieSecure, DefaultCookieSecure),

		CORSAllowedOrigins: getEnvList(EnvCORSAllowedOrigins, DefaultCORSAllowedOrigins),
		TrustProxyHeaders:  getEnvBool(EnvTrustProxyHeaders, DefaultTrustProxyHeaders),

		RateLimitRequests:      getEnvNum(EnvRateLimitRequests, DefaultRateLimitRequests),
		RateLimitWindow:        getEnvDuration(EnvRateLimitWindow, DefaultRateLimitWindow),
		LoginRateLimitRequests: getEnvNum(EnvLoginRateLimitRequests, DefaultLoginRateLimitRequests),
		LoginRateLimitWindow:   getEnvDuration(EnvLoginRateLimitWindow, DefaultLoginRateLimitWindow),
		OTPRateLimitRequests:   getEnvNum(EnvOTPRateLimitRequests, DefaultOTPRateLimitRequests),
		OTPRateLimitWindow:     getEnvDuration(EnvOTPRateLimitWindow, DefaultOTPRateLimitWindow),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		IdempotencyTTL: getEnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		HousekeepingSchedule: getEnvStr(EnvHousekeepingSchedule, DefaultHousekeepingSchedule),
		DefaultPhoneRegion:   strings.ToUpper(getEnvStr(EnvDefaultPhoneRegion, DefaultPhoneRegion)),

		KafkaEnabled:       getEnvBool(EnvKafkaEnabled, DefaultKafkaEnabled),
		KafkaBrokers:       getEnvList(EnvKafkaBrokers, []string{DefaultKafkaBrokers}),
		NotificationsTopic: getEnvStr(EnvNotificationsTopic, DefaultNotificationsTopic),
		NotifierGroupID:    getEnvStr(EnvNotifierGroupID, DefaultNotifierGroupID),

		SendGridAPIKey:    getEnvStr(EnvSendGridAPIKey, ""),
		SendGridFromEmail: getEnvStr(EnvSendGridFromEmail, DefaultSendGridFromEmail),
		SendGridFromName:  getEnvStr(EnvSendGridFromName, DefaultSendGridFromName),

		Log: logger.New(logger.Config{
			Level:     getEnvStr(EnvLogLevel, DefaultLogLevel),
			Format:    logger.JSON,
			AddSource: true,
			Service:   serviceName,
		}),
		Client: client.NewClient(),
	}

	if envErr != nil {
		cfg.Log.Debug("No env file loaded, using process environment", "env_file", envFile)
	}

	err := cfg.Validate()
	if err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

func (cfg *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if cfg.MongoURI == "" {
		errors = append(errors, "MongoURI cannot be empty")
	} else if len(cfg.MongoURI) < 10 || !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
		errors = append(errors, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", redactMongoURI(cfg.MongoURI)))
	}

	if cfg.MongoDatabaseName == "" {
		errors = append(errors, "MongoDatabaseName cannot be empty")
	}

	if cfg.ServiceName == APIServiceName && len(cfg.JWTSecret) < 32 {
		errors = append(errors, fmt.Sprintf("JWTSecret must be at least 32 characters, got: %d", len(cfg.JWTSecret)))
	}

	durations := []struct {
		name  string
		value time.Duration
	}{
		{"MongoConnTimeout", cfg.MongoConnTimeout},
		{"JWTTTL", cfg.JWTTTL},
		{"OTPTTL", cfg.OTPTTL},
		{"RateLimitWindow", cfg.RateLimitWindow},
		{"LoginRateLimitWindow", cfg.LoginRateLimitWindow},
		{"OTPRateLimitWindow", cfg.OTPRateLimitWindow},
		{"RequestTimeout", cfg.RequestTimeout},
		{"IdempotencyTTL", cfg.IdempotencyTTL},
		{"ReadTimeout", cfg.ReadTimeout},
		{"WriteTimeout", cfg.WriteTimeout},
		{"IdleTimeout", cfg.IdleTimeout},
		{"ShutdownTimeout", cfg.ShutdownTimeout},
	}
	for _, d := range durations {
		if d.value <= 0 {
			errors = append(errors, fmt.Sprintf("%s must be positive, got: %s", d.name, d.value))
		}
	}

	counts := []struct {
		name  string
		value int
	}{
		{"RateLimitRequests", cfg.RateLimitRequests},
		{"LoginRateLimitRequests", cfg.LoginRateLimitRequests},
		{"OTPRateLimitRequests", cfg.OTPRateLimitRequests},
		{"MaxRequestSize", cfg.MaxRequestSize},
	}
	for _, c := range counts {
		if c.value <= 0 {
			errors = append(errors, fmt.Sprintf("%s must be positive, got: %d", c.name, c.value))
		}
	}

	if cfg.HousekeepingSchedule == "" {
		errors = append(errors, "HousekeepingSchedule cannot be empty")
	}
	if len(cfg.DefaultPhoneRegion) != 2 {
		errors = append(errors, fmt.Sprintf("DefaultPhoneRegion must be a 2-letter region code, got: %s", cfg.DefaultPhoneRegion))
	}

	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			errors = append(errors, "KafkaBrokers cannot be empty when Kafka is enabled")
		}
		if cfg.NotificationsTopic == "" {
			errors = append(errors, "NotificationsTopic cannot be empty when Kafka is enabled")
		}
	}

	if len(errors) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"port", cfg.Port,
		"jwt_secret_set", cfg.JWTSecret != "",
		"jwt_ttl", cfg.JWTTTL,
		"otp_ttl", cfg.OTPTTL,
		"cookie_secure", cfg.CookieSecure,
		"cors_allowed_origins", cfg.CORSAllowedOrigins,
		"trust_proxy_headers", cfg.TrustProxyHeaders,
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"login_rate_limit_requests", cfg.LoginRateLimitRequests,
		"login_rate_limit_window", cfg.LoginRateLimitWindow,
		"otp_rate_limit_requests", cfg.OTPRateLimitRequests,
		"otp_rate_limit_window", cfg.OTPRateLimitWindow,
		"request_timeout", cfg.RequestTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"housekeeping_schedule", cfg.HousekeepingSchedule,
		"default_phone_region", cfg.DefaultPhoneRegion,
		"kafka_enabled", cfg.KafkaEnabled,
		"kafka_brokers", cfg.KafkaBrokers,
		"notifications_topic", cfg.NotificationsTopic,
		"sendgrid_api_key_set", cfg.SendGridAPIKey != "",
		"sendgrid_from_email", cfg.SendGridFromEmail,
	)
}

func redactMongoURI(uri string) string {
	credentialRegex := regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return fallback
	}
	return items
}

func (cfg *Config) GracefulShutdown() {
	cfg.Client.GracefulShutdown()
}

func NormalizePaginationLimit(limit int) int {
	if limit <= 0 {
		limit = MinPaginationLimit
	} else if limit > DefaultPaginationLimit {
		limit = DefaultPaginationLimit
	}
	return limit
}

func NormalizeOffset(offset int64) int64 {
	return max(0, offset)
}
