package config

import "time"

// Service names double as the logger's service attribute.
const (
	APIServiceName      = "bookspace-api"
	NotifierServiceName = "bookspace-notifier"
	MigrateServiceName  = "bookspace-migrate"
)

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "bookspace"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"
	DefaultEnvFile  = ".env"

	DefaultJWTTTL       = 1 * time.Hour
	DefaultOTPTTL       = 10 * time.Minute
	DefaultCookieSecure = false

	DefaultTrustProxyHeaders      = false
	DefaultRateLimitRequests      = 100
	DefaultRateLimitWindow        = 1 * time.Minute
	DefaultLoginRateLimitRequests = 5
	DefaultLoginRateLimitWindow   = 15 * time.Minute
	DefaultOTPRateLimitRequests   = 3
	DefaultOTPRateLimitWindow     = 5 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultHousekeepingSchedule = "@every 1m"
	DefaultPhoneRegion          = "IN"

	DefaultKafkaEnabled       = false
	DefaultKafkaBrokers       = "localhost:9092"
	DefaultNotificationsTopic = "bookspace.notifications"
	DefaultNotifierGroupID    = "bookspace-notifier"

	DefaultSendGridFromEmail = "no-reply@bookspace.local"
	DefaultSendGridFromName  = "BookSpace"

	DefaultPaginationLimit = 100
	MinPaginationLimit     = 10
)

var DefaultCORSAllowedOrigins = []string{
	"http://localhost:5173",
	"http://localhost:3000",
}

// Booking statuses. Confirmed is accepted on input and normalized to Approved.
const (
	Pending   = "pending"
	Approved  = "approved"
	Rejected  = "rejected"
	Cancelled = "cancelled"
	Confirmed = "confirmed"
)

// Place statuses.
const (
	PlaceAvailable   = "available"
	PlaceUnavailable = "unavailable"
)

// User roles and statuses.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"

	UserPending  = "pending"
	UserActive   = "active"
	UserRejected = "rejected"
)
