package main

import (
	authhandler "bookspace/internal/auth/handler"
	authservice "bookspace/internal/auth/service"
	authvalidator "bookspace/internal/auth/validator"
	bookingshandler "bookspace/internal/bookings/handler"
	bookingsrepo "bookspace/internal/bookings/repository"
	bookingsservice "bookspace/internal/bookings/service"
	bookingsvalidator "bookspace/internal/bookings/validator"
	placeshandler "bookspace/internal/places/handler"
	placesrepo "bookspace/internal/places/repository"
	placesservice "bookspace/internal/places/service"
	placesvalidator "bookspace/internal/places/validator"
	statshandler "bookspace/internal/stats/handler"
	statsrepo "bookspace/internal/stats/repository"
	statsservice "bookspace/internal/stats/service"
	usershandler "bookspace/internal/users/handler"
	usersrepo "bookspace/internal/users/repository"
	usersservice "bookspace/internal/users/service"
	"bookspace/pkg/app"
	"bookspace/pkg/auth"
	"bookspace/pkg/config"
	"bookspace/pkg/contracts"
	"bookspace/pkg/events"
	"bookspace/pkg/kafka"
	kafka_config "bookspace/pkg/kafka/config"
	kafka_middleware "bookspace/pkg/kafka/middleware"
	"bookspace/pkg/middleware"
	"bookspace/pkg/otp"
	"bookspace/pkg/password"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	cfg := config.Load(config.APIServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting BookSpace API")
	publisher, closePublisher := initPublisher(cfg)
	defer closePublisher()

	serverApp := app.NewApplication(cfg)
	handlers := initHandlers(cfg, serverApp, publisher)
	serverApp.SetApp(handlers...)
	serverApp.Run()
}

// initPublisher returns the Kafka publisher, or a log-only publisher when
// Kafka is disabled.
func initPublisher(cfg *config.Config) (events.Publisher, func()) {
	if !cfg.KafkaEnabled {
		cfg.Log.Info("Kafka disabled, notifications will only be logged")
		return events.NewLogPublisher(cfg.Log), func() {}
	}

	kafkaCfg, err := kafka_config.Load(cfg.KafkaBrokers)
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	producer, err := kafka.NewProducer(kafkaCfg, cfg.NotificationsTopic, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))

	cfg.Log.Info("Publishing notifications to Kafka", "topic", cfg.NotificationsTopic, "brokers", cfg.KafkaBrokers)
	return events.NewKafkaPublisher(producer, cfg.ServiceName), func() {
		if err := producer.Close(); err != nil {
			cfg.Log.Error("Failed to close Kafka producer", "error", err)
		}
	}
}

func initHandlers(cfg *config.Config, serverApp *app.Application, publisher events.Publisher) []contracts.Handler {
	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.JWTTTL)
	guard := auth.NewGuard(tokens, cfg.Log)

	userRepo := usersrepo.NewMongoUserRepository(cfg)
	placeRepo := placesrepo.NewMongoPlaceRepository(cfg)
	bookingRepo := bookingsrepo.NewMongoBookingRepository(cfg)
	lockRepo := bookingsrepo.NewBookingLockRepository(cfg)
	statsRepo := statsrepo.NewMongoStatsRepository(cfg)

	otpStore := otp.NewStore(cfg.OTPTTL)
	clientKey := middleware.ClientKeyExtractor(cfg.TrustProxyHeaders)
	loginLimiter := middleware.NewRateLimiter("login", cfg.LoginRateLimitRequests, cfg.LoginRateLimitWindow, clientKey, cfg.Log)
	otpLimiter := middleware.NewRateLimiter("otp", cfg.OTPRateLimitRequests, cfg.OTPRateLimitWindow, clientKey, cfg.Log)
	serverApp.AddSweeper("signup-otp", otpStore)
	serverApp.AddSweeper(loginLimiter.Name(), loginLimiter)
	serverApp.AddSweeper(otpLimiter.Name(), otpLimiter)

	authService := authservice.NewAuthService(
		userRepo,
		otpStore,
		password.NewHasher(bcrypt.DefaultCost),
		tokens,
		authvalidator.NewAuthValidator(cfg.Log),
		publisher,
		cfg,
	)
	userService := usersservice.NewUserService(userRepo, publisher, cfg)
	placeService := placesservice.NewPlaceService(placeRepo, bookingRepo, placesvalidator.NewPlaceValidator(), cfg)
	checker := bookingsservice.NewAvailabilityChecker(bookingRepo, placeRepo, cfg.Log)
	bookingService := bookingsservice.NewBookingService(
		bookingRepo,
		lockRepo,
		checker,
		userRepo,
		bookingsvalidator.NewBookingValidator(cfg.Log),
		publisher,
		cfg,
	)
	statsService := statsservice.NewStatsService(statsRepo, cfg)

	cfg.Log.Info("Services initialized", "database", cfg.MongoDatabaseName)

	cookie := authhandler.CookieOptions{TTL: cfg.JWTTTL, Secure: cfg.CookieSecure}
	return []contracts.Handler{
		authhandler.NewAuthHandler(authService, loginLimiter, otpLimiter, cookie, cfg.Log),
		usershandler.NewUserHandler(userService, guard, cfg.Log),
		placeshandler.NewPlaceHandler(placeService, guard, cfg.Log),
		bookingshandler.NewBookingHandler(bookingService, guard, cfg.Log),
		statshandler.NewStatsHandler(statsService, guard, cfg.Log),
	}
}
