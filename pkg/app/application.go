package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"bookspace/internal/health"
	"bookspace/pkg/config"
	"bookspace/pkg/contracts"
	"bookspace/pkg/middleware"

	"github.com/julienschmidt/httprouter"
	"github.com/robfig/cron/v3"
)

const IdempotencyHeader = "Idempotency-Key"

// Sweeper is an in-memory store whose expired entries are dropped by the
// housekeeping job.
type Sweeper interface {
	Sweep() int
}

type namedSweeper struct {
	name string
	Sweeper
}

type Application struct {
	cfg              *config.Config
	server           *http.Server
	idempotencyStore *middleware.InMemoryIdempotencyStore
	rateLimiter      *middleware.RateLimiter
	sweepers         []namedSweeper
	scheduler        *cron.Cron
	healthHandler    http.Handler
	appHttpHandler   http.Handler
}

func NewApplication(cfg *config.Config) *Application {
	return &Application{cfg: cfg}
}

// AddSweeper registers a store for periodic expiry. Must be called before Run.
func (a *Application) AddSweeper(name string, s Sweeper) {
	a.sweepers = append(a.sweepers, namedSweeper{name: name, Sweeper: s})
}

func (a *Application) SetApp(appHandlers ...contracts.Handler) {
	a.setHealthHandler()
	a.setAppHandler(appHandlers)
	a.setAppServer()
	a.setScheduler()
}

func (a *Application) setHealthHandler() {
	healthRouter := httprouter.New()
	healthHandler := health.NewHandler(a.cfg.Client.Mongo, a.cfg.Log)
	healthHandler.RegisterRoutes(healthRouter)

	var healthHTTPHandler http.Handler = healthRouter
	healthHTTPHandler = middleware.RequestLogging(a.cfg.Log)(healthHTTPHandler)
	healthHTTPHandler = middleware.Recovery(a.cfg.Log)(healthHTTPHandler)
	a.healthHandler = healthHTTPHandler
	a.cfg.Log.Info("Health endpoints configured with minimal middleware (Recovery + Logging only)")
}

func (a *Application) setAppHandler(appHandlers []contracts.Handler) {
	appRouter := httprouter.New()
	for _, h := range appHandlers {
		h.RegisterRoutes(appRouter)
	}

	a.idempotencyStore = middleware.NewInMemoryIdempotencyStore(a.cfg.IdempotencyTTL)
	a.rateLimiter = middleware.NewRateLimiter(
		"global",
		a.cfg.RateLimitRequests,
		a.cfg.RateLimitWindow,
		middleware.ClientKeyExtractor(a.cfg.TrustProxyHeaders),
		a.cfg.Log,
	)
	a.AddSweeper("idempotency", a.idempotencyStore)
	a.AddSweeper(a.rateLimiter.Name(), a.rateLimiter)

	a.appHttpHandler = buildChain(a.cfg, appRouter, a.idempotencyStore, a.rateLimiter)
	a.cfg.Log.Info("Application endpoints configured with full security middleware stack")
}

// buildChain wraps h in the API middleware. The first wrapper applied is
// the innermost.
func buildChain(cfg *config.Config, h http.Handler, store middleware.IdempotencyStore, limiter *middleware.RateLimiter) http.Handler {
	h = middleware.Idempotency(store, IdempotencyHeader)(h)
	h = middleware.RequestTimeout(cfg.RequestTimeout)(h)
	h = middleware.RateLimit(limiter)(h)
	h = middleware.ContentTypeValidation(cfg.Log)(h)
	h = middleware.MaxRequestSize(int64(cfg.MaxRequestSize))(h)
	h = middleware.CORS(cfg.CORSAllowedOrigins)(h)
	h = middleware.RequestLogging(cfg.Log)(h)
	h = middleware.Recovery(cfg.Log)(h)
	return h
}

func (a *Application) setAppServer() {
	mux := http.NewServeMux()
	mux.Handle("/health", a.healthHandler)
	mux.Handle("/ready", a.healthHandler)
	mux.Handle("/", a.appHttpHandler)

	a.server = &http.Server{
		Addr:         ":" + a.cfg.Port,
		Handler:      mux,
		ReadTimeout:  a.cfg.ReadTimeout,
		WriteTimeout: a.cfg.WriteTimeout,
		IdleTimeout:  a.cfg.IdleTimeout,
	}

	a.cfg.Log.Info("HTTP server configured", "port", a.cfg.Port)
}

func (a *Application) setScheduler() {
	a.scheduler = cron.New()
	if _, err := a.scheduler.AddFunc(a.cfg.HousekeepingSchedule, a.housekeep); err != nil {
		a.cfg.Log.Fatal("Invalid housekeeping schedule", "schedule", a.cfg.HousekeepingSchedule, "error", err)
	}
}

func (a *Application) housekeep() {
	for _, s := range a.sweepers {
		if removed := s.Sweep(); removed > 0 {
			a.cfg.Log.Debug("Swept expired entries", "store", s.name, "removed", removed)
		}
	}
}

func (a *Application) Run() {
	serverErrors := make(chan error, 1)

	a.scheduler.Start()
	go func() {
		a.cfg.Log.Info("Starting HTTP server", "address", a.server.Addr)
		serverErrors <- a.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			a.cfg.Log.Fatal("HTTP server failed", "error", err)
		}

	case sig := <-shutdown:
		a.cfg.Log.Info("Shutdown signal received", "signal", sig)
		a.gracefulShutdown()
	}
}

func (a *Application) gracefulShutdown() {
	a.cfg.Log.Info("Starting graceful shutdown...")

	a.cfg.Log.Info("Stopping background workers...")
	<-a.scheduler.Stop().Done()
	a.cfg.Log.Info("Background workers stopped")

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		a.cfg.Log.Error("Server shutdown failed", "error", err)
		if err := a.server.Close(); err != nil {
			a.cfg.Log.Fatal("Could not stop server gracefully", "error", err)
		}
	}

	a.cfg.GracefulShutdown()
	a.cfg.Log.Info("Server stopped gracefully")
}
