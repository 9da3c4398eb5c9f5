package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"gr4vydemo/internal/checkout"
	"gr4vydemo/internal/checkout/api"
	"gr4vydemo/internal/common/database"
	"gr4vydemo/internal/common/events"
	"gr4vydemo/internal/common/kafka"
	"gr4vydemo/internal/common/middleware"
	"gr4vydemo/internal/common/mongo"
	"gr4vydemo/internal/common/nats"
	"gr4vydemo/internal/common/redis"
	"gr4vydemo/internal/settings"
)

// Config holds service configuration
type Config struct {
	Port        int      `envconfig:"PORT" default:"8080"`
	Environment string   `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string   `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat   string   `envconfig:"LOG_FORMAT" default:"json"`
	CORSOrigins []string `envconfig:"CORS_ORIGINS" default:"*"`

	Database database.Config
	Mongo    mongo.Config
	Redis    redis.Config
	NATS     nats.Config
	Kafka    kafka.Config
	Gr4vy    SeedConfig
}

// SeedConfig holds admin settings written at startup when they are unset
type SeedConfig struct {
	ID         string `envconfig:"GR4VY_ID"`
	Token      string `envconfig:"GR4VY_TOKEN"`
	MerchantID string `envconfig:"GR4VY_MERCHANT_ID"`
	Server     string `envconfig:"GR4VY_SERVER"`
	Timeout    string `envconfig:"GR4VY_TIMEOUT"`
}

// healthCheck reports whether a dependency is reachable
type healthCheck struct {
	name  string
	check func(context.Context) error
}

func main() {
	// A missing .env file is fine; the environment wins over it
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
		os.Exit(1)
	}

	// Load configuration
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		fmt.Fprintf(os.Stderr, "failed to process config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	logger := setupLogger(cfg.LogLevel, cfg.LogFormat)

	// Create context that listens for shutdown signals
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	var checks []healthCheck

	// Settings store: Postgres, then MongoDB, then Redis, then memory
	var store settings.Store = settings.NewMemoryStore()
	backend := "memory"
	switch {
	case cfg.Database.Enabled():
		if cfg.Database.AutoMigrate {
			if err := database.Migrate(cfg.Database.URL, logger); err != nil {
				logger.Error("failed to run migrations", "error", err)
				os.Exit(1)
			}
		}

		db, err := database.New(ctx, cfg.Database, logger)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		store, backend = settings.NewPostgresStore(db), "postgres"
		checks = append(checks, healthCheck{"database", db.HealthCheck})
	case cfg.Mongo.Enabled():
		mc, err := mongo.New(ctx, cfg.Mongo, logger)
		if err != nil {
			logger.Error("failed to connect to mongo", "error", err)
			os.Exit(1)
		}
		defer mc.Close()

		store, backend = settings.NewMongoStore(mc.Collection("settings")), "mongo"
		checks = append(checks, healthCheck{"mongo", mc.HealthCheck})
	case cfg.Redis.Enabled():
		rc, err := redis.New(ctx, cfg.Redis, logger)
		if err != nil {
			logger.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer rc.Close()

		store, backend = settings.NewRedisStore(rc.Cmdable(), rc.Key("settings")), "redis"
		checks = append(checks, healthCheck{"redis", rc.HealthCheck})
	default:
		logger.Warn("no settings backend configured, settings are kept in memory")
	}

	settingsService := settings.NewService(store, logger)
	defer settingsService.Wait()

	seeded, err := settingsService.Seed(ctx, settings.Admin{
		MerchantID:  cfg.Gr4vy.MerchantID,
		Gr4vyID:     cfg.Gr4vy.ID,
		APIToken:    cfg.Gr4vy.Token,
		Environment: cfg.Gr4vy.Server,
		Timeout:     cfg.Gr4vy.Timeout,
	})
	if err != nil {
		logger.Error("failed to seed settings", "error", err)
		os.Exit(1)
	}
	if len(seeded) > 0 {
		logger.Info("seeded admin settings", "keys", seeded)
	}

	// Event publishing
	var publishers events.Fanout
	if cfg.NATS.Enabled() {
		natsClient, err := nats.New(ctx, cfg.NATS, logger)
		if err != nil {
			logger.Error("failed to connect to NATS", "error", err)
			os.Exit(1)
		}
		defer natsClient.Close()

		if _, err := natsClient.EnsureStream(ctx, cfg.NATS.Stream); err != nil {
			logger.Error("failed to ensure stream", "error", err)
			os.Exit(1)
		}
		publishers = append(publishers, nats.NewPublisher(natsClient, logger))
		checks = append(checks, healthCheck{"nats", func(context.Context) error { return natsClient.HealthCheck() }})
	}
	if cfg.Kafka.Enabled() {
		kp, err := kafka.NewPublisher(ctx, cfg.Kafka, logger)
		if err != nil {
			logger.Error("failed to connect to kafka", "error", err)
			os.Exit(1)
		}
		defer kp.Close()

		publishers = append(publishers, kp)
		checks = append(checks, healthCheck{"kafka", kp.HealthCheck})
	}

	var publisher events.EventPublisher
	if len(publishers) > 0 {
		publisher = publishers
	}

	// Create services
	runner := checkout.NewRunner(settingsService, checkout.NewGr4vyFacade, publisher, logger)

	// Create handlers
	checkoutHandler := api.NewHandler(settingsService, runner, publisher, logger)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(chimw.RequestID)
	r.Use(middleware.CorrelationID)
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(chimw.Compress(5))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		for _, hc := range checks {
			if err := hc.check(r.Context()); err != nil {
				logger.Warn("health check failed", "dependency", hc.name, "error", err)
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte(`{"status":"unhealthy"}`))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	// Ready check
	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ready"}`))
	})

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/", checkoutHandler.Routes())
	})

	// Response viewer
	r.Get("/responses/*", checkoutHandler.ShowResponse)

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("starting gr4vydemo service",
			"port", cfg.Port,
			"environment", cfg.Environment,
			"settings_backend", backend,
			"event_publishers", len(publishers),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			cancel()
		}
	}()

	// Wait for shutdown
	<-ctx.Done()

	// Graceful shutdown
	logger.Info("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	logger.Info("server stopped")
}

func setupLogger(level, format string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: logLevel,
	}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
