// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/carterperez-dev/templates/tenant-accounts/internal/account"
	"github.com/carterperez-dev/templates/tenant-accounts/internal/config"
	"github.com/carterperez-dev/templates/tenant-accounts/internal/core"
	"github.com/carterperez-dev/templates/tenant-accounts/internal/hash"
	"github.com/carterperez-dev/templates/tenant-accounts/internal/health"
	"github.com/carterperez-dev/templates/tenant-accounts/internal/middleware"
	"github.com/carterperez-dev/templates/tenant-accounts/internal/migrate"
	"github.com/carterperez-dev/templates/tenant-accounts/internal/server"
)

const (
	drainDelay = 5 * time.Second
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

//nolint:funlen // bootstrap code is inherently verbose
func run(configPath string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	var telemetry *core.Telemetry
	if cfg.Otel.Enabled {
		tel, telErr := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
		if telErr != nil {
			logger.Warn("failed to initialize telemetry", "error", telErr)
		} else {
			telemetry = tel
			logger.Info("OpenTelemetry tracer initialized",
				"endpoint", cfg.Otel.Endpoint,
			)
		}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	var (
		repo    account.Repository
		dbCheck health.Checker
		db      *core.Database
	)

	switch cfg.Database.Driver {
	case config.DriverMemory:
		mem := account.NewMemoryRepository()
		repo, dbCheck = mem, mem
		logger.Warn("using in-memory user store, data is lost on restart")
	default:
		db, err = core.NewDatabase(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer closeWith(logger, "database", db.Close)

		logger.Info("database connected",
			"max_open_conns", cfg.Database.MaxOpenConns,
			"max_idle_conns", cfg.Database.MaxIdleConns,
		)

		if cfg.Database.MigrateOnStart {
			runner, migErr := migrate.New(db.DB.DB, logger)
			if migErr != nil {
				return migErr
			}
			if migErr = runner.Up(ctx); migErr != nil {
				return migErr
			}
		}

		registry.MustRegister(collectors.NewDBStatsCollector(db.DB.DB, "users"))
		repo, dbCheck = account.NewRepository(db.DB), db
	}

	var (
		redisClient *core.Redis
		redisCheck  health.Checker
	)
	if cfg.Redis.Enabled {
		redisClient, err = core.NewRedis(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer closeWith(logger, "redis", redisClient.Close)

		redisCheck = redisClient
		logger.Info("redis connected", "pool_size", cfg.Redis.PoolSize)
	}

	hasher, err := hash.New(cfg.Hash)
	if err != nil {
		return err
	}
	logger.Info("password hasher initialized", "algorithm", cfg.Hash.Algorithm)

	accountMetrics, err := account.NewMetrics(registry)
	if err != nil {
		return err
	}
	httpMetrics, err := middleware.NewHTTPMetrics(registry)
	if err != nil {
		return err
	}

	accountSvc := account.NewService(repo, hasher,
		account.WithLogger(logger),
		account.WithMetrics(accountMetrics),
	)
	accountHandler := account.NewHandler(accountSvc)

	healthHandler := health.NewHandler(
		health.Dependency{Name: "database", Checker: dbCheck},
		health.Dependency{Name: "redis", Checker: redisCheck},
	)

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	var rdb *redis.Client
	if redisClient != nil {
		rdb = redisClient.Client
	}
	limiter := middleware.NewRateLimiter(rdb, middleware.RateLimitConfig{
		Limit:      middleware.LimitFromConfig(cfg.RateLimit),
		KeyFunc:    middleware.KeyByTenant,
		FailOpen:   true,
		BypassFunc: isOperationalPath,
	})
	defer limiter.Close()

	router := srv.Router()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(logger))
	router.Use(httpMetrics.Handler)
	router.Use(limiter.Handler)
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.CORS(cfg.CORS))

	healthHandler.RegisterRoutes(router)
	router.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{
		Registry: registry,
	}))

	router.Route("/v1", func(r chi.Router) {
		accountHandler.RegisterRoutes(r)
	})

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}

	logger.Info("application stopped")
	return nil
}

func isOperationalPath(r *http.Request) bool {
	switch r.URL.Path {
	case "/healthz", "/livez", "/readyz", "/metrics":
		return true
	}
	return false
}

func closeWith(logger *slog.Logger, name string, closeFn func() error) {
	if err := closeFn(); err != nil {
		logger.Error(name+" close error", "error", err)
	}
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var handler slog.Handler

	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
