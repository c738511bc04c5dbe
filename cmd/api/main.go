package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/grpc"

	"honeypot-lab/internal/api"
	"honeypot-lab/internal/api/handlers"
	"honeypot-lab/internal/config"
	"honeypot-lab/internal/domain/services"
	"honeypot-lab/internal/domain/services/honeypot"
	grpchealth "honeypot-lab/internal/grpc/honeypot"
	"honeypot-lab/internal/infrastructure/cache"
	"honeypot-lab/internal/infrastructure/database"
	"honeypot-lab/internal/infrastructure/database/repository"
	"honeypot-lab/internal/observability/metrics"
	"honeypot-lab/internal/streaming"
	"honeypot-lab/pkg/logger"
)

func main() {
	// .env is optional; real environment variables win
	_ = godotenv.Load()

	// Load configuration
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(logger.Config{
		Level:      cfg.Logger.Level,
		Format:     cfg.Logger.Format,
		TimeFormat: cfg.Logger.TimeFormat,
		Service:    cfg.App.Name,
	})

	log.Info().
		Str("app", cfg.App.Name).
		Str("env", cfg.App.Environment).
		Str("version", cfg.App.Version).
		Msg("starting honeypot")

	if cfg.Auth.APIKey == "changeme" {
		log.Warn().Msg("using the default API key; set API_KEY or HONEYPOT_AUTH_API_KEY")
	}

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Pattern library problems are configuration defects: refuse to start
	library, err := honeypot.NewDefaultPatternLibrary(cfg.Detection.ExtraKeywords...)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build pattern library")
	}
	orchestrator := honeypot.NewOrchestrator(
		honeypot.NewClassifier(library, honeypot.ClassifierConfig{
			Base: cfg.Detection.ConfidenceBase,
			Step: cfg.Detection.ConfidenceStep,
			Cap:  cfg.Detection.ConfidenceCap,
		}),
		honeypot.NewExtractor(library),
		honeypot.NewReplySelector(cfg.Engagement.Replies, cfg.Engagement.NeutralReply),
	)
	log.Info().
		Int("keywords", len(library.Keywords())).
		Int("rules", len(library.Rules())).
		Msg("pattern library loaded")

	deps := handlers.Dependencies{
		Orchestrator: orchestrator,
		Library:      library,
		Stats:        honeypot.NewStatsCollector(),
		Checks:       make(map[string]handlers.Pinger),
		Metrics:      metrics.DefaultMetrics,
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
		Version:      cfg.App.Version,
		Logger:       log,
	}
	healthDeps := make(map[string]grpchealth.Pinger)
	var routerOpts []api.Option

	// Optional infrastructure; the honeypot answers turns without any of it
	var redisCache *cache.RedisCache
	if cfg.Redis.Enabled {
		redisCache, err = cache.NewRedis(ctx, cfg.Redis, log)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to Redis, continuing without shared counters")
		} else {
			defer redisCache.Close()
			deps.Verdicts = redisCache
			deps.Checks["redis"] = redisCache
			healthDeps["redis"] = redisCache
			routerOpts = append(routerOpts, api.WithRateLimitStore(redisCache))
		}
	}

	var reportStore services.ReportStore
	if cfg.Database.Enabled {
		db, err := database.NewPostgres(ctx, cfg.Database, log)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to PostgreSQL, continuing without report storage")
		} else {
			defer db.Close()
			if err := db.Migrate(ctx); err != nil {
				log.Fatal().Err(err).Msg("failed to migrate database")
			}
			repo := repository.NewIntelligenceRepository(db.Pool())
			reportStore = repo
			deps.Reports = repo
			deps.Checks["postgres"] = db
			healthDeps["postgres"] = db
		}
	}

	var publisher services.EventPublisher
	if cfg.NATS.Enabled {
		natsPublisher, err := streaming.NewNATSPublisher(ctx, cfg.NATS, log)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to NATS, continuing without event streaming")
		} else {
			defer natsPublisher.Close()
			publisher = natsPublisher
			natsCheck := handlers.PingFunc(func(context.Context) error {
				if !natsPublisher.IsConnected() {
					return errors.New("not connected")
				}
				return nil
			})
			deps.Checks["nats"] = natsCheck
			healthDeps["nats"] = natsCheck
		}
	}

	if cfg.Reporting.Enabled {
		deps.Reporter = services.NewIntelReporter(reportStore, publisher, services.IntelReporterConfig{
			WorkerCount: cfg.Reporting.Workers,
			QueueSize:   cfg.Reporting.QueueSize,
			Timeout:     cfg.Reporting.Timeout,
			OnFailure:   func(error) { metrics.DefaultMetrics.ReportFailures.Inc() },
		}, log)
		log.Info().Bool("enabled", deps.Reporter.Enabled()).Msg("intelligence reporting initialized")
	}

	h := handlers.NewHandlers(deps)

	// Create router
	routerOpts = append(routerOpts, api.WithMetrics(metrics.DefaultMetrics, prometheus.DefaultGatherer))
	router := api.NewRouter(*cfg, h, log, routerOpts...)

	// Start HTTP server
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.HTTPPort),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info().
			Str("addr", httpServer.Addr).
			Msg("starting HTTP server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Start gRPC server (health service only)
	grpcListener, err := net.Listen("tcp", fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.GRPCPort))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create gRPC listener")
	}

	grpcServer := grpc.NewServer()
	grpchealth.RegisterHealthServer(ctx, grpcServer, healthDeps, grpchealth.DefaultCheckInterval, log)

	go func() {
		log.Info().
			Str("addr", grpcListener.Addr().String()).
			Msg("starting gRPC server")
		if err := grpcServer.Serve(grpcListener); err != nil {
			log.Fatal().Err(err).Msg("gRPC server failed")
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down...")

	cancel()

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	grpcServer.GracefulStop()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// Flush queued reports before the sinks are closed by the deferred calls
	if deps.Reporter != nil {
		deps.Reporter.Close()
	}

	log.Info().Msg("shutdown complete")
}

// loadConfig reads HONEYPOT_CONFIG when set, otherwise the default search path
func loadConfig() (*config.Config, error) {
	if path := os.Getenv("HONEYPOT_CONFIG"); path != "" {
		return config.Load(path)
	}
	return config.LoadDefault()
}
