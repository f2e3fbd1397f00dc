package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/platinummonkey/shopadmin/pkg/api"
	"github.com/platinummonkey/shopadmin/pkg/audit"
	"github.com/platinummonkey/shopadmin/pkg/auth"
	"github.com/platinummonkey/shopadmin/pkg/config"
	"github.com/platinummonkey/shopadmin/pkg/middleware"
	"github.com/platinummonkey/shopadmin/pkg/observability"
	"github.com/platinummonkey/shopadmin/pkg/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
)

var version = "dev"

func main() {
	envFile := flag.String("env-file", ".env", "Optional dotenv file loaded before the environment")
	flag.Parse()

	cfg, err := config.LoadConfigFrom(*envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Observability.LogLevel, os.Stdout).
		WithField("service", "shopadmin").
		WithField("version", version)

	if err := run(context.Background(), cfg, logger); err != nil {
		logger.WithError(err).Error("Server exited with error")
		os.Exit(1)
	}
	logger.Info("Server stopped")
}

func run(ctx context.Context, cfg *config.Config, logger *observability.Logger) error {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(registry)

	providers, err := observability.InitOTel(ctx, observability.OTelConfig{
		Enabled:        cfg.Observability.OTelEnabled,
		Endpoint:       cfg.Observability.OTelEndpoint,
		ServiceName:    cfg.Observability.OTelServiceName,
		ServiceVersion: cfg.Observability.OTelServiceVersion,
		Insecure:       cfg.Observability.OTelInsecure,
		SampleRatio:    cfg.Observability.OTelSampleRatio,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	b, err := openBackends(ctx, cfg.Storage, metrics, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	auditLog, err := openAudit(cfg.Observability, b, logger)
	if err != nil {
		_ = b.Close()
		return err
	}

	codec := auth.NewTokenCodec([]byte(cfg.Auth.TokenSecret)).WithValidity(cfg.Auth.TokenValidity)
	svc := auth.NewService(b.Users, b.Blacklist, auth.NewHasher(cfg.Auth.BcryptCost), codec,
		auth.WithLogger(logger.WithField("component", "auth")),
		auth.WithMetrics(metrics),
	)

	if cfg.Storage.SeedFile != "" {
		created, err := svc.SeedFromFile(ctx, cfg.Storage.SeedFile)
		if err != nil {
			_ = b.Close()
			return fmt.Errorf("failed to seed users: %w", err)
		}
		logger.Infof("Seeded %d users from %s", created, cfg.Storage.SeedFile)
	}

	var scheduler *storage.PurgeScheduler
	if b.Purger != nil {
		scheduler, err = storage.NewPurgeScheduler(b.Purger, cfg.Storage.PurgeSchedule, logger, metrics)
		if err != nil {
			_ = b.Close()
			return err
		}
		scheduler.Start()
	}

	limiterCtx, stopLimiter := context.WithCancel(ctx)
	defer stopLimiter()

	var limiter middleware.Limiter
	if cfg.Auth.LoginRateLimit > 0 {
		limitCfg := middleware.LoginRateLimitConfig(cfg.Auth.LoginRateLimit, cfg.Auth.LoginBurst)
		if b.Redis != nil {
			limiter = middleware.NewDistributedRateLimiter(b.Redis, limitCfg, "shopadmin:ratelimit")
		} else {
			local := middleware.NewRateLimiter(limitCfg)
			local.StartCleanup(limiterCtx)
			limiter = local
		}
	}

	var exposed *prometheus.Registry
	if cfg.Observability.MetricsEnabled {
		exposed = registry
	}

	server := api.NewServer(svc, api.Options{
		Logger:         logger,
		Metrics:        metrics,
		Registry:       exposed,
		Health:         observability.NewHealthChecker(b.DB, b.Redis, version),
		Audit:          auditLog,
		LoginLimiter:   limiter,
		CookieSecure:   cfg.Auth.CookieSecure,
		TrustProxy:     cfg.Server.TrustProxy,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		MaxBodyBytes:   cfg.Server.MaxBodyBytes,
		Tracing:        providers != nil,
	})

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           server,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	shutdown := observability.NewShutdownManager(logger, httpServer, cfg.Server.ShutdownTimeout)
	// hooks run concurrently, so a purge in flight and queued audit events
	// are finished here before the database closes
	shutdown.RegisterShutdownFunc("storage", func(ctx context.Context) error {
		var stopErr error
		if scheduler != nil {
			stopErr = scheduler.Stop(ctx)
		}
		return errors.Join(stopErr, auditLog.Close(), b.Close())
	})
	shutdown.RegisterShutdownFunc("otel", func(ctx context.Context) error {
		return observability.ShutdownOTel(ctx, providers)
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Infof("Listening on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return shutdown.WaitForShutdown(gctx)
	})

	return g.Wait()
}

// openAudit builds the audit trail from the configured sinks. Events go to
// stdout when auditing is enabled without a file or database sink.
func openAudit(cfg config.ObservabilityConfig, b *backends, logger *observability.Logger) (audit.Logger, error) {
	if !cfg.AuditEnabled {
		return audit.NopLogger{}, nil
	}

	var sinks []audit.Logger
	if cfg.AuditFile != "" {
		file, err := audit.NewFileLogger(cfg.AuditFile)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, file)
	}
	if cfg.AuditDatabase && b.DB != nil {
		db, err := audit.NewDBLogger(b.DB)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, db)
	}
	if len(sinks) == 0 {
		sinks = append(sinks, audit.NewWriterLogger(os.Stdout))
	}

	return audit.NewAsyncLogger(audit.NewMultiLogger(sinks...), 2, 1024, logger.WithField("component", "audit")), nil
}
