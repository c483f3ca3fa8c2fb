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

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/platinummonkey/visionrecords/pkg/api"
	"github.com/platinummonkey/visionrecords/pkg/audit"
	"github.com/platinummonkey/visionrecords/pkg/auth"
	"github.com/platinummonkey/visionrecords/pkg/config"
	"github.com/platinummonkey/visionrecords/pkg/httputil"
	"github.com/platinummonkey/visionrecords/pkg/ledger"
	"github.com/platinummonkey/visionrecords/pkg/observability"
	"github.com/platinummonkey/visionrecords/pkg/records"
	"github.com/platinummonkey/visionrecords/pkg/storage"
)

const serviceVersion = "1.0.0"

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if level, err := logrus.ParseLevel(cfg.Observability.LogLevel); err == nil {
		log.SetLevel(level)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatalf("visiond exited: %v", err)
	}
	log.Info("visiond stopped")
}

func run(ctx context.Context, cfg *config.Config, log *logrus.Logger) error {
	logger := observability.NewLogger(cfg.LogLevel(), os.Stdout).WithField("service", "visiond")

	tp, err := observability.InitTracing(ctx, cfg.Observability.Tracing, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		observability.ShutdownTracing(shutdownCtx, tp, logger)
	}()

	var metrics *observability.Metrics
	if cfg.Observability.MetricsEnabled {
		metrics = observability.NewMetrics(nil)
	}

	backend, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to open %s storage: %w", cfg.Storage.Type, err)
	}
	log.WithField("type", cfg.Storage.Type).Info("Storage initialized")

	l := ledger.New(backend, ledger.WithLogger(logger), ledger.WithMetrics(metrics))
	defer l.Close()

	checker := observability.NewHealthChecker(serviceVersion)
	checker.Register("ledger", l, true)

	var auditLogger audit.Logger = audit.NoOpLogger{}
	if cfg.Audit.Enabled {
		fileLogger, err := audit.NewFileLogger(cfg.Audit.File)
		if err != nil {
			return fmt.Errorf("failed to create audit logger: %w", err)
		}
		checker.Register("audit", fileLogger, false)
		auditLogger = fileLogger
		if cfg.Observability.LogLevel == "debug" {
			auditLogger = audit.NewMultiLogger(fileLogger, &logAuditor{log: log})
		}
		log.WithField("path", cfg.Audit.File.BasePath).Info("Audit logging enabled")
	}
	defer auditLogger.Close()

	svc := records.NewService(l,
		records.WithAuditLogger(auditLogger),
		records.WithLogger(logger),
		records.WithMetrics(metrics),
	)

	authn, err := auth.NewAuthenticator(cfg.Auth.Secret, cfg.Auth.Issuer)
	if err != nil {
		return err
	}

	refresher, err := newGaugeRefresher(cfg.Jobs.GaugeRefreshSpec, svc, metrics, logger)
	if err != nil {
		return err
	}
	if refresher != nil {
		refresher.Start()
		defer func() { <-refresher.Stop().Done() }()
	}

	server := api.NewServer(svc, authn, log, metrics)
	if cfg.Server.RateLimitPerMinute > 0 {
		limiter := httputil.NewRateLimiter(cfg.Server.RateLimit())
		limiter.StartCleanup(ctx)
		server.UseRateLimiter(limiter)
	}

	apiServer := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:      server.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	opsMux := http.NewServeMux()
	observability.RegisterHealthRoutes(opsMux, checker)
	if metrics != nil {
		opsMux.Handle("/metrics", metrics.Handler())
	}
	opsServer := &http.Server{
		Addr:    net.JoinHostPort(cfg.Server.Host, cfg.Server.HealthPort),
		Handler: opsMux,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Infof("Starting vision records API on %s", apiServer.Addr)
		return serve(apiServer)
	})
	g.Go(func() error {
		log.Infof("Starting health and metrics server on %s", opsServer.Addr)
		return serve(opsServer)
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down servers")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return errors.Join(apiServer.Shutdown(shutdownCtx), opsServer.Shutdown(shutdownCtx))
	})

	return g.Wait()
}

// serve runs srv until it is shut down
func serve(srv *http.Server) error {
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
