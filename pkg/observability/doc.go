// Package observability provides structured logging, Prometheus metrics, health checks and
// OpenTelemetry tracing for the vision records services.
//
// # Structured Logging
//
//	logger := observability.NewLogger(observability.InfoLevel, os.Stdout)
//	logger.WithField("record_id", id).Info("record updated")
//
// Request-scoped fields travel in the context:
//
//	ctx = observability.WithRequestID(ctx, reqID)
//	observability.FromContext(ctx, logger).Warn("access denied")
//
// # Prometheus Metrics
//
//	metrics := observability.NewMetrics(nil)
//	metrics.RecordInvocation("add_record", err, time.Since(start))
//	http.Handle("/metrics", metrics.Handler())
//
// # Health Checks
//
//	checker := observability.NewHealthChecker("1")
//	checker.Register("ledger", backend, true)
//	status := checker.Check(ctx)
//
// # OpenTelemetry
//
//	tp, err := observability.InitTracing(ctx, cfg.Tracing, logger)
//	defer observability.ShutdownTracing(ctx, tp, logger)
package observability
