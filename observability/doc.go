// Package observability sets up OpenTelemetry tracing and metrics over
// OTLP/HTTP and holds the instruments the storage and queue layers record on.
//
//	metrics, shutdown, err := observability.Setup(ctx, cfg.Observability, "catapult", version, env)
//	defer shutdown(ctx)
//
//	s = storage.Instrument(s, "s3", storage.WithMetrics(metrics))
//
// With observability disabled, Setup returns instruments on the global no-op
// meter, so callers can record unconditionally.
package observability
