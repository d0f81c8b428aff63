package storage

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/libcatapult/catapult/observability"
)

// InstrumentOption configures Instrument.
type InstrumentOption func(*instrumented)

// WithMetrics records every operation on m.
func WithMetrics(m *observability.Metrics) InstrumentOption {
	return func(i *instrumented) { i.metrics = m }
}

// Instrument wraps s so that every operation runs inside a "storage.<op>"
// span and, when metrics are configured, is counted with its outcome. Results
// and errors pass through unchanged.
func Instrument(s Storage, name string, opts ...InstrumentOption) Storage {
	i := &instrumented{next: s, name: name}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

type instrumented struct {
	next    Storage
	name    string
	metrics *observability.Metrics
}

// Status returns the metric status label for err.
func Status(err error) string {
	switch KindOf(err) {
	case KindNone:
		return "ok"
	case KindOther:
		return "error"
	default:
		return KindOf(err).String()
	}
}

func (i *instrumented) observe(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := observability.StartSpan(ctx, "storage."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(append(attrs, attribute.String(observability.AttrBackend, i.name))...),
	)
	return ctx, func(err error) {
		status := Status(err)
		span.SetAttributes(attribute.String(observability.AttrStatus, status))
		if err != nil {
			span.RecordError(err)
			if KindOf(err) == KindOther {
				span.SetStatus(codes.Error, err.Error())
			}
		}
		span.End()
		if i.metrics != nil {
			i.metrics.RecordOperation(ctx, i.name, op, status, time.Since(start))
			if KindOf(err) == KindOther {
				i.metrics.RecordError(ctx, "storage", i.name)
			}
		}
	}
}

func (i *instrumented) Connect(ctx context.Context) (err error) {
	ctx, done := i.observe(ctx, "connect")
	defer func() { done(err) }()
	return i.next.Connect(ctx)
}

func (i *instrumented) Close() error {
	_, done := i.observe(context.Background(), "close")
	err := i.next.Close()
	done(err)
	return err
}

func (i *instrumented) Count(ctx context.Context) (n int64, err error) {
	ctx, done := i.observe(ctx, "count")
	defer func() { done(err) }()
	return i.next.Count(ctx)
}

func (i *instrumented) ListFiles(ctx context.Context, prefix string) (names []string, err error) {
	ctx, done := i.observe(ctx, "list_files", attribute.String(observability.AttrPrefix, prefix))
	defer func() { done(err) }()
	return i.next.ListFiles(ctx, prefix)
}

func (i *instrumented) ListFilesWithSizes(ctx context.Context, prefix string) (objects []ObjectInfo, err error) {
	ctx, done := i.observe(ctx, "list_files_with_sizes", attribute.String(observability.AttrPrefix, prefix))
	defer func() { done(err) }()
	return i.next.ListFilesWithSizes(ctx, prefix)
}

func (i *instrumented) FetchFile(ctx context.Context, path, destination string) (err error) {
	ctx, done := i.observe(ctx, "fetch_file", attribute.String(observability.AttrKey, path))
	defer func() { done(err) }()
	return i.next.FetchFile(ctx, path, destination)
}

func (i *instrumented) PutFile(ctx context.Context, source, destination string) (err error) {
	ctx, done := i.observe(ctx, "put_file", attribute.String(observability.AttrKey, destination))
	defer func() { done(err) }()
	return i.next.PutFile(ctx, source, destination)
}

func (i *instrumented) GetObjectBody(ctx context.Context, path string) (body []byte, err error) {
	ctx, done := i.observe(ctx, "get_object_body", attribute.String(observability.AttrKey, path))
	defer func() { done(err) }()
	body, err = i.next.GetObjectBody(ctx, path)
	if err == nil && i.metrics != nil {
		i.metrics.RecordTransfer(ctx, i.name, "in", int64(len(body)))
	}
	return body, err
}
