// Package nats implements queue.Queue on a NATS server.
package nats

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	gonats "github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/libcatapult/catapult/errors"
	"github.com/libcatapult/catapult/logger"
	"github.com/libcatapult/catapult/observability"
	"github.com/libcatapult/catapult/queue"
)

const backendName = "nats"

// HeaderMessageID carries a unique id per published message; JetStream
// streams use it to drop duplicates.
const HeaderMessageID = gonats.MsgIdHdr

// Conn is the part of *nats.Conn the queue uses.
type Conn interface {
	PublishMsg(msg *gonats.Msg) error
	FlushWithContext(ctx context.Context) error
	Drain() error
	Close()
}

// Dialer opens a connection.
type Dialer func(url string, opts ...gonats.Option) (Conn, error)

func dial(url string, opts ...gonats.Option) (Conn, error) {
	return gonats.Connect(url, opts...)
}

// Option configures a Queue.
type Option func(*Queue)

// WithDialer replaces nats.Connect, mainly for tests.
func WithDialer(d Dialer) Option {
	return func(q *Queue) { q.dial = d }
}

// WithMetrics records every publish on m.
func WithMetrics(m *observability.Metrics) Option {
	return func(q *Queue) { q.metrics = m }
}

// WithLogger sets the logger. Defaults to logger.Get("queue").
func WithLogger(l *logger.Logger) Option {
	return func(q *Queue) { q.log = l }
}

// Queue publishes to NATS subjects.
type Queue struct {
	cfg     Config
	conn    Conn
	dial    Dialer
	log     *logger.Logger
	metrics *observability.Metrics
}

var _ queue.Queue = (*Queue)(nil)

// New creates an unconnected queue for cfg.URL.
func New(cfg Config, opts ...Option) *Queue {
	cfg.ApplyDefaults()
	q := &Queue{cfg: cfg, dial: dial}
	for _, opt := range opts {
		opt(q)
	}
	if q.log == nil {
		q.log = logger.Get("queue")
	}
	q.log = q.log.WithFields(logger.Fields(logger.FieldServer, cfg.URL))
	return q
}

// Connect dials the server. Calling it again while connected is a no-op.
func (q *Queue) Connect(ctx context.Context) error {
	if q.conn != nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	opts, err := q.options()
	if err != nil {
		return err
	}
	conn, err := q.dial(q.cfg.URL, opts...)
	if err != nil {
		return apperrors.ConnectionFailed("nats").WithCause(err).WithDetail("url", q.cfg.URL)
	}
	q.conn = conn
	q.log.Info("connected")
	return nil
}

func (q *Queue) options() ([]gonats.Option, error) {
	opts := []gonats.Option{
		gonats.Timeout(q.cfg.Timeout),
		gonats.ReconnectWait(q.cfg.ReconnectWait),
		gonats.MaxReconnects(q.cfg.MaxReconnects),
		gonats.DrainTimeout(q.cfg.DrainTimeout),
		gonats.DisconnectErrHandler(func(_ *gonats.Conn, err error) {
			if err != nil {
				q.log.Warn("disconnected", logger.Fields(logger.FieldError, err.Error()))
			}
		}),
		gonats.ReconnectHandler(func(c *gonats.Conn) {
			q.log.Info("reconnected", logger.Fields(logger.FieldServer, c.ConnectedUrl()))
		}),
		gonats.ErrorHandler(func(_ *gonats.Conn, _ *gonats.Subscription, err error) {
			q.log.Error("async error", logger.Fields(logger.FieldError, err.Error()))
		}),
	}
	if q.cfg.Name != "" {
		opts = append(opts, gonats.Name(q.cfg.Name))
	}
	if q.cfg.Username != "" && q.cfg.Password != "" {
		opts = append(opts, gonats.UserInfo(q.cfg.Username, q.cfg.Password))
	}
	if q.cfg.Token != "" {
		opts = append(opts, gonats.Token(q.cfg.Token))
	}
	tlsCfg, err := q.cfg.TLS.Build()
	if err != nil {
		return nil, err
	}
	if tlsCfg != nil {
		opts = append(opts, gonats.Secure(tlsCfg))
	}
	return opts, nil
}

// Publish sends message on channel and waits until the server has it.
func (q *Queue) Publish(ctx context.Context, channel string, message []byte) (err error) {
	start := time.Now()
	ctx, span := observability.StartSpan(ctx, "queue.publish",
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			attribute.String(observability.AttrBackend, backendName),
			attribute.String(observability.AttrChannel, channel),
		),
	)
	defer func() {
		status := publishStatus(err)
		span.SetAttributes(attribute.String(observability.AttrStatus, status))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		if q.metrics == nil {
			return
		}
		q.metrics.RecordOperation(ctx, backendName, "publish", status, time.Since(start))
		if err == nil {
			q.metrics.RecordTransfer(ctx, backendName, "out", int64(len(message)))
		} else if status == "error" {
			q.metrics.RecordError(ctx, "queue", backendName)
		}
	}()
	return q.publish(ctx, channel, message)
}

func publishStatus(err error) string {
	switch apperrors.CodeOf(err) {
	case "":
		if err == nil {
			return "ok"
		}
		return "error"
	case apperrors.ErrCodeNotConnected:
		return "not_connected"
	case apperrors.ErrCodeInvalidInput:
		return "invalid"
	default:
		return "error"
	}
}

func (q *Queue) publish(ctx context.Context, channel string, message []byte) error {
	if q.conn == nil {
		return apperrors.NotConnected("nats queue")
	}
	if channel == "" {
		return apperrors.InvalidInput("channel", "channel must not be empty")
	}

	msg := gonats.NewMsg(channel)
	msg.Data = message
	msg.Header.Set(HeaderMessageID, uuid.NewString())

	if err := q.conn.PublishMsg(msg); err != nil {
		return apperrors.ExternalServiceError("nats", err).WithDetail("channel", channel)
	}
	if err := q.conn.FlushWithContext(ctx); err != nil {
		return apperrors.ExternalServiceError("nats", fmt.Errorf("flush: %w", err)).WithDetail("channel", channel)
	}
	q.log.Debug("published", logger.Fields(logger.FieldChannel, channel, logger.FieldSize, len(message)))
	return nil
}

// Close drains pending messages and closes the connection. Safe to call when
// never connected.
func (q *Queue) Close() error {
	if q.conn == nil {
		return nil
	}
	conn := q.conn
	q.conn = nil
	if err := conn.Drain(); err != nil {
		q.log.WithError(err).Warn("drain failed, closing")
		conn.Close()
		return apperrors.ExternalServiceError("nats", fmt.Errorf("drain: %w", err))
	}
	q.log.Info("closed")
	return nil
}
