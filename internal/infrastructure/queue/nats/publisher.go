package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/mark-aronson/purdue-syllabi-analyzer/internal/core/domain"
	"github.com/mark-aronson/purdue-syllabi-analyzer/internal/infrastructure/resilience"
)

const DefaultSubject = "syllabi.records"

// RecordEvent announces a record committed to a scope's result file.
type RecordEvent struct {
	Scope       string          `json:"scope"`
	SourceFile  string          `json:"source_file"`
	Outcome     string          `json:"outcome"`
	Decision    domain.Decision `json:"decision,omitempty"`
	CourseKey   string          `json:"course_key,omitempty"`
	Error       string          `json:"error,omitempty"`
	CommittedAt time.Time       `json:"committed_at"`
}

type conn interface {
	Publish(subject string, data []byte) error
}

// Publisher sends a RecordEvent per committed record. Delivery is best
// effort: core NATS publishes are fire-and-forget.
type Publisher struct {
	nc       *nats.Conn
	conn     conn
	subject  string
	executor *resilience.Executor
	now      func() time.Time
}

type Options struct {
	ConnectTimeout     time.Duration
	ReconnectWait      time.Duration
	MaxReconnects      int
	ResilienceExecutor *resilience.Executor
	Logger             *slog.Logger
}

func NewPublisher(url, subject string, options Options) (*Publisher, error) {
	connectTimeout := options.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 2 * time.Second
	}
	reconnectWait := options.ReconnectWait
	if reconnectWait <= 0 {
		reconnectWait = 2 * time.Second
	}
	maxReconnects := options.MaxReconnects
	if maxReconnects <= 0 {
		maxReconnects = 60
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}

	nc, err := nats.Connect(
		url,
		nats.Name("purdue-syllabi-analyzer"),
		nats.Timeout(connectTimeout),
		nats.ReconnectWait(reconnectWait),
		nats.MaxReconnects(maxReconnects),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("nats_disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("nats_reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}

	p := newPublisher(nc, subject, options.ResilienceExecutor)
	p.nc = nc
	return p, nil
}

func newPublisher(c conn, subject string, executor *resilience.Executor) *Publisher {
	if subject == "" {
		subject = DefaultSubject
	}
	return &Publisher{
		conn:     c,
		subject:  subject,
		executor: executor,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Close flushes buffered events and closes the connection.
func (p *Publisher) Close() error {
	if p.nc == nil {
		return nil
	}
	defer p.nc.Close()
	return p.nc.FlushTimeout(5 * time.Second)
}

func (p *Publisher) RecordCommitted(ctx context.Context, scopeKey string, rec domain.Record) error {
	payload, err := json.Marshal(p.event(scopeKey, rec))
	if err != nil {
		return fmt.Errorf("marshal record event: %w", err)
	}

	call := func(_ context.Context) error {
		if err := p.conn.Publish(p.subject, payload); err != nil {
			return fmt.Errorf("nats publish: %w", err)
		}
		return nil
	}
	if p.executor == nil {
		return call(ctx)
	}
	return p.executor.Execute(ctx, "nats.publish", call, countsAgainstBreaker)
}

func (p *Publisher) event(scopeKey string, rec domain.Record) RecordEvent {
	event := RecordEvent{
		Scope:       scopeKey,
		SourceFile:  rec.SourceFile,
		Outcome:     string(domain.OutcomeReviewed),
		CommittedAt: p.now(),
	}
	if rec.IsError() {
		event.Outcome = string(domain.OutcomeError)
		event.Error = rec.Error
		return event
	}
	event.Decision = rec.Review.CourseAnalysis.ReviewDecision.Decision
	if cn := rec.Review.CourseNumber(); cn != "" {
		event.CourseKey = domain.NormalizeCourse(cn)
	}
	return event
}

func countsAgainstBreaker(err error) bool {
	return !errors.Is(err, context.Canceled) && !errors.Is(err, nats.ErrBadSubject)
}
