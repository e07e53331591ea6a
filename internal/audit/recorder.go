// Package audit records entry access events without ever failing the vault
// operation they accompany. Writes run on a bounded, non-blocking ants pool;
// every failure is logged at WARN, counted and dropped.
package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/credvault/internal/logging"
	"github.com/dmitrijs2005/credvault/internal/metrics"
	"github.com/dmitrijs2005/credvault/internal/models"
	"github.com/dmitrijs2005/credvault/internal/repositories/accesslog"
	"github.com/panjf2000/ants/v2"
)

const (
	DefaultPoolSize = 4
	DefaultTimeout  = 5 * time.Second
)

const (
	resultWritten = "written"
	resultFailed  = "failed"
	resultDropped = "dropped"
	resultPanic   = "panic"
)

type Recorder struct {
	repo    accesslog.Repository
	pool    *ants.Pool
	logger  logging.Logger
	timeout time.Duration
	now     func() time.Time
}

type Option func(*Recorder)

// WithTimeout bounds each write and the drain on Close.
func WithTimeout(d time.Duration) Option {
	return func(r *Recorder) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithClock overrides the event timestamp source.
func WithClock(now func() time.Time) Option {
	return func(r *Recorder) { r.now = now }
}

// New starts a recorder with poolSize workers. A non-positive size uses
// DefaultPoolSize.
func New(repo accesslog.Repository, logger logging.Logger, poolSize int, opts ...Option) (*Recorder, error) {
	if poolSize <= 0 {
		poolSize = DefaultPoolSize
	}
	r := &Recorder{
		repo:    repo,
		logger:  logger.With("module", "audit"),
		timeout: DefaultTimeout,
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, o := range opts {
		o(r)
	}

	pool, err := ants.NewPool(poolSize,
		ants.WithNonblocking(true),
		ants.WithPanicHandler(func(v any) {
			metrics.AuditEventsTotal.WithLabelValues(resultPanic).Inc()
			r.logger.Warn(context.Background(), "access log writer panic", "panic", fmt.Sprint(v))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("audit pool: %w", err)
	}
	r.pool = pool
	return r, nil
}

func (r *Recorder) event(entryID, principalID string, action models.AccessAction, entryName string) *models.AccessLogEntry {
	return &models.AccessLogEntry{
		EntryID:     entryID,
		PrincipalID: principalID,
		Action:      action,
		EntryName:   entryName,
		CreatedAt:   r.now(),
	}
}

// Record queues the event and returns immediately. If the pool is saturated
// or closed the event is dropped.
func (r *Recorder) Record(ctx context.Context, entryID, principalID string, action models.AccessAction, entryName string) {
	ctx = context.WithoutCancel(ctx)
	e := r.event(entryID, principalID, action, entryName)
	if err := r.pool.Submit(func() { r.write(ctx, e) }); err != nil {
		metrics.AuditEventsTotal.WithLabelValues(resultDropped).Inc()
		r.logger.Warn(ctx, "access log event dropped", "action", string(action), "entry_id", entryID, "error", err)
	}
}

// RecordNow writes the event before returning. Failures are still swallowed.
func (r *Recorder) RecordNow(ctx context.Context, entryID, principalID string, action models.AccessAction, entryName string) {
	ctx = context.WithoutCancel(ctx)
	defer func() {
		if v := recover(); v != nil {
			metrics.AuditEventsTotal.WithLabelValues(resultPanic).Inc()
			r.logger.Warn(ctx, "access log writer panic", "panic", fmt.Sprint(v))
		}
	}()
	r.write(ctx, r.event(entryID, principalID, action, entryName))
}

func (r *Recorder) write(ctx context.Context, e *models.AccessLogEntry) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if err := r.repo.Append(ctx, e); err != nil {
		metrics.AuditEventsTotal.WithLabelValues(resultFailed).Inc()
		r.logger.Warn(ctx, "access log write failed", "action", string(e.Action), "entry_id", e.EntryID, "error", err)
		return
	}
	metrics.AuditEventsTotal.WithLabelValues(resultWritten).Inc()
}

// Close waits for queued writes to finish, up to the recorder timeout.
func (r *Recorder) Close() {
	if err := r.pool.ReleaseTimeout(r.timeout); err != nil {
		r.logger.Warn(context.Background(), "access log pool did not drain", "error", err)
	}
}
