// Package archive exports the access log to S3-compatible object storage as
// JSON-lines objects on a cron schedule.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/credvault/internal/logging"
	"github.com/dmitrijs2005/credvault/internal/metrics"
	"github.com/dmitrijs2005/credvault/internal/repositories/accesslog"
	"github.com/google/uuid"
)

// Archiver uploads access log rows created in [watermark, now) and advances
// the watermark after each successful upload. The watermark lives in memory,
// so a restart exports the full log again under new object keys.
type Archiver struct {
	reader   accesslog.RangeReader
	uploader Uploader
	logger   logging.Logger
	timeout  time.Duration
	now      func() time.Time

	mu        sync.Mutex
	watermark time.Time
}

func NewArchiver(r accesslog.RangeReader, u Uploader, l logging.Logger, timeout time.Duration) *Archiver {
	return &Archiver{
		reader:   r,
		uploader: u,
		logger:   l.With("module", "archive"),
		timeout:  timeout,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// ObjectKey returns the key an export taken at t is stored under.
func ObjectKey(t time.Time, id uuid.UUID) string {
	t = t.UTC()
	return fmt.Sprintf("audit/%04d/%02d/%02d/%s.jsonl", t.Year(), int(t.Month()), t.Day(), id)
}

// Watermark is the lower bound of the next export.
func (a *Archiver) Watermark() time.Time {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.watermark
}

// RunOnce exports one window. It returns the object key, or "" when there
// was nothing to export.
func (a *Archiver) RunOnce(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	key, err := a.export(ctx)
	metrics.ObserveOperation("archive", err)
	return key, err
}

func (a *Archiver) export(ctx context.Context) (string, error) {
	to := a.now()
	rows, err := a.reader.ListBetween(ctx, a.watermark, to)
	if err != nil {
		return "", fmt.Errorf("read access log: %w", err)
	}
	if len(rows) == 0 {
		a.watermark = to
		return "", nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, r := range rows {
		if err := enc.Encode(r); err != nil {
			return "", fmt.Errorf("encode access log row %d: %w", r.ID, err)
		}
	}

	key := ObjectKey(to, uuid.New())
	if err := a.uploader.Upload(ctx, key, buf.Bytes()); err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}

	a.watermark = to
	a.logger.Info(ctx, "access log archived", "key", key, "rows", len(rows))
	return key, nil
}
