// Package accesslog persists the append-only entry access history.
package accesslog

import (
	"context"
	"time"

	"github.com/dmitrijs2005/credvault/internal/models"
)

type Repository interface {
	// Append stores the row and sets its ID.
	Append(ctx context.Context, e *models.AccessLogEntry) error
	// List returns rows for entryID, or every row when entryID is empty,
	// newest first.
	List(ctx context.Context, entryID string) ([]*models.AccessLogEntry, error)
}

// RangeReader is implemented by stores that can export a time window of the
// log, oldest first. The window is [from, to).
type RangeReader interface {
	ListBetween(ctx context.Context, from, to time.Time) ([]*models.AccessLogEntry, error)
}
