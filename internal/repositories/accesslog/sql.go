package accesslog

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/credvault/internal/dbx"
	"github.com/dmitrijs2005/credvault/internal/models"
)

const selectColumns = `id, entry_id, principal_id, action, entry_name, created_at`

type SQLRepository struct {
	db dbx.DBTX
}

func NewSQLRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db}
}

func (r *SQLRepository) Append(ctx context.Context, e *models.AccessLogEntry) error {
	query := `
		INSERT INTO access_log (entry_id, principal_id, action, entry_name, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query,
		e.EntryID, e.PrincipalID, string(e.Action), e.EntryName, e.CreatedAt).Scan(&e.ID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *SQLRepository) List(ctx context.Context, entryID string) ([]*models.AccessLogEntry, error) {
	if entryID == "" {
		return r.query(ctx, `SELECT `+selectColumns+` FROM access_log ORDER BY created_at DESC, id DESC`)
	}
	return r.query(ctx,
		`SELECT `+selectColumns+` FROM access_log WHERE entry_id = $1 ORDER BY created_at DESC, id DESC`, entryID)
}

func (r *SQLRepository) ListBetween(ctx context.Context, from, to time.Time) ([]*models.AccessLogEntry, error) {
	return r.query(ctx,
		`SELECT `+selectColumns+` FROM access_log WHERE created_at >= $1 AND created_at < $2 ORDER BY created_at, id`,
		from, to)
}

func (r *SQLRepository) query(ctx context.Context, query string, args ...any) ([]*models.AccessLogEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select access log: %w", err)
	}
	defer rows.Close()

	var result []*models.AccessLogEntry
	for rows.Next() {
		var (
			e      models.AccessLogEntry
			action string
		)
		if err := rows.Scan(&e.ID, &e.EntryID, &e.PrincipalID, &action, &e.EntryName, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Action = models.AccessAction(action)
		result = append(result, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
