package entries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/credvault/internal/common"
	"github.com/dmitrijs2005/credvault/internal/dbx"
	"github.com/dmitrijs2005/credvault/internal/models"
	"github.com/google/uuid"
)

const selectColumns = `id, kind, category, name, ciphertext, nonce, legacy_username, legacy_notes,
		url, property_id, created_by, updated_by, created_at, updated_at, rotated_at`

// SQLRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
// The statements are valid for both PostgreSQL (pgx) and SQLite.
type SQLRepository struct {
	db dbx.DBTX
}

// NewSQLRepository constructs a repository bound to the given DBTX.
func NewSQLRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db}
}

func (r *SQLRepository) Insert(ctx context.Context, entry *models.CredentialEntry) (*models.CredentialEntry, error) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	query := `
		INSERT INTO credential_entries (id, kind, category, name, ciphertext, nonce,
			legacy_username, legacy_notes, url, property_id,
			created_by, updated_by, created_at, updated_at, rotated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err := r.db.ExecContext(ctx, query,
		entry.ID, string(entry.Kind), entry.Category, entry.Name,
		dbx.EncodeBytes(entry.Ciphertext), dbx.EncodeBytes(entry.Nonce),
		dbx.EncodeNullBytes(entry.LegacyUsername), dbx.EncodeNullBytes(entry.LegacyNotes),
		dbx.NullString(entry.URL), dbx.NullString(entry.PropertyID),
		entry.CreatedBy, entry.UpdatedBy, entry.CreatedAt, entry.UpdatedAt, dbx.NullTime(entry.RotatedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return entry, nil
}

func (r *SQLRepository) GetByID(ctx context.Context, id string) (*models.CredentialEntry, error) {
	query := `SELECT ` + selectColumns + ` FROM credential_entries WHERE id = $1`
	entry, err := scanEntry(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return entry, nil
}

func (r *SQLRepository) List(ctx context.Context) ([]*models.CredentialEntry, error) {
	query := `SELECT ` + selectColumns + ` FROM credential_entries ORDER BY name, id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select entries: %w", err)
	}
	defer rows.Close()

	var result []*models.CredentialEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLRepository) Update(ctx context.Context, entry *models.CredentialEntry) error {
	query := `
		UPDATE credential_entries SET
			kind = $2, category = $3, name = $4,
			ciphertext = $5, nonce = $6, legacy_username = $7, legacy_notes = $8,
			url = $9, property_id = $10,
			updated_by = $11, updated_at = $12, rotated_at = $13
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query,
		entry.ID, string(entry.Kind), entry.Category, entry.Name,
		dbx.EncodeBytes(entry.Ciphertext), dbx.EncodeBytes(entry.Nonce),
		dbx.EncodeNullBytes(entry.LegacyUsername), dbx.EncodeNullBytes(entry.LegacyNotes),
		dbx.NullString(entry.URL), dbx.NullString(entry.PropertyID),
		entry.UpdatedBy, entry.UpdatedAt, dbx.NullTime(entry.RotatedAt),
	)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOneRow(res)
}

func (r *SQLRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM credential_entries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOneRow(res)
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrorNotFound
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (*models.CredentialEntry, error) {
	var (
		e                           models.CredentialEntry
		kind, ciphertext, nonce     string
		legacyUsername, legacyNotes sql.NullString
		url, propertyID             sql.NullString
		rotatedAt                   sql.NullTime
	)
	if err := row.Scan(
		&e.ID, &kind, &e.Category, &e.Name, &ciphertext, &nonce, &legacyUsername, &legacyNotes,
		&url, &propertyID, &e.CreatedBy, &e.UpdatedBy, &e.CreatedAt, &e.UpdatedAt, &rotatedAt,
	); err != nil {
		return nil, err
	}

	var err error
	e.Kind = models.EntryKind(kind)
	if e.Ciphertext, err = dbx.DecodeBytes(ciphertext); err != nil {
		return nil, err
	}
	if e.Nonce, err = dbx.DecodeBytes(nonce); err != nil {
		return nil, err
	}
	if e.LegacyUsername, err = dbx.DecodeNullBytes(legacyUsername); err != nil {
		return nil, err
	}
	if e.LegacyNotes, err = dbx.DecodeNullBytes(legacyNotes); err != nil {
		return nil, err
	}
	e.URL = dbx.StringPtr(url)
	e.PropertyID = dbx.StringPtr(propertyID)
	e.RotatedAt = dbx.TimePtr(rotatedAt)
	return &e, nil
}
