package masterkeys

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/credvault/internal/common"
	"github.com/dmitrijs2005/credvault/internal/dbx"
	"github.com/dmitrijs2005/credvault/internal/models"
)

type SQLRepository struct {
	db dbx.DBTX
}

func NewSQLRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db}
}

func (r *SQLRepository) Get(ctx context.Context, principalID string) (*models.MasterKeyRecord, error) {
	query := `
		SELECT principal_id, verifier, salt, kdf_params, created_at, updated_at
		FROM master_keys WHERE principal_id = $1
	`
	var (
		rec            models.MasterKeyRecord
		verifier, salt string
	)
	err := r.db.QueryRowContext(ctx, query, principalID).
		Scan(&rec.PrincipalID, &verifier, &salt, &rec.KDFParams, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if rec.Verifier, err = dbx.DecodeBytes(verifier); err != nil {
		return nil, err
	}
	if rec.Salt, err = dbx.DecodeBytes(salt); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *SQLRepository) Upsert(ctx context.Context, rec *models.MasterKeyRecord) error {
	query := `
		INSERT INTO master_keys (principal_id, verifier, salt, kdf_params, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (principal_id) DO UPDATE SET
			verifier = excluded.verifier,
			salt = excluded.salt,
			kdf_params = excluded.kdf_params,
			updated_at = excluded.updated_at
	`
	_, err := r.db.ExecContext(ctx, query, rec.PrincipalID,
		dbx.EncodeBytes(rec.Verifier), dbx.EncodeBytes(rec.Salt), rec.KDFParams,
		rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *SQLRepository) InsertIfAbsent(ctx context.Context, rec *models.MasterKeyRecord) (bool, error) {
	query := `
		INSERT INTO master_keys (principal_id, verifier, salt, kdf_params, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (principal_id) DO NOTHING
	`
	res, err := r.db.ExecContext(ctx, query, rec.PrincipalID,
		dbx.EncodeBytes(rec.Verifier), dbx.EncodeBytes(rec.Salt), rec.KDFParams,
		rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected error: %w", err)
	}
	return n == 1, nil
}
