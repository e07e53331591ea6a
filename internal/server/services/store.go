// Package services contains the store server's business logic. StoreService
// persists ciphertext on behalf of authenticated principals; it never sees a
// key or a plaintext field.
package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/credvault/internal/common"
	"github.com/dmitrijs2005/credvault/internal/cryptox"
	"github.com/dmitrijs2005/credvault/internal/models"
	"github.com/dmitrijs2005/credvault/internal/repositories/repomanager"
)

type StoreService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	now         func() time.Time
}

func NewStoreService(db *sql.DB, m repomanager.RepositoryManager) *StoreService {
	return &StoreService{
		db:          db,
		repomanager: m,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *StoreService) GetMasterKey(ctx context.Context, principal string) (*models.MasterKeyRecord, error) {
	return s.repomanager.MasterKeys(s.db).Get(ctx, principal)
}

// PutMasterKey stores rec for principal, ignoring rec.PrincipalID. With
// ifAbsent it only inserts and reports whether it did.
func (s *StoreService) PutMasterKey(ctx context.Context, principal string, rec *models.MasterKeyRecord, ifAbsent bool) (bool, error) {
	if rec == nil {
		return false, fmt.Errorf("%w: record is required", common.ErrorValidation)
	}
	rec.PrincipalID = principal
	if !rec.Complete() {
		return false, fmt.Errorf("%w: verifier and salt are required", common.ErrorValidation)
	}
	if _, err := cryptox.ParseParams(rec.KDFParams); err != nil {
		return false, fmt.Errorf("%w: %v", common.ErrorValidation, err)
	}
	now := s.now()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now

	repo := s.repomanager.MasterKeys(s.db)
	if ifAbsent {
		return repo.InsertIfAbsent(ctx, rec)
	}
	if err := repo.Upsert(ctx, rec); err != nil {
		return false, err
	}
	return true, nil
}

func validateEntry(e *models.CredentialEntry) error {
	switch {
	case e == nil:
		return fmt.Errorf("%w: entry is required", common.ErrorValidation)
	case !e.Kind.Valid():
		return fmt.Errorf("%w: unknown kind %q", common.ErrorValidation, e.Kind)
	case e.Name == "":
		return fmt.Errorf("%w: name is required", common.ErrorValidation)
	case len(e.Ciphertext) == 0 || len(e.Nonce) != cryptox.NonceSize:
		return fmt.Errorf("%w: ciphertext and a %d-byte nonce are required", common.ErrorValidation, cryptox.NonceSize)
	}
	return nil
}

// InsertEntry stores a new entry attributed to principal.
func (s *StoreService) InsertEntry(ctx context.Context, principal string, e *models.CredentialEntry) (*models.CredentialEntry, error) {
	if err := validateEntry(e); err != nil {
		return nil, err
	}
	now := s.now()
	e.CreatedBy, e.UpdatedBy = principal, principal
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	if e.UpdatedAt.IsZero() {
		e.UpdatedAt = now
	}
	return s.repomanager.Entries(s.db).Insert(ctx, e)
}

func (s *StoreService) GetEntry(ctx context.Context, id string) (*models.CredentialEntry, error) {
	return s.repomanager.Entries(s.db).GetByID(ctx, id)
}

func (s *StoreService) ListEntries(ctx context.Context) ([]*models.CredentialEntry, error) {
	return s.repomanager.Entries(s.db).List(ctx)
}

// UpdateEntry replaces the entry's mutable columns, attributed to principal.
func (s *StoreService) UpdateEntry(ctx context.Context, principal string, e *models.CredentialEntry) error {
	if err := validateEntry(e); err != nil {
		return err
	}
	if e.ID == "" {
		return fmt.Errorf("%w: id is required", common.ErrorValidation)
	}
	e.UpdatedBy = principal
	if e.UpdatedAt.IsZero() {
		e.UpdatedAt = s.now()
	}
	return s.repomanager.Entries(s.db).Update(ctx, e)
}

func (s *StoreService) DeleteEntry(ctx context.Context, id string) error {
	return s.repomanager.Entries(s.db).Delete(ctx, id)
}

// AppendAccessLog stores e attributed to principal and returns its id.
func (s *StoreService) AppendAccessLog(ctx context.Context, principal string, e *models.AccessLogEntry) (int64, error) {
	if e == nil {
		return 0, fmt.Errorf("%w: entry is required", common.ErrorValidation)
	}
	if _, err := models.ParseAccessAction(string(e.Action)); err != nil {
		return 0, fmt.Errorf("%w: %v", common.ErrorValidation, err)
	}
	e.PrincipalID = principal
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now()
	}
	if err := s.repomanager.AccessLog(s.db).Append(ctx, e); err != nil {
		return 0, err
	}
	return e.ID, nil
}

func (s *StoreService) ListAccessLog(ctx context.Context, entryID string) ([]*models.AccessLogEntry, error) {
	return s.repomanager.AccessLog(s.db).List(ctx, entryID)
}

// ListBetween makes StoreService an accesslog.RangeReader for the archiver.
func (s *StoreService) ListBetween(ctx context.Context, from, to time.Time) ([]*models.AccessLogEntry, error) {
	return s.repomanager.AccessLog(s.db).ListBetween(ctx, from, to)
}

// Ping checks the database connection.
func (s *StoreService) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
