// Package masterkeys stores the per-principal master key verifier and salt.
package masterkeys

import (
	"context"

	"github.com/dmitrijs2005/credvault/internal/models"
)

type Repository interface {
	// Get returns common.ErrorNotFound when the principal has no record.
	Get(ctx context.Context, principalID string) (*models.MasterKeyRecord, error)
	// Upsert inserts the record or replaces verifier, salt and parameters.
	Upsert(ctx context.Context, rec *models.MasterKeyRecord) error
	// InsertIfAbsent inserts the record only when none exists for the
	// principal and reports whether it did.
	InsertIfAbsent(ctx context.Context, rec *models.MasterKeyRecord) (bool, error)
}
