// Package entries persists sealed credential entries. The repository stores
// and returns ciphertext only; it has no access to keys.
package entries

import (
	"context"

	"github.com/dmitrijs2005/credvault/internal/models"
)

// Repository is the credential entry table.
//
// Contract:
//   - Insert assigns ID (when empty) and returns the stored entry.
//   - GetByID, Update and Delete return common.ErrorNotFound for unknown ids.
//   - Update writes every column in a single statement, so ciphertext and
//     nonce always change together.
type Repository interface {
	Insert(ctx context.Context, entry *models.CredentialEntry) (*models.CredentialEntry, error)
	GetByID(ctx context.Context, id string) (*models.CredentialEntry, error)
	List(ctx context.Context) ([]*models.CredentialEntry, error)
	Update(ctx context.Context, entry *models.CredentialEntry) error
	Delete(ctx context.Context, id string) error
}
