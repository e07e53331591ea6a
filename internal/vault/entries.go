package vault

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/credvault/internal/common"
	"github.com/dmitrijs2005/credvault/internal/metrics"
	"github.com/dmitrijs2005/credvault/internal/models"
	"github.com/dmitrijs2005/credvault/internal/sealer"
)

// CreateEntry seals fields and stores a new entry.
func (v *Vault) CreateEntry(ctx context.Context, meta models.EntryMetadata, fields models.PlainFields) (entry *models.CredentialEntry, err error) {
	defer func() { metrics.ObserveOperation("create", err) }()

	if !v.sess.IsUnlocked() {
		return nil, common.ErrVaultLocked
	}
	if !meta.Kind.Valid() {
		return nil, fmt.Errorf("%w: unknown kind %q", common.ErrorValidation, meta.Kind)
	}
	name := strings.TrimSpace(meta.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", common.ErrorValidation)
	}
	principal, err := v.identity.PrincipalID(ctx)
	if err != nil {
		return nil, err
	}

	fields.Username = models.NullableString(fields.Username)
	fields.Notes = models.NullableString(fields.Notes)
	ct, nonce, err := v.sealer.Seal(fields)
	if err != nil {
		return nil, err
	}

	now := v.now()
	entry = &models.CredentialEntry{
		Kind:       meta.Kind,
		Category:   strings.TrimSpace(meta.Category),
		Name:       name,
		Ciphertext: ct,
		Nonce:      nonce,
		URL:        models.NullableString(meta.URL),
		PropertyID: models.NullableString(meta.PropertyID),
		CreatedBy:  principal,
		UpdatedBy:  principal,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	entry, err = v.store.Entries.Insert(ctx, entry)
	if err != nil {
		return nil, fmt.Errorf("insert entry: %w", err)
	}

	v.audit.Record(ctx, entry.ID, principal, models.ActionCreated, entry.Name)
	v.logger.Debug(ctx, "entry created", "entry_id", entry.ID, "kind", string(entry.Kind))
	return entry, nil
}

// GetEntry returns the stored entry. The blob stays sealed.
func (v *Vault) GetEntry(ctx context.Context, id string) (*models.CredentialEntry, error) {
	e, err := v.store.Entries.GetByID(ctx, id)
	metrics.ObserveOperation("get", err)
	return e, err
}

// ListEntries returns every stored entry without decrypting anything.
func (v *Vault) ListEntries(ctx context.Context) ([]*models.CredentialEntry, error) {
	list, err := v.store.Entries.List(ctx)
	metrics.ObserveOperation("list", err)
	return list, err
}

// DecryptEntry opens the entry's blob and records a view.
func (v *Vault) DecryptEntry(ctx context.Context, entry *models.CredentialEntry) (fields models.PlainFields, err error) {
	defer func() { metrics.ObserveOperation("decrypt", err) }()

	if !v.sess.IsUnlocked() {
		return models.PlainFields{}, common.ErrVaultLocked
	}
	principal, err := v.identity.PrincipalID(ctx)
	if err != nil {
		return models.PlainFields{}, err
	}

	fields, err = v.open(ctx, entry)
	if err != nil {
		return models.PlainFields{}, err
	}

	v.audit.Record(ctx, entry.ID, principal, models.ActionViewed, entry.Name)
	return fields, nil
}

// UpdateEntry applies u to the entry with the given id. Sensitive fields are
// merged over the decrypted blob and resealed with a fresh nonce; metadata is
// applied directly. Both land in a single store update. An empty update
// returns the entry unchanged without writing.
func (v *Vault) UpdateEntry(ctx context.Context, id string, u models.EntryUpdate) (entry *models.CredentialEntry, err error) {
	defer func() { metrics.ObserveOperation("update", err) }()

	if !v.sess.IsUnlocked() {
		return nil, common.ErrVaultLocked
	}
	if u.Name != nil && strings.TrimSpace(*u.Name) == "" {
		return nil, fmt.Errorf("%w: name cannot be empty", common.ErrorValidation)
	}
	principal, err := v.identity.PrincipalID(ctx)
	if err != nil {
		return nil, err
	}

	entry, err = v.store.Entries.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.Empty() {
		return entry, nil
	}

	now := v.now()
	if u.TouchesSecret() {
		current, err := v.open(ctx, entry)
		if err != nil {
			return nil, err
		}
		merged := current.Merge(u)
		ct, nonce, err := v.sealer.Seal(merged)
		if err != nil {
			return nil, err
		}
		entry.Ciphertext, entry.Nonce = ct, nonce
		entry.LegacyUsername, entry.LegacyNotes = nil, nil
		if merged.SecretValue != current.SecretValue {
			entry.RotatedAt = &now
		}
	}

	if u.Name != nil {
		entry.Name = strings.TrimSpace(*u.Name)
	}
	if u.Category != nil {
		entry.Category = strings.TrimSpace(*u.Category)
	}
	if u.URL != nil {
		entry.URL = models.NullableString(u.URL)
	}
	if u.PropertyID != nil {
		entry.PropertyID = models.NullableString(u.PropertyID)
	}
	entry.UpdatedBy = principal
	entry.UpdatedAt = now

	if err := v.store.Entries.Update(ctx, entry); err != nil {
		return nil, fmt.Errorf("update entry: %w", err)
	}

	v.audit.Record(ctx, entry.ID, principal, models.ActionUpdated, entry.Name)
	v.logger.Debug(ctx, "entry updated", "entry_id", entry.ID, "resealed", u.TouchesSecret())
	return entry, nil
}

// DeleteEntry records the deletion under the entry's current name and then
// removes it.
func (v *Vault) DeleteEntry(ctx context.Context, id string) (err error) {
	defer func() { metrics.ObserveOperation("delete", err) }()

	if !v.sess.IsUnlocked() {
		return common.ErrVaultLocked
	}
	principal, err := v.identity.PrincipalID(ctx)
	if err != nil {
		return err
	}
	entry, err := v.store.Entries.GetByID(ctx, id)
	if err != nil {
		return err
	}

	v.audit.RecordNow(ctx, entry.ID, principal, models.ActionDeleted, entry.Name)

	if err := v.store.Entries.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	v.logger.Debug(ctx, "entry deleted", "entry_id", id)
	return nil
}

// GetAccessLog returns the history of one entry, or of all entries when
// entryID is empty, newest first.
func (v *Vault) GetAccessLog(ctx context.Context, entryID string) ([]*models.AccessLogEntry, error) {
	list, err := v.store.AccessLog.List(ctx, entryID)
	metrics.ObserveOperation("access_log", err)
	return list, err
}

// open decrypts entry. A decryption failure makes the session re-check its
// key; if the key in memory no longer matches its fingerprint the session
// locks itself.
func (v *Vault) open(ctx context.Context, entry *models.CredentialEntry) (models.PlainFields, error) {
	fields, err := v.sealer.Open(sealer.BlobOf(entry))
	if errors.Is(err, common.ErrDecryption) {
		if !v.sess.CheckIntegrity() {
			v.logger.Error(ctx, "vault key failed its integrity check, session locked")
		} else {
			v.logger.Warn(ctx, "entry could not be decrypted", "entry_id", entry.ID)
		}
	}
	return fields, err
}
