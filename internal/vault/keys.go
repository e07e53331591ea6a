package vault

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/credvault/internal/common"
	"github.com/dmitrijs2005/credvault/internal/cryptox"
	"github.com/dmitrijs2005/credvault/internal/metrics"
	"github.com/dmitrijs2005/credvault/internal/models"
	"github.com/dmitrijs2005/credvault/internal/sealer"
	"github.com/dmitrijs2005/credvault/internal/session"
)

const (
	unlockOK              = "ok"
	unlockInvalidPassword = "invalid_password"
	unlockThrottled       = "throttled"
	unlockSetupRequired   = "setup_required"
	unlockIntegrity       = "integrity"
	unlockError           = "error"
)

// SetupMasterPassword creates the principal's master key record and leaves
// the vault unlocked under the new key.
func (v *Vault) SetupMasterPassword(ctx context.Context, password string) (rec *models.MasterKeyRecord, err error) {
	defer func() { metrics.ObserveOperation("setup", err) }()

	if err := checkStrength(password, v.cfg.MinPasswordScore); err != nil {
		return nil, err
	}
	principal, err := v.identity.PrincipalID(ctx)
	if err != nil {
		return nil, err
	}

	v.keyMu.Lock()
	defer v.keyMu.Unlock()

	rec, key, err := v.newRecord(principal, password)
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(key)

	if v.cfg.SingleSetup {
		inserted, err := v.store.MasterKeys.InsertIfAbsent(ctx, rec)
		if err != nil {
			return nil, fmt.Errorf("store master key: %w", err)
		}
		if !inserted {
			return nil, common.ErrAlreadyConfigured
		}
	} else if err := v.store.MasterKeys.Upsert(ctx, rec); err != nil {
		return nil, fmt.Errorf("store master key: %w", err)
	}

	if err := v.sess.Install(key); err != nil {
		return nil, err
	}
	v.logger.Info(ctx, "master password set up", "principal_id", principal)
	return rec, nil
}

// ChangeMasterPassword replaces the master key record and re-encrypts the
// entries sealed under the current key. Entries the current key cannot open
// belong to other principals sharing the store and are left as they are. On
// stores with transactions the rewrite and the record replacement commit
// together.
func (v *Vault) ChangeMasterPassword(ctx context.Context, current, next string) (rec *models.MasterKeyRecord, err error) {
	defer func() { metrics.ObserveOperation("change_password", err) }()

	if err := checkStrength(next, v.cfg.MinPasswordScore); err != nil {
		return nil, err
	}
	principal, err := v.identity.PrincipalID(ctx)
	if err != nil {
		return nil, err
	}

	v.keyMu.Lock()
	defer v.keyMu.Unlock()

	old, params, err := v.loadRecord(ctx, principal)
	if err != nil {
		return nil, err
	}
	oldKey, ok := cryptox.Authenticate([]byte(current), old.Verifier, old.Salt, params)
	if !ok {
		return nil, common.ErrInvalidPassword
	}
	defer common.WipeByteArray(oldKey)

	rec, newKey, err := v.newRecord(principal, next)
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(newKey)
	rec.CreatedAt = old.CreatedAt

	from, err := scratchSealer(oldKey)
	if err != nil {
		return nil, err
	}
	defer from.Lock()
	to, err := scratchSealer(newKey)
	if err != nil {
		return nil, err
	}
	defer to.Lock()

	var rewritten, skipped int
	err = v.store.InTx(ctx, func(ctx context.Context, s Store) error {
		list, err := s.Entries.List(ctx)
		if err != nil {
			return err
		}
		// Reseal in memory first so a failure aborts before the first write,
		// even without a transaction.
		own := list[:0]
		for _, e := range list {
			err := v.reseal(e, from.sealer, to.sealer, principal)
			switch {
			case errors.Is(err, common.ErrDecryption):
				skipped++
				continue
			case err != nil:
				return fmt.Errorf("re-encrypt entry %s: %w", e.ID, err)
			}
			own = append(own, e)
		}
		for _, e := range own {
			if err := s.Entries.Update(ctx, e); err != nil {
				return fmt.Errorf("re-encrypt entry %s: %w", e.ID, err)
			}
			rewritten++
		}
		return s.MasterKeys.Upsert(ctx, rec)
	})
	if err != nil {
		return nil, err
	}

	if err := v.sess.Install(newKey); err != nil {
		return nil, err
	}
	v.logger.Info(ctx, "master password changed", "principal_id", principal, "entries", rewritten, "skipped", skipped)
	return rec, nil
}

func (v *Vault) reseal(e *models.CredentialEntry, from, to *sealer.Sealer, principal string) error {
	fields, err := from.Open(sealer.BlobOf(e))
	if err != nil {
		return err
	}
	ct, nonce, err := to.Seal(fields)
	if err != nil {
		return err
	}
	e.Ciphertext, e.Nonce = ct, nonce
	e.LegacyUsername, e.LegacyNotes = nil, nil
	e.UpdatedBy = principal
	e.UpdatedAt = v.now()
	return nil
}

// Unlock verifies password against the stored record and installs the vault
// key. A failed attempt leaves the vault locked.
func (v *Vault) Unlock(ctx context.Context, password string) (err error) {
	result := unlockError
	defer func() {
		metrics.UnlockAttemptsTotal.WithLabelValues(result).Inc()
		metrics.ObserveOperation("unlock", err)
	}()

	if !v.limiter.Allow() {
		result = unlockThrottled
		v.logger.Warn(ctx, "unlock throttled")
		return common.ErrTooManyAttempts
	}
	principal, err := v.identity.PrincipalID(ctx)
	if err != nil {
		return err
	}

	v.keyMu.Lock()
	defer v.keyMu.Unlock()

	rec, params, err := v.loadRecord(ctx, principal)
	switch {
	case errors.Is(err, common.ErrSetupRequired):
		result = unlockSetupRequired
		return err
	case errors.Is(err, common.ErrDataIntegrity):
		result = unlockIntegrity
		v.logger.Error(ctx, "master key record is damaged", "principal_id", principal)
		return err
	case err != nil:
		return err
	}

	key, ok := cryptox.Authenticate([]byte(password), rec.Verifier, rec.Salt, params)
	if !ok {
		v.sess.Lock()
		result = unlockInvalidPassword
		v.logger.Warn(ctx, "unlock failed", "principal_id", principal)
		return common.ErrInvalidPassword
	}
	defer common.WipeByteArray(key)

	if err := v.sess.Install(key); err != nil {
		return err
	}
	result = unlockOK
	v.logger.Info(ctx, "vault unlocked", "principal_id", principal)
	return nil
}

// loadRecord fetches and validates the principal's record.
func (v *Vault) loadRecord(ctx context.Context, principal string) (*models.MasterKeyRecord, cryptox.Params, error) {
	rec, err := v.store.MasterKeys.Get(ctx, principal)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, cryptox.Params{}, common.ErrSetupRequired
		}
		return nil, cryptox.Params{}, fmt.Errorf("load master key: %w", err)
	}
	if !rec.Complete() {
		return nil, cryptox.Params{}, common.ErrDataIntegrity
	}
	params, err := cryptox.ParseParams(rec.KDFParams)
	if err != nil {
		return nil, cryptox.Params{}, fmt.Errorf("%w: %v", common.ErrDataIntegrity, err)
	}
	return rec, params, nil
}

// newRecord derives a fresh salt, verifier and key for password. The caller
// owns the key.
func (v *Vault) newRecord(principal, password string) (*models.MasterKeyRecord, []byte, error) {
	pw := []byte(password)
	defer common.WipeByteArray(pw)

	salt := cryptox.NewSalt()
	verifier, key, err := cryptox.DeriveKeys(pw, salt, v.cfg.Params)
	if err != nil {
		return nil, nil, err
	}
	now := v.now()
	return &models.MasterKeyRecord{
		PrincipalID: principal,
		Verifier:    verifier,
		Salt:        salt,
		KDFParams:   v.cfg.Params.String(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}, key, nil
}

// scratch is a short-lived session used to re-encrypt with a key that is not
// (or no longer) the vault's own.
type scratch struct {
	*session.Session
	sealer *sealer.Sealer
}

func scratchSealer(key []byte) (*scratch, error) {
	s := session.New()
	if err := s.Install(key); err != nil {
		return nil, err
	}
	return &scratch{Session: s, sealer: sealer.New(s)}, nil
}
