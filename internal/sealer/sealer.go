// Package sealer is the vault's encryption engine. It turns the plaintext
// fields of an entry into one authenticated blob under the session key and
// back. It performs no I/O and never sees a key outside the session's
// WithKey callback.
package sealer

import (
	"github.com/dmitrijs2005/credvault/internal/common"
	"github.com/dmitrijs2005/credvault/internal/cryptox"
	"github.com/dmitrijs2005/credvault/internal/models"
)

// KeyHolder is implemented by *session.Session.
type KeyHolder interface {
	WithKey(fn func(key []byte) error) error
}

// Blob is a sealed entry as stored: the canonical ciphertext and nonce, plus
// the split-field ciphertexts of records written in the legacy layout.
type Blob struct {
	Ciphertext     []byte
	Nonce          []byte
	LegacyUsername []byte
	LegacyNotes    []byte
}

// BlobOf extracts the sealed parts of a stored entry.
func BlobOf(e *models.CredentialEntry) Blob {
	return Blob{
		Ciphertext:     e.Ciphertext,
		Nonce:          e.Nonce,
		LegacyUsername: e.LegacyUsername,
		LegacyNotes:    e.LegacyNotes,
	}
}

// Sealer seals and opens entry blobs with the key held by a session.
type Sealer struct {
	keys KeyHolder
}

// New returns a Sealer gated by keys.
func New(keys KeyHolder) *Sealer {
	return &Sealer{keys: keys}
}

// Seal encodes fields canonically and encrypts them with a fresh nonce.
// Fails with common.ErrVaultLocked when the session is locked.
func (s *Sealer) Seal(fields models.PlainFields) (ciphertext, nonce []byte, err error) {
	plaintext, err := encodeCanonical(fields)
	if err != nil {
		return nil, nil, err
	}
	defer common.WipeByteArray(plaintext)

	err = s.keys.WithKey(func(key []byte) error {
		var sealErr error
		ciphertext, nonce, sealErr = cryptox.Seal(key, plaintext)
		return sealErr
	})
	if err != nil {
		return nil, nil, err
	}
	return ciphertext, nonce, nil
}

// Open authenticates and decrypts b. Canonical and legacy blobs produce the
// same PlainFields. Any authentication failure is common.ErrDecryption.
func (s *Sealer) Open(b Blob) (models.PlainFields, error) {
	var out models.PlainFields
	err := s.keys.WithKey(func(key []byte) error {
		plaintext, err := cryptox.Open(key, b.Ciphertext, b.Nonce)
		if err != nil {
			return err
		}
		defer common.WipeByteArray(plaintext)

		d := decode(plaintext)
		switch d.format {
		case formatCanonical:
			out = d.fields
			return nil
		default:
			out, err = openLegacy(key, plaintext, b)
			return err
		}
	})
	if err != nil {
		return models.PlainFields{}, err
	}
	return out, nil
}

// SealLegacy writes fields in the old split layout: the bare secret value as
// the main ciphertext and username and notes sealed separately under the same
// nonce. New records are never written this way; it exists so migration
// paths can be exercised against real legacy blobs.
func (s *Sealer) SealLegacy(fields models.PlainFields) (Blob, error) {
	var b Blob
	err := s.keys.WithKey(func(key []byte) error {
		nonce := common.GenerateRandByteArray(cryptox.NonceSize)
		ct, err := cryptox.SealWithNonce(key, nonce, []byte(fields.SecretValue))
		if err != nil {
			return err
		}
		b = Blob{Ciphertext: ct, Nonce: nonce}
		if fields.Username != nil {
			if b.LegacyUsername, err = cryptox.SealWithNonce(key, nonce, []byte(*fields.Username)); err != nil {
				return err
			}
		}
		if fields.Notes != nil {
			if b.LegacyNotes, err = cryptox.SealWithNonce(key, nonce, []byte(*fields.Notes)); err != nil {
				return err
			}
		}
		return nil
	})
	return b, err
}
