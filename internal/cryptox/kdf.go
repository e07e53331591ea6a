// Package cryptox holds the vault's cryptographic primitives: master password
// key derivation and verification, and AES-256-GCM sealing.
//
// A master password and its salt are stretched once with Argon2id. The
// resulting root secret is never used directly: HKDF-SHA256 expands it under
// two distinct labels into the verifier (persisted, used to check future
// password entries) and the vault key (memory only). Knowing the verifier
// does not reveal the key.
package cryptox

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/credvault/internal/common"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/hkdf"
)

const (
	// SaltSize is the length of a freshly generated master key salt.
	SaltSize = 32
	// KeySize is the length of the verifier and the vault key (AES-256).
	KeySize = 32
)

var (
	verifierInfo = []byte("credvault/master-key-verifier/v1")
	vaultKeyInfo = []byte("credvault/vault-key/v1")
	keyCheckInfo = []byte("credvault/key-check/v1")
)

var (
	ErrEmptyPassword = errors.New("password is required")
	ErrEmptySalt     = errors.New("salt is required")
)

// NewSalt returns SaltSize random bytes.
func NewSalt() []byte {
	return common.GenerateRandByteArray(SaltSize)
}

// DeriveKeys stretches (password, salt) with Argon2id and splits the result
// into a verifier and a vault key. Both are deterministic for the same inputs.
// The caller owns the returned key and should wipe it when done.
func DeriveKeys(password, salt []byte, p Params) (verifier, key []byte, err error) {
	if len(password) == 0 {
		return nil, nil, ErrEmptyPassword
	}
	if len(salt) == 0 {
		return nil, nil, ErrEmptySalt
	}
	if err := p.Validate(); err != nil {
		return nil, nil, err
	}

	root := argon2.IDKey(password, salt, p.Time, p.MemoryKiB, p.Threads, KeySize)
	defer common.WipeByteArray(root)

	verifier, err = expand(root, salt, verifierInfo)
	if err != nil {
		return nil, nil, err
	}
	key, err = expand(root, salt, vaultKeyInfo)
	if err != nil {
		return nil, nil, err
	}
	return verifier, key, nil
}

func expand(secret, salt, info []byte) ([]byte, error) {
	out := make([]byte, KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, salt, info), out); err != nil {
		return nil, fmt.Errorf("hkdf expand: %w", err)
	}
	return out, nil
}

// Verify recomputes the verifier for password and compares it with the stored
// one in constant time. A wrong password is reported as false, never as an
// error.
func Verify(password, verifier, salt []byte, p Params) bool {
	_, ok := Authenticate(password, verifier, salt, p)
	return ok
}

// Authenticate is Verify that also hands back the vault key on success, so an
// unlock pays for a single Argon2 run. On failure the key is wiped and nil is
// returned.
func Authenticate(password, verifier, salt []byte, p Params) ([]byte, bool) {
	candidate, key, err := DeriveKeys(password, salt, p)
	if err != nil {
		return nil, false
	}
	if subtle.ConstantTimeCompare(verifier, candidate) != 1 {
		common.WipeByteArray(key)
		return nil, false
	}
	return key, true
}

// KeyCheckValue fingerprints a vault key so a holder can later detect that the
// bytes it keeps in memory have changed. It reveals nothing usable about the key.
func KeyCheckValue(key []byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write(keyCheckInfo)
	return mac.Sum(nil)
}
