// Package common defines shared constants and sentinel errors used across
// the vault, its stores and transports. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Vault session errors.
	ErrVaultLocked     = errors.New("vault is locked")
	ErrInvalidPassword = errors.New("invalid master password")
	ErrTooManyAttempts = errors.New("too many unlock attempts")

	// ErrDecryption covers both a wrong key and corrupted ciphertext. The two
	// cases must never be reported differently.
	ErrDecryption = errors.New("decryption failed")

	// Master key lifecycle errors.
	ErrSetupRequired     = errors.New("master password is not set up")
	ErrAlreadyConfigured = errors.New("master password is already set up")
	ErrDataIntegrity     = errors.New("master key record is incomplete")
	ErrWeakPassword      = errors.New("master password is too weak")

	// Validation errors.
	ErrorValidation = errors.New("validation error")
)

// UserMessage returns the text shown to a person for err. Wrong passwords get
// a generic message and decryption failures suggest unlocking again, since an
// expired in-memory key is far more common than corrupted data.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrVaultLocked):
		return "The vault is locked. Enter the master password to unlock it."
	case errors.Is(err, ErrInvalidPassword):
		return "Invalid master password."
	case errors.Is(err, ErrTooManyAttempts):
		return "Too many attempts. Wait a moment and try again."
	case errors.Is(err, ErrDecryption):
		return "Could not decrypt this entry. The vault may need to be unlocked again."
	case errors.Is(err, ErrSetupRequired):
		return "No master password has been set up yet."
	case errors.Is(err, ErrAlreadyConfigured):
		return "A master password is already set up."
	case errors.Is(err, ErrDataIntegrity):
		return "The master key record is damaged. Contact an administrator."
	case errors.Is(err, ErrWeakPassword):
		return "The master password is too weak. Choose a longer, less predictable one."
	case errors.Is(err, ErrorNotFound):
		return "Entry not found."
	case errors.Is(err, ErrTokenExpired):
		return "Your session has expired. Sign in again."
	case errors.Is(err, ErrorUnauthorized), errors.Is(err, ErrInvalidToken):
		return "You are not signed in."
	default:
		return err.Error()
	}
}
