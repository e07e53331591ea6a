// Package models defines the vault's persisted records and the plaintext
// shapes that exist only inside an unlocked session.
package models

import (
	"fmt"
	"time"
)

// EntryKind classifies a credential entry.
type EntryKind string

const (
	EntryKindPropertyCode   EntryKind = "property_code"
	EntryKindServiceAccount EntryKind = "service_account"
	EntryKindInternalSystem EntryKind = "internal_system"
)

// Valid reports whether k is one of the known kinds.
func (k EntryKind) Valid() bool {
	switch k {
	case EntryKindPropertyCode, EntryKindServiceAccount, EntryKindInternalSystem:
		return true
	}
	return false
}

// ParseEntryKind accepts the stored spelling of a kind.
func ParseEntryKind(s string) (EntryKind, error) {
	k := EntryKind(s)
	if !k.Valid() {
		return "", fmt.Errorf("unknown entry kind %q", s)
	}
	return k, nil
}

// CredentialEntry is a stored secret. The store only ever sees ciphertext:
// Ciphertext and Nonce are the sealed blob and are always written together.
type CredentialEntry struct {
	ID       string    `json:"id"`
	Kind     EntryKind `json:"kind"`
	Category string    `json:"category"`
	Name     string    `json:"name"`

	Ciphertext []byte `json:"ciphertext"`
	Nonce      []byte `json:"nonce"`

	// LegacyUsername and LegacyNotes hold the separately encrypted fields of
	// the old split layout, sealed under Nonce. Every new write clears them.
	LegacyUsername []byte `json:"legacy_username,omitempty"`
	LegacyNotes    []byte `json:"legacy_notes,omitempty"`

	URL        *string `json:"url,omitempty"`
	PropertyID *string `json:"property_id,omitempty"`

	CreatedBy string    `json:"created_by"`
	UpdatedBy string    `json:"updated_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	// RotatedAt changes only when the secret value itself changes.
	RotatedAt *time.Time `json:"rotated_at,omitempty"`
}

// IsLegacy reports whether the record still uses the split-field layout.
func (e *CredentialEntry) IsLegacy() bool {
	return e.LegacyUsername != nil || e.LegacyNotes != nil
}

// EntryMetadata is the non-sensitive part of an entry supplied on create.
type EntryMetadata struct {
	Kind       EntryKind
	Category   string
	Name       string
	URL        *string
	PropertyID *string
}

// EntryUpdate lists the fields to change. A nil pointer leaves the field as
// is. For nullable fields (URL, PropertyID, Username, Notes) a pointer to an
// empty string clears the value.
type EntryUpdate struct {
	Name       *string
	Category   *string
	URL        *string
	PropertyID *string

	SecretValue *string
	Username    *string
	Notes       *string
}

// TouchesSecret reports whether the update requires re-encrypting the blob.
func (u EntryUpdate) TouchesSecret() bool {
	return u.SecretValue != nil || u.Username != nil || u.Notes != nil
}

// Empty reports whether the update changes nothing.
func (u EntryUpdate) Empty() bool {
	return !u.TouchesSecret() && u.Name == nil && u.Category == nil && u.URL == nil && u.PropertyID == nil
}
