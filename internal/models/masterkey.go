package models

import "time"

// MasterKeyRecord holds what is needed to check a master password and to
// re-derive the vault key from it. It never contains the vault key.
type MasterKeyRecord struct {
	PrincipalID string `json:"principal_id"`
	Verifier    []byte `json:"verifier"`
	Salt        []byte `json:"salt"`
	// KDFParams is the encoded Argon2id cost; empty means the defaults of the
	// time the record was written without it.
	KDFParams string    `json:"kdf_params"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Complete reports whether the record carries everything an unlock needs.
func (r *MasterKeyRecord) Complete() bool {
	return r != nil && r.PrincipalID != "" && len(r.Verifier) > 0 && len(r.Salt) > 0
}
