package dbx

import (
	"database/sql"
	"encoding/base64"
	"fmt"
	"time"
)

// Binary values (ciphertexts, nonces, salts, verifiers) are stored as
// standard base64 text so both dialects use plain TEXT columns.

// EncodeBytes encodes b for a TEXT column.
func EncodeBytes(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

// EncodeNullBytes encodes b for a nullable TEXT column; nil becomes NULL.
func EncodeNullBytes(b []byte) sql.NullString {
	if b == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: EncodeBytes(b), Valid: true}
}

// DecodeBytes reverses EncodeBytes.
func DecodeBytes(s string) ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decode column: %w", err)
	}
	return b, nil
}

// DecodeNullBytes reverses EncodeNullBytes; NULL becomes nil.
func DecodeNullBytes(ns sql.NullString) ([]byte, error) {
	if !ns.Valid {
		return nil, nil
	}
	return DecodeBytes(ns.String)
}

// NullString maps an optional string to a nullable column.
func NullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// StringPtr maps a nullable column back to an optional string.
func StringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

// NullTime maps an optional timestamp to a nullable column.
func NullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// TimePtr maps a nullable timestamp column back to an optional time.
func TimePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}
