package sealer

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/credvault/internal/cryptox"
	"github.com/dmitrijs2005/credvault/internal/models"
)

// canonicalVersion tags the single-blob layout. Version 1 is the legacy
// split layout, which carried no tag at all.
const canonicalVersion = 2

type blobFormat int

const (
	formatLegacy blobFormat = iota
	formatCanonical
)

type canonicalPayload struct {
	Version     *int    `json:"v"`
	SecretValue *string `json:"secret_value"`
	Username    *string `json:"username"`
	Notes       *string `json:"notes"`
}

// decoded is the internal variant produced by a decode attempt; it is always
// normalised to models.PlainFields before leaving the package.
type decoded struct {
	format blobFormat
	fields models.PlainFields
}

func encodeCanonical(f models.PlainFields) ([]byte, error) {
	v := canonicalVersion
	secret := f.SecretValue
	b, err := json.Marshal(canonicalPayload{
		Version:     &v,
		SecretValue: &secret,
		Username:    models.NullableString(f.Username),
		Notes:       models.NullableString(f.Notes),
	})
	if err != nil {
		return nil, fmt.Errorf("encode entry: %w", err)
	}
	return b, nil
}

// decode tries the canonical layout first. Anything that is not a JSON object
// with exactly the canonical fields and version tag is treated as legacy.
func decode(plaintext []byte) decoded {
	dec := json.NewDecoder(bytes.NewReader(plaintext))
	dec.DisallowUnknownFields()

	var p canonicalPayload
	if err := dec.Decode(&p); err != nil || dec.More() {
		return decoded{format: formatLegacy}
	}
	if p.Version == nil || *p.Version != canonicalVersion || p.SecretValue == nil {
		return decoded{format: formatLegacy}
	}
	return decoded{
		format: formatCanonical,
		fields: models.PlainFields{
			SecretValue: *p.SecretValue,
			Username:    models.NullableString(p.Username),
			Notes:       models.NullableString(p.Notes),
		},
	}
}

func openLegacy(key, secret []byte, b Blob) (models.PlainFields, error) {
	out := models.PlainFields{SecretValue: string(secret)}

	username, err := openLegacyField(key, b.LegacyUsername, b.Nonce)
	if err != nil {
		return models.PlainFields{}, err
	}
	notes, err := openLegacyField(key, b.LegacyNotes, b.Nonce)
	if err != nil {
		return models.PlainFields{}, err
	}
	out.Username = username
	out.Notes = notes
	return out, nil
}

// openLegacyField treats an empty column like NULL: a sealed field always
// carries at least the GCM tag.
func openLegacyField(key, ciphertext, nonce []byte) (*string, error) {
	if len(ciphertext) == 0 {
		return nil, nil
	}
	pt, err := cryptox.Open(key, ciphertext, nonce)
	if err != nil {
		return nil, err
	}
	s := string(pt)
	return models.NullableString(&s), nil
}
