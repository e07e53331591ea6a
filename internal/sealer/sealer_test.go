package sealer

import (
	"testing"

	"github.com/dmitrijs2005/credvault/internal/common"
	"github.com/dmitrijs2005/credvault/internal/cryptox"
	"github.com/dmitrijs2005/credvault/internal/models"
	"github.com/dmitrijs2005/credvault/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unlockedSealer(t *testing.T) (*Sealer, *session.Session) {
	t.Helper()
	s := session.New()
	require.NoError(t, s.Install(common.GenerateRandByteArray(cryptox.KeySize)))
	return New(s), s
}

var roundTripCases = []struct {
	name   string
	fields models.PlainFields
}{
	{"secret only", models.PlainFields{SecretValue: "1234"}},
	{"all fields", models.PlainFields{SecretValue: "hunter2", Username: models.StringPtr("svc-backup"), Notes: models.StringPtr("rotate quarterly")}},
	{"empty secret", models.PlainFields{SecretValue: ""}},
	{"unicode", models.PlainFields{SecretValue: "пароль-🔐", Notes: models.StringPtr("ключ под ковриком")}},
	{"json-looking secret", models.PlainFields{SecretValue: `{"v":2}`, Username: models.StringPtr(`"quoted"`)}},
	{"multiline notes", models.PlainFields{SecretValue: "x", Notes: models.StringPtr("line1\nline2\n")}},
}

func TestSealOpen_RoundTrip(t *testing.T) {
	sl, _ := unlockedSealer(t)
	for _, tc := range roundTripCases {
		t.Run(tc.name, func(t *testing.T) {
			ct, nonce, err := sl.Seal(tc.fields)
			require.NoError(t, err)

			got, err := sl.Open(Blob{Ciphertext: ct, Nonce: nonce})
			require.NoError(t, err)
			assert.Equal(t, tc.fields, got)
		})
	}
}

func TestSeal_EmptyOptionalFieldsComeBackNil(t *testing.T) {
	sl, _ := unlockedSealer(t)
	ct, nonce, err := sl.Seal(models.PlainFields{SecretValue: "1", Username: models.StringPtr(""), Notes: models.StringPtr("")})
	require.NoError(t, err)

	got, err := sl.Open(Blob{Ciphertext: ct, Nonce: nonce})
	require.NoError(t, err)
	assert.Nil(t, got.Username)
	assert.Nil(t, got.Notes)
}

func TestSeal_NoncesPairwiseDistinct(t *testing.T) {
	sl, _ := unlockedSealer(t)
	fields := models.PlainFields{SecretValue: "1234"}

	const n = 200
	seen := make(map[string]struct{}, n)
	for i := 0; i < n; i++ {
		_, nonce, err := sl.Seal(fields)
		require.NoError(t, err)
		_, dup := seen[string(nonce)]
		require.Falsef(t, dup, "nonce reused on seal %d", i)
		seen[string(nonce)] = struct{}{}
	}
}

func TestSealOpen_LockedSession(t *testing.T) {
	sl, s := unlockedSealer(t)
	ct, nonce, err := sl.Seal(models.PlainFields{SecretValue: "1234"})
	require.NoError(t, err)

	s.Lock()

	_, _, err = sl.Seal(models.PlainFields{SecretValue: "5678"})
	require.ErrorIs(t, err, common.ErrVaultLocked)

	_, err = sl.Open(Blob{Ciphertext: ct, Nonce: nonce})
	require.ErrorIs(t, err, common.ErrVaultLocked)
}

func TestOpen_WrongKeyAndCorruptionLookTheSame(t *testing.T) {
	sl, _ := unlockedSealer(t)
	ct, nonce, err := sl.Seal(models.PlainFields{SecretValue: "1234"})
	require.NoError(t, err)

	other, _ := unlockedSealer(t)
	_, errKey := other.Open(Blob{Ciphertext: ct, Nonce: nonce})

	bad := common.CloneBytes(ct)
	bad[len(bad)-1] ^= 0x01
	_, errCorrupt := sl.Open(Blob{Ciphertext: bad, Nonce: nonce})

	require.ErrorIs(t, errKey, common.ErrDecryption)
	require.ErrorIs(t, errCorrupt, common.ErrDecryption)
	assert.Equal(t, errKey.Error(), errCorrupt.Error())
}

func TestOpen_LegacyMatchesCanonical(t *testing.T) {
	sl, _ := unlockedSealer(t)
	for _, tc := range roundTripCases {
		t.Run(tc.name, func(t *testing.T) {
			legacy, err := sl.SealLegacy(tc.fields)
			require.NoError(t, err)

			ct, nonce, err := sl.Seal(tc.fields)
			require.NoError(t, err)

			fromLegacy, err := sl.Open(legacy)
			require.NoError(t, err)
			fromCanonical, err := sl.Open(Blob{Ciphertext: ct, Nonce: nonce})
			require.NoError(t, err)

			assert.Equal(t, fromCanonical, fromLegacy)
		})
	}
}

func TestOpen_LegacyJSONObjectSecretStaysLegacy(t *testing.T) {
	sl, _ := unlockedSealer(t)
	fields := models.PlainFields{SecretValue: `{"user":"admin","pass":"x"}`, Username: models.StringPtr("admin")}

	legacy, err := sl.SealLegacy(fields)
	require.NoError(t, err)

	got, err := sl.Open(legacy)
	require.NoError(t, err)
	assert.Equal(t, fields, got)
}

func TestOpen_LegacyTamperedFieldFails(t *testing.T) {
	sl, _ := unlockedSealer(t)
	legacy, err := sl.SealLegacy(models.PlainFields{SecretValue: "1234", Notes: models.StringPtr("n")})
	require.NoError(t, err)

	legacy.LegacyNotes[0] ^= 0xff
	_, err = sl.Open(legacy)
	require.ErrorIs(t, err, common.ErrDecryption)
}

func TestOpen_LegacyEmptyColumnIsAbsent(t *testing.T) {
	sl, _ := unlockedSealer(t)
	legacy, err := sl.SealLegacy(models.PlainFields{SecretValue: "1234", Notes: models.StringPtr("n")})
	require.NoError(t, err)

	legacy.LegacyUsername = []byte{}
	got, err := sl.Open(legacy)
	require.NoError(t, err)
	assert.Nil(t, got.Username)
	require.NotNil(t, got.Notes)
	assert.Equal(t, "n", *got.Notes)
}

func TestBlobOf(t *testing.T) {
	e := &models.CredentialEntry{Ciphertext: []byte("c"), Nonce: []byte("n"), LegacyNotes: []byte("l")}
	assert.Equal(t, Blob{Ciphertext: []byte("c"), Nonce: []byte("n"), LegacyNotes: []byte("l")}, BlobOf(e))
}

func TestDecode_Variants(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want blobFormat
	}{
		{"canonical", `{"v":2,"secret_value":"1","username":null,"notes":null}`, formatCanonical},
		{"bare secret", `1234`, formatLegacy},
		{"other version", `{"v":3,"secret_value":"1"}`, formatLegacy},
		{"missing version", `{"secret_value":"1"}`, formatLegacy},
		{"unknown field", `{"v":2,"secret_value":"1","pin":"9"}`, formatLegacy},
		{"trailing data", `{"v":2,"secret_value":"1"} {}`, formatLegacy},
		{"not json", `correct horse`, formatLegacy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, decode([]byte(tt.in)).format)
		})
	}
}
