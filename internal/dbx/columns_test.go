package dbx

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBytesColumns(t *testing.T) {
	enc := EncodeBytes([]byte{0, 1, 2, 250})
	got, err := DecodeBytes(enc)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 1, 2, 250}, got)

	_, err = DecodeBytes("%%%")
	require.Error(t, err)

	assert.False(t, EncodeNullBytes(nil).Valid)
	null, err := DecodeNullBytes(sql.NullString{})
	require.NoError(t, err)
	assert.Nil(t, null)

	some, err := DecodeNullBytes(EncodeNullBytes([]byte("x")))
	require.NoError(t, err)
	assert.Equal(t, []byte("x"), some)
}

func TestNullableColumns(t *testing.T) {
	assert.Nil(t, StringPtr(NullString(nil)))
	s := "https://gate.example"
	assert.Equal(t, s, *StringPtr(NullString(&s)))

	assert.Nil(t, TimePtr(NullTime(nil)))
	now := time.Now().UTC()
	assert.True(t, now.Equal(*TimePtr(NullTime(&now))))
}
