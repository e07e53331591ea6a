package rpc

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/credvault/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
)

// overWire marshals in as protobuf and decodes the bytes into out.
func overWire(t *testing.T, in, out wireMessage) {
	t.Helper()
	b, err := proto.Marshal(toWire(in))
	require.NoError(t, err)
	reply := newWire(out.protoName())
	require.NoError(t, proto.Unmarshal(b, reply))
	out.decode(reply)
}

func TestStoreFile_DescribesEveryMethod(t *testing.T) {
	sd := StoreFile.Services().ByName("StoreService")
	require.NotNil(t, sd)
	assert.Equal(t, ServiceName, string(sd.FullName()))
	require.Equal(t, len(StoreServiceDesc.Methods), sd.Methods().Len())
	for _, m := range StoreServiceDesc.Methods {
		assert.NotNil(t, sd.Methods().ByName(protoreflect.Name(m.MethodName)), m.MethodName)
	}
}

func TestEntry_OverWire(t *testing.T) {
	url := "https://payroll.internal"
	blank := ""
	created := time.Date(2025, 3, 1, 10, 0, 0, 123, time.UTC)
	rotated := created.Add(time.Hour)
	in := &models.CredentialEntry{
		ID:             "e1",
		Kind:           models.EntryKindServiceAccount,
		Category:       "hr",
		Name:           "Payroll API",
		Ciphertext:     []byte{1, 2, 3},
		Nonce:          []byte{4, 5, 6},
		LegacyUsername: []byte{},
		URL:            &url,
		PropertyID:     &blank,
		CreatedBy:      "ops-1",
		UpdatedBy:      "ops-2",
		CreatedAt:      created,
		UpdatedAt:      created,
		RotatedAt:      &rotated,
	}

	var out EntryResponse
	overWire(t, &EntryResponse{Entry: in}, &out)
	require.NotNil(t, out.Entry)
	assert.Equal(t, in, out.Entry)
	assert.NotNil(t, out.Entry.LegacyUsername, "present empty bytes stay present")
	assert.Nil(t, out.Entry.LegacyNotes)
}

func TestMissingNestedMessagesDecodeToNil(t *testing.T) {
	var put PutMasterKeyRequest
	overWire(t, &PutMasterKeyRequest{IfAbsent: true}, &put)
	assert.Nil(t, put.Record)
	assert.True(t, put.IfAbsent)

	var app AppendAccessLogRequest
	overWire(t, &AppendAccessLogRequest{}, &app)
	assert.Nil(t, app.Entry)
}

func TestLists_OverWire(t *testing.T) {
	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	in := &ListAccessLogResponse{Entries: []*models.AccessLogEntry{
		{ID: 2, EntryID: "e1", PrincipalID: "ops-1", Action: models.ActionViewed, EntryName: "a", CreatedAt: at},
		{ID: 1, EntryID: "e1", PrincipalID: "ops-1", Action: models.ActionCreated, EntryName: "a", CreatedAt: at},
	}}
	var out ListAccessLogResponse
	overWire(t, in, &out)
	assert.Equal(t, in.Entries, out.Entries)

	var none ListEntriesResponse
	overWire(t, &ListEntriesResponse{}, &none)
	assert.Empty(t, none.Entries)
}
