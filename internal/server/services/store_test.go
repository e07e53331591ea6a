package services

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/credvault/internal/common"
	"github.com/dmitrijs2005/credvault/internal/cryptox"
	"github.com/dmitrijs2005/credvault/internal/models"
	"github.com/dmitrijs2005/credvault/internal/repositories/repomanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) *StoreService {
	t.Helper()
	db, err := repomanager.Open(repomanager.SQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	m, err := repomanager.NewSQLRepositoryManager(repomanager.SQLite)
	require.NoError(t, err)
	require.NoError(t, m.RunMigrations(context.Background(), db))
	return NewStoreService(db, m)
}

func sealedEntry(name string) *models.CredentialEntry {
	return &models.CredentialEntry{
		Kind:       models.EntryKindPropertyCode,
		Name:       name,
		Ciphertext: []byte("sealed"),
		Nonce:      make([]byte, cryptox.NonceSize),
		CreatedBy:  "spoofed",
	}
}

func TestPutMasterKey_UsesTokenPrincipal(t *testing.T) {
	s := newService(t)
	ctx := context.Background()

	rec := &models.MasterKeyRecord{PrincipalID: "someone-else", Verifier: []byte("v"), Salt: []byte("s")}
	ok, err := s.PutMasterKey(ctx, "u1", rec, true)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = s.GetMasterKey(ctx, "someone-else")
	require.ErrorIs(t, err, common.ErrorNotFound)

	got, err := s.GetMasterKey(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got.Verifier)

	ok, err = s.PutMasterKey(ctx, "u1", &models.MasterKeyRecord{Verifier: []byte("v2"), Salt: []byte("s2")}, true)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.PutMasterKey(ctx, "u1", &models.MasterKeyRecord{Verifier: []byte("v3"), Salt: []byte("s3")}, false)
	require.NoError(t, err)
	assert.True(t, ok)
	got, _ = s.GetMasterKey(ctx, "u1")
	assert.Equal(t, []byte("v3"), got.Verifier)
}

func TestPutMasterKey_Validation(t *testing.T) {
	s := newService(t)
	ctx := context.Background()

	_, err := s.PutMasterKey(ctx, "u1", nil, false)
	require.ErrorIs(t, err, common.ErrorValidation)
	_, err = s.PutMasterKey(ctx, "u1", &models.MasterKeyRecord{Verifier: []byte("v")}, false)
	require.ErrorIs(t, err, common.ErrorValidation)
	_, err = s.PutMasterKey(ctx, "u1", &models.MasterKeyRecord{Verifier: []byte("v"), Salt: []byte("s"), KDFParams: "bogus"}, false)
	require.ErrorIs(t, err, common.ErrorValidation)
}

func TestEntries_CRUD(t *testing.T) {
	s := newService(t)
	ctx := context.Background()

	e, err := s.InsertEntry(ctx, "u1", sealedEntry("Gate"))
	require.NoError(t, err)
	assert.Equal(t, "u1", e.CreatedBy)
	assert.NotEmpty(t, e.ID)

	e.Name = "North Gate"
	e.UpdatedAt = time.Time{}
	require.NoError(t, s.UpdateEntry(ctx, "u2", e))

	got, err := s.GetEntry(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "North Gate", got.Name)
	assert.Equal(t, "u2", got.UpdatedBy)
	assert.Equal(t, "u1", got.CreatedBy)

	list, err := s.ListEntries(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, s.DeleteEntry(ctx, e.ID))
	require.ErrorIs(t, s.DeleteEntry(ctx, e.ID), common.ErrorNotFound)
}

func TestEntries_Validation(t *testing.T) {
	s := newService(t)
	ctx := context.Background()

	bad := sealedEntry("Gate")
	bad.Nonce = []byte("short")
	_, err := s.InsertEntry(ctx, "u1", bad)
	require.ErrorIs(t, err, common.ErrorValidation)

	bad = sealedEntry("")
	_, err = s.InsertEntry(ctx, "u1", bad)
	require.ErrorIs(t, err, common.ErrorValidation)

	bad = sealedEntry("Gate")
	bad.Kind = "door"
	_, err = s.InsertEntry(ctx, "u1", bad)
	require.ErrorIs(t, err, common.ErrorValidation)

	require.ErrorIs(t, s.UpdateEntry(ctx, "u1", sealedEntry("no id")), common.ErrorValidation)
	require.ErrorIs(t, s.UpdateEntry(ctx, "u1", nil), common.ErrorValidation)
}

func TestAccessLog(t *testing.T) {
	s := newService(t)
	ctx := context.Background()
	base := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

	id, err := s.AppendAccessLog(ctx, "u1", &models.AccessLogEntry{EntryID: "e1", PrincipalID: "spoof", Action: models.ActionViewed, CreatedAt: base})
	require.NoError(t, err)
	assert.NotZero(t, id)
	_, err = s.AppendAccessLog(ctx, "u1", &models.AccessLogEntry{EntryID: "e2", Action: models.ActionCreated, CreatedAt: base.Add(time.Minute)})
	require.NoError(t, err)

	_, err = s.AppendAccessLog(ctx, "u1", &models.AccessLogEntry{EntryID: "e1", Action: "peeked"})
	require.ErrorIs(t, err, common.ErrorValidation)

	rows, err := s.ListAccessLog(ctx, "e1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "u1", rows[0].PrincipalID)

	window, err := s.ListBetween(ctx, base, base.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, window, 2)
	assert.Equal(t, "e1", window[0].EntryID)

	require.NoError(t, s.Ping(ctx))
}
