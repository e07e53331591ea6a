package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/credvault/internal/migrations"
	"github.com/dmitrijs2005/credvault/internal/models"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

func TestNewSQLRepositoryManager(t *testing.T) {
	for _, d := range []Dialect{Postgres, SQLite} {
		m, err := NewSQLRepositoryManager(d)
		require.NoError(t, err)
		assert.Equal(t, d, m.Dialect())
		var _ RepositoryManager = m
	}
	_, err := NewSQLRepositoryManager("oracle")
	require.Error(t, err)
}

func TestFactories_ReturnConcreteRepos(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	m := &SQLRepositoryManager{dialect: Postgres}
	if m.Entries(db) == nil {
		t.Fatal("Entries() nil")
	}
	if m.MasterKeys(db) == nil {
		t.Fatal("MasterKeys() nil")
	}
	if m.AccessLog(db) == nil {
		t.Fatal("AccessLog() nil")
	}
}

func TestRunMigrations_UsesDialectDir(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	orig := gooseUpContext
	defer func() { gooseUpContext = orig }()

	for d, want := range map[Dialect]string{Postgres: migrations.PostgresDir, SQLite: migrations.SQLiteDir} {
		var gotDir string
		gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
			gotDir = dir
			return nil
		}
		m := &SQLRepositoryManager{dialect: d}
		require.NoError(t, m.RunMigrations(context.Background(), db))
		assert.Equal(t, want, gotDir)
	}
}

func TestRunMigrations_Error(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("boom")
	}
	defer func() { gooseUpContext = orig }()

	m := &SQLRepositoryManager{dialect: Postgres}
	if err := m.RunMigrations(context.Background(), db); err == nil || err.Error() != "boom" {
		t.Fatalf("expected boom, got %v", err)
	}
}

func TestSQLite_MigrateAndRoundTrip(t *testing.T) {
	db, err := Open(SQLite, ":memory:")
	require.NoError(t, err)
	defer db.Close()

	m, err := NewSQLRepositoryManager(SQLite)
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, m.RunMigrations(ctx, db))

	now := time.Now().UTC().Truncate(time.Microsecond)
	e, err := m.Entries(db).Insert(ctx, &models.CredentialEntry{
		Kind: models.EntryKindServiceAccount, Name: "Backup", Ciphertext: []byte("ct"), Nonce: []byte("nn"),
		CreatedBy: "u1", UpdatedBy: "u1", CreatedAt: now, UpdatedAt: now,
	})
	require.NoError(t, err)

	got, err := m.Entries(db).GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("ct"), got.Ciphertext)
	assert.True(t, now.Equal(got.CreatedAt))

	rec := &models.MasterKeyRecord{PrincipalID: "u1", Verifier: []byte("v"), Salt: []byte("s"), CreatedAt: now, UpdatedAt: now}
	ok, err := m.MasterKeys(db).InsertIfAbsent(ctx, rec)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = m.MasterKeys(db).InsertIfAbsent(ctx, rec)
	require.NoError(t, err)
	assert.False(t, ok)

	rec.Verifier = []byte("v2")
	require.NoError(t, m.MasterKeys(db).Upsert(ctx, rec))
	stored, err := m.MasterKeys(db).Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), stored.Verifier)

	logRow := &models.AccessLogEntry{EntryID: e.ID, PrincipalID: "u1", Action: models.ActionCreated, EntryName: "Backup", CreatedAt: now}
	require.NoError(t, m.AccessLog(db).Append(ctx, logRow))
	assert.NotZero(t, logRow.ID)

	rows, err := m.AccessLog(db).ListBetween(ctx, now.Add(-time.Second), now.Add(time.Second))
	require.NoError(t, err)
	require.Len(t, rows, 1)
}

func TestOpen_UnknownDialect(t *testing.T) {
	_, err := Open("mysql", "")
	require.Error(t, err)
}
