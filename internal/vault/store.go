package vault

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/credvault/internal/dbx"
	"github.com/dmitrijs2005/credvault/internal/repositories/accesslog"
	"github.com/dmitrijs2005/credvault/internal/repositories/entries"
	"github.com/dmitrijs2005/credvault/internal/repositories/masterkeys"
	"github.com/dmitrijs2005/credvault/internal/repositories/memory"
	"github.com/dmitrijs2005/credvault/internal/repositories/repomanager"
)

// Store is the untrusted ciphertext repository the vault persists to.
type Store struct {
	Entries    entries.Repository
	MasterKeys masterkeys.Repository
	AccessLog  accesslog.Repository

	// Tx, when set, runs fn against repositories bound to one transaction.
	// Stores without transactions leave it nil.
	Tx Transactor
}

// Transactor runs fn atomically: either every write fn makes through the
// given Store is committed or none is.
type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context, s Store) error) error
}

// InTx runs fn inside a transaction when the store supports one, and
// directly against s otherwise.
func (s Store) InTx(ctx context.Context, fn func(ctx context.Context, s Store) error) error {
	if s.Tx == nil {
		return fn(ctx, s)
	}
	return s.Tx.InTx(ctx, fn)
}

// NewSQLStore binds the repositories of m to db and uses database
// transactions for multi-row writes.
func NewSQLStore(db *sql.DB, m repomanager.RepositoryManager) Store {
	s := bindSQL(db, m)
	s.Tx = &sqlTransactor{db: db, m: m}
	return s
}

func bindSQL(db dbx.DBTX, m repomanager.RepositoryManager) Store {
	return Store{
		Entries:    m.Entries(db),
		MasterKeys: m.MasterKeys(db),
		AccessLog:  m.AccessLog(db),
	}
}

type sqlTransactor struct {
	db *sql.DB
	m  repomanager.RepositoryManager
}

func (t *sqlTransactor) InTx(ctx context.Context, fn func(ctx context.Context, s Store) error) error {
	return dbx.WithTx(ctx, t.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return fn(ctx, bindSQL(tx, t.m))
	})
}

// NewMemoryStore exposes an in-memory store. It has no transactions.
func NewMemoryStore(m *memory.Store) Store {
	return Store{
		Entries:    m.Entries(),
		MasterKeys: m.MasterKeys(),
		AccessLog:  m.AccessLog(),
	}
}
