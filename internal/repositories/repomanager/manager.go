// Package repomanager vends SQL-backed repositories for a given dialect and
// runs the embedded goose migrations for it.
package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/credvault/internal/dbx"
	"github.com/dmitrijs2005/credvault/internal/migrations"
	"github.com/dmitrijs2005/credvault/internal/repositories/accesslog"
	"github.com/dmitrijs2005/credvault/internal/repositories/entries"
	"github.com/dmitrijs2005/credvault/internal/repositories/masterkeys"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

// Dialect names a supported SQL backend.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Entries(db dbx.DBTX) entries.Repository
	MasterKeys(db dbx.DBTX) masterkeys.Repository
	AccessLog(db dbx.DBTX) *accesslog.SQLRepository
}

// SQLRepositoryManager implements RepositoryManager for one dialect.
type SQLRepositoryManager struct {
	dialect Dialect
}

func (m *SQLRepositoryManager) Entries(db dbx.DBTX) entries.Repository {
	return entries.NewSQLRepository(db)
}

func (m *SQLRepositoryManager) MasterKeys(db dbx.DBTX) masterkeys.Repository {
	return masterkeys.NewSQLRepository(db)
}

func (m *SQLRepositoryManager) AccessLog(db dbx.DBTX) *accesslog.SQLRepository {
	return accesslog.NewSQLRepository(db)
}

func (m *SQLRepositoryManager) Dialect() Dialect {
	return m.dialect
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded migrations of the manager's dialect.
func (m *SQLRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.FS)
	switch m.dialect {
	case Postgres:
		if err := goose.SetDialect("pgx"); err != nil {
			return err
		}
		return gooseUpContext(ctx, db, migrations.PostgresDir)
	case SQLite:
		if err := goose.SetDialect("sqlite3"); err != nil {
			return err
		}
		return gooseUpContext(ctx, db, migrations.SQLiteDir)
	}
	return fmt.Errorf("unsupported dialect %q", m.dialect)
}

// NewSQLRepositoryManager constructs a manager for the dialect.
func NewSQLRepositoryManager(dialect Dialect) (*SQLRepositoryManager, error) {
	switch dialect {
	case Postgres, SQLite:
		return &SQLRepositoryManager{dialect: dialect}, nil
	}
	return nil, fmt.Errorf("unsupported dialect %q", dialect)
}

// Open opens a connection pool for the dialect. SQLite is limited to a single
// connection so that in-memory databases and transactions see one database.
func Open(dialect Dialect, dsn string) (*sql.DB, error) {
	var driver string
	switch dialect {
	case Postgres:
		driver = "pgx"
	case SQLite:
		driver = "sqlite"
	default:
		return nil, fmt.Errorf("unsupported dialect %q", dialect)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if dialect == SQLite {
		db.SetMaxOpenConns(1)
	}
	return db, nil
}
