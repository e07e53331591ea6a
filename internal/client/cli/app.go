package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/dmitrijs2005/credvault/internal/audit"
	"github.com/dmitrijs2005/credvault/internal/client/config"
	"github.com/dmitrijs2005/credvault/internal/client/remote"
	"github.com/dmitrijs2005/credvault/internal/filex"
	"github.com/dmitrijs2005/credvault/internal/identity"
	"github.com/dmitrijs2005/credvault/internal/logging"
	"github.com/dmitrijs2005/credvault/internal/repositories/repomanager"
	"github.com/dmitrijs2005/credvault/internal/session"
	"github.com/dmitrijs2005/credvault/internal/vault"
	"golang.org/x/time/rate"
)

// App is one vaultctl invocation: an open store and a vault over it.
type App struct {
	config  *config.Config
	vault   *vault.Vault
	logger  logging.Logger
	reader  *bufio.Reader
	out     io.Writer
	closers []func() error
}

func parseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelWarn
	}
	return l
}

// NewApp opens the store named by c and builds a locked vault over it.
func NewApp(ctx context.Context, c *config.Config, in io.Reader, out io.Writer) (*App, error) {
	a := &App{
		config: c,
		logger: logging.NewTextLogger(os.Stderr, parseLevel(c.LogLevel)),
		reader: bufio.NewReader(in),
		out:    out,
	}

	store, err := a.openStore(ctx)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	recorder, err := audit.New(store.AccessLog, a.logger, c.AuditPoolSize)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	// Registered after the store so pending access log writes drain before
	// the connection closes.
	a.closers = append(a.closers, func() error { recorder.Close(); return nil })

	var id identity.Provider = identity.Static(c.PrincipalID)
	if c.AccessToken != "" {
		id = identity.Token{AccessToken: c.AccessToken}
	}

	sess := session.New(session.WithIdleTimeout(c.IdleTimeout))
	a.vault = vault.New(store, sess, id, recorder, a.logger, vault.Config{
		Params:           c.Params(),
		SingleSetup:      c.SingleSetup,
		MinPasswordScore: c.MinPasswordScore,
		UnlockRate:       rate.Every(c.UnlockInterval),
		UnlockBurst:      c.UnlockBurst,
	})
	return a, nil
}

func (a *App) openStore(ctx context.Context) (vault.Store, error) {
	switch a.config.Backend {
	case config.BackendRemote:
		client, err := remote.Dial(a.config.ServerAddr, a.config.AccessToken)
		if err != nil {
			return vault.Store{}, fmt.Errorf("connect to %s: %w", a.config.ServerAddr, err)
		}
		a.closers = append(a.closers, client.Close)
		return vault.Store{Entries: client.Entries(), MasterKeys: client.MasterKeys(), AccessLog: client.AccessLog()}, nil

	case config.BackendSQLite, config.BackendPostgres:
		dialect := repomanager.SQLite
		if a.config.Backend == config.BackendPostgres {
			dialect = repomanager.Postgres
		}
		dsn := a.config.DSN
		if dialect == repomanager.SQLite && dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") {
			var err error
			if dsn, err = filex.EnsureParentDir(dsn); err != nil {
				return vault.Store{}, err
			}
		}
		db, err := repomanager.Open(dialect, dsn)
		if err != nil {
			return vault.Store{}, fmt.Errorf("open database: %w", err)
		}
		a.closers = append(a.closers, db.Close)

		m, err := repomanager.NewSQLRepositoryManager(dialect)
		if err != nil {
			return vault.Store{}, err
		}
		if err := m.RunMigrations(ctx, db); err != nil {
			return vault.Store{}, fmt.Errorf("migrate database: %w", err)
		}
		return vault.NewSQLStore(db, m), nil
	}
	return vault.Store{}, fmt.Errorf("unknown backend %q", a.config.Backend)
}

// Close locks the vault and releases the store, newest resource first.
func (a *App) Close() error {
	if a.vault != nil {
		a.vault.Lock()
	}
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}

// unlock prompts for the master password and unlocks the vault.
func (a *App) unlock(ctx context.Context) error {
	pw, err := GetPassword("Master password", a.out)
	if err != nil {
		return err
	}
	defer clear(pw)
	return a.vault.Unlock(ctx, string(pw))
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}
