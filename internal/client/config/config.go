package config

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/credvault/internal/cryptox"
)

const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRemote   = "remote"
)

// Config holds runtime settings for vaultctl.
type Config struct {
	Backend          string
	DSN              string
	ServerAddr       string
	AccessToken      string
	PrincipalID      string
	KDFTime          uint32
	KDFMemoryKiB     uint32
	KDFThreads       uint8
	SingleSetup      bool
	MinPasswordScore int
	IdleTimeout      time.Duration
	UnlockInterval   time.Duration
	UnlockBurst      int
	AuditPoolSize    int
	LogLevel         string
}

// LoadDefaults populates c with a local SQLite setup.
func (c *Config) LoadDefaults() {
	p := cryptox.DefaultParams()
	c.Backend = BackendSQLite
	c.DSN = "~/.credvault/vault.db"
	c.ServerAddr = "127.0.0.1:50051"
	c.PrincipalID = "local"
	c.KDFTime = p.Time
	c.KDFMemoryKiB = p.MemoryKiB
	c.KDFThreads = p.Threads
	c.SingleSetup = true
	c.MinPasswordScore = 2
	c.IdleTimeout = 5 * time.Minute
	c.UnlockInterval = 2 * time.Second
	c.UnlockBurst = 5
	c.AuditPoolSize = 4
	c.LogLevel = "warn"
}

// Params returns the Argon2id cost for new master key records.
func (c *Config) Params() cryptox.Params {
	return cryptox.Params{Time: c.KDFTime, MemoryKiB: c.KDFMemoryKiB, Threads: c.KDFThreads}
}

// Validate reports the first setting that cannot work.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendSQLite, BackendPostgres:
		if c.DSN == "" {
			return fmt.Errorf("backend %s needs a dsn", c.Backend)
		}
	case BackendRemote:
		if c.ServerAddr == "" || c.AccessToken == "" {
			return fmt.Errorf("backend remote needs a server address and an access token")
		}
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	if c.MinPasswordScore < 0 || c.MinPasswordScore > 4 {
		return fmt.Errorf("min password score %d out of range 0..4", c.MinPasswordScore)
	}
	if c.AuditPoolSize < 1 {
		return fmt.Errorf("audit pool size must be positive")
	}
	if c.UnlockBurst < 1 {
		return fmt.Errorf("unlock burst must be positive")
	}
	return c.Params().Validate()
}
