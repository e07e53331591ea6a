package config

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Flags holds the values cobra parses into. They reach a Config only for
// flags the user actually set, so flags never mask JSON or environment
// values with their defaults.
type Flags struct {
	ConfigPath string
	values     Config
	threads    uint
}

// RegisterFlags adds the persistent configuration flags to cmd.
func RegisterFlags(cmd *cobra.Command) *Flags {
	f := &Flags{}
	var d Config
	d.LoadDefaults()

	fs := cmd.PersistentFlags()
	fs.StringVarP(&f.ConfigPath, "config", "c", "", "JSON config file")
	fs.StringVar(&f.values.Backend, "backend", d.Backend, "store backend: sqlite, postgres or remote")
	fs.StringVar(&f.values.DSN, "dsn", d.DSN, "SQLite path or Postgres DSN")
	fs.StringVarP(&f.values.ServerAddr, "server", "a", d.ServerAddr, "store server address")
	fs.StringVar(&f.values.AccessToken, "token", "", "access token for the remote backend")
	fs.StringVar(&f.values.PrincipalID, "principal", d.PrincipalID, "principal id when no token is used")
	fs.Uint32Var(&f.values.KDFTime, "kdf-time", d.KDFTime, "Argon2id passes for new master keys")
	fs.Uint32Var(&f.values.KDFMemoryKiB, "kdf-memory", d.KDFMemoryKiB, "Argon2id memory in KiB for new master keys")
	fs.UintVar(&f.threads, "kdf-threads", uint(d.KDFThreads), "Argon2id lanes for new master keys")
	fs.BoolVar(&f.values.SingleSetup, "single-setup", d.SingleSetup, "refuse to replace an existing master key on setup")
	fs.IntVar(&f.values.MinPasswordScore, "min-score", d.MinPasswordScore, "minimum zxcvbn score of a new master password")
	fs.DurationVar(&f.values.IdleTimeout, "idle-timeout", d.IdleTimeout, "lock the shell after this much inactivity, 0 disables")
	fs.DurationVar(&f.values.UnlockInterval, "unlock-interval", d.UnlockInterval, "minimum time between unlock attempts once the burst is spent")
	fs.IntVar(&f.values.UnlockBurst, "unlock-burst", d.UnlockBurst, "unlock attempts allowed back to back")
	fs.IntVar(&f.values.AuditPoolSize, "audit-pool", d.AuditPoolSize, "access log writer goroutines")
	fs.StringVar(&f.values.LogLevel, "log-level", d.LogLevel, "debug, info, warn or error")
	return f
}

func (f *Flags) apply(cmd *cobra.Command, cfg *Config) error {
	changed := cmd.Flags().Changed
	copyIf := func(name string, fn func()) {
		if changed(name) {
			fn()
		}
	}
	copyIf("backend", func() { cfg.Backend = f.values.Backend })
	copyIf("dsn", func() { cfg.DSN = f.values.DSN })
	copyIf("server", func() { cfg.ServerAddr = f.values.ServerAddr })
	copyIf("token", func() { cfg.AccessToken = f.values.AccessToken })
	copyIf("principal", func() { cfg.PrincipalID = f.values.PrincipalID })
	copyIf("kdf-time", func() { cfg.KDFTime = f.values.KDFTime })
	copyIf("kdf-memory", func() { cfg.KDFMemoryKiB = f.values.KDFMemoryKiB })
	copyIf("single-setup", func() { cfg.SingleSetup = f.values.SingleSetup })
	copyIf("min-score", func() { cfg.MinPasswordScore = f.values.MinPasswordScore })
	copyIf("idle-timeout", func() { cfg.IdleTimeout = f.values.IdleTimeout })
	copyIf("unlock-interval", func() { cfg.UnlockInterval = f.values.UnlockInterval })
	copyIf("unlock-burst", func() { cfg.UnlockBurst = f.values.UnlockBurst })
	copyIf("audit-pool", func() { cfg.AuditPoolSize = f.values.AuditPoolSize })
	copyIf("log-level", func() { cfg.LogLevel = f.values.LogLevel })
	if changed("kdf-threads") {
		if f.threads == 0 || f.threads > 255 {
			return fmt.Errorf("--kdf-threads %d out of range 1..255", f.threads)
		}
		cfg.KDFThreads = uint8(f.threads)
	}
	return nil
}

// Load builds the Config for cmd: defaults, then the JSON file, then the
// environment, then the flags the user set.
func Load(cmd *cobra.Command, f *Flags, lookup LookupFunc) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	path := f.ConfigPath
	if path == "" {
		path, _ = lookup(envPrefix + "CONFIG")
	}
	if path != "" {
		if err := parseJson(path, cfg); err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
	}

	if err := parseEnv(lookup, cfg); err != nil {
		return nil, err
	}
	if err := f.apply(cmd, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
