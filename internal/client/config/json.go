package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/credvault/internal/timex"
)

// JsonConfig is the on-disk shape of the CLI configuration. Fields left out
// of the file keep their current value.
type JsonConfig struct {
	Backend          *string         `json:"backend"`
	DSN              *string         `json:"dsn"`
	ServerAddr       *string         `json:"server_addr"`
	AccessToken      *string         `json:"access_token"`
	PrincipalID      *string         `json:"principal_id"`
	KDFTime          *uint32         `json:"kdf_time"`
	KDFMemoryKiB     *uint32         `json:"kdf_memory_kib"`
	KDFThreads       *uint8          `json:"kdf_threads"`
	SingleSetup      *bool           `json:"single_setup"`
	MinPasswordScore *int            `json:"min_password_score"`
	IdleTimeout      *timex.Duration `json:"idle_timeout"`
	UnlockInterval   *timex.Duration `json:"unlock_interval"`
	UnlockBurst      *int            `json:"unlock_burst"`
	AuditPoolSize    *int            `json:"audit_pool_size"`
	LogLevel         *string         `json:"log_level"`
}

func parseJson(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return err
	}

	set(&cfg.Backend, jc.Backend)
	set(&cfg.DSN, jc.DSN)
	set(&cfg.ServerAddr, jc.ServerAddr)
	set(&cfg.AccessToken, jc.AccessToken)
	set(&cfg.PrincipalID, jc.PrincipalID)
	set(&cfg.KDFTime, jc.KDFTime)
	set(&cfg.KDFMemoryKiB, jc.KDFMemoryKiB)
	set(&cfg.KDFThreads, jc.KDFThreads)
	set(&cfg.SingleSetup, jc.SingleSetup)
	set(&cfg.MinPasswordScore, jc.MinPasswordScore)
	set(&cfg.UnlockBurst, jc.UnlockBurst)
	set(&cfg.AuditPoolSize, jc.AuditPoolSize)
	set(&cfg.LogLevel, jc.LogLevel)
	if jc.IdleTimeout != nil {
		cfg.IdleTimeout = jc.IdleTimeout.Duration
	}
	if jc.UnlockInterval != nil {
		cfg.UnlockInterval = jc.UnlockInterval.Duration
	}
	return nil
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
