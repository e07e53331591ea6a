package config

import (
	"fmt"
	"strconv"
	"time"
)

const envPrefix = "VAULT_"

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

type envReader struct {
	lookup LookupFunc
	err    error
}

func (r *envReader) get(name string) (string, bool) {
	if r.err != nil {
		return "", false
	}
	return r.lookup(envPrefix + name)
}

func (r *envReader) fail(name string, err error) {
	r.err = fmt.Errorf("%s%s: %w", envPrefix, name, err)
}

func (r *envReader) str(name string, dst *string) {
	if v, ok := r.get(name); ok {
		*dst = v
	}
}

func (r *envReader) integer(name string, dst *int) {
	if v, ok := r.get(name); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			r.fail(name, err)
			return
		}
		*dst = n
	}
}

func (r *envReader) uint(name string, bits int, set func(uint64)) {
	if v, ok := r.get(name); ok {
		n, err := strconv.ParseUint(v, 10, bits)
		if err != nil {
			r.fail(name, err)
			return
		}
		set(n)
	}
}

func (r *envReader) boolean(name string, dst *bool) {
	if v, ok := r.get(name); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			r.fail(name, err)
			return
		}
		*dst = b
	}
}

func (r *envReader) duration(name string, dst *time.Duration) {
	if v, ok := r.get(name); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			r.fail(name, err)
			return
		}
		*dst = d
	}
}

func parseEnv(lookup LookupFunc, cfg *Config) error {
	r := &envReader{lookup: lookup}
	r.str("BACKEND", &cfg.Backend)
	r.str("DSN", &cfg.DSN)
	r.str("SERVER_ADDR", &cfg.ServerAddr)
	r.str("ACCESS_TOKEN", &cfg.AccessToken)
	r.str("PRINCIPAL", &cfg.PrincipalID)
	r.uint("KDF_TIME", 32, func(n uint64) { cfg.KDFTime = uint32(n) })
	r.uint("KDF_MEMORY_KIB", 32, func(n uint64) { cfg.KDFMemoryKiB = uint32(n) })
	r.uint("KDF_THREADS", 8, func(n uint64) { cfg.KDFThreads = uint8(n) })
	r.boolean("SINGLE_SETUP", &cfg.SingleSetup)
	r.integer("MIN_PASSWORD_SCORE", &cfg.MinPasswordScore)
	r.duration("IDLE_TIMEOUT", &cfg.IdleTimeout)
	r.duration("UNLOCK_INTERVAL", &cfg.UnlockInterval)
	r.integer("UNLOCK_BURST", &cfg.UnlockBurst)
	r.integer("AUDIT_POOL_SIZE", &cfg.AuditPoolSize)
	r.str("LOG_LEVEL", &cfg.LogLevel)
	return r.err
}
