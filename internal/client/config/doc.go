// Package config loads runtime configuration for the vaultctl CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file named by --config, or VAULT_CONFIG when the flag is absent.
//  3. VAULT_* environment variables.
//  4. Command-line flags registered by RegisterFlags, applied only when set.
//
// # Environment
//
//	VAULT_BACKEND            sqlite | postgres | remote
//	VAULT_DSN                SQLite path or Postgres DSN
//	VAULT_SERVER_ADDR        store server address for the remote backend
//	VAULT_ACCESS_TOKEN       JWT issued by the auth subsystem
//	VAULT_PRINCIPAL          principal id used without a token
//	VAULT_KDF_TIME           Argon2id passes
//	VAULT_KDF_MEMORY_KIB     Argon2id memory in KiB
//	VAULT_KDF_THREADS        Argon2id lanes
//	VAULT_SINGLE_SETUP       true | false
//	VAULT_MIN_PASSWORD_SCORE zxcvbn score 0..4
//	VAULT_IDLE_TIMEOUT       auto-lock after inactivity, e.g. "5m"; 0 disables
//	VAULT_UNLOCK_INTERVAL    time between unlock attempts once the burst is spent
//	VAULT_UNLOCK_BURST       unlock attempts allowed back to back
//	VAULT_AUDIT_POOL_SIZE    access log writer goroutines
//	VAULT_LOG_LEVEL          debug | info | warn | error
//
// # JSON schema
//
// Durations use timex.Duration, so values can be strings like "5m" or
// integer nanoseconds:
//
//	{
//	  "backend": "remote",
//	  "server_addr": "vault.internal:50051",
//	  "idle_timeout": "5m",
//	  "single_setup": true
//	}
package config
