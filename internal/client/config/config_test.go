package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func noEnv(string) (string, bool) { return "", false }

func envMap(m map[string]string) LookupFunc {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func load(t *testing.T, args []string, lookup LookupFunc) (*Config, error) {
	t.Helper()
	cmd := &cobra.Command{Use: "vaultctl"}
	f := RegisterFlags(cmd)
	require.NoError(t, cmd.ParseFlags(args))
	return Load(cmd, f, lookup)
}

func defaults() *Config {
	c := &Config{}
	c.LoadDefaults()
	return c
}

func TestLoad_Defaults(t *testing.T) {
	got, err := load(t, nil, noEnv)
	require.NoError(t, err)
	if diff := cmp.Diff(defaults(), got); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_Precedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vault.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"backend": "postgres",
		"dsn": "postgres://json",
		"idle_timeout": "10m",
		"unlock_burst": 3,
		"log_level": "info"
	}`), 0o600))

	env := envMap(map[string]string{
		"VAULT_CONFIG":       path,
		"VAULT_DSN":          "postgres://env",
		"VAULT_IDLE_TIMEOUT": "1m",
		"VAULT_SINGLE_SETUP": "false",
	})

	got, err := load(t, []string{"--idle-timeout", "30s", "--kdf-threads", "2"}, env)
	require.NoError(t, err)

	want := defaults()
	want.Backend = BackendPostgres
	want.DSN = "postgres://env"
	want.IdleTimeout = 30 * time.Second
	want.UnlockBurst = 3
	want.LogLevel = "info"
	want.SingleSetup = false
	want.KDFThreads = 2
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_FlagConfigPathWins(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.json")
	b := filepath.Join(dir, "b.json")
	require.NoError(t, os.WriteFile(a, []byte(`{"principal_id":"from-a"}`), 0o600))
	require.NoError(t, os.WriteFile(b, []byte(`{"principal_id":"from-b"}`), 0o600))

	got, err := load(t, []string{"-c", b}, envMap(map[string]string{"VAULT_CONFIG": a}))
	require.NoError(t, err)
	require.Equal(t, "from-b", got.PrincipalID)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		env  map[string]string
	}{
		{name: "bad env int", env: map[string]string{"VAULT_UNLOCK_BURST": "many"}},
		{name: "bad env duration", env: map[string]string{"VAULT_IDLE_TIMEOUT": "soon"}},
		{name: "bad env bool", env: map[string]string{"VAULT_SINGLE_SETUP": "maybe"}},
		{name: "threads overflow", env: map[string]string{"VAULT_KDF_THREADS": "300"}},
		{name: "unknown backend", args: []string{"--backend", "s3"}},
		{name: "remote without token", args: []string{"--backend", "remote"}},
		{name: "score out of range", args: []string{"--min-score", "7"}},
		{name: "zero threads flag", args: []string{"--kdf-threads", "0"}},
		{name: "missing config file", env: map[string]string{"VAULT_CONFIG": "/nonexistent/vault.json"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := load(t, tt.args, envMap(tt.env))
			require.Error(t, err)
		})
	}
}

func TestLoad_Remote(t *testing.T) {
	got, err := load(t, []string{"--backend", "remote", "--token", "jwt", "-a", "vault:50051"}, noEnv)
	require.NoError(t, err)
	require.Equal(t, "vault:50051", got.ServerAddr)
	require.Equal(t, "jwt", got.AccessToken)
}
