package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_MergesFileOverDefaults(t *testing.T) {
	path := writeConfig(t, `
mode = "server"
log_level = "debug"

[ledger]
endpoint = "https://rpc.example.org"
package = "0xabc"

[poll]
interval = "30s"

[server]
port = 9000
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, "server", cfg.Mode)
	require.Equal(t, "https://rpc.example.org", cfg.Ledger.Endpoint)
	require.Equal(t, 30*time.Second, cfg.Poll.Interval.Duration)
	require.Equal(t, 9000, cfg.Server.Port)

	// Untouched sections keep their defaults.
	require.Equal(t, "localhost:6379", cfg.Redis.Addr)
	require.Equal(t, 50, cfg.Ledger.PageSize)
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, `
[ledger]
endpoint = "https://rpc.example.org"
package = "0xabc"
`)

	t.Setenv("CALIBR_LEDGER_ENDPOINT", "https://rpc.override.org")
	t.Setenv("CALIBR_POLL_INTERVAL", "45s")
	t.Setenv("CALIBR_SERVER_CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("CALIBR_POSTGRES_RUN_MIGRATIONS", "false")

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, "https://rpc.override.org", cfg.Ledger.Endpoint)
	require.Equal(t, 45*time.Second, cfg.Poll.Interval.Duration)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
	require.False(t, cfg.Postgres.RunMigrations)
}

func TestValidate_RequiresLedgerForPollingModes(t *testing.T) {
	cfg := Defaults()
	cfg.Mode = "full"

	err := cfg.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "ledger: package must not be empty")
}

func TestValidate_ServerModeWithoutLedger(t *testing.T) {
	cfg := Defaults()
	cfg.Mode = "server"

	require.NoError(t, cfg.Validate())
}

func TestValidate_RejectsUnknownMode(t *testing.T) {
	cfg := Defaults()
	cfg.Mode = "hybrid"

	err := cfg.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), `unknown mode "hybrid"`)
}

func TestValidate_RejectsBothAPIKeyForms(t *testing.T) {
	cfg := Defaults()
	cfg.Mode = "server"
	cfg.Server.APIKey = "secret"
	cfg.Server.APIKeyHash = "c2FsdA==:aGFzaA=="

	err := cfg.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "api_key or api_key_hash, not both")
}

func TestValidate_CollectsMultipleErrors(t *testing.T) {
	cfg := Defaults()
	cfg.Mode = "server"
	cfg.LogLevel = "verbose"
	cfg.Redis.Addr = ""

	err := cfg.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "log_level")
	require.Contains(t, err.Error(), "redis: addr")
}
