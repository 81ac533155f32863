// Package config defines the top-level configuration for the Calibr backend
// and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a
// TOML file and then optionally overridden by CALIBR_* environment variables.
type Config struct {
	Ledger   LedgerConfig   `toml:"ledger"`
	Poll     PollConfig     `toml:"poll"`
	Postgres PostgresConfig `toml:"postgres"`
	Redis    RedisConfig    `toml:"redis"`
	S3       S3Config       `toml:"s3"`
	Server   ServerConfig   `toml:"server"`
	Notify   NotifyConfig   `toml:"notify"`
	Mode     string         `toml:"mode"`
	LogLevel string         `toml:"log_level"`
}

// LedgerConfig holds the read API endpoint and query parameters.
type LedgerConfig struct {
	Endpoint string `toml:"endpoint"`
	Package  string `toml:"package"`
	PageSize int    `toml:"page_size"`
	MaxPages int    `toml:"max_pages"`
}

// PollConfig holds the leaderboard polling parameters.
type PollConfig struct {
	Interval             duration `toml:"interval"`
	ArchiveInterval      duration `toml:"archive_interval"`
	ArchiveRetentionDays int      `toml:"archive_retention_days"`
}

// PostgresConfig holds PostgreSQL connection parameters for the snapshot
// history store.
type PostgresConfig struct {
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
	// SnapshotTTLMinutes bounds how stale a cached leaderboard may get when
	// the poller stalls. Zero keeps the default (3x the poll interval).
	SnapshotTTLMinutes int `toml:"snapshot_ttl_minutes"`
}

// S3Config holds S3-compatible object storage parameters for snapshot
// archival.
type S3Config struct {
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Enabled     bool     `toml:"enabled"`
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
	// APIKey enables auth when set. APIKeyHash takes a PBKDF2 digest in
	// "salt:hash" base64 form instead, so the plaintext never lands in
	// config files.
	APIKey     string `toml:"api_key"`
	APIKeyHash string `toml:"api_key_hash"`
}

// NotifyConfig holds notification channel credentials.
type NotifyConfig struct {
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	Events            []string `toml:"events"`
}

// duration is a wrapper around time.Duration that supports TOML string
// decoding (e.g. "30s", "5m").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings.
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with reasonable default values.
func Defaults() Config {
	return Config{
		Ledger: LedgerConfig{
			Endpoint: "https://rpc.calibr.app",
			Package:  "",
			PageSize: 50,
			MaxPages: 20,
		},
		Poll: PollConfig{
			Interval:             duration{15 * time.Second},
			ArchiveInterval:      duration{24 * time.Hour},
			ArchiveRetentionDays: 30,
		},
		Postgres: PostgresConfig{
			Host:          "localhost",
			Port:          5432,
			Database:      "calibr",
			User:          "postgres",
			SSLMode:       "disable",
			PoolMaxConns:  10,
			PoolMinConns:  2,
			RunMigrations: true,
		},
		Redis: RedisConfig{
			Addr:       "localhost:6379",
			DB:         0,
			PoolSize:   20,
			MaxRetries: 3,
			TLSEnabled: false,
		},
		S3: S3Config{
			Endpoint:       "http://localhost:9000",
			Region:         "us-east-1",
			Bucket:         "calibr-snapshots",
			UseSSL:         false,
			ForcePathStyle: true,
		},
		Server: ServerConfig{
			Enabled:     true,
			Port:        8000,
			CORSOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		},
		Notify: NotifyConfig{
			Events: []string{"poll_failed", "market_created"},
		},
		Mode:     "full",
		LogLevel: "info",
	}
}

// validModes enumerates the accepted values for Config.Mode.
var validModes = map[string]bool{
	"server": true,
	"poll":   true,
	"full":   true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks Config for obviously invalid or missing values and returns
// a combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: server, poll, full)", c.Mode))
	}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Ledger — the poller cannot run without an endpoint and package.
	needsLedger := c.Mode == "poll" || c.Mode == "full"
	if needsLedger {
		if c.Ledger.Endpoint == "" {
			errs = append(errs, "ledger: endpoint must not be empty for mode "+c.Mode)
		}
		if c.Ledger.Package == "" {
			errs = append(errs, "ledger: package must not be empty for mode "+c.Mode)
		}
	}
	if c.Ledger.PageSize < 0 {
		errs = append(errs, "ledger: page_size must be >= 0")
	}
	if c.Ledger.MaxPages < 0 {
		errs = append(errs, "ledger: max_pages must be >= 0")
	}

	// Poll
	if needsLedger && c.Poll.Interval.Duration < time.Second {
		errs = append(errs, "poll: interval must be at least 1s")
	}
	if c.Poll.ArchiveRetentionDays < 1 {
		errs = append(errs, "poll: archive_retention_days must be >= 1")
	}

	// Postgres
	if strings.TrimSpace(c.Postgres.DSN) == "" {
		if c.Postgres.Host == "" {
			errs = append(errs, "postgres: host must not be empty (or set postgres.dsn)")
		}
		if c.Postgres.Port <= 0 || c.Postgres.Port > 65535 {
			errs = append(errs, fmt.Sprintf("postgres: port must be 1-65535, got %d", c.Postgres.Port))
		}
		if c.Postgres.Database == "" {
			errs = append(errs, "postgres: database must not be empty")
		}
	}
	if c.Postgres.PoolMaxConns < 1 {
		errs = append(errs, "postgres: pool_max_conns must be >= 1")
	}
	if c.Postgres.PoolMinConns < 0 {
		errs = append(errs, "postgres: pool_min_conns must be >= 0")
	}
	if c.Postgres.PoolMinConns > c.Postgres.PoolMaxConns {
		errs = append(errs, "postgres: pool_min_conns must not exceed pool_max_conns")
	}

	// Redis
	if c.Redis.Addr == "" {
		errs = append(errs, "redis: addr must not be empty")
	}
	if c.Redis.PoolSize < 1 {
		errs = append(errs, "redis: pool_size must be >= 1")
	}

	// S3
	if c.S3.Endpoint == "" {
		errs = append(errs, "s3: endpoint must not be empty")
	}
	if c.S3.Bucket == "" {
		errs = append(errs, "s3: bucket must not be empty")
	}

	// Server
	if c.Server.Enabled {
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
		}
		if c.Server.APIKey != "" && c.Server.APIKeyHash != "" {
			errs = append(errs, "server: set api_key or api_key_hash, not both")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
