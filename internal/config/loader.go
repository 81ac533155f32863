package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies CALIBR_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known CALIBR_* environment variables and
// overwrites the corresponding Config fields when a variable is set. This
// lets operators inject secrets at deploy time without touching the TOML
// file.
func applyEnvOverrides(cfg *Config) {
	// ── Ledger ──
	setStr(&cfg.Ledger.Endpoint, "CALIBR_LEDGER_ENDPOINT")
	setStr(&cfg.Ledger.Package, "CALIBR_LEDGER_PACKAGE")
	setInt(&cfg.Ledger.PageSize, "CALIBR_LEDGER_PAGE_SIZE")
	setInt(&cfg.Ledger.MaxPages, "CALIBR_LEDGER_MAX_PAGES")

	// ── Poll ──
	setDuration(&cfg.Poll.Interval, "CALIBR_POLL_INTERVAL")
	setDuration(&cfg.Poll.ArchiveInterval, "CALIBR_POLL_ARCHIVE_INTERVAL")
	setInt(&cfg.Poll.ArchiveRetentionDays, "CALIBR_POLL_ARCHIVE_RETENTION_DAYS")

	// ── Postgres ──
	setStr(&cfg.Postgres.DSN, "CALIBR_POSTGRES_DSN")
	setStr(&cfg.Postgres.Host, "CALIBR_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "CALIBR_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "CALIBR_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "CALIBR_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "CALIBR_POSTGRES_PASSWORD")
	setStr(&cfg.Postgres.SSLMode, "CALIBR_POSTGRES_SSL_MODE")
	setInt(&cfg.Postgres.PoolMaxConns, "CALIBR_POSTGRES_POOL_MAX_CONNS")
	setInt(&cfg.Postgres.PoolMinConns, "CALIBR_POSTGRES_POOL_MIN_CONNS")
	setBool(&cfg.Postgres.RunMigrations, "CALIBR_POSTGRES_RUN_MIGRATIONS")

	// ── Redis ──
	setStr(&cfg.Redis.Addr, "CALIBR_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "CALIBR_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "CALIBR_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "CALIBR_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "CALIBR_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "CALIBR_REDIS_TLS_ENABLED")
	setInt(&cfg.Redis.SnapshotTTLMinutes, "CALIBR_REDIS_SNAPSHOT_TTL_MINUTES")

	// ── S3 ──
	setStr(&cfg.S3.Endpoint, "CALIBR_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "CALIBR_S3_REGION")
	setStr(&cfg.S3.Bucket, "CALIBR_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "CALIBR_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "CALIBR_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "CALIBR_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "CALIBR_S3_FORCE_PATH_STYLE")

	// ── Server ──
	setBool(&cfg.Server.Enabled, "CALIBR_SERVER_ENABLED")
	setInt(&cfg.Server.Port, "CALIBR_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "CALIBR_SERVER_CORS_ORIGINS")
	setStr(&cfg.Server.APIKey, "CALIBR_SERVER_API_KEY")
	setStr(&cfg.Server.APIKeyHash, "CALIBR_SERVER_API_KEY_HASH")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "CALIBR_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "CALIBR_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "CALIBR_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "CALIBR_NOTIFY_EVENTS")

	// ── Top-level ──
	setStr(&cfg.Mode, "CALIBR_MODE")
	setStr(&cfg.LogLevel, "CALIBR_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
