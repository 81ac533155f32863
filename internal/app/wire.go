package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	s3blob "github.com/Calibrhq/calibr-app-sub000/internal/blob/s3"
	"github.com/Calibrhq/calibr-app-sub000/internal/cache/redis"
	"github.com/Calibrhq/calibr-app-sub000/internal/config"
	"github.com/Calibrhq/calibr-app-sub000/internal/domain"
	"github.com/Calibrhq/calibr-app-sub000/internal/ledger"
	"github.com/Calibrhq/calibr-app-sub000/internal/notify"
	"github.com/Calibrhq/calibr-app-sub000/internal/store/postgres"
)

// Dependencies bundles every domain-level dependency that the application
// modes need to operate. It is constructed by Wire and torn down by the
// returned cleanup function.
type Dependencies struct {
	// Ledger read client; nil when no endpoint is configured.
	Ledger *ledger.Client

	// Stores
	SnapshotStore domain.SnapshotStore

	// Caches
	SnapshotCache domain.SnapshotCache
	RateLimiter   domain.RateLimiter
	SignalBus     domain.SignalBus

	// Blob storage
	BlobWriter domain.BlobWriter
	Archiver   domain.Archiver

	// Notifications
	Notifier *notify.Notifier
}

// needsS3 returns true for modes that run the archive loop.
func needsS3(mode string) bool {
	switch mode {
	case "poll", "full":
		return true
	default:
		return false
	}
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that should
// be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config) (*Dependencies, func(), error) {
	logger := slog.Default()

	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{}

	// --- Ledger client ---
	// The server mode also gets one when configured, so the per-user
	// prediction join works without the poller.
	if cfg.Ledger.Endpoint != "" && cfg.Ledger.Package != "" {
		deps.Ledger = ledger.NewClient(ledger.Config{
			Endpoint: cfg.Ledger.Endpoint,
			Package:  cfg.Ledger.Package,
			PageSize: cfg.Ledger.PageSize,
			MaxPages: cfg.Ledger.MaxPages,
		}, logger)
	}

	// --- PostgreSQL ---
	// Every mode touches snapshot history: the poller inserts, the server
	// falls back to it on cache misses.
	pgClient, err := postgres.New(ctx, postgres.ClientConfig{
		DSN:      cfg.Postgres.DSN,
		Host:     cfg.Postgres.Host,
		Port:     cfg.Postgres.Port,
		Database: cfg.Postgres.Database,
		User:     cfg.Postgres.User,
		Password: cfg.Postgres.Password,
		SSLMode:  cfg.Postgres.SSLMode,
		MaxConns: cfg.Postgres.PoolMaxConns,
		MinConns: cfg.Postgres.PoolMinConns,
	})
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: postgres: %w", err)
	}
	closers = append(closers, pgClient.Close)

	if cfg.Postgres.RunMigrations {
		if err := pgClient.RunMigrations(ctx); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres migrations: %w", err)
		}
	}
	deps.SnapshotStore = postgres.NewSnapshotStore(pgClient.Pool())

	// --- Redis ---
	redisClient, err := redis.New(ctx, redis.ClientConfig{
		Addr:       cfg.Redis.Addr,
		Password:   cfg.Redis.Password,
		DB:         cfg.Redis.DB,
		PoolSize:   cfg.Redis.PoolSize,
		MaxRetries: cfg.Redis.MaxRetries,
		TLSEnabled: cfg.Redis.TLSEnabled,
	})
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: redis: %w", err)
	}
	closers = append(closers, func() { _ = redisClient.Close() })

	// Default the snapshot TTL to three poll intervals so a stalled poller
	// surfaces as a cache miss rather than a frozen board.
	snapshotTTL := 3 * cfg.Poll.Interval.Duration
	if cfg.Redis.SnapshotTTLMinutes > 0 {
		snapshotTTL = time.Duration(cfg.Redis.SnapshotTTLMinutes) * time.Minute
	}

	deps.SnapshotCache = redis.NewSnapshotCache(redisClient, snapshotTTL)
	deps.RateLimiter = redis.NewRateLimiter(redisClient)
	deps.SignalBus = redis.NewSignalBus(redisClient)

	// --- S3 blob storage (only for modes that archive) ---
	if needsS3(cfg.Mode) {
		s3Client, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.S3.Endpoint,
			Region:         cfg.S3.Region,
			Bucket:         cfg.S3.Bucket,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			UseSSL:         cfg.S3.UseSSL,
			ForcePathStyle: cfg.S3.ForcePathStyle,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: s3: %w", err)
		}
		closers = append(closers, func() { _ = s3Client.Close() })

		deps.BlobWriter = s3blob.NewWriter(s3Client)
		deps.Archiver = s3blob.NewSnapshotArchiver(deps.BlobWriter, deps.SnapshotStore)
	}

	// --- Notifications ---
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(
			cfg.Notify.TelegramToken,
			cfg.Notify.TelegramChatID,
		))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	deps.Notifier = notify.NewNotifier(senders, cfg.Notify.Events, logger)

	return deps, cleanup, nil
}
