package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Calibrhq/calibr-app-sub000/internal/domain"
	"github.com/Calibrhq/calibr-app-sub000/internal/notify"
)

// ArchiveLoop periodically exports aged snapshot history to cold storage and
// prunes it from the primary store.
type ArchiveLoop struct {
	archiver  domain.Archiver
	store     domain.SnapshotStore
	retention time.Duration
	notifier  *notify.Notifier
	logger    *slog.Logger
}

// NewArchiveLoop creates an archive loop that retains snapshot history for
// the given number of days.
func NewArchiveLoop(
	archiver domain.Archiver,
	store domain.SnapshotStore,
	retentionDays int,
	notifier *notify.Notifier,
	logger *slog.Logger,
) *ArchiveLoop {
	return &ArchiveLoop{
		archiver:  archiver,
		store:     store,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		notifier:  notifier,
		logger:    logger.With(slog.String("component", "archiver")),
	}
}

// RunOnce archives everything older than the retention cutoff, then deletes
// the archived records. Deletion is skipped entirely when the upload failed
// so no history is lost.
func (a *ArchiveLoop) RunOnce(ctx context.Context) error {
	cutoff := time.Now().UTC().Add(-a.retention)

	archived, err := a.archiver.ArchiveSnapshots(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("archive snapshots: %w", err)
	}
	if archived == 0 {
		a.logger.Debug("nothing to archive")
		return nil
	}

	deleted, err := a.store.DeleteBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("prune archived snapshots: %w", err)
	}

	a.logger.Info("snapshot history archived",
		slog.Int64("archived", archived),
		slog.Int64("deleted", deleted),
		slog.Time("cutoff", cutoff),
	)

	if a.notifier != nil {
		_ = a.notifier.Notify(ctx, "snapshot_archived",
			"Snapshot history archived",
			fmt.Sprintf("%d snapshots exported to cold storage (cutoff %s).", archived, cutoff.Format(time.RFC3339)),
		)
	}
	return nil
}

// RunLoop runs RunOnce on every tick until the context is cancelled.
// Failures are logged; the loop keeps going so a transient storage outage
// does not end archival for the process lifetime.
func (a *ArchiveLoop) RunLoop(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.logger.Info("archive loop stopped")
			return ctx.Err()
		case <-ticker.C:
			if err := a.RunOnce(ctx); err != nil && ctx.Err() == nil {
				a.logger.Error("archive pass failed", slog.String("error", err.Error()))
			}
		}
	}
}
