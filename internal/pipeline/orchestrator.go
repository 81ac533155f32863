package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// Orchestrator manages the pipeline goroutines: the leaderboard poller and
// the cold-storage archive loop.
type Orchestrator struct {
	poller          *LeaderboardPoller
	archiveLoop     *ArchiveLoop
	pollInterval    time.Duration
	archiveInterval time.Duration
	logger          *slog.Logger
}

// NewOrchestrator creates a new Orchestrator. archiveLoop may be nil when
// cold storage is not configured; only the poller runs then.
func NewOrchestrator(
	poller *LeaderboardPoller,
	archiveLoop *ArchiveLoop,
	pollInterval time.Duration,
	archiveInterval time.Duration,
	logger *slog.Logger,
) *Orchestrator {
	return &Orchestrator{
		poller:          poller,
		archiveLoop:     archiveLoop,
		pollInterval:    pollInterval,
		archiveInterval: archiveInterval,
		logger:          logger,
	}
}

// Run starts the pipeline loops as concurrent goroutines using an errgroup.
// Each goroutine respects ctx cancellation. If any goroutine returns a
// non-context error, the errgroup cancels the shared context and Run returns
// that error.
func (o *Orchestrator) Run(ctx context.Context) error {
	o.logger.Info("pipeline orchestrator starting",
		slog.Duration("poll_interval", o.pollInterval),
		slog.Duration("archive_interval", o.archiveInterval),
	)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		o.logger.Info("starting poller loop")
		err := o.poller.RunLoop(ctx, o.pollInterval)
		if ctx.Err() != nil {
			return nil // clean shutdown
		}
		return fmt.Errorf("poller: %w", err)
	})

	if o.archiveLoop != nil {
		g.Go(func() error {
			o.logger.Info("starting archive loop")
			err := o.archiveLoop.RunLoop(ctx, o.archiveInterval)
			if ctx.Err() != nil {
				return nil // clean shutdown
			}
			return fmt.Errorf("archive loop: %w", err)
		})
	}

	err := g.Wait()
	if err != nil {
		o.logger.Error("pipeline orchestrator stopped with error", slog.String("error", err.Error()))
		return err
	}

	o.logger.Info("pipeline orchestrator stopped cleanly")
	return nil
}
