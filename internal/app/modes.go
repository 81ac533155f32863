package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Calibrhq/calibr-app-sub000/internal/pipeline"
	"github.com/Calibrhq/calibr-app-sub000/internal/server"
	"github.com/Calibrhq/calibr-app-sub000/internal/server/handler"
	"github.com/Calibrhq/calibr-app-sub000/internal/server/ws"
	"github.com/Calibrhq/calibr-app-sub000/internal/service"
)

// shutdownGrace bounds how long in-flight HTTP requests may run after the
// context is cancelled.
const shutdownGrace = 10 * time.Second

// ServerMode runs the read API and WebSocket hub without the polling
// pipeline. It serves whatever snapshots the cache and store already hold.
func (a *App) ServerMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "running in server mode")

	g, ctx := errgroup.WithContext(ctx)
	a.startHTTPServer(ctx, g, deps)
	return waitGroup(g)
}

// PollMode runs the polling pipeline without the API server. It is the
// deployment shape for a dedicated aggregation worker.
func (a *App) PollMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "running in poll mode")

	if deps.Ledger == nil {
		return fmt.Errorf("app: poll mode requires a ledger endpoint and package")
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.newOrchestrator(deps).Run(ctx)
	})
	return waitGroup(g)
}

// FullMode runs the polling pipeline and the API server in one process.
func (a *App) FullMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "running in full mode")

	if deps.Ledger == nil {
		return fmt.Errorf("app: full mode requires a ledger endpoint and package")
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.newOrchestrator(deps).Run(ctx)
	})
	a.startHTTPServer(ctx, g, deps)
	return waitGroup(g)
}

// newOrchestrator assembles the poller and, when cold storage is wired, the
// archive loop.
func (a *App) newOrchestrator(deps *Dependencies) *pipeline.Orchestrator {
	poller := pipeline.NewLeaderboardPoller(
		deps.Ledger,
		deps.SnapshotStore,
		deps.SnapshotCache,
		deps.SignalBus,
		deps.Notifier,
		a.logger,
	)

	var archiveLoop *pipeline.ArchiveLoop
	if deps.Archiver != nil {
		archiveLoop = pipeline.NewArchiveLoop(
			deps.Archiver,
			deps.SnapshotStore,
			a.cfg.Poll.ArchiveRetentionDays,
			deps.Notifier,
			a.logger,
		)
	}

	return pipeline.NewOrchestrator(
		poller,
		archiveLoop,
		a.cfg.Poll.Interval.Duration,
		a.cfg.Poll.ArchiveInterval.Duration,
		a.logger,
	)
}

// startHTTPServer registers the API server and WebSocket hub goroutines on
// the errgroup when the server is enabled in configuration.
func (a *App) startHTTPServer(ctx context.Context, g *errgroup.Group, deps *Dependencies) {
	if !a.cfg.Server.Enabled {
		a.logger.InfoContext(ctx, "HTTP server disabled by configuration")
		return
	}

	svc := service.NewLeaderboardService(
		deps.SnapshotCache,
		deps.SnapshotStore,
		deps.Ledger,
		a.logger,
	)

	hub := ws.NewHub(deps.SignalBus, a.logger, ws.Config{
		Mode:      a.cfg.Mode,
		StartedAt: time.Now().UTC(),
	})
	g.Go(func() error {
		err := hub.Run(ctx)
		if ctx.Err() != nil {
			return nil
		}
		return err
	})

	srv := server.NewServer(server.Config{
		Port:        a.cfg.Server.Port,
		CORSOrigins: a.cfg.Server.CORSOrigins,
		APIKey:      a.cfg.Server.APIKey,
		APIKeyHash:  a.cfg.Server.APIKeyHash,
	}, server.Handlers{
		Health:      handler.NewHealthHandler(a.cfg.Mode, time.Now().UTC(), a.logger),
		Leaderboard: handler.NewLeaderboardHandler(svc, a.logger),
		Markets:     handler.NewMarketHandler(svc, a.logger),
		Quotes:      handler.NewQuoteHandler(a.logger),
	}, hub, deps.RateLimiter, a.logger)

	g.Go(func() error {
		return srv.Start()
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("server shutdown", slog.String("error", err.Error()))
		}
		return nil
	})
}

// waitGroup waits for the errgroup, treating context cancellation as a clean
// exit.
func waitGroup(g *errgroup.Group) error {
	if err := g.Wait(); err != nil && err != context.Canceled {
		return err
	}
	return nil
}
