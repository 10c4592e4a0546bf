// Package stats refreshes video platform statistics in the background.
package stats

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/vidtrack/vidtrack/internal/integration"
	"github.com/vidtrack/vidtrack/internal/metrics"
	"github.com/vidtrack/vidtrack/internal/model"
)

// DefaultInterval is the default refresh cadence.
const DefaultInterval = 6 * time.Hour

// Store defines the persistence operations the refresher needs.
type Store interface {
	ListVideos(ctx context.Context) ([]*model.Video, error)
	UpdateVideoStats(ctx context.Context, id string, stats model.VideoStats) error
}

// Source fetches stats for one platform video ID.
type Source interface {
	VideoStats(ctx context.Context, videoID string) (*model.VideoStats, error)
}

// Refresher periodically overwrites per-video platform stats.
// Last writer wins; a failed video never blocks the rest of the sweep.
type Refresher struct {
	store    Store
	source   Source
	logger   *slog.Logger
	metrics  metrics.Recorder
	interval time.Duration

	started bool
	cancel  context.CancelFunc
	done    chan struct{}
	mu      sync.Mutex
}

// NewRefresher creates a stats refresher.
func NewRefresher(store Store, source Source, logger *slog.Logger, interval time.Duration, recorder metrics.Recorder) *Refresher {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &Refresher{
		store:    store,
		source:   source,
		logger:   logger.With("component", "stats.refresher"),
		metrics:  recorder,
		interval: interval,
	}
}

// Run starts the refresh loop. Blocks until the context is cancelled.
// One sweep runs immediately so a fresh deployment is not stale for a
// whole interval.
func (r *Refresher) Run(ctx context.Context) error {
	r.mu.Lock()
	if r.started {
		r.mu.Unlock()
		return errors.New("refresher already started")
	}
	r.started = true
	r.done = make(chan struct{})
	ctx, r.cancel = context.WithCancel(ctx)
	r.mu.Unlock()

	defer close(r.done)

	r.logger.Info("stats refresher started", "interval", r.interval.String())

	r.sweep(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("stats refresher stopping")
			return nil
		case <-ticker.C:
			r.sweep(ctx)
		}
	}
}

// Shutdown gracefully stops the refresher, completing any in-flight
// sweep. It implements server.ShutdownFunc for graceful shutdown.
func (r *Refresher) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	if !r.started {
		r.mu.Unlock()
		return nil
	}
	cancel := r.cancel
	done := r.done
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	if done != nil {
		select {
		case <-done:
			r.logger.Info("stats refresher shutdown complete")
			return nil
		case <-ctx.Done():
			r.logger.Warn("stats refresher shutdown timed out")
			return ctx.Err()
		}
	}
	return nil
}

// RefreshOnce runs a single sweep outside the loop. Used by tests and
// one-shot maintenance commands.
func (r *Refresher) RefreshOnce(ctx context.Context) {
	r.sweep(ctx)
}

// sweep refreshes every known video. The slug doubles as the platform
// video ID.
func (r *Refresher) sweep(ctx context.Context) {
	videos, err := r.store.ListVideos(ctx)
	if err != nil {
		r.logger.Error("list videos", "error", err)
		r.metrics.IncStatsRefresh("failed")
		return
	}

	var updated, failed int
	for _, video := range videos {
		if ctx.Err() != nil {
			return
		}

		stats, err := r.source.VideoStats(ctx, video.Slug)
		if err != nil {
			if errors.Is(err, integration.ErrVideoStatsNotFound) {
				// Videos without a platform counterpart keep stale stats
				continue
			}
			failed++
			r.logger.Warn("fetch video stats",
				"slug", video.Slug,
				"error", err,
			)
			continue
		}

		// The public API never reports watch time; keep what we have
		if stats.AvgWatchTime == 0 {
			stats.AvgWatchTime = video.AvgWatchTime
		}

		if err := r.store.UpdateVideoStats(ctx, video.ID, *stats); err != nil {
			failed++
			r.logger.Warn("update video stats",
				"slug", video.Slug,
				"error", err,
			)
			continue
		}
		updated++
	}

	if failed > 0 {
		r.metrics.IncStatsRefresh("failed")
	} else {
		r.metrics.IncStatsRefresh("success")
	}

	r.logger.Info("stats sweep complete",
		"videos", len(videos),
		"updated", updated,
		"failed", failed,
	)
}
