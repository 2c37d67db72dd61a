// Package services contains the reconciliation pass: a background loop
// that replays recorded offline mutations against the backend once it is
// reachable again and clears their envelopes.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"walletsync/internal/api"
	"walletsync/internal/cache"
	"walletsync/internal/core"
)

// errBackendUnreachable aborts a replay cycle quietly; the next tick will
// try again.
var errBackendUnreachable = errors.New("backend unreachable")

// ReplayerConfig holds configuration for the replayer.
type ReplayerConfig struct {
	// PollInterval is how often to attempt a replay cycle (default: 30s)
	PollInterval time.Duration

	// BatchSize is the max envelopes replayed per queue per cycle
	// (default: 25)
	BatchSize int
}

// DefaultReplayerConfig returns sensible defaults.
func DefaultReplayerConfig() ReplayerConfig {
	return ReplayerConfig{
		PollInterval: 30 * time.Second,
		BatchSize:    25,
	}
}

// Replayer drains the pending-mutation queues against the API client.
// Deletes replay first, then updates, then creates; a confirmed mutation
// deletes its envelope and patches the snapshot so the merged view stays
// consistent without waiting for the next full fetch.
type Replayer struct {
	store  *cache.Store
	client api.Client
	config ReplayerConfig

	// Lifecycle management
	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
	kickCh  chan struct{}
}

// NewReplayer creates a new replayer.
func NewReplayer(store *cache.Store, client api.Client, config ReplayerConfig) *Replayer {
	return &Replayer{
		store:  store,
		client: client,
		config: config,
		kickCh: make(chan struct{}, 1),
	}
}

// Start begins the replay loop. Returns an error if already running.
func (p *Replayer) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("replayer is already running")
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	p.mu.Unlock()

	go p.runLoop(ctx)

	slog.InfoContext(ctx, "Replayer started",
		"poll_interval", p.config.PollInterval,
		"batch_size", p.config.BatchSize)

	return nil
}

// Stop gracefully stops the replayer and waits for completion.
func (p *Replayer) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()

	close(p.stopCh)

	select {
	case <-p.doneCh:
		slog.InfoContext(ctx, "Replayer stopped gracefully")
	case <-ctx.Done():
		slog.WarnContext(ctx, "Replayer stop timed out")
		return ctx.Err()
	}

	p.mu.Lock()
	p.running = false
	p.mu.Unlock()

	return nil
}

// IsRunning returns whether the replayer is currently running.
func (p *Replayer) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// Kick requests an immediate replay cycle, used when a queue notification
// arrives so a reconnected device does not wait out the poll interval.
func (p *Replayer) Kick() {
	select {
	case p.kickCh <- struct{}{}:
	default:
	}
}

func (p *Replayer) runLoop(ctx context.Context) {
	defer close(p.doneCh)

	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	// Replay immediately on startup
	p.ReplayCycle(ctx)

	for {
		select {
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.ReplayCycle(ctx)
		case <-p.kickCh:
			p.ReplayCycle(ctx)
		}
	}
}

// ReplayCycle replays pending mutations for every resource, resources in
// parallel, queues within a resource strictly in order. A connectivity
// failure ends the cycle without touching the remaining envelopes.
func (p *Replayer) ReplayCycle(ctx context.Context) {
	g, ctx := errgroup.WithContext(ctx)
	for _, r := range core.AllResources() {
		r := r
		g.Go(func() error {
			return p.replayResource(ctx, r)
		})
	}
	if err := g.Wait(); err != nil {
		if errors.Is(err, errBackendUnreachable) {
			slog.DebugContext(ctx, "Replay cycle skipped, backend unreachable")
			return
		}
		slog.ErrorContext(ctx, "Replay cycle failed", "error", err)
	}
}

func (p *Replayer) replayResource(ctx context.Context, r core.Resource) error {
	if err := p.replayDeletes(ctx, r); err != nil {
		return err
	}
	if err := p.replayUpdates(ctx, r); err != nil {
		return err
	}
	return p.replayCreates(ctx, r)
}

func (p *Replayer) replayDeletes(ctx context.Context, r core.Resource) error {
	deletes, err := p.store.PendingDeletes(ctx, r)
	if err != nil {
		return fmt.Errorf("load pending deletes for %s: %w", r, err)
	}

	for _, env := range limit(deletes, p.config.BatchSize) {
		if core.ParseID(env.TargetID).IsLocal() {
			// A stale marker for a record that never reached the server;
			// nothing to replay.
			if err := p.store.RemovePendingDelete(ctx, r, env.TargetID); err != nil {
				return err
			}
			continue
		}

		err := p.client.Delete(ctx, r, env.TargetID)
		switch {
		case err == nil:
		case alreadyGone(err):
			slog.InfoContext(ctx, "Record already deleted on server",
				"resource", r, "target_id", env.TargetID)
		case api.IsConnectivity(err):
			return errBackendUnreachable
		default:
			slog.ErrorContext(ctx, "Failed to replay delete",
				"resource", r, "target_id", env.TargetID, "error", err)
			continue
		}

		if err := p.store.RemovePendingDelete(ctx, r, env.TargetID); err != nil {
			return err
		}
		if err := p.store.RemoveCachedItem(ctx, r, env.TargetID); err != nil {
			return err
		}
		slog.InfoContext(ctx, "Replayed delete",
			"resource", r, "target_id", env.TargetID, "envelope_id", env.EnvelopeID)
	}
	return nil
}

func (p *Replayer) replayUpdates(ctx context.Context, r core.Resource) error {
	updates, err := p.store.PendingUpdates(ctx, r)
	if err != nil {
		return fmt.Errorf("load pending updates for %s: %w", r, err)
	}

	for _, env := range limit(updates, p.config.BatchSize) {
		if core.ParseID(env.TargetID).IsLocal() {
			// The recorder folds local-id updates into the create; an
			// envelope like this can only be a remnant and can never be
			// replayed.
			if err := p.store.RemovePendingUpdate(ctx, r, env.TargetID); err != nil {
				return err
			}
			continue
		}

		err := p.client.Update(ctx, r, env.TargetID, env.Patch)
		switch {
		case err == nil:
		case alreadyGone(err):
			// The record vanished server-side; the patch has no target.
			slog.WarnContext(ctx, "Dropping update for missing record",
				"resource", r, "target_id", env.TargetID)
			if err := p.store.RemovePendingUpdate(ctx, r, env.TargetID); err != nil {
				return err
			}
			continue
		case api.IsConnectivity(err):
			return errBackendUnreachable
		default:
			slog.ErrorContext(ctx, "Failed to replay update",
				"resource", r, "target_id", env.TargetID, "error", err)
			continue
		}

		if err := p.store.RemovePendingUpdate(ctx, r, env.TargetID); err != nil {
			return err
		}
		if err := p.store.UpdateCachedItem(ctx, r, env.TargetID, env.Patch); err != nil {
			return err
		}
		slog.InfoContext(ctx, "Replayed update",
			"resource", r, "target_id", env.TargetID, "envelope_id", env.EnvelopeID)
	}
	return nil
}

func (p *Replayer) replayCreates(ctx context.Context, r core.Resource) error {
	creates, err := p.store.PendingCreates(ctx, r)
	if err != nil {
		return fmt.Errorf("load pending creates for %s: %w", r, err)
	}

	for _, env := range limit(creates, p.config.BatchSize) {
		// identity is the server's to assign
		rec := env.Record
		rec.ID = ""
		rec.IsPending = false

		confirmed, err := p.client.Create(ctx, r, rec)
		switch {
		case err == nil:
		case api.IsConnectivity(err):
			return errBackendUnreachable
		default:
			// Permanent rejection; keep the envelope so the data is not
			// lost and let the screen surface it on its next attempt.
			slog.ErrorContext(ctx, "Failed to replay create",
				"resource", r, "local_id", env.LocalID, "error", err)
			continue
		}

		if err := p.store.RemovePendingCreate(ctx, r, env.LocalID); err != nil {
			return err
		}
		if err := p.store.AppendCachedItem(ctx, r, confirmed); err != nil {
			return err
		}
		slog.InfoContext(ctx, "Replayed create",
			"resource", r,
			"local_id", env.LocalID,
			"server_id", confirmed.ID,
			"envelope_id", env.EnvelopeID)
	}
	return nil
}

func alreadyGone(err error) bool {
	var statusErr *api.StatusError
	return errors.As(err, &statusErr) && statusErr.NotFound()
}

func limit[T any](list []T, max int) []T {
	if max > 0 && len(list) > max {
		return list[:max]
	}
	return list
}
