// Package offline is the write path taken when a network call failed with
// a recoverable error: it records mutation intents in the cache store so
// they are immediately visible through the merge engine and replayable
// later. It also exposes the facade screens call (service.go).
package offline

import (
	"context"
	"fmt"
	"log/slog"

	"walletsync/internal/amqp"
	"walletsync/internal/cache"
	"walletsync/internal/core"
)

// Recorder persists offline mutation intents. The cache store is the only
// coordination point: two rapid edits to the same record serialize through
// its envelope-merge rules, not through any lock here.
type Recorder struct {
	store *cache.Store
	bus   *amqp.Client // optional; nil disables notifications
}

func NewRecorder(store *cache.Store, bus *amqp.Client) *Recorder {
	return &Recorder{store: store, bus: bus}
}

// SaveOfflineExpense queues an expense created while disconnected and
// returns its generated local id so the caller can render it immediately.
func (r *Recorder) SaveOfflineExpense(ctx context.Context, tx core.Transaction) (string, error) {
	return r.saveOfflineCreate(ctx, core.Expenses, tx)
}

// SaveOfflineIncome is SaveOfflineExpense for income records.
func (r *Recorder) SaveOfflineIncome(ctx context.Context, tx core.Transaction) (string, error) {
	return r.saveOfflineCreate(ctx, core.Income, tx)
}

// SaveOfflineRecurring is SaveOfflineExpense for recurring templates.
func (r *Recorder) SaveOfflineRecurring(ctx context.Context, tx core.Transaction) (string, error) {
	return r.saveOfflineCreate(ctx, core.Recurring, tx)
}

func (r *Recorder) saveOfflineCreate(ctx context.Context, res core.Resource, tx core.Transaction) (string, error) {
	tx.ID = GenerateLocalID()
	tx.IsPending = false // tagged by the merge engine, not persisted

	env, err := r.store.AddPendingCreate(ctx, res, tx)
	if err != nil {
		return "", fmt.Errorf("save offline %s: %w", res.Singular(), err)
	}

	slog.InfoContext(ctx, "Recorded offline create",
		"resource", res,
		"local_id", tx.ID,
		"envelope_id", env.EnvelopeID)

	r.notify(ctx, env.EnvelopeID, res, amqp.KindCreate, tx.ID)
	return tx.ID, nil
}

// SavePendingUpdate queues a patch for an expense. When id is a local id
// the patch is folded into the matching pending create instead: there is no
// server record yet, so an update envelope could never be replayed.
func (r *Recorder) SavePendingUpdate(ctx context.Context, id string, patch core.Patch) error {
	return r.savePendingUpdate(ctx, core.Expenses, id, patch)
}

// SavePendingIncomeUpdate is SavePendingUpdate for income records.
func (r *Recorder) SavePendingIncomeUpdate(ctx context.Context, id string, patch core.Patch) error {
	return r.savePendingUpdate(ctx, core.Income, id, patch)
}

func (r *Recorder) savePendingUpdate(ctx context.Context, res core.Resource, id string, patch core.Patch) error {
	if core.ParseID(id).IsLocal() {
		merged, err := r.store.MergePendingCreate(ctx, res, id, patch)
		if err != nil {
			return fmt.Errorf("save pending %s update: %w", res.Singular(), err)
		}
		if !merged {
			// Updates are only recorded for records the screen had in
			// hand; an unmatched local id means the create was already
			// discarded, so there is nothing left to patch.
			slog.WarnContext(ctx, "Dropping update for unknown local id",
				"resource", res, "local_id", id)
			return nil
		}
		slog.InfoContext(ctx, "Folded update into pending create",
			"resource", res, "local_id", id)
		return nil
	}

	env, err := r.store.AddPendingUpdate(ctx, res, id, patch)
	if err != nil {
		return fmt.Errorf("save pending %s update: %w", res.Singular(), err)
	}

	slog.InfoContext(ctx, "Recorded offline update",
		"resource", res,
		"target_id", id,
		"envelope_id", env.EnvelopeID)

	r.notify(ctx, env.EnvelopeID, res, amqp.KindUpdate, id)
	return nil
}

// SavePendingDelete queues a delete for an expense. Deleting an unsynced
// create simply discards the create envelope.
func (r *Recorder) SavePendingDelete(ctx context.Context, id string) error {
	return r.savePendingDelete(ctx, core.Expenses, id)
}

// SavePendingIncomeDelete is SavePendingDelete for income records.
func (r *Recorder) SavePendingIncomeDelete(ctx context.Context, id string) error {
	return r.savePendingDelete(ctx, core.Income, id)
}

func (r *Recorder) savePendingDelete(ctx context.Context, res core.Resource, id string) error {
	queued, err := r.store.AddPendingDelete(ctx, res, id)
	if err != nil {
		return fmt.Errorf("save pending %s delete: %w", res.Singular(), err)
	}

	if !queued {
		slog.InfoContext(ctx, "Discarded pending create for deleted record",
			"resource", res, "local_id", id)
		return nil
	}

	slog.InfoContext(ctx, "Recorded offline delete",
		"resource", res,
		"target_id", id)

	r.notify(ctx, "", res, amqp.KindDelete, id)
	return nil
}

// notify publishes a queue notification. Publishing is best effort: the
// mutation is already durable in the cache store, so a broker failure is
// logged and swallowed.
func (r *Recorder) notify(ctx context.Context, envelopeID string, res core.Resource, kind, targetID string) {
	if r.bus == nil {
		return
	}
	msg := amqp.NewMutationRecordedMessage(envelopeID, res, kind, targetID)
	if err := r.bus.PublishMutationRecorded(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to publish mutation notification",
			"resource", res,
			"kind", kind,
			"target_id", targetID,
			"error", err)
	}
}
