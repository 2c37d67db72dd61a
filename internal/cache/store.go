// Package cache is the Cache Store: durable snapshots of the last
// known-good server records plus the queues of pending local mutations,
// namespaced per resource over a kv.Store.
//
// Failure semantics follow one rule throughout: a value that fails to parse
// is treated as absent (the cache degrades, it never crashes a read), while
// a storage-level failure is returned to the caller wrapped.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"walletsync/internal/core"
	"walletsync/internal/kv"
)

// Store persists snapshots and pending mutation envelopes.
type Store struct {
	kv kv.Store
}

func New(store kv.Store) *Store {
	return &Store{kv: store}
}

// readList loads a JSON array from the kv store. Missing and corrupt values
// both degrade to an empty list; only storage failures propagate.
func readList[T any](ctx context.Context, s *Store, key string) ([]T, error) {
	raw, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var out []T
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		slog.WarnContext(ctx, "Discarding corrupt cache value",
			"key", key, "error", err)
		return nil, nil
	}
	return out, nil
}

func writeList[T any](ctx context.Context, s *Store, key string, list []T) error {
	if list == nil {
		list = []T{}
	}
	raw, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	if err := s.kv.Set(ctx, key, string(raw)); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// CachedList returns the last stored snapshot for a resource. A missing or
// unparseable snapshot yields an empty list, never an error.
func (s *Store) CachedList(ctx context.Context, r core.Resource) ([]core.Transaction, error) {
	if !r.Valid() {
		return nil, core.ErrInvalidResource
	}
	return readList[core.Transaction](ctx, s, snapshotKey(r))
}

// SetCachedList overwrites the snapshot for a resource wholesale.
func (s *Store) SetCachedList(ctx context.Context, r core.Resource, list []core.Transaction) error {
	if !r.Valid() {
		return core.ErrInvalidResource
	}
	return writeList(ctx, s, snapshotKey(r), list)
}

// RemoveCachedItem drops one record from the snapshot, used after a
// confirmed delete so the view stays consistent before the next full fetch.
func (s *Store) RemoveCachedItem(ctx context.Context, r core.Resource, id string) error {
	list, err := s.CachedList(ctx, r)
	if err != nil {
		return err
	}
	kept := list[:0]
	for _, tx := range list {
		if tx.ID != id {
			kept = append(kept, tx)
		}
	}
	return writeList(ctx, s, snapshotKey(r), kept)
}

// UpdateCachedItem applies a patch to one snapshot record in place, used
// after a confirmed update.
func (s *Store) UpdateCachedItem(ctx context.Context, r core.Resource, id string, patch core.Patch) error {
	list, err := s.CachedList(ctx, r)
	if err != nil {
		return err
	}
	for i, tx := range list {
		if tx.ID != id {
			continue
		}
		patched, err := patch.Apply(tx)
		if err != nil {
			return fmt.Errorf("apply patch to %s: %w", id, err)
		}
		list[i] = patched
		break
	}
	return writeList(ctx, s, snapshotKey(r), list)
}

// AppendCachedItem adds a freshly confirmed record to the snapshot, used by
// the replayer after the server acknowledges a create.
func (s *Store) AppendCachedItem(ctx context.Context, r core.Resource, tx core.Transaction) error {
	list, err := s.CachedList(ctx, r)
	if err != nil {
		return err
	}
	return writeList(ctx, s, snapshotKey(r), append(list, tx))
}

// PendingCreates returns the queued offline creates for a resource.
func (s *Store) PendingCreates(ctx context.Context, r core.Resource) ([]PendingCreate, error) {
	return readList[PendingCreate](ctx, s, pendingCreatesKey(r))
}

// AddPendingCreate queues an offline-created record. The record must
// already carry its locally generated identifier.
func (s *Store) AddPendingCreate(ctx context.Context, r core.Resource, rec core.Transaction) (PendingCreate, error) {
	if !core.ParseID(rec.ID).IsLocal() {
		return PendingCreate{}, fmt.Errorf("pending create for %q: record has no local id", r)
	}
	creates, err := s.PendingCreates(ctx, r)
	if err != nil {
		return PendingCreate{}, err
	}
	env := PendingCreate{
		EnvelopeID: newEnvelopeID(),
		LocalID:    rec.ID,
		Record:     rec,
		RecordedAt: time.Now().UTC(),
	}
	if err := writeList(ctx, s, pendingCreatesKey(r), append(creates, env)); err != nil {
		return PendingCreate{}, err
	}
	return env, nil
}

// MergePendingCreate folds a patch into the queued create for localID.
// Returns false when no matching create exists.
func (s *Store) MergePendingCreate(ctx context.Context, r core.Resource, localID string, patch core.Patch) (bool, error) {
	creates, err := s.PendingCreates(ctx, r)
	if err != nil {
		return false, err
	}
	for i, env := range creates {
		if env.LocalID != localID {
			continue
		}
		patched, err := patch.Apply(env.Record)
		if err != nil {
			return false, fmt.Errorf("apply patch to pending create %s: %w", localID, err)
		}
		// The local id is the envelope's identity; a patch never changes it.
		patched.ID = env.LocalID
		creates[i].Record = patched
		creates[i].RecordedAt = time.Now().UTC()
		return true, writeList(ctx, s, pendingCreatesKey(r), creates)
	}
	return false, nil
}

// RemovePendingCreate drops the queued create for localID.
func (s *Store) RemovePendingCreate(ctx context.Context, r core.Resource, localID string) error {
	creates, err := s.PendingCreates(ctx, r)
	if err != nil {
		return err
	}
	kept := creates[:0]
	for _, env := range creates {
		if env.LocalID != localID {
			kept = append(kept, env)
		}
	}
	return writeList(ctx, s, pendingCreatesKey(r), kept)
}

// PendingUpdates returns the queued updates for a resource.
func (s *Store) PendingUpdates(ctx context.Context, r core.Resource) ([]PendingUpdate, error) {
	return readList[PendingUpdate](ctx, s, pendingUpdatesKey(r))
}

// PendingUpdatesByTarget indexes the queued updates by target id.
func (s *Store) PendingUpdatesByTarget(ctx context.Context, r core.Resource) (map[string]core.Patch, error) {
	updates, err := s.PendingUpdates(ctx, r)
	if err != nil {
		return nil, err
	}
	byTarget := make(map[string]core.Patch, len(updates))
	for _, env := range updates {
		byTarget[env.TargetID] = env.Patch
	}
	return byTarget, nil
}

// AddPendingUpdate queues a patch for id. A second update for the same
// target does not stack a duplicate envelope: the new patch is merged over
// the previous one, last writer wins per field.
func (s *Store) AddPendingUpdate(ctx context.Context, r core.Resource, id string, patch core.Patch) (PendingUpdate, error) {
	updates, err := s.PendingUpdates(ctx, r)
	if err != nil {
		return PendingUpdate{}, err
	}
	for i, env := range updates {
		if env.TargetID != id {
			continue
		}
		updates[i].Patch = env.Patch.Merge(patch)
		updates[i].RecordedAt = time.Now().UTC()
		return updates[i], writeList(ctx, s, pendingUpdatesKey(r), updates)
	}
	env := PendingUpdate{
		EnvelopeID: newEnvelopeID(),
		TargetID:   id,
		Patch:      patch,
		RecordedAt: time.Now().UTC(),
	}
	if err := writeList(ctx, s, pendingUpdatesKey(r), append(updates, env)); err != nil {
		return PendingUpdate{}, err
	}
	return env, nil
}

// RemovePendingUpdate drops the queued update for id.
func (s *Store) RemovePendingUpdate(ctx context.Context, r core.Resource, id string) error {
	updates, err := s.PendingUpdates(ctx, r)
	if err != nil {
		return err
	}
	kept := updates[:0]
	for _, env := range updates {
		if env.TargetID != id {
			kept = append(kept, env)
		}
	}
	return writeList(ctx, s, pendingUpdatesKey(r), kept)
}

// PendingDeletes returns the queued deletes for a resource.
func (s *Store) PendingDeletes(ctx context.Context, r core.Resource) ([]PendingDelete, error) {
	return readList[PendingDelete](ctx, s, pendingDeletesKey(r))
}

// AddPendingDelete queues a delete marker for id. Two short circuits keep
// the queues replayable:
//
//   - deleting a record that only exists as a pending create discards the
//     create instead (it never needs to reach the server), and
//   - a queued update for the same id is dropped, since the delete
//     supersedes it.
//
// The returned bool reports whether a delete marker was actually queued.
func (s *Store) AddPendingDelete(ctx context.Context, r core.Resource, id string) (bool, error) {
	if core.ParseID(id).IsLocal() {
		creates, err := s.PendingCreates(ctx, r)
		if err != nil {
			return false, err
		}
		for _, env := range creates {
			if env.LocalID == id {
				return false, s.RemovePendingCreate(ctx, r, id)
			}
		}
		// No matching create: fall through and queue the marker so the
		// record still disappears from the merged view.
	}

	if err := s.RemovePendingUpdate(ctx, r, id); err != nil {
		return false, err
	}

	deletes, err := s.PendingDeletes(ctx, r)
	if err != nil {
		return false, err
	}
	for _, env := range deletes {
		if env.TargetID == id {
			return true, nil
		}
	}
	env := PendingDelete{
		EnvelopeID: newEnvelopeID(),
		TargetID:   id,
		RecordedAt: time.Now().UTC(),
	}
	return true, writeList(ctx, s, pendingDeletesKey(r), append(deletes, env))
}

// RemovePendingDelete drops the queued delete for id.
func (s *Store) RemovePendingDelete(ctx context.Context, r core.Resource, id string) error {
	deletes, err := s.PendingDeletes(ctx, r)
	if err != nil {
		return err
	}
	kept := deletes[:0]
	for _, env := range deletes {
		if env.TargetID != id {
			kept = append(kept, env)
		}
	}
	return writeList(ctx, s, pendingDeletesKey(r), kept)
}

// PendingCounts reports queue sizes for a resource.
func (s *Store) PendingCounts(ctx context.Context, r core.Resource) (Counts, error) {
	creates, err := s.PendingCreates(ctx, r)
	if err != nil {
		return Counts{}, err
	}
	updates, err := s.PendingUpdates(ctx, r)
	if err != nil {
		return Counts{}, err
	}
	deletes, err := s.PendingDeletes(ctx, r)
	if err != nil {
		return Counts{}, err
	}
	return Counts{Creates: len(creates), Updates: len(updates), Deletes: len(deletes)}, nil
}
