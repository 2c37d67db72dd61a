// Package merge produces the single view of a resource that a screen
// renders: the cached server snapshot with pending local mutations applied
// on top. It is a pure read over the Cache Store — no network, no hidden
// state, identical output for identical store contents.
package merge

import (
	"context"
	"fmt"

	"walletsync/internal/cache"
	"walletsync/internal/core"
)

// List merges the snapshot for r with its pending mutations:
//
//  1. drop snapshot records with a pending delete (delete wins over any
//     pending update for the same id),
//  2. apply pending update patches to the survivors,
//  3. append pending creates tagged IsPending, skipping any whose local id
//     already landed in the snapshot via a later fetch or has a pending
//     delete.
//
// The output is not re-sorted; callers that want date-descending order sort
// it themselves.
func List(ctx context.Context, store *cache.Store, r core.Resource) ([]core.Transaction, error) {
	snapshot, err := store.CachedList(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("merge %s: %w", r, err)
	}

	pendingDeletes, err := store.PendingDeletes(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("merge %s: %w", r, err)
	}
	deleted := make(map[string]struct{}, len(pendingDeletes))
	for _, env := range pendingDeletes {
		deleted[env.TargetID] = struct{}{}
	}

	patches, err := store.PendingUpdatesByTarget(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("merge %s: %w", r, err)
	}

	out := make([]core.Transaction, 0, len(snapshot))
	present := make(map[string]struct{}, len(snapshot))
	for _, tx := range snapshot {
		present[tx.ID] = struct{}{}
		if _, gone := deleted[tx.ID]; gone {
			continue
		}
		if patch, ok := patches[tx.ID]; ok {
			patched, err := patch.Apply(tx)
			if err != nil {
				return nil, fmt.Errorf("merge %s: patch %s: %w", r, tx.ID, err)
			}
			tx = patched
		}
		out = append(out, tx)
	}

	pendingCreates, err := store.PendingCreates(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("merge %s: %w", r, err)
	}
	for _, env := range pendingCreates {
		// Skip creates already folded into the snapshot by a later fetch,
		// and created-then-deleted records.
		if _, ok := present[env.LocalID]; ok {
			continue
		}
		if _, gone := deleted[env.LocalID]; gone {
			continue
		}
		rec := env.Record
		rec.ID = env.LocalID
		rec.IsPending = true
		out = append(out, rec)
	}

	return out, nil
}
