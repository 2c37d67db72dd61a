// Package participants remembers the contacts a user has split bills with.
// It follows the same snapshot-store pattern as the transaction cache but
// lives under its own key, so clearing or losing expense data never loses
// the contact memory.
package participants

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"walletsync/internal/core"
	"walletsync/internal/kv"
)

const storageKey = "recent_participants"

// maxRemembered bounds the list; the oldest entries fall off first.
const maxRemembered = 50

// Book is the recent-participants store.
type Book struct {
	kv kv.Store
}

func New(store kv.Store) *Book {
	return &Book{kv: store}
}

// Recent returns remembered participants, most recently used first. A
// corrupt stored value degrades to an empty list.
func (b *Book) Recent(ctx context.Context) ([]core.Participant, error) {
	raw, ok, err := b.kv.Get(ctx, storageKey)
	if err != nil {
		return nil, fmt.Errorf("read recent participants: %w", err)
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var out []core.Participant
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		slog.WarnContext(ctx, "Discarding corrupt participants value", "error", err)
		return nil, nil
	}
	return out, nil
}

// Save merges the given participants into the memory, moving them to the
// front. Names are the identity; a re-used name refreshes its position and
// phone number.
func (b *Book) Save(ctx context.Context, list []core.Participant) error {
	existing, err := b.Recent(ctx)
	if err != nil {
		return err
	}

	merged := make([]core.Participant, 0, len(list)+len(existing))
	seen := make(map[string]struct{}, len(list)+len(existing))
	for _, p := range list {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		merged = append(merged, core.Participant{Name: name, Phone: p.Phone})
	}
	for _, p := range existing {
		if _, ok := seen[p.Name]; ok {
			continue
		}
		seen[p.Name] = struct{}{}
		merged = append(merged, p)
	}
	if len(merged) > maxRemembered {
		merged = merged[:maxRemembered]
	}

	return b.write(ctx, merged)
}

// Update renames a remembered participant. A nil phone keeps the stored
// number. Updating an unknown name is a no-op.
func (b *Book) Update(ctx context.Context, oldName, newName string, phone *string) error {
	list, err := b.Recent(ctx)
	if err != nil {
		return err
	}
	for i, p := range list {
		if p.Name != oldName {
			continue
		}
		list[i].Name = strings.TrimSpace(newName)
		if phone != nil {
			list[i].Phone = *phone
		}
		return b.write(ctx, list)
	}
	return nil
}

func (b *Book) write(ctx context.Context, list []core.Participant) error {
	if list == nil {
		list = []core.Participant{}
	}
	raw, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("marshal recent participants: %w", err)
	}
	if err := b.kv.Set(ctx, storageKey, string(raw)); err != nil {
		return fmt.Errorf("write recent participants: %w", err)
	}
	return nil
}
