package participants

import (
	"context"
	"testing"

	"walletsync/internal/core"
	"walletsync/internal/kv"
)

func TestSaveAndRecent(t *testing.T) {
	ctx := context.Background()
	book := New(kv.NewMemory())

	if err := book.Save(ctx, []core.Participant{
		{Name: "Ada", Phone: "+39123"},
		{Name: "Bea"},
	}); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := book.Recent(ctx)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 2 || got[0].Name != "Ada" || got[1].Name != "Bea" {
		t.Fatalf("unexpected list: %+v", got)
	}
	if got[0].Phone != "+39123" {
		t.Errorf("phone lost: %+v", got[0])
	}
}

func TestSaveMovesReusedNameToFront(t *testing.T) {
	ctx := context.Background()
	book := New(kv.NewMemory())

	if err := book.Save(ctx, []core.Participant{{Name: "Ada"}, {Name: "Bea"}}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := book.Save(ctx, []core.Participant{{Name: "Bea", Phone: "+39456"}}); err != nil {
		t.Fatalf("save again: %v", err)
	}

	got, _ := book.Recent(ctx)
	if len(got) != 2 {
		t.Fatalf("expected 2 participants, got %d", len(got))
	}
	if got[0].Name != "Bea" || got[0].Phone != "+39456" {
		t.Errorf("reused name not refreshed: %+v", got[0])
	}
	if got[1].Name != "Ada" {
		t.Errorf("existing entry lost: %+v", got)
	}
}

func TestSaveSkipsBlankNames(t *testing.T) {
	ctx := context.Background()
	book := New(kv.NewMemory())

	if err := book.Save(ctx, []core.Participant{{Name: "  "}, {Name: "Ada"}}); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, _ := book.Recent(ctx)
	if len(got) != 1 || got[0].Name != "Ada" {
		t.Fatalf("unexpected list: %+v", got)
	}
}

func TestUpdateRename(t *testing.T) {
	ctx := context.Background()
	book := New(kv.NewMemory())

	if err := book.Save(ctx, []core.Participant{{Name: "Ada", Phone: "+39123"}}); err != nil {
		t.Fatalf("save: %v", err)
	}

	// rename only, phone kept
	if err := book.Update(ctx, "Ada", "Adele", nil); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ := book.Recent(ctx)
	if got[0].Name != "Adele" || got[0].Phone != "+39123" {
		t.Fatalf("rename lost phone: %+v", got[0])
	}

	// rename with new phone
	phone := "+39789"
	if err := book.Update(ctx, "Adele", "Adele B", &phone); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ = book.Recent(ctx)
	if got[0].Name != "Adele B" || got[0].Phone != "+39789" {
		t.Fatalf("unexpected entry: %+v", got[0])
	}

	// unknown name is a no-op
	if err := book.Update(ctx, "Nobody", "Somebody", nil); err != nil {
		t.Fatalf("update unknown: %v", err)
	}
}

func TestRecentTolerantOfCorruptValue(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()
	book := New(mem)

	if err := mem.Set(ctx, "recent_participants", "][ nope"); err != nil {
		t.Fatalf("seed corrupt value: %v", err)
	}
	got, err := book.Recent(ctx)
	if err != nil {
		t.Fatalf("corrupt value should not error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("corrupt value should read as empty, got %+v", got)
	}
}
