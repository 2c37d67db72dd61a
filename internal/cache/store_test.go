package cache

import (
	"context"
	"testing"
	"time"

	"walletsync/internal/core"
	"walletsync/internal/kv"
)

func testDate() time.Time {
	return time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC)
}

func serverTx(id, amount, category string) core.Transaction {
	return core.Transaction{
		ID:       id,
		Amount:   core.MustMoney(amount),
		Category: category,
		Date:     testDate(),
	}
}

// localTx is serverTx with an id the caller knows is device-generated.
func localTx(id, amount, category string) core.Transaction {
	return serverTx(id, amount, category)
}

func TestSnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := New(kv.NewMemory())

	list := []core.Transaction{
		serverTx("1", "50", "Food"),
		serverTx("2", "12.30", "Transport"),
	}
	if err := store.SetCachedList(ctx, core.Expenses, list); err != nil {
		t.Fatalf("set snapshot: %v", err)
	}

	got, err := store.CachedList(ctx, core.Expenses)
	if err != nil {
		t.Fatalf("get snapshot: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if got[0].ID != "1" || !got[0].Amount.Equal(core.MustMoney("50")) || got[0].Category != "Food" {
		t.Errorf("record 0 mismatch: %+v", got[0])
	}
	if !got[1].Amount.Equal(core.MustMoney("12.30")) {
		t.Errorf("record 1 amount mismatch: %s", got[1].Amount)
	}

	// income snapshot is an independent namespace
	income, err := store.CachedList(ctx, core.Income)
	if err != nil {
		t.Fatalf("get income snapshot: %v", err)
	}
	if len(income) != 0 {
		t.Fatalf("income snapshot should be empty, got %d", len(income))
	}
}

func TestCachedListTolerantOfCorruptValue(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()
	store := New(mem)

	if err := mem.Set(ctx, "cached_expenses", "{not json"); err != nil {
		t.Fatalf("seed corrupt value: %v", err)
	}

	got, err := store.CachedList(ctx, core.Expenses)
	if err != nil {
		t.Fatalf("corrupt snapshot should not error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("corrupt snapshot should read as empty, got %d", len(got))
	}
}

func TestCachedListInvalidResource(t *testing.T) {
	store := New(kv.NewMemory())
	if _, err := store.CachedList(context.Background(), core.Resource("budgets")); err == nil {
		t.Fatal("expected error for invalid resource")
	}
}

func TestAddPendingCreateRequiresLocalID(t *testing.T) {
	store := New(kv.NewMemory())
	_, err := store.AddPendingCreate(context.Background(), core.Expenses, serverTx("srv1", "5", "Food"))
	if err == nil {
		t.Fatal("expected error for server-id record")
	}
}

func TestAddPendingUpdateMergesEnvelopes(t *testing.T) {
	ctx := context.Background()
	store := New(kv.NewMemory())

	p1, _ := core.NewPatch(map[string]any{"amount": 100, "category": "Food"})
	p2, _ := core.NewPatch(map[string]any{"amount": 150})

	if _, err := store.AddPendingUpdate(ctx, core.Expenses, "1", p1); err != nil {
		t.Fatalf("first update: %v", err)
	}
	if _, err := store.AddPendingUpdate(ctx, core.Expenses, "1", p2); err != nil {
		t.Fatalf("second update: %v", err)
	}

	updates, err := store.PendingUpdates(ctx, core.Expenses)
	if err != nil {
		t.Fatalf("load updates: %v", err)
	}
	if len(updates) != 1 {
		t.Fatalf("expected 1 merged envelope, got %d", len(updates))
	}
	if string(updates[0].Patch["amount"]) != "150" {
		t.Errorf("amount = %s, want 150 (last writer wins)", updates[0].Patch["amount"])
	}
	if string(updates[0].Patch["category"]) != `"Food"` {
		t.Errorf("category lost in merge: %s", updates[0].Patch["category"])
	}
}

func TestAddPendingDeleteElidesPendingCreate(t *testing.T) {
	ctx := context.Background()
	store := New(kv.NewMemory())

	rec := localTx("offline_1712345678901_k3j9x2m4q", "50", "Food")
	if _, err := store.AddPendingCreate(ctx, core.Expenses, rec); err != nil {
		t.Fatalf("add create: %v", err)
	}

	queued, err := store.AddPendingDelete(ctx, core.Expenses, rec.ID)
	if err != nil {
		t.Fatalf("add delete: %v", err)
	}
	if queued {
		t.Fatal("delete of an unsynced create should not queue a marker")
	}

	creates, _ := store.PendingCreates(ctx, core.Expenses)
	if len(creates) != 0 {
		t.Errorf("pending creates should be empty, got %d", len(creates))
	}
	deletes, _ := store.PendingDeletes(ctx, core.Expenses)
	if len(deletes) != 0 {
		t.Errorf("no delete envelope should reference the local id, got %d", len(deletes))
	}
}

func TestAddPendingDeleteSupersedesUpdate(t *testing.T) {
	ctx := context.Background()
	store := New(kv.NewMemory())

	patch, _ := core.NewPatch(map[string]any{"amount": 99})
	if _, err := store.AddPendingUpdate(ctx, core.Expenses, "1", patch); err != nil {
		t.Fatalf("add update: %v", err)
	}
	queued, err := store.AddPendingDelete(ctx, core.Expenses, "1")
	if err != nil {
		t.Fatalf("add delete: %v", err)
	}
	if !queued {
		t.Fatal("delete of a server record should queue a marker")
	}

	updates, _ := store.PendingUpdates(ctx, core.Expenses)
	if len(updates) != 0 {
		t.Errorf("update envelope should be superseded, got %d", len(updates))
	}
}

func TestAddPendingDeleteDeduplicates(t *testing.T) {
	ctx := context.Background()
	store := New(kv.NewMemory())

	for i := 0; i < 3; i++ {
		if _, err := store.AddPendingDelete(ctx, core.Expenses, "1"); err != nil {
			t.Fatalf("add delete %d: %v", i, err)
		}
	}
	deletes, _ := store.PendingDeletes(ctx, core.Expenses)
	if len(deletes) != 1 {
		t.Fatalf("expected 1 delete marker, got %d", len(deletes))
	}
}

func TestMergePendingCreate(t *testing.T) {
	ctx := context.Background()
	store := New(kv.NewMemory())

	rec := localTx("offline_1712345678901_abcdefghi", "50", "Food")
	if _, err := store.AddPendingCreate(ctx, core.Expenses, rec); err != nil {
		t.Fatalf("add create: %v", err)
	}

	patch, _ := core.NewPatch(map[string]any{"amount": 75, "_id": "sneaky"})
	merged, err := store.MergePendingCreate(ctx, core.Expenses, rec.ID, patch)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if !merged {
		t.Fatal("expected create to be found")
	}

	creates, _ := store.PendingCreates(ctx, core.Expenses)
	if len(creates) != 1 {
		t.Fatalf("expected 1 create, got %d", len(creates))
	}
	if !creates[0].Record.Amount.Equal(core.MustMoney("75")) {
		t.Errorf("amount = %s, want 75", creates[0].Record.Amount)
	}
	if creates[0].Record.ID != rec.ID {
		t.Errorf("patch must not change the local id, got %q", creates[0].Record.ID)
	}

	merged, err = store.MergePendingCreate(ctx, core.Expenses, "offline_0_missing00", patch)
	if err != nil {
		t.Fatalf("merge missing: %v", err)
	}
	if merged {
		t.Fatal("expected no match for unknown local id")
	}
}

func TestUpdateCachedItem(t *testing.T) {
	ctx := context.Background()
	store := New(kv.NewMemory())

	if err := store.SetCachedList(ctx, core.Expenses, []core.Transaction{
		serverTx("1", "100", "Food"),
		serverTx("2", "20", "Transport"),
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	patch, _ := core.NewPatch(map[string]any{"amount": 150})
	if err := store.UpdateCachedItem(ctx, core.Expenses, "1", patch); err != nil {
		t.Fatalf("update: %v", err)
	}

	list, _ := store.CachedList(ctx, core.Expenses)
	if !list[0].Amount.Equal(core.MustMoney("150")) {
		t.Errorf("record 1 amount = %s, want 150", list[0].Amount)
	}
	if list[0].Category != "Food" {
		t.Errorf("record 1 category changed: %q", list[0].Category)
	}
	if !list[1].Amount.Equal(core.MustMoney("20")) {
		t.Errorf("record 2 touched: %s", list[1].Amount)
	}
}

func TestRemoveCachedItem(t *testing.T) {
	ctx := context.Background()
	store := New(kv.NewMemory())

	if err := store.SetCachedList(ctx, core.Expenses, []core.Transaction{
		serverTx("1", "100", "Food"),
		serverTx("2", "20", "Transport"),
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := store.RemoveCachedItem(ctx, core.Expenses, "1"); err != nil {
		t.Fatalf("remove: %v", err)
	}

	list, _ := store.CachedList(ctx, core.Expenses)
	if len(list) != 1 || list[0].ID != "2" {
		t.Fatalf("unexpected snapshot after remove: %+v", list)
	}
}

func TestPendingCounts(t *testing.T) {
	ctx := context.Background()
	store := New(kv.NewMemory())

	if _, err := store.AddPendingCreate(ctx, core.Income, localTx("offline_1_aaaaaaaaa", "10", "Salary")); err != nil {
		t.Fatalf("add create: %v", err)
	}
	patch, _ := core.NewPatch(map[string]any{"amount": 1})
	if _, err := store.AddPendingUpdate(ctx, core.Income, "s1", patch); err != nil {
		t.Fatalf("add update: %v", err)
	}
	if _, err := store.AddPendingDelete(ctx, core.Income, "s2"); err != nil {
		t.Fatalf("add delete: %v", err)
	}

	counts, err := store.PendingCounts(ctx, core.Income)
	if err != nil {
		t.Fatalf("counts: %v", err)
	}
	want := Counts{Creates: 1, Updates: 1, Deletes: 1}
	if counts != want {
		t.Fatalf("counts = %+v, want %+v", counts, want)
	}
	if counts.Total() != 3 {
		t.Fatalf("total = %d, want 3", counts.Total())
	}
}
