package offline

import (
	"context"
	"log/slog"

	"walletsync/internal/cache"
	"walletsync/internal/core"
	"walletsync/internal/merge"
	"walletsync/internal/participants"
)

// Service is the surface screens consume: merged views, snapshot caching,
// offline recording and the participants memory, behind one value.
type Service struct {
	store *cache.Store
	*Recorder
	book *participants.Book
}

func NewService(store *cache.Store, recorder *Recorder, book *participants.Book) *Service {
	return &Service{store: store, Recorder: recorder, book: book}
}

// Store exposes the underlying cache store for components (replayer,
// inspection tooling) that need envelope-level access.
func (s *Service) Store() *cache.Store {
	return s.store
}

// MergedExpenses returns the display list for expenses: cached snapshot
// with pending mutations applied.
func (s *Service) MergedExpenses(ctx context.Context) ([]core.Transaction, error) {
	return merge.List(ctx, s.store, core.Expenses)
}

// MergedIncome returns the display list for income.
func (s *Service) MergedIncome(ctx context.Context) ([]core.Transaction, error) {
	return merge.List(ctx, s.store, core.Income)
}

// MergedRecurring returns the display list for recurring templates.
func (s *Service) MergedRecurring(ctx context.Context) ([]core.Transaction, error) {
	return merge.List(ctx, s.store, core.Recurring)
}

// CacheExpenses overwrites the expense snapshot after a successful fetch.
// A storage failure here must never block the fetch that produced the
// data, so it is logged and swallowed.
func (s *Service) CacheExpenses(ctx context.Context, list []core.Transaction) {
	s.cacheList(ctx, core.Expenses, list)
}

// CacheIncome overwrites the income snapshot after a successful fetch.
func (s *Service) CacheIncome(ctx context.Context, list []core.Transaction) {
	s.cacheList(ctx, core.Income, list)
}

func (s *Service) cacheList(ctx context.Context, r core.Resource, list []core.Transaction) {
	if err := s.store.SetCachedList(ctx, r, list); err != nil {
		slog.ErrorContext(ctx, "Failed to cache snapshot",
			"resource", r,
			"count", len(list),
			"error", err)
	}
}

// CachedExpenses returns the raw expense snapshot without pending
// mutations applied.
func (s *Service) CachedExpenses(ctx context.Context) ([]core.Transaction, error) {
	return s.store.CachedList(ctx, core.Expenses)
}

// CachedIncome returns the raw income snapshot.
func (s *Service) CachedIncome(ctx context.Context) ([]core.Transaction, error) {
	return s.store.CachedList(ctx, core.Income)
}

// UpdateCachedExpense patches one snapshot record after a confirmed online
// update.
func (s *Service) UpdateCachedExpense(ctx context.Context, id string, patch core.Patch) error {
	return s.store.UpdateCachedItem(ctx, core.Expenses, id, patch)
}

// UpdateCachedIncome patches one income snapshot record.
func (s *Service) UpdateCachedIncome(ctx context.Context, id string, patch core.Patch) error {
	return s.store.UpdateCachedItem(ctx, core.Income, id, patch)
}

// RemoveCachedExpense drops one snapshot record after a confirmed online
// delete.
func (s *Service) RemoveCachedExpense(ctx context.Context, id string) error {
	return s.store.RemoveCachedItem(ctx, core.Expenses, id)
}

// RemoveCachedIncome drops one income snapshot record.
func (s *Service) RemoveCachedIncome(ctx context.Context, id string) error {
	return s.store.RemoveCachedItem(ctx, core.Income, id)
}

// RecentParticipants returns the bill-splitting contact memory.
func (s *Service) RecentParticipants(ctx context.Context) ([]core.Participant, error) {
	return s.book.Recent(ctx)
}

// SaveRecentParticipants merges newly used participants into the memory.
func (s *Service) SaveRecentParticipants(ctx context.Context, list []core.Participant) error {
	return s.book.Save(ctx, list)
}

// UpdateRecentParticipant renames a remembered participant, optionally
// updating the phone number.
func (s *Service) UpdateRecentParticipant(ctx context.Context, oldName, newName string, phone *string) error {
	return s.book.Update(ctx, oldName, newName, phone)
}
