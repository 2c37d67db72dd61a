package cache

import "walletsync/internal/core"

// Key layout against the kv store. One snapshot key plus three pending
// queues per resource:
//
//	cached_expenses
//	pending_expense_creates
//	pending_expense_updates
//	pending_expense_deletes
func snapshotKey(r core.Resource) string {
	return "cached_" + string(r)
}

func pendingCreatesKey(r core.Resource) string {
	return "pending_" + r.Singular() + "_creates"
}

func pendingUpdatesKey(r core.Resource) string {
	return "pending_" + r.Singular() + "_updates"
}

func pendingDeletesKey(r core.Resource) string {
	return "pending_" + r.Singular() + "_deletes"
}
