// Package api is the outbound port to the finance backend. The sync core
// only needs four operations per resource; everything else the backend
// offers belongs to the screens.
package api

import (
	"context"

	"walletsync/internal/core"
)

// Client is the remote API port consumed by the replayer and, indirectly,
// by screens attempting online writes before falling back to the recorder.
type Client interface {
	// List fetches the full current server list for a resource.
	List(ctx context.Context, r core.Resource) ([]core.Transaction, error)

	// Create persists a new record and returns it with its server id.
	Create(ctx context.Context, r core.Resource, tx core.Transaction) (core.Transaction, error)

	// Update applies a partial patch to an existing record.
	Update(ctx context.Context, r core.Resource, id string, patch core.Patch) error

	// Delete removes a record.
	Delete(ctx context.Context, r core.Resource, id string) error
}
