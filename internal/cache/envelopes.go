package cache

import (
	"time"

	"github.com/google/uuid"

	"walletsync/internal/core"
)

// A pending envelope records one unconfirmed local mutation. EnvelopeID is
// a uuid so log lines and queue notifications can correlate a mutation from
// the moment it is recorded to the moment it is replayed.
type (
	// PendingCreate holds a full record created while offline, keyed by its
	// local identifier.
	PendingCreate struct {
		EnvelopeID string           `json:"envelopeId"`
		LocalID    string           `json:"localId"`
		Record     core.Transaction `json:"record"`
		RecordedAt time.Time        `json:"recordedAt"`
	}

	// PendingUpdate holds a field patch targeting a server id or, briefly,
	// a local id before the recorder folds it into the matching create.
	PendingUpdate struct {
		EnvelopeID string     `json:"envelopeId"`
		TargetID   string     `json:"targetId"`
		Patch      core.Patch `json:"patch"`
		RecordedAt time.Time  `json:"recordedAt"`
	}

	// PendingDelete marks a record for removal on the server.
	PendingDelete struct {
		EnvelopeID string    `json:"envelopeId"`
		TargetID   string    `json:"targetId"`
		RecordedAt time.Time `json:"recordedAt"`
	}

	// Counts summarizes a resource's pending queues.
	Counts struct {
		Creates int
		Updates int
		Deletes int
	}
)

func newEnvelopeID() string {
	return uuid.NewString()
}

func (c Counts) Total() int {
	return c.Creates + c.Updates + c.Deletes
}
