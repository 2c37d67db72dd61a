package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Expenses  Resource = "expenses"
	Income    Resource = "income"
	Recurring Resource = "recurring"
)

type (
	// Resource names one of the transaction collections the cache tracks.
	Resource string

	// Participant is one contact remembered for bill splitting.
	Participant struct {
		Name  string `json:"name"`
		Phone string `json:"phone,omitempty"`
	}

	// Transaction is a single expense or income record. Records fetched from
	// the server carry a server-assigned ID; records created while offline
	// carry a locally generated one until they are replayed.
	Transaction struct {
		ID          string    `json:"_id,omitempty"`
		Amount      Money     `json:"amount"`
		Category    string    `json:"category,omitempty"`
		Source      string    `json:"source,omitempty"`
		Date        time.Time `json:"date"`
		Description string    `json:"description,omitempty"`

		// Split-expense fields, only meaningful when IsSplit is set.
		IsSplit          bool          `json:"isSplit,omitempty"`
		SplitType        string        `json:"splitType,omitempty"`
		Participants     []Participant `json:"participants,omitempty"`
		UserShare        *Money        `json:"userShare,omitempty"`
		Payer            string        `json:"payer,omitempty"`
		UserHasPaidShare bool          `json:"userHasPaidShare,omitempty"`

		// IsPending is set by the merge engine on records that only exist
		// locally. It is never persisted as part of a snapshot.
		IsPending bool `json:"isPending,omitempty"`
	}
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidDate     = errors.New("invalid date")
	ErrMissingCategory = errors.New("missing category or source")
	ErrInvalidResource = errors.New("invalid resource")
)

// AllResources lists every resource the cache namespaces, in a stable order.
func AllResources() []Resource {
	return []Resource{Expenses, Income, Recurring}
}

func (r Resource) Valid() bool {
	switch r {
	case Expenses, Income, Recurring:
		return true
	default:
		return false
	}
}

// Singular returns the resource name used inside pending-mutation keys
// (pending_expense_creates, pending_income_creates, ...).
func (r Resource) Singular() string {
	if r == Expenses {
		return "expense"
	}
	return string(r)
}

func (r Resource) String() string {
	return string(r)
}

func (t Transaction) Validate() error {
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if t.Date.IsZero() {
		return ErrInvalidDate
	}
	if strings.TrimSpace(t.Category) == "" && strings.TrimSpace(t.Source) == "" {
		return ErrMissingCategory
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	return nil
}
