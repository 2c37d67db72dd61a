package core

import "strings"

// LocalIDPrefix marks identifiers generated on the device. Server-assigned
// identifiers never start with it, so the two can be told apart without a
// registry.
const LocalIDPrefix = "offline_"

// IDKind discriminates server-assigned identifiers from locally generated
// ones.
type IDKind int

const (
	ServerID IDKind = iota
	LocalID
)

// ID is a transaction identifier together with its origin. Callers pass
// plain strings across the public surface; components parse them into an ID
// so the local-id branches are explicit instead of scattered prefix checks.
type ID struct {
	Kind  IDKind
	Value string
}

// ParseID classifies a raw identifier string.
func ParseID(raw string) ID {
	if strings.HasPrefix(raw, LocalIDPrefix) {
		return ID{Kind: LocalID, Value: raw}
	}
	return ID{Kind: ServerID, Value: raw}
}

// IsLocal reports whether the identifier was generated on the device.
func (id ID) IsLocal() bool {
	return id.Kind == LocalID
}

func (id ID) String() string {
	return id.Value
}
