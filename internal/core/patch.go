package core

import (
	"encoding/json"
	"fmt"
)

// Patch is a partial field overwrite for a transaction, keyed by the JSON
// field name. Values are kept raw so a patch survives storage round trips
// without knowing every field's Go type.
type Patch map[string]json.RawMessage

// NewPatch builds a Patch from ordinary Go values.
func NewPatch(fields map[string]any) (Patch, error) {
	p := make(Patch, len(fields))
	for k, v := range fields {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("marshal patch field %q: %w", k, err)
		}
		p[k] = raw
	}
	return p, nil
}

// Merge overlays later on top of p, last writer wins per field. Neither
// input is modified.
func (p Patch) Merge(later Patch) Patch {
	out := make(Patch, len(p)+len(later))
	for k, v := range p {
		out[k] = v
	}
	for k, v := range later {
		out[k] = v
	}
	return out
}

// Apply returns a copy of t with the patched fields overwritten. Fields not
// named in the patch are untouched. The overwrite is shallow: a patched
// participants list replaces the whole list.
func (p Patch) Apply(t Transaction) (Transaction, error) {
	if len(p) == 0 {
		return t, nil
	}

	base, err := json.Marshal(t)
	if err != nil {
		return t, fmt.Errorf("marshal transaction: %w", err)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(base, &fields); err != nil {
		return t, fmt.Errorf("unmarshal transaction fields: %w", err)
	}
	for k, v := range p {
		fields[k] = v
	}
	merged, err := json.Marshal(fields)
	if err != nil {
		return t, fmt.Errorf("marshal patched fields: %w", err)
	}

	var out Transaction
	if err := json.Unmarshal(merged, &out); err != nil {
		return t, fmt.Errorf("unmarshal patched transaction: %w", err)
	}
	return out, nil
}
