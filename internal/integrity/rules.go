package integrity

import (
	"encoding/json"
	"math"
)

// Rule coerces one aspect of a decoded document back into its expected
// shape. Apply returns the (possibly replaced) document and whether it
// changed anything.
type Rule interface {
	Apply(doc, def any) (any, bool)
}

// WantMapping replaces any document whose top level is not a JSON
// object with the default.
type WantMapping struct{}

func (WantMapping) Apply(doc, def any) (any, bool) {
	if _, ok := doc.(map[string]any); ok {
		return doc, false
	}
	return clone(def), true
}

// WantSequence replaces any document whose top level is not a JSON
// array with the default.
type WantSequence struct{}

func (WantSequence) Apply(doc, def any) (any, bool) {
	if _, ok := doc.([]any); ok {
		return doc, false
	}
	return clone(def), true
}

// IntKey requires a top-level key to hold an integer. A fractional
// number truncates to its integer part; only a non-numeric value falls
// back to Default. A repaired counter never restarts from zero while
// the stored value is still numeric. Only meaningful on mapping
// documents; it is a no-op elsewhere.
type IntKey struct {
	Key     string
	Default int
}

func (r IntKey) Apply(doc, def any) (any, bool) {
	m, ok := doc.(map[string]any)
	if !ok {
		return doc, false
	}
	switch v := m[r.Key].(type) {
	case float64:
		if v == math.Trunc(v) {
			return doc, false
		}
		m[r.Key] = int(v)
		return doc, true
	default:
		m[r.Key] = r.Default
		return doc, true
	}
}

// clone deep-copies a default value through a JSON round trip so a
// repair can never alias the table's default.
func clone(v any) any {
	raw, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return v
	}
	return out
}
