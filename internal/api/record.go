package api

import (
	"fmt"
	"strconv"
)

// Record is one loosely-typed entity row as returned by the platform API.
// Field shape is never declared server-side, so reads go through accessors
// that tolerate missing or differently-typed values.
type Record map[string]any

// ID returns the server-assigned identifier.
func (r Record) ID() string {
	return r.String("_id")
}

// String reads a field as a string, converting scalars when needed.
func (r Record) String(key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// Number reads a field as a float64 when possible.
func (r Record) Number(key string) (float64, bool) {
	switch t := r[key].(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(t, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// Clone returns a shallow copy, used to seed edit drafts without
// mutating the rendered row.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Pick copies the named fields into a new record, skipping absent keys.
// Status toggles use it to resend fields the server demands.
func (r Record) Pick(keys ...string) Record {
	out := Record{}
	for _, k := range keys {
		if v, ok := r[k]; ok {
			out[k] = v
		}
	}
	return out
}
