package feed

import (
	"net/url"
	"slices"
	"time"
)

// SinceParam is the query parameter that carries the resumption point.
const SinceParam = "since"

// Cursor is the query parameter set used to request the next page.
type Cursor struct {
	values url.Values
}

// NewCursor returns a cursor starting at t.
func NewCursor(t time.Time) Cursor {
	return Cursor{values: url.Values{SinceParam: {t.UTC().Format(time.RFC3339Nano)}}}
}

// CursorFromValues wraps a parsed query. The values are copied.
func CursorFromValues(v url.Values) Cursor {
	return Cursor{values: cloneValues(v)}
}

// ParseCursor parses a raw query string such as "since=2024-01-01T00:00:00Z".
func ParseCursor(rawQuery string) (Cursor, error) {
	v, err := url.ParseQuery(rawQuery)
	if err != nil {
		return Cursor{}, err
	}
	return Cursor{values: v}, nil
}

// Since returns the since parameter, or "" when absent.
func (c Cursor) Since() string {
	return c.values.Get(SinceParam)
}

// Values returns a copy of the underlying parameters.
func (c Cursor) Values() url.Values {
	return cloneValues(c.values)
}

// Encode renders the cursor as a query string.
func (c Cursor) Encode() string {
	return c.values.Encode()
}

func (c Cursor) String() string {
	return c.Encode()
}

// IsZero reports whether the cursor carries no parameters at all.
func (c Cursor) IsZero() bool {
	return len(c.values) == 0
}

// Equal compares the full parameter set. Any difference in any key or value,
// including value order under one key, makes the cursors different.
func (c Cursor) Equal(other Cursor) bool {
	if len(c.values) != len(other.values) {
		return false
	}
	for k, vs := range c.values {
		ovs, ok := other.values[k]
		if !ok || !slices.Equal(vs, ovs) {
			return false
		}
	}
	return true
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v))
	for k, vs := range v {
		out[k] = slices.Clone(vs)
	}
	return out
}
