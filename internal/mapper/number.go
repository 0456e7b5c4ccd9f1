// Package mapper converts raw backend rows into view models.
//
// The backend is inconsistent about types and key names, so the raw types in
// this package accept numbers as numbers or strings and nested records under
// either of their alternate keys. Everything is normalised once, at decode
// time; the Map functions are pure.
package mapper

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Number is a lenient numeric field. It accepts JSON numbers, numeric
// strings (with thousands separators) and null. Anything else decodes as an
// invalid zero rather than failing the whole row.
type Number struct {
	Value decimal.Decimal
	Valid bool
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(b []byte) error {
	*n = Number{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}

	s := string(b)
	if b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return nil
		}
		s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil
	}
	*n = Number{Value: d, Valid: true}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return []byte(n.Value.String()), nil
}

// Or returns the value, or def when the field was missing or invalid.
func (n Number) Or(def decimal.Decimal) decimal.Decimal {
	if !n.Valid {
		return def
	}
	return n.Value
}

// Decimal returns the value, zero when missing or invalid.
func (n Number) Decimal() decimal.Decimal {
	return n.Or(decimal.Zero)
}

// Int returns the integer part of the value, zero when missing or invalid.
func (n Number) Int() int {
	if !n.Valid {
		return 0
	}
	return int(n.Value.IntPart())
}

// Text is a lenient string field that also accepts numbers, booleans and null.
type Text string

// UnmarshalJSON implements json.Unmarshaler.
func (t *Text) UnmarshalJSON(b []byte) error {
	*t = ""
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return nil
		}
		*t = Text(s)
		return nil
	}
	if b[0] == '{' || b[0] == '[' {
		return nil
	}
	*t = Text(b)
	return nil
}

func (t Text) String() string {
	return string(t)
}

// Flag is a lenient boolean that also accepts "true"/"false" strings and 0/1.
type Flag bool

// UnmarshalJSON implements json.Unmarshaler.
func (f *Flag) UnmarshalJSON(b []byte) error {
	var t Text
	_ = t.UnmarshalJSON(b)
	v, err := strconv.ParseBool(strings.TrimSpace(string(t)))
	*f = Flag(err == nil && v)
	return nil
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// ParseDate parses the date formats the backend emits. Values without a zone
// are read as UTC. It returns the zero time when s cannot be parsed.
func ParseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// parseDatePtr is ParseDate returning nil for unparsable values.
func parseDatePtr(s Text) *time.Time {
	t := ParseDate(string(s))
	if t.IsZero() {
		return nil
	}
	return &t
}
