package domain

import (
	"bytes"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// LenientDecimal decodes a JSON number or numeric string. Anything it cannot
// parse, including null, becomes zero instead of failing the whole document.
type LenientDecimal struct {
	decimal.Decimal
	Valid bool
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *LenientDecimal) UnmarshalJSON(data []byte) error {
	d.Decimal, d.Valid = decimal.Zero, false
	raw := bytes.TrimSpace(data)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil
		}
		raw = []byte(s)
	}
	parsed, err := decimal.NewFromString(string(bytes.TrimSpace(raw)))
	if err != nil {
		return nil
	}
	d.Decimal, d.Valid = parsed, true
	return nil
}

// MarshalJSON implements json.Marshaler.
func (d LenientDecimal) MarshalJSON() ([]byte, error) {
	if !d.Valid {
		return []byte("null"), nil
	}
	return d.Decimal.MarshalJSON()
}

// Ptr returns the value as an optional decimal, nil when it was absent or malformed.
func (d LenientDecimal) Ptr() *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	v := d.Decimal
	return &v
}
