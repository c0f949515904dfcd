package model

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Record keeps an upstream JSON object verbatim so fields this service does
// not model are passed through to clients unchanged.
type Record map[string]json.RawMessage

// Set encodes v under key, replacing any existing value.
func (r Record) Set(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	r[key] = raw
	return nil
}

// String returns the string stored under key, if any.
func (r Record) String(key string) (string, bool) {
	raw, ok := r[key]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// Strings returns the string array stored under key, if any.
func (r Record) Strings(key string) ([]string, bool) {
	raw, ok := r[key]
	if !ok {
		return nil, false
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, false
	}
	return out, true
}

// Decimal reads a numeric field that upstreams encode either as a JSON number
// or as a quoted string.
func (r Record) Decimal(key string) (decimal.Decimal, bool) {
	raw, ok := r[key]
	if !ok || string(raw) == "null" {
		return decimal.Zero, false
	}
	var d decimal.Decimal
	if err := d.UnmarshalJSON(raw); err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// Decimals reads an array of numeric fields, skipping null entries.
func (r Record) Decimals(key string) ([]decimal.Decimal, bool) {
	raw, ok := r[key]
	if !ok {
		return nil, false
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false
	}
	out := make([]decimal.Decimal, 0, len(items))
	for _, item := range items {
		if string(item) == "null" {
			continue
		}
		var d decimal.Decimal
		if err := d.UnmarshalJSON(item); err != nil {
			return nil, false
		}
		out = append(out, d)
	}
	return out, true
}
