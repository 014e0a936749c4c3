// SPDX-License-Identifier: Apache-2.0

// Package reference holds the authoritative values a document is checked
// against and loads them from YAML, JSON or spreadsheet sources.
package reference

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Record maps a canonical field name to its candidate values in order.
// A missing or empty field means the value is not available.
type Record map[string][]string

// Values returns the non-blank candidates of field, trimmed.
func (r Record) Values(field string) []string {
	var out []string
	for _, v := range r[field] {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// First returns the first non-blank candidate of field.
func (r Record) First(field string) (string, bool) {
	vs := r.Values(field)
	if len(vs) == 0 {
		return "", false
	}
	return vs[0], true
}

// Add appends values to field, skipping blanks and values already present.
func (r Record) Add(field string, values ...string) {
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || contains(r[field], v) {
			continue
		}
		r[field] = append(r[field], v)
	}
}

// Fields returns the names of fields with at least one value, sorted.
func (r Record) Fields() []string {
	out := make([]string, 0, len(r))
	for f := range r {
		if len(r.Values(f)) > 0 {
			out = append(out, f)
		}
	}
	sort.Strings(out)
	return out
}

// FromMap builds a Record from decoded YAML or JSON. Each value may be a
// scalar or a list of scalars; keys are canonicalized.
func FromMap(m map[string]any) (Record, error) {
	r := Record{}
	for key, raw := range m {
		field := Canonical(key)
		switch v := raw.(type) {
		case nil:
			continue
		case []any:
			for i, item := range v {
				s, err := scalar(item)
				if err != nil {
					return nil, fmt.Errorf("field %s[%d]: %w", key, i, err)
				}
				r.Add(field, normalize(field, s))
			}
		default:
			s, err := scalar(v)
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", key, err)
			}
			r.Add(field, normalize(field, s))
		}
	}
	return r, nil
}

func scalar(v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "", nil
	case string:
		return x, nil
	case bool, int, int64, uint64, float64:
		return fmt.Sprint(x), nil
	case time.Time:
		return x.Format("1/2/2006"), nil
	default:
		return "", fmt.Errorf("unsupported value of type %T", v)
	}
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
