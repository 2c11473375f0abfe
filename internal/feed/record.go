// Package feed turns scraped page-fragment records into typed race entities.
//
// A feed batch is a JSON array of objects whose values are short arrays of
// strings, one object per page fragment. The record's "url" field decides
// which parser handles it; untyped records never leave this package.
package feed

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Record is one scraped page fragment
type Record map[string][]string

// URL returns the first url value, or "" when absent
func (r Record) URL() string {
	if v := r["url"]; len(v) > 0 {
		return strings.TrimSpace(v[0])
	}
	return ""
}

// Has reports whether the field is present at all
func (r Record) Has(field string) bool {
	_, ok := r[field]
	return ok
}

// First returns the first value of a field
func (r Record) First(field string) (string, error) {
	v, ok := r[field]
	if !ok || len(v) == 0 {
		return "", &FieldError{Field: field, Err: ErrMissingField}
	}
	return v[0], nil
}

// DecodeBatch decodes a feed batch. Scalar values and non-string array items
// are converted to strings so numeric fields such as run_number survive.
func DecodeBatch(data []byte) ([]Record, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw []map[string]interface{}
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode feed batch: %w", err)
	}

	records := make([]Record, 0, len(raw))
	for _, obj := range raw {
		rec := make(Record, len(obj))
		for field, value := range obj {
			switch v := value.(type) {
			case []interface{}:
				values := make([]string, 0, len(v))
				for _, item := range v {
					values = append(values, scalarString(item))
				}
				rec[field] = values
			default:
				rec[field] = []string{scalarString(v)}
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

func scalarString(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case bool:
		if x {
			return "true"
		}
		return "false"
	default:
		b, _ := json.Marshal(x)
		return string(b)
	}
}
