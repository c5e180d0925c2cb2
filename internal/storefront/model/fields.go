package model

import (
	"encoding/json"
	"fmt"
	"maps"

	"github.com/shopspring/decimal"
)

// ID identifies a product. The remote API sends it as a JSON string or a JSON number.
// A number is held as its canonical decimal text, so 1, 1.0 and 1e0 name the same product.
type ID string

// UnmarshalJSON accepts a JSON string or number.
func (id *ID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or a number: %w", err)
	}
	d, err := decimal.NewFromString(n.String())
	if err != nil {
		return fmt.Errorf("id must be a string or a number: %w", err)
	}
	if err := checkNumber("id", d); err != nil {
		return err
	}
	*id = ID(d.String())
	return nil
}

// Fields holds the JSON members the store carries through without interpreting them.
type Fields map[string]json.RawMessage

// extractFields decodes data as a JSON object and returns every member not listed in known.
func extractFields(data []byte, known ...string) (Fields, error) {
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}
	for _, k := range known {
		delete(all, k)
	}
	if len(all) == 0 {
		return nil, nil
	}
	return all, nil
}

// mergeFields marshals typed and adds the extra members that typed does not already define.
func mergeFields(typed any, extra Fields) ([]byte, error) {
	base, err := json.Marshal(typed)
	if err != nil {
		return nil, err
	}
	if len(extra) == 0 {
		return base, nil
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(base, &all); err != nil {
		return nil, err
	}
	for k, v := range extra {
		if _, exists := all[k]; !exists {
			all[k] = v
		}
	}
	return json.Marshal(all)
}

// Clone returns a copy of f. The raw values are shared, they are never modified in place.
func (f Fields) Clone() Fields {
	if f == nil {
		return nil
	}
	return maps.Clone(f)
}
