package model

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Order is a placed order. Its identity is opaque to the store.
// Fields holds every member as received and is what gets encoded, so an order is posted
// and served exactly as the UI or the API wrote it. TotalCost is the parsed total_cost.
type Order struct {
	TotalCost decimal.Decimal `json:"total_cost"`
	Fields    Fields          `json:"-"`
}

type orderJSON struct {
	TotalCost decimal.Decimal `json:"total_cost"`
}

// UnmarshalJSON decodes an order. A missing total_cost reads as zero.
func (o *Order) UnmarshalJSON(data []byte) error {
	var typed orderJSON
	if err := json.Unmarshal(data, &typed); err != nil {
		return err
	}
	if err := checkNumber("total_cost", typed.TotalCost); err != nil {
		return err
	}
	fields, err := extractFields(data)
	if err != nil {
		return err
	}
	*o = Order{TotalCost: typed.TotalCost, Fields: fields}
	return nil
}

// MarshalJSON encodes the received members unchanged. An order built in code without
// a total_cost member gets one from TotalCost when it is not zero.
func (o Order) MarshalJSON() ([]byte, error) {
	if _, ok := o.Fields["total_cost"]; ok || o.TotalCost.IsZero() {
		if o.Fields == nil {
			return []byte("{}"), nil
		}
		return json.Marshal(map[string]json.RawMessage(o.Fields))
	}
	return mergeFields(orderJSON{TotalCost: o.TotalCost}, o.Fields)
}

// Clone returns a copy of o that shares no mutable state with it.
func (o Order) Clone() Order {
	o.Fields = o.Fields.Clone()
	return o
}
