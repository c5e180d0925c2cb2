// Package model defines the storefront data types: products, orders and cart items.
package model

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Product is a catalog item as served by the remote API.
// Only the identity and the price are interpreted, every other display field is kept in Fields.
type Product struct {
	ID     ID              `json:"id" validate:"required"`
	Price  decimal.Decimal `json:"price"`
	Fields Fields          `json:"-"`
}

type productJSON struct {
	ID    ID              `json:"id"`
	Price decimal.Decimal `json:"price"`
}

// UnmarshalJSON decodes a product. A price that is neither a number nor a numeric string is an error,
// as is one outside the range checkNumber accepts.
func (p *Product) UnmarshalJSON(data []byte) error {
	var typed productJSON
	if err := json.Unmarshal(data, &typed); err != nil {
		return err
	}
	if err := checkNumber("price", typed.Price); err != nil {
		return err
	}
	fields, err := extractFields(data, "id", "price")
	if err != nil {
		return err
	}
	*p = Product{ID: typed.ID, Price: typed.Price, Fields: fields}
	return nil
}

func (p Product) MarshalJSON() ([]byte, error) {
	return mergeFields(productJSON{ID: p.ID, Price: p.Price}, p.Fields)
}

// Clone returns a deep enough copy of p for handing out to callers.
func (p Product) Clone() Product {
	p.Fields = p.Fields.Clone()
	return p
}
