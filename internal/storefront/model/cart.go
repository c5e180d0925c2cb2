package model

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// CartItem is a product in the cart together with its quantity and line cost.
// TotalCost always equals Price × Quantity.
type CartItem struct {
	Product
	Quantity  int             `json:"quantity" validate:"gte=1"`
	TotalCost decimal.Decimal `json:"totalCost"`
}

type cartItemJSON struct {
	ID        ID              `json:"id"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	TotalCost decimal.Decimal `json:"totalCost"`
}

// NewCartItem returns a cart line for p with quantity 1.
func NewCartItem(p Product) CartItem {
	return CartItem{
		Product:   p.Clone(),
		Quantity:  1,
		TotalCost: p.Price,
	}
}

// WithQuantity returns a copy of c holding quantity q and the matching line cost.
func (c CartItem) WithQuantity(q int) CartItem {
	c.Quantity = q
	c.TotalCost = c.Price.Mul(decimal.NewFromInt(int64(q)))
	return c
}

// UnmarshalJSON is defined on CartItem so the embedded Product decoder does not swallow quantity and totalCost.
func (c *CartItem) UnmarshalJSON(data []byte) error {
	var typed cartItemJSON
	if err := json.Unmarshal(data, &typed); err != nil {
		return err
	}
	if err := checkNumber("price", typed.Price); err != nil {
		return err
	}
	if err := checkNumber("totalCost", typed.TotalCost); err != nil {
		return err
	}
	fields, err := extractFields(data, "id", "price", "quantity", "totalCost")
	if err != nil {
		return err
	}
	*c = CartItem{
		Product:   Product{ID: typed.ID, Price: typed.Price, Fields: fields},
		Quantity:  typed.Quantity,
		TotalCost: typed.TotalCost,
	}
	return nil
}

func (c CartItem) MarshalJSON() ([]byte, error) {
	return mergeFields(cartItemJSON{
		ID:        c.ID,
		Price:     c.Price,
		Quantity:  c.Quantity,
		TotalCost: c.TotalCost,
	}, c.Fields)
}

// Clone returns a copy of c that shares no mutable state with it.
func (c CartItem) Clone() CartItem {
	c.Product = c.Product.Clone()
	return c
}

// CloneCart copies a cart so the caller can not reach the store's backing array.
func CloneCart(cart []CartItem) []CartItem {
	out := make([]CartItem, len(cart))
	for i, item := range cart {
		out[i] = item.Clone()
	}
	return out
}
