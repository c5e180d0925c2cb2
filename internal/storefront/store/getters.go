package store

import (
	"github.com/abgdnv/storefront/internal/storefront/model"
	"github.com/shopspring/decimal"
)

// ActiveNav returns the current navigation tag.
func (s *Store) ActiveNav() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.ActiveNav
}

// OrdersTotalCost sums total_cost over all orders. ok is false when there are no orders.
func (s *Store) OrdersTotalCost() (total decimal.Decimal, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.state.Orders) == 0 {
		return decimal.Zero, false
	}
	for _, o := range s.state.Orders {
		total = total.Add(o.TotalCost)
	}
	return total, true
}

// CartTotal sums the line cost of every cart item. It is zero for an empty cart.
func (s *Store) CartTotal() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := decimal.Zero
	for _, item := range s.state.Cart {
		total = total.Add(item.TotalCost)
	}
	return total
}

// CartTotalCost is the same sum as CartTotal, kept under its own getter name.
func (s *Store) CartTotalCost() decimal.Decimal {
	return s.CartTotal()
}

// CartCount returns the number of units in the cart.
func (s *Store) CartCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, item := range s.state.Cart {
		count += item.Quantity
	}
	return count
}

// GetCart returns a copy of the cart in insertion order.
func (s *Store) GetCart() []model.CartItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return model.CloneCart(s.state.Cart)
}

// Products returns a copy of the product list.
func (s *Store) Products() []model.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneProducts(s.state.Products)
}

// Orders returns a copy of the order history.
func (s *Store) Orders() []model.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneOrders(s.state.Orders)
}

// SelectedProduct returns the selected product, nil when none is selected.
func (s *Store) SelectedProduct() *model.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSelected(s.state.SelectedProduct)
}
