package store

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	sferrors "github.com/abgdnv/storefront/internal/storefront/errors"
	"github.com/abgdnv/storefront/internal/storefront/model"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// SetActiveNav replaces the navigation tag.
func (s *Store) SetActiveNav(nav string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.ActiveNav = nav
}

// SetProducts replaces the product list.
func (s *Store) SetProducts(products []model.Product) {
	products = cloneProducts(products)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Products = products
}

// SetOrders replaces the order list.
func (s *Store) SetOrders(orders []model.Order) {
	orders = cloneOrders(orders)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Orders = orders
}

// SetSelectedProduct replaces the selected product. nil clears the selection.
func (s *Store) SetSelectedProduct(p *model.Product) {
	p = cloneSelected(p)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.SelectedProduct = p
}

// AddToCart increments the quantity of p's cart line, or appends a new line with quantity 1.
func (s *Store) AddToCart(ctx context.Context, p model.Product) {
	s.updateCart(ctx, MutationAddToCart, func(cart []model.CartItem) []model.CartItem {
		if i := cartIndex(cart, p.ID); i >= 0 {
			cart[i] = cart[i].WithQuantity(cart[i].Quantity + 1)
			return cart
		}
		return append(cart, model.NewCartItem(p))
	})
}

// RemoveFromCart decrements the quantity of p's cart line and drops the line when it reaches zero.
// A product that is not in the cart is ignored.
func (s *Store) RemoveFromCart(ctx context.Context, p model.Product) {
	s.updateCart(ctx, MutationRemoveFromCart, func(cart []model.CartItem) []model.CartItem {
		i := cartIndex(cart, p.ID)
		switch {
		case i < 0:
			return cart
		case cart[i].Quantity > 1:
			cart[i] = cart[i].WithQuantity(cart[i].Quantity - 1)
			return cart
		default:
			return slices.Delete(cart, i, i+1)
		}
	})
}

// DeleteFromCart drops p's cart line whatever its quantity.
func (s *Store) DeleteFromCart(ctx context.Context, p model.Product) {
	s.updateCart(ctx, MutationDeleteFromCart, func(cart []model.CartItem) []model.CartItem {
		if i := cartIndex(cart, p.ID); i >= 0 {
			return slices.Delete(cart, i, i+1)
		}
		return cart
	})
}

// UpdateCartFromStorage replaces the cart with the persisted one.
// Absent, unreadable or malformed data leaves the cart as it is and is only logged.
// Cart writes wait until the restore is done, so the persisted cart and the
// in-memory cart agree afterwards.
func (s *Store) UpdateCartFromStorage(ctx context.Context) {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	data, found, err := s.kv.Get(ctx, CartStorageKey)
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to read persisted cart", "error", err)
		return
	}
	if !found {
		s.logger.DebugContext(ctx, "No persisted cart found")
		return
	}
	cart, err := s.parseCart(data)
	if err != nil {
		s.logger.WarnContext(ctx, "Ignoring persisted cart", "error", err)
		return
	}

	s.mu.Lock()
	s.state.Cart = cart
	s.cartVersion++
	s.persistedVersion = s.cartVersion
	s.mu.Unlock()
	s.logger.DebugContext(ctx, "Cart restored from storage", "items", len(cart))
}

func (s *Store) parseCart(data []byte) ([]model.CartItem, error) {
	var cart []model.CartItem
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, fmt.Errorf("%w: %w", sferrors.ErrMalformedStorageData, err)
	}
	if cart == nil {
		return nil, fmt.Errorf("%w: cart is null", sferrors.ErrMalformedStorageData)
	}
	seen := make(map[model.ID]struct{}, len(cart))
	for i, item := range cart {
		if err := s.validate.Struct(item); err != nil {
			return nil, fmt.Errorf("%w: item %d: %w", sferrors.ErrMalformedStorageData, i, err)
		}
		if _, dup := seen[item.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate product id %s", sferrors.ErrMalformedStorageData, item.ID)
		}
		seen[item.ID] = struct{}{}
		cart[i] = item.WithQuantity(item.Quantity)
	}
	return cart, nil
}

// cartIndex returns the position of the line holding id, -1 if there is none.
func cartIndex(cart []model.CartItem, id model.ID) int {
	return slices.IndexFunc(cart, func(item model.CartItem) bool {
		return item.ID == id
	})
}

// updateCart applies change to the cart under the write lock, then writes the result through to storage.
func (s *Store) updateCart(ctx context.Context, mutation string, change func([]model.CartItem) []model.CartItem) {
	s.mu.Lock()
	s.state.Cart = change(s.state.Cart)
	s.cartVersion++
	version, cart := s.cartVersion, model.CloneCart(s.state.Cart)
	s.mu.Unlock()

	if s.cartMutations != nil {
		s.cartMutations.Add(ctx, 1, metric.WithAttributes(attribute.String("mutation", mutation)))
	}
	s.persistCart(ctx, mutation, version, cart)
}

// persistCart writes cart, taken at version, to storage unless a newer cart is already there.
// A failed write is logged, the in-memory cart stays authoritative.
func (s *Store) persistCart(ctx context.Context, mutation string, version uint64, cart []model.CartItem) {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	if version <= s.persistedVersion {
		return
	}
	data, err := json.Marshal(cart)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to encode cart", "mutation", mutation, "error", err)
		return
	}
	if err := s.kv.Set(ctx, CartStorageKey, data); err != nil {
		s.logger.WarnContext(ctx, "Failed to persist cart", "mutation", mutation, "error", err)
		return
	}
	s.persistedVersion = version
}
