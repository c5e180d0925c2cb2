package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	sferrors "github.com/abgdnv/storefront/internal/storefront/errors"
	"github.com/abgdnv/storefront/internal/storefront/model"
)

// Getter names.
const (
	GetterActiveNav       = "activeNav"
	GetterOrdersTotalCost = "ordersTotalCost"
	GetterCartTotalCost   = "cartTotalCost"
	GetterGetCart         = "getCart"
	GetterCartTotal       = "cartTotal"
	GetterProducts        = "products"
	GetterOrders          = "orders"
	GetterSelectedProduct = "selectedProduct"
	GetterCartCount       = "cartCount"
)

// Mutation names.
const (
	MutationSetActiveNav          = "SET_ACTIVE_NAV"
	MutationSetProducts           = "SET_PRODUCTS"
	MutationSetOrders             = "SET_ORDERS"
	MutationSetSelectedProduct    = "SET_SELECTED_PRODUCT"
	MutationAddToCart             = "ADD_TO_CART"
	MutationRemoveFromCart        = "REMOVE_FROM_CART"
	MutationDeleteFromCart        = "DELETE_FROM_CART"
	MutationUpdateCartFromStorage = "UPDATE_CART_FROM_STORAGE"
)

// Action names.
const (
	ActionFetchProducts         = "fetchProducts"
	ActionFetchOrders           = "fetchOrders"
	ActionAddOrder              = "addOrder"
	ActionFetchProductByID      = "fetchProductById"
	ActionAddToCart             = "addToCart"
	ActionRemoveFromCart        = "removeFromCart"
	ActionDeleteFromCart        = "deleteFromCart"
	ActionUpdateCartFromStorage = "updateCartFromStorage"
	ActionUpdateActiveNav       = "updateActiveNav"
	ActionRefresh               = "refresh"
)

// Getters lists every getter name accepted by Get.
var Getters = []string{
	GetterActiveNav, GetterOrdersTotalCost, GetterCartTotalCost, GetterGetCart, GetterCartTotal,
	GetterProducts, GetterOrders, GetterSelectedProduct, GetterCartCount,
}

// Actions lists every action name accepted by Dispatch.
var Actions = []string{
	ActionFetchProducts, ActionFetchOrders, ActionAddOrder, ActionFetchProductByID,
	ActionAddToCart, ActionRemoveFromCart, ActionDeleteFromCart,
	ActionUpdateCartFromStorage, ActionUpdateActiveNav, ActionRefresh,
}

// productIDPayload is the payload of fetchProductById.
type productIDPayload struct {
	ID model.ID `json:"id" validate:"required"`
}

// Get evaluates the getter called name. ordersTotalCost yields nil when there are no orders.
func (s *Store) Get(name string) (any, error) {
	switch name {
	case GetterActiveNav:
		return s.ActiveNav(), nil
	case GetterOrdersTotalCost:
		total, ok := s.OrdersTotalCost()
		if !ok {
			return nil, nil
		}
		return total, nil
	case GetterCartTotalCost:
		return s.CartTotalCost(), nil
	case GetterGetCart:
		return s.GetCart(), nil
	case GetterCartTotal:
		return s.CartTotal(), nil
	case GetterProducts:
		return s.Products(), nil
	case GetterOrders:
		return s.Orders(), nil
	case GetterSelectedProduct:
		return s.SelectedProduct(), nil
	case GetterCartCount:
		return s.CartCount(), nil
	default:
		return nil, fmt.Errorf("%w: %q", sferrors.ErrUnknownGetter, name)
	}
}

// Commit applies the mutation called name with a typed payload.
func (s *Store) Commit(ctx context.Context, name string, payload any) error {
	switch name {
	case MutationSetActiveNav:
		nav, ok := payload.(string)
		if !ok {
			return invalidPayload(name, payload)
		}
		s.SetActiveNav(nav)
	case MutationSetProducts:
		products, ok := payload.([]model.Product)
		if !ok {
			return invalidPayload(name, payload)
		}
		s.SetProducts(products)
	case MutationSetOrders:
		orders, ok := payload.([]model.Order)
		if !ok {
			return invalidPayload(name, payload)
		}
		s.SetOrders(orders)
	case MutationSetSelectedProduct:
		switch p := payload.(type) {
		case nil:
			s.SetSelectedProduct(nil)
		case *model.Product:
			s.SetSelectedProduct(p)
		case model.Product:
			s.SetSelectedProduct(&p)
		default:
			return invalidPayload(name, payload)
		}
	case MutationAddToCart, MutationRemoveFromCart, MutationDeleteFromCart:
		p, ok := payload.(model.Product)
		if !ok {
			return invalidPayload(name, payload)
		}
		switch name {
		case MutationAddToCart:
			s.AddToCart(ctx, p)
		case MutationRemoveFromCart:
			s.RemoveFromCart(ctx, p)
		default:
			s.DeleteFromCart(ctx, p)
		}
	case MutationUpdateCartFromStorage:
		s.UpdateCartFromStorage(ctx)
	default:
		return fmt.Errorf("%w: %q", sferrors.ErrUnknownMutation, name)
	}
	return nil
}

// Dispatch runs the action called name with its JSON payload.
func (s *Store) Dispatch(ctx context.Context, name string, payload json.RawMessage) error {
	switch name {
	case ActionFetchProducts:
		return s.FetchProducts(ctx)
	case ActionFetchOrders:
		return s.FetchOrders(ctx)
	case ActionRefresh:
		return s.Refresh(ctx)
	case ActionUpdateCartFromStorage:
		return s.Commit(ctx, MutationUpdateCartFromStorage, nil)
	case ActionAddOrder:
		var order model.Order
		if err := decodePayload(payload, &order); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		return s.AddOrder(ctx, order)
	case ActionFetchProductByID:
		var p productIDPayload
		if err := decodePayload(payload, &p); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		if err := s.validate.Struct(p); err != nil {
			return fmt.Errorf("%w: %s: %w", sferrors.ErrInvalidPayload, name, err)
		}
		return s.FetchProductByID(ctx, string(p.ID))
	case ActionAddToCart, ActionRemoveFromCart, ActionDeleteFromCart:
		var p model.Product
		if err := decodePayload(payload, &p); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		if err := s.validate.Struct(p); err != nil {
			return fmt.Errorf("%w: %s: %w", sferrors.ErrInvalidPayload, name, err)
		}
		return s.Commit(ctx, cartActionMutations[name], p)
	case ActionUpdateActiveNav:
		var nav string
		if err := decodePayload(payload, &nav); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		return s.Commit(ctx, MutationSetActiveNav, nav)
	default:
		return fmt.Errorf("%w: %q", sferrors.ErrUnknownAction, name)
	}
}

var cartActionMutations = map[string]string{
	ActionAddToCart:      MutationAddToCart,
	ActionRemoveFromCart: MutationRemoveFromCart,
	ActionDeleteFromCart: MutationDeleteFromCart,
}

func decodePayload(payload json.RawMessage, v any) error {
	if len(bytes.TrimSpace(payload)) == 0 {
		return fmt.Errorf("%w: payload is required", sferrors.ErrInvalidPayload)
	}
	if err := json.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("%w: %w", sferrors.ErrInvalidPayload, err)
	}
	return nil
}

func invalidPayload(name string, payload any) error {
	return fmt.Errorf("%w: %s does not accept %T", sferrors.ErrInvalidPayload, name, payload)
}
