// Package store is the storefront state container. It caches products, orders and the selected
// product fetched from the remote API, keeps the cart and the active navigation tag, and writes
// the cart through to durable key-value storage.
package store

import (
	"context"
	"log/slog"
	"sync"

	"github.com/abgdnv/storefront/internal/storefront/api"
	"github.com/abgdnv/storefront/internal/storefront/model"
	"github.com/abgdnv/storefront/internal/storefront/storage"
	"github.com/abgdnv/storefront/pkg/messaging"
	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	// CartStorageKey is the storage key holding the JSON encoded cart.
	CartStorageKey = "cart"
	// DefaultNav is the navigation tag of a fresh store.
	DefaultNav = "home"

	instrumentationName = "github.com/abgdnv/storefront/internal/storefront/store"
)

// API is the part of the remote API client the store depends on.
type API interface {
	FetchProducts(ctx context.Context) ([]model.Product, error)
	FetchOrders(ctx context.Context) ([]model.Order, error)
	AddOrder(ctx context.Context, order model.Order) (*api.OrderPostResult, error)
	FetchProductByID(ctx context.Context, id string) (*model.Product, error)
}

var _ API = (*api.Client)(nil)

// State is a point-in-time copy of everything the store holds.
type State struct {
	Products        []model.Product  `json:"products"`
	Orders          []model.Order    `json:"orders"`
	SelectedProduct *model.Product   `json:"selectedProduct"`
	Cart            []model.CartItem `json:"cart"`
	ActiveNav       string           `json:"activeNav"`
}

// Store is safe for concurrent use. Mutations are atomic, getters return copies
// and actions never hold the lock while waiting on the network.
type Store struct {
	mu    sync.RWMutex
	state State
	// cartVersion counts cart changes. Guarded by mu.
	cartVersion uint64

	// persistMu orders writes to kv. persistedVersion is the cartVersion last written.
	persistMu        sync.Mutex
	persistedVersion uint64

	api       API
	kv        storage.KeyValue
	publisher messaging.Publisher
	validate  *validator.Validate
	logger    *slog.Logger
	tracer    trace.Tracer

	cartMutations metric.Int64Counter
}

// Option configures a Store.
type Option func(*Store)

// WithPublisher publishes an event for every order accepted by the remote API.
func WithPublisher(p messaging.Publisher) Option {
	return func(s *Store) {
		s.publisher = p
	}
}

// WithInitialNav overrides DefaultNav.
func WithInitialNav(nav string) Option {
	return func(s *Store) {
		s.state.ActiveNav = nav
	}
}

// New creates an empty store. The cart is not read from kv until UpdateCartFromStorage is called.
func New(apiClient API, kv storage.KeyValue, logger *slog.Logger, opts ...Option) *Store {
	s := &Store{
		state: State{
			Products:  []model.Product{},
			Orders:    []model.Order{},
			Cart:      []model.CartItem{},
			ActiveNav: DefaultNav,
		},
		api:      apiClient,
		kv:       kv,
		validate: validator.New(),
		logger:   logger.With("component", "store"),
		tracer:   otel.Tracer(instrumentationName),
	}
	for _, opt := range opts {
		opt(s)
	}

	counter, err := otel.Meter(instrumentationName).Int64Counter("cart_mutations",
		metric.WithDescription("Number of applied cart mutations"))
	if err != nil {
		s.logger.Warn("Failed to create cart mutation counter", "error", err)
	}
	s.cartMutations = counter
	return s
}

// Snapshot returns a copy of the whole state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return State{
		Products:        cloneProducts(s.state.Products),
		Orders:          cloneOrders(s.state.Orders),
		SelectedProduct: cloneSelected(s.state.SelectedProduct),
		Cart:            model.CloneCart(s.state.Cart),
		ActiveNav:       s.state.ActiveNav,
	}
}

func cloneProducts(in []model.Product) []model.Product {
	out := make([]model.Product, len(in))
	for i, p := range in {
		out[i] = p.Clone()
	}
	return out
}

func cloneOrders(in []model.Order) []model.Order {
	out := make([]model.Order, len(in))
	for i, o := range in {
		out[i] = o.Clone()
	}
	return out
}

func cloneSelected(p *model.Product) *model.Product {
	if p == nil {
		return nil
	}
	c := p.Clone()
	return &c
}
