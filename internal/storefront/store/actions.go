package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/abgdnv/storefront/internal/storefront/model"
	"github.com/abgdnv/storefront/pkg/messaging/events"
	"github.com/abgdnv/storefront/pkg/web"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// FetchProducts loads the catalog from the remote API and replaces the product list.
func (s *Store) FetchProducts(ctx context.Context) (err error) {
	ctx, span := s.startSpan(ctx, ActionFetchProducts)
	defer func() { endSpan(span, err) }()

	products, err := s.api.FetchProducts(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch products: %w", err)
	}
	s.SetProducts(products)
	s.logger.DebugContext(ctx, "Products loaded", "count", len(products))
	return nil
}

// FetchOrders loads the order history from the remote API and replaces the order list.
func (s *Store) FetchOrders(ctx context.Context) (err error) {
	ctx, span := s.startSpan(ctx, ActionFetchOrders)
	defer func() { endSpan(span, err) }()

	orders, err := s.api.FetchOrders(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch orders: %w", err)
	}
	s.SetOrders(orders)
	s.logger.DebugContext(ctx, "Orders loaded", "count", len(orders))
	return nil
}

// AddOrder submits order. A list in the response replaces the order history,
// a single created order is appended to it and an empty response leaves it unchanged.
func (s *Store) AddOrder(ctx context.Context, order model.Order) (err error) {
	ctx, span := s.startSpan(ctx, ActionAddOrder)
	defer func() { endSpan(span, err) }()

	result, err := s.api.AddOrder(ctx, order)
	if err != nil {
		return fmt.Errorf("failed to add order: %w", err)
	}
	switch {
	case result.Orders != nil:
		s.SetOrders(result.Orders)
	case result.Created != nil:
		s.appendOrder(*result.Created)
	default:
		s.logger.DebugContext(ctx, "Order accepted with an empty response")
	}
	s.logger.InfoContext(ctx, "Order submitted", "total_cost", order.TotalCost.String())
	s.publishOrderSubmitted(ctx, order)
	return nil
}

// appendOrder applies SET_ORDERS with created added to the current history.
func (s *Store) appendOrder(created model.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	orders := make([]model.Order, 0, len(s.state.Orders)+1)
	orders = append(orders, s.state.Orders...)
	s.state.Orders = append(orders, created.Clone())
}

// FetchProductByID loads one product and makes it the selected product.
// An id unknown to the API clears the selection.
func (s *Store) FetchProductByID(ctx context.Context, id string) (err error) {
	ctx, span := s.startSpan(ctx, ActionFetchProductByID, attribute.String("product.id", id))
	defer func() { endSpan(span, err) }()

	product, err := s.api.FetchProductByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to fetch product %s: %w", id, err)
	}
	s.SetSelectedProduct(product)
	return nil
}

// Refresh fetches products and orders concurrently. Each result is applied as soon as it arrives.
func (s *Store) Refresh(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.FetchProducts(gCtx)
	})
	g.Go(func() error {
		return s.FetchOrders(gCtx)
	})
	return g.Wait()
}

func (s *Store) publishOrderSubmitted(ctx context.Context, order model.Order) {
	if s.publisher == nil {
		return
	}
	raw, err := json.Marshal(order)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to encode submitted order", "error", err)
		return
	}
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	reqID, _ := web.GetRequestID(ctx)

	event := events.OrderSubmittedEvent{
		Carrier:     carrier,
		RequestID:   reqID,
		TotalCost:   order.TotalCost,
		Order:       raw,
		SubmittedAt: time.Now().UTC(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish order submitted event", "error", err)
	}
}

func (s *Store) startSpan(ctx context.Context, action string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "store."+action, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
