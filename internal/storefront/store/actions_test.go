package store

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/abgdnv/storefront/internal/storefront/api"
	sferrors "github.com/abgdnv/storefront/internal/storefront/errors"
	"github.com/abgdnv/storefront/internal/storefront/model"
	"github.com/abgdnv/storefront/pkg/messaging"
	"github.com/abgdnv/storefront/pkg/messaging/events"
	"github.com/abgdnv/storefront/pkg/web"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Store_FetchProducts(t *testing.T) {
	testCases := []struct {
		name          string
		mock          *mockAPI
		expectedCount int
		expectedError error
	}{
		{
			name:          "Success - products replaced",
			mock:          &mockAPI{products: []model.Product{product("1", "10"), product("2", "20")}},
			expectedCount: 2,
		},
		{
			name:          "Error - network failure keeps state",
			mock:          &mockAPI{error: &sferrors.StatusError{Method: "GET", URL: "u", StatusCode: 500}},
			expectedCount: 1,
			expectedError: sferrors.ErrNetwork,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			s, _ := newTestStore(t, tc.mock)
			s.SetProducts([]model.Product{product("old", "1")})
			// when
			err := s.Dispatch(context.Background(), ActionFetchProducts, nil)
			// then
			if tc.expectedError != nil {
				assert.ErrorIs(t, err, tc.expectedError)
			} else {
				require.NoError(t, err)
			}
			assert.Len(t, s.Products(), tc.expectedCount)
		})
	}
}

func Test_Store_FetchOrders(t *testing.T) {
	// given
	s, _ := newTestStore(t, &mockAPI{orders: []model.Order{order("3"), order("4")}})

	// when
	err := s.Dispatch(context.Background(), ActionFetchOrders, nil)

	// then
	require.NoError(t, err)
	total, ok := s.OrdersTotalCost()
	assert.True(t, ok)
	assert.Equal(t, "7", total.String())
}

func Test_Store_AddOrder(t *testing.T) {
	created := order("9")
	testCases := []struct {
		name           string
		mock           *mockAPI
		expectedTotals []string
		expectedError  error
	}{
		{
			name:           "Success - list response replaces history",
			mock:           &mockAPI{postResult: &api.OrderPostResult{Orders: []model.Order{order("1")}}},
			expectedTotals: []string{"1"},
		},
		{
			name:           "Success - created order is appended",
			mock:           &mockAPI{postResult: &api.OrderPostResult{Created: &created}},
			expectedTotals: []string{"5", "9"},
		},
		{
			name:           "Success - empty response keeps history",
			mock:           &mockAPI{postResult: &api.OrderPostResult{}},
			expectedTotals: []string{"5"},
		},
		{
			name:           "Success - empty list clears history",
			mock:           &mockAPI{postResult: &api.OrderPostResult{Orders: []model.Order{}}},
			expectedTotals: []string{},
		},
		{
			name:           "Error - network failure",
			mock:           &mockAPI{error: errors.Join(sferrors.ErrNetwork, errors.New("connection refused"))},
			expectedTotals: []string{"5"},
			expectedError:  sferrors.ErrNetwork,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			s, _ := newTestStore(t, tc.mock)
			s.SetOrders([]model.Order{order("5")})

			// when
			err := s.Dispatch(context.Background(), ActionAddOrder, json.RawMessage(`{"total_cost":"12","items":[1,2]}`))

			// then
			if tc.expectedError != nil {
				assert.ErrorIs(t, err, tc.expectedError)
			} else {
				require.NoError(t, err)
			}
			require.Len(t, tc.mock.posted, 1)
			assert.Equal(t, "12", tc.mock.posted[0].TotalCost.String())
			assert.Equal(t, json.RawMessage(`[1,2]`), tc.mock.posted[0].Fields["items"])
			totals := make([]string, 0)
			for _, o := range s.Orders() {
				totals = append(totals, o.TotalCost.String())
			}
			assert.Equal(t, tc.expectedTotals, totals)
		})
	}
}

func Test_Store_AddOrder_PublishesEvent(t *testing.T) {
	testCases := []struct {
		name           string
		apiError       error
		publishError   error
		expectedEvents int
	}{
		{name: "Published after success", expectedEvents: 1},
		{name: "Publish failure does not fail the action", publishError: errors.New("nats down"), expectedEvents: 1},
		{name: "Not published on failure", apiError: sferrors.ErrNetwork, expectedEvents: 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			pub := &mockPublisher{error: tc.publishError}
			mock := &mockAPI{postResult: &api.OrderPostResult{}, error: tc.apiError}
			s, _ := newTestStore(t, mock, WithPublisher(pub))
			ctx := web.WithRequestID(context.Background(), "req-1")

			// when
			err := s.AddOrder(ctx, order("12"))

			// then
			if tc.apiError != nil {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			require.Len(t, pub.events, tc.expectedEvents)
			if tc.expectedEvents == 0 {
				return
			}
			event, ok := pub.events[0].(events.OrderSubmittedEvent)
			require.True(t, ok)
			assert.Equal(t, messaging.OrdersSubmittedSubject, event.Subject())
			assert.Equal(t, "req-1", event.RequestID)
			assert.Equal(t, "12", event.TotalCost.String())
			assert.JSONEq(t, `{"total_cost":"12"}`, string(event.Order))
			assert.False(t, event.SubmittedAt.IsZero())
		})
	}
}

func Test_Store_FetchProductByID(t *testing.T) {
	selected := product("7", "1")
	testCases := []struct {
		name          string
		payload       string
		mock          *mockAPI
		expectedID    model.ID
		expectedCall  string
		expectedError error
	}{
		{
			name:         "Success - string id",
			payload:      `{"id":"7"}`,
			mock:         &mockAPI{product: &selected},
			expectedID:   "7",
			expectedCall: "7",
		},
		{
			name:         "Success - numeric id",
			payload:      `{"id":7}`,
			mock:         &mockAPI{product: &selected},
			expectedID:   "7",
			expectedCall: "7",
		},
		{
			name:         "Success - unknown id clears selection",
			payload:      `{"id":"404"}`,
			mock:         &mockAPI{},
			expectedCall: "404",
		},
		{
			name:          "Error - missing id",
			payload:       `{}`,
			mock:          &mockAPI{},
			expectedError: sferrors.ErrInvalidPayload,
		},
		{
			name:          "Error - no payload",
			payload:       ``,
			mock:          &mockAPI{},
			expectedError: sferrors.ErrInvalidPayload,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			s, _ := newTestStore(t, tc.mock)
			old := product("1", "1")
			s.SetSelectedProduct(&old)

			// when
			err := s.Dispatch(context.Background(), ActionFetchProductByID, json.RawMessage(tc.payload))

			// then
			if tc.expectedError != nil {
				assert.ErrorIs(t, err, tc.expectedError)
				assert.Equal(t, model.ID("1"), s.SelectedProduct().ID)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expectedCall, tc.mock.calledID)
			if tc.expectedID == "" {
				assert.Nil(t, s.SelectedProduct())
				return
			}
			assert.Equal(t, tc.expectedID, s.SelectedProduct().ID)
		})
	}
}

func Test_Store_CartActions(t *testing.T) {
	// given
	s, kv := newTestStore(t, &mockAPI{})
	ctx := context.Background()
	mug := json.RawMessage(`{"id":1,"price":"10","name":"Mug"}`)

	// when
	require.NoError(t, s.Dispatch(ctx, ActionAddToCart, mug))
	require.NoError(t, s.Dispatch(ctx, ActionAddToCart, mug))
	require.NoError(t, s.Dispatch(ctx, ActionAddToCart, json.RawMessage(`{"id":2,"price":1}`)))
	require.NoError(t, s.Dispatch(ctx, ActionRemoveFromCart, json.RawMessage(`{"id":1}`)))
	require.NoError(t, s.Dispatch(ctx, ActionDeleteFromCart, json.RawMessage(`{"id":"2"}`)))

	// then
	assert.Equal(t, []cartLine{{"1", 1, "10"}}, lines(s.GetCart()))
	assert.Equal(t, lines(s.GetCart()), lines(persistedCart(t, kv)))
	assert.Equal(t, json.RawMessage(`"Mug"`), s.GetCart()[0].Fields["name"])
}

func Test_Store_CartActions_InvalidPayload(t *testing.T) {
	testCases := []struct {
		name    string
		action  string
		payload string
	}{
		{name: "Missing id", action: ActionAddToCart, payload: `{"price":1}`},
		{name: "Bad price", action: ActionAddToCart, payload: `{"id":1,"price":"ten"}`},
		{name: "Not an object", action: ActionRemoveFromCart, payload: `[1]`},
		{name: "Null", action: ActionDeleteFromCart, payload: `null`},
		{name: "Empty", action: ActionAddToCart, payload: ``},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s, _ := newTestStore(t, &mockAPI{})
			err := s.Dispatch(context.Background(), tc.action, json.RawMessage(tc.payload))
			assert.ErrorIs(t, err, sferrors.ErrInvalidPayload)
			assert.Empty(t, s.GetCart())
		})
	}
}

func Test_Store_UpdateActiveNav(t *testing.T) {
	// given
	s, _ := newTestStore(t, &mockAPI{})

	// when
	err := s.Dispatch(context.Background(), ActionUpdateActiveNav, json.RawMessage(`"orders"`))

	// then
	require.NoError(t, err)
	assert.Equal(t, "orders", s.ActiveNav())
	assert.ErrorIs(t, s.Dispatch(context.Background(), ActionUpdateActiveNav, json.RawMessage(`{"nav":1}`)), sferrors.ErrInvalidPayload)
}

func Test_Store_Refresh(t *testing.T) {
	// given
	s, _ := newTestStore(t, &mockAPI{
		products: []model.Product{product("1", "1")},
		orders:   []model.Order{order("2"), order("3")},
	})

	// when
	err := s.Dispatch(context.Background(), ActionRefresh, nil)

	// then
	require.NoError(t, err)
	assert.Len(t, s.Products(), 1)
	assert.Len(t, s.Orders(), 2)
}

func Test_Store_Dispatch_UnknownAction(t *testing.T) {
	s, _ := newTestStore(t, &mockAPI{})
	err := s.Dispatch(context.Background(), "launchRocket", nil)
	assert.ErrorIs(t, err, sferrors.ErrUnknownAction)
}
