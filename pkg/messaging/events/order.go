// Package events contains the events published by the storefront.
package events

import (
	"encoding/json"
	"time"

	"github.com/abgdnv/storefront/pkg/messaging"
	"github.com/shopspring/decimal"
)

// OrderSubmittedEvent is published after the remote API accepted an order.
type OrderSubmittedEvent struct {
	Carrier     map[string]string `json:"carrier,omitempty"`
	RequestID   string            `json:"request_id,omitempty"`
	TotalCost   decimal.Decimal   `json:"total_cost"`
	Order       json.RawMessage   `json:"order"`
	SubmittedAt time.Time         `json:"submitted_at"`
}

func (o OrderSubmittedEvent) Subject() string {
	return messaging.OrdersSubmittedSubject
}

func (o OrderSubmittedEvent) Payload() ([]byte, error) {
	return json.Marshal(o)
}
