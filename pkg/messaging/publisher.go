// Package messaging defines the event publishing contract used by the storefront.
package messaging

import (
	"context"
)

// Stream and subjects of the storefront events.
const (
	StorefrontStream       = "STOREFRONT"
	StorefrontSubjects     = "storefront.>"
	OrdersSubmittedSubject = "storefront.orders.submitted"
)

type Event interface {
	Subject() string
	Payload() ([]byte, error)
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}
