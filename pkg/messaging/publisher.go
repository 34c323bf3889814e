// Package messaging defines the event publishing contract used by services.
package messaging

import (
	"context"
)

// Subjects for product lifecycle events. ProductsWildcardSubject is captured by the products stream.
const (
	ProductsCreatedSubject  = "products.created"
	ProductsUpdatedSubject  = "products.updated"
	ProductsDeletedSubject  = "products.deleted"
	ProductsWildcardSubject = "products.>"
)

type Event interface {
	Subject() string
	Payload() ([]byte, error)
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NoopPublisher discards events. It is used when messaging is disabled.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) error { return nil }
