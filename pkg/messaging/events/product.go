// Package events holds the payloads published on product lifecycle subjects.
package events

import (
	"encoding/json"
	"time"

	"github.com/abgdnv/productapi/pkg/messaging"
	"github.com/google/uuid"
)

// Product is the snapshot of a product carried by every event.
type Product struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Qty         int32   `json:"qty"`
}

// ProductEvent is the envelope shared by created, updated and deleted events.
// Carrier holds the propagated trace context of the request that caused the change.
type ProductEvent struct {
	EventID    uuid.UUID         `json:"event_id"`
	Carrier    map[string]string `json:"carrier,omitempty"`
	Product    Product           `json:"product"`
	OccurredAt time.Time         `json:"occurred_at"`
	subject    string
}

func newProductEvent(subject string, product Product, carrier map[string]string) ProductEvent {
	return ProductEvent{
		EventID:    uuid.New(),
		Carrier:    carrier,
		Product:    product,
		OccurredAt: time.Now().UTC(),
		subject:    subject,
	}
}

func NewProductCreated(product Product, carrier map[string]string) ProductEvent {
	return newProductEvent(messaging.ProductsCreatedSubject, product, carrier)
}

func NewProductUpdated(product Product, carrier map[string]string) ProductEvent {
	return newProductEvent(messaging.ProductsUpdatedSubject, product, carrier)
}

func NewProductDeleted(product Product, carrier map[string]string) ProductEvent {
	return newProductEvent(messaging.ProductsDeletedSubject, product, carrier)
}

func (e ProductEvent) Subject() string {
	return e.subject
}

func (e ProductEvent) Payload() ([]byte, error) {
	return json.Marshal(e)
}
