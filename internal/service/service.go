// Package service provides the implementation of product-related business logic.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/abgdnv/productapi/internal/store"
	"github.com/abgdnv/productapi/pkg/messaging"
	"github.com/abgdnv/productapi/pkg/messaging/events"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
)

// ProductService defines the methods for managing products.
// It abstracts the underlying business logic and data access.
type ProductService interface {
	// FindByID retrieves a single product by its unique identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id int64) (*ProductDto, error)

	// FindAll returns all available products.
	// Returns an empty slice if no products exist.
	FindAll(ctx context.Context) ([]ProductDto, error)

	// Create adds a new product to the system.
	// Returns ErrProductNameConflict if the name is already taken.
	Create(ctx context.Context, product ProductCreateDto) (*ProductDto, error)

	// Update replaces name, description, price and qty of an existing product.
	// Returns ErrProductNotFound if no product exists with the given ID.
	Update(ctx context.Context, id int64, product ProductUpdateDto) (*ProductDto, error)

	// DeleteByID removes a product by its ID and returns what was removed.
	// Returns ErrProductNotFound if no product exists with the given ID.
	DeleteByID(ctx context.Context, id int64) (*ProductDto, error)
}

// Service implements ProductService and provides methods to manage products.
type Service struct {
	repository      store.ProductStore
	publisher       messaging.Publisher
	productsWritten metric.Int64Counter
}

// NewService creates a new instance of ProductService with the provided repository and publisher.
func NewService(repo store.ProductStore, publisher messaging.Publisher) *Service {
	meter := otel.Meter("product-service")
	productsWritten, err := meter.Int64Counter("products_written", metric.WithDescription("Total number of product writes by operation"))
	if err != nil {
		panic(fmt.Sprintf("failed to create products_written counter: %v", err))
	}
	if publisher == nil {
		publisher = messaging.NoopPublisher{}
	}
	return &Service{
		repository:      repo,
		publisher:       publisher,
		productsWritten: productsWritten,
	}
}

// ProductCreateDto is the body of a create request.
// Fields are pointers so that an absent key can be told apart from a zero value.
// A key sent as null is treated as absent, since every column is NOT NULL.
type ProductCreateDto struct {
	Name        *string  `json:"name"        validate:"required"`
	Description *string  `json:"description" validate:"required"`
	Price       *float64 `json:"price"       validate:"required"`
	Qty         *int32   `json:"qty"         validate:"required"`
}

// ProductUpdateDto is the body of an update request. Every field is replaced.
type ProductUpdateDto struct {
	Name        *string  `json:"name"        validate:"required"`
	Description *string  `json:"description" validate:"required"`
	Price       *float64 `json:"price"       validate:"required"`
	Qty         *int32   `json:"qty"         validate:"required"`
}

// ProductDto represents the data transfer object for a product.
type ProductDto struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Qty         int32   `json:"qty"`
}

// FindByID retrieves a product by its ID and returns it as a ProductDto.
// Returns ErrProductNotFound if no product exists with the given ID.
func (s *Service) FindByID(ctx context.Context, id int64) (*ProductDto, error) {
	product, err := s.repository.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product by ID %d: %w", id, err)
	}

	return toDto(product), nil
}

// FindAll retrieves a list of all products and returns them as ProductDTOs.
// Returns an empty slice if no products exist or error if the retrieval fails.
func (s *Service) FindAll(ctx context.Context) ([]ProductDto, error) {
	products, err := s.repository.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	productDTOs := make([]ProductDto, len(products))

	for i, item := range products {
		productDTOs[i] = *toDto(&item)
	}

	return productDTOs, nil
}

// Create creates a new product and returns it as a ProductDto.
func (s *Service) Create(ctx context.Context, product ProductCreateDto) (*ProductDto, error) {
	p, err := s.repository.Create(ctx, store.CreateParams{
		Name:        deref(product.Name),
		Description: deref(product.Description),
		Price:       deref(product.Price),
		Qty:         deref(product.Qty),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.written(ctx, "create", events.NewProductCreated(toEventProduct(p), carrierFrom(ctx)))
	return toDto(p), nil
}

// Update replaces an existing product's details and returns the updated product as a ProductDto.
// Returns ErrProductNotFound if no product exists with the given ID.
func (s *Service) Update(ctx context.Context, id int64, product ProductUpdateDto) (*ProductDto, error) {
	updated, err := s.repository.Update(ctx, store.UpdateParams{
		ID:          id,
		Name:        deref(product.Name),
		Description: deref(product.Description),
		Price:       deref(product.Price),
		Qty:         deref(product.Qty),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update product with ID %d: %w", id, err)
	}

	s.written(ctx, "update", events.NewProductUpdated(toEventProduct(updated), carrierFrom(ctx)))
	return toDto(updated), nil
}

// DeleteByID deletes a product by its ID and returns the deleted product.
// Returns ErrProductNotFound if no product exists with the given ID.
func (s *Service) DeleteByID(ctx context.Context, id int64) (*ProductDto, error) {
	deleted, err := s.repository.DeleteByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to delete product with ID %d: %w", id, err)
	}

	s.written(ctx, "delete", events.NewProductDeleted(toEventProduct(deleted), carrierFrom(ctx)))
	return toDto(deleted), nil
}

// written publishes the event and counts the write. The write already happened,
// so a publish failure is only logged.
func (s *Service) written(ctx context.Context, operation string, event messaging.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		slog.ErrorContext(ctx, "Failed to publish product event", "subject", event.Subject(), "error", err)
	}
	s.productsWritten.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", operation)))
}

func carrierFrom(ctx context.Context) map[string]string {
	carrier := make(propagation.MapCarrier)
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	return carrier
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

// toDto converts a store.Product to a ProductDto.
func toDto(product *store.Product) *ProductDto {
	return &ProductDto{
		ID:          product.ID,
		Name:        product.Name,
		Description: product.Description,
		Price:       product.Price,
		Qty:         product.Qty,
	}
}

func toEventProduct(product *store.Product) events.Product {
	return events.Product{
		ID:          product.ID,
		Name:        product.Name,
		Description: product.Description,
		Price:       product.Price,
		Qty:         product.Qty,
	}
}
