// Package store provides an interface for product storage operations.
package store

import (
	"context"
)

// Product is a row of the products table.
type Product struct {
	ID          int64   `db:"id"`
	Name        string  `db:"name"`
	Description string  `db:"description"`
	Price       float64 `db:"price"`
	Qty         int32   `db:"qty"`
}

// CreateParams carries the columns written by Create.
type CreateParams struct {
	Name        string
	Description string
	Price       float64
	Qty         int32
}

// UpdateParams carries the full replacement for the row identified by ID.
type UpdateParams struct {
	ID          int64
	Name        string
	Description string
	Price       float64
	Qty         int32
}

// ProductStore is an interface for product storage operations.
// Every method maps to exactly one auto-committed SQL statement.
type ProductStore interface {
	// FindByID retrieves a single product by its unique identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id int64) (*Product, error)

	// FindAll returns all products ordered by ID.
	// Returns an empty slice if no products exist.
	FindAll(ctx context.Context) ([]Product, error)

	// Create inserts a new product and returns it with its assigned ID.
	// Returns ErrProductNameConflict if the name is already taken.
	Create(ctx context.Context, params CreateParams) (*Product, error)

	// Update replaces every column of an existing product.
	// Returns ErrProductNotFound if no product exists with the given ID
	// and ErrProductNameConflict if the new name is already taken.
	Update(ctx context.Context, params UpdateParams) (*Product, error)

	// DeleteByID removes a product by its ID and returns the removed row.
	// Returns ErrProductNotFound if no product exists with the given ID.
	DeleteByID(ctx context.Context, id int64) (*Product, error)
}
