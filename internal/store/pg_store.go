package store

import (
	"context"
	"errors"
	"fmt"

	perrors "github.com/abgdnv/productapi/internal/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

const (
	findByIDQuery = `SELECT id, name, description, price, qty FROM products WHERE id = $1`
	findAllQuery  = `SELECT id, name, description, price, qty FROM products ORDER BY id`
	createQuery   = `INSERT INTO products (name, description, price, qty)
VALUES ($1, $2, $3, $4)
RETURNING id, name, description, price, qty`
	updateQuery = `UPDATE products
SET name = $2, description = $3, price = $4, qty = $5
WHERE id = $1
RETURNING id, name, description, price, qty`
	deleteQuery = `DELETE FROM products WHERE id = $1 RETURNING id, name, description, price, qty`
)

// DBTX is the subset of pgxpool.Pool, pgx.Conn and pgx.Tx used by PgStore.
type DBTX interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

var _ DBTX = (*pgxpool.Pool)(nil)
var _ ProductStore = (*PgStore)(nil)

// PgStore implements ProductStore using PostgreSQL as the data store.
type PgStore struct {
	db DBTX
}

// NewPgStore creates a new instance of ProductStore using a PostgreSQL connection pool.
func NewPgStore(dbp DBTX) *PgStore {
	return &PgStore{db: dbp}
}

// FindByID retrieves a product by its unique identifier.
// Returns ErrProductNotFound if no product exists with the given ID.
func (p *PgStore) FindByID(ctx context.Context, id int64) (*Product, error) {
	product, err := p.queryOne(ctx, findByIDQuery, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, perrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}
	return product, nil
}

// FindAll retrieves all products ordered by ID.
// It returns a slice of products, which may be empty if no products exist.
func (p *PgStore) FindAll(ctx context.Context) ([]Product, error) {
	rows, err := p.db.Query(ctx, findAllQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to find all products: %w", err)
	}
	products, err := pgx.CollectRows(rows, pgx.RowToStructByName[Product])
	if err != nil {
		return nil, fmt.Errorf("failed to scan products: %w", err)
	}
	if products == nil {
		products = []Product{}
	}
	return products, nil
}

// Create adds a new product to the system.
// Returns ErrProductNameConflict if the name is already taken.
func (p *PgStore) Create(ctx context.Context, params CreateParams) (*Product, error) {
	product, err := p.queryOne(ctx, createQuery, params.Name, params.Description, params.Price, params.Qty)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, perrors.ErrProductNameConflict
		}
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return product, nil
}

// Update replaces all columns of an existing product.
// Returns ErrProductNotFound if no product exists with the given ID.
func (p *PgStore) Update(ctx context.Context, params UpdateParams) (*Product, error) {
	product, err := p.queryOne(ctx, updateQuery, params.ID, params.Name, params.Description, params.Price, params.Qty)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, perrors.ErrProductNotFound
		}
		if isUniqueViolation(err) {
			return nil, perrors.ErrProductNameConflict
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return product, nil
}

// DeleteByID removes a product by its unique identifier and returns the deleted row.
// Returns ErrProductNotFound if no product exists with the given ID.
func (p *PgStore) DeleteByID(ctx context.Context, id int64) (*Product, error) {
	product, err := p.queryOne(ctx, deleteQuery, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, perrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to delete product by ID: %w", err)
	}
	return product, nil
}

// queryOne runs a statement expected to return exactly one product row.
func (p *PgStore) queryOne(ctx context.Context, sql string, args ...any) (*Product, error) {
	rows, err := p.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	product, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[Product])
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
