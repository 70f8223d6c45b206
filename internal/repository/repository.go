package repository

import (
	"context"

	"shopstream/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ProductRepository defines the interface for catalogue data access.
type ProductRepository interface {
	// GetAll retrieves products ordered by name with pagination support.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single product. A missing product yields (nil, nil).
	GetByID(ctx context.Context, id string) (*model.Product, error)

	// ValidateProductsExist returns model.ErrProductNotFound unless every id exists.
	ValidateProductsExist(ctx context.Context, ids []string) error

	// Upsert inserts or replaces catalogue entries.
	Upsert(ctx context.Context, products []model.Product) error
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// CreateOrder inserts the order header within the provided transaction.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateOrderItems inserts the order lines within the provided transaction.
	CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error

	// GetByID retrieves an order with its items in line order. A missing
	// order yields (nil, nil).
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
}
