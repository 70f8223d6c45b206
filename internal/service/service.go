package service

import (
	"context"

	"shopstream/internal/model"

	"github.com/google/uuid"
)

// ProductService defines read access to the catalogue.
type ProductService interface {
	// GetAll retrieves products with pagination.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single product by ID.
	GetByID(ctx context.Context, id string) (*model.Product, error)
}

// OrderService defines operations for order management.
type OrderService interface {
	// CreateOrder validates and prices an assembled order, then stores it
	// with its lines in one transaction.
	CreateOrder(ctx context.Context, req *model.OrderRequest) (*model.Order, error)

	// GetByID retrieves an order with its items.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
}
