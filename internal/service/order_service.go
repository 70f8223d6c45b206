package service

import (
	"context"
	"fmt"
	"time"

	"shopstream/internal/checkout"
	"shopstream/internal/model"
	"shopstream/internal/pricing"
	"shopstream/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// orderService implements OrderService.
type orderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	promos      pricing.RateLookup
	logger      zerolog.Logger
	now         func() time.Time
}

// NewOrderService creates a new order service. promos prices the order's
// promo code; it is usually the coupon registry.
func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	promos pricing.RateLookup,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		promos:      promos,
		logger:      logger.With().Str("service", "order").Logger(),
		now:         time.Now,
	}
}

// CreateOrder validates the request, reprices it from its lines, and stores
// the order as confirmed. Only the masked payment is kept.
func (s *orderService) CreateOrder(ctx context.Context, req *model.OrderRequest) (*model.Order, error) {
	if err := s.validateOrderRequest(req); err != nil {
		return nil, err
	}

	productIDs := make([]string, len(req.Items))
	for i, item := range req.Items {
		productIDs[i] = item.ProductID
	}

	if err := s.productRepo.ValidateProductsExist(ctx, productIDs); err != nil {
		s.logger.Warn().
			Int("product_count", len(productIDs)).
			Err(err).
			Msg("product validation failed")
		return nil, err
	}

	breakdown := pricing.Calculate(pricing.Subtotal(req.Items), s.promos, req.Pricing.PromoCode)
	if !req.Total.IsZero() && !req.Total.Equal(breakdown.Total) {
		s.logger.Warn().
			Str("requested_total", req.Total.StringFixed(2)).
			Str("computed_total", breakdown.Total.StringFixed(2)).
			Msg("order total differs from computed total, using computed")
	}

	now := s.now().UTC()
	order := &model.Order{
		ID:           uuid.New(),
		Shipping:     req.Shipping,
		Payment:      req.Payment.Mask(),
		Subtotal:     breakdown.Subtotal,
		Discount:     breakdown.DiscountAmount,
		ShippingCost: breakdown.ShippingCost,
		Tax:          breakdown.TaxAmount,
		Total:        breakdown.Total,
		Status:       model.StatusConfirmed,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if breakdown.PromoCode != "" {
		code := breakdown.PromoCode
		order.PromoCode = &code
	}

	order.Items = make([]model.OrderItem, len(req.Items))
	for i, line := range req.Items {
		order.Items[i] = model.OrderItem{
			ID:        uuid.New(),
			OrderID:   order.ID,
			Position:  i,
			ProductID: line.ProductID,
			Name:      line.Name,
			UnitPrice: line.UnitPrice,
			ImageRef:  line.ImageRef,
			Quantity:  line.Quantity,
		}
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	if err = s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to create order")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	if err = s.orderRepo.CreateOrderItems(ctx, tx, order.Items); err != nil {
		s.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Int("item_count", len(order.Items)).
			Msg("failed to create order items")
		return nil, fmt.Errorf("failed to create order items: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Int("item_count", len(order.Items)).
		Str("total", order.Total.StringFixed(2)).
		Msg("order created successfully")

	return order, nil
}

// GetByID retrieves an order by its ID with all items.
func (s *orderService) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if order == nil {
		s.logger.Debug().Str("order_id", id.String()).Msg("order not found")
		return nil, model.ErrOrderNotFound
	}

	return order, nil
}

// validateOrderRequest checks the lines, then shipping and payment fields.
func (s *orderService) validateOrderRequest(req *model.OrderRequest) error {
	if req == nil || len(req.Items) == 0 {
		return model.ErrEmptyOrder
	}

	for i, item := range req.Items {
		if item.ProductID == "" {
			return model.NewDomainError(model.ErrCodeMissingField, fmt.Sprintf("item %d: product ID is required", i))
		}

		if item.Quantity <= 0 {
			s.logger.Warn().
				Int("item_index", i).
				Str("product_id", item.ProductID).
				Int("quantity", item.Quantity).
				Msg("invalid quantity")
			return model.ErrInvalidQuantity
		}
	}

	fields := checkout.ValidateShipping(req.Shipping)
	for k, v := range checkout.ValidatePayment(req.Payment) {
		fields[k] = v
	}
	if len(fields) > 0 {
		return &model.ValidationError{Fields: fields}
	}

	return nil
}
