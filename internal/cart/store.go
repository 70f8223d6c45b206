// Package cart owns the active shopping cart and keeps it persisted.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"shopstream/internal/model"
	"shopstream/internal/notify"
	"shopstream/internal/pricing"
	"shopstream/internal/storage"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// StorageKey is the single key the serialised cart lives under.
const StorageKey = "shopstream_cart"

// Store is the single source of truth for the active cart. Every mutation is
// written through to storage before it returns.
type Store struct {
	mu       sync.Mutex
	lines    []model.CartLine
	storage  storage.Storage
	notifier notify.Notifier
	logger   zerolog.Logger
	now      func() time.Time
}

// Option customises a Store.
type Option func(*Store)

// WithClock overrides the time source used for AddedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// Open loads the cart from storage. A missing value yields an empty cart; a
// value that cannot be decoded is deleted and also yields an empty cart.
func Open(ctx context.Context, st storage.Storage, notifier notify.Notifier, logger zerolog.Logger, opts ...Option) (*Store, error) {
	if notifier == nil {
		notifier = notify.Nop()
	}

	s := &Store{
		storage:  st,
		notifier: notifier,
		logger:   logger.With().Str("component", "cart-store").Logger(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	data, err := st.Get(ctx, StorageKey)
	if errors.Is(err, storage.ErrNotFound) {
		s.logger.Debug().Msg("no saved cart, starting empty")
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	lines, err := decodeLines(data)
	if err != nil {
		s.logger.Warn().Err(err).Msg("discarding unreadable saved cart")
		if delErr := st.Delete(ctx, StorageKey); delErr != nil {
			s.logger.Error().Err(delErr).Msg("failed to delete unreadable saved cart")
		}
		return s, nil
	}

	s.lines = lines
	s.logger.Info().
		Int("line_count", len(lines)).
		Int("item_count", s.totalItemCount()).
		Msg("cart restored")

	return s, nil
}

// decodeLines parses a stored cart and rejects content that breaks the
// one-line-per-product and positive-quantity rules.
func decodeLines(data []byte) ([]model.CartLine, error) {
	var lines []model.CartLine
	if err := json.Unmarshal(data, &lines); err != nil {
		return nil, fmt.Errorf("failed to decode cart: %w", err)
	}

	seen := make(map[string]struct{}, len(lines))
	for i, l := range lines {
		if l.ProductID == "" {
			return nil, fmt.Errorf("line %d: missing product id", i)
		}
		if l.Quantity < 1 {
			return nil, fmt.Errorf("line %d: invalid quantity %d", i, l.Quantity)
		}
		if _, dup := seen[l.ProductID]; dup {
			return nil, fmt.Errorf("line %d: duplicate product %s", i, l.ProductID)
		}
		seen[l.ProductID] = struct{}{}
	}

	return lines, nil
}

// AddItem adds one unit of product, merging into an existing line.
func (s *Store) AddItem(ctx context.Context, product model.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(product.ID); i >= 0 {
		s.lines[i].Quantity++
	} else {
		s.lines = append(s.lines, model.CartLine{
			ProductID: product.ID,
			Name:      product.Name,
			UnitPrice: product.Price,
			ImageRef:  product.PrimaryImage(),
			Quantity:  1,
			AddedAt:   s.now(),
		})
	}

	s.logger.Debug().
		Str("product_id", product.ID).
		Int("quantity", s.lines[s.indexOf(product.ID)].Quantity).
		Msg("item added")

	err := s.persist(ctx)
	s.notifier.Success(fmt.Sprintf("%s added to cart!", product.Name))
	return err
}

// RemoveItem deletes the line for productID. Removing an absent product is a no-op.
func (s *Store) RemoveItem(ctx context.Context, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.remove(ctx, productID)
}

func (s *Store) remove(ctx context.Context, productID string) error {
	i := s.indexOf(productID)
	if i < 0 {
		return s.persist(ctx)
	}

	removed := s.lines[i]
	s.lines = append(s.lines[:i], s.lines[i+1:]...)

	s.logger.Debug().Str("product_id", productID).Msg("item removed")

	err := s.persist(ctx)
	s.notifier.Success(fmt.Sprintf("%s removed from cart", removed.Name))
	return err
}

// SetQuantity overwrites the quantity of an existing line. A quantity of zero
// or less removes the line. Unknown products are ignored.
func (s *Store) SetQuantity(ctx context.Context, productID string, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity <= 0 {
		return s.remove(ctx, productID)
	}

	if i := s.indexOf(productID); i >= 0 {
		s.lines[i].Quantity = quantity
		s.logger.Debug().
			Str("product_id", productID).
			Int("quantity", quantity).
			Msg("quantity updated")
	}

	return s.persist(ctx)
}

// Clear empties the cart.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines = nil
	s.logger.Debug().Msg("cart cleared")

	err := s.persist(ctx)
	s.notifier.Success("Cart cleared")
	return err
}

// RemoveOrdered takes the ordered quantities out of the cart. Lines added or
// topped up after the order snapshot are kept.
func (s *Store) RemoveOrdered(ctx context.Context, ordered []model.CartLine) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, o := range ordered {
		i := s.indexOf(o.ProductID)
		if i < 0 {
			continue
		}
		if s.lines[i].Quantity > o.Quantity {
			s.lines[i].Quantity -= o.Quantity
			continue
		}
		s.lines = append(s.lines[:i], s.lines[i+1:]...)
	}
	if len(s.lines) == 0 {
		s.lines = nil
	}

	s.logger.Debug().
		Int("ordered_lines", len(ordered)).
		Int("remaining_lines", len(s.lines)).
		Msg("ordered items removed")

	return s.persist(ctx)
}

// TotalItemCount sums quantities across all lines.
func (s *Store) TotalItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.totalItemCount()
}

func (s *Store) totalItemCount() int {
	total := 0
	for _, l := range s.lines {
		total += l.Quantity
	}
	return total
}

// TotalPrice is the raw subtotal of the cart.
func (s *Store) TotalPrice() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	return pricing.Subtotal(s.lines)
}

// QuantityOf returns the quantity held for productID, or 0.
func (s *Store) QuantityOf(productID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(productID); i >= 0 {
		return s.lines[i].Quantity
	}
	return 0
}

// Contains reports whether productID has a line in the cart.
func (s *Store) Contains(productID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.indexOf(productID) >= 0
}

// Lines returns a copy of the cart lines in insertion order.
func (s *Store) Lines() []model.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.CartLine, len(s.lines))
	copy(out, s.lines)
	return out
}

func (s *Store) indexOf(productID string) int {
	for i, l := range s.lines {
		if l.ProductID == productID {
			return i
		}
	}
	return -1
}

// persist writes the whole cart. Callers hold s.mu. The write ignores
// cancellation of ctx so storage never lags behind an applied mutation.
func (s *Store) persist(ctx context.Context) error {
	ctx = context.WithoutCancel(ctx)

	lines := s.lines
	if lines == nil {
		lines = []model.CartLine{}
	}

	data, err := json.Marshal(lines)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to encode cart")
		return fmt.Errorf("failed to encode cart: %w", err)
	}

	if err := s.storage.Set(ctx, StorageKey, data); err != nil {
		s.logger.Error().Err(err).Int("line_count", len(lines)).Msg("failed to persist cart")
		return fmt.Errorf("failed to persist cart: %w", err)
	}

	return nil
}
