package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aaravmahajanofficial/storefront/internal/metrics"
	"github.com/aaravmahajanofficial/storefront/internal/models"
)

var errMalformedCart = errors.New("malformed cart payload")

// ensureLoaded must be called with s.mu held.
func (s *Store) ensureLoaded(ctx context.Context) {
	if s.loaded {
		return
	}
	s.loaded = true

	cart, err := s.load(ctx)
	if err != nil {
		metrics.CartPersistenceFailures.WithLabelValues("load").Inc()
		s.logger.Warn("Discarding persisted cart, starting empty", slog.String("key", s.key), slog.Any("error", err))
	}

	if cart == nil {
		s.cart = s.freshCart()
		s.persist(ctx)
		return
	}

	s.cart = cart
	s.logger.Debug("Restored persisted cart", slog.String("key", s.key), slog.String("cartId", cart.ID))
}

// load returns (nil, nil) when nothing is stored.
func (s *Store) load(ctx context.Context) (*models.Cart, error) {
	raw, found, err := s.kv.Get(ctx, s.key)
	if err != nil {
		return nil, fmt.Errorf("reading cart: %w", err)
	}
	if !found {
		return nil, nil
	}

	return Decode([]byte(raw))
}

// persist must be called with s.mu held. Failures leave the in-memory cart
// untouched; the next mutation simply tries again.
func (s *Store) persist(ctx context.Context) {
	if s.disposed {
		return
	}

	payload, err := json.Marshal(s.cart)
	if err != nil {
		metrics.CartPersistenceFailures.WithLabelValues("save").Inc()
		s.logger.Error("Failed to encode cart", slog.String("key", s.key), slog.Any("error", err))
		return
	}

	if err := s.kv.Set(ctx, s.key, string(payload)); err != nil {
		metrics.CartPersistenceFailures.WithLabelValues("save").Inc()
		s.logger.Warn("Failed to persist cart, continuing in memory", slog.String("key", s.key), slog.Any("error", err))
	}
}

// Decode parses a persisted cart and rejects shapes that break the cart
// invariants. Totals are recomputed from the lines rather than trusted.
func Decode(payload []byte) (*models.Cart, error) {
	var c models.Cart
	if err := json.Unmarshal(payload, &c); err != nil {
		return nil, fmt.Errorf("%w: %w", errMalformedCart, err)
	}

	if err := validate(&c); err != nil {
		return nil, err
	}

	if c.Lines == nil {
		c.Lines = []models.CartLine{}
	}
	recomputeTotals(&c)

	return &c, nil
}

func validate(c *models.Cart) error {
	if c.ID == "" {
		return fmt.Errorf("%w: missing id", errMalformedCart)
	}
	if c.Revision < 0 {
		return fmt.Errorf("%w: negative revision", errMalformedCart)
	}

	seen := make(map[[2]string]struct{}, len(c.Lines))
	for i, line := range c.Lines {
		if line.ProductID == "" {
			return fmt.Errorf("%w: line %d has no product id", errMalformedCart, i)
		}
		if line.Quantity < 1 {
			return fmt.Errorf("%w: line %d has quantity %d", errMalformedCart, i, line.Quantity)
		}
		if line.UnitPrice.IsNegative() {
			return fmt.Errorf("%w: line %d has a negative price", errMalformedCart, i)
		}

		k := [2]string{line.ProductID, line.VariantID}
		if _, dup := seen[k]; dup {
			return fmt.Errorf("%w: duplicate line for product %s", errMalformedCart, line.ProductID)
		}
		seen[k] = struct{}{}
	}

	if c.CouponDiscount != nil && c.CouponDiscount.IsNegative() {
		return fmt.Errorf("%w: negative coupon discount", errMalformedCart)
	}

	return nil
}
