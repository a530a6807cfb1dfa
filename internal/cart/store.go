// Package cart owns the shopping cart state. A Store is the single writer of
// one cart: it keeps the derived totals consistent with the lines and writes
// the whole cart to a durable key/value store after every mutation.
package cart

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/aaravmahajanofficial/storefront/internal/metrics"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/aaravmahajanofficial/storefront/internal/storage"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const DefaultKey = "cart:storefront"

// LineInput is a pre-validated add-to-cart request; Quantity is >= 1.
type LineInput struct {
	ProductID   string
	VariantID   string
	ProductName string
	ProductSlug string
	Quantity    int
	UnitPrice   decimal.Decimal
	Image       string
	Options     []models.CartOption
}

type Store struct {
	mu     sync.Mutex
	kv     storage.KeyValueStore
	key    string
	logger *slog.Logger
	newID  func() string
	now    func() time.Time

	cart     *models.Cart
	loaded   bool
	disposed bool
}

type Option func(*Store)

func WithKey(key string) Option {
	return func(s *Store) {
		s.key = key
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

func WithIDGenerator(newID func() string) Option {
	return func(s *Store) {
		s.newID = newID
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

func NewStore(kv storage.KeyValueStore, opts ...Option) *Store {
	s := &Store{
		kv:     kv,
		key:    DefaultKey,
		logger: slog.Default(),
		newID:  uuid.NewString,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Key() string {
	return s.key
}

// Initialize loads the persisted cart once. Any failure falls back to a fresh
// empty cart; it never returns an error.
func (s *Store) Initialize(ctx context.Context) *models.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ensureLoaded(ctx)
	return s.cart.Clone()
}

func (s *Store) AddLine(ctx context.Context, in LineInput) *models.Cart {
	return s.mutate(ctx, "add_line", func(c *models.Cart) {
		for i := range c.Lines {
			if c.Lines[i].Matches(in.ProductID, in.VariantID) {
				c.Lines[i].Quantity += in.Quantity
				return
			}
		}

		c.Lines = append(c.Lines, models.CartLine{
			ProductID:   in.ProductID,
			VariantID:   in.VariantID,
			ProductName: in.ProductName,
			ProductSlug: in.ProductSlug,
			Quantity:    in.Quantity,
			UnitPrice:   in.UnitPrice,
			Image:       in.Image,
			Options:     append([]models.CartOption(nil), in.Options...),
		})
	})
}

// SetQuantity sets an absolute quantity; zero or less removes the line.
func (s *Store) SetQuantity(ctx context.Context, productID, variantID string, quantity int) *models.Cart {
	if quantity <= 0 {
		return s.RemoveLine(ctx, productID, variantID)
	}

	return s.mutate(ctx, "set_quantity", func(c *models.Cart) {
		for i := range c.Lines {
			if c.Lines[i].Matches(productID, variantID) {
				c.Lines[i].Quantity = quantity
				return
			}
		}
	})
}

func (s *Store) RemoveLine(ctx context.Context, productID, variantID string) *models.Cart {
	return s.mutate(ctx, "remove_line", func(c *models.Cart) {
		kept := c.Lines[:0]
		for _, line := range c.Lines {
			if !line.Matches(productID, variantID) {
				kept = append(kept, line)
			}
		}
		c.Lines = kept
	})
}

// Clear replaces the cart with a fresh one under a new id.
func (s *Store) Clear(ctx context.Context) *models.Cart {
	return s.mutate(ctx, "clear", func(c *models.Cart) {
		*c = *s.freshCart()
	})
}

// ApplyCoupon records an already validated coupon.
func (s *Store) ApplyCoupon(ctx context.Context, code string, discount decimal.Decimal) *models.Cart {
	return s.mutate(ctx, "apply_coupon", func(c *models.Cart) {
		c.CouponCode = code
		c.CouponDiscount = &discount
	})
}

func (s *Store) RemoveCoupon(ctx context.Context) *models.Cart {
	return s.mutate(ctx, "remove_coupon", func(c *models.Cart) {
		c.CouponCode = ""
		c.CouponDiscount = nil
	})
}

func (s *Store) SetNote(ctx context.Context, text string) *models.Cart {
	return s.mutate(ctx, "set_note", func(c *models.Cart) {
		c.Metadata.Notes = text
	})
}

// Snapshot returns a copy of the current cart.
func (s *Store) Snapshot() *models.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ensureLoaded(context.Background())
	return s.cart.Clone()
}

// ResetIfCurrent settles the cart after ordered was checked out. When the live
// cart is still exactly ordered (same id and revision) it is replaced by a fresh
// cart and true is returned. When the same cart was changed in the meantime only
// the ordered quantities and the ordered coupon are taken out, so lines added
// after the snapshot survive. A different cart or a disposed store is left alone.
func (s *Store) ResetIfCurrent(ctx context.Context, ordered *models.Cart) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ordered == nil {
		return false
	}

	if s.disposed || s.cart == nil || s.cart.ID != ordered.ID {
		s.logger.Info("Skipping cart reset for stale cart", slog.String("cartId", ordered.ID))
		return false
	}

	revision := s.cart.Revision

	if revision == ordered.Revision {
		s.cart = s.freshCart()
		s.cart.Revision = revision + 1
		metrics.CartMutations.WithLabelValues("reset").Inc()
		s.persist(ctx)
		return true
	}

	s.logger.Info("Cart changed during checkout, removing ordered lines only",
		slog.String("cartId", ordered.ID),
		slog.Int64("orderedRevision", ordered.Revision),
		slog.Int64("revision", revision))

	removeOrdered(s.cart, ordered)
	recomputeTotals(s.cart)
	s.cart.Revision = revision + 1
	s.cart.UpdatedAt = s.now().UTC()
	metrics.CartMutations.WithLabelValues("settle").Inc()
	s.persist(ctx)
	return false
}

// removeOrdered subtracts the ordered quantities from c.
func removeOrdered(c *models.Cart, ordered *models.Cart) {
	for _, o := range ordered.Lines {
		for i := range c.Lines {
			if c.Lines[i].Matches(o.ProductID, o.VariantID) {
				c.Lines[i].Quantity -= o.Quantity
				break
			}
		}
	}

	kept := c.Lines[:0]
	for _, line := range c.Lines {
		if line.Quantity > 0 {
			kept = append(kept, line)
		}
	}
	c.Lines = kept

	if ordered.CouponCode != "" && c.CouponCode == ordered.CouponCode {
		c.CouponCode = ""
		c.CouponDiscount = nil
	}
}

// Dispose ends the store's lifecycle. Later mutations are ignored.
func (s *Store) Dispose() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.disposed = true
}

func (s *Store) mutate(ctx context.Context, op string, fn func(c *models.Cart)) *models.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ensureLoaded(ctx)

	if s.disposed {
		s.logger.Warn("Ignoring mutation on disposed cart store", slog.String("operation", op), slog.String("key", s.key))
		return s.cart.Clone()
	}

	revision := s.cart.Revision
	fn(s.cart)
	recomputeTotals(s.cart)
	s.cart.Revision = revision + 1
	s.cart.UpdatedAt = s.now().UTC()
	metrics.CartMutations.WithLabelValues(op).Inc()

	s.persist(ctx)

	return s.cart.Clone()
}

// recomputeTotals always folds over every line; totals are never adjusted
// incrementally.
func recomputeTotals(c *models.Cart) {
	items := 0
	price := decimal.Zero
	for _, line := range c.Lines {
		items += line.Quantity
		price = price.Add(line.LineTotal())
	}
	c.TotalItems = items
	c.TotalPrice = price
}

func (s *Store) freshCart() *models.Cart {
	return &models.Cart{
		ID:         s.newID(),
		Lines:      []models.CartLine{},
		TotalItems: 0,
		TotalPrice: decimal.Zero,
		UpdatedAt:  s.now().UTC(),
	}
}
