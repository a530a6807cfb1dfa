package pricing

import (
	"fmt"
	"strings"
	"time"

	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/shopspring/decimal"
)

// Registry is a fixed, case-insensitive set of coupons.
type Registry struct {
	coupons map[string]models.Coupon
	now     func() time.Time
}

type RegistryOption func(*Registry)

func WithClock(now func() time.Time) RegistryOption {
	return func(r *Registry) {
		r.now = now
	}
}

func NewRegistry(coupons []models.Coupon, opts ...RegistryOption) *Registry {
	r := &Registry{
		coupons: make(map[string]models.Coupon, len(coupons)),
		now:     time.Now,
	}
	for _, c := range coupons {
		r.coupons[normalizeCode(c.Code)] = c
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (r *Registry) Lookup(code string) (models.Coupon, bool) {
	c, ok := r.coupons[normalizeCode(code)]
	return c, ok
}

// Validate runs the checks in order and stops at the first failure. The
// returned discount is rounded to cents.
func (r *Registry) Validate(code string, subtotal, shippingCost decimal.Decimal) models.CouponValidation {
	if strings.TrimSpace(code) == "" {
		return invalid("Please enter a coupon code")
	}

	coupon, ok := r.Lookup(code)
	if !ok {
		return invalid("Invalid coupon code")
	}

	if !coupon.Active {
		return invalid("This coupon is no longer active")
	}

	if coupon.ExpiresAt != nil && r.now().After(*coupon.ExpiresAt) {
		return invalid("This coupon has expired")
	}

	if coupon.MinPurchase != nil && subtotal.LessThan(*coupon.MinPurchase) {
		return invalid(fmt.Sprintf("Minimum purchase of %s required for this coupon", coupon.MinPurchase.StringFixed(2)))
	}

	discount := discountFor(coupon, subtotal, shippingCost).Round(2)

	return models.CouponValidation{
		Valid:          true,
		DiscountAmount: discount,
		Message:        fmt.Sprintf("Coupon applied: %s", coupon.Description),
		Coupon:         &coupon,
	}
}

func discountFor(c models.Coupon, subtotal, shippingCost decimal.Decimal) decimal.Decimal {
	switch c.Type {
	case models.CouponTypePercentage:
		d := subtotal.Mul(c.Value).Div(decimal.NewFromInt(100))
		if c.MaxDiscount != nil && d.GreaterThan(*c.MaxDiscount) {
			d = *c.MaxDiscount
		}
		return d
	case models.CouponTypeFixed:
		return decimal.Min(c.Value, subtotal)
	case models.CouponTypeFreeShipping:
		return shippingCost
	default:
		return decimal.Zero
	}
}

func invalid(message string) models.CouponValidation {
	return models.CouponValidation{Valid: false, DiscountAmount: decimal.Zero, Message: message}
}

func amount(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

// DefaultCoupons is the compiled-in coupon list the storefront ships with.
func DefaultCoupons() []models.Coupon {
	expired := time.Date(2024, time.September, 1, 0, 0, 0, 0, time.UTC)

	return []models.Coupon{
		{
			Code:        "WELCOME10",
			Type:        models.CouponTypePercentage,
			Value:       decimal.NewFromInt(10),
			Active:      true,
			Description: "10% off your order",
		},
		{
			Code:        "SAVE20",
			Type:        models.CouponTypePercentage,
			Value:       decimal.NewFromInt(20),
			MinPurchase: amount("100"),
			MaxDiscount: amount("50"),
			Active:      true,
			Description: "20% off orders over 100 (up to 50 off)",
		},
		{
			Code:        "FLAT15",
			Type:        models.CouponTypeFixed,
			Value:       decimal.NewFromInt(15),
			MinPurchase: amount("75"),
			Active:      true,
			Description: "15 off orders over 75",
		},
		{
			Code:        "FREESHIP",
			Type:        models.CouponTypeFreeShipping,
			Value:       decimal.Zero,
			MinPurchase: amount("50"),
			Active:      true,
			Description: "Free shipping on orders over 50",
		},
		{
			Code:        "SUMMER24",
			Type:        models.CouponTypePercentage,
			Value:       decimal.NewFromInt(25),
			Active:      true,
			ExpiresAt:   &expired,
			Description: "Summer sale 25% off",
		},
		{
			Code:        "VIP30",
			Type:        models.CouponTypePercentage,
			Value:       decimal.NewFromInt(30),
			Active:      false,
			Description: "VIP 30% off",
		},
	}
}
