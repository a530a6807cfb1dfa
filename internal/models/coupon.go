package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type CouponType string

const (
	CouponTypePercentage   CouponType = "percentage"
	CouponTypeFixed        CouponType = "fixed"
	CouponTypeFreeShipping CouponType = "free_shipping"
)

type Coupon struct {
	Code        string           `json:"code"`
	Type        CouponType       `json:"type"`
	Value       decimal.Decimal  `json:"value"`
	MinPurchase *decimal.Decimal `json:"min_purchase,omitempty"`
	MaxDiscount *decimal.Decimal `json:"max_discount,omitempty"`
	Active      bool             `json:"active"`
	ExpiresAt   *time.Time       `json:"expires_at,omitempty"`
	Description string           `json:"description"`
}

// CouponValidation is the result of checking a code; an invalid coupon is an
// expected outcome and is reported here rather than as an error.
type CouponValidation struct {
	Valid          bool            `json:"valid"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	Message        string          `json:"message"`
	Coupon         *Coupon         `json:"coupon,omitempty"`
}

type ValidateCouponRequest struct {
	Code     string          `json:"code"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Shipping decimal.Decimal `json:"shipping"`
}

type CartSummary struct {
	Subtotal   decimal.Decimal `json:"subtotal"`
	Shipping   decimal.Decimal `json:"shipping"`
	Tax        decimal.Decimal `json:"tax"`
	Discount   decimal.Decimal `json:"discount"`
	Total      decimal.Decimal `json:"total"`
	Currency   string          `json:"currency"`
	CouponCode string          `json:"coupon_code,omitempty"`
}
