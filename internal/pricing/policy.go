// Package pricing computes checkout totals and validates coupons. It owns no
// state; every function is a pure computation over decimal amounts.
package pricing

import (
	"fmt"
	"strings"

	"github.com/aaravmahajanofficial/storefront/internal/config"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/shopspring/decimal"
)

// Policy holds the shipping and tax constants. Tax is charged on the subtotal
// before shipping and before any coupon discount.
type Policy struct {
	FreeShippingThreshold decimal.Decimal
	StandardShippingCost  decimal.Decimal
	TaxRate               decimal.Decimal
	Currency              string
}

func DefaultPolicy() Policy {
	return Policy{
		FreeShippingThreshold: decimal.RequireFromString("250.00"),
		StandardShippingCost:  decimal.RequireFromString("10.00"),
		TaxRate:               decimal.RequireFromString("0.20"),
		Currency:              "usd",
	}
}

func NewPolicy(cfg config.Pricing) (Policy, error) {
	threshold, err := decimal.NewFromString(cfg.FreeShippingThreshold)
	if err != nil {
		return Policy{}, fmt.Errorf("invalid free shipping threshold %q: %w", cfg.FreeShippingThreshold, err)
	}

	shipping, err := decimal.NewFromString(cfg.StandardShippingCost)
	if err != nil {
		return Policy{}, fmt.Errorf("invalid standard shipping cost %q: %w", cfg.StandardShippingCost, err)
	}

	rate, err := decimal.NewFromString(cfg.TaxRate)
	if err != nil {
		return Policy{}, fmt.Errorf("invalid tax rate %q: %w", cfg.TaxRate, err)
	}

	if threshold.IsNegative() || shipping.IsNegative() || rate.IsNegative() {
		return Policy{}, fmt.Errorf("pricing amounts must not be negative")
	}

	currency := strings.ToLower(strings.TrimSpace(cfg.Currency))
	if currency == "" {
		currency = "usd"
	}

	return Policy{
		FreeShippingThreshold: threshold,
		StandardShippingCost:  shipping,
		TaxRate:               rate,
		Currency:              currency,
	}, nil
}

// ComputeShipping is free only when the subtotal is strictly above the threshold.
func (p Policy) ComputeShipping(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThan(p.FreeShippingThreshold) {
		return decimal.Zero
	}
	return p.StandardShippingCost
}

func (p Policy) ComputeTax(subtotal decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(p.TaxRate)
}

// ComputeTotal never goes below zero.
func ComputeTotal(subtotal, shipping, tax, discount decimal.Decimal) decimal.Decimal {
	total := subtotal.Add(shipping).Add(tax).Sub(discount)
	if total.IsNegative() {
		return decimal.Zero
	}
	return total
}

func (p Policy) Summarize(subtotal, discount decimal.Decimal) models.CartSummary {
	shipping := p.ComputeShipping(subtotal)
	tax := p.ComputeTax(subtotal)

	return models.CartSummary{
		Subtotal: subtotal,
		Shipping: shipping,
		Tax:      tax,
		Discount: discount,
		Total:    ComputeTotal(subtotal, shipping, tax, discount),
		Currency: p.Currency,
	}
}
