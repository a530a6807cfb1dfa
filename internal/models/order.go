package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
)

type Address struct {
	Line1      string `json:"line1" validate:"required"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city" validate:"required"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code" validate:"required"`
	Country    string `json:"country" validate:"required,iso3166_1_alpha2"`
}

type CustomerInfo struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone,omitempty"`
}

// OrderLine is resolved against the catalog at submit time, not copied from the cart.
type OrderLine struct {
	ProductID string          `json:"product_id"`
	VariantID string          `json:"variant_id,omitempty"`
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
	Options   []CartOption    `json:"options,omitempty"`
}

type OrderPayment struct {
	Method        string          `json:"method"`
	TransactionID string          `json:"transaction_id,omitempty"`
	Status        PaymentStatus   `json:"status"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Shipping      decimal.Decimal `json:"shipping"`
	Tax           decimal.Decimal `json:"tax"`
	Discount      decimal.Decimal `json:"discount"`
	Total         decimal.Decimal `json:"total"`
	Currency      string          `json:"currency"`
}

// Order is the draft assembled from a cart snapshot; it is never mutated after
// it has been submitted.
type Order struct {
	ID              string       `json:"id"`
	OrderNumber     string       `json:"order_number"`
	CartID          string       `json:"cart_id"`
	Status          OrderStatus  `json:"status"`
	Customer        CustomerInfo `json:"customer"`
	ShippingAddress Address      `json:"shipping_address"`
	Lines           []OrderLine  `json:"lines"`
	Payment         OrderPayment `json:"payment"`
	CouponCode      string       `json:"coupon_code,omitempty"`
	Notes           string       `json:"notes,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
}

type CheckoutRequest struct {
	Customer        CustomerInfo `json:"customer" validate:"required"`
	ShippingAddress Address      `json:"shipping_address" validate:"required"`
	PaymentMethod   string       `json:"payment_method" validate:"required,oneof=card cash_on_delivery"`
	PaymentMethodID string       `json:"payment_method_id,omitempty" validate:"required_if=PaymentMethod card"`
}

type OrderConfirmation struct {
	OrderID       string          `json:"order_id"`
	OrderNumber   string          `json:"order_number"`
	Total         decimal.Decimal `json:"total"`
	Currency      string          `json:"currency"`
	TransactionID string          `json:"transaction_id,omitempty"`
}
