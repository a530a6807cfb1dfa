package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type CartOption struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// CartLine is one product+variant entry. Name, slug, price, image and options are
// a display snapshot taken when the line was added.
type CartLine struct {
	ProductID   string          `json:"product_id"`
	VariantID   string          `json:"variant_id,omitempty"`
	ProductName string          `json:"product_name"`
	ProductSlug string          `json:"product_slug"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Image       string          `json:"image,omitempty"`
	Options     []CartOption    `json:"options,omitempty"`
}

func (l CartLine) Matches(productID, variantID string) bool {
	return l.ProductID == productID && l.VariantID == variantID
}

func (l CartLine) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type CartMetadata struct {
	Notes string `json:"notes,omitempty"`
}

type Cart struct {
	ID             string           `json:"id"`
	Lines          []CartLine       `json:"lines"`
	TotalItems     int              `json:"total_items"`
	TotalPrice     decimal.Decimal  `json:"total_price"`
	CouponCode     string           `json:"coupon_code,omitempty"`
	CouponDiscount *decimal.Decimal `json:"coupon_discount,omitempty"`
	Metadata       CartMetadata     `json:"metadata"`
	// Revision goes up by one on every mutation of the store holding the cart.
	Revision  int64     `json:"revision"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// Clone returns a deep copy; callers may mutate it freely.
func (c *Cart) Clone() *Cart {
	out := *c
	out.Lines = make([]CartLine, len(c.Lines))
	for i, line := range c.Lines {
		out.Lines[i] = line
		if line.Options != nil {
			out.Lines[i].Options = append([]CartOption(nil), line.Options...)
		}
	}
	if c.CouponDiscount != nil {
		d := *c.CouponDiscount
		out.CouponDiscount = &d
	}
	return &out
}

type AddLineRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	VariantID string `json:"variant_id,omitempty"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

type UpdateQuantityRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	VariantID string `json:"variant_id,omitempty"`
	Quantity  int    `json:"quantity"`
}

type RemoveLineRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	VariantID string `json:"variant_id,omitempty"`
}

type ApplyCouponRequest struct {
	Code string `json:"code" validate:"required,max=64"`
}

type SetNoteRequest struct {
	Notes string `json:"notes" validate:"max=1000"`
}
