package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type VariantOption struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Variant overrides the product's price and image when set.
type Variant struct {
	ID      string           `json:"id"`
	SKU     string           `json:"sku"`
	Title   string           `json:"title"`
	Price   *decimal.Decimal `json:"price,omitempty"`
	Image   string           `json:"image,omitempty"`
	Options []VariantOption  `json:"options,omitempty"`
}

type Product struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Slug      string          `json:"slug"`
	SKU       string          `json:"sku"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image,omitempty"`
	Status    string          `json:"status"`
	Variants  []Variant       `json:"variants,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (p *Product) Variant(id string) (*Variant, bool) {
	for i := range p.Variants {
		if p.Variants[i].ID == id {
			return &p.Variants[i], true
		}
	}
	return nil, false
}

// PriceFor returns the variant price when the variant overrides it.
func (p *Product) PriceFor(v *Variant) decimal.Decimal {
	if v != nil && v.Price != nil {
		return *v.Price
	}
	return p.Price
}

func (p *Product) ImageFor(v *Variant) string {
	if v != nil && v.Image != "" {
		return v.Image
	}
	return p.Image
}

func (p *Product) SKUFor(v *Variant) string {
	if v != nil && v.SKU != "" {
		return v.SKU
	}
	return p.SKU
}

func (p *Product) IsActive() bool {
	return p.Status == "" || p.Status == "active"
}
