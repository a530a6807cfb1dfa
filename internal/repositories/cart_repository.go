package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/aaravmahajanofficial/storefront/internal/utils"
)

// CartRepository mirrors carts server-side, keyed by cart id.
type CartRepository interface {
	UpsertCart(ctx context.Context, cart *models.Cart) error
}

type cartRepository struct {
	DB *sql.DB
}

func NewCartRepo(db *sql.DB) CartRepository {
	return &cartRepository{DB: db}
}

func (r *cartRepository) UpsertCart(ctx context.Context, cart *models.Cart) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	linesJSON, err := json.Marshal(cart.Lines)
	if err != nil {
		return fmt.Errorf("failed to marshal cart lines: %w", err)
	}

	query := `
		INSERT INTO carts (id, lines, total_items, total_price, coupon_code, coupon_discount, notes, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		ON CONFLICT (id) DO UPDATE
		SET lines = EXCLUDED.lines,
			total_items = EXCLUDED.total_items,
			total_price = EXCLUDED.total_price,
			coupon_code = EXCLUDED.coupon_code,
			coupon_discount = EXCLUDED.coupon_discount,
			notes = EXCLUDED.notes,
			updated_at = NOW()
	`

	var discount any
	if cart.CouponDiscount != nil {
		discount = *cart.CouponDiscount
	}

	_, err = r.DB.ExecContext(dbCtx, query, cart.ID, linesJSON, cart.TotalItems, cart.TotalPrice, cart.CouponCode, discount, cart.Metadata.Notes)
	if err != nil {
		return fmt.Errorf("failed to upsert cart: %w", err)
	}

	return nil
}
