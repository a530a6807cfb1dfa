package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/aaravmahajanofficial/storefront/internal/utils"
	"github.com/shopspring/decimal"
)

// ProductRepository is the catalog read side.
type ProductRepository interface {
	GetProductByID(ctx context.Context, id string) (*models.Product, error)
}

type productRepository struct {
	DB *sql.DB
}

func NewProductRepo(db *sql.DB) ProductRepository {
	return &productRepository{DB: db}
}

func (r *productRepository) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT id, name, slug, sku, price, image, status, created_at, updated_at
		FROM products
		WHERE id = $1
	`

	product := &models.Product{}

	err := r.DB.QueryRowContext(dbCtx, query, id).Scan(&product.ID, &product.Name, &product.Slug, &product.SKU, &product.Price, &product.Image, &product.Status, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("querying product: %w", err)
	}

	query = `
		SELECT id, sku, title, price, image, options
		FROM product_variants
		WHERE product_id = $1
		ORDER BY position
	`

	rows, err := r.DB.QueryContext(dbCtx, query, id)
	if err != nil {
		return nil, fmt.Errorf("querying product variants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			variant     models.Variant
			price       decimal.NullDecimal
			optionsJSON []byte
		)

		if err := rows.Scan(&variant.ID, &variant.SKU, &variant.Title, &price, &variant.Image, &optionsJSON); err != nil {
			return nil, fmt.Errorf("scanning product variant: %w", err)
		}

		if price.Valid {
			p := price.Decimal
			variant.Price = &p
		}

		if len(optionsJSON) > 0 {
			if err := json.Unmarshal(optionsJSON, &variant.Options); err != nil {
				return nil, fmt.Errorf("failed to unmarshal variant options: %w", err)
			}
		}

		product.Variants = append(product.Variants, variant)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating product variants: %w", err)
	}

	return product, nil
}
