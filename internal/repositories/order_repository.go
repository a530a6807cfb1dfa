package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/aaravmahajanofficial/storefront/internal/utils"
)

// OrderRepository is the order write side.
type OrderRepository interface {
	CreateOrder(ctx context.Context, order *models.Order) error
	GetOrderByNumber(ctx context.Context, orderNumber string) (*models.Order, error)
}

type orderRepository struct {
	DB *sql.DB
}

func NewOrderRepo(db *sql.DB) OrderRepository {
	return &orderRepository{DB: db}
}

// CreateOrder writes the order and its lines in one transaction.
func (r *orderRepository) CreateOrder(ctx context.Context, order *models.Order) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	customerJSON, err := json.Marshal(order.Customer)
	if err != nil {
		return fmt.Errorf("failed to marshal customer: %w", err)
	}

	addressJSON, err := json.Marshal(order.ShippingAddress)
	if err != nil {
		return fmt.Errorf("failed to marshal shipping address: %w", err)
	}

	tx, err := r.DB.BeginTx(dbCtx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	query := `
		INSERT INTO orders (id, order_number, cart_id, status, customer, shipping_address,
			payment_method, transaction_id, payment_status, subtotal, shipping, tax, discount, total,
			currency, coupon_code, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`

	p := order.Payment
	_, err = tx.ExecContext(dbCtx, query,
		order.ID, order.OrderNumber, order.CartID, order.Status, customerJSON, addressJSON,
		p.Method, p.TransactionID, p.Status, p.Subtotal, p.Shipping, p.Tax, p.Discount, p.Total,
		p.Currency, order.CouponCode, order.Notes, order.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	itemQuery := `
		INSERT INTO order_items (order_id, position, product_id, variant_id, sku, name, quantity, unit_price, line_total, options)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	for i, line := range order.Lines {
		optionsJSON, err := json.Marshal(line.Options)
		if err != nil {
			return fmt.Errorf("failed to marshal line options: %w", err)
		}

		_, err = tx.ExecContext(dbCtx, itemQuery,
			order.ID, i, line.ProductID, line.VariantID, line.SKU, line.Name, line.Quantity, line.UnitPrice, line.LineTotal, optionsJSON,
		)
		if err != nil {
			return fmt.Errorf("failed to insert an order item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit order: %w", err)
	}

	return nil
}

func (r *orderRepository) GetOrderByNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT id, order_number, cart_id, status, customer, shipping_address,
			payment_method, transaction_id, payment_status, subtotal, shipping, tax, discount, total,
			currency, coupon_code, notes, created_at
		FROM orders
		WHERE order_number = $1
	`

	order := &models.Order{}
	p := &order.Payment

	var customerJSON, addressJSON []byte

	err := r.DB.QueryRowContext(dbCtx, query, orderNumber).Scan(
		&order.ID, &order.OrderNumber, &order.CartID, &order.Status, &customerJSON, &addressJSON,
		&p.Method, &p.TransactionID, &p.Status, &p.Subtotal, &p.Shipping, &p.Tax, &p.Discount, &p.Total,
		&p.Currency, &order.CouponCode, &order.Notes, &order.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get the order: %w", err)
	}

	if err := json.Unmarshal(customerJSON, &order.Customer); err != nil {
		return nil, fmt.Errorf("failed to unmarshal customer: %w", err)
	}

	if err := json.Unmarshal(addressJSON, &order.ShippingAddress); err != nil {
		return nil, fmt.Errorf("failed to unmarshal shipping address: %w", err)
	}

	itemQuery := `
		SELECT product_id, variant_id, sku, name, quantity, unit_price, line_total, options
		FROM order_items
		WHERE order_id = $1
		ORDER BY position
	`

	rows, err := r.DB.QueryContext(dbCtx, itemQuery, order.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get the order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var line models.OrderLine
		var optionsJSON []byte

		if err := rows.Scan(&line.ProductID, &line.VariantID, &line.SKU, &line.Name, &line.Quantity, &line.UnitPrice, &line.LineTotal, &optionsJSON); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}

		if len(optionsJSON) > 0 {
			if err := json.Unmarshal(optionsJSON, &line.Options); err != nil {
				return nil, fmt.Errorf("failed to unmarshal line options: %w", err)
			}
		}

		order.Lines = append(order.Lines, line)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate order items: %w", err)
	}

	return order, nil
}
