package repository_test

import (
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	repository "github.com/aaravmahajanofficial/storefront/internal/repositories"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupOrderRepoTest(t *testing.T) (repository.OrderRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err, "Failed to create sqlmock")

	t.Cleanup(func() {
		db.Close()
	})

	repo := repository.NewOrderRepo(db)
	require.NotNil(t, repo)

	return repo, mock
}

func testOrder(now time.Time) *models.Order {
	return &models.Order{
		ID:          "order-1",
		OrderNumber: "ORD-20260101-ABCD1234",
		CartID:      "cart-1",
		Status:      models.OrderStatusPending,
		Customer:    models.CustomerInfo{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"},
		ShippingAddress: models.Address{
			Line1: "1 Analytical Way", City: "London", PostalCode: "N1 9GU", Country: "GB",
		},
		Lines: []models.OrderLine{
			{ProductID: "tee", VariantID: "tee-m", SKU: "TEE-M", Name: "Classic Tee", Quantity: 5,
				UnitPrice: decimal.RequireFromString("29.99"), LineTotal: decimal.RequireFromString("149.95"),
				Options: []models.CartOption{{Name: "Size", Value: "M"}}},
			{ProductID: "mug", SKU: "MUG", Name: "Mug", Quantity: 1,
				UnitPrice: decimal.RequireFromString("12.00"), LineTotal: decimal.RequireFromString("12.00")},
		},
		Payment: models.OrderPayment{
			Method:   "cash_on_delivery",
			Status:   models.PaymentStatusPending,
			Subtotal: decimal.RequireFromString("161.95"),
			Shipping: decimal.RequireFromString("10.00"),
			Tax:      decimal.RequireFromString("32.39"),
			Discount: decimal.Zero,
			Total:    decimal.RequireFromString("204.34"),
			Currency: "usd",
		},
		CreatedAt: now,
	}
}

func TestCreateOrder(t *testing.T) {
	now := time.Now()
	order := testOrder(now)

	customerJSON, err := json.Marshal(order.Customer)
	require.NoError(t, err)
	addressJSON, err := json.Marshal(order.ShippingAddress)
	require.NoError(t, err)

	expectOrderInsert := func(mock sqlmock.Sqlmock) *sqlmock.ExpectedExec {
		p := order.Payment
		return mock.ExpectExec(`INSERT INTO orders`).
			WithArgs(order.ID, order.OrderNumber, order.CartID, order.Status, customerJSON, addressJSON,
				p.Method, p.TransactionID, p.Status, p.Subtotal, p.Shipping, p.Tax, p.Discount, p.Total,
				p.Currency, order.CouponCode, order.Notes, order.CreatedAt)
	}

	t.Run("Success - Create Order", func(t *testing.T) {
		// Arrange
		repo, mock := setupOrderRepoTest(t)

		mock.ExpectBegin()
		expectOrderInsert(mock).WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec(`INSERT INTO order_items`).
			WithArgs(order.ID, 0, "tee", "tee-m", "TEE-M", "Classic Tee", 5, "29.99", "149.95", []byte(`[{"name":"Size","value":"M"}]`)).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec(`INSERT INTO order_items`).
			WithArgs(order.ID, 1, "mug", "", "MUG", "Mug", 1, "12", "12", []byte(`null`)).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		// Act
		err := repo.CreateOrder(t.Context(), order)

		// Assert
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Failure - Order Insert Error", func(t *testing.T) {
		// Arrange
		repo, mock := setupOrderRepoTest(t)
		dbErr := errors.New("DB error on order insert")

		mock.ExpectBegin()
		expectOrderInsert(mock).WillReturnError(dbErr)
		mock.ExpectRollback()

		// Act
		err := repo.CreateOrder(t.Context(), order)

		// Assert
		require.Error(t, err)
		assert.ErrorContains(t, err, "failed to insert order")
		assert.ErrorIs(t, err, dbErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Failure - Item Insert Error Rolls Back", func(t *testing.T) {
		// Arrange
		repo, mock := setupOrderRepoTest(t)
		dbErr := errors.New("DB error on item insert")

		mock.ExpectBegin()
		expectOrderInsert(mock).WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec(`INSERT INTO order_items`).WillReturnError(dbErr)
		mock.ExpectRollback()

		// Act
		err := repo.CreateOrder(t.Context(), order)

		// Assert
		require.Error(t, err)
		assert.ErrorContains(t, err, "failed to insert an order item")
		assert.ErrorIs(t, err, dbErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Failure - Begin Error", func(t *testing.T) {
		// Arrange
		repo, mock := setupOrderRepoTest(t)
		mock.ExpectBegin().WillReturnError(sql.ErrConnDone)

		// Act
		err := repo.CreateOrder(t.Context(), order)

		// Assert
		assert.ErrorIs(t, err, sql.ErrConnDone)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetOrderByNumber(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	order := testOrder(now)

	customerJSON, err := json.Marshal(order.Customer)
	require.NoError(t, err)
	addressJSON, err := json.Marshal(order.ShippingAddress)
	require.NoError(t, err)

	orderColumns := []string{"id", "order_number", "cart_id", "status", "customer", "shipping_address",
		"payment_method", "transaction_id", "payment_status", "subtotal", "shipping", "tax", "discount", "total",
		"currency", "coupon_code", "notes", "created_at"}
	itemColumns := []string{"product_id", "variant_id", "sku", "name", "quantity", "unit_price", "line_total", "options"}

	t.Run("Success - Order With Lines", func(t *testing.T) {
		// Arrange
		repo, mock := setupOrderRepoTest(t)

		mock.ExpectQuery(`SELECT (.+) FROM orders WHERE order_number = \$1`).
			WithArgs(order.OrderNumber).
			WillReturnRows(sqlmock.NewRows(orderColumns).AddRow(
				order.ID, order.OrderNumber, order.CartID, "pending", customerJSON, addressJSON,
				"cash_on_delivery", "", "pending", "161.95", "10.00", "32.39", "0", "204.34",
				"usd", "", "", now))
		mock.ExpectQuery(`SELECT (.+) FROM order_items WHERE order_id = \$1`).
			WithArgs(order.ID).
			WillReturnRows(sqlmock.NewRows(itemColumns).
				AddRow("tee", "tee-m", "TEE-M", "Classic Tee", 5, "29.99", "149.95", []byte(`[{"name":"Size","value":"M"}]`)).
				AddRow("mug", "", "MUG", "Mug", 1, "12.00", "12.00", nil))

		// Act
		got, err := repo.GetOrderByNumber(t.Context(), order.OrderNumber)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, order.ID, got.ID)
		assert.Equal(t, models.OrderStatusPending, got.Status)
		assert.Equal(t, order.Customer, got.Customer)
		assert.Equal(t, order.ShippingAddress, got.ShippingAddress)
		assert.True(t, got.Payment.Total.Equal(order.Payment.Total))
		require.Len(t, got.Lines, 2)
		assert.Equal(t, "TEE-M", got.Lines[0].SKU)
		assert.True(t, got.Lines[0].LineTotal.Equal(decimal.RequireFromString("149.95")))
		assert.Equal(t, []models.CartOption{{Name: "Size", Value: "M"}}, got.Lines[0].Options)
		assert.Nil(t, got.Lines[1].Options)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Failure - Not Found", func(t *testing.T) {
		// Arrange
		repo, mock := setupOrderRepoTest(t)
		mock.ExpectQuery(`SELECT (.+) FROM orders`).WithArgs("ORD-missing").WillReturnError(sql.ErrNoRows)

		// Act
		got, err := repo.GetOrderByNumber(t.Context(), "ORD-missing")

		// Assert
		assert.Nil(t, got)
		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
