package cart_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/aaravmahajanofficial/storefront/internal/cart"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockKV struct {
	mock.Mock
}

func (m *mockKV) Get(ctx context.Context, key string) (string, bool, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *mockKV) Set(ctx context.Context, key string, value string) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *mockKV) Remove(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *mockKV) Close() error {
	return nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("cart-%d", n)
	}
}

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func line(productID, variantID string, qty int, unitPrice string) cart.LineInput {
	return cart.LineInput{
		ProductID:   productID,
		VariantID:   variantID,
		ProductName: "Product " + productID,
		ProductSlug: "product-" + productID,
		Quantity:    qty,
		UnitPrice:   price(unitPrice),
	}
}

func assertAmount(t *testing.T, expected string, actual decimal.Decimal) {
	t.Helper()
	assert.True(t, price(expected).Equal(actual), "expected %s, got %s", expected, actual.String())
}

// assertTotalsConsistent checks the derived fields against a fresh fold.
func assertTotalsConsistent(t *testing.T, c *models.Cart) {
	t.Helper()
	items := 0
	total := decimal.Zero
	for _, l := range c.Lines {
		items += l.Quantity
		total = total.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	assert.Equal(t, items, c.TotalItems)
	assert.True(t, total.Equal(c.TotalPrice), "total price %s, expected %s", c.TotalPrice, total)
}

func assertSameLines(t *testing.T, expected, actual []models.CartLine) {
	t.Helper()
	if !assert.Len(t, actual, len(expected)) {
		return
	}
	for i := range expected {
		assert.Equal(t, expected[i].ProductID, actual[i].ProductID)
		assert.Equal(t, expected[i].VariantID, actual[i].VariantID)
		assert.Equal(t, expected[i].ProductName, actual[i].ProductName)
		assert.Equal(t, expected[i].ProductSlug, actual[i].ProductSlug)
		assert.Equal(t, expected[i].Quantity, actual[i].Quantity)
		assert.Equal(t, expected[i].Image, actual[i].Image)
		assert.Equal(t, expected[i].Options, actual[i].Options)
		assert.True(t, expected[i].UnitPrice.Equal(actual[i].UnitPrice))
	}
}
