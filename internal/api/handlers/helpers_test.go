package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aaravmahajanofficial/storefront/internal/cart"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/aaravmahajanofficial/storefront/internal/pricing"
	service "github.com/aaravmahajanofficial/storefront/internal/services"
	"github.com/aaravmahajanofficial/storefront/internal/storage"
	"github.com/aaravmahajanofficial/storefront/internal/testutils"
	"github.com/aaravmahajanofficial/storefront/internal/utils/response"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testSession = "session-1"

type mockLineResolver struct {
	mock.Mock
}

func (m *mockLineResolver) ResolveLine(ctx context.Context, productID, variantID string, quantity int) (cart.LineInput, error) {
	args := m.Called(ctx, productID, variantID, quantity)
	return args.Get(0).(cart.LineInput), args.Error(1)
}

type mockCartSyncer struct {
	mock.Mock
}

func (m *mockCartSyncer) Sync(ctx context.Context, snapshot *models.Cart) error {
	return m.Called(ctx, snapshot).Error(0)
}

type mockOrderPlacer struct {
	mock.Mock
}

func (m *mockOrderPlacer) PlaceOrder(ctx context.Context, store service.CheckoutCart, req *models.CheckoutRequest) (*models.OrderConfirmation, error) {
	args := m.Called(ctx, store, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.OrderConfirmation), args.Error(1)
}

type envelope[T any] struct {
	Success bool                    `json:"success"`
	Data    T                       `json:"data"`
	Error   *response.ErrorResponse `json:"error"`
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) envelope[T] {
	t.Helper()
	var env envelope[T]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), "body: %s", rec.Body.String())
	return env
}

func newSessions() *cart.Sessions {
	return cart.NewSessions(storage.NewMemoryStore(), "cart", 0, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newRegistry() *pricing.Registry {
	return pricing.NewRegistry(pricing.DefaultCoupons(), pricing.WithClock(func() time.Time {
		return time.Date(2026, time.March, 14, 0, 0, 0, 0, time.UTC)
	}))
}

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertAmount(t *testing.T, expected string, actual decimal.Decimal) {
	t.Helper()
	assert.True(t, price(expected).Equal(actual), "expected %s, got %s", expected, actual.String())
}

func teeLine(qty int) cart.LineInput {
	return cart.LineInput{
		ProductID:   "tee",
		VariantID:   "tee-m",
		ProductName: "Classic Tee",
		ProductSlug: "classic-tee",
		Quantity:    qty,
		UnitPrice:   price("29.99"),
	}
}

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	return testutils.CreateTestRequestWithSession(method, target, &buf, testSession)
}

func stringsReader(s string) io.Reader {
	return bytes.NewBufferString(s)
}
