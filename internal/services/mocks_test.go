package service_test

import (
	"context"
	"io"
	"log/slog"

	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type mockProductRepo struct {
	mock.Mock
}

func (m *mockProductRepo) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

type mockOrderRepo struct {
	mock.Mock
}

func (m *mockOrderRepo) CreateOrder(ctx context.Context, order *models.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *mockOrderRepo) GetOrderByNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	args := m.Called(ctx, orderNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

type mockCartRepo struct {
	mock.Mock
}

func (m *mockCartRepo) UpsertCart(ctx context.Context, cart *models.Cart) error {
	args := m.Called(ctx, cart)
	return args.Error(0)
}

type mockPaymentGateway struct {
	mock.Mock
}

func (m *mockPaymentGateway) CapturePayment(ctx context.Context, req models.PaymentCapture) (*models.PaymentReceipt, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PaymentReceipt), args.Error(1)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) SendOrderConfirmation(ctx context.Context, order *models.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func teeProduct() *models.Product {
	xl := price("34.99")
	return &models.Product{
		ID:     "tee",
		Name:   "Classic Tee",
		Slug:   "classic-tee",
		SKU:    "TEE",
		Price:  price("29.99"),
		Image:  "tee.png",
		Status: "active",
		Variants: []models.Variant{
			{ID: "tee-m", SKU: "TEE-M", Title: "Medium", Options: []models.VariantOption{{Name: "Size", Value: "M"}}},
			{ID: "tee-xl", SKU: "TEE-XL", Title: "Extra Large", Price: &xl, Image: "tee-xl.png", Options: []models.VariantOption{{Name: "Size", Value: "XL"}}},
		},
	}
}

func mugProduct() *models.Product {
	return &models.Product{ID: "mug", Name: "Mug", Slug: "mug", SKU: "MUG", Price: price("12.00"), Status: "active"}
}
