package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/metrics"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/aaravmahajanofficial/storefront/internal/pricing"
	repository "github.com/aaravmahajanofficial/storefront/internal/repositories"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const PaymentMethodCard = "card"

// CheckoutCart is the part of the cart store that order assembly needs.
type CheckoutCart interface {
	Snapshot() *models.Cart
	ResetIfCurrent(ctx context.Context, ordered *models.Cart) bool
}

type PaymentGateway interface {
	CapturePayment(ctx context.Context, req models.PaymentCapture) (*models.PaymentReceipt, error)
}

type OrderNotifier interface {
	SendOrderConfirmation(ctx context.Context, order *models.Order) error
}

type CheckoutService struct {
	catalog   *CatalogService
	orderRepo repository.OrderRepository
	coupons   *pricing.Registry
	policy    pricing.Policy
	payments  PaymentGateway
	notifier  OrderNotifier
	logger    *slog.Logger
	now       func() time.Time
	newID     func() string
}

type CheckoutOption func(*CheckoutService)

// WithPaymentGateway enables card payments.
func WithPaymentGateway(g PaymentGateway) CheckoutOption {
	return func(s *CheckoutService) {
		s.payments = g
	}
}

func WithNotifier(n OrderNotifier) CheckoutOption {
	return func(s *CheckoutService) {
		s.notifier = n
	}
}

func WithCheckoutLogger(logger *slog.Logger) CheckoutOption {
	return func(s *CheckoutService) {
		s.logger = logger
	}
}

func WithCheckoutClock(now func() time.Time) CheckoutOption {
	return func(s *CheckoutService) {
		s.now = now
	}
}

func WithOrderIDGenerator(newID func() string) CheckoutOption {
	return func(s *CheckoutService) {
		s.newID = newID
	}
}

func NewCheckoutService(catalog *CatalogService, orderRepo repository.OrderRepository, coupons *pricing.Registry, policy pricing.Policy, opts ...CheckoutOption) *CheckoutService {
	s := &CheckoutService{
		catalog:   catalog,
		orderRepo: orderRepo,
		coupons:   coupons,
		policy:    policy,
		logger:    slog.Default(),
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PlaceOrder turns the live cart into a persisted order. The cart is only
// reset after the order write succeeded; lines added while the order was in
// flight are kept. On any failure the cart is left untouched.
func (s *CheckoutService) PlaceOrder(ctx context.Context, store CheckoutCart, req *models.CheckoutRequest) (*models.OrderConfirmation, error) {

	snap := store.Snapshot()
	if snap.IsEmpty() {
		metrics.OrdersPlaced.WithLabelValues("rejected").Inc()
		return nil, errors.ValidationError("Your cart is empty")
	}

	logger := s.logger.With(slog.String("cartId", snap.ID))

	lines, subtotal, err := s.resolveLines(ctx, snap, logger)
	if err != nil {
		metrics.OrdersPlaced.WithLabelValues("rejected").Inc()
		return nil, err
	}

	discount := decimal.Zero
	if snap.CouponCode != "" {
		validation := s.coupons.Validate(snap.CouponCode, subtotal, s.policy.ComputeShipping(subtotal))
		if !validation.Valid {
			metrics.OrdersPlaced.WithLabelValues("rejected").Inc()
			return nil, errors.ValidationError(validation.Message).WithDetail("coupon: " + snap.CouponCode)
		}
		discount = validation.DiscountAmount
	}

	summary := s.policy.Summarize(subtotal, discount)

	now := s.now().UTC()
	orderID := s.newID()

	order := &models.Order{
		ID:              orderID,
		OrderNumber:     orderNumber(now, orderID),
		CartID:          snap.ID,
		Status:          models.OrderStatusPending,
		Customer:        req.Customer,
		ShippingAddress: req.ShippingAddress,
		Lines:           lines,
		Payment: models.OrderPayment{
			Method:   req.PaymentMethod,
			Status:   models.PaymentStatusPending,
			Subtotal: summary.Subtotal,
			Shipping: summary.Shipping,
			Tax:      summary.Tax,
			Discount: summary.Discount,
			Total:    summary.Total,
			Currency: summary.Currency,
		},
		CouponCode: snap.CouponCode,
		Notes:      snap.Metadata.Notes,
		CreatedAt:  now,
	}

	if req.PaymentMethod == PaymentMethodCard && summary.Total.IsPositive() {
		if s.payments == nil {
			metrics.OrdersPlaced.WithLabelValues("payment_failed").Inc()
			return nil, errors.ThirdPartyError("Card payments are not available")
		}

		receipt, err := s.payments.CapturePayment(ctx, models.PaymentCapture{
			Amount:          summary.Total,
			Currency:        summary.Currency,
			Description:     "Order " + order.OrderNumber,
			PaymentMethodID: req.PaymentMethodID,
			IdempotencyKey:  order.ID,
		})
		if err != nil {
			metrics.OrdersPlaced.WithLabelValues("payment_failed").Inc()
			if appErr, ok := errors.IsAppError(err); ok {
				return nil, appErr
			}
			return nil, errors.ThirdPartyError("Payment could not be processed").WithError(err)
		}

		order.Payment.TransactionID = receipt.TransactionID
		order.Payment.Status = receipt.Status
		order.Status = models.OrderStatusConfirmed
	}

	if err := s.orderRepo.CreateOrder(ctx, order); err != nil {
		if order.Payment.TransactionID != "" {
			logger.Error("Order write failed after payment capture",
				slog.String("orderNumber", order.OrderNumber),
				slog.String("transactionId", order.Payment.TransactionID),
				slog.String("error", err.Error()))
			metrics.OrdersPlaced.WithLabelValues("payment_captured_order_failed").Inc()
			return nil, errors.PaymentCapturedOrderFailedError(order.Payment.TransactionID).WithError(err)
		}
		metrics.OrdersPlaced.WithLabelValues("write_failed").Inc()
		return nil, errors.DatabaseError("Failed to create order").WithError(err)
	}

	if !store.ResetIfCurrent(ctx, snap) {
		logger.Info("Cart changed while the order was submitted, kept lines that were not ordered", slog.String("orderNumber", order.OrderNumber))
	}

	if s.notifier != nil {
		if err := s.notifier.SendOrderConfirmation(ctx, order); err != nil {
			logger.Warn("Failed to send order confirmation", slog.String("orderNumber", order.OrderNumber), slog.String("error", err.Error()))
		}
	}

	metrics.OrdersPlaced.WithLabelValues("placed").Inc()
	logger.Info("Order placed", slog.String("orderNumber", order.OrderNumber), slog.String("total", summary.Total.StringFixed(2)))

	return &models.OrderConfirmation{
		OrderID:       order.ID,
		OrderNumber:   order.OrderNumber,
		Total:         summary.Total,
		Currency:      summary.Currency,
		TransactionID: order.Payment.TransactionID,
	}, nil
}

// resolveLines rebuilds every line from the catalog. The unit price comes from
// the catalog, never from the cart snapshot.
func (s *CheckoutService) resolveLines(ctx context.Context, snap *models.Cart, logger *slog.Logger) ([]models.OrderLine, decimal.Decimal, error) {

	lines := make([]models.OrderLine, 0, len(snap.Lines))
	subtotal := decimal.Zero

	for _, line := range snap.Lines {
		product, variant, err := s.catalog.resolve(ctx, line.ProductID, line.VariantID)
		if err != nil {
			return nil, decimal.Zero, err
		}

		unitPrice := product.PriceFor(variant)
		if !unitPrice.Equal(line.UnitPrice) {
			logger.Warn("Catalog price differs from cart price",
				slog.String("productId", line.ProductID),
				slog.String("variantId", line.VariantID),
				slog.String("cartPrice", line.UnitPrice.String()),
				slog.String("catalogPrice", unitPrice.String()))
		}

		name := product.Name
		if variant != nil && variant.Title != "" {
			name = product.Name + " - " + variant.Title
		}

		lineTotal := unitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
		subtotal = subtotal.Add(lineTotal)

		var options []models.CartOption
		if len(line.Options) > 0 {
			options = append(options, line.Options...)
		}

		lines = append(lines, models.OrderLine{
			ProductID: line.ProductID,
			VariantID: line.VariantID,
			SKU:       product.SKUFor(variant),
			Name:      name,
			Quantity:  line.Quantity,
			UnitPrice: unitPrice,
			LineTotal: lineTotal,
			Options:   options,
		})
	}

	return lines, subtotal, nil
}

// orderNumber is ORD-YYYYMMDD- followed by the first eight characters of the
// order id, upper-cased.
func orderNumber(at time.Time, orderID string) string {
	suffix := strings.ToUpper(strings.ReplaceAll(orderID, "-", ""))
	if len(suffix) > 8 {
		suffix = suffix[:8]
	}
	return fmt.Sprintf("ORD-%s-%s", at.Format("20060102"), suffix)
}
