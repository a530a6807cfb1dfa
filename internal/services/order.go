package service

import (
	"context"
	"database/sql"
	stdErrors "errors"
	"log/slog"
	"strings"

	"github.com/aaravmahajanofficial/storefront/internal/api/middleware"
	"github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	repository "github.com/aaravmahajanofficial/storefront/internal/repositories"
)

// OrderService serves placed orders back to shoppers. There are no accounts,
// so an order is only returned to a caller who knows its number and the
// customer email it was placed with.
type OrderService struct {
	orderRepo repository.OrderRepository
}

func NewOrderService(orderRepo repository.OrderRepository) *OrderService {
	return &OrderService{orderRepo: orderRepo}
}

func (s *OrderService) GetOrderByNumber(ctx context.Context, orderNumber, email string) (*models.Order, error) {

	logger := middleware.LoggerFromContext(ctx).With(slog.String("orderNumber", orderNumber))

	orderNumber = strings.TrimSpace(orderNumber)
	email = strings.TrimSpace(email)

	if orderNumber == "" {
		return nil, errors.AddValidationError("order_number", "is required")
	}
	if email == "" {
		return nil, errors.AddValidationError("email", "is required")
	}

	order, err := s.orderRepo.GetOrderByNumber(ctx, orderNumber)
	if err != nil {
		if stdErrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFoundError("Order not found")
		}
		return nil, errors.DatabaseError("Failed to fetch order").WithError(err)
	}

	// A wrong email looks exactly like a missing order.
	if !strings.EqualFold(order.Customer.Email, email) {
		logger.Warn("Order lookup with a non-matching email")
		return nil, errors.NotFoundError("Order not found")
	}

	return order, nil
}
