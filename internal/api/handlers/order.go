package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/aaravmahajanofficial/storefront/internal/api/middleware"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/aaravmahajanofficial/storefront/internal/utils/response"
)

type OrderFinder interface {
	GetOrderByNumber(ctx context.Context, orderNumber, email string) (*models.Order, error)
}

type OrderHandler struct {
	orders OrderFinder
}

func NewOrderHandler(orders OrderFinder) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// GetOrder looks an order up by its number; the customer email is passed as
// the email query parameter.
func (h *OrderHandler) GetOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		orderNumber := r.PathValue("order_number")
		logger := middleware.LoggerFromContext(r.Context()).With(slog.String("orderNumber", orderNumber))

		order, err := h.orders.GetOrderByNumber(r.Context(), orderNumber, r.URL.Query().Get("email"))
		if err != nil {
			logger.Warn("Failed to get order", slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		logger.Info("Order retrieved successfully")
		response.Success(w, http.StatusOK, order)
	}
}
