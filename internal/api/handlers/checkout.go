package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/aaravmahajanofficial/storefront/internal/api/middleware"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	service "github.com/aaravmahajanofficial/storefront/internal/services"
	"github.com/aaravmahajanofficial/storefront/internal/utils"
	"github.com/aaravmahajanofficial/storefront/internal/utils/response"
	"github.com/go-playground/validator/v10"
)

type OrderPlacer interface {
	PlaceOrder(ctx context.Context, store service.CheckoutCart, req *models.CheckoutRequest) (*models.OrderConfirmation, error)
}

type CheckoutHandler struct {
	sessions  CartSessions
	checkout  OrderPlacer
	validator *validator.Validate
}

func NewCheckoutHandler(sessions CartSessions, checkout OrderPlacer) *CheckoutHandler {
	return &CheckoutHandler{sessions: sessions, checkout: checkout, validator: validator.New()}
}

func (h *CheckoutHandler) PlaceOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		store, ok := storeFor(w, r, h.sessions)
		if !ok {
			return
		}

		var req models.CheckoutRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid checkout input")
			return
		}

		confirmation, err := h.checkout.PlaceOrder(r.Context(), store, &req)
		if err != nil {
			logger.Error("Failed to place order", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Order placed", slog.String("orderNumber", confirmation.OrderNumber))
		response.Success(w, http.StatusCreated, confirmation)
	}
}
