package handlers

import (
	"context"
	"html"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aaravmahajanofficial/storefront/internal/api/middleware"
	"github.com/aaravmahajanofficial/storefront/internal/cart"
	"github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/aaravmahajanofficial/storefront/internal/pricing"
	"github.com/aaravmahajanofficial/storefront/internal/utils"
	"github.com/aaravmahajanofficial/storefront/internal/utils/response"
	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/shopspring/decimal"
)

const maxNotePasses = 5

// CartSessions returns the initialised cart store for a session.
type CartSessions interface {
	Get(ctx context.Context, sessionID string) *cart.Store
}

type LineResolver interface {
	ResolveLine(ctx context.Context, productID, variantID string, quantity int) (cart.LineInput, error)
}

type CartSyncer interface {
	Sync(ctx context.Context, snapshot *models.Cart) error
}

type CartHandler struct {
	sessions  CartSessions
	catalog   LineResolver
	syncer    CartSyncer
	coupons   *pricing.Registry
	policy    pricing.Policy
	sanitizer *bluemonday.Policy
	validator *validator.Validate
}

type CouponAppliedResponse struct {
	Cart       *models.Cart            `json:"cart"`
	Validation models.CouponValidation `json:"validation"`
}

func NewCartHandler(sessions CartSessions, catalog LineResolver, syncer CartSyncer, coupons *pricing.Registry, policy pricing.Policy) *CartHandler {
	return &CartHandler{
		sessions:  sessions,
		catalog:   catalog,
		syncer:    syncer,
		coupons:   coupons,
		policy:    policy,
		sanitizer: bluemonday.StrictPolicy(),
		validator: validator.New(),
	}
}

// storeFor resolves the cart store of the request's session.
func storeFor(w http.ResponseWriter, r *http.Request, sessions CartSessions) (*cart.Store, bool) {
	sessionID, ok := middleware.SessionIDFromContext(r.Context())
	if !ok {
		middleware.LoggerFromContext(r.Context()).Warn("Request without cart session")
		response.Error(w, errors.UnauthorizedError("Cart session is required"))
		return nil, false
	}

	return sessions.Get(r.Context(), sessionID), true
}

// Summarize prices the cart. An applied coupon is re-validated against the
// current subtotal; a coupon that no longer applies contributes no discount.
func (h *CartHandler) Summarize(c *models.Cart) models.CartSummary {
	discount := decimal.Zero
	if c.CouponCode != "" {
		validation := h.coupons.Validate(c.CouponCode, c.TotalPrice, h.policy.ComputeShipping(c.TotalPrice))
		if validation.Valid {
			discount = validation.DiscountAmount
		}
	}

	summary := h.policy.Summarize(c.TotalPrice, discount)
	summary.CouponCode = c.CouponCode

	return summary
}

func (h *CartHandler) GetCart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		store, ok := storeFor(w, r, h.sessions)
		if !ok {
			return
		}

		response.Success(w, http.StatusOK, store.Snapshot())
	}
}

func (h *CartHandler) GetSummary() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		store, ok := storeFor(w, r, h.sessions)
		if !ok {
			return
		}

		response.Success(w, http.StatusOK, h.Summarize(store.Snapshot()))
	}
}

func (h *CartHandler) AddLine() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		store, ok := storeFor(w, r, h.sessions)
		if !ok {
			return
		}

		var req models.AddLineRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid add to cart input")
			return
		}

		line, err := h.catalog.ResolveLine(r.Context(), req.ProductID, req.VariantID, req.Quantity)
		if err != nil {
			logger.Warn("Failed to resolve cart line", slog.String("productId", req.ProductID), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		updated := store.AddLine(r.Context(), line)

		logger.Info("Line added to cart", slog.String("cartId", updated.ID), slog.String("productId", req.ProductID), slog.Int("quantity", req.Quantity))
		response.Success(w, http.StatusOK, updated)
	}
}

func (h *CartHandler) UpdateQuantity() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		store, ok := storeFor(w, r, h.sessions)
		if !ok {
			return
		}

		var req models.UpdateQuantityRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		response.Success(w, http.StatusOK, store.SetQuantity(r.Context(), req.ProductID, req.VariantID, req.Quantity))
	}
}

// RemoveLine takes the line key from the query string.
func (h *CartHandler) RemoveLine() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		store, ok := storeFor(w, r, h.sessions)
		if !ok {
			return
		}

		req := models.RemoveLineRequest{
			ProductID: r.URL.Query().Get("product_id"),
			VariantID: r.URL.Query().Get("variant_id"),
		}
		if err := utils.ValidateStruct(h.validator, &req); err != nil {
			response.Error(w, errors.ValidationError("product_id is required"))
			return
		}

		response.Success(w, http.StatusOK, store.RemoveLine(r.Context(), req.ProductID, req.VariantID))
	}
}

func (h *CartHandler) ClearCart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		store, ok := storeFor(w, r, h.sessions)
		if !ok {
			return
		}

		response.Success(w, http.StatusOK, store.Clear(r.Context()))
	}
}

func (h *CartHandler) ApplyCoupon() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		store, ok := storeFor(w, r, h.sessions)
		if !ok {
			return
		}

		var req models.ApplyCouponRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		snap := store.Snapshot()
		validation := h.coupons.Validate(req.Code, snap.TotalPrice, h.policy.ComputeShipping(snap.TotalPrice))
		if !validation.Valid {
			logger.Info("Coupon rejected", slog.String("code", req.Code), slog.String("reason", validation.Message))
			response.Error(w, errors.ValidationError(validation.Message))
			return
		}

		updated := store.ApplyCoupon(r.Context(), validation.Coupon.Code, validation.DiscountAmount)

		logger.Info("Coupon applied", slog.String("cartId", updated.ID), slog.String("code", validation.Coupon.Code))
		response.Success(w, http.StatusOK, CouponAppliedResponse{Cart: updated, Validation: validation})
	}
}

func (h *CartHandler) RemoveCoupon() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		store, ok := storeFor(w, r, h.sessions)
		if !ok {
			return
		}

		response.Success(w, http.StatusOK, store.RemoveCoupon(r.Context()))
	}
}

// SetNote stores the order note as plain text; any markup is stripped.
func (h *CartHandler) SetNote() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		store, ok := storeFor(w, r, h.sessions)
		if !ok {
			return
		}

		var req models.SetNoteRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		notes := strings.TrimSpace(h.sanitizeNote(req.Notes))

		response.Success(w, http.StatusOK, store.SetNote(r.Context(), notes))
	}
}

// sanitizeNote strips markup until unescaping no longer reveals any, then
// returns the plain text. Input that keeps changing after maxNotePasses stays
// escaped.
func (h *CartHandler) sanitizeNote(raw string) string {
	text := h.sanitizer.Sanitize(raw)
	for range maxNotePasses {
		next := h.sanitizer.Sanitize(html.UnescapeString(text))
		if next == text {
			return html.UnescapeString(text)
		}
		text = next
	}
	return text
}

func (h *CartHandler) SyncCart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		store, ok := storeFor(w, r, h.sessions)
		if !ok {
			return
		}

		snap := store.Snapshot()
		if err := h.syncer.Sync(r.Context(), snap); err != nil {
			logger.Error("Failed to sync cart", slog.String("cartId", snap.ID), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Cart synced", slog.String("cartId", snap.ID), slog.Int("items", snap.TotalItems))
		response.Success(w, http.StatusOK, snap)
	}
}
