package handlers

import (
	"net/http"

	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/aaravmahajanofficial/storefront/internal/pricing"
	"github.com/aaravmahajanofficial/storefront/internal/utils"
	"github.com/aaravmahajanofficial/storefront/internal/utils/response"
	"github.com/go-playground/validator/v10"
)

type CouponHandler struct {
	coupons   *pricing.Registry
	validator *validator.Validate
}

func NewCouponHandler(coupons *pricing.Registry) *CouponHandler {
	return &CouponHandler{coupons: coupons, validator: validator.New()}
}

// ValidateCoupon always answers 200; an invalid coupon is reported in the body.
func (h *CouponHandler) ValidateCoupon() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		var req models.ValidateCouponRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		response.Success(w, http.StatusOK, h.coupons.Validate(req.Code, req.Subtotal, req.Shipping))
	}
}
