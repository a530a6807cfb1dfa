package service

import (
	"context"

	"github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	repository "github.com/aaravmahajanofficial/storefront/internal/repositories"
)

// CartSyncService mirrors a cart snapshot into the catalog database, creating
// it on first sync and updating it afterwards.
type CartSyncService struct {
	cartRepo repository.CartRepository
}

func NewCartSyncService(cartRepo repository.CartRepository) *CartSyncService {
	return &CartSyncService{cartRepo: cartRepo}
}

func (s *CartSyncService) Sync(ctx context.Context, snapshot *models.Cart) error {

	if snapshot == nil || snapshot.ID == "" {
		return errors.ValidationError("Cart has no identifier")
	}

	if err := s.cartRepo.UpsertCart(ctx, snapshot); err != nil {
		return errors.DatabaseError("Failed to sync cart").WithError(err)
	}

	return nil
}
