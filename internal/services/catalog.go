package service

import (
	"context"
	"database/sql"
	stdErrors "errors"

	"github.com/aaravmahajanofficial/storefront/internal/cart"
	"github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	repository "github.com/aaravmahajanofficial/storefront/internal/repositories"
)

type CatalogService struct {
	productRepo repository.ProductRepository
}

func NewCatalogService(productRepo repository.ProductRepository) *CatalogService {
	return &CatalogService{productRepo: productRepo}
}

// ResolveLine builds the display snapshot for an add-to-cart request from the
// catalog, applying the variant's price and image overrides.
func (s *CatalogService) ResolveLine(ctx context.Context, productID, variantID string, quantity int) (cart.LineInput, error) {

	if quantity < 1 {
		return cart.LineInput{}, errors.ValidationError("Quantity must be at least 1")
	}

	product, variant, err := s.resolve(ctx, productID, variantID)
	if err != nil {
		return cart.LineInput{}, err
	}

	var options []models.CartOption
	if variant != nil {
		for _, o := range variant.Options {
			options = append(options, models.CartOption{Name: o.Name, Value: o.Value})
		}
	}

	return cart.LineInput{
		ProductID:   product.ID,
		VariantID:   variantID,
		ProductName: product.Name,
		ProductSlug: product.Slug,
		Quantity:    quantity,
		UnitPrice:   product.PriceFor(variant),
		Image:       product.ImageFor(variant),
		Options:     options,
	}, nil
}

func (s *CatalogService) resolve(ctx context.Context, productID, variantID string) (*models.Product, *models.Variant, error) {

	product, err := s.productRepo.GetProductByID(ctx, productID)
	if err != nil {
		if stdErrors.Is(err, sql.ErrNoRows) {
			return nil, nil, errors.NotFoundError("Product not found: " + productID).WithError(err)
		}
		return nil, nil, errors.DatabaseError("Failed to fetch product").WithError(err)
	}

	if !product.IsActive() {
		return nil, nil, errors.ValidationError("Product is no longer available: " + product.Name)
	}

	if variantID == "" {
		if len(product.Variants) > 0 {
			return nil, nil, errors.ValidationError("Please select a variant for " + product.Name)
		}
		return product, nil, nil
	}

	variant, ok := product.Variant(variantID)
	if !ok {
		return nil, nil, errors.NotFoundError("Variant not found: " + variantID)
	}

	return product, variant, nil
}
