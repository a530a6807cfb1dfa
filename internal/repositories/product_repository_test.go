package repository_test

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	repository "github.com/aaravmahajanofficial/storefront/internal/repositories"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupProductRepoTest(t *testing.T) (repository.ProductRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err, "Failed to create sqlmock")

	t.Cleanup(func() {
		db.Close()
	})

	repo := repository.NewProductRepo(db)
	require.NotNil(t, repo)

	return repo, mock
}

var (
	productColumns = []string{"id", "name", "slug", "sku", "price", "image", "status", "created_at", "updated_at"}
	variantColumns = []string{"id", "sku", "title", "price", "image", "options"}
)

func TestGetProductByID(t *testing.T) {
	now := time.Now()

	t.Run("Success - Product With Variants", func(t *testing.T) {
		// Arrange
		repo, mock := setupProductRepoTest(t)

		mock.ExpectQuery(`SELECT (.+) FROM products WHERE id = \$1`).
			WithArgs("tee").
			WillReturnRows(sqlmock.NewRows(productColumns).
				AddRow("tee", "Classic Tee", "classic-tee", "TEE", "29.99", "tee.png", "active", now, now))

		mock.ExpectQuery(`SELECT (.+) FROM product_variants WHERE product_id = \$1`).
			WithArgs("tee").
			WillReturnRows(sqlmock.NewRows(variantColumns).
				AddRow("tee-s", "TEE-S", "Small", nil, "", []byte(`[{"name":"Size","value":"S"}]`)).
				AddRow("tee-xl", "TEE-XL", "Extra Large", "34.99", "tee-xl.png", nil))

		// Act
		product, err := repo.GetProductByID(t.Context(), "tee")

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "Classic Tee", product.Name)
		assert.True(t, product.Price.Equal(decimal.RequireFromString("29.99")))
		require.Len(t, product.Variants, 2)

		assert.Nil(t, product.Variants[0].Price, "variant without its own price inherits the product price")
		require.Len(t, product.Variants[0].Options, 1)
		assert.Equal(t, "S", product.Variants[0].Options[0].Value)

		require.NotNil(t, product.Variants[1].Price)
		assert.True(t, product.Variants[1].Price.Equal(decimal.RequireFromString("34.99")))
		assert.Empty(t, product.Variants[1].Options)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Failure - Not Found", func(t *testing.T) {
		// Arrange
		repo, mock := setupProductRepoTest(t)

		mock.ExpectQuery(`SELECT (.+) FROM products WHERE id = \$1`).
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		// Act
		product, err := repo.GetProductByID(t.Context(), "missing")

		// Assert
		assert.Nil(t, product)
		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Failure - Variant Query Error", func(t *testing.T) {
		// Arrange
		repo, mock := setupProductRepoTest(t)
		dbErr := errors.New("connection reset")

		mock.ExpectQuery(`SELECT (.+) FROM products WHERE id = \$1`).
			WithArgs("tee").
			WillReturnRows(sqlmock.NewRows(productColumns).
				AddRow("tee", "Classic Tee", "classic-tee", "TEE", "29.99", "", "active", now, now))
		mock.ExpectQuery(`SELECT (.+) FROM product_variants`).
			WithArgs("tee").
			WillReturnError(dbErr)

		// Act
		product, err := repo.GetProductByID(t.Context(), "tee")

		// Assert
		assert.Nil(t, product)
		assert.ErrorIs(t, err, dbErr)
		assert.ErrorContains(t, err, "querying product variants")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
