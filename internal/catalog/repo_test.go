package catalog

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/balcao-pos/backend/pkg/db/models"
	pkgerrors "github.com/balcao-pos/backend/pkg/errors"
)

func setupCatalogTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	merchants := `
CREATE TABLE IF NOT EXISTS merchants (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  enabled_methods TEXT NOT NULL DEFAULT '{}',
  created_at DATETIME,
  updated_at DATETIME
);`
	products := `
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  merchant_id TEXT NOT NULL,
  sku TEXT NOT NULL,
  name TEXT NOT NULL,
  price TEXT NOT NULL,
  stock_qty INTEGER NOT NULL DEFAULT 0,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`
	for _, stmt := range []string{merchants, products} {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, merchantID uuid.UUID, name string, stock int, active bool) *models.Product {
	t.Helper()
	product := &models.Product{
		ID:         uuid.New(),
		MerchantID: merchantID,
		SKU:        "SKU-" + uuid.NewString()[:8],
		Name:       name,
		Price:      decimal.RequireFromString("3.50"),
		StockQty:   stock,
		IsActive:   active,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func TestFindMerchantNotFound(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)

	_, err := repo.FindMerchant(context.Background(), uuid.New())
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestListActiveProductsFiltersInactive(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)
	merchantID := uuid.New()

	seedProduct(t, db, merchantID, "Americano", 10, true)
	seedProduct(t, db, merchantID, "Batch brew", 5, false)
	seedProduct(t, db, uuid.New(), "Other merchant", 5, true)

	products, err := repo.ListActiveProducts(context.Background(), merchantID)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Americano", products[0].Name)
}

func TestDecrementStockConditional(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)
	product := seedProduct(t, db, uuid.New(), "Espresso", 3, true)

	require.NoError(t, repo.DecrementStock(context.Background(), product.ID, 2, false))

	var reloaded models.Product
	require.NoError(t, db.First(&reloaded, "id = ?", product.ID).Error)
	assert.Equal(t, 1, reloaded.StockQty)

	err := repo.DecrementStock(context.Background(), product.ID, 2, false)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeStock, typed.Code())

	require.NoError(t, db.First(&reloaded, "id = ?", product.ID).Error)
	assert.Equal(t, 1, reloaded.StockQty, "failed decrement must not change stock")
}

func TestDecrementStockAllowNegative(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)
	product := seedProduct(t, db, uuid.New(), "Espresso", 1, true)

	require.NoError(t, repo.DecrementStock(context.Background(), product.ID, 3, true))

	var reloaded models.Product
	require.NoError(t, db.First(&reloaded, "id = ?", product.ID).Error)
	assert.Equal(t, -2, reloaded.StockQty)
}

func TestDecrementStockUnknownProduct(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)

	err := repo.DecrementStock(context.Background(), uuid.New(), 1, true)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestDecrementStockRejectsNonPositiveQty(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)

	err := repo.DecrementStock(context.Background(), uuid.New(), 0, false)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}
