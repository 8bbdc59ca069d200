package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/balcao-pos/backend/pkg/db/models"
	pkgerrors "github.com/balcao-pos/backend/pkg/errors"
)

// Repository exposes the catalog reads and the stock mutation the payment
// protocol needs. Catalog CRUD itself lives elsewhere.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindMerchant(ctx context.Context, id uuid.UUID) (*models.Merchant, error)
	FindProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	ListActiveProducts(ctx context.Context, merchantID uuid.UUID) ([]models.Product, error)
	DecrementStock(ctx context.Context, productID uuid.UUID, qty int, allowNegative bool) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a catalog repository backed by the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindMerchant(ctx context.Context, id uuid.UUID) (*models.Merchant, error) {
	var merchant models.Merchant
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&merchant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "merchant not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load merchant")
	}
	return &merchant, nil
}

func (r *repository) FindProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return &product, nil
}

func (r *repository) ListActiveProducts(ctx context.Context, merchantID uuid.UUID) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Where("merchant_id = ? AND is_active = ?", merchantID, true).
		Order("name asc").
		Find(&products).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return products, nil
}

// DecrementStock applies one atomic stock decrement. Unless allowNegative is
// set, the update is conditioned on enough stock remaining and reports
// insufficient stock when the condition misses.
func (r *repository) DecrementStock(ctx context.Context, productID uuid.UUID, qty int, allowNegative bool) error {
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	query := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", productID)
	if !allowNegative {
		query = query.Where("stock_qty >= ?", qty)
	}

	res := query.UpdateColumn("stock_qty", gorm.Expr("stock_qty - ?", qty))
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "decrement stock")
	}
	if res.RowsAffected == 0 {
		if allowNegative {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.New(pkgerrors.CodeStock, "insufficient stock").
			WithDetails(map[string]any{"productId": productID, "qty": qty})
	}
	return nil
}
