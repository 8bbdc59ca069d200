package sales

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgdb "github.com/balcao-pos/backend/pkg/db"
	"github.com/balcao-pos/backend/pkg/db/models"
	pkgerrors "github.com/balcao-pos/backend/pkg/errors"
)

// Repository persists finalized sales. Sales are only ever written inside the
// finalize transaction.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, sale *models.Sale) error
	FindByIntentID(ctx context.Context, intentID uuid.UUID) (*models.Sale, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a sales repository backed by the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, sale *models.Sale) error {
	if sale == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "sale required")
	}
	if sale.ID == uuid.Nil {
		sale.ID = uuid.New()
	}
	for i := range sale.Items {
		if sale.Items[i].ID == uuid.Nil {
			sale.Items[i].ID = uuid.New()
		}
		sale.Items[i].SaleID = sale.ID
	}
	if err := r.db.WithContext(ctx).Create(sale).Error; err != nil {
		if pkgdb.IsUniqueViolation(err, "intent_id") {
			return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "sale already recorded for intent")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create sale")
	}
	return nil
}

func (r *repository) FindByIntentID(ctx context.Context, intentID uuid.UUID) (*models.Sale, error) {
	var sale models.Sale
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("intent_id = ?", intentID).
		First(&sale).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "sale not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load sale")
	}
	return &sale, nil
}
