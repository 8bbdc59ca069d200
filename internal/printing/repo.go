package printing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/balcao-pos/backend/pkg/db/models"
	"github.com/balcao-pos/backend/pkg/enums"
	pkgerrors "github.com/balcao-pos/backend/pkg/errors"
)

// Repository manages the receipt print queue.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Enqueue(ctx context.Context, saleID uuid.UUID) (*models.PrintJob, error)
	DeletePrintedBefore(ctx context.Context, cutoff time.Time) (int64, error)
	DeleteFailedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a print queue repository backed by the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Enqueue(ctx context.Context, saleID uuid.UUID) (*models.PrintJob, error) {
	job := &models.PrintJob{
		ID:     uuid.New(),
		SaleID: saleID,
		Status: enums.PrintJobStatusQueued,
	}
	if err := r.db.WithContext(ctx).Create(job).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "enqueue print job")
	}
	return job, nil
}

func (r *repository) DeletePrintedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", enums.PrintJobStatusPrinted, cutoff).
		Delete(&models.PrintJob{})
	if res.Error != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "delete printed jobs")
	}
	return res.RowsAffected, nil
}

func (r *repository) DeleteFailedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", enums.PrintJobStatusFailed, cutoff).
		Delete(&models.PrintJob{})
	if res.Error != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "delete failed jobs")
	}
	return res.RowsAffected, nil
}
