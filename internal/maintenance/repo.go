package maintenance

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/balcao-pos/backend/pkg/db/models"
	pkgerrors "github.com/balcao-pos/backend/pkg/errors"
)

// Status is the advisory banner payload served unauthenticated.
type Status struct {
	Enabled  bool       `json:"enabled"`
	Message  string     `json:"message"`
	StartsAt *time.Time `json:"startsAt"`
	EndsAt   *time.Time `json:"endsAt"`
}

// Repository reads the maintenance window.
type Repository interface {
	Current(ctx context.Context) (*Status, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a maintenance repository backed by the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// Current returns the banner state. A missing row means no maintenance is
// planned, not an error.
func (r *repository) Current(ctx context.Context) (*Status, error) {
	var window models.MaintenanceWindow
	err := r.db.WithContext(ctx).Order("id asc").First(&window).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &Status{}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load maintenance window")
	}
	return &Status{
		Enabled:  window.Enabled,
		Message:  window.Message,
		StartsAt: window.StartsAt,
		EndsAt:   window.EndsAt,
	}, nil
}
