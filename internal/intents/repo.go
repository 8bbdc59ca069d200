package intents

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/balcao-pos/backend/pkg/db/models"
	"github.com/balcao-pos/backend/pkg/enums"
	pkgerrors "github.com/balcao-pos/backend/pkg/errors"
)

// Repository persists payment intents. Every mutation after creation goes
// through a conditional update keyed on the pending status, which is what
// serializes racing terminal results and expiry sweeps at the database.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, intent *models.PaymentIntent) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.PaymentIntent, error)
	CompareAndTransition(ctx context.Context, id uuid.UUID, to enums.IntentStatus, failureReason *string) (bool, error)
	BindSale(ctx context.Context, id, saleID, printJobID uuid.UUID) error
	ExpireDue(ctx context.Context, now time.Time) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an intent repository backed by the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, intent *models.PaymentIntent) error {
	if intent == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "intent required")
	}
	if intent.ID == uuid.Nil {
		intent.ID = uuid.New()
	}
	for i := range intent.Items {
		if intent.Items[i].ID == uuid.Nil {
			intent.Items[i].ID = uuid.New()
		}
		intent.Items[i].IntentID = intent.ID
	}
	if err := r.db.WithContext(ctx).Create(intent).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create intent")
	}
	return nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.PaymentIntent, error) {
	var intent models.PaymentIntent
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ?", id).
		First(&intent).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "intent not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load intent")
	}
	return &intent, nil
}

// CompareAndTransition moves the intent from pending into a terminal status.
// It reports false without error when the row has already left pending, which
// callers treat as a duplicate delivery.
func (r *repository) CompareAndTransition(ctx context.Context, id uuid.UUID, to enums.IntentStatus, failureReason *string) (bool, error) {
	if !to.IsTerminal() {
		return false, pkgerrors.New(pkgerrors.CodeStateConflict, "target status is not terminal")
	}

	updates := map[string]any{
		"status":     to,
		"updated_at": time.Now().UTC(),
	}
	if failureReason != nil {
		updates["failure_reason"] = *failureReason
	}

	res := r.db.WithContext(ctx).
		Model(&models.PaymentIntent{}).
		Where("id = ? AND status = ?", id, enums.IntentStatusPending).
		Updates(updates)
	if res.Error != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "transition intent")
	}
	return res.RowsAffected > 0, nil
}

// BindSale attaches the sale and print job produced by finalize. Only valid
// inside the finalize transaction, after the transition to approved.
func (r *repository) BindSale(ctx context.Context, id, saleID, printJobID uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Model(&models.PaymentIntent{}).
		Where("id = ? AND status = ?", id, enums.IntentStatusApproved).
		Updates(map[string]any{
			"sale_id":      saleID,
			"print_job_id": printJobID,
		})
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "bind sale")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "intent is not approved")
	}
	return nil
}

// ExpireDue bulk-expires every pending intent past its expiry timestamp and
// returns how many rows moved. Intents that already left pending are never
// touched.
func (r *repository) ExpireDue(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.PaymentIntent{}).
		Where("status = ? AND expires_at <= ?", enums.IntentStatusPending, now).
		Updates(map[string]any{
			"status":     enums.IntentStatusExpired,
			"updated_at": now,
		})
	if res.Error != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "expire intents")
	}
	return res.RowsAffected, nil
}
