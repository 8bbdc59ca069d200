package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/balcao-pos/backend/pkg/enums"
)

// PaymentIntent is the authoritative record of one attempted electronic
// payment. Amount and item snapshot are immutable after creation; SaleID is
// set exactly when the intent reaches the approved status.
type PaymentIntent struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	MerchantID    uuid.UUID           `gorm:"column:merchant_id;type:uuid;not null"`
	SaleID        *uuid.UUID          `gorm:"column:sale_id;type:uuid"`
	PrintJobID    *uuid.UUID          `gorm:"column:print_job_id;type:uuid"`
	Method        enums.PaymentMethod `gorm:"column:method;type:text;not null"`
	Status        enums.IntentStatus  `gorm:"column:status;type:text;not null;default:'pending'"`
	AmountCents   int                 `gorm:"column:amount_cents;not null"`
	FailureReason *string             `gorm:"column:failure_reason"`
	Items         []PaymentIntentItem `gorm:"foreignKey:IntentID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
	ExpiresAt     time.Time           `gorm:"column:expires_at;not null"`
}

// PaymentIntentItem is one line of the immutable snapshot taken at intent
// creation, with the unit price resolved from the catalog at that moment.
type PaymentIntentItem struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	IntentID       uuid.UUID `gorm:"column:intent_id;type:uuid;not null"`
	ProductID      uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	Qty            int       `gorm:"column:qty;not null"`
	UnitPriceCents int       `gorm:"column:unit_price_cents;not null"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
}
