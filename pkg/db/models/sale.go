package models

import (
	"time"

	"github.com/google/uuid"
)

// Sale is the completed-payment record created by finalize. At most one sale
// ever exists per intent.
type Sale struct {
	ID         uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	MerchantID uuid.UUID  `gorm:"column:merchant_id;type:uuid;not null"`
	IntentID   uuid.UUID  `gorm:"column:intent_id;type:uuid;not null;uniqueIndex"`
	TotalCents int        `gorm:"column:total_cents;not null"`
	Items      []SaleItem `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime"`
}

// SaleItem mirrors one payment intent snapshot line onto the sale.
type SaleItem struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SaleID         uuid.UUID `gorm:"column:sale_id;type:uuid;not null"`
	ProductID      uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	Qty            int       `gorm:"column:qty;not null"`
	UnitPriceCents int       `gorm:"column:unit_price_cents;not null"`
	TotalCents     int       `gorm:"column:total_cents;not null"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
}
