package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a catalog listing. Price is the display price in whole currency
// units; amounts on intents and sales are always integer cents derived from
// it server-side.
type Product struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	MerchantID uuid.UUID       `gorm:"column:merchant_id;type:uuid;not null"`
	SKU        string          `gorm:"column:sku;not null"`
	Name       string          `gorm:"column:name;not null"`
	Price      decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null"`
	StockQty   int             `gorm:"column:stock_qty;not null;default:0"`
	IsActive   bool            `gorm:"column:is_active;not null;default:true"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// PriceCents converts the display price into integer minor units.
func (p *Product) PriceCents() int {
	if p == nil {
		return 0
	}
	return int(p.Price.Mul(decimal.NewFromInt(100)).Round(0).IntPart())
}
