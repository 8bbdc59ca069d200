package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/balcao-pos/backend/pkg/enums"
)

// Merchant is one store operating a counter and a payment terminal.
type Merchant struct {
	ID             uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name           string         `gorm:"column:name;not null"`
	EnabledMethods pq.StringArray `gorm:"column:enabled_methods;type:text[];not null;default:ARRAY[]::text[]"`
	CreatedAt      time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

// MethodEnabled reports whether the merchant accepts the given method.
func (m *Merchant) MethodEnabled(method enums.PaymentMethod) bool {
	if m == nil {
		return false
	}
	for _, enabled := range m.EnabledMethods {
		if enabled == string(method) {
			return true
		}
	}
	return false
}
