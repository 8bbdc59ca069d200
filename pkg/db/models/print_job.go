package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/balcao-pos/backend/pkg/enums"
)

// PrintJob is a queued receipt print, enqueued inside the finalize
// transaction so an approved sale always has one.
type PrintJob struct {
	ID        uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SaleID    uuid.UUID            `gorm:"column:sale_id;type:uuid;not null"`
	Status    enums.PrintJobStatus `gorm:"column:status;type:text;not null;default:'queued'"`
	CreatedAt time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
