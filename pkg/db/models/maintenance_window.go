package models

import "time"

// MaintenanceWindow backs the advisory maintenance banner. A single row is
// kept; the public endpoint reads it unauthenticated.
type MaintenanceWindow struct {
	ID        int        `gorm:"column:id;primaryKey"`
	Enabled   bool       `gorm:"column:enabled;not null;default:false"`
	Message   string     `gorm:"column:message;not null;default:''"`
	StartsAt  *time.Time `gorm:"column:starts_at"`
	EndsAt    *time.Time `gorm:"column:ends_at"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
