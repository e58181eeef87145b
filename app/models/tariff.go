package models

import (
	"time"

	"gorm.io/gorm"
)

// Tariff is a sellable subscription plan. Prices are stored in kopeks.
type Tariff struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Name         string         `gorm:"type:varchar(150);not null" json:"name" validate:"required,max=150"`
	PriceKopeks  int64          `gorm:"not null;default:0" json:"price_kopeks"`
	DurationDays int            `gorm:"not null;default:30" json:"duration_days"`
	IsActive     bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}
