package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	SUBSCRIPTION_STATUS_PENDING   = "pending"
	SUBSCRIPTION_STATUS_ACTIVE    = "active"
	SUBSCRIPTION_STATUS_EXPIRED   = "expired"
	SUBSCRIPTION_STATUS_CANCELLED = "cancelled"
)

// DefaultAutopayLeadDays is used when a subscription does not carry its own
// lead window. Overridden at startup from configuration.
var DefaultAutopayLeadDays = 3

type Subscription struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	UserID            uint           `gorm:"index;not null" json:"user_id"`
	User              *User          `gorm:"foreignKey:UserID" json:"-"`
	TariffID          *uint          `gorm:"index;default:null" json:"tariff_id"`
	Status            string         `gorm:"type:varchar(50);default:'pending';index" json:"status" validate:"oneof=pending active expired cancelled"`
	ExpiresAt         *time.Time     `gorm:"type:timestamp;default:null;index" json:"expires_at"`
	AutopayEnabled    bool           `gorm:"not null;default:false" json:"autopay_enabled"`
	AutopayDaysBefore int            `gorm:"not null;default:0" json:"autopay_days_before"`
	CreatedAt         time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`
}

// IsActive reports whether the subscription status is active
func (s *Subscription) IsActive() bool {
	return s.Status == SUBSCRIPTION_STATUS_ACTIVE
}

// LeadDays returns how many days before expiry the renewal charge may run.
func (s *Subscription) LeadDays() int {
	if s.AutopayDaysBefore > 0 {
		return s.AutopayDaysBefore
	}
	return DefaultAutopayLeadDays
}

// DueForAutopay reports whether the subscription should be charged at the
// given instant. The boundary is inclusive: a subscription becomes due the
// moment now reaches expires_at minus the lead window.
func (s *Subscription) DueForAutopay(now time.Time) bool {
	if !s.IsActive() || !s.AutopayEnabled || s.ExpiresAt == nil {
		return false
	}
	chargeFrom := s.ExpiresAt.AddDate(0, 0, -s.LeadDays())
	return !now.Before(chargeFrom)
}
