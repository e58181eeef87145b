package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	PAYMENT_STATUS_PENDING   = "pending"
	PAYMENT_STATUS_SUCCEEDED = "succeeded"
	PAYMENT_STATUS_CANCELED  = "canceled"
	PAYMENT_STATUS_FAILED    = "failed"
)

// Payment records a single gateway charge attempt, recurring or not.
type Payment struct {
	ID                   uint           `gorm:"primaryKey" json:"id"`
	UserID               uint           `gorm:"index;not null" json:"user_id"`
	ExternalID           string         `gorm:"type:varchar(100);index;default:null" json:"external_id"`
	AmountKopeks         int64          `gorm:"not null" json:"amount_kopeks"`
	Currency             string         `gorm:"type:varchar(10);default:'RUB'" json:"currency"`
	Status               string         `gorm:"type:varchar(50);default:'pending';index" json:"status"`
	Description          string         `gorm:"type:varchar(255);default:null" json:"description"`
	PaymentMethodID      string         `gorm:"type:varchar(100);default:null" json:"payment_method_id"`
	PaymentMethodSaved   bool           `gorm:"not null;default:false" json:"payment_method_saved"`
	IsRecurring          bool           `gorm:"not null;default:false" json:"is_recurring"`
	SavedPaymentMethodID *uint          `gorm:"index;default:null" json:"saved_payment_method_id"`
	MetadataJSON         string         `gorm:"type:text;default:null" json:"-"`
	CreatedAt            time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt            gorm.DeletedAt `gorm:"index" json:"-"`
}

// IsSucceeded reports whether the gateway confirmed the charge.
func (p *Payment) IsSucceeded() bool {
	return p.Status == PAYMENT_STATUS_SUCCEEDED
}
