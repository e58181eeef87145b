package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// SavedPaymentMethod is a reusable gateway payment token bound to a user.
// Methods are never hard-deleted from the cabinet, only deactivated.
type SavedPaymentMethod struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	UserID          uint           `gorm:"index:idx_saved_methods_user_active;not null" json:"user_id"`
	PaymentMethodID string         `gorm:"type:varchar(100);uniqueIndex;not null" json:"payment_method_id"`
	Type            string         `gorm:"type:varchar(50);default:'bank_card'" json:"type"`
	CardFirstSix    string         `gorm:"type:varchar(6);default:null" json:"card_first_six"`
	CardLastFour    string         `gorm:"type:varchar(4);default:null" json:"card_last_four"`
	CardType        string         `gorm:"type:varchar(50);default:null" json:"card_type"`
	CardExpiryMonth string         `gorm:"type:varchar(2);default:null" json:"card_expiry_month"`
	CardExpiryYear  string         `gorm:"type:varchar(4);default:null" json:"card_expiry_year"`
	Title           string         `gorm:"type:varchar(150);default:null" json:"title"`
	IsActive        bool           `gorm:"index:idx_saved_methods_user_active;not null;default:true" json:"is_active"`
	SourcePaymentID *uint          `gorm:"default:null" json:"source_payment_id"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

// DisplayTitle returns the stored title or a masked card label like
// "Visa •• 4444" when no title was set.
func (m *SavedPaymentMethod) DisplayTitle() string {
	if m.Title != "" {
		return m.Title
	}
	if m.CardLastFour != "" {
		cardType := m.CardType
		if cardType == "" {
			cardType = "Card"
		}
		return fmt.Sprintf("%s •• %s", cardType, m.CardLastFour)
	}
	return m.Type
}
