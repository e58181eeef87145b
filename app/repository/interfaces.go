package repository

import (
	"time"

	"github.com/subkassa/autopay/app/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByTelegramID(telegramID int64) (*models.User, error)
	GetByAPIToken(token string) (*models.User, error)
	Update(user *models.User) error
	Count() (int64, error)
}

// TariffRepository defines the interface for tariff-related database operations
type TariffRepository interface {
	Create(tariff *models.Tariff) error
	GetByID(id uint) (*models.Tariff, error)
	GetActive() ([]models.Tariff, error)
}

// SubscriptionRepository defines the interface for subscription-related database operations
type SubscriptionRepository interface {
	Create(sub *models.Subscription) error
	GetByID(id uint) (*models.Subscription, error)
	GetActiveByUserID(userID uint) (*models.Subscription, error)
	FindDueForAutopay(now time.Time) ([]models.Subscription, error)
	Update(sub *models.Subscription) error
}

// PaymentRepository defines the interface for payment-related database operations
type PaymentRepository interface {
	Create(payment *models.Payment) error
	GetByExternalID(externalID string) (*models.Payment, error)
	UpdateStatus(externalID, status string) error
	CountRecurringByUserID(userID uint) (int64, error)
}

// SavedPaymentMethodRepository defines the interface for saved payment method operations
type SavedPaymentMethodRepository interface {
	Create(method *models.SavedPaymentMethod) (*models.SavedPaymentMethod, error)
	GetByID(id uint) (*models.SavedPaymentMethod, error)
	GetByPaymentMethodID(paymentMethodID string) (*models.SavedPaymentMethod, error)
	GetActiveByUser(userID uint) ([]models.SavedPaymentMethod, error)
	Deactivate(id uint) error
	DeactivateAllForUser(userID uint) (int64, error)
}

// Repositories struct holds all repository instances
type Repositories struct {
	User               UserRepository
	Tariff             TariffRepository
	Subscription       SubscriptionRepository
	Payment            PaymentRepository
	SavedPaymentMethod SavedPaymentMethodRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:               NewUserRepository(db),
		Tariff:             NewTariffRepository(db),
		Subscription:       NewSubscriptionRepository(db),
		Payment:            NewPaymentRepository(db),
		SavedPaymentMethod: NewSavedPaymentMethodRepository(db),
	}
}
