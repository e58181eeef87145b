package repository

import (
	"github.com/subkassa/autopay/app/models"
	"gorm.io/gorm"
)

// paymentRepository implements the PaymentRepository interface
type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new payment repository instance
func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

// Create creates a new payment record in the database
func (r *paymentRepository) Create(payment *models.Payment) error {
	return r.db.Create(payment).Error
}

// GetByExternalID retrieves a payment by its gateway payment id
func (r *paymentRepository) GetByExternalID(externalID string) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.Where("external_id = ?", externalID).First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// UpdateStatus updates the status of the payment with the given gateway id
func (r *paymentRepository) UpdateStatus(externalID, status string) error {
	return r.db.Model(&models.Payment{}).
		Where("external_id = ?", externalID).
		Update("status", status).Error
}

// CountRecurringByUserID returns how many recurring charges were recorded for a user
func (r *paymentRepository) CountRecurringByUserID(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Payment{}).
		Where("user_id = ? AND is_recurring = ?", userID, true).
		Count(&count).Error
	return count, err
}
