package repository

import (
	"github.com/subkassa/autopay/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// savedPaymentMethodRepository implements the SavedPaymentMethodRepository interface
type savedPaymentMethodRepository struct {
	db *gorm.DB
}

// NewSavedPaymentMethodRepository creates a new saved payment method repository instance
func NewSavedPaymentMethodRepository(db *gorm.DB) SavedPaymentMethodRepository {
	return &savedPaymentMethodRepository{db: db}
}

// Create stores a saved payment method. The gateway token is unique, so a
// duplicate insert is a no-op and the already stored row is returned instead.
func (r *savedPaymentMethodRepository) Create(method *models.SavedPaymentMethod) (*models.SavedPaymentMethod, error) {
	res := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "payment_method_id"}},
		DoNothing: true,
	}).Create(method)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return r.GetByPaymentMethodID(method.PaymentMethodID)
	}
	return method, nil
}

// GetByID retrieves a saved payment method by its ID
func (r *savedPaymentMethodRepository) GetByID(id uint) (*models.SavedPaymentMethod, error) {
	var method models.SavedPaymentMethod
	err := r.db.First(&method, id).Error
	if err != nil {
		return nil, err
	}
	return &method, nil
}

// GetByPaymentMethodID retrieves a saved payment method by its gateway token
func (r *savedPaymentMethodRepository) GetByPaymentMethodID(paymentMethodID string) (*models.SavedPaymentMethod, error) {
	var method models.SavedPaymentMethod
	err := r.db.Where("payment_method_id = ?", paymentMethodID).First(&method).Error
	if err != nil {
		return nil, err
	}
	return &method, nil
}

// GetActiveByUser returns the active saved payment methods of a user, newest first
func (r *savedPaymentMethodRepository) GetActiveByUser(userID uint) ([]models.SavedPaymentMethod, error) {
	var methods []models.SavedPaymentMethod
	err := r.db.Where("user_id = ? AND is_active = ?", userID, true).
		Order("created_at DESC, id DESC").
		Find(&methods).Error
	return methods, err
}

// Deactivate soft-disables a saved payment method
func (r *savedPaymentMethodRepository) Deactivate(id uint) error {
	return r.db.Model(&models.SavedPaymentMethod{}).
		Where("id = ?", id).
		Update("is_active", false).Error
}

// DeactivateAllForUser soft-disables every active method of a user and
// reports how many rows were touched
func (r *savedPaymentMethodRepository) DeactivateAllForUser(userID uint) (int64, error) {
	res := r.db.Model(&models.SavedPaymentMethod{}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Update("is_active", false)
	return res.RowsAffected, res.Error
}
