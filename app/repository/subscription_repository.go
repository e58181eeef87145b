package repository

import (
	"time"

	"github.com/subkassa/autopay/app/models"
	"gorm.io/gorm"
)

// subscriptionRepository implements the SubscriptionRepository interface
type subscriptionRepository struct {
	db *gorm.DB
}

// NewSubscriptionRepository creates a new subscription repository instance
func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

// Create creates a new subscription in the database
func (r *subscriptionRepository) Create(sub *models.Subscription) error {
	return r.db.Create(sub).Error
}

// GetByID retrieves a subscription by its ID with the owning user loaded
func (r *subscriptionRepository) GetByID(id uint) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.Preload("User").First(&sub, id).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// GetActiveByUserID retrieves the active subscription of a user, if any
func (r *subscriptionRepository) GetActiveByUserID(userID uint) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.Where("user_id = ? AND status = ?", userID, models.SUBSCRIPTION_STATUS_ACTIVE).
		Order("expires_at DESC").First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// FindDueForAutopay returns active autopay subscriptions whose renewal window
// has opened at the given instant, users preloaded, soonest expiry first.
// The per-subscription lead window is applied in memory because it varies per row.
func (r *subscriptionRepository) FindDueForAutopay(now time.Time) ([]models.Subscription, error) {
	var candidates []models.Subscription
	err := r.db.Preload("User").
		Where("status = ? AND autopay_enabled = ? AND expires_at IS NOT NULL",
			models.SUBSCRIPTION_STATUS_ACTIVE, true).
		Order("expires_at ASC, id ASC").
		Find(&candidates).Error
	if err != nil {
		return nil, err
	}

	due := make([]models.Subscription, 0, len(candidates))
	for _, sub := range candidates {
		if sub.DueForAutopay(now) {
			due = append(due, sub)
		}
	}
	return due, nil
}

// Update updates an existing subscription in the database
func (r *subscriptionRepository) Update(sub *models.Subscription) error {
	return r.db.Save(sub).Error
}
