package repository

import (
	"github.com/subkassa/autopay/app/models"
	"gorm.io/gorm"
)

// tariffRepository implements the TariffRepository interface
type tariffRepository struct {
	db *gorm.DB
}

// NewTariffRepository creates a new tariff repository instance
func NewTariffRepository(db *gorm.DB) TariffRepository {
	return &tariffRepository{db: db}
}

// Create creates a new tariff in the database
func (r *tariffRepository) Create(tariff *models.Tariff) error {
	return r.db.Create(tariff).Error
}

// GetByID retrieves a tariff by its ID
func (r *tariffRepository) GetByID(id uint) (*models.Tariff, error) {
	var tariff models.Tariff
	err := r.db.First(&tariff, id).Error
	if err != nil {
		return nil, err
	}
	return &tariff, nil
}

// GetActive retrieves all tariffs that are currently on sale
func (r *tariffRepository) GetActive() ([]models.Tariff, error) {
	var tariffs []models.Tariff
	err := r.db.Where("is_active = ?", true).Order("price_kopeks ASC").Find(&tariffs).Error
	return tariffs, err
}
