package pricing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/subkassa/autopay/app/models"
)

type fakeTariffSource struct {
	tariffs map[uint]*models.Tariff
	err     error
}

func (f *fakeTariffSource) GetByID(id uint) (*models.Tariff, error) {
	if f.err != nil {
		return nil, f.err
	}
	tariff, ok := f.tariffs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return tariff, nil
}

func uintPtr(v uint) *uint {
	return &v
}

func TestRenewalCost(t *testing.T) {
	source := &fakeTariffSource{tariffs: map[uint]*models.Tariff{
		1: {ID: 1, Name: "Month", PriceKopeks: 29900},
		2: {ID: 2, Name: "Promo", PriceKopeks: 0},
	}}
	calc := NewCalculator(source, 19900)

	tests := []struct {
		name     string
		sub      *models.Subscription
		expected int64
	}{
		{name: "tariff price", sub: &models.Subscription{ID: 10, TariffID: uintPtr(1)}, expected: 29900},
		{name: "zero-priced tariff stays zero", sub: &models.Subscription{ID: 11, TariffID: uintPtr(2)}, expected: 0},
		{name: "no tariff falls back", sub: &models.Subscription{ID: 12}, expected: 19900},
		{name: "missing tariff falls back", sub: &models.Subscription{ID: 13, TariffID: uintPtr(99)}, expected: 19900},
		{name: "nil subscription", sub: nil, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, calc.RenewalCost(tt.sub))
		})
	}
}

func TestRenewalCostLookupError(t *testing.T) {
	source := &fakeTariffSource{err: errors.New("connection refused")}
	calc := NewCalculator(source, 19900)

	sub := &models.Subscription{ID: 20, TariffID: uintPtr(1)}
	assert.Equal(t, int64(19900), calc.RenewalCost(sub))
}
