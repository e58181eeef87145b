package pricing

import (
	"errors"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/subkassa/autopay/app/models"
)

// TariffSource looks up the plan a subscription was sold on.
type TariffSource interface {
	GetByID(id uint) (*models.Tariff, error)
}

// Calculator resolves the renewal price of a subscription in kopeks.
type Calculator struct {
	tariffs            TariffSource
	defaultMonthKopeks int64
}

// NewCalculator builds a calculator with the configured fallback price for
// subscriptions that carry no tariff.
func NewCalculator(tariffs TariffSource, defaultMonthKopeks int64) *Calculator {
	return &Calculator{
		tariffs:            tariffs,
		defaultMonthKopeks: defaultMonthKopeks,
	}
}

// RenewalCost returns the amount to charge for renewing the subscription.
// Tariff price when the subscription has one, otherwise the configured
// 30-day fallback. Returns 0 when the price cannot be determined; a zero
// price is never charged, the caller skips the subscription instead.
func (c *Calculator) RenewalCost(sub *models.Subscription) int64 {
	if sub == nil {
		return 0
	}

	if sub.TariffID != nil {
		tariff, err := c.tariffs.GetByID(*sub.TariffID)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				log.Warnf("[Pricing] Tariff %d lookup failed for subscription %d: %v", *sub.TariffID, sub.ID, err)
			}
			return c.defaultMonthKopeks
		}
		return tariff.PriceKopeks
	}

	return c.defaultMonthKopeks
}
