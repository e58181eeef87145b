package recurring

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/subkassa/autopay/app/models"
	"github.com/subkassa/autopay/internal/pkg/gateway"
)

// ProcessRecurringCharges executes one full pass over every subscription due
// for renewal. It never returns an error: a selection failure is logged and
// zero stats come back, a failing subscription is counted and the pass
// continues with the next one.
func (s *Service) ProcessRecurringCharges(ctx context.Context) RunStats {
	var stats RunStats
	now := time.Now()

	log.Debug("[Recurring] Pass started")

	due, err := s.deps.Subscriptions.FindDueForAutopay(now)
	if err != nil {
		log.Errorf("[Recurring] Failed to select due subscriptions: %v", err)
		return stats
	}

	for i := range due {
		stats.Checked++
		outcome := s.processOneIsolated(ctx, &due[i], now)
		stats.Count(outcome)
	}

	if stats.HasActivity() {
		log.Infof("[Recurring] Pass finished: checked=%d charged=%d no_method=%d failed=%d skipped=%d",
			stats.Checked, stats.Charged, stats.NoMethod, stats.Failed, stats.Skipped)
	}

	return stats
}

// processOneIsolated shields the pass from a panicking subscription.
func (s *Service) processOneIsolated(ctx context.Context, sub *models.Subscription, now time.Time) (outcome Outcome) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("[Recurring] Panic while processing subscription %d: %v", sub.ID, r)
			outcome = OutcomeFailed
		}
	}()
	return s.processOne(ctx, sub, now)
}

// processOne runs the renewal state machine for a single subscription.
func (s *Service) processOne(ctx context.Context, sub *models.Subscription, now time.Time) Outcome {
	user := sub.User
	if user == nil || user.ID == 0 {
		log.Warnf("[Recurring] Subscription %d has no user, skipping", sub.ID)
		return OutcomeSkipped
	}
	if !user.IsActive() {
		log.Debugf("[Recurring] User %d is blocked, skipping subscription %d", user.ID, sub.ID)
		return OutcomeSkipped
	}

	methods, err := s.deps.Methods.GetActiveByUser(sub.UserID)
	if err != nil {
		log.Errorf("[Recurring] Failed to load payment methods for user %d: %v", sub.UserID, err)
		return OutcomeFailed
	}
	if len(methods) == 0 {
		s.notifyBestEffort(user.TelegramID, "no payment method", func() error {
			return s.deps.Notifier.NoPaymentMethod(user.TelegramID)
		})
		return OutcomeNoMethod
	}
	// Newest saved method wins.
	method := methods[0]

	amount := s.deps.Prices.RenewalCost(sub)
	if amount <= 0 {
		log.Infof("[Recurring] Subscription %d has no positive renewal price, skipping", sub.ID)
		return OutcomeSkipped
	}

	// Take a short-lived lock and re-read before charging so an overlapping
	// pass or a manual trigger cannot charge the same subscription twice.
	locked, err := s.deps.Locks.Acquire(sub.ID, s.cfg.ChargeLockTTL)
	if err != nil {
		log.Warnf("[Recurring] Charge lock unavailable for subscription %d, proceeding: %v", sub.ID, err)
	} else if !locked {
		log.Debugf("[Recurring] Subscription %d is locked by another pass, skipping", sub.ID)
		return OutcomeSkipped
	}

	fresh, err := s.deps.Subscriptions.GetByID(sub.ID)
	if err != nil {
		log.Errorf("[Recurring] Failed to re-read subscription %d: %v", sub.ID, err)
		s.releaseLock(sub.ID)
		return OutcomeFailed
	}
	if !fresh.DueForAutopay(now) {
		log.Debugf("[Recurring] Subscription %d no longer due, skipping", sub.ID)
		s.releaseLock(sub.ID)
		return OutcomeSkipped
	}

	result, chargeErr := s.charge(ctx, fresh, &method, amount)

	// The lock stays held after a charge attempt until its TTL expires, an
	// overlapping pass that already selected this row must not retry it.

	if chargeErr != nil || !result.Succeeded() {
		if chargeErr != nil {
			log.Errorf("[Recurring] Charge failed for subscription %d: %v", fresh.ID, chargeErr)
		} else {
			log.Warnf("[Recurring] Charge for subscription %d ended with status %s", fresh.ID, result.Status)
		}
		s.notifyBestEffort(user.TelegramID, "renewal failure", func() error {
			return s.deps.Notifier.RenewalFailure(user.TelegramID, amount)
		})
		return OutcomeFailed
	}

	s.extend(fresh)

	s.notifyBestEffort(user.TelegramID, "renewal success", func() error {
		return s.deps.Notifier.RenewalSuccess(user.TelegramID, amount)
	})

	log.Infof("[Recurring] Subscription %d renewed for user %d, charged %d kopeks", fresh.ID, user.ID, amount)
	return OutcomeCharged
}

// charge calls the gateway and records the attempt as a payment row.
func (s *Service) charge(ctx context.Context, sub *models.Subscription, method *models.SavedPaymentMethod, amount int64) (*gateway.ChargeResult, error) {
	metadata := map[string]string{
		"type":             "recurring_renewal",
		"subscription_id":  strconv.FormatUint(uint64(sub.ID), 10),
		"user_id":          strconv.FormatUint(uint64(sub.UserID), 10),
		"user_telegram_id": strconv.FormatInt(userTelegramID(sub), 10),
	}

	req := gateway.ChargeRequest{
		AmountKopeks:    amount,
		Currency:        "RUB",
		PaymentMethodID: method.PaymentMethodID,
		Description:     fmt.Sprintf("Автопродление подписки №%d", sub.ID),
		Metadata:        metadata,
	}

	result, err := s.deps.Gateway.CreateRecurringCharge(ctx, req)

	payment := models.Payment{
		UserID:               sub.UserID,
		AmountKopeks:         amount,
		Currency:             "RUB",
		Status:               models.PAYMENT_STATUS_FAILED,
		Description:          req.Description,
		PaymentMethodID:      method.PaymentMethodID,
		PaymentMethodSaved:   true,
		IsRecurring:          true,
		SavedPaymentMethodID: &method.ID,
	}
	if result != nil {
		payment.ExternalID = result.ID
		payment.Status = string(result.Status)
	}
	if raw, marshalErr := json.Marshal(metadata); marshalErr == nil {
		payment.MetadataJSON = string(raw)
	}

	if createErr := s.deps.Payments.Create(&payment); createErr != nil {
		log.Errorf("[Recurring] Failed to record payment for subscription %d: %v", sub.ID, createErr)
	}

	return result, err
}

// extend pushes the expiry forward by the plan duration after a successful
// charge. An extension failure is logged but the charge already happened, so
// the outcome stays charged.
func (s *Service) extend(sub *models.Subscription) {
	days := 30
	if sub.TariffID != nil {
		if tariff, err := s.deps.Tariffs.GetByID(*sub.TariffID); err == nil && tariff.DurationDays > 0 {
			days = tariff.DurationDays
		}
	}

	base := time.Now()
	if sub.ExpiresAt != nil && sub.ExpiresAt.After(base) {
		base = *sub.ExpiresAt
	}
	newExpiry := base.AddDate(0, 0, days)
	sub.ExpiresAt = &newExpiry

	if err := s.deps.Subscriptions.Update(sub); err != nil {
		log.Errorf("[Recurring] Failed to extend subscription %d after charge: %v", sub.ID, err)
	}
}

func (s *Service) releaseLock(subscriptionID uint) {
	if err := s.deps.Locks.Release(subscriptionID); err != nil {
		log.Warnf("[Recurring] Failed to release charge lock for subscription %d: %v", subscriptionID, err)
	}
}

func (s *Service) notifyBestEffort(telegramID int64, what string, fn func() error) {
	if err := fn(); err != nil {
		log.Warnf("[Recurring] Failed to send %s notification to %d: %v", what, telegramID, err)
	}
}

func userTelegramID(sub *models.Subscription) int64 {
	if sub.User != nil {
		return sub.User.TelegramID
	}
	return 0
}
