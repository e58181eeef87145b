package recurring

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/subkassa/autopay/app/models"
	"github.com/subkassa/autopay/internal/pkg/gateway"
)

type fakeSubs struct {
	due     []models.Subscription
	fresh   map[uint]*models.Subscription
	findErr error
	getErr  error
	updated []models.Subscription
}

func (f *fakeSubs) FindDueForAutopay(time.Time) ([]models.Subscription, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.due, nil
}

func (f *fakeSubs) GetByID(id uint) (*models.Subscription, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if fresh, ok := f.fresh[id]; ok {
		sub := *fresh
		return &sub, nil
	}
	for i := range f.due {
		if f.due[i].ID == id {
			sub := f.due[i]
			return &sub, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeSubs) Update(sub *models.Subscription) error {
	f.updated = append(f.updated, *sub)
	return nil
}

type fakeMethods struct {
	methods map[uint][]models.SavedPaymentMethod
	err     error
	panics  bool
}

func (f *fakeMethods) GetActiveByUser(userID uint) ([]models.SavedPaymentMethod, error) {
	if f.panics {
		panic("methods source exploded")
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.methods[userID], nil
}

type fakeTariffs struct {
	tariffs map[uint]*models.Tariff
}

func (f *fakeTariffs) GetByID(id uint) (*models.Tariff, error) {
	if tariff, ok := f.tariffs[id]; ok {
		return tariff, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type fakePayments struct {
	created []models.Payment
	err     error
}

func (f *fakePayments) Create(payment *models.Payment) error {
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, *payment)
	return nil
}

type fakePrices struct {
	price    int64
	perSubID map[uint]int64
}

func (f *fakePrices) RenewalCost(sub *models.Subscription) int64 {
	if v, ok := f.perSubID[sub.ID]; ok {
		return v
	}
	return f.price
}

type fakeGateway struct {
	mu      sync.Mutex
	enabled bool
	result  *gateway.ChargeResult
	err     error
	calls   []gateway.ChargeRequest
}

func (f *fakeGateway) CreateRecurringCharge(_ context.Context, req gateway.ChargeRequest) (*gateway.ChargeResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req)
	return f.result, f.err
}

func (f *fakeGateway) Enabled() bool {
	return f.enabled
}

func (f *fakeGateway) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeNotifier struct {
	successes []int64
	failures  []int64
	noMethods []int64
	err       error
}

func (f *fakeNotifier) RenewalSuccess(telegramID int64, _ int64) error {
	f.successes = append(f.successes, telegramID)
	return f.err
}

func (f *fakeNotifier) RenewalFailure(telegramID int64, _ int64) error {
	f.failures = append(f.failures, telegramID)
	return f.err
}

func (f *fakeNotifier) NoPaymentMethod(telegramID int64) error {
	f.noMethods = append(f.noMethods, telegramID)
	return f.err
}

type fakeLocker struct {
	deny       bool
	acquireErr error
	acquired   []uint
	released   []uint
}

func (f *fakeLocker) Acquire(subscriptionID uint, _ time.Duration) (bool, error) {
	if f.acquireErr != nil {
		return false, f.acquireErr
	}
	if f.deny {
		return false, nil
	}
	f.acquired = append(f.acquired, subscriptionID)
	return true, nil
}

func (f *fakeLocker) Release(subscriptionID uint) error {
	f.released = append(f.released, subscriptionID)
	return nil
}

type testEnv struct {
	subs     *fakeSubs
	methods  *fakeMethods
	tariffs  *fakeTariffs
	payments *fakePayments
	prices   *fakePrices
	gateway  *fakeGateway
	notifier *fakeNotifier
	locks    *fakeLocker
	service  *Service
}

func dueSubscription(id, userID uint, telegramID int64) models.Subscription {
	expiry := time.Now().Add(24 * time.Hour)
	return models.Subscription{
		ID:             id,
		UserID:         userID,
		User:           &models.User{ID: userID, TelegramID: telegramID, Status: models.STATUS_ACTIVE},
		Status:         models.SUBSCRIPTION_STATUS_ACTIVE,
		ExpiresAt:      &expiry,
		AutopayEnabled: true,
	}
}

func savedMethod(id uint, token string) models.SavedPaymentMethod {
	return models.SavedPaymentMethod{ID: id, PaymentMethodID: token, IsActive: true}
}

func newTestEnv() *testEnv {
	env := &testEnv{
		subs:     &fakeSubs{},
		methods:  &fakeMethods{methods: map[uint][]models.SavedPaymentMethod{}},
		tariffs:  &fakeTariffs{tariffs: map[uint]*models.Tariff{}},
		payments: &fakePayments{},
		prices:   &fakePrices{price: 29900},
		gateway:  &fakeGateway{enabled: true, result: &gateway.ChargeResult{ID: "pay-1", Status: gateway.StatusSucceeded, Paid: true}},
		notifier: &fakeNotifier{},
		locks:    &fakeLocker{},
	}
	env.service = NewService(Config{
		Enabled:       true,
		CheckInterval: time.Hour,
		ChargeLockTTL: 5 * time.Minute,
	}, Deps{
		Subscriptions: env.subs,
		Methods:       env.methods,
		Tariffs:       env.tariffs,
		Payments:      env.payments,
		Prices:        env.prices,
		Gateway:       env.gateway,
		Notifier:      env.notifier,
		Locks:         env.locks,
	})
	return env
}

func TestProcessChargesDueSubscription(t *testing.T) {
	env := newTestEnv()
	env.subs.due = []models.Subscription{dueSubscription(1, 10, 555)}
	env.methods.methods[10] = []models.SavedPaymentMethod{savedMethod(7, "pm-new"), savedMethod(3, "pm-old")}

	stats := env.service.ProcessRecurringCharges(context.Background())

	assert.Equal(t, RunStats{Checked: 1, Charged: 1}, stats)

	// The newest saved method is the one charged.
	require.Len(t, env.gateway.calls, 1)
	assert.Equal(t, "pm-new", env.gateway.calls[0].PaymentMethodID)
	assert.Equal(t, int64(29900), env.gateway.calls[0].AmountKopeks)
	assert.Equal(t, "recurring_renewal", env.gateway.calls[0].Metadata["type"])
	assert.Equal(t, "1", env.gateway.calls[0].Metadata["subscription_id"])
	assert.Equal(t, "555", env.gateway.calls[0].Metadata["user_telegram_id"])

	// One payment row per attempt.
	require.Len(t, env.payments.created, 1)
	payment := env.payments.created[0]
	assert.Equal(t, uint(10), payment.UserID)
	assert.Equal(t, "pay-1", payment.ExternalID)
	assert.Equal(t, models.PAYMENT_STATUS_SUCCEEDED, payment.Status)
	assert.True(t, payment.IsRecurring)
	assert.True(t, payment.PaymentMethodSaved)
	require.NotNil(t, payment.SavedPaymentMethodID)
	assert.Equal(t, uint(7), *payment.SavedPaymentMethodID)

	// The expiry moved forward and the user was told.
	require.Len(t, env.subs.updated, 1)
	assert.True(t, env.subs.updated[0].ExpiresAt.After(time.Now().Add(29*24*time.Hour)))
	assert.Equal(t, []int64{555}, env.notifier.successes)
	assert.Empty(t, env.notifier.failures)
}

func TestProcessUsesTariffDurationForExtension(t *testing.T) {
	env := newTestEnv()
	tariffID := uint(2)
	sub := dueSubscription(1, 10, 555)
	sub.TariffID = &tariffID
	env.subs.due = []models.Subscription{sub}
	env.methods.methods[10] = []models.SavedPaymentMethod{savedMethod(7, "pm-new")}
	env.tariffs.tariffs[2] = &models.Tariff{ID: 2, DurationDays: 90, PriceKopeks: 79900}

	stats := env.service.ProcessRecurringCharges(context.Background())

	assert.Equal(t, 1, stats.Charged)
	require.Len(t, env.subs.updated, 1)
	assert.True(t, env.subs.updated[0].ExpiresAt.After(time.Now().Add(89*24*time.Hour)))
}

func TestProcessNoPaymentMethod(t *testing.T) {
	env := newTestEnv()
	env.subs.due = []models.Subscription{dueSubscription(1, 10, 555)}

	stats := env.service.ProcessRecurringCharges(context.Background())

	assert.Equal(t, RunStats{Checked: 1, NoMethod: 1}, stats)
	assert.Empty(t, env.gateway.calls)
	assert.Empty(t, env.payments.created)
	assert.Equal(t, []int64{555}, env.notifier.noMethods)
}

func TestProcessSkipsZeroPrice(t *testing.T) {
	env := newTestEnv()
	env.subs.due = []models.Subscription{dueSubscription(1, 10, 555)}
	env.methods.methods[10] = []models.SavedPaymentMethod{savedMethod(7, "pm-new")}
	env.prices.price = 0

	stats := env.service.ProcessRecurringCharges(context.Background())

	assert.Equal(t, RunStats{Checked: 1, Skipped: 1}, stats)
	assert.Empty(t, env.gateway.calls)
	assert.Empty(t, env.payments.created)
}

func TestProcessGatewayError(t *testing.T) {
	env := newTestEnv()
	env.subs.due = []models.Subscription{dueSubscription(1, 10, 555)}
	env.methods.methods[10] = []models.SavedPaymentMethod{savedMethod(7, "pm-new")}
	env.gateway.result = nil
	env.gateway.err = errors.New("gateway timeout")

	stats := env.service.ProcessRecurringCharges(context.Background())

	assert.Equal(t, RunStats{Checked: 1, Failed: 1}, stats)
	assert.Equal(t, []int64{555}, env.notifier.failures)
	assert.Empty(t, env.subs.updated)

	// The attempt is still recorded, marked failed.
	require.Len(t, env.payments.created, 1)
	assert.Equal(t, models.PAYMENT_STATUS_FAILED, env.payments.created[0].Status)
}

func TestProcessNonSucceededStatusIsFailure(t *testing.T) {
	env := newTestEnv()
	env.subs.due = []models.Subscription{dueSubscription(1, 10, 555)}
	env.methods.methods[10] = []models.SavedPaymentMethod{savedMethod(7, "pm-new")}
	env.gateway.result = &gateway.ChargeResult{ID: "pay-2", Status: gateway.StatusCanceled}

	stats := env.service.ProcessRecurringCharges(context.Background())

	assert.Equal(t, RunStats{Checked: 1, Failed: 1}, stats)
	assert.Equal(t, []int64{555}, env.notifier.failures)
	require.Len(t, env.payments.created, 1)
	assert.Equal(t, string(gateway.StatusCanceled), env.payments.created[0].Status)
}

func TestProcessPanicIsIsolated(t *testing.T) {
	env := newTestEnv()
	env.subs.due = []models.Subscription{dueSubscription(1, 10, 555)}
	env.methods.panics = true

	stats := env.service.ProcessRecurringCharges(context.Background())

	assert.Equal(t, RunStats{Checked: 1, Failed: 1}, stats)
}

func TestProcessContinuesAfterFailure(t *testing.T) {
	env := newTestEnv()
	env.subs.due = []models.Subscription{
		dueSubscription(1, 10, 555),
		dueSubscription(2, 20, 777),
	}
	// First user has no saved card, second charges fine.
	env.methods.methods[20] = []models.SavedPaymentMethod{savedMethod(8, "pm-20")}

	stats := env.service.ProcessRecurringCharges(context.Background())

	assert.Equal(t, RunStats{Checked: 2, Charged: 1, NoMethod: 1}, stats)
	require.Len(t, env.gateway.calls, 1)
	assert.Equal(t, "pm-20", env.gateway.calls[0].PaymentMethodID)
}

func TestProcessLockHeldSkips(t *testing.T) {
	env := newTestEnv()
	env.subs.due = []models.Subscription{dueSubscription(1, 10, 555)}
	env.methods.methods[10] = []models.SavedPaymentMethod{savedMethod(7, "pm-new")}
	env.locks.deny = true

	stats := env.service.ProcessRecurringCharges(context.Background())

	assert.Equal(t, RunStats{Checked: 1, Skipped: 1}, stats)
	assert.Empty(t, env.gateway.calls)
}

func TestProcessLockInfrastructureDownStillCharges(t *testing.T) {
	env := newTestEnv()
	env.subs.due = []models.Subscription{dueSubscription(1, 10, 555)}
	env.methods.methods[10] = []models.SavedPaymentMethod{savedMethod(7, "pm-new")}
	env.locks.acquireErr = errors.New("redis down")

	stats := env.service.ProcessRecurringCharges(context.Background())

	assert.Equal(t, RunStats{Checked: 1, Charged: 1}, stats)
	require.Len(t, env.gateway.calls, 1)
}

func TestProcessRereadFailureReleasesLock(t *testing.T) {
	env := newTestEnv()
	env.subs.due = []models.Subscription{dueSubscription(1, 10, 555)}
	env.methods.methods[10] = []models.SavedPaymentMethod{savedMethod(7, "pm-new")}
	env.subs.getErr = errors.New("connection lost")

	stats := env.service.ProcessRecurringCharges(context.Background())

	assert.Equal(t, RunStats{Checked: 1, Failed: 1}, stats)
	assert.Empty(t, env.gateway.calls)
	assert.Equal(t, []uint{1}, env.locks.released)
}

func TestProcessRecheckNotDueReleasesLockAndSkips(t *testing.T) {
	env := newTestEnv()
	env.subs.due = []models.Subscription{dueSubscription(1, 10, 555)}
	env.methods.methods[10] = []models.SavedPaymentMethod{savedMethod(7, "pm-new")}

	// Someone renewed manually between selection and charge.
	renewed := dueSubscription(1, 10, 555)
	farExpiry := time.Now().AddDate(0, 0, 60)
	renewed.ExpiresAt = &farExpiry
	env.subs.fresh = map[uint]*models.Subscription{1: &renewed}

	stats := env.service.ProcessRecurringCharges(context.Background())

	assert.Equal(t, RunStats{Checked: 1, Skipped: 1}, stats)
	assert.Empty(t, env.gateway.calls)
	assert.Equal(t, []uint{1}, env.locks.released)
}

func TestProcessNotificationFailureIsSwallowed(t *testing.T) {
	env := newTestEnv()
	env.subs.due = []models.Subscription{dueSubscription(1, 10, 555)}
	env.methods.methods[10] = []models.SavedPaymentMethod{savedMethod(7, "pm-new")}
	env.notifier.err = errors.New("bot blocked by user")

	stats := env.service.ProcessRecurringCharges(context.Background())

	assert.Equal(t, RunStats{Checked: 1, Charged: 1}, stats)
}

func TestProcessSelectionErrorReturnsZeroStats(t *testing.T) {
	env := newTestEnv()
	env.subs.findErr = errors.New("query failed")

	stats := env.service.ProcessRecurringCharges(context.Background())

	assert.Equal(t, RunStats{}, stats)
}

func TestProcessSubscriptionWithoutUserIsSkipped(t *testing.T) {
	env := newTestEnv()
	sub := dueSubscription(1, 10, 555)
	sub.User = nil
	env.subs.due = []models.Subscription{sub}

	stats := env.service.ProcessRecurringCharges(context.Background())

	assert.Equal(t, RunStats{Checked: 1, Skipped: 1}, stats)
	assert.Empty(t, env.gateway.calls)
}

func TestRunStatsHasActivity(t *testing.T) {
	assert.False(t, RunStats{Checked: 5, Skipped: 3, NoMethod: 2}.HasActivity())
	assert.True(t, RunStats{Charged: 1}.HasActivity())
	assert.True(t, RunStats{Failed: 1}.HasActivity())
}
