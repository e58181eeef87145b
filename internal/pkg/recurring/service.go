package recurring

import (
	"context"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/subkassa/autopay/app/models"
	"github.com/subkassa/autopay/internal/pkg/cache"
	"github.com/subkassa/autopay/internal/pkg/gateway"
	"github.com/subkassa/autopay/internal/pkg/notify"
)

// SubscriptionSource selects and refreshes the subscriptions to renew.
type SubscriptionSource interface {
	FindDueForAutopay(now time.Time) ([]models.Subscription, error)
	GetByID(id uint) (*models.Subscription, error)
	Update(sub *models.Subscription) error
}

// MethodSource resolves the saved payment methods of a user, newest first.
type MethodSource interface {
	GetActiveByUser(userID uint) ([]models.SavedPaymentMethod, error)
}

// TariffSource looks up the plan a subscription renews on.
type TariffSource interface {
	GetByID(id uint) (*models.Tariff, error)
}

// PaymentSink records charge attempts.
type PaymentSink interface {
	Create(payment *models.Payment) error
}

// PriceSource resolves the renewal price of a subscription in kopeks.
type PriceSource interface {
	RenewalCost(sub *models.Subscription) int64
}

// Locker guards a subscription against concurrent charge attempts.
type Locker interface {
	Acquire(subscriptionID uint, ttl time.Duration) (bool, error)
	Release(subscriptionID uint) error
}

type cacheLocker struct{}

func (cacheLocker) Acquire(subscriptionID uint, ttl time.Duration) (bool, error) {
	return cache.AcquireChargeLock(subscriptionID, ttl)
}

func (cacheLocker) Release(subscriptionID uint) error {
	return cache.ReleaseChargeLock(subscriptionID)
}

// NewCacheLocker returns a Locker backed by the shared Redis cache.
func NewCacheLocker() Locker {
	return cacheLocker{}
}

// Deps bundles everything the scheduler talks to.
type Deps struct {
	Subscriptions SubscriptionSource
	Methods       MethodSource
	Tariffs       TariffSource
	Payments      PaymentSink
	Prices        PriceSource
	Gateway       gateway.Client
	Notifier      notify.Notifier
	Locks         Locker
}

// Service runs the recurring charge loop and exposes manual pass triggers.
type Service struct {
	cfg  Config
	deps Deps

	ticker  *time.Ticker
	stopCh  chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
}

// NewService creates the scheduler. It does not start the loop.
func NewService(cfg Config, deps Deps) *Service {
	return &Service{
		cfg:  cfg,
		deps: deps,
	}
}

// Enabled reports whether the loop may run: the feature flag is set and the
// gateway has credentials.
func (s *Service) Enabled() bool {
	return s.cfg.Enabled && s.deps.Gateway.Enabled()
}

// Interval returns the configured time between passes.
func (s *Service) Interval() time.Duration {
	return s.cfg.CheckInterval
}

// Start launches the charge loop. A disabled service stays stopped; calling
// Start twice is a no-op.
func (s *Service) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}
	if !s.Enabled() {
		log.Info("[Recurring] Scheduler disabled, not starting")
		return
	}

	// Recreate stop channel for each start cycle so the service can be restarted safely.
	s.stopCh = make(chan struct{})
	s.running = true
	s.ticker = time.NewTicker(s.cfg.CheckInterval)

	s.wg.Add(1)
	go s.worker(s.stopCh)

	log.Infof("[Recurring] Scheduler started (interval: %s)", s.cfg.CheckInterval)
}

// Stop halts the loop. An in-flight pass finishes before Stop returns.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	log.Info("[Recurring] Stopping scheduler...")

	s.ticker.Stop()
	close(s.stopCh)
	s.stopCh = nil
	s.running = false

	// Wait for the in-flight pass to finish
	s.wg.Wait()

	log.Info("[Recurring] Scheduler stopped")
}

// IsRunning returns whether the loop is currently active
func (s *Service) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// worker runs one pass immediately, then one per tick until stopped.
func (s *Service) worker(stopCh chan struct{}) {
	defer s.wg.Done()

	s.ProcessRecurringCharges(context.Background())

	for {
		select {
		case <-stopCh:
			log.Info("[Recurring] Worker stopping")
			return
		case <-s.ticker.C:
			s.ProcessRecurringCharges(context.Background())
		}
	}
}
