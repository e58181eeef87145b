package notify

// Notifier delivers billing notifications to users. Every method is
// best-effort: callers log delivery errors and continue, a failed
// notification never fails the billing operation that triggered it.
type Notifier interface {
	RenewalSuccess(telegramID int64, amountKopeks int64) error
	RenewalFailure(telegramID int64, amountKopeks int64) error
	NoPaymentMethod(telegramID int64) error
}

// NopNotifier discards all notifications. Used when no bot token is
// configured and in tests.
type NopNotifier struct{}

func (NopNotifier) RenewalSuccess(int64, int64) error { return nil }
func (NopNotifier) RenewalFailure(int64, int64) error { return nil }
func (NopNotifier) NoPaymentMethod(int64) error       { return nil }
