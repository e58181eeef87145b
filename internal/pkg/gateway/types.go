package gateway

import "context"

// Status is the normalized state of a gateway charge.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusPending   Status = "pending"
	StatusCanceled  Status = "canceled"
	StatusUnknown   Status = "unknown"
)

// NormalizeStatus maps a raw gateway status string to the normalized set.
// Anything the gateway invents beyond the documented states is unknown.
func NormalizeStatus(raw string) Status {
	switch raw {
	case "succeeded":
		return StatusSucceeded
	case "pending", "waiting_for_capture":
		return StatusPending
	case "canceled":
		return StatusCanceled
	default:
		return StatusUnknown
	}
}

// ChargeRequest describes a single recurring charge against a saved method.
type ChargeRequest struct {
	AmountKopeks    int64
	Currency        string
	PaymentMethodID string
	Description     string
	Metadata        map[string]string
}

// ChargeResult is the normalized outcome of a charge call.
type ChargeResult struct {
	ID     string
	Status Status
	Paid   bool
}

// Succeeded reports whether the gateway confirmed the charge.
func (r *ChargeResult) Succeeded() bool {
	return r != nil && r.Status == StatusSucceeded
}

// Client performs charges against the payment gateway.
type Client interface {
	CreateRecurringCharge(ctx context.Context, req ChargeRequest) (*ChargeResult, error)
	Enabled() bool
}
