package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func timePtr(t time.Time) *time.Time {
	return &t
}

func TestSubscriptionLeadDays(t *testing.T) {
	tests := []struct {
		name       string
		daysBefore int
		expected   int
	}{
		{name: "default when unset", daysBefore: 0, expected: DefaultAutopayLeadDays},
		{name: "explicit value wins", daysBefore: 7, expected: 7},
		{name: "one day", daysBefore: 1, expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := Subscription{AutopayDaysBefore: tt.daysBefore}
			assert.Equal(t, tt.expected, sub.LeadDays())
		})
	}
}

func TestSubscriptionDueForAutopay(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		sub  Subscription
		due  bool
	}{
		{
			name: "inside lead window",
			sub: Subscription{
				Status:         SUBSCRIPTION_STATUS_ACTIVE,
				AutopayEnabled: true,
				ExpiresAt:      timePtr(now.Add(24 * time.Hour)),
			},
			due: true,
		},
		{
			name: "exactly at window boundary",
			sub: Subscription{
				Status:         SUBSCRIPTION_STATUS_ACTIVE,
				AutopayEnabled: true,
				ExpiresAt:      timePtr(now.AddDate(0, 0, DefaultAutopayLeadDays)),
			},
			due: true,
		},
		{
			name: "one second before window opens",
			sub: Subscription{
				Status:         SUBSCRIPTION_STATUS_ACTIVE,
				AutopayEnabled: true,
				ExpiresAt:      timePtr(now.AddDate(0, 0, DefaultAutopayLeadDays).Add(time.Second)),
			},
			due: false,
		},
		{
			name: "already expired stays due",
			sub: Subscription{
				Status:         SUBSCRIPTION_STATUS_ACTIVE,
				AutopayEnabled: true,
				ExpiresAt:      timePtr(now.Add(-48 * time.Hour)),
			},
			due: true,
		},
		{
			name: "autopay disabled",
			sub: Subscription{
				Status:    SUBSCRIPTION_STATUS_ACTIVE,
				ExpiresAt: timePtr(now.Add(24 * time.Hour)),
			},
			due: false,
		},
		{
			name: "not active",
			sub: Subscription{
				Status:         SUBSCRIPTION_STATUS_CANCELLED,
				AutopayEnabled: true,
				ExpiresAt:      timePtr(now.Add(24 * time.Hour)),
			},
			due: false,
		},
		{
			name: "no expiry date",
			sub: Subscription{
				Status:         SUBSCRIPTION_STATUS_ACTIVE,
				AutopayEnabled: true,
			},
			due: false,
		},
		{
			name: "custom lead window of seven days",
			sub: Subscription{
				Status:            SUBSCRIPTION_STATUS_ACTIVE,
				AutopayEnabled:    true,
				AutopayDaysBefore: 7,
				ExpiresAt:         timePtr(now.AddDate(0, 0, 5)),
			},
			due: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.due, tt.sub.DueForAutopay(now))
		})
	}
}

func TestSavedPaymentMethodDisplayTitle(t *testing.T) {
	withTitle := SavedPaymentMethod{Title: "My card", CardType: "Visa", CardLastFour: "4444"}
	assert.Equal(t, "My card", withTitle.DisplayTitle())

	masked := SavedPaymentMethod{CardType: "MasterCard", CardLastFour: "4444"}
	assert.Equal(t, "MasterCard •• 4444", masked.DisplayTitle())

	typeOnly := SavedPaymentMethod{Type: "yoo_money"}
	assert.Equal(t, "yoo_money", typeOnly.DisplayTitle())
}
