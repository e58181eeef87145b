package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		kopeks   int64
		expected string
	}{
		{kopeks: 29900, expected: "299 ₽"},
		{kopeks: 12345, expected: "123.45 ₽"},
		{kopeks: 100, expected: "1 ₽"},
		{kopeks: 5, expected: "0.05 ₽"},
		{kopeks: 0, expected: "0 ₽"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, FormatPrice(tt.kopeks))
	}
}

func TestMessagesCarryAmount(t *testing.T) {
	success := renewalSuccessMessage(29900)
	assert.Contains(t, success, "299 ₽")
	assert.Contains(t, success, "✅")

	failure := renewalFailureMessage(12345)
	assert.Contains(t, failure, "123.45 ₽")
	assert.Contains(t, failure, "⚠️")

	noMethod := noPaymentMethodMessage()
	assert.Contains(t, noMethod, "⚠️")
	assert.NotContains(t, noMethod, "₽")
}
