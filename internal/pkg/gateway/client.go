package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/subkassa/autopay/internal/pkg/env"
)

const defaultAPIURL = "https://api.yookassa.ru/v3"

// httpClient talks to the YooKassa payments API using shop credentials.
type httpClient struct {
	shopID    string
	secretKey string
	baseURL   string
	http      *http.Client
}

// NewClient builds a gateway client from environment configuration.
func NewClient() Client {
	return &httpClient{
		shopID:    env.GetEnv("YOOKASSA_SHOP_ID", ""),
		secretKey: env.GetEnv("YOOKASSA_SECRET_KEY", ""),
		baseURL:   env.GetEnv("YOOKASSA_API_URL", defaultAPIURL),
		http:      &http.Client{Timeout: 30 * time.Second},
	}
}

// Enabled reports whether shop credentials are configured.
func (c *httpClient) Enabled() bool {
	return c.shopID != "" && c.secretKey != ""
}

type amountPayload struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

type chargePayload struct {
	Amount          amountPayload     `json:"amount"`
	Capture         bool              `json:"capture"`
	PaymentMethodID string            `json:"payment_method_id"`
	Description     string            `json:"description,omitempty"`
	Metadata        map[string]string `json:"metadata,omitempty"`
}

type paymentResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Paid   bool   `json:"paid"`
}

// FormatAmount renders kopeks as the decimal string the gateway expects.
func FormatAmount(kopeks int64) string {
	return fmt.Sprintf("%d.%02d", kopeks/100, kopeks%100)
}

// CreateRecurringCharge posts an auto-capture payment against a saved method.
// Each attempt carries a fresh idempotence key, so a retry of the same
// subscription in a later pass is a new payment.
func (c *httpClient) CreateRecurringCharge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("gateway credentials are not configured")
	}

	currency := req.Currency
	if currency == "" {
		currency = "RUB"
	}

	payload := chargePayload{
		Amount: amountPayload{
			Value:    FormatAmount(req.AmountKopeks),
			Currency: currency,
		},
		Capture:         true,
		PaymentMethodID: req.PaymentMethodID,
		Description:     req.Description,
		Metadata:        req.Metadata,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode charge payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/payments", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build charge request: %w", err)
	}
	httpReq.SetBasicAuth(c.shopID, c.secretKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Idempotence-Key", uuid.NewString())

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("charge request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read charge response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("gateway returned status %d: %s", resp.StatusCode, respBody)
	}

	var payment paymentResponse
	if err := json.Unmarshal(respBody, &payment); err != nil {
		return nil, fmt.Errorf("failed to decode charge response: %w", err)
	}

	return &ChargeResult{
		ID:     payment.ID,
		Status: NormalizeStatus(payment.Status),
		Paid:   payment.Paid,
	}, nil
}
