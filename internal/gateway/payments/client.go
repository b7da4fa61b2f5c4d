// Package payments talks to the external payment provider over HTTP/JSON.
package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Request describes one charge. The idempotency key makes retried calls
// safe: the provider returns the original result for a repeated key.
type Request struct {
	OrderID        int64   `json:"order_id"`
	Amount         float64 `json:"amount"`
	Currency       string  `json:"currency"`
	Method         string  `json:"payment_method"`
	IdempotencyKey string  `json:"idempotency_key"`
}

// Result statuses returned by the provider.
const (
	ResultCompleted = "completed"
	ResultDeclined  = "declined"
)

// Result is the provider's answer to a charge.
type Result struct {
	Status         string `json:"status"`
	TransactionRef string `json:"transaction_ref"`
}

// StatusError is a non-2xx provider response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("payment provider returned %d: %s", e.Code, e.Body)
}

// HTTPGateway is a payment gateway backed by the provider's HTTP API.
type HTTPGateway struct {
	client  *http.Client
	baseURL string
}

// NewHTTPGateway creates a payment gateway backed by the provider's HTTP API.
func NewHTTPGateway(baseURL string, timeout time.Duration) *HTTPGateway {
	if baseURL == "" {
		return nil
	}
	return &HTTPGateway{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// Process submits the charge and decodes the provider's verdict.
func (g *HTTPGateway) Process(ctx context.Context, pr Request) (*Result, error) {
	body, err := json.Marshal(pr)
	if err != nil {
		return nil, fmt.Errorf("payment gateway: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		g.baseURL+"/payments", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("payment gateway: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("payment gateway: do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &StatusError{Code: resp.StatusCode, Body: string(snippet)}
	}

	var res Result
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, fmt.Errorf("payment gateway: decode response: %w", err)
	}
	return &res, nil
}
