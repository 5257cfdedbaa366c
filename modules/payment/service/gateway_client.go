package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"

	"lawlink-api/core/config"
	"lawlink-api/core/constants"
	"lawlink-api/core/logger"
)

// Gateway status codes on the wire.
const (
	gatewayStatusSuccess = "00"
)

type CreatePaymentResult struct {
	TxnID        string `json:"id"`
	RedirectLink string `json:"redirect_link"`
}

type VerifyPaymentResult struct {
	StatusCode string `json:"status_code"`
	OrderRef   string `json:"order_id"`
}

// Success reports whether the gateway settled the charge.
func (v VerifyPaymentResult) Success() bool {
	return v.StatusCode == gatewayStatusSuccess
}

type PaymentGateway interface {
	CreatePayment(ctx context.Context, orderRef string, amount int64, callbackURL, contact string) (*CreatePaymentResult, error)
	VerifyPayment(ctx context.Context, providerTxnID string) (*VerifyPaymentResult, error)
}

// GatewayClient talks to the external payment gateway over HTTP.
type GatewayClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewGatewayClient() *GatewayClient {
	cfg := config.Get()
	return &GatewayClient{
		baseURL: cfg.PayGateway.BaseURL,
		apiKey:  cfg.PayGateway.APIKey,
		client:  &http.Client{Timeout: constants.GatewayTimeout},
	}
}

// NewGatewayClientWith is used by tests to point at a local server.
func NewGatewayClientWith(baseURL, apiKey string, client *http.Client) *GatewayClient {
	return &GatewayClient{baseURL: baseURL, apiKey: apiKey, client: client}
}

func (c *GatewayClient) CreatePayment(ctx context.Context, orderRef string, amount int64, callbackURL, contact string) (*CreatePaymentResult, error) {
	payload := map[string]interface{}{
		"order_ref":    orderRef,
		"amount":       amount,
		"currency":     "VND",
		"callback_url": callbackURL,
		"contact":      contact,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/payments", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("payment gateway returned status %d", resp.StatusCode)
	}

	var result CreatePaymentResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}
	if result.TxnID == "" || result.RedirectLink == "" {
		return nil, fmt.Errorf("payment gateway returned incomplete create response")
	}
	return &result, nil
}

// VerifyPayment asks the gateway for the settled status of a transaction.
// One retry on a timeout; idempotency downstream is the real safety net.
func (c *GatewayClient) VerifyPayment(ctx context.Context, providerTxnID string) (*VerifyPaymentResult, error) {
	result, err := c.verifyOnce(ctx, providerTxnID)
	if err != nil && isTimeout(err) {
		logger.Warn("GatewayClient:VerifyPayment:Retry", "txnID", providerTxnID, "error", err)
		result, err = c.verifyOnce(ctx, providerTxnID)
	}
	return result, err
}

func (c *GatewayClient) verifyOnce(ctx context.Context, providerTxnID string) (*VerifyPaymentResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/payments/"+providerTxnID, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("payment gateway returned status %d", resp.StatusCode)
	}

	var result VerifyPaymentResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}
	return &result, nil
}

func isTimeout(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return false
}
