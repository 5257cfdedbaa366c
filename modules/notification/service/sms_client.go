package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"lawlink-api/core/config"
	"lawlink-api/core/constants"
)

type SMSSender interface {
	Send(ctx context.Context, phone, message string) error
}

// SMSClient talks to the SMS brandname gateway.
type SMSClient struct {
	baseURL string
	apiKey  string
	brand   string
	client  *http.Client
}

func NewSMSClient() *SMSClient {
	cfg := config.Get()
	return &SMSClient{
		baseURL: cfg.SMSGateway.BaseURL,
		apiKey:  cfg.SMSGateway.APIKey,
		brand:   cfg.SMSGateway.Brand,
		client:  &http.Client{Timeout: constants.GatewayTimeout},
	}
}

// NewSMSClientWith is used by tests to point at a local server.
func NewSMSClientWith(baseURL, apiKey, brand string, client *http.Client) *SMSClient {
	return &SMSClient{baseURL: baseURL, apiKey: apiKey, brand: brand, client: client}
}

func (c *SMSClient) Send(ctx context.Context, phone, message string) error {
	payload := map[string]string{
		"to":      phone,
		"brand":   c.brand,
		"message": message,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/sms/send", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("sms gateway returned status %d", resp.StatusCode)
	}
	return nil
}
