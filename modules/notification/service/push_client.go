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

type PushSender interface {
	Send(ctx context.Context, deviceToken, title, body string, data map[string]interface{}) error
}

// PushClient talks to the mobile push gateway.
type PushClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewPushClient() *PushClient {
	cfg := config.Get()
	return &PushClient{
		baseURL: cfg.PushGateway.BaseURL,
		apiKey:  cfg.PushGateway.APIKey,
		client:  &http.Client{Timeout: constants.GatewayTimeout},
	}
}

// NewPushClientWith is used by tests to point at a local server.
func NewPushClientWith(baseURL, apiKey string, client *http.Client) *PushClient {
	return &PushClient{baseURL: baseURL, apiKey: apiKey, client: client}
}

func (c *PushClient) Send(ctx context.Context, deviceToken, title, body string, data map[string]interface{}) error {
	payload := map[string]interface{}{
		"device_token": deviceToken,
		"title":        title,
		"body":         body,
		"data":         data,
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/push/send", bytes.NewReader(raw))
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
		return fmt.Errorf("push gateway returned status %d", resp.StatusCode)
	}
	return nil
}
