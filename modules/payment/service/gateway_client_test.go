package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGatewayClientCreatePayment(t *testing.T) {
	var received map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/payments", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		json.NewEncoder(w).Encode(map[string]string{
			"id":            "txn-1",
			"redirect_link": "https://pay.example.com/txn-1",
		})
	}))
	defer server.Close()

	client := NewGatewayClientWith(server.URL, "test-key", server.Client())
	result, err := client.CreatePayment(context.Background(), "LWL-abc1234", 750_000, "https://api.lawlink.test/cb", "+84901234567")

	require.NoError(t, err)
	assert.Equal(t, "txn-1", result.TxnID)
	assert.Equal(t, "https://pay.example.com/txn-1", result.RedirectLink)
	assert.Equal(t, "LWL-abc1234", received["order_ref"])
	assert.Equal(t, float64(750_000), received["amount"])
	assert.Equal(t, "https://api.lawlink.test/cb", received["callback_url"])
	assert.Equal(t, "+84901234567", received["contact"])
}

func TestGatewayClientCreatePaymentRejectsErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewGatewayClientWith(server.URL, "test-key", server.Client())
	_, err := client.CreatePayment(context.Background(), "LWL-abc1234", 750_000, "https://api.lawlink.test/cb", "+84901234567")

	assert.Error(t, err)
}

func TestGatewayClientVerifyPayment(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/payments/txn-9", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]string{
			"status_code": "00",
			"order_id":    "LWL-abc1234",
		})
	}))
	defer server.Close()

	client := NewGatewayClientWith(server.URL, "test-key", server.Client())
	result, err := client.VerifyPayment(context.Background(), "txn-9")

	require.NoError(t, err)
	assert.True(t, result.Success())
	assert.Equal(t, "LWL-abc1234", result.OrderRef)
}

func TestGatewayClientVerifyRetriesOnTimeout(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			time.Sleep(200 * time.Millisecond)
		}
		json.NewEncoder(w).Encode(map[string]string{
			"status_code": "00",
			"order_id":    "LWL-abc1234",
		})
	}))
	defer server.Close()

	client := NewGatewayClientWith(server.URL, "test-key", &http.Client{Timeout: 50 * time.Millisecond})
	result, err := client.VerifyPayment(context.Background(), "txn-9")

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.True(t, result.Success())
}
