package paypal

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casesurf/casesurf/internal/config"
)

func testConfig() config.PayPalConfig {
	return config.PayPalConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
	}
}

func TestAccessToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/oauth2/token", r.URL.Path)

		// Credentials travel via basic auth
		expected := "Basic " + base64.StdEncoding.EncodeToString([]byte("client-id:client-secret"))
		assert.Equal(t, expected, r.Header.Get("Authorization"))

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))

		w.Write([]byte(`{"access_token": "A21AA...", "token_type": "Bearer", "expires_in": 32400}`))
	}))
	defer server.Close()

	client := NewClientWithBaseURL(testConfig(), server.URL)

	token, err := client.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "A21AA...", token)
}

func TestAccessTokenError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid_client"}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClientWithBaseURL(testConfig(), server.URL)

	_, err := client.AccessToken(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestCaptureOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/oauth2/token":
			w.Write([]byte(`{"access_token": "test-token"}`))
		case "/v2/checkout/orders/ORDER123/capture":
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{
				"id": "ORDER123",
				"status": "COMPLETED",
				"payer": {"email_address": "buyer@example.com"},
				"purchase_units": [{
					"payments": {
						"captures": [{
							"id": "CAP1",
							"status": "COMPLETED",
							"amount": {"currency_code": "USD", "value": "30.00"}
						}]
					}
				}]
			}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := NewClientWithBaseURL(testConfig(), server.URL)

	capture, err := client.CaptureOrder(context.Background(), "ORDER123")
	require.NoError(t, err)

	assert.Equal(t, "ORDER123", capture.ID)
	assert.Equal(t, "COMPLETED", capture.CaptureStatus())
	assert.Equal(t, "buyer@example.com", capture.Payer.EmailAddress)

	cents, currency := capture.CapturedAmount()
	assert.Equal(t, int64(3000), cents)
	assert.Equal(t, "USD", currency)

	// Raw payload is preserved for archival
	assert.True(t, strings.Contains(string(capture.Raw), `"CAP1"`))
}

func TestCaptureOrderDeclined(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/oauth2/token":
			w.Write([]byte(`{"access_token": "test-token"}`))
		default:
			// Order-level COMPLETED with a declined capture inside
			w.Write([]byte(`{
				"id": "ORDER456",
				"status": "COMPLETED",
				"purchase_units": [{
					"payments": {
						"captures": [{
							"id": "CAP2",
							"status": "DECLINED",
							"amount": {"currency_code": "USD", "value": "30.00"}
						}]
					}
				}]
			}`))
		}
	}))
	defer server.Close()

	client := NewClientWithBaseURL(testConfig(), server.URL)

	capture, err := client.CaptureOrder(context.Background(), "ORDER456")
	require.NoError(t, err)

	// The capture detail wins over the order status
	assert.Equal(t, "DECLINED", capture.CaptureStatus())
}

func TestCaptureStatusFallsBackToOrderStatus(t *testing.T) {
	capture := &CaptureResponse{Status: "PENDING"}
	assert.Equal(t, "PENDING", capture.CaptureStatus())

	cents, currency := capture.CapturedAmount()
	assert.Equal(t, int64(0), cents)
	assert.Equal(t, "", currency)
}
