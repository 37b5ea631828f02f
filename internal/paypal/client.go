package paypal

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/casesurf/casesurf/internal/config"
)

const (
	sandboxBaseURL = "https://api-m.sandbox.paypal.com"
	liveBaseURL    = "https://api-m.paypal.com"
)

// Client talks to the PayPal Orders API. Captures always happen
// server-side so the credit grant can be tied to a verified capture.
type Client struct {
	baseURL      string
	clientID     string
	clientSecret string
	httpClient   *http.Client
}

// NewClient creates a new PayPal client
func NewClient(cfg config.PayPalConfig) *Client {
	baseURL := sandboxBaseURL
	if cfg.Live {
		baseURL = liveBaseURL
	}

	return &Client{
		baseURL:      baseURL,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// NewClientWithBaseURL creates a client against a custom API base.
// Used by tests to point at a stub server.
func NewClientWithBaseURL(cfg config.PayPalConfig, baseURL string) *Client {
	client := NewClient(cfg)
	client.baseURL = baseURL
	return client
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// AccessToken obtains an OAuth2 client-credentials token
func (c *Client) AccessToken(ctx context.Context) (string, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.SetBasicAuth(c.clientID, c.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read token response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token request returned status %d: %s", resp.StatusCode, data)
	}

	var token tokenResponse
	if err := json.Unmarshal(data, &token); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}
	if token.AccessToken == "" {
		return "", fmt.Errorf("token response missing access_token")
	}

	return token.AccessToken, nil
}

// Amount is a money value as PayPal reports it
type Amount struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

// Capture is one capture within a purchase unit
type Capture struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Amount Amount `json:"amount"`
}

// CaptureResponse is the order capture result
type CaptureResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Payer  struct {
		EmailAddress string `json:"email_address"`
	} `json:"payer"`
	PurchaseUnits []struct {
		Payments struct {
			Captures []Capture `json:"captures"`
		} `json:"payments"`
	} `json:"purchase_units"`

	// Raw holds the verbatim provider payload for archival
	Raw []byte `json:"-"`
}

// CaptureStatus returns the status of the first capture, falling back
// to the order status when the capture detail is absent
func (r *CaptureResponse) CaptureStatus() string {
	if len(r.PurchaseUnits) > 0 && len(r.PurchaseUnits[0].Payments.Captures) > 0 {
		return r.PurchaseUnits[0].Payments.Captures[0].Status
	}
	return r.Status
}

// CapturedAmount returns the first capture's amount in cents with its
// currency code
func (r *CaptureResponse) CapturedAmount() (int64, string) {
	if len(r.PurchaseUnits) == 0 || len(r.PurchaseUnits[0].Payments.Captures) == 0 {
		return 0, ""
	}

	amount := r.PurchaseUnits[0].Payments.Captures[0].Amount
	value, err := strconv.ParseFloat(amount.Value, 64)
	if err != nil {
		return 0, amount.CurrencyCode
	}

	return int64(value*100 + 0.5), amount.CurrencyCode
}

// CaptureOrder captures an approved order
func (c *Client) CaptureOrder(ctx context.Context, orderID string) (*CaptureResponse, error) {
	token, err := c.AccessToken(ctx)
	if err != nil {
		return nil, err
	}

	captureURL := fmt.Sprintf("%s/v2/checkout/orders/%s/capture", c.baseURL, orderID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, captureURL, strings.NewReader("{}"))
	if err != nil {
		return nil, fmt.Errorf("failed to create capture request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("capture request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read capture response: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("capture returned status %d: %s", resp.StatusCode, data)
	}

	var capture CaptureResponse
	if err := json.Unmarshal(data, &capture); err != nil {
		return nil, fmt.Errorf("failed to decode capture response: %w", err)
	}
	capture.Raw = data

	return &capture, nil
}
