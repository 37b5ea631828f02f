package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/casesurf/casesurf/internal/config"
	"github.com/casesurf/casesurf/pkg/models"
)

// Client talks to the analysis backend that produces video reports,
// improved scripts, and the raw video feed.
type Client struct {
	baseURL    string
	authToken  string
	httpClient *http.Client
}

// NewClient creates a new analysis backend client
func NewClient(cfg config.BackendConfig) *Client {
	return &Client{
		baseURL:   cfg.BaseURL,
		authToken: cfg.AuthToken,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

type reportRequest struct {
	Product string `json:"product"`
	UserID  string `json:"userId"`
}

type reportResponse struct {
	Text string `json:"text"`
}

// GenerateReport requests a content analysis report for a video URL or
// product description
func (c *Client) GenerateReport(ctx context.Context, product, userID string) (string, error) {
	body, err := json.Marshal(reportRequest{Product: product, UserID: userID})
	if err != nil {
		return "", fmt.Errorf("failed to marshal report request: %w", err)
	}

	data, err := c.post(ctx, "/report", body)
	if err != nil {
		return "", err
	}

	var resp reportResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", fmt.Errorf("failed to decode report response: %w", err)
	}

	return resp.Text, nil
}

type scriptRequest struct {
	BaseText     string   `json:"base_text"`
	Improvements []string `json:"improvements"`
	IsIterative  bool     `json:"is_iterative"`
}

// GenerateScript requests an improved script. The backend returns the
// rewritten script as plain text.
func (c *Client) GenerateScript(ctx context.Context, baseText string, improvements []string, iterative bool) (string, error) {
	body, err := json.Marshal(scriptRequest{
		BaseText:     baseText,
		Improvements: improvements,
		IsIterative:  iterative,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal script request: %w", err)
	}

	data, err := c.post(ctx, "/improvement-script", body)
	if err != nil {
		return "", err
	}

	return string(data), nil
}

type feedResponse struct {
	TikTok []models.FeedRow `json:"tiktok"`
}

// FetchFeed retrieves the current upstream video feed
func (c *Client) FetchFeed(ctx context.Context) ([]models.FeedRow, error) {
	data, err := c.get(ctx, "/tiktok_data")
	if err != nil {
		return nil, err
	}

	var resp feedResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode feed response: %w", err)
	}

	return resp.TikTok, nil
}

func (c *Client) post(ctx context.Context, path string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req)
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("backend request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read backend response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("backend returned status %d after %v: %s",
			resp.StatusCode, time.Since(start).Round(time.Millisecond), data)
	}

	return data, nil
}
