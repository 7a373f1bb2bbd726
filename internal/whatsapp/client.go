// Package whatsapp wraps the WhatsApp Cloud API send-message call.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const httpTimeout = 10 * time.Second

// APIError is a non-2xx answer from the Cloud API. The handler embeds the
// status and body in its bad-gateway detail, so both are kept verbatim.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("whatsapp: api status %d: %s", e.StatusCode, e.Body)
}

type Client struct {
	apiURL string // https://graph.facebook.com/v22.0/<PHONE_NUMBER_ID>
	token  string
	http   *http.Client
	logger *zap.Logger
}

// NewClient builds a gateway client. Callers construct one only when both
// credentials are configured; an absent gateway is represented by a nil
// *Client, never a half-configured one.
func NewClient(apiURL, token string, logger *zap.Logger) *Client {
	return &Client{
		apiURL: strings.TrimRight(apiURL, "/"),
		token:  token,
		http:   &http.Client{Timeout: httpTimeout},
		logger: logger,
	}
}

// SendMessage delivers a text message and returns the decoded API response.
// Non-2xx answers come back as *APIError; delivery is attempted exactly
// once — retrying is the caller's call.
func (c *Client) SendMessage(ctx context.Context, recipientID, body string) (map[string]any, error) {
	payload := map[string]any{
		"messaging_product": "whatsapp",
		"to":                recipientID,
		"type":              "text",
		"text":              map[string]string{"body": body},
	}
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("whatsapp: marshal payload: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, httpTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/messages", bytes.NewReader(payloadBytes))
	if err != nil {
		return nil, fmt.Errorf("whatsapp: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("whatsapp: post: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("whatsapp: read response: %w", err)
	}

	c.logger.Info("whatsapp api response",
		zap.Int("status", resp.StatusCode),
		zap.ByteString("body", respBody),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var parsed map[string]any
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("whatsapp: decode response: %w", err)
	}
	return parsed, nil
}
