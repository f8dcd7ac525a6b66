// Package identity wraps the third-party credential-issuance service used to
// create operator logins for technicians with a production role. The API key
// stays on this side of the trust boundary; the browser never sees it.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"fieldops-console-backend/config"
)

// Client talks to the identity service.
type Client struct {
	base   string
	apiKey string
	client *http.Client
}

// New creates an identity client from configuration. Enabled reports whether
// the service is configured at all.
func New(cfg *config.IdentityConfig) *Client {
	return &Client{
		base:   strings.TrimRight(cfg.BaseURL, "/"),
		apiKey: cfg.APIKey,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

// Enabled reports whether the service is configured.
func (c *Client) Enabled() bool {
	return c.base != "" && c.apiKey != ""
}

// Operator is the created credential record.
type Operator struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// CreateOperator issues login credentials for a new operator.
func (c *Client) CreateOperator(ctx context.Context, name, email string) (*Operator, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("identity service is not configured")
	}
	if name == "" || email == "" {
		return nil, fmt.Errorf("operator name and email are required")
	}

	payload, err := json.Marshal(map[string]string{"name": name, "email": email, "role": "operator"})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal operator payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/operators", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("identity request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read identity response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("identity service returned status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	var op Operator
	if err := json.Unmarshal(body, &op); err != nil {
		return nil, fmt.Errorf("failed to unmarshal identity response: %w", err)
	}
	return &op, nil
}
