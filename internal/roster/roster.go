// Package roster is the client for the secondary technician-roster API. It is
// independently hosted from the maintenance API and exposes the technician
// directory plus a notification-send action.
package roster

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"fieldops-console-backend/config"
	"fieldops-console-backend/internal/model"
)

// Client talks to the roster API.
type Client struct {
	base   string
	client *http.Client
}

// New creates a roster client from configuration.
func New(cfg *config.RosterConfig) *Client {
	return &Client{
		base:   strings.TrimRight(cfg.BaseURL, "/"),
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// Technicians returns the full roster.
func (c *Client) Technicians(ctx context.Context) ([]model.Technician, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/tecnicos", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("roster request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("roster returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read roster response: %w", err)
	}

	var techs []model.Technician
	if err := json.Unmarshal(body, &techs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal roster response: %w", err)
	}
	return techs, nil
}

// ActiveTechnicians returns only roster rows whose status is "activo",
// matching the console's assignment pickers.
func (c *Client) ActiveTechnicians(ctx context.Context) ([]model.Technician, error) {
	techs, err := c.Technicians(ctx)
	if err != nil {
		return nil, err
	}
	active := techs[:0]
	for _, t := range techs {
		if strings.EqualFold(strings.TrimSpace(t.Status), "activo") {
			active = append(active, t)
		}
	}
	return active, nil
}

// Notification is the payload of the roster API's send action.
type Notification struct {
	Email   string `json:"correo_tecnico"`
	Subject string `json:"asunto"`
	Message string `json:"mensaje"`
}

// Notify sends a notification to a technician through the roster API.
func (c *Client) Notify(ctx context.Context, n Notification) error {
	if n.Email == "" {
		return fmt.Errorf("notification requires a technician email")
	}

	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/notificaciones", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("notification request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		text, _ := io.ReadAll(resp.Body)
		if len(bytes.TrimSpace(text)) > 0 {
			return fmt.Errorf("notification rejected: %s", bytes.TrimSpace(text))
		}
		return fmt.Errorf("notification rejected with status %d", resp.StatusCode)
	}
	return nil
}
