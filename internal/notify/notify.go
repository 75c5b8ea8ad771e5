// Package notify delivers operator notifications emitted by flow action
// nodes. The only transport implemented is an HTTP webhook; tenants without
// a configured endpoint get a log-only notifier.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// DefaultTimeout bounds a single webhook delivery attempt.
const DefaultTimeout = 10 * time.Second

// payload is the JSON body posted to the webhook endpoint.
type payload struct {
	TenantID  string            `json:"tenant_id"`
	Title     string            `json:"title"`
	Body      string            `json:"body"`
	Data      map[string]string `json:"data,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// WebhookNotifier posts notifications to a fixed HTTP endpoint.
type WebhookNotifier struct {
	url    string
	client *http.Client
}

// NewWebhookNotifier creates a notifier for the given endpoint URL.
func NewWebhookNotifier(url string) *WebhookNotifier {
	return &WebhookNotifier{
		url:    url,
		client: &http.Client{Timeout: DefaultTimeout},
	}
}

// Notify posts the notification as JSON. A non-2xx response is an error.
func (n *WebhookNotifier) Notify(ctx context.Context, tenantID, title, body string, data map[string]string) error {
	slog.Debug("WebhookNotifier.Notify", "tenant", tenantID, "title", title)
	buf, err := json.Marshal(payload{
		TenantID:  tenantID,
		Title:     title,
		Body:      body,
		Data:      data,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(buf))
	if err != nil {
		return fmt.Errorf("failed to build notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to deliver notification: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("notification endpoint returned status %d", resp.StatusCode)
	}
	slog.Debug("Notification delivered", "tenant", tenantID, "status", resp.StatusCode)
	return nil
}

// LogNotifier records notifications to the structured log and nothing else.
// It is used when no webhook endpoint is configured.
type LogNotifier struct{}

// Notify logs the notification at info level.
func (LogNotifier) Notify(_ context.Context, tenantID, title, body string, data map[string]string) error {
	slog.Info("Notification", "tenant", tenantID, "title", title, "body", body, "data", data)
	return nil
}
