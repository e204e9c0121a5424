package alert

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/leapstack-labs/leapdq/pkg/core"
)

// Webhook POSTs alerts as JSON to an HTTP endpoint.
type Webhook struct {
	url    string
	client *http.Client
}

// NewWebhook creates a webhook sink. A nil client gets a 10s timeout client.
func NewWebhook(url string, client *http.Client) *Webhook {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Webhook{url: url, client: client}
}

// Payload is the JSON body sent to the webhook.
type Payload struct {
	Level     Level       `json:"level"`
	Timestamp time.Time   `json:"timestamp"`
	Text      string      `json:"text"`
	Report    core.Report `json:"report"`
}

// Send implements Sink.
func (w *Webhook) Send(ctx context.Context, a Alert) error {
	body, err := json.Marshal(Payload{
		Level:     a.Level,
		Timestamp: a.Time,
		Text:      a.String(),
		Report:    a.Report,
	})
	if err != nil {
		return fmt.Errorf("encode webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("send webhook: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook returned %s", resp.Status)
	}
	return nil
}
