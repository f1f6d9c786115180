package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// maxErrorBody bounds how much of a failed webhook response is kept.
const maxErrorBody = 4 << 10

// WebhookError is a non-2xx answer from the webhook endpoint.
type WebhookError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *WebhookError) Error() string {
	return fmt.Sprintf("discord webhook failed: %s body=%s", e.Status, e.Body)
}

// SecretValue yields a credential, typically from the process-wide cache.
type SecretValue interface {
	Value(ctx context.Context) (string, error)
}

// Webhook posts messages to a Discord channel webhook whose URL is kept in
// the parameter store.
type Webhook struct {
	url    SecretValue
	client *http.Client
}

func NewWebhook(url SecretValue, client *http.Client) *Webhook {
	if client == nil {
		client = http.DefaultClient
	}
	return &Webhook{url: url, client: client}
}

func (w *Webhook) Name() string { return "discord-webhook" }

func (w *Webhook) Send(ctx context.Context, content string) error {
	url, err := w.url.Value(ctx)
	if err != nil {
		return fmt.Errorf("webhook url: %w", err)
	}

	body, err := json.Marshal(map[string]string{"content": content})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &WebhookError{StatusCode: resp.StatusCode, Status: resp.Status, Body: string(b)}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
