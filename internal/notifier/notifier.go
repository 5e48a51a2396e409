// Package notifier posts interval-end notifications to a webhook.
package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/julianstephens/pomolit/internal/config"
	"github.com/julianstephens/pomolit/internal/constants"
)

// SecretHeader carries the shared secret so receivers can reject strangers.
const SecretHeader = "X-Pomolit-Secret"

type WebhookPayload struct {
	Text       string `json:"text"`
	DurationMs uint32 `json:"duration_ms"`
}

// Notifier sends WebhookPayloads to a single URL.
type Notifier struct {
	url        string
	secret     string
	durationMs uint32
	client     *http.Client
}

func New(url, secret string, durationMs int) *Notifier {
	if durationMs < 0 {
		durationMs = 0
	}
	return &Notifier{
		url:        url,
		secret:     secret,
		durationMs: uint32(durationMs),
		client:     &http.Client{Timeout: constants.NotificationTimeoutMs * time.Millisecond},
	}
}

// FromConfig returns nil when no webhook is configured.
func FromConfig(cfg config.Notify, secret string) *Notifier {
	if cfg.WebhookURL == "" {
		return nil
	}
	return New(cfg.WebhookURL, secret, cfg.DurationMs)
}

func (n *Notifier) Notify(ctx context.Context, text string) error {
	payload := WebhookPayload{
		Text:       text,
		DurationMs: n.durationMs,
	}
	return n.send(ctx, payload)
}

func (n *Notifier) send(ctx context.Context, payload WebhookPayload) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to build notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if n.secret != "" {
		req.Header.Set(SecretHeader, n.secret)
	}

	res, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode >= 200 && res.StatusCode < 300 {
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
	return fmt.Errorf("notification failed with status %d: %s", res.StatusCode, string(body))
}
