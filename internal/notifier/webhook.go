package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rinodehi1978/resell-trap/internal/config"
	"github.com/rinodehi1978/resell-trap/internal/model"
)

// WebhookNotifier posts notifications to a Discord or Slack incoming
// webhook. The two services differ only in the payload field name.
type WebhookNotifier struct {
	url    string
	kind   string
	client *http.Client
}

func NewWebhookNotifier(cfg config.WebhookConfig) *WebhookNotifier {
	return &WebhookNotifier{
		url:  cfg.URL,
		kind: cfg.Kind,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (n *WebhookNotifier) Notify(ctx context.Context, notification model.Notification) error {
	message := fmt.Sprintf("[%s] %s", notification.App, notification.Message)

	var payload map[string]string
	switch n.kind {
	case "slack":
		payload = map[string]string{"text": message}
	default:
		payload = map[string]string{"content": message}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
