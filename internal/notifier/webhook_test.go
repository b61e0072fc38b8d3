package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rinodehi1978/resell-trap/internal/config"
	"github.com/rinodehi1978/resell-trap/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureWebhook(t *testing.T, status int) (*httptest.Server, *map[string]string) {
	t.Helper()

	var payload map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &payload))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)

	return srv, &payload
}

func TestWebhookNotifier_Discord(t *testing.T) {
	srv, payload := captureWebhook(t, http.StatusNoContent)

	n := NewWebhookNotifier(config.WebhookConfig{URL: srv.URL, Kind: "discord"})
	err := n.Notify(context.Background(), model.Notification{
		App:     "resell-trap",
		Message: "worker 0 exited",
	})

	require.NoError(t, err)
	assert.Equal(t, map[string]string{"content": "[resell-trap] worker 0 exited"}, *payload)
}

func TestWebhookNotifier_Slack(t *testing.T) {
	srv, payload := captureWebhook(t, http.StatusOK)

	n := NewWebhookNotifier(config.WebhookConfig{URL: srv.URL, Kind: "slack"})
	err := n.Notify(context.Background(), model.Notification{
		App:     "yafuama",
		Message: "service is back up",
	})

	require.NoError(t, err)
	assert.Equal(t, map[string]string{"text": "[yafuama] service is back up"}, *payload)
}

func TestWebhookNotifier_NonSuccessStatus(t *testing.T) {
	srv, _ := captureWebhook(t, http.StatusForbidden)

	n := NewWebhookNotifier(config.WebhookConfig{URL: srv.URL, Kind: "discord"})
	err := n.Notify(context.Background(), model.Notification{App: "resell-trap", Message: "x"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

type recordingNotifier struct {
	notifications []model.Notification
	err           error
}

func (r *recordingNotifier) Notify(_ context.Context, n model.Notification) error {
	r.notifications = append(r.notifications, n)
	return r.err
}

func TestNotifyAll_ContinuesPastFailures(t *testing.T) {
	failing := &recordingNotifier{err: errors.New("boom")}
	working := &recordingNotifier{}

	notification := model.Notification{App: "resell-trap", Message: "worker 1 restarted"}
	NotifyAll(context.Background(), []Notifier{failing, working}, notification)

	require.Len(t, working.notifications, 1)
	assert.Equal(t, notification, working.notifications[0])
}

func TestFromConfig_LogOnlyByDefault(t *testing.T) {
	notifiers := FromConfig(config.WebhookConfig{}, config.TelegramConfig{})
	require.Len(t, notifiers, 1)
	assert.IsType(t, &LogNotifier{}, notifiers[0])
}

func TestFromConfig_WebhookEnabled(t *testing.T) {
	notifiers := FromConfig(
		config.WebhookConfig{URL: "https://example.com/hook", Kind: "discord"},
		config.TelegramConfig{},
	)
	require.Len(t, notifiers, 2)
	assert.IsType(t, &WebhookNotifier{}, notifiers[1])
}
