package calendar

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

	"github.com/HubertYGuan/FEINT/internal/core/port"
	"github.com/HubertYGuan/FEINT/internal/infra/config"
)

// WebhookNotifier delivers the todo list to an external calendar endpoint as a
// single event. The reminder window opens after the configured lead time.
type WebhookNotifier struct {
	cfg    config.CalendarSettings
	client *http.Client
	logger *zap.Logger
	now    func() time.Time
}

// NewWebhookNotifier constructs a calendar notifier posting to cfg.WebhookURL.
func NewWebhookNotifier(cfg config.CalendarSettings, logger *zap.Logger) *WebhookNotifier {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &WebhookNotifier{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
		logger: logger,
		now:    time.Now,
	}
}

type calendarEvent struct {
	Summary     string    `json:"summary"`
	Description string    `json:"description"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
}

// Notify posts a calendar event listing the given todo entries.
func (n *WebhookNotifier) Notify(ctx context.Context, entries []string) error {
	now := n.now().UTC()
	event := calendarEvent{
		Summary:     "TODO List:",
		Description: strings.Join(entries, "\n"),
		Start:       now.Add(n.cfg.EventLead),
		End:         now.Add(n.cfg.EventLead + n.cfg.EventDuration),
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal calendar event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.cfg.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build calendar request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("post calendar event: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("calendar endpoint returned %d", resp.StatusCode)
	}

	n.logger.Debug("calendar event created", zap.Int("entry_count", len(entries)))
	return nil
}

// NoopNotifier is used when no webhook URL is configured.
type NoopNotifier struct {
	logger *zap.Logger
}

// NewNoopNotifier constructs a notifier that only logs.
func NewNoopNotifier(logger *zap.Logger) *NoopNotifier {
	return &NoopNotifier{logger: logger}
}

// Notify logs the entries and succeeds.
func (n *NoopNotifier) Notify(_ context.Context, entries []string) error {
	n.logger.Debug("calendar notification skipped, no webhook configured",
		zap.Int("entry_count", len(entries)))
	return nil
}

var (
	_ port.CalendarNotifier = (*WebhookNotifier)(nil)
	_ port.CalendarNotifier = (*NoopNotifier)(nil)
)
