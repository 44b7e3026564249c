package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/HubertYGuan/FEINT/internal/core/domain"
	"github.com/HubertYGuan/FEINT/internal/core/port"
)

// StubPublisher logs events instead of sending them to Kafka. Useful for
// development environments without a broker.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a development-friendly event publisher.
func NewStubPublisher(logger *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: logger}
}

func (p *StubPublisher) logEvent(eventType string, at time.Time, payload any) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	p.logger.Info("Stub event published",
		zap.String("event_type", eventType),
		zap.Time("timestamp", at.UTC()),
		zap.Any("payload", payload),
	)
}

// PublishUserRegistered logs user.registered events.
func (p *StubPublisher) PublishUserRegistered(_ context.Context, event domain.UserRegisteredEvent) error {
	payload := map[string]any{
		"username":      event.Username,
		"registered_at": event.RegisteredAt,
	}
	p.logEvent("user.registered", event.RegisteredAt, payload)
	return nil
}

// PublishOTPStatusChanged logs user.otp.changed events.
func (p *StubPublisher) PublishOTPStatusChanged(_ context.Context, event domain.OTPStatusChangedEvent) error {
	payload := map[string]any{
		"username":   event.Username,
		"enabled":    event.Enabled,
		"changed_at": event.ChangedAt,
	}
	p.logEvent("user.otp.changed", event.ChangedAt, payload)
	return nil
}

// PublishNotificationSent logs notification.sent events.
func (p *StubPublisher) PublishNotificationSent(_ context.Context, event domain.NotificationSentEvent) error {
	payload := map[string]any{
		"message":    event.Message,
		"todo_count": event.TodoCount,
		"sent_at":    event.SentAt,
	}
	p.logEvent("notification.sent", event.SentAt, payload)
	return nil
}

var _ port.EventPublisher = (*StubPublisher)(nil)
