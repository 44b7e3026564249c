package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/HubertYGuan/FEINT/internal/core/domain"
	"github.com/HubertYGuan/FEINT/internal/core/port"
	"github.com/HubertYGuan/FEINT/internal/infra/config"
)

const schemaVersion = "1.0"

// EventPublisher implements port.EventPublisher using Kafka.
type EventPublisher struct {
	producer *Producer
	logger   *zap.Logger
	appCfg   config.AppSettings
}

// NewEventPublisher constructs a Kafka-backed event publisher.
func NewEventPublisher(producer *Producer, appCfg config.AppSettings, logger *zap.Logger) *EventPublisher {
	return &EventPublisher{producer: producer, appCfg: appCfg, logger: logger}
}

type envelopeMetadata map[string]string

type eventEnvelope struct {
	EventID   string           `json:"event_id"`
	EventType string           `json:"event_type"`
	Timestamp time.Time        `json:"timestamp"`
	Version   string           `json:"version"`
	Payload   any              `json:"payload"`
	Metadata  envelopeMetadata `json:"metadata,omitempty"`
}

func (p *EventPublisher) publish(ctx context.Context, eventType string, ts time.Time, payload any) error {
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	metadata := envelopeMetadata{
		"service":     p.appCfg.Name,
		"environment": p.appCfg.Env,
	}

	if span := trace.SpanFromContext(ctx); span != nil {
		if sc := span.SpanContext(); sc.IsValid() {
			metadata["trace_id"] = sc.TraceID().String()
		}
	}

	envelope := eventEnvelope{
		EventID:   uuid.NewString(),
		EventType: eventType,
		Timestamp: ts.UTC(),
		Version:   schemaVersion,
		Payload:   payload,
		Metadata:  metadata,
	}

	bytes, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.producer.TopicName(eventType),
		Value: sarama.ByteEncoder(bytes),
	}

	select {
	case p.producer.Producer().Input() <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PublishUserRegistered publishes feint.user.registered events.
func (p *EventPublisher) PublishUserRegistered(ctx context.Context, event domain.UserRegisteredEvent) error {
	payload := struct {
		Username     string    `json:"username"`
		RegisteredAt time.Time `json:"registered_at"`
	}{
		Username:     event.Username,
		RegisteredAt: event.RegisteredAt.UTC(),
	}

	return p.publish(ctx, "user.registered", event.RegisteredAt, payload)
}

// PublishOTPStatusChanged publishes feint.user.otp.changed events.
func (p *EventPublisher) PublishOTPStatusChanged(ctx context.Context, event domain.OTPStatusChangedEvent) error {
	payload := struct {
		Username  string    `json:"username"`
		Enabled   bool      `json:"enabled"`
		ChangedAt time.Time `json:"changed_at"`
	}{
		Username:  event.Username,
		Enabled:   event.Enabled,
		ChangedAt: event.ChangedAt.UTC(),
	}

	return p.publish(ctx, "user.otp.changed", event.ChangedAt, payload)
}

// PublishNotificationSent publishes feint.notification.sent events.
func (p *EventPublisher) PublishNotificationSent(ctx context.Context, event domain.NotificationSentEvent) error {
	payload := struct {
		Message   string    `json:"message"`
		TodoCount int       `json:"todo_count"`
		SentAt    time.Time `json:"sent_at"`
	}{
		Message:   event.Message,
		TodoCount: event.TodoCount,
		SentAt:    event.SentAt.UTC(),
	}

	return p.publish(ctx, "notification.sent", event.SentAt, payload)
}

var _ port.EventPublisher = (*EventPublisher)(nil)
