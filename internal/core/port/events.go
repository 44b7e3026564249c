package port

import (
	"context"

	"github.com/HubertYGuan/FEINT/internal/core/domain"
)

// EventPublisher publishes domain events to the message bus.
type EventPublisher interface {
	PublishUserRegistered(ctx context.Context, event domain.UserRegisteredEvent) error
	PublishOTPStatusChanged(ctx context.Context, event domain.OTPStatusChangedEvent) error
	PublishNotificationSent(ctx context.Context, event domain.NotificationSentEvent) error
}

// CalendarNotifier delivers a one-shot reminder to the external calendar. The
// entries are the descriptions of the todos being announced.
type CalendarNotifier interface {
	Notify(ctx context.Context, entries []string) error
}
