package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/HubertYGuan/FEINT/internal/core/domain"
	"github.com/HubertYGuan/FEINT/internal/core/port"
	"github.com/HubertYGuan/FEINT/internal/repository"
)

// NotificationService runs a notification sweep: announce the current todo
// list to the calendar, log the sweep in the event table and prune the
// one-shot entries.
type NotificationService struct {
	todos    port.TodoRepository
	eventLog port.EventRepository
	calendar port.CalendarNotifier
	events   port.EventPublisher
	logger   *zap.Logger
	now      func() time.Time
}

// NewNotificationService constructs a notification service.
func NewNotificationService(todos port.TodoRepository, eventLog port.EventRepository, calendar port.CalendarNotifier, events port.EventPublisher, log *zap.Logger) *NotificationService {
	if log == nil {
		log = zap.NewNop()
	}
	return &NotificationService{
		todos:    todos,
		eventLog: eventLog,
		calendar: calendar,
		events:   events,
		logger:   log,
		now:      time.Now,
	}
}

// WithClock overrides the time source. Intended for tests.
func (s *NotificationService) WithClock(now func() time.Time) *NotificationService {
	s.now = now
	return s
}

// Notify performs one sweep and returns the event-log entry it recorded.
// A calendar delivery failure is logged and does not abort the sweep.
func (s *NotificationService) Notify(ctx context.Context, message string) (*domain.Event, error) {
	todos, err := s.todos.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}

	entries := make([]string, 0, len(todos))
	for _, todo := range todos {
		entries = append(entries, todo.Description)
	}

	if s.calendar != nil {
		if err := s.calendar.Notify(ctx, entries); err != nil {
			s.logger.Warn("calendar notification failed", zap.Error(err))
		}
	}

	now := s.now()
	event := domain.Event{
		Timestamp:    now,
		RawTimestamp: float64(now.UnixNano()) / float64(time.Second),
		Description:  fmt.Sprintf("Notification: %s", message),
	}
	if _, err := s.eventLog.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("record event: %w", err)
	}

	if err := s.todos.DeleteNonRepeating(ctx); err != nil {
		return nil, fmt.Errorf("prune non-repeating todos: %w", err)
	}

	if s.events != nil {
		if err := s.events.PublishNotificationSent(ctx, domain.NotificationSentEvent{
			Message:   message,
			TodoCount: len(entries),
			SentAt:    now.UTC(),
		}); err != nil {
			s.logger.Warn("publish notification event failed", zap.Error(err))
		}
	}

	latest, err := s.eventLog.Latest(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("event log empty after sweep")
		}
		return nil, fmt.Errorf("load latest event: %w", err)
	}

	s.logger.Info("notification sweep completed", zap.Int("todo_count", len(entries)))
	return latest, nil
}

// Events returns the full event log.
func (s *NotificationService) Events(ctx context.Context) ([]domain.Event, error) {
	events, err := s.eventLog.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

// DeleteEvent removes one event-log entry.
func (s *NotificationService) DeleteEvent(ctx context.Context, id int64) error {
	if err := s.eventLog.DeleteByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("event %d: %w", id, repository.ErrNotFound)
		}
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}
