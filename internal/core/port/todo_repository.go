package port

import (
	"context"

	"github.com/HubertYGuan/FEINT/internal/core/domain"
)

// TodoRepository exposes persistence behavior for reminder entries.
type TodoRepository interface {
	List(ctx context.Context) ([]domain.Todo, error)
	Create(ctx context.Context, description string, repeats bool) (*domain.Todo, error)
	Update(ctx context.Context, id int64, description *string, repeats *bool) error
	DeleteByID(ctx context.Context, id int64) error
	DeleteByDescription(ctx context.Context, description string) error
	DeleteNonRepeating(ctx context.Context) error
}

// EventRepository exposes persistence behavior for the notification event log.
type EventRepository interface {
	List(ctx context.Context) ([]domain.Event, error)
	Create(ctx context.Context, event domain.Event) (*domain.Event, error)
	Latest(ctx context.Context) (*domain.Event, error)
	DeleteByID(ctx context.Context, id int64) error
}

// WhitelistRepository lists the client IPs allowed through the whitelist middleware.
type WhitelistRepository interface {
	ListIPs(ctx context.Context) ([]string, error)
}
