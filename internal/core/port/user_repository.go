package port

import (
	"context"

	"github.com/HubertYGuan/FEINT/internal/core/domain"
)

// UserRepository exposes persistence behavior for credential records.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) error
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	UpdateOTPEnabled(ctx context.Context, username string, enabled bool) error
}
