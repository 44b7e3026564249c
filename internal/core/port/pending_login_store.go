package port

import (
	"context"

	"github.com/HubertYGuan/FEINT/internal/core/domain"
)

// PendingLoginStore holds the in-flight state of login sequences between the
// password step and the OTP step. Implementations must key entries by attempt ID
// and bound their lifetime, so two concurrent sequences cannot clobber each other.
type PendingLoginStore interface {
	Put(ctx context.Context, pending domain.PendingLogin) error
	Get(ctx context.Context, attemptID string) (*domain.PendingLogin, error)
	Delete(ctx context.Context, attemptID string) error
}
