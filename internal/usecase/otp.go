package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/HubertYGuan/FEINT/internal/core/domain"
	"github.com/HubertYGuan/FEINT/internal/core/port"
	"github.com/HubertYGuan/FEINT/internal/infra/config"
	"github.com/HubertYGuan/FEINT/internal/infra/logger"
	"github.com/HubertYGuan/FEINT/internal/infra/security"
	"github.com/HubertYGuan/FEINT/internal/repository"
)

// ErrUserNotFound indicates the target account does not exist.
var ErrUserNotFound = errors.New("user not found")

// OTPService toggles the second factor for an account and exposes the
// provisioning URI used to enroll an authenticator app.
type OTPService struct {
	cfg    *config.AppConfig
	users  port.UserRepository
	events port.EventPublisher
	logger *zap.Logger
	now    func() time.Time
}

// NewOTPService constructs an OTP management service.
func NewOTPService(cfg *config.AppConfig, users port.UserRepository, events port.EventPublisher, log *zap.Logger) *OTPService {
	if log == nil {
		log = zap.NewNop()
	}
	return &OTPService{
		cfg:    cfg,
		users:  users,
		events: events,
		logger: log,
		now:    time.Now,
	}
}

// Enable turns the second factor on for the user. The caller must have
// confirmed a valid code first; this only persists the flag.
func (s *OTPService) Enable(ctx context.Context, username string) error {
	return s.setEnabled(ctx, username, true)
}

// Disable turns the second factor off for the user.
func (s *OTPService) Disable(ctx context.Context, username string) error {
	return s.setEnabled(ctx, username, false)
}

func (s *OTPService) setEnabled(ctx context.Context, username string, enabled bool) error {
	if err := s.users.UpdateOTPEnabled(ctx, username, enabled); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("update otp flag: %w", err)
	}

	if s.events != nil {
		if err := s.events.PublishOTPStatusChanged(ctx, domain.OTPStatusChangedEvent{
			Username:  username,
			Enabled:   enabled,
			ChangedAt: s.now().UTC(),
		}); err != nil {
			s.logger.Warn("publish otp status event failed", zap.Error(err))
		}
	}

	s.logger.Info("otp status changed",
		zap.String("username", logger.MaskUsername(username)),
		zap.Bool("enabled", enabled))

	return nil
}

// ProvisioningURI returns the otpauth:// URI for the user's stored secret.
func (s *OTPService) ProvisioningURI(ctx context.Context, username string) (string, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrUserNotFound
		}
		return "", fmt.Errorf("load user: %w", err)
	}

	uri, err := security.ProvisioningURI(user.TOTPSecret, user.Username, s.cfg.TOTP.Issuer)
	if err != nil {
		return "", fmt.Errorf("build provisioning uri: %w", err)
	}
	return uri, nil
}
