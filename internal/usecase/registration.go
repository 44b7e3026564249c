package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/HubertYGuan/FEINT/internal/core/domain"
	"github.com/HubertYGuan/FEINT/internal/core/port"
	"github.com/HubertYGuan/FEINT/internal/infra/logger"
	"github.com/HubertYGuan/FEINT/internal/infra/security"
	"github.com/HubertYGuan/FEINT/internal/repository"
)

var (
	// ErrUserExists indicates the username is already taken.
	ErrUserExists = errors.New("user already exists")
	// ErrInvalidInput indicates the registration payload is missing or rejected by policy.
	ErrInvalidInput = errors.New("invalid registration input")
)

// RegistrationService handles new account onboarding. Each account gets its
// TOTP secret at creation; enabling the second factor later only flips a flag.
type RegistrationService struct {
	users             port.UserRepository
	passwordValidator *security.PasswordValidator
	events            port.EventPublisher
	logger            *zap.Logger
	now               func() time.Time
}

// NewRegistrationService constructs a registration service.
func NewRegistrationService(users port.UserRepository, validator *security.PasswordValidator, events port.EventPublisher, log *zap.Logger) *RegistrationService {
	if validator == nil {
		validator = security.DefaultPasswordValidator()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &RegistrationService{
		users:             users,
		passwordValidator: validator,
		events:            events,
		logger:            log,
		now:               time.Now,
	}
}

// Register creates a credential record for the username. The account starts
// with the second factor disabled and the account enabled.
func (s *RegistrationService) Register(ctx context.Context, username, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidInput
	}

	if err := s.passwordValidator.Validate(password); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	passwordHash, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	secret, err := security.GenerateTOTPSecret()
	if err != nil {
		return nil, fmt.Errorf("generate totp secret: %w", err)
	}

	now := s.now().UTC()
	user := domain.User{
		Username:     username,
		Disabled:     false,
		PasswordHash: passwordHash,
		TOTPSecret:   secret,
		OTPEnabled:   false,
		RegisteredAt: now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	if s.events != nil {
		if err := s.events.PublishUserRegistered(ctx, domain.UserRegisteredEvent{
			Username:     username,
			RegisteredAt: now,
		}); err != nil {
			s.logger.Warn("publish user registered event failed", zap.Error(err))
		}
	}

	s.logger.Info("user registered", zap.String("username", logger.MaskUsername(username)))

	return &user, nil
}
