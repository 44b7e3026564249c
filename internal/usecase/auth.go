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
	"github.com/HubertYGuan/FEINT/internal/infra/config"
	"github.com/HubertYGuan/FEINT/internal/infra/logger"
	"github.com/HubertYGuan/FEINT/internal/infra/security"
	"github.com/HubertYGuan/FEINT/internal/repository"
)

var (
	// ErrInvalidCredentials covers bad username, bad password, and disabled
	// accounts alike, so the caller cannot enumerate which one it hit.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidOTP indicates the one-time code failed; the attempt stays retryable.
	ErrInvalidOTP = errors.New("invalid one-time code")
	// ErrNoPendingLogin indicates there is no in-flight attempt, or it is not at
	// the OTP step. Surfaced as a generic unauthorized at the boundary.
	ErrNoPendingLogin = errors.New("no pending login attempt")
)

const attemptIDBytes = 32

// AuthService drives the login sequence: password verification, the optional
// OTP challenge, and token issuance. Every in-flight sequence is parked in the
// pending-login store under its own attempt ID between the two steps.
type AuthService struct {
	cfg     *config.AppConfig
	users   port.UserRepository
	pending port.PendingLoginStore
	tokens  *TokenService
	logger  *zap.Logger
	now     func() time.Time
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(cfg *config.AppConfig, users port.UserRepository, pending port.PendingLoginStore, tokens *TokenService, log *zap.Logger) *AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthService{
		cfg:     cfg,
		users:   users,
		pending: pending,
		tokens:  tokens,
		logger:  log,
		now:     time.Now,
	}
}

// WithClock overrides the internal clock, used in tests.
func (s *AuthService) WithClock(clock func() time.Time) *AuthService {
	if clock != nil {
		s.now = clock
	}
	return s
}

// SubmitPassword runs the first step of the login sequence. On a credential
// match it parks the attempt in the pending-login store and returns the
// response: SUCCESS with a token when no second factor is configured,
// OTP_REQUIRED without one otherwise. Unknown usernames burn the same hashing
// cost as wrong passwords, and disabled accounts report the same failure, so
// none of the three are distinguishable from outside.
func (s *AuthService) SubmitPassword(ctx context.Context, username, password string) (*domain.LoginResponse, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			security.DummyVerifyPassword()
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok || user.Disabled {
		s.logger.Info("login rejected",
			zap.String("username", logger.MaskUsername(username)),
			zap.Bool("disabled", user.Disabled),
		)
		return nil, ErrInvalidCredentials
	}

	attemptID, err := security.GenerateSecureToken(attemptIDBytes)
	if err != nil {
		return nil, fmt.Errorf("generate attempt id: %w", err)
	}

	outcome := domain.LoginOutcomeSuccess
	token := ""
	if user.OTPEnabled {
		outcome = domain.LoginOutcomeOTPRequired
	} else {
		token, err = s.tokens.Issue(ctx, user.Username)
		if err != nil {
			return nil, fmt.Errorf("issue token: %w", err)
		}
	}

	now := s.now().UTC()
	pendingTTL := s.cfg.Login.PendingTTL
	if pendingTTL <= 0 {
		pendingTTL = 5 * time.Minute
	}

	if err := s.pending.Put(ctx, domain.PendingLogin{
		AttemptID: attemptID,
		Username:  user.Username,
		Outcome:   outcome,
		Token:     token,
		CreatedAt: now,
		ExpiresAt: now.Add(pendingTTL),
	}); err != nil {
		return nil, fmt.Errorf("store pending login: %w", err)
	}

	s.logger.Info("password step completed",
		zap.String("username", logger.MaskUsername(user.Username)),
		zap.String("outcome", string(outcome)),
	)

	return &domain.LoginResponse{AttemptID: attemptID, Outcome: outcome, Token: token}, nil
}

// SubmitOTP runs the second step against the stored attempt, never against
// fresh credentials, so a caller cannot replay codes against an identity it
// has not authenticated. A failed code leaves the attempt parked at
// INVALID_OTP and retryable; the error returned alongside the response is
// ErrInvalidOTP in that case.
//
// When enablingOTP is set, a SUCCESS or INVALID_OTP attempt is forced back to
// OTP_REQUIRED before evaluation. This re-enters the challenge path for a user
// confirming brand-new OTP enrollment rather than logging in.
func (s *AuthService) SubmitOTP(ctx context.Context, attemptID, code string, enablingOTP bool) (*domain.LoginResponse, error) {
	pending, err := s.pending.Get(ctx, strings.TrimSpace(attemptID))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoPendingLogin
		}
		return nil, fmt.Errorf("fetch pending login: %w", err)
	}

	if enablingOTP && (pending.Outcome == domain.LoginOutcomeSuccess || pending.Outcome == domain.LoginOutcomeInvalidOTP) {
		pending.Outcome = domain.LoginOutcomeOTPRequired
	}

	if !pending.AwaitingOTP() {
		return nil, ErrNoPendingLogin
	}

	user, err := s.users.GetByUsername(ctx, pending.Username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if user.Disabled {
		return nil, ErrInvalidCredentials
	}

	if !security.VerifyTOTP(code, user.TOTPSecret, s.now()) {
		pending.Outcome = domain.LoginOutcomeInvalidOTP
		pending.Token = ""
		if err := s.pending.Put(ctx, *pending); err != nil {
			return nil, fmt.Errorf("store pending login: %w", err)
		}

		s.logger.Info("otp rejected", zap.String("username", logger.MaskUsername(user.Username)))
		return &domain.LoginResponse{AttemptID: pending.AttemptID, Outcome: domain.LoginOutcomeInvalidOTP}, ErrInvalidOTP
	}

	token, err := s.tokens.Issue(ctx, user.Username)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	pending.Outcome = domain.LoginOutcomeSuccess
	pending.Token = token
	if err := s.pending.Put(ctx, *pending); err != nil {
		return nil, fmt.Errorf("store pending login: %w", err)
	}

	s.logger.Info("otp accepted", zap.String("username", logger.MaskUsername(user.Username)))

	return &domain.LoginResponse{AttemptID: pending.AttemptID, Outcome: domain.LoginOutcomeSuccess, Token: token}, nil
}

// IssueToken exposes the already-computed token of a completed attempt. It
// re-derives nothing; anything but a stored SUCCESS outcome is unauthorized.
func (s *AuthService) IssueToken(ctx context.Context, attemptID string) (*domain.LoginResponse, error) {
	pending, err := s.pending.Get(ctx, strings.TrimSpace(attemptID))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoPendingLogin
		}
		return nil, fmt.Errorf("fetch pending login: %w", err)
	}

	if pending.Outcome != domain.LoginOutcomeSuccess || pending.Token == "" {
		return nil, ErrNoPendingLogin
	}

	return &domain.LoginResponse{AttemptID: pending.AttemptID, Outcome: pending.Outcome, Token: pending.Token}, nil
}
