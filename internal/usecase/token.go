package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/HubertYGuan/FEINT/internal/core/domain"
	"github.com/HubertYGuan/FEINT/internal/core/port"
	"github.com/HubertYGuan/FEINT/internal/infra/config"
	"github.com/HubertYGuan/FEINT/internal/repository"
)

var (
	// ErrInvalidToken indicates the provided bearer token is malformed or signature validation failed.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired indicates the provided bearer token has expired.
	ErrTokenExpired = errors.New("token expired")
	// ErrUnknownSubject indicates the token subject no longer exists or is disabled.
	ErrUnknownSubject = errors.New("unknown or disabled subject")
)

// TokenService signs and verifies the short-lived bearer tokens that bind a
// username to an expiry. Tokens are stateless; identity is always re-read from
// the credential store, never trusted from the payload.
type TokenService struct {
	cfg   *config.AppConfig
	users port.UserRepository
	now   func() time.Time
}

// NewTokenService constructs a TokenService instance.
func NewTokenService(cfg *config.AppConfig, users port.UserRepository) *TokenService {
	return &TokenService{
		cfg:   cfg,
		users: users,
		now:   time.Now,
	}
}

// WithClock overrides the internal clock, used in tests.
func (s *TokenService) WithClock(clock func() time.Time) *TokenService {
	if clock != nil {
		s.now = clock
	}
	return s
}

// Issue signs a token for the username using the configured default lifetime.
func (s *TokenService) Issue(ctx context.Context, username string) (string, error) {
	ttl := s.cfg.JWT.AccessTokenTTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return s.IssueWithTTL(ctx, username, ttl)
}

// IssueWithTTL signs a token with an explicit lifetime. The username is
// re-checked against the credential store at issuance time; a stale binding
// fails with ErrUnknownSubject. The ttl is used as given, so a zero ttl
// produces a token that is already expired on verification.
func (s *TokenService) IssueWithTTL(ctx context.Context, username string, ttl time.Duration) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return "", fmt.Errorf("username is required")
	}

	if _, err := s.users.GetByUsername(ctx, username); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrUnknownSubject
		}
		return "", fmt.Errorf("lookup user: %w", err)
	}

	now := s.now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   username,
		Issuer:    s.cfg.App.Name,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWT.Secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}

// Verify validates signature and expiry, then reconstructs the authenticated
// identity with a fresh read of the credential store. A subject that has been
// removed or disabled since issuance is rejected even though the token itself
// is still valid.
func (s *TokenService) Verify(ctx context.Context, token string) (*domain.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidToken
	}

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWT.Secret), nil
	}, jwt.WithIssuer(s.cfg.App.Name), jwt.WithTimeFunc(func() time.Time { return s.now() }))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	if parsed == nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	username := strings.TrimSpace(claims.Subject)
	if username == "" {
		return nil, ErrInvalidToken
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnknownSubject
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if user.Disabled {
		return nil, ErrUnknownSubject
	}

	return user, nil
}
