package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	red "github.com/redis/go-redis/v9"

	"github.com/HubertYGuan/FEINT/internal/core/domain"
	"github.com/HubertYGuan/FEINT/internal/repository"
)

const (
	defaultPendingLoginPrefix = "pending-login"

	fieldUsername  = "username"
	fieldOutcome   = "outcome"
	fieldToken     = "token"
	fieldCreatedAt = "created_at"
	fieldExpiresAt = "expires_at"
)

// PendingLoginStore persists in-flight login sequences in Redis, one hash per
// attempt ID. Keying per attempt is what keeps concurrent login sequences from
// overwriting each other's state between the password and OTP steps.
type PendingLoginStore struct {
	client *red.Client
	prefix string
	ttl    time.Duration
	now    func() time.Time
}

// NewPendingLoginStore constructs the store with the provided Redis client, key prefix, and entry TTL.
func NewPendingLoginStore(client *red.Client, keyPrefix string, ttl time.Duration) *PendingLoginStore {
	prefix := strings.TrimSpace(keyPrefix)
	if prefix == "" {
		prefix = defaultPendingLoginPrefix
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	return &PendingLoginStore{
		client: client,
		prefix: prefix,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Put stores or replaces the in-flight state for the attempt.
func (s *PendingLoginStore) Put(ctx context.Context, pending domain.PendingLogin) error {
	if strings.TrimSpace(pending.AttemptID) == "" {
		return errors.New("attempt id is required")
	}
	if strings.TrimSpace(pending.Username) == "" {
		return errors.New("username is required")
	}

	now := s.now().UTC()
	createdAt := pending.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}
	expiresAt := pending.ExpiresAt
	if expiresAt.IsZero() {
		expiresAt = now.Add(s.ttl)
	}

	key := s.key(pending.AttemptID)

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key, map[string]any{
		fieldUsername:  pending.Username,
		fieldOutcome:   string(pending.Outcome),
		fieldToken:     pending.Token,
		fieldCreatedAt: strconv.FormatInt(createdAt.Unix(), 10),
		fieldExpiresAt: strconv.FormatInt(expiresAt.Unix(), 10),
	})
	pipe.Expire(ctx, key, expiresAt.Sub(now))

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis store pending login: %w", err)
	}

	return nil
}

// Get retrieves the in-flight state for the attempt.
func (s *PendingLoginStore) Get(ctx context.Context, attemptID string) (*domain.PendingLogin, error) {
	attemptID = strings.TrimSpace(attemptID)
	if attemptID == "" {
		return nil, errors.New("attempt id is required")
	}

	values, err := s.client.HGetAll(ctx, s.key(attemptID)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis fetch pending login: %w", err)
	}
	if len(values) == 0 {
		return nil, repository.ErrNotFound
	}

	username := strings.TrimSpace(values[fieldUsername])
	if username == "" {
		return nil, repository.ErrNotFound
	}

	createdAt, err := parseUnix(values[fieldCreatedAt])
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}

	expiresAt, err := parseUnix(values[fieldExpiresAt])
	if err != nil {
		return nil, fmt.Errorf("parse expires_at: %w", err)
	}

	return &domain.PendingLogin{
		AttemptID: attemptID,
		Username:  username,
		Outcome:   domain.LoginOutcome(values[fieldOutcome]),
		Token:     values[fieldToken],
		CreatedAt: createdAt,
		ExpiresAt: expiresAt,
	}, nil
}

// Delete removes the in-flight state for the attempt.
func (s *PendingLoginStore) Delete(ctx context.Context, attemptID string) error {
	attemptID = strings.TrimSpace(attemptID)
	if attemptID == "" {
		return errors.New("attempt id is required")
	}

	deleted, err := s.client.Del(ctx, s.key(attemptID)).Result()
	if err != nil {
		return fmt.Errorf("redis delete pending login: %w", err)
	}
	if deleted == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// WithClock overrides the internal clock, used in tests.
func (s *PendingLoginStore) WithClock(clock func() time.Time) {
	if clock != nil {
		s.now = clock
	}
}

func (s *PendingLoginStore) key(attemptID string) string {
	return fmt.Sprintf("%s:%s", s.prefix, attemptID)
}

func parseUnix(raw string) (time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return time.Time{}, errors.New("timestamp is empty")
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(v, 0).UTC(), nil
}
