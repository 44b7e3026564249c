package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	red "github.com/redis/go-redis/v9"

	"github.com/HubertYGuan/FEINT/internal/core/domain"
	"github.com/HubertYGuan/FEINT/internal/repository"
)

func newTestRedis(t *testing.T) (*red.Client, *miniredis.Miniredis) {
	t.Helper()

	server, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	client := red.NewClient(&red.Options{Addr: server.Addr()})

	t.Cleanup(func() {
		_ = client.Close()
		server.Close()
	})

	return client, server
}

func TestPendingLoginStore_PutAndGet(t *testing.T) {
	client, server := newTestRedis(t)
	store := NewPendingLoginStore(client, "pending-login", 5*time.Minute)

	now := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
	store.WithClock(func() time.Time { return now })

	pending := domain.PendingLogin{
		AttemptID: "attempt-1",
		Username:  "alice",
		Outcome:   domain.LoginOutcomeOTPRequired,
		CreatedAt: now,
		ExpiresAt: now.Add(5 * time.Minute),
	}

	if err := store.Put(context.Background(), pending); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}

	got, err := store.Get(context.Background(), "attempt-1")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got.Username != "alice" || got.Outcome != domain.LoginOutcomeOTPRequired {
		t.Fatalf("unexpected entry: %+v", got)
	}
	if got.Token != "" {
		t.Fatalf("expected empty token before the OTP step, got %q", got.Token)
	}
	if !got.CreatedAt.Equal(now) || !got.ExpiresAt.Equal(now.Add(5*time.Minute)) {
		t.Fatalf("timestamps = %v / %v", got.CreatedAt, got.ExpiresAt)
	}

	remaining := server.TTL("pending-login:attempt-1")
	if remaining <= 0 || remaining > 5*time.Minute {
		t.Fatalf("expected ttl within (0, 5m], got %v", remaining)
	}
}

func TestPendingLoginStore_PutReplacesState(t *testing.T) {
	client, _ := newTestRedis(t)
	store := NewPendingLoginStore(client, "pending-login", 5*time.Minute)

	ctx := context.Background()
	pending := domain.PendingLogin{
		AttemptID: "attempt-1",
		Username:  "alice",
		Outcome:   domain.LoginOutcomeOTPRequired,
	}
	if err := store.Put(ctx, pending); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}

	pending.Outcome = domain.LoginOutcomeSuccess
	pending.Token = "signed-token"
	if err := store.Put(ctx, pending); err != nil {
		t.Fatalf("second Put returned error: %v", err)
	}

	got, err := store.Get(ctx, "attempt-1")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got.Outcome != domain.LoginOutcomeSuccess || got.Token != "signed-token" {
		t.Fatalf("entry not replaced: %+v", got)
	}
}

func TestPendingLoginStore_AttemptsAreIsolated(t *testing.T) {
	client, _ := newTestRedis(t)
	store := NewPendingLoginStore(client, "pending-login", 5*time.Minute)

	ctx := context.Background()
	if err := store.Put(ctx, domain.PendingLogin{AttemptID: "a1", Username: "alice", Outcome: domain.LoginOutcomeOTPRequired}); err != nil {
		t.Fatalf("Put a1: %v", err)
	}
	if err := store.Put(ctx, domain.PendingLogin{AttemptID: "a2", Username: "bob", Outcome: domain.LoginOutcomeInvalidOTP}); err != nil {
		t.Fatalf("Put a2: %v", err)
	}

	first, err := store.Get(ctx, "a1")
	if err != nil {
		t.Fatalf("Get a1: %v", err)
	}
	if first.Username != "alice" || first.Outcome != domain.LoginOutcomeOTPRequired {
		t.Fatalf("a1 entry = %+v", first)
	}

	second, err := store.Get(ctx, "a2")
	if err != nil {
		t.Fatalf("Get a2: %v", err)
	}
	if second.Username != "bob" || second.Outcome != domain.LoginOutcomeInvalidOTP {
		t.Fatalf("a2 entry = %+v", second)
	}
}

func TestPendingLoginStore_GetMiss(t *testing.T) {
	client, _ := newTestRedis(t)
	store := NewPendingLoginStore(client, "pending-login", 5*time.Minute)

	if _, err := store.Get(context.Background(), "missing"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("err = %v, want repository.ErrNotFound", err)
	}
}

func TestPendingLoginStore_ExpiredEntryIsGone(t *testing.T) {
	client, server := newTestRedis(t)
	store := NewPendingLoginStore(client, "pending-login", time.Minute)

	ctx := context.Background()
	if err := store.Put(ctx, domain.PendingLogin{AttemptID: "a1", Username: "alice", Outcome: domain.LoginOutcomeOTPRequired}); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}

	server.FastForward(2 * time.Minute)

	if _, err := store.Get(ctx, "a1"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("err = %v, want repository.ErrNotFound after expiry", err)
	}
}

func TestPendingLoginStore_Delete(t *testing.T) {
	client, _ := newTestRedis(t)
	store := NewPendingLoginStore(client, "pending-login", time.Minute)

	ctx := context.Background()
	if err := store.Put(ctx, domain.PendingLogin{AttemptID: "a1", Username: "alice", Outcome: domain.LoginOutcomeSuccess, Token: "tok"}); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}

	if err := store.Delete(ctx, "a1"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}

	if err := store.Delete(ctx, "a1"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("err = %v, want repository.ErrNotFound on second delete", err)
	}
}
