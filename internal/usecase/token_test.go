package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/HubertYGuan/FEINT/internal/core/domain"
)

func TestTokenRoundTrip(t *testing.T) {
	cfg := testConfig()
	repo := newStubUserRepo(domain.User{Username: "alice", PasswordHash: "x"})
	tokens := NewTokenService(cfg, repo)

	now := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
	tokens.WithClock(func() time.Time { return now })

	signed, err := tokens.Issue(context.Background(), "alice")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	user, err := tokens.Verify(context.Background(), signed)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if user.Username != "alice" {
		t.Fatalf("subject = %s, want alice", user.Username)
	}
}

func TestTokenZeroTTLIsAlreadyExpired(t *testing.T) {
	cfg := testConfig()
	repo := newStubUserRepo(domain.User{Username: "alice"})
	tokens := NewTokenService(cfg, repo)

	now := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
	tokens.WithClock(func() time.Time { return now })

	signed, err := tokens.IssueWithTTL(context.Background(), "alice", 0)
	if err != nil {
		t.Fatalf("IssueWithTTL: %v", err)
	}

	// Verification happens strictly after issuance, so exp == iat has passed.
	tokens.WithClock(func() time.Time { return now.Add(time.Second) })

	if _, err := tokens.Verify(context.Background(), signed); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("err = %v, want ErrTokenExpired", err)
	}
}

func TestTokenExpiresAfterTTL(t *testing.T) {
	cfg := testConfig()
	repo := newStubUserRepo(domain.User{Username: "alice"})
	tokens := NewTokenService(cfg, repo)

	now := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
	tokens.WithClock(func() time.Time { return now })

	signed, err := tokens.IssueWithTTL(context.Background(), "alice", time.Minute)
	if err != nil {
		t.Fatalf("IssueWithTTL: %v", err)
	}

	tokens.WithClock(func() time.Time { return now.Add(30 * time.Second) })
	if _, err := tokens.Verify(context.Background(), signed); err != nil {
		t.Fatalf("token rejected before expiry: %v", err)
	}

	tokens.WithClock(func() time.Time { return now.Add(2 * time.Minute) })
	if _, err := tokens.Verify(context.Background(), signed); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("err = %v, want ErrTokenExpired", err)
	}
}

func TestTokenTamperingIsRejected(t *testing.T) {
	cfg := testConfig()
	repo := newStubUserRepo(domain.User{Username: "alice"})
	tokens := NewTokenService(cfg, repo)

	signed, err := tokens.Issue(context.Background(), "alice")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	tampered := signed[:len(signed)-2] + "xx"
	if _, err := tokens.Verify(context.Background(), tampered); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("err = %v, want ErrInvalidToken", err)
	}

	if _, err := tokens.Verify(context.Background(), "not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("err = %v, want ErrInvalidToken", err)
	}

	if _, err := tokens.Verify(context.Background(), ""); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("err = %v, want ErrInvalidToken for empty token", err)
	}
}

func TestTokenSubjectRecheckedOnVerify(t *testing.T) {
	cfg := testConfig()
	repo := newStubUserRepo(domain.User{Username: "alice"})
	tokens := NewTokenService(cfg, repo)

	signed, err := tokens.Issue(context.Background(), "alice")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	// Subject removed after issuance.
	repo.mu.Lock()
	delete(repo.users, "alice")
	repo.mu.Unlock()

	if _, err := tokens.Verify(context.Background(), signed); !errors.Is(err, ErrUnknownSubject) {
		t.Fatalf("err = %v, want ErrUnknownSubject after removal", err)
	}

	// Subject disabled after issuance.
	repo.mu.Lock()
	repo.users["alice"] = domain.User{Username: "alice", Disabled: true}
	repo.mu.Unlock()

	if _, err := tokens.Verify(context.Background(), signed); !errors.Is(err, ErrUnknownSubject) {
		t.Fatalf("err = %v, want ErrUnknownSubject for disabled subject", err)
	}
}

func TestIssueRequiresExistingSubject(t *testing.T) {
	cfg := testConfig()
	tokens := NewTokenService(cfg, newStubUserRepo())

	if _, err := tokens.Issue(context.Background(), "ghost"); !errors.Is(err, ErrUnknownSubject) {
		t.Fatalf("err = %v, want ErrUnknownSubject", err)
	}
}
