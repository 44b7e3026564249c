package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/HubertYGuan/FEINT/internal/infra/security"
)

func TestRegisterCreatesCredentialRecord(t *testing.T) {
	repo := newStubUserRepo()
	publisher := &stubPublisher{}
	svc := NewRegistrationService(repo, security.DefaultPasswordValidator(), publisher, nil)

	user, err := svc.Register(context.Background(), "alice", "pw1")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if user.Username != "alice" {
		t.Fatalf("username = %s, want alice", user.Username)
	}
	if user.Disabled || user.OTPEnabled {
		t.Fatalf("new accounts must start enabled with otp off, got %+v", user)
	}
	if user.TOTPSecret == "" {
		t.Fatal("totp secret must be generated at registration")
	}

	ok, err := security.VerifyPassword("pw1", user.PasswordHash)
	if err != nil || !ok {
		t.Fatalf("stored hash does not verify original password (ok=%v err=%v)", ok, err)
	}

	stored, err := repo.GetByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatalf("user not persisted: %v", err)
	}
	if stored.PasswordHash != user.PasswordHash {
		t.Fatal("persisted hash differs from returned hash")
	}

	if len(publisher.registered) != 1 || publisher.registered[0].Username != "alice" {
		t.Fatalf("registered events = %+v, want one for alice", publisher.registered)
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewRegistrationService(repo, nil, &stubPublisher{}, nil)

	if _, err := svc.Register(context.Background(), "alice", "pw1"); err != nil {
		t.Fatalf("first Register: %v", err)
	}

	if _, err := svc.Register(context.Background(), "alice", "other"); !errors.Is(err, ErrUserExists) {
		t.Fatalf("err = %v, want ErrUserExists", err)
	}
}

func TestRegisterInputValidation(t *testing.T) {
	svc := NewRegistrationService(newStubUserRepo(), nil, &stubPublisher{}, nil)

	cases := []struct {
		name     string
		username string
		password string
	}{
		{"empty username", "", "pw1"},
		{"blank username", "   ", "pw1"},
		{"empty password", "alice", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Register(context.Background(), tc.username, tc.password); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("err = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestRegisterEnforcesConfiguredPolicy(t *testing.T) {
	validator := security.NewPasswordValidator(
		security.MinLengthRule(8),
		security.RequirePasswordStrengthRule(3),
	)
	svc := NewRegistrationService(newStubUserRepo(), validator, &stubPublisher{}, nil)

	if _, err := svc.Register(context.Background(), "alice", "pw1"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput under strict policy", err)
	}

	if _, err := svc.Register(context.Background(), "alice", "c0rrect-Horse-battery!"); err != nil {
		t.Fatalf("strong password rejected: %v", err)
	}
}
