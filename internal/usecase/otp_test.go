package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/HubertYGuan/FEINT/internal/core/domain"
)

func TestOTPEnableDisable(t *testing.T) {
	repo := newStubUserRepo(domain.User{Username: "alice", TOTPSecret: mustSecret(t)})
	publisher := &stubPublisher{}
	svc := NewOTPService(testConfig(), repo, publisher, nil)

	if err := svc.Enable(context.Background(), "alice"); err != nil {
		t.Fatalf("Enable: %v", err)
	}
	user, _ := repo.GetByUsername(context.Background(), "alice")
	if !user.OTPEnabled {
		t.Fatal("otp flag not persisted")
	}

	if err := svc.Disable(context.Background(), "alice"); err != nil {
		t.Fatalf("Disable: %v", err)
	}
	user, _ = repo.GetByUsername(context.Background(), "alice")
	if user.OTPEnabled {
		t.Fatal("otp flag not cleared")
	}

	if len(publisher.otpChanged) != 2 {
		t.Fatalf("otp events = %d, want 2", len(publisher.otpChanged))
	}
	if !publisher.otpChanged[0].Enabled || publisher.otpChanged[1].Enabled {
		t.Fatalf("event order = %+v, want enable then disable", publisher.otpChanged)
	}
}

func TestOTPToggleUnknownUser(t *testing.T) {
	svc := NewOTPService(testConfig(), newStubUserRepo(), &stubPublisher{}, nil)

	if err := svc.Enable(context.Background(), "ghost"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("err = %v, want ErrUserNotFound", err)
	}
}

func TestProvisioningURI(t *testing.T) {
	secret := mustSecret(t)
	repo := newStubUserRepo(domain.User{Username: "alice", TOTPSecret: secret})
	svc := NewOTPService(testConfig(), repo, &stubPublisher{}, nil)

	uri, err := svc.ProvisioningURI(context.Background(), "alice")
	if err != nil {
		t.Fatalf("ProvisioningURI: %v", err)
	}

	if !strings.HasPrefix(uri, "otpauth://totp/") {
		t.Fatalf("uri = %s, want otpauth://totp/ prefix", uri)
	}
	if !strings.Contains(uri, "alice") {
		t.Fatalf("uri = %s, want account name embedded", uri)
	}
	if !strings.Contains(uri, "feint-test") {
		t.Fatalf("uri = %s, want issuer embedded", uri)
	}
}
