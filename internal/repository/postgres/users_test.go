package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/HubertYGuan/FEINT/internal/core/domain"
	"github.com/HubertYGuan/FEINT/internal/repository"
)

func TestUserRepository_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepository(mock)

	registeredAt := time.Now().UTC()
	user := domain.User{
		Username:     "alice",
		Email:        "alice@example.com",
		FullName:     "Alice Example",
		Disabled:     false,
		PasswordHash: "$argon2id$v=19$m=65536,t=3,p=4$c2FsdA$aGFzaA",
		TOTPSecret:   "JBSWY3DPEHPK3PXP",
		OTPEnabled:   false,
		RegisteredAt: registeredAt,
	}

	mock.ExpectExec(`INSERT INTO users`).
		WithArgs(
			user.Username,
			user.Email,
			user.FullName,
			user.Disabled,
			user.PasswordHash,
			user.TOTPSecret,
			user.OTPEnabled,
			user.RegisteredAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_CreateOmitsEmptyOptionalFields(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepository(mock)

	user := domain.User{
		Username:     "bob",
		PasswordHash: "hash",
		TOTPSecret:   "secret",
		RegisteredAt: time.Now().UTC(),
	}

	mock.ExpectExec(`INSERT INTO users`).
		WithArgs(
			user.Username,
			nil,
			nil,
			false,
			user.PasswordHash,
			user.TOTPSecret,
			false,
			user.RegisteredAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_CreateDuplicate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepository(mock)

	mock.ExpectExec(`INSERT INTO users`).
		WithArgs(
			"alice",
			nil,
			nil,
			false,
			"hash",
			"secret",
			false,
			pgxmock.AnyArg(),
		).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err = repo.Create(context.Background(), domain.User{
		Username:     "alice",
		PasswordHash: "hash",
		TOTPSecret:   "secret",
		RegisteredAt: time.Now().UTC(),
	})
	if !errors.Is(err, repository.ErrDuplicate) {
		t.Fatalf("err = %v, want repository.ErrDuplicate", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_GetByUsername(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepository(mock)

	registeredAt := time.Now().UTC()
	rows := pgxmock.NewRows([]string{
		"username", "email", "full_name", "disabled", "hashed_password", "secret_key", "otp_enabled", "registered_at",
	}).AddRow(
		"alice", "alice@example.com", "Alice Example", false, "hash", "secret", true, registeredAt,
	)

	mock.ExpectQuery(`SELECT .*FROM users`).WithArgs("alice").WillReturnRows(rows)

	user, err := repo.GetByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatalf("GetByUsername returned error: %v", err)
	}
	if user.Username != "alice" || user.Email != "alice@example.com" || user.FullName != "Alice Example" {
		t.Fatalf("unexpected user: %+v", user)
	}
	if !user.OTPEnabled || user.Disabled {
		t.Fatalf("unexpected flags: %+v", user)
	}
	if user.PasswordHash != "hash" || user.TOTPSecret != "secret" {
		t.Fatalf("unexpected credential material: %+v", user)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_GetByUsernameHandlesNullColumns(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepository(mock)

	rows := pgxmock.NewRows([]string{
		"username", "email", "full_name", "disabled", "hashed_password", "secret_key", "otp_enabled", "registered_at",
	}).AddRow(
		"bob", nil, nil, false, "hash", "secret", false, time.Now().UTC(),
	)

	mock.ExpectQuery(`SELECT .*FROM users`).WithArgs("bob").WillReturnRows(rows)

	user, err := repo.GetByUsername(context.Background(), "bob")
	if err != nil {
		t.Fatalf("GetByUsername returned error: %v", err)
	}
	if user.Email != "" || user.FullName != "" {
		t.Fatalf("expected empty optional fields, got %+v", user)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_GetByUsernameMiss(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepository(mock)

	rows := pgxmock.NewRows([]string{
		"username", "email", "full_name", "disabled", "hashed_password", "secret_key", "otp_enabled", "registered_at",
	})

	mock.ExpectQuery(`SELECT .*FROM users`).WithArgs("ghost").WillReturnRows(rows)

	if _, err := repo.GetByUsername(context.Background(), "ghost"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("err = %v, want repository.ErrNotFound", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_UpdateOTPEnabled(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepository(mock)

	mock.ExpectExec(`UPDATE users`).
		WithArgs(true, "alice").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	if err := repo.UpdateOTPEnabled(context.Background(), "alice", true); err != nil {
		t.Fatalf("UpdateOTPEnabled returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_UpdateOTPEnabledMiss(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepository(mock)

	mock.ExpectExec(`UPDATE users`).
		WithArgs(false, "ghost").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	if err := repo.UpdateOTPEnabled(context.Background(), "ghost", false); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("err = %v, want repository.ErrNotFound", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
