package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/HubertYGuan/FEINT/internal/core/domain"
	"github.com/HubertYGuan/FEINT/internal/repository"
)

type pgExecutor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// UserRepository implements port.UserRepository using PostgreSQL.
type UserRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewUserRepository constructs a repository backed by any executor that satisfies pgExecutor.
func NewUserRepository(exec pgExecutor) *UserRepository {
	return &UserRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var userColumns = []string{
	"username",
	"email",
	"full_name",
	"disabled",
	"hashed_password",
	"secret_key",
	"otp_enabled",
	"registered_at",
}

// Create inserts a new credential record.
func (r *UserRepository) Create(ctx context.Context, user domain.User) error {
	var emailValue any
	if user.Email != "" {
		emailValue = user.Email
	}

	var fullNameValue any
	if user.FullName != "" {
		fullNameValue = user.FullName
	}

	query := r.builder.Insert("users").
		Columns(userColumns...).
		Values(
			user.Username,
			emailValue,
			fullNameValue,
			user.Disabled,
			user.PasswordHash,
			user.TOTPSecret,
			user.OTPEnabled,
			user.RegisteredAt,
		)

	stmt, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build insert user sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

// GetByUsername retrieves a credential record by its immutable key.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	stmt, args, err := r.builder.
		Select(userColumns...).
		From("users").
		Where(squirrel.Eq{"username": username}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select user sql: %w", err)
	}

	row := r.exec.QueryRow(ctx, stmt, args...)

	var (
		email    sql.NullString
		fullName sql.NullString
		user     domain.User
	)

	if err := row.Scan(
		&user.Username,
		&email,
		&fullName,
		&user.Disabled,
		&user.PasswordHash,
		&user.TOTPSecret,
		&user.OTPEnabled,
		&user.RegisteredAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}

	if email.Valid {
		user.Email = email.String
	}
	if fullName.Valid {
		user.FullName = fullName.String
	}

	return &user, nil
}

// UpdateOTPEnabled flips the second-factor flag for the user.
func (r *UserRepository) UpdateOTPEnabled(ctx context.Context, username string, enabled bool) error {
	stmt, args, err := r.builder.
		Update("users").
		Set("otp_enabled", enabled).
		Where(squirrel.Eq{"username": username}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update otp_enabled sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update otp_enabled: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}
