package postgres

import (
	"context"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
)

// WhitelistRepository implements port.WhitelistRepository using PostgreSQL.
type WhitelistRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewWhitelistRepository constructs a repository backed by any executor that satisfies pgExecutor.
func NewWhitelistRepository(exec pgExecutor) *WhitelistRepository {
	return &WhitelistRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// ListIPs returns every whitelisted client IP.
func (r *WhitelistRepository) ListIPs(ctx context.Context) ([]string, error) {
	stmt, args, err := r.builder.
		Select("ip").
		From("whitelist").
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select whitelist sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("select whitelist: %w", err)
	}
	defer rows.Close()

	var ips []string
	for rows.Next() {
		var ip string
		if err := rows.Scan(&ip); err != nil {
			return nil, fmt.Errorf("scan whitelist entry: %w", err)
		}
		ips = append(ips, ip)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate whitelist: %w", err)
	}

	return ips, nil
}
