package postgres

import (
	"context"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/HubertYGuan/FEINT/internal/core/domain"
	"github.com/HubertYGuan/FEINT/internal/repository"
)

// EventRepository implements port.EventRepository using PostgreSQL.
type EventRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewEventRepository constructs a repository backed by any executor that satisfies pgExecutor.
func NewEventRepository(exec pgExecutor) *EventRepository {
	return &EventRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// List returns the full notification event log ordered by id.
func (r *EventRepository) List(ctx context.Context) ([]domain.Event, error) {
	stmt, args, err := r.builder.
		Select("id", "timestamp", "raw_timestamp", "description").
		From("events").
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select events sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("select events: %w", err)
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		var event domain.Event
		if err := rows.Scan(&event.ID, &event.Timestamp, &event.RawTimestamp, &event.Description); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}

	return events, nil
}

// Create appends an event to the log and returns it with the assigned id.
func (r *EventRepository) Create(ctx context.Context, event domain.Event) (*domain.Event, error) {
	stmt, args, err := r.builder.
		Insert("events").
		Columns("timestamp", "raw_timestamp", "description").
		Values(event.Timestamp, event.RawTimestamp, event.Description).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert event sql: %w", err)
	}

	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&event.ID); err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}

	return &event, nil
}

// Latest returns the most recently appended event.
func (r *EventRepository) Latest(ctx context.Context) (*domain.Event, error) {
	stmt, args, err := r.builder.
		Select("id", "timestamp", "raw_timestamp", "description").
		From("events").
		OrderBy("id DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select latest event sql: %w", err)
	}

	var event domain.Event
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(
		&event.ID,
		&event.Timestamp,
		&event.RawTimestamp,
		&event.Description,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan latest event: %w", err)
	}

	return &event, nil
}

// DeleteByID removes a single event from the log.
func (r *EventRepository) DeleteByID(ctx context.Context, id int64) error {
	stmt, args, err := r.builder.
		Delete("events").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete event sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}
