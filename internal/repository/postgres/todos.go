package postgres

import (
	"context"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"

	"github.com/HubertYGuan/FEINT/internal/core/domain"
	"github.com/HubertYGuan/FEINT/internal/repository"
)

// TodoRepository implements port.TodoRepository using PostgreSQL.
type TodoRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewTodoRepository constructs a repository backed by any executor that satisfies pgExecutor.
func NewTodoRepository(exec pgExecutor) *TodoRepository {
	return &TodoRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// List returns every reminder entry ordered by id.
func (r *TodoRepository) List(ctx context.Context) ([]domain.Todo, error) {
	stmt, args, err := r.builder.
		Select("id", "description", "repeats").
		From("todos").
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select todos sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("select todos: %w", err)
	}
	defer rows.Close()

	var todos []domain.Todo
	for rows.Next() {
		var todo domain.Todo
		if err := rows.Scan(&todo.ID, &todo.Description, &todo.Repeats); err != nil {
			return nil, fmt.Errorf("scan todo: %w", err)
		}
		todos = append(todos, todo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate todos: %w", err)
	}

	return todos, nil
}

// Create inserts a reminder entry and returns it with the assigned id.
func (r *TodoRepository) Create(ctx context.Context, description string, repeats bool) (*domain.Todo, error) {
	stmt, args, err := r.builder.
		Insert("todos").
		Columns("description", "repeats").
		Values(description, repeats).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert todo sql: %w", err)
	}

	var id int64
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&id); err != nil {
		return nil, fmt.Errorf("insert todo: %w", err)
	}

	return &domain.Todo{ID: id, Description: description, Repeats: repeats}, nil
}

// Update modifies the provided fields of a reminder entry; nil fields are left untouched.
func (r *TodoRepository) Update(ctx context.Context, id int64, description *string, repeats *bool) error {
	if description == nil && repeats == nil {
		return nil
	}

	query := r.builder.Update("todos").Where(squirrel.Eq{"id": id})
	if description != nil {
		query = query.Set("description", *description)
	}
	if repeats != nil {
		query = query.Set("repeats", *repeats)
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build update todo sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update todo: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// DeleteByID removes a single reminder entry.
func (r *TodoRepository) DeleteByID(ctx context.Context, id int64) error {
	stmt, args, err := r.builder.
		Delete("todos").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete todo sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("delete todo: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// DeleteByDescription removes every reminder entry matching the description.
func (r *TodoRepository) DeleteByDescription(ctx context.Context, description string) error {
	stmt, args, err := r.builder.
		Delete("todos").
		Where(squirrel.Eq{"description": description}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete todo by description sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("delete todo by description: %w", err)
	}

	return nil
}

// DeleteNonRepeating removes every one-shot entry after a notification sweep.
func (r *TodoRepository) DeleteNonRepeating(ctx context.Context) error {
	stmt, args, err := r.builder.
		Delete("todos").
		Where(squirrel.Eq{"repeats": false}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete non-repeating sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("delete non-repeating todos: %w", err)
	}

	return nil
}
