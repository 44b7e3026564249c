package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/HubertYGuan/FEINT/internal/core/domain"
	"github.com/HubertYGuan/FEINT/internal/core/port"
	"github.com/HubertYGuan/FEINT/internal/repository"
)

var (
	// ErrTodoNotFound indicates no reminder entry matched the selector.
	ErrTodoNotFound = errors.New("todo not found")
	// ErrEmptyDescription indicates a reminder entry without text.
	ErrEmptyDescription = errors.New("todo description must not be empty")
)

// TodoService manages the reminder list.
type TodoService struct {
	todos  port.TodoRepository
	logger *zap.Logger
}

// NewTodoService constructs a todo service.
func NewTodoService(todos port.TodoRepository, log *zap.Logger) *TodoService {
	if log == nil {
		log = zap.NewNop()
	}
	return &TodoService{todos: todos, logger: log}
}

// List returns every reminder entry.
func (s *TodoService) List(ctx context.Context) ([]domain.Todo, error) {
	todos, err := s.todos.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	return todos, nil
}

// Create adds a reminder entry.
func (s *TodoService) Create(ctx context.Context, description string, repeats bool) (*domain.Todo, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, ErrEmptyDescription
	}
	todo, err := s.todos.Create(ctx, description, repeats)
	if err != nil {
		return nil, fmt.Errorf("create todo: %w", err)
	}
	return todo, nil
}

// Update changes the description or repeat flag of an entry. Nil fields are
// left untouched.
func (s *TodoService) Update(ctx context.Context, id int64, description *string, repeats *bool) error {
	if description == nil && repeats == nil {
		return nil
	}
	if description != nil {
		trimmed := strings.TrimSpace(*description)
		if trimmed == "" {
			return ErrEmptyDescription
		}
		description = &trimmed
	}
	if err := s.todos.Update(ctx, id, description, repeats); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTodoNotFound
		}
		return fmt.Errorf("update todo: %w", err)
	}
	return nil
}

// DeleteByID removes one entry by its identifier.
func (s *TodoService) DeleteByID(ctx context.Context, id int64) error {
	if err := s.todos.DeleteByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTodoNotFound
		}
		return fmt.Errorf("delete todo: %w", err)
	}
	return nil
}

// DeleteByDescription removes every entry with the exact description.
func (s *TodoService) DeleteByDescription(ctx context.Context, description string) error {
	description = strings.TrimSpace(description)
	if description == "" {
		return ErrEmptyDescription
	}
	if err := s.todos.DeleteByDescription(ctx, description); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTodoNotFound
		}
		return fmt.Errorf("delete todo by description: %w", err)
	}
	s.logger.Debug("todos deleted by description", zap.String("description", description))
	return nil
}
