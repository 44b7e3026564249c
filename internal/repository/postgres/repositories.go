package postgres

import "github.com/jackc/pgx/v5/pgxpool"

// Repositories groups concrete PostgreSQL repository implementations.
type Repositories struct {
	Users     *UserRepository
	Todos     *TodoRepository
	Events    *EventRepository
	Whitelist *WhitelistRepository
}

// NewRepositories wires all repositories backed by the provided pool.
func NewRepositories(pool *pgxpool.Pool) *Repositories {
	return &Repositories{
		Users:     NewUserRepository(pool),
		Todos:     NewTodoRepository(pool),
		Events:    NewEventRepository(pool),
		Whitelist: NewWhitelistRepository(pool),
	}
}
