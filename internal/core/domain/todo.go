package domain

// Todo is a single reminder entry. Repeating entries survive a notification
// sweep; one-shot entries are removed after they have been notified.
type Todo struct {
	ID          int64
	Description string
	Repeats     bool
}
