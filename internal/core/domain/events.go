package domain

import "time"

// UserRegisteredEvent is emitted after a new account is created.
type UserRegisteredEvent struct {
	Username     string
	RegisteredAt time.Time
}

// OTPStatusChangedEvent is emitted when a user enables or disables the second factor.
type OTPStatusChangedEvent struct {
	Username  string
	Enabled   bool
	ChangedAt time.Time
}

// NotificationSentEvent is emitted after a notification sweep completes.
type NotificationSentEvent struct {
	Message   string
	TodoCount int
	SentAt    time.Time
}
