package domain

import "time"

// User mirrors the persisted representation in the users table. The username is
// the immutable lookup key; the TOTP secret is generated once at registration and
// never rotated.
type User struct {
	Username     string
	Email        string
	FullName     string
	Disabled     bool
	PasswordHash string
	TOTPSecret   string
	OTPEnabled   bool
	RegisteredAt time.Time
}

// Sanitized returns a copy safe to hand to transport layers.
func (u User) Sanitized() User {
	u.PasswordHash = ""
	u.TOTPSecret = ""
	return u
}
