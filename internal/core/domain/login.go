package domain

import "time"

// LoginOutcome enumerates the states a login sequence can report.
type LoginOutcome string

const (
	LoginOutcomeSuccess            LoginOutcome = "success"
	LoginOutcomeOTPRequired        LoginOutcome = "otp_required"
	LoginOutcomeInvalidOTP         LoginOutcome = "invalid_otp"
	LoginOutcomeInvalidCredentials LoginOutcome = "invalid_credentials"
)

// PendingLogin is the in-flight state of one login sequence between the password
// step and the OTP step. It is keyed by an opaque attempt ID so concurrent
// sequences never observe each other's state.
type PendingLogin struct {
	AttemptID string
	Username  string
	Outcome   LoginOutcome
	Token     string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// AwaitingOTP reports whether the sequence is parked at the OTP challenge.
func (p PendingLogin) AwaitingOTP() bool {
	return p.Outcome == LoginOutcomeOTPRequired || p.Outcome == LoginOutcomeInvalidOTP
}

// LoginResponse is the value returned to the caller after each step.
// Invariant: Token is non-empty if and only if Outcome is LoginOutcomeSuccess.
type LoginResponse struct {
	AttemptID string
	Outcome   LoginOutcome
	Token     string
}
