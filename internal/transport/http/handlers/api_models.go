package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/HubertYGuan/FEINT/internal/core/domain"
)

// ErrorResponse represents a generic error payload with trace ID for debugging.
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// NewErrorResponse creates an error response with trace ID from context
func NewErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	traceID, _ := c.Get("trace_id")
	traceIDStr, _ := traceID.(string)

	return ErrorResponse{
		Error:   errorMsg,
		TraceID: traceIDStr,
	}
}

// MessageResponse represents a simple message payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// UserSummary describes a minimal view of a user returned by the API.
type UserSummary struct {
	Username     string    `json:"username"`
	Email        string    `json:"email,omitempty"`
	FullName     string    `json:"full_name,omitempty"`
	OTPEnabled   bool      `json:"otp_enabled"`
	RegisteredAt time.Time `json:"registered_at"`
}

func newUserSummary(user *domain.User) UserSummary {
	return UserSummary{
		Username:     user.Username,
		Email:        user.Email,
		FullName:     user.FullName,
		OTPEnabled:   user.OTPEnabled,
		RegisteredAt: user.RegisteredAt,
	}
}

// RegisterRequest defines the payload for the register endpoint.
type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginRequest defines the payload for the password step of a login sequence.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginOTPRequest defines the payload for the OTP step of a login sequence.
type LoginOTPRequest struct {
	AttemptID   string `json:"attempt_id" binding:"required"`
	Code        string `json:"code" binding:"required"`
	EnablingOTP bool   `json:"enabling_otp"`
}

// LoginResponse reports the state of the login sequence after each step. The
// token field is populated only on a success outcome.
type LoginResponse struct {
	AttemptID string `json:"attempt_id"`
	Outcome   string `json:"outcome"`
	Token     string `json:"token,omitempty"`
	TokenType string `json:"token_type,omitempty"`
}

func newLoginResponse(resp *domain.LoginResponse) LoginResponse {
	out := LoginResponse{
		AttemptID: resp.AttemptID,
		Outcome:   string(resp.Outcome),
		Token:     resp.Token,
	}
	if resp.Token != "" {
		out.TokenType = "bearer"
	}
	return out
}

// ProvisionResponse carries the otpauth enrollment URI.
type ProvisionResponse struct {
	URI string `json:"uri"`
}

// TodoEntry is the transport view of a reminder entry.
type TodoEntry struct {
	ID          int64  `json:"id"`
	Description string `json:"description"`
	Repeats     bool   `json:"repeats"`
}

// TodoCreateRequest defines the payload to add a reminder entry.
type TodoCreateRequest struct {
	Description string `json:"description" binding:"required"`
	Repeats     bool   `json:"repeats"`
}

// TodoUpdateRequest defines the payload to change a reminder entry. Omitted
// fields are left untouched.
type TodoUpdateRequest struct {
	Description *string `json:"description"`
	Repeats     *bool   `json:"repeats"`
}

// EventEntry is the transport view of a notification log row.
type EventEntry struct {
	ID           int64     `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	RawTimestamp float64   `json:"raw_timestamp"`
	Description  string    `json:"description"`
}

func newEventEntry(event *domain.Event) EventEntry {
	return EventEntry{
		ID:           event.ID,
		Timestamp:    event.Timestamp,
		RawTimestamp: event.RawTimestamp,
		Description:  event.Description,
	}
}

// NotifyRequest defines the payload for a notification sweep.
type NotifyRequest struct {
	Message string `json:"message"`
}
