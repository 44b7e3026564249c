package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/HubertYGuan/FEINT/internal/transport/http/middleware"
	"github.com/HubertYGuan/FEINT/internal/usecase"
)

// AuthHandler exposes registration and the multi-step login sequence.
type AuthHandler struct {
	registration *usecase.RegistrationService
	auth         *usecase.AuthService
	cookieSecure bool
}

// NewAuthHandler constructs the handler. cookieSecure marks the session cookie
// Secure; it is off in development so plain-HTTP testing works.
func NewAuthHandler(registration *usecase.RegistrationService, auth *usecase.AuthService, cookieSecure bool) *AuthHandler {
	return &AuthHandler{
		registration: registration,
		auth:         auth,
		cookieSecure: cookieSecure,
	}
}

// Register creates a new account.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid registration payload"))
		return
	}

	user, err := h.registration.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrInvalidInput, Status: http.StatusBadRequest, Message: "invalid username or password"},
			{Err: usecase.ErrUserExists, Status: http.StatusConflict, Message: "username already taken"},
		}, http.StatusInternalServerError, "failed to register user")
		return
	}

	sanitized := user.Sanitized()
	c.JSON(http.StatusCreated, newUserSummary(&sanitized))
}

// Login runs the password step. All credential failures collapse to a single
// 401 so the response never reveals whether the username exists, the password
// was wrong, or the account is disabled.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid login payload"))
		return
	}

	resp, err := h.auth.SubmitPassword(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrInvalidCredentials, Status: http.StatusUnauthorized, Message: "incorrect username or password"},
		}, http.StatusInternalServerError, "login failed")
		return
	}

	c.JSON(http.StatusOK, newLoginResponse(resp))
}

// LoginOTP runs the OTP step against a parked attempt. A wrong code is
// unauthorized like every other auth failure, but the body carries the
// invalid_otp outcome and attempt ID so the caller can retry the same attempt;
// a missing or already consumed attempt gets no outcome at all.
func (h *AuthHandler) LoginOTP(c *gin.Context) {
	var req LoginOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid otp payload"))
		return
	}

	resp, err := h.auth.SubmitOTP(c.Request.Context(), req.AttemptID, req.Code, req.EnablingOTP)
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidOTP) && resp != nil {
			c.JSON(http.StatusUnauthorized, newLoginResponse(resp))
			return
		}
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrNoPendingLogin, Status: http.StatusUnauthorized, Message: "not authenticated"},
			{Err: usecase.ErrInvalidCredentials, Status: http.StatusUnauthorized, Message: "not authenticated"},
		}, http.StatusInternalServerError, "otp verification failed")
		return
	}

	c.JSON(http.StatusOK, newLoginResponse(resp))
}

// LoginToken hands out the token of a completed attempt and sets the browser
// session cookie.
func (h *AuthHandler) LoginToken(c *gin.Context) {
	attemptID := strings.TrimSpace(c.Query("attempt_id"))
	if attemptID == "" {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "attempt_id is required"))
		return
	}

	resp, err := h.auth.IssueToken(c.Request.Context(), attemptID)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrNoPendingLogin, Status: http.StatusUnauthorized, Message: "not authenticated"},
		}, http.StatusInternalServerError, "token retrieval failed")
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookieName, resp.Token, 0, "/", "", h.cookieSecure, true)

	c.JSON(http.StatusOK, newLoginResponse(resp))
}

// VerifyToken reports the identity bound to the presented token. The auth
// middleware has already validated it; this just echoes the subject.
func (h *AuthHandler) VerifyToken(c *gin.Context) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "not authenticated"))
		return
	}

	sanitized := user.Sanitized()
	c.JSON(http.StatusOK, newUserSummary(&sanitized))
}

// Whoami returns the authenticated user's profile.
func (h *AuthHandler) Whoami(c *gin.Context) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "not authenticated"))
		return
	}

	sanitized := user.Sanitized()
	c.JSON(http.StatusOK, newUserSummary(&sanitized))
}
