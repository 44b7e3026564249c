package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/HubertYGuan/FEINT/internal/core/domain"
	"github.com/HubertYGuan/FEINT/internal/usecase"
)

const (
	// SessionCookieName is the browser cookie carrying the bearer token.
	SessionCookieName = "token"
	// CurrentUserKey is the context key holding the authenticated user.
	CurrentUserKey = "current_user"
)

// ErrorResponse matches the handlers.ErrorResponse structure.
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

func newErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	return ErrorResponse{
		Error:   errorMsg,
		TraceID: GetTraceID(c),
	}
}

// RequireAuth validates the bearer token and loads the current user. The token
// comes from the Authorization header or, for browser clients, the session
// cookie. Every verification failure collapses to 401 so callers cannot tell
// which check rejected them.
func RequireAuth(tokens *usecase.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newErrorResponse(c, "not authenticated"))
			return
		}

		user, err := tokens.Verify(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newErrorResponse(c, "could not validate credentials"))
			return
		}

		c.Set(CurrentUserKey, user)
		c.Set(UsernameKey, user.Username)

		if reqCtx := GetRequestContext(c); reqCtx != nil {
			reqCtx.Username = user.Username
		}

		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}

	if cookie, err := c.Cookie(SessionCookieName); err == nil {
		return cookie
	}

	return ""
}

// GetCurrentUser retrieves the authenticated user from context (helper for handlers).
func GetCurrentUser(c *gin.Context) (*domain.User, bool) {
	val, exists := c.Get(CurrentUserKey)
	if !exists {
		return nil, false
	}

	if user, ok := val.(*domain.User); ok {
		return user, true
	}

	return nil, false
}
