package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/HubertYGuan/FEINT/internal/transport/http/middleware"
	"github.com/HubertYGuan/FEINT/internal/usecase"
)

// OTPHandler exposes second-factor management for the authenticated user.
type OTPHandler struct {
	otp *usecase.OTPService
}

// NewOTPHandler constructs the handler.
func NewOTPHandler(otp *usecase.OTPService) *OTPHandler {
	return &OTPHandler{otp: otp}
}

var otpErrorCases = []ErrorCase{
	{Err: usecase.ErrUserNotFound, Status: http.StatusNotFound, Message: "user not found"},
}

// Enable turns the second factor on for the current user.
func (h *OTPHandler) Enable(c *gin.Context) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "not authenticated"))
		return
	}

	if err := h.otp.Enable(c.Request.Context(), user.Username); err != nil {
		RespondWithMappedError(c, err, otpErrorCases, http.StatusInternalServerError, "failed to enable otp")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "otp enabled"})
}

// Disable turns the second factor off for the current user.
func (h *OTPHandler) Disable(c *gin.Context) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "not authenticated"))
		return
	}

	if err := h.otp.Disable(c.Request.Context(), user.Username); err != nil {
		RespondWithMappedError(c, err, otpErrorCases, http.StatusInternalServerError, "failed to disable otp")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "otp disabled"})
}

// Provision returns the otpauth URI for authenticator enrollment.
func (h *OTPHandler) Provision(c *gin.Context) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "not authenticated"))
		return
	}

	uri, err := h.otp.ProvisioningURI(c.Request.Context(), user.Username)
	if err != nil {
		RespondWithMappedError(c, err, otpErrorCases, http.StatusInternalServerError, "failed to build provisioning uri")
		return
	}

	c.JSON(http.StatusOK, ProvisionResponse{URI: uri})
}
