package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/HubertYGuan/FEINT/internal/core/port"
)

// WhitelistResponse lists the client IPs currently allowed through the whitelist.
type WhitelistResponse struct {
	IPs []string `json:"ips"`
}

// WhitelistHandler exposes the whitelist table for inspection.
type WhitelistHandler struct {
	repo port.WhitelistRepository
}

// NewWhitelistHandler constructs the handler.
func NewWhitelistHandler(repo port.WhitelistRepository) *WhitelistHandler {
	return &WhitelistHandler{repo: repo}
}

// List returns every whitelisted IP.
func (h *WhitelistHandler) List(c *gin.Context) {
	if h.repo == nil {
		c.JSON(http.StatusServiceUnavailable, NewErrorResponse(c, "whitelist unavailable"))
		return
	}

	ips, err := h.repo.ListIPs(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to load whitelist"))
		return
	}

	if ips == nil {
		ips = []string{}
	}

	c.JSON(http.StatusOK, WhitelistResponse{IPs: ips})
}
