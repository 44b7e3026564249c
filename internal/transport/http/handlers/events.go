package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/HubertYGuan/FEINT/internal/usecase"
)

// EventsHandler exposes the notification log and the notify sweep.
type EventsHandler struct {
	notifications *usecase.NotificationService
}

// NewEventsHandler constructs the handler.
func NewEventsHandler(notifications *usecase.NotificationService) *EventsHandler {
	return &EventsHandler{notifications: notifications}
}

// Notify runs a notification sweep and returns the recorded event.
func (h *EventsHandler) Notify(c *gin.Context) {
	var req NotifyRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid notify payload"))
		return
	}

	event, err := h.notifications.Notify(c.Request.Context(), req.Message)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "notification sweep failed"))
		return
	}

	c.JSON(http.StatusOK, newEventEntry(event))
}

// List returns the full notification log.
func (h *EventsHandler) List(c *gin.Context) {
	events, err := h.notifications.Events(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to list events"))
		return
	}

	entries := make([]EventEntry, 0, len(events))
	for i := range events {
		entries = append(entries, newEventEntry(&events[i]))
	}

	c.JSON(http.StatusOK, entries)
}

// Delete removes one notification log row.
func (h *EventsHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid event id"))
		return
	}

	if err := h.notifications.DeleteEvent(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to delete event"))
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "event deleted"})
}
