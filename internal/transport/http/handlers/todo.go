package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/HubertYGuan/FEINT/internal/usecase"
)

// TodoHandler exposes CRUD for the reminder list.
type TodoHandler struct {
	todos *usecase.TodoService
}

// NewTodoHandler constructs the handler.
func NewTodoHandler(todos *usecase.TodoService) *TodoHandler {
	return &TodoHandler{todos: todos}
}

var todoErrorCases = []ErrorCase{
	{Err: usecase.ErrTodoNotFound, Status: http.StatusNotFound, Message: "todo not found"},
	{Err: usecase.ErrEmptyDescription, Status: http.StatusBadRequest, Message: "description must not be empty"},
}

// List returns every reminder entry.
func (h *TodoHandler) List(c *gin.Context) {
	todos, err := h.todos.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to list todos"))
		return
	}

	entries := make([]TodoEntry, 0, len(todos))
	for _, todo := range todos {
		entries = append(entries, TodoEntry{ID: todo.ID, Description: todo.Description, Repeats: todo.Repeats})
	}

	c.JSON(http.StatusOK, entries)
}

// Create adds a reminder entry.
func (h *TodoHandler) Create(c *gin.Context) {
	var req TodoCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid todo payload"))
		return
	}

	todo, err := h.todos.Create(c.Request.Context(), req.Description, req.Repeats)
	if err != nil {
		RespondWithMappedError(c, err, todoErrorCases, http.StatusInternalServerError, "failed to create todo")
		return
	}

	c.JSON(http.StatusCreated, TodoEntry{ID: todo.ID, Description: todo.Description, Repeats: todo.Repeats})
}

// Update changes a reminder entry.
func (h *TodoHandler) Update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid todo id"))
		return
	}

	var req TodoUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid todo payload"))
		return
	}

	if err := h.todos.Update(c.Request.Context(), id, req.Description, req.Repeats); err != nil {
		RespondWithMappedError(c, err, todoErrorCases, http.StatusInternalServerError, "failed to update todo")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "todo updated"})
}

// Delete removes a reminder entry by id.
func (h *TodoHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid todo id"))
		return
	}

	if err := h.todos.DeleteByID(c.Request.Context(), id); err != nil {
		RespondWithMappedError(c, err, todoErrorCases, http.StatusInternalServerError, "failed to delete todo")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "todo deleted"})
}

// DeleteByDescription removes every entry matching the description query param.
func (h *TodoHandler) DeleteByDescription(c *gin.Context) {
	description := strings.TrimSpace(c.Query("description"))
	if description == "" {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "description is required"))
		return
	}

	if err := h.todos.DeleteByDescription(c.Request.Context(), description); err != nil {
		RespondWithMappedError(c, err, todoErrorCases, http.StatusInternalServerError, "failed to delete todo")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "todos deleted"})
}
