package handlers

import (
	"net/http"

	"github.com/Sebastian-411/microservice-app-example/internal/auth"
	dom "github.com/Sebastian-411/microservice-app-example/internal/domain"
	"github.com/Sebastian-411/microservice-app-example/internal/dto"
	"github.com/Sebastian-411/microservice-app-example/internal/service"

	"github.com/gin-gonic/gin"
)

// TodoHandler handles the todo routes for the authenticated user.
type TodoHandler struct {
	svc *service.TodoService
}

// NewTodoHandler returns a new TodoHandler.
func NewTodoHandler(svc *service.TodoService) *TodoHandler {
	return &TodoHandler{svc: svc}
}

// List returns the user's items as a JSON array. Order is unspecified.
func (h *TodoHandler) List(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context(), auth.UsernameFromContext(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, todosToResponses(items))
}

// Create adds a new item from the request body and returns it.
func (h *TodoHandler) Create(c *gin.Context) {
	var req dto.CreateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	item, err := h.svc.Create(c.Request.Context(), auth.UsernameFromContext(c), req.Content)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, todoToResponse(item))
}

// Delete removes the item named by the taskId path param. Unknown ids are a
// no-op and still return 204.
func (h *TodoHandler) Delete(c *gin.Context) {
	err := h.svc.Delete(c.Request.Context(), auth.UsernameFromContext(c), c.Param("taskId"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func todoToResponse(t dom.TodoItem) dto.TodoResponse {
	return dto.TodoResponse{ID: t.ID, Content: t.Content}
}

func todosToResponses(list []dom.TodoItem) []dto.TodoResponse {
	out := make([]dto.TodoResponse, len(list))
	for i := range list {
		out[i] = todoToResponse(list[i])
	}
	return out
}
