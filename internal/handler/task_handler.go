package handler

import (
	"net/http"

	"smartkanban/internal/middleware"
	"smartkanban/internal/model"
	"smartkanban/internal/repository"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
)

type TaskHandler struct {
	store  repository.StoreInterface
	logger *log.Logger
}

func NewTaskHandler(store repository.StoreInterface, logger *log.Logger) *TaskHandler {
	if logger == nil {
		logger = log.Default()
	}
	return &TaskHandler{store: store, logger: logger}
}

// CreateTaskRequest is the body of POST /tasks.
type CreateTaskRequest struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Status      model.Status   `json:"status"`
	Priority    model.Priority `json:"priority"`
	ProjectID   string         `json:"projectId"`
}

// UpdateTaskRequest is the body of PUT /tasks/:id; omitted fields stay as they are.
type UpdateTaskRequest struct {
	Title       *string         `json:"title"`
	Description *string         `json:"description"`
	Status      *model.Status   `json:"status"`
	Priority    *model.Priority `json:"priority"`
	ProjectID   *string         `json:"projectId"`
}

// List godoc
// @Summary      List tasks
// @Tags         Tasks
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   model.Task
// @Failure      401  {object}  ErrorResponse
// @Router       /tasks [get]
func (h *TaskHandler) List(c *gin.Context) {
	tasks, err := h.store.ListTasks(c.Request.Context(), middleware.ScopeFrom(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// Create godoc
// @Summary      Create a task
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        task  body      CreateTaskRequest  true  "Task"
// @Success      201   {object}  model.Task
// @Failure      400   {object}  ErrorResponse
// @Router       /tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	var req CreateTaskRequest
	if !bindJSON(c, &req, nil) {
		return
	}

	task, err := h.store.CreateTask(c.Request.Context(), middleware.ScopeFrom(c), repository.TaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		ProjectID:   req.ProjectID,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

// Update godoc
// @Summary      Update a task
// @Description  Partial update; a drag between columns sends only status
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "Task ID"
// @Param        task  body      UpdateTaskRequest  true  "Fields to change"
// @Success      200   {object}  model.Task
// @Failure      400   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Router       /tasks/{id} [put]
func (h *TaskHandler) Update(c *gin.Context) {
	var req UpdateTaskRequest
	if !bindJSON(c, &req, nil) {
		return
	}

	task, err := h.store.UpdateTask(c.Request.Context(), middleware.ScopeFrom(c), c.Param("id"), repository.TaskPatch{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		ProjectID:   req.ProjectID,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// Delete godoc
// @Summary      Delete a task
// @Tags         Tasks
// @Security     BearerAuth
// @Param        id   path  string  true  "Task ID"
// @Success      204
// @Failure      404  {object}  ErrorResponse
// @Router       /tasks/{id} [delete]
func (h *TaskHandler) Delete(c *gin.Context) {
	if err := h.store.DeleteTask(c.Request.Context(), middleware.ScopeFrom(c), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
