package handler

import (
	"net/http"

	"smartkanban/internal/middleware"
	"smartkanban/internal/repository"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
)

type ProjectHandler struct {
	store  repository.StoreInterface
	logger *log.Logger
}

func NewProjectHandler(store repository.StoreInterface, logger *log.Logger) *ProjectHandler {
	if logger == nil {
		logger = log.Default()
	}
	return &ProjectHandler{store: store, logger: logger}
}

// ProjectRequest is the body of create and update. Omitted fields are left
// unchanged on update.
type ProjectRequest struct {
	Name  *string `json:"name"`
	Color *string `json:"color"`
}

// List godoc
// @Summary      List projects
// @Description  Lists the caller's projects, creating the default project on first use
// @Tags         Projects
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   model.Project
// @Failure      401  {object}  ErrorResponse
// @Router       /projects [get]
func (h *ProjectHandler) List(c *gin.Context) {
	projects, err := h.store.ListProjects(c.Request.Context(), middleware.ScopeFrom(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, projects)
}

// Create godoc
// @Summary      Create a project
// @Tags         Projects
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        project  body      ProjectRequest  true  "Project"
// @Success      201      {object}  model.Project
// @Failure      400      {object}  ErrorResponse
// @Router       /projects [post]
func (h *ProjectHandler) Create(c *gin.Context) {
	var req ProjectRequest
	if !bindJSON(c, &req, nil) {
		return
	}

	var name, color string
	if req.Name != nil {
		name = *req.Name
	}
	if req.Color != nil {
		color = *req.Color
	}

	project, err := h.store.CreateProject(c.Request.Context(), middleware.ScopeFrom(c), name, color)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, project)
}

// Update godoc
// @Summary      Rename or recolor a project
// @Tags         Projects
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string          true  "Project ID"
// @Param        project  body      ProjectRequest  true  "Fields to change"
// @Success      200      {object}  model.Project
// @Failure      400      {object}  ErrorResponse
// @Failure      404      {object}  ErrorResponse
// @Router       /projects/{id} [put]
func (h *ProjectHandler) Update(c *gin.Context) {
	var req ProjectRequest
	if !bindJSON(c, &req, nil) {
		return
	}

	patch := repository.ProjectPatch{Name: req.Name, Color: req.Color}
	project, err := h.store.UpdateProject(c.Request.Context(), middleware.ScopeFrom(c), c.Param("id"), patch)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

// Delete godoc
// @Summary      Delete a project and its tasks
// @Tags         Projects
// @Security     BearerAuth
// @Param        id   path  string  true  "Project ID"
// @Success      204
// @Failure      400  {object}  ErrorResponse  "Default project"
// @Failure      404  {object}  ErrorResponse
// @Router       /projects/{id} [delete]
func (h *ProjectHandler) Delete(c *gin.Context) {
	if err := h.store.DeleteProject(c.Request.Context(), middleware.ScopeFrom(c), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
