package handler

import (
	"net/http"

	"backend/internal/auth"
	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type ProjectHandler struct {
	projectService service.ProjectService
	issuer         *auth.TokenIssuer
}

// NewProjectHandler sets up the routing dependencies for Project endpoints
func NewProjectHandler(projectService service.ProjectService, issuer *auth.TokenIssuer) *ProjectHandler {
	return &ProjectHandler{projectService: projectService, issuer: issuer}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup.
// Reads require only a valid token; writes are Admin-only.
func (h *ProjectHandler) RegisterRoutes(router *gin.RouterGroup) {
	projects := router.Group("/projects")
	projects.Use(middleware.Authenticate(h.issuer))
	{
		projects.GET("", h.List)
		projects.GET("/:id", h.Get)
		projects.POST("", middleware.RequireRole(model.RoleAdmin), h.Create)
		projects.PUT("/:id", middleware.RequireRole(model.RoleAdmin), h.Update)
		projects.DELETE("/:id", middleware.RequireRole(model.RoleAdmin), h.Delete)
	}
}

// List returns the caller's company projects
// @Summary      List projects
// @Tags         projects
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page number (default 1)"
// @Param        limit  query     int  false  "Number of items per page (default 20)"
// @Success      200    {object}  response.Response{data=pagination.Page}
// @Router       /projects [get]
func (h *ProjectHandler) List(c *gin.Context) {
	params := pagination.Parse(c)

	projects, total, err := h.projectService.List(c.Request.Context(), middleware.ContextCompanyID(c), params.Offset, params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, pagination.NewPage(projects, total, params)))
}

// Get returns a single project within the caller's company
// @Summary      Get project
// @Tags         projects
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Project ID"
// @Success      200  {object}  response.Response{data=service.ProjectResponse}
// @Failure      404  {object}  response.Response
// @Router       /projects/{id} [get]
func (h *ProjectHandler) Get(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid project id"))
		return
	}

	res, err := h.projectService.Get(c.Request.Context(), middleware.ContextCompanyID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// Create adds a project to the caller's company
// @Summary      Create project
// @Tags         projects
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateProjectRequest  true  "Create Project Payload"
// @Success      201      {object}  response.Response{data=service.ProjectResponse}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Router       /projects [post]
func (h *ProjectHandler) Create(c *gin.Context) {
	var req service.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	res, err := h.projectService.Create(c.Request.Context(), middleware.ContextCompanyID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, res))
}

// Update replaces a project's fields
// @Summary      Update project
// @Tags         projects
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      int                           true  "Project ID"
// @Param        payload  body      service.UpdateProjectRequest  true  "Update Project Payload"
// @Success      204      "No Content"
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /projects/{id} [put]
func (h *ProjectHandler) Update(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid project id"))
		return
	}

	var req service.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	if _, err := h.projectService.Update(c.Request.Context(), middleware.ContextCompanyID(c), id, req); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Delete removes a project from the caller's company
// @Summary      Delete project
// @Tags         projects
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Project ID"
// @Success      204  "No Content"
// @Failure      404  {object}  response.Response
// @Router       /projects/{id} [delete]
func (h *ProjectHandler) Delete(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid project id"))
		return
	}

	if err := h.projectService.Delete(c.Request.Context(), middleware.ContextCompanyID(c), id); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
