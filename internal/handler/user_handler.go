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

type UserHandler struct {
	accountService service.AccountService
	issuer         *auth.TokenIssuer
}

// NewUserHandler sets up the routing dependencies for user-management endpoints
func NewUserHandler(accountService service.AccountService, issuer *auth.TokenIssuer) *UserHandler {
	return &UserHandler{accountService: accountService, issuer: issuer}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup.
// Everything here is Admin-only and tenant-bound to the acting admin's company.
func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	users := router.Group("/account/users")
	users.Use(middleware.Authenticate(h.issuer), middleware.RequireRole(model.RoleAdmin))
	{
		users.GET("", h.ListUsers)
		users.GET("/:id", h.GetUser)
		users.POST("", h.CreateUser)
		users.PUT("/:id/permissions", h.SetPermissions)
		users.POST("/:id/invite", h.Invite)
	}
}

type setPermissionsRequest struct {
	Permissions []string `json:"permissions" binding:"required"`
}

// ListUsers lists the users of the acting admin's company
// @Summary      List users
// @Description  Retrieves a paginated list of users within the caller's company
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page number (default 1)"
// @Param        limit  query     int  false  "Number of items per page (default 20)"
// @Success      200    {object}  response.Response{data=pagination.Page}
// @Failure      403    {object}  response.Response
// @Router       /account/users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	params := pagination.Parse(c)

	users, total, err := h.accountService.ListUsers(c.Request.Context(), middleware.ContextCompanyID(c), params.Offset, params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, pagination.NewPage(users, total, params)))
}

// GetUser fetches a single user within the caller's company
// @Summary      Get user by ID
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  response.Response{data=service.UserResponse}
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /account/users/{id} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	res, err := h.accountService.GetUser(c.Request.Context(), middleware.ContextCompanyID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// CreateUser provisions a user in the caller's company
// @Summary      Create a user
// @Description  Creates a user inside the acting admin's company; an empty password provisions an unactivated account
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateUserRequest  true  "Create User Payload"
// @Success      201      {object}  response.Response{data=service.UserResponse}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /account/users [post]
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req service.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	res, err := h.accountService.CreateUser(c.Request.Context(), middleware.ContextUserID(c), middleware.ContextCompanyID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, res))
}

// SetPermissions replaces the target user's entire permission set
// @Summary      Replace user permissions
// @Description  Validates the requested permission names against the catalog and atomically replaces the target's claim set. Already-issued tokens keep their old claims until expiry.
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                 true  "User ID"
// @Param        payload  body      setPermissionsRequest  true  "Permission names"
// @Success      204      "No Content"
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /account/users/{id}/permissions [put]
func (h *UserHandler) SetPermissions(c *gin.Context) {
	var req setPermissionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	err := h.accountService.SetPermissions(c.Request.Context(), middleware.ContextUserID(c), middleware.ContextCompanyID(c), c.Param("id"), req.Permissions)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Invite issues fresh one-time activation artifacts for the target user
// @Summary      Invite user
// @Description  Generates a one-time email-confirmation token and password-reset token for the target. Earlier artifacts stay valid until their own expiry.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  response.Response{data=service.InviteResponse}
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /account/users/{id}/invite [post]
func (h *UserHandler) Invite(c *gin.Context) {
	res, err := h.accountService.Invite(c.Request.Context(), middleware.ContextUserID(c), middleware.ContextCompanyID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}
