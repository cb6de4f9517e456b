package handler

import (
	"errors"
	"net/http"

	"backend/internal/auth"
	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AccountHandler struct {
	accountService service.AccountService
	googleService  service.GoogleAuthService
	issuer         *auth.TokenIssuer
}

// NewAccountHandler sets up the routing dependencies for Account endpoints
func NewAccountHandler(accountService service.AccountService, googleService service.GoogleAuthService, issuer *auth.TokenIssuer) *AccountHandler {
	return &AccountHandler{accountService: accountService, googleService: googleService, issuer: issuer}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *AccountHandler) RegisterRoutes(router *gin.RouterGroup) {
	account := router.Group("/account")
	{
		// Public routes
		account.POST("/login", h.Login)
		account.POST("/refresh", h.Refresh)
		account.POST("/activate", h.Activate)
		account.GET("/google", h.GoogleLogin)
		account.GET("/google-callback", h.GoogleCallback)

		// Me route (any valid token)
		account.GET("/me", middleware.Authenticate(h.issuer), h.GetMe)
	}
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// Login authenticates by email and password
// @Summary      Login
// @Description  Authenticates a user by email and password, returning access and refresh tokens
// @Tags         account
// @Accept       json
// @Produce      json
// @Param        payload  body      service.LoginRequest  true  "Login Credentials"
// @Success      200      {object}  response.Response{data=service.TokenResponse}
// @Failure      400      {object}  response.Response
// @Failure      401      {object}  response.Response
// @Router       /account/login [post]
func (h *AccountHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	res, err := h.accountService.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// Refresh exchanges a refresh token for a fresh token pair
// @Summary      Refresh token
// @Description  Issues a new access and refresh token pair from a valid refresh token
// @Tags         account
// @Accept       json
// @Produce      json
// @Param        payload  body      refreshRequest  true  "Refresh Token"
// @Success      200      {object}  response.Response{data=service.TokenResponse}
// @Failure      400      {object}  response.Response
// @Failure      401      {object}  response.Response
// @Router       /account/refresh [post]
func (h *AccountHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	res, err := h.accountService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, model.ErrWrongTokenType) {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid refresh token"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// GetMe returns the current authenticated user with fresh role/permission state
// @Summary      Get current user
// @Description  Returns the authenticated user's identity, tenant, roles and permissions as stored
// @Tags         account
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=service.MeResponse}
// @Failure      401  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /account/me [get]
func (h *AccountHandler) GetMe(c *gin.Context) {
	res, err := h.accountService.Me(c.Request.Context(), middleware.ContextUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// Activate consumes the invite artifacts and sets the user's password
// @Summary      Activate account
// @Description  Confirms the email and sets the password using the one-time invite tokens
// @Tags         account
// @Accept       json
// @Produce      json
// @Param        payload  body      service.ActivateRequest  true  "Activation Payload"
// @Success      200      {object}  response.Response{data=service.TokenResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /account/activate [post]
func (h *AccountHandler) Activate(c *gin.Context) {
	var req service.ActivateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	res, err := h.accountService.Activate(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// GoogleLogin redirects the browser to Google's consent screen
// @Summary      Start Google sign-in
// @Tags         account
// @Success      302
// @Failure      404  {object}  response.Response
// @Router       /account/google [get]
func (h *AccountHandler) GoogleLogin(c *gin.Context) {
	if !h.googleService.Enabled() {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "Google sign-in is not configured"))
		return
	}

	state := uuid.NewString()
	c.Redirect(http.StatusFound, h.googleService.LoginURL(state))
}

// GoogleCallback completes the Google sign-in and issues tokens
// @Summary      Google sign-in callback
// @Tags         account
// @Produce      json
// @Param        code  query     string  true  "Authorization code"
// @Success      200   {object}  response.Response{data=service.TokenResponse}
// @Failure      400   {object}  response.Response
// @Router       /account/google-callback [get]
func (h *AccountHandler) GoogleCallback(c *gin.Context) {
	if remoteErr := c.Query("error"); remoteErr != "" {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Google error: "+remoteErr))
		return
	}

	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Missing authorization code"))
		return
	}

	res, err := h.googleService.HandleCallback(c.Request.Context(), code)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}
