package handler

import (
	"net/http"

	"backend/internal/auth"
	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type CompanyHandler struct {
	accountService service.AccountService
	issuer         *auth.TokenIssuer
}

// NewCompanyHandler sets up the routing dependencies for Company endpoints
func NewCompanyHandler(accountService service.AccountService, issuer *auth.TokenIssuer) *CompanyHandler {
	return &CompanyHandler{accountService: accountService, issuer: issuer}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *CompanyHandler) RegisterRoutes(router *gin.RouterGroup) {
	companies := router.Group("/companies")
	{
		companies.POST("/register", h.RegisterCompany)
		companies.GET("/me", middleware.Authenticate(h.issuer), h.GetMyCompany)
	}
}

// RegisterCompany bootstraps a company and its first admin
// @Summary      Register a company
// @Description  Creates a company and its bootstrap Admin user, returning a session token
// @Tags         companies
// @Accept       json
// @Produce      json
// @Param        payload  body      service.RegisterCompanyRequest  true  "Company Registration Payload"
// @Success      201      {object}  response.Response{data=service.RegisterCompanyResponse}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /companies/register [post]
func (h *CompanyHandler) RegisterCompany(c *gin.Context) {
	var req service.RegisterCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	res, err := h.accountService.RegisterCompany(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, res))
}

// GetMyCompany returns the caller's company details
// @Summary      Get current company
// @Description  Returns the company resolved from the caller's tenant claim
// @Tags         companies
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=service.CompanyResponse}
// @Failure      401  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /companies/me [get]
func (h *CompanyHandler) GetMyCompany(c *gin.Context) {
	companyID := middleware.ContextCompanyID(c)

	res, err := h.accountService.MyCompany(c.Request.Context(), companyID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}
