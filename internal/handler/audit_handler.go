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

type AuditHandler struct {
	auditService service.AuditService
	issuer       *auth.TokenIssuer
}

func NewAuditHandler(auditService service.AuditService, issuer *auth.TokenIssuer) *AuditHandler {
	return &AuditHandler{auditService: auditService, issuer: issuer}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *AuditHandler) RegisterRoutes(router *gin.RouterGroup) {
	audit := router.Group("/audit")
	audit.Use(middleware.Authenticate(h.issuer), middleware.RequireRole(model.RoleAdmin))
	{
		audit.GET("", h.List)
	}
}

// List returns the caller's company audit trail, newest first
// @Summary      List audit log entries
// @Tags         audit
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page number (default 1)"
// @Param        limit  query     int  false  "Number of items per page (default 20)"
// @Success      200    {object}  response.Response{data=pagination.Page}
// @Failure      403    {object}  response.Response
// @Router       /audit [get]
func (h *AuditHandler) List(c *gin.Context) {
	params := pagination.Parse(c)

	entries, total, err := h.auditService.List(c.Request.Context(), middleware.ContextCompanyID(c), params.Offset, params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, pagination.NewPage(entries, total, params)))
}
