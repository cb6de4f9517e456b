package handler

import (
	"errors"
	"net/http"

	"backend/internal/model"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

// respondError maps domain errors onto HTTP statuses and writes the standard
// error envelope. Cross-tenant access is surfaced as 403 on user-management
// endpoints; inventory and project lookups never produce it because their
// queries are tenant-filtered and miss entirely (404).
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, model.ErrNotFound), errors.Is(err, model.ErrNoTenant):
		status = http.StatusNotFound
	case errors.Is(err, model.ErrEmailExists),
		errors.Is(err, model.ErrCompanyNameExists),
		errors.Is(err, model.ErrSKUExists):
		status = http.StatusConflict
	case errors.Is(err, model.ErrInvalidCredentials),
		errors.Is(err, model.ErrEmailNotConfirmed):
		status = http.StatusUnauthorized
	case errors.Is(err, model.ErrCrossTenantAccess):
		status = http.StatusForbidden
	case errors.Is(err, model.ErrInvalidPermission),
		errors.Is(err, model.ErrInvalidRole),
		errors.Is(err, model.ErrTokenExpired),
		errors.Is(err, model.ErrWrongTokenType):
		status = http.StatusBadRequest
	}

	c.JSON(status, response.Error(status, err.Error()))
}
