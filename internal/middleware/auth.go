package middleware

import (
	"net/http"
	"strings"

	"backend/internal/auth"
	"backend/internal/model"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

// Context keys set by Authenticate
const (
	CtxUserID    = "userID"
	CtxUserEmail = "userEmail"
	CtxCompanyID = "companyID"
	CtxRoles     = "userRoles"
	CtxPerms     = "userPerms"
)

// Authenticate validates the bearer token and loads the caller's claims into
// the gin context. Tries the access_token cookie first, then the
// Authorization header.
func Authenticate(issuer *auth.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, cookieErr := c.Cookie("access_token")
		if cookieErr != nil || tokenString == "" {
			authHeader := c.GetHeader("Authorization")
			if authHeader == "" {
				c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authorization is missing"))
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid authorization format. Expected 'Bearer <token>'"))
				return
			}
			tokenString = parts[1]
		}

		claims, err := issuer.ParseAccessToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token: "+err.Error()))
			return
		}

		sub, _ := claims["sub"].(string)
		email, _ := claims["email"].(string)

		c.Set(CtxUserID, sub)
		c.Set(CtxUserEmail, email)
		c.Set(CtxCompanyID, auth.CompanyIDFromClaims(claims))
		c.Set(CtxRoles, auth.RolesFromClaims(claims))
		c.Set(CtxPerms, auth.PermissionsFromClaims(claims))

		c.Next()
	}
}

// RequireRole rejects callers whose role claims contain none of allowedRoles.
// Must run after Authenticate.
func RequireRole(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		roles := ContextRoles(c)

		for _, role := range roles {
			for _, allowed := range allowedRoles {
				if role == allowed {
					c.Next()
					return
				}
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied: insufficient role"))
	}
}

// RequirePermission grants access when the caller holds the Admin role or the
// exact named permission claim. Admin is the sole universal override; no
// permission implies another. Must run after Authenticate.
func RequirePermission(required auth.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, role := range ContextRoles(c) {
			if role == model.RoleAdmin {
				c.Next()
				return
			}
		}

		for _, p := range ContextPermissions(c) {
			if p == string(required) {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied: missing permission '"+string(required)+"'"))
	}
}

// ContextUserID returns the authenticated caller's id, or "" if unauthenticated
func ContextUserID(c *gin.Context) string {
	id, _ := c.Value(CtxUserID).(string)
	return id
}

// ContextCompanyID returns the caller's resolved tenant id (0 = no tenant)
func ContextCompanyID(c *gin.Context) uint {
	id, _ := c.Value(CtxCompanyID).(uint)
	return id
}

// ContextRoles returns the caller's role claims
func ContextRoles(c *gin.Context) []string {
	roles, _ := c.Value(CtxRoles).([]string)
	return roles
}

// ContextPermissions returns the caller's permission claims
func ContextPermissions(c *gin.Context) []string {
	perms, _ := c.Value(CtxPerms).([]string)
	return perms
}
