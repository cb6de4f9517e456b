package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"backend/internal/auth"
	"backend/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newIssuer() *auth.TokenIssuer {
	return auth.NewTokenIssuer([]byte("test-secret"), "erp-api", "erp-clients")
}

func makeToken(t *testing.T, issuer *auth.TokenIssuer, roles []string, perms []auth.Permission) string {
	t.Helper()
	user := &model.User{ID: uuid.New(), Email: "u@acme.test", CompanyID: 3}
	token, err := issuer.IssueAccessToken(user, roles, perms)
	require.NoError(t, err)
	return token
}

func testRouter(issuer *auth.TokenIssuer, extra ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	handlers := append([]gin.HandlerFunc{Authenticate(issuer)}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"userID":    ContextUserID(c),
			"companyID": ContextCompanyID(c),
		})
	})
	r.GET("/protected", handlers...)
	return r
}

func TestAuthenticateMissingToken(t *testing.T) {
	r := testRouter(newIssuer())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticateMalformedHeader(t *testing.T) {
	r := testRouter(newIssuer())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Token abc")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticateBearerHeader(t *testing.T) {
	issuer := newIssuer()
	r := testRouter(issuer)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+makeToken(t, issuer, []string{model.RoleUser}, nil))
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"companyID":3`)
}

func TestAuthenticateCookie(t *testing.T) {
	issuer := newIssuer()
	r := testRouter(issuer)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: makeToken(t, issuer, []string{model.RoleUser}, nil)})
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthenticateRejectsTamperedToken(t *testing.T) {
	issuer := newIssuer()
	r := testRouter(issuer)

	token := makeToken(t, issuer, nil, nil)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token+"x")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticateRejectsRefreshToken(t *testing.T) {
	issuer := newIssuer()
	r := testRouter(issuer)

	user := &model.User{ID: uuid.New(), Email: "u@acme.test", CompanyID: 3}
	refresh, err := issuer.IssueRefreshToken(user)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+refresh)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRole(t *testing.T) {
	issuer := newIssuer()
	r := testRouter(issuer, RequireRole(model.RoleAdmin))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+makeToken(t, issuer, []string{model.RoleUser}, nil))
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+makeToken(t, issuer, []string{model.RoleAdmin}, nil))
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequirePermissionExactMatch(t *testing.T) {
	issuer := newIssuer()
	r := testRouter(issuer, RequirePermission(auth.PermEditInventory))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+makeToken(t, issuer, []string{model.RoleUser}, []auth.Permission{auth.PermEditInventory}))
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequirePermissionDenied(t *testing.T) {
	issuer := newIssuer()
	r := testRouter(issuer, RequirePermission(auth.PermDeleteInventory))

	// view does not imply delete
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+makeToken(t, issuer, []string{model.RoleUser}, []auth.Permission{auth.PermViewInventory}))
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequirePermissionAdminOverride(t *testing.T) {
	issuer := newIssuer()
	r := testRouter(issuer, RequirePermission(auth.PermDeleteInventory))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+makeToken(t, issuer, []string{model.RoleAdmin}, nil))
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
