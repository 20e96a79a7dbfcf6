package httpserver

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"taskman/internal/handler"
	"taskman/internal/model"
	"taskman/internal/util"
	"taskman/pkg/rbac"
)

const testSecret = "test-secret"

func authTestRouter(t *testing.T, extra ...gin.HandlerFunc) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	handlers := append([]gin.HandlerFunc{AuthMiddleware(testSecret, zap.NewNop())}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, handler.CurrentIdentity(c))
	})
	r.GET("/probe", handlers...)
	return r
}

func doProbe(r *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddlewareMissingToken(t *testing.T) {
	w := doProbe(authTestRouter(t), "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareBadToken(t *testing.T) {
	w := doProbe(authTestRouter(t), "garbage")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareWrongSecret(t *testing.T) {
	token, err := util.GenerateJWT(5, rbac.RoleEmployee, "other-secret")
	require.NoError(t, err)

	w := doProbe(authTestRouter(t), token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareSetsDerivedIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	var got model.Identity
	r.GET("/probe", AuthMiddleware(testSecret, zap.NewNop()), func(c *gin.Context) {
		got = handler.CurrentIdentity(c)
		c.Status(http.StatusOK)
	})

	token, err := util.GenerateJWT(5, rbac.RoleDesigner, testSecret)
	require.NoError(t, err)

	w := doProbe(r, token)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, 5, got.UserID)
	assert.Equal(t, rbac.RoleDesigner, got.Role)
	assert.Equal(t, rbac.DefaultPermissions(rbac.RoleDesigner), got.Permissions)
}

func TestRequireRole(t *testing.T) {
	r := authTestRouter(t, RequireRole(rbac.RoleAdmin))

	adminToken, err := util.GenerateJWT(1, rbac.RoleAdmin, testSecret)
	require.NoError(t, err)
	employeeToken, err := util.GenerateJWT(5, rbac.RoleEmployee, testSecret)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, doProbe(r, adminToken).Code)
	assert.Equal(t, http.StatusForbidden, doProbe(r, employeeToken).Code)
}

func TestRequirePermission(t *testing.T) {
	r := authTestRouter(t, RequirePermission(rbac.PermissionViewReports))

	pmToken, err := util.GenerateJWT(2, rbac.RoleProjectManager, testSecret)
	require.NoError(t, err)
	employeeToken, err := util.GenerateJWT(5, rbac.RoleEmployee, testSecret)
	require.NoError(t, err)
	adminToken, err := util.GenerateJWT(1, rbac.RoleAdmin, testSecret)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, doProbe(r, pmToken).Code)
	assert.Equal(t, http.StatusForbidden, doProbe(r, employeeToken).Code)
	// admin bypasses the permission list
	assert.Equal(t, http.StatusOK, doProbe(r, adminToken).Code)
}
