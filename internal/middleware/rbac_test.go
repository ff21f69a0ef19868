package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/proctorguard/backend/internal/model"
	"github.com/proctorguard/backend/internal/service"
)

func runPermissionGate(claims *service.Claims, gate gin.HandlerFunc) int {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	if claims != nil {
		c.Set(ContextKeyClaims, claims)
	}
	gate(c)
	if c.IsAborted() {
		return w.Code
	}
	return http.StatusOK
}

func TestRequirePermission(t *testing.T) {
	claims := &service.Claims{Permissions: []string{string(model.PermissionCreateExam)}}

	assert.Equal(t, http.StatusOK,
		runPermissionGate(claims, RequirePermission(model.PermissionCreateExam)))
	assert.Equal(t, http.StatusForbidden,
		runPermissionGate(claims, RequirePermission(model.PermissionTakeExam)))
	assert.Equal(t, http.StatusUnauthorized,
		runPermissionGate(nil, RequirePermission(model.PermissionCreateExam)))
}

func TestRequireAnyPermission(t *testing.T) {
	monitor := &service.Claims{Permissions: []string{string(model.PermissionViewAllSessions)}}
	candidate := &service.Claims{Permissions: []string{string(model.PermissionTakeExam)}}

	gate := RequireAnyPermission(model.PermissionViewExamConfig, model.PermissionViewAllSessions)

	assert.Equal(t, http.StatusOK, runPermissionGate(monitor, gate))
	assert.Equal(t, http.StatusForbidden, runPermissionGate(candidate, gate))
	assert.Equal(t, http.StatusUnauthorized, runPermissionGate(nil, gate))
}
