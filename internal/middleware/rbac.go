package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/proctorguard/backend/internal/model"
	"github.com/proctorguard/backend/internal/response"
)

// RequirePermission checks that the JWT carries the required permission code.
// Permissions are embedded at login from the role matrix, so this gate costs
// no database round trip.
func RequirePermission(permission model.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		for _, p := range claims.Permissions {
			if p == string(permission) {
				c.Next()
				return
			}
		}

		response.AbortFail(c, http.StatusForbidden, response.ErrPermissionDenied)
	}
}

// RequireAnyPermission checks that the JWT carries at least one of the
// specified permissions.
func RequireAnyPermission(permissions ...model.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		for _, p := range claims.Permissions {
			for _, perm := range permissions {
				if p == string(perm) {
					c.Next()
					return
				}
			}
		}

		response.AbortFail(c, http.StatusForbidden, response.ErrPermissionDenied)
	}
}
