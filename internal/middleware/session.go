package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/proctorguard/backend/internal/response"
	"github.com/proctorguard/backend/internal/service"
)

// CheckSingleDeviceSession validates the JWT's JTI against the active
// candidate session in Redis. A mismatch means the session was reset by a
// coordinator or superseded, and the request is rejected.
func CheckSingleDeviceSession(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		// Staff tokens are stateless.
		if claims.TokenType != service.TokenTypeCandidate {
			c.Next()
			return
		}

		if err := authService.ValidateCandidateSession(c.Request.Context(), claims.UserID, claims.ID); err != nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrSessionInvalidated)
			return
		}

		c.Next()
	}
}
