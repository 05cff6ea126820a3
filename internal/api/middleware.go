package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sugar258596/experiment-server/internal/auth"
	"github.com/sugar258596/experiment-server/internal/user"
)

// requireRole aborts with 403 unless the authenticated principal's role
// passes the check. It must run after the auth middleware.
func requireRole(check func(user.Role) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := user.Role(auth.GetUserRole(c))
		if !role.Valid() || !check(role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "permission denied",
			})
			return
		}
		c.Next()
	}
}

// RequireReviewer restricts a route to teachers and above.
func RequireReviewer() gin.HandlerFunc {
	return requireRole(user.Role.CanReview)
}

// RequireAdmin restricts a route to admins and above.
func RequireAdmin() gin.HandlerFunc {
	return requireRole(user.Role.IsAdmin)
}
