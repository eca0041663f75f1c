package middleware

import (
	"net/http"

	"clinic_manager/internal/model"

	"github.com/gin-gonic/gin"
)

// RequireRole creates a middleware admitting only callers whose role
// ranks at or above minRole in the owner > admin > receptionist >
// nurse hierarchy.
func RequireRole(minRole string) gin.HandlerFunc {
	minLevel := model.RoleLevel(minRole)
	return func(c *gin.Context) {
		roleVal, exists := c.Get(AuthRoleKey)
		if !exists {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":   "forbidden",
				"message": "Role introuvable, authentification requise",
			})
			return
		}

		userRole, ok := roleVal.(string)
		if !ok || model.RoleLevel(userRole) < minLevel {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":   "forbidden",
				"message": "Permission refusee",
			})
			return
		}

		c.Next()
	}
}

// AdminMiddleware admits admins and owners
func AdminMiddleware() gin.HandlerFunc {
	return RequireRole(model.RoleAdmin)
}

// OwnerMiddleware admits owners only
func OwnerMiddleware() gin.HandlerFunc {
	return RequireRole(model.RoleOwner)
}

// ReceptionistMiddleware admits receptionists and above
func ReceptionistMiddleware() gin.HandlerFunc {
	return RequireRole(model.RoleReceptionist)
}
