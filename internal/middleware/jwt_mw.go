package middleware

import (
	"context"
	"net/http"
	"strings"

	"clinic_manager/internal/model"
	"clinic_manager/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	AuthUserKey   = "authUser"
	AuthRoleKey   = "authRole"
	AuthClinicKey = "authClinic"
)

// AccountLoader resolves a token subject to its account. Satisfied by
// repository.UserRepository.
type AccountLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
}

func abortAuth(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error":   "authentication_failed",
		"message": message,
	})
}

// Authenticate validates the bearer credential when one is present
// and resolves it to an account. A missing Authorization header is
// not an error: the request proceeds unauthenticated and route-level
// guards decide. The refresh cookie is never read here; the refresh
// endpoint handles that channel itself.
func Authenticate(jwtUtil *utils.JWTUtil, accounts AccountLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			abortAuth(c, "Format d'autorisation invalide")
			return
		}

		claims, err := jwtUtil.ValidateToken(parts[1], utils.TokenTypeAccess)
		if err != nil {
			abortAuth(c, "Jeton invalide ou expire")
			return
		}

		user, err := accounts.FindByID(c.Request.Context(), claims.UserID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error":   "internal_error",
				"message": "Erreur interne",
			})
			return
		}
		if user == nil {
			abortAuth(c, "Jeton invalide ou expire")
			return
		}
		if !user.IsActive {
			abortAuth(c, "Ce compte a ete desactive.")
			return
		}
		if user.IsLocked() {
			abortAuth(c, "Ce compte est temporairement bloque.")
			return
		}

		c.Set(AuthUserKey, user.ID)
		c.Set(AuthClinicKey, user.ClinicID)
		c.Set(AuthRoleKey, user.Role)

		c.Next()
	}
}

// RequireAuth rejects requests that did not authenticate.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get(AuthUserKey); !exists {
			abortAuth(c, "Authentification requise")
			return
		}
		c.Next()
	}
}
