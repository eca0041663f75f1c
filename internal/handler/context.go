package handler

import (
	"net/http"

	"clinic_manager/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// authIdentity pulls the authenticated user, clinic and role out of the
// request context. Aborts with 401 when the token middleware did not run.
func authIdentity(c *gin.Context) (userID, clinicID uuid.UUID, role string, ok bool) {
	rawUser, exists := c.Get(middleware.AuthUserKey)
	if !exists {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error":   "authentication_failed",
			"message": "Authentification requise",
		})
		return uuid.Nil, uuid.Nil, "", false
	}
	userID = rawUser.(uuid.UUID)
	if rawClinic, exists := c.Get(middleware.AuthClinicKey); exists {
		clinicID = rawClinic.(uuid.UUID)
	}
	if rawRole, exists := c.Get(middleware.AuthRoleKey); exists {
		role = rawRole.(string)
	}
	return userID, clinicID, role, true
}

// pathUUID parses a path parameter as a UUID, writing the validation
// envelope on failure.
func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation_error",
			"message": "Erreur de validation",
			"details": gin.H{name: []string{"identifiant invalide"}},
		})
		return uuid.Nil, false
	}
	return id, true
}
