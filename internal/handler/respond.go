package handler

import (
	"fmt"
	"net/http"

	"clinic_manager/internal/apperr"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// statusCodes maps failure kinds to HTTP statuses.
var statusCodes = map[apperr.Kind]int{
	apperr.KindValidation:       http.StatusBadRequest,
	apperr.KindAuthentication:   http.StatusUnauthorized,
	apperr.KindAuthorization:    http.StatusForbidden,
	apperr.KindNotFound:         http.StatusNotFound,
	apperr.KindConflict:         http.StatusConflict,
	apperr.KindRateLimited:      http.StatusTooManyRequests,
	apperr.KindCapacityExceeded: http.StatusServiceUnavailable,
	apperr.KindInternal:         http.StatusInternalServerError,
}

// errorCodes maps failure kinds to stable envelope codes.
var errorCodes = map[apperr.Kind]string{
	apperr.KindValidation:       "validation_error",
	apperr.KindAuthentication:   "authentication_failed",
	apperr.KindAuthorization:    "forbidden",
	apperr.KindNotFound:         "not_found",
	apperr.KindConflict:         "conflict",
	apperr.KindRateLimited:      "throttled",
	apperr.KindCapacityExceeded: "capacity_exceeded",
	apperr.KindInternal:         "internal_error",
}

// Shape normalizes a response body into the stable envelope
// {error, message, details?} for an error status. Bodies already
// carrying the envelope pass through unchanged.
func Shape(status int, body map[string]any) map[string]any {
	if _, shaped := body["error"]; shaped {
		return body
	}

	switch status {
	case http.StatusBadRequest:
		shaped := map[string]any{"error": "validation_error", "message": "Erreur de validation"}
		if len(body) > 0 {
			shaped["details"] = body
		}
		return shaped
	case http.StatusForbidden:
		message := "Permission refusee"
		if m, ok := body["message"].(string); ok && m != "" {
			message = m
		}
		return map[string]any{"error": "forbidden", "message": message}
	case http.StatusNotFound:
		return map[string]any{"error": "not_found", "message": "Ressource introuvable"}
	case http.StatusMethodNotAllowed:
		return map[string]any{"error": "method_not_allowed", "message": "Methode non autorisee"}
	case http.StatusTooManyRequests:
		message := "Trop de requetes."
		if wait, ok := body["retry_after"].(int); ok && wait > 0 {
			message = fmt.Sprintf("Trop de requetes. Reessayer dans %d secondes", wait)
		}
		return map[string]any{"error": "throttled", "message": message}
	}
	return body
}

// RespondError maps a domain failure to the wire envelope. Untyped
// errors become an opaque 500; their detail goes to the log only.
func RespondError(c *gin.Context, log *logrus.Logger, err error) {
	e, ok := apperr.As(err)
	if !ok {
		log.WithField("path", c.FullPath()).Errorf("unhandled error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Erreur interne du serveur",
		})
		return
	}

	if e.Kind == apperr.KindCapacityExceeded {
		// Operational alert: the daily identifier space ran out.
		log.WithField("path", c.FullPath()).Errorf("capacity exceeded: %v", e)
	}

	body := gin.H{
		"error":   errorCodes[e.Kind],
		"message": e.Message,
	}
	if len(e.Details) > 0 {
		body["details"] = e.Details
	}
	if e.RetryAfterSeconds > 0 {
		c.Header("Retry-After", fmt.Sprintf("%d", e.RetryAfterSeconds))
	}
	c.JSON(statusCodes[e.Kind], body)
}

// RespondBindError shapes a request-binding failure as a validation
// envelope.
func RespondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "validation_error",
		"message": "Erreur de validation",
		"details": gin.H{"body": []string{err.Error()}},
	})
}

// RegisterFallbackRoutes wires the envelope onto gin's unmatched-route
// and wrong-method responses.
func RegisterFallbackRoutes(router *gin.Engine) {
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, Shape(http.StatusNotFound, map[string]any{}))
	})
	router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, Shape(http.StatusMethodNotAllowed, map[string]any{}))
	})
}
