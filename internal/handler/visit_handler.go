package handler

import (
	"net/http"
	"time"

	"clinic_manager/internal/middleware"
	"clinic_manager/internal/model"
	"clinic_manager/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// VisitHandler handles visit lifecycle requests
type VisitHandler struct {
	service service.VisitService
	log     *logrus.Logger
}

// NewVisitHandler creates a new VisitHandler
func NewVisitHandler(s service.VisitService, log *logrus.Logger) *VisitHandler {
	return &VisitHandler{service: s, log: log}
}

func (h *VisitHandler) Create(c *gin.Context) {
	_, clinicID, _, ok := authIdentity(c)
	if !ok {
		return
	}

	var req model.CreateVisitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBindError(c, err)
		return
	}

	visit, err := h.service.Create(c.Request.Context(), clinicID, req)
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, visit)
}

func (h *VisitHandler) Get(c *gin.Context) {
	_, clinicID, _, ok := authIdentity(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	visit, err := h.service.Get(c.Request.Context(), clinicID, id)
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, visit)
}

func (h *VisitHandler) List(c *gin.Context) {
	_, clinicID, _, ok := authIdentity(c)
	if !ok {
		return
	}

	var filters model.VisitFilters
	if raw := c.Query("patient_id"); raw != "" {
		patientID, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "validation_error",
				"message": "Erreur de validation",
				"details": gin.H{"patient_id": []string{"identifiant invalide"}},
			})
			return
		}
		filters.PatientID = &patientID
	}
	if status := c.Query("status"); status != "" {
		filters.Status = &status
	}
	if raw := c.Query("day"); raw != "" {
		day, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "validation_error",
				"message": "Erreur de validation",
				"details": gin.H{"day": []string{"format attendu: AAAA-MM-JJ"}},
			})
			return
		}
		filters.Day = &day
	}

	visits, err := h.service.List(c.Request.Context(), clinicID, filters)
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"visits": visits})
}

func (h *VisitHandler) Update(c *gin.Context) {
	_, clinicID, _, ok := authIdentity(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req model.UpdateVisitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBindError(c, err)
		return
	}

	visit, err := h.service.Update(c.Request.Context(), clinicID, id, req)
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, visit)
}

func (h *VisitHandler) Transition(c *gin.Context) {
	_, clinicID, _, ok := authIdentity(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Status string `json:"status" binding:"required,oneof=waiting in_consultation completed cancelled"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBindError(c, err)
		return
	}

	visit, err := h.service.Transition(c.Request.Context(), clinicID, id, req.Status)
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, visit)
}

// RegisterVisitRoutes registers visit routes. All clinical staff can
// read; writes need receptionist rank or above.
func (h *VisitHandler) RegisterVisitRoutes(rg *gin.RouterGroup) {
	visitGroup := rg.Group("/visits")
	visitGroup.Use(middleware.RequireAuth())
	{
		visitGroup.GET("", h.List)
		visitGroup.GET("/:id", h.Get)
		visitGroup.POST("", middleware.ReceptionistMiddleware(), h.Create)
		visitGroup.PATCH("/:id", middleware.ReceptionistMiddleware(), h.Update)
		visitGroup.POST("/:id/transition", h.Transition)
	}
}
