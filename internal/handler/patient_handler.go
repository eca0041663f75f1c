package handler

import (
	"net/http"

	"clinic_manager/internal/middleware"
	"clinic_manager/internal/model"
	"clinic_manager/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// PatientHandler handles patient record requests
type PatientHandler struct {
	service service.PatientService
	log     *logrus.Logger
}

// NewPatientHandler creates a new PatientHandler
func NewPatientHandler(s service.PatientService, log *logrus.Logger) *PatientHandler {
	return &PatientHandler{service: s, log: log}
}

func (h *PatientHandler) Create(c *gin.Context) {
	_, clinicID, _, ok := authIdentity(c)
	if !ok {
		return
	}

	var req model.CreatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBindError(c, err)
		return
	}

	patient, err := h.service.Create(c.Request.Context(), clinicID, req)
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, patient)
}

func (h *PatientHandler) Get(c *gin.Context) {
	_, clinicID, _, ok := authIdentity(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	patient, err := h.service.Get(c.Request.Context(), clinicID, id, includeDeletedQuery(c))
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, patient)
}

func (h *PatientHandler) List(c *gin.Context) {
	_, clinicID, _, ok := authIdentity(c)
	if !ok {
		return
	}

	filters := model.PatientFilters{
		Search:         c.Query("search"),
		IncludeDeleted: includeDeletedQuery(c),
	}
	patients, err := h.service.List(c.Request.Context(), clinicID, filters)
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"patients": patients})
}

func (h *PatientHandler) Update(c *gin.Context) {
	_, clinicID, _, ok := authIdentity(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req model.UpdatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBindError(c, err)
		return
	}

	patient, err := h.service.Update(c.Request.Context(), clinicID, id, req)
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, patient)
}

func (h *PatientHandler) Delete(c *gin.Context) {
	_, clinicID, _, ok := authIdentity(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), clinicID, id); err != nil {
		RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Patient supprime"})
}

func (h *PatientHandler) Restore(c *gin.Context) {
	_, clinicID, _, ok := authIdentity(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Restore(c.Request.Context(), clinicID, id); err != nil {
		RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Patient restaure"})
}

// RegisterPatientRoutes registers patient routes. Receptionist and above.
func (h *PatientHandler) RegisterPatientRoutes(rg *gin.RouterGroup) {
	patientGroup := rg.Group("/patients")
	patientGroup.Use(middleware.RequireAuth())
	{
		patientGroup.GET("", h.List)
		patientGroup.GET("/:id", h.Get)
		patientGroup.POST("", middleware.ReceptionistMiddleware(), h.Create)
		patientGroup.PATCH("/:id", middleware.ReceptionistMiddleware(), h.Update)
		patientGroup.DELETE("/:id", middleware.AdminMiddleware(), h.Delete)
		patientGroup.POST("/:id/restore", middleware.AdminMiddleware(), h.Restore)
	}
}
