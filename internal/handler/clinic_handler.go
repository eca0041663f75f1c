package handler

import (
	"net/http"
	"strconv"

	"clinic_manager/internal/middleware"
	"clinic_manager/internal/model"
	"clinic_manager/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ClinicHandler handles clinic profile and service catalogue requests
type ClinicHandler struct {
	service service.ClinicService
	log     *logrus.Logger
}

// NewClinicHandler creates a new ClinicHandler
func NewClinicHandler(s service.ClinicService, log *logrus.Logger) *ClinicHandler {
	return &ClinicHandler{service: s, log: log}
}

// includeDeletedQuery reads the ?include_deleted flag. Absent or
// malformed means false.
func includeDeletedQuery(c *gin.Context) bool {
	v, err := strconv.ParseBool(c.DefaultQuery("include_deleted", "false"))
	if err != nil {
		return false
	}
	return v
}

func (h *ClinicHandler) Get(c *gin.Context) {
	_, clinicID, _, ok := authIdentity(c)
	if !ok {
		return
	}

	clinic, err := h.service.Get(c.Request.Context(), clinicID)
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, clinic)
}

func (h *ClinicHandler) Update(c *gin.Context) {
	_, clinicID, _, ok := authIdentity(c)
	if !ok {
		return
	}

	var req model.UpdateClinicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBindError(c, err)
		return
	}

	clinic, err := h.service.Update(c.Request.Context(), clinicID, req)
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, clinic)
}

func (h *ClinicHandler) CreateService(c *gin.Context) {
	_, clinicID, _, ok := authIdentity(c)
	if !ok {
		return
	}

	var req model.CreateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBindError(c, err)
		return
	}

	svc, err := h.service.CreateService(c.Request.Context(), clinicID, req)
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, svc)
}

func (h *ClinicHandler) GetService(c *gin.Context) {
	_, clinicID, _, ok := authIdentity(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	svc, err := h.service.GetService(c.Request.Context(), clinicID, id, includeDeletedQuery(c))
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, svc)
}

func (h *ClinicHandler) ListServices(c *gin.Context) {
	_, clinicID, _, ok := authIdentity(c)
	if !ok {
		return
	}

	services, err := h.service.ListServices(c.Request.Context(), clinicID, includeDeletedQuery(c))
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"services": services})
}

func (h *ClinicHandler) UpdateService(c *gin.Context) {
	_, clinicID, _, ok := authIdentity(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req model.UpdateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBindError(c, err)
		return
	}

	svc, err := h.service.UpdateService(c.Request.Context(), clinicID, id, req)
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, svc)
}

func (h *ClinicHandler) DeleteService(c *gin.Context) {
	_, clinicID, _, ok := authIdentity(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteService(c.Request.Context(), clinicID, id); err != nil {
		RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Service supprime"})
}

func (h *ClinicHandler) RestoreService(c *gin.Context) {
	_, clinicID, _, ok := authIdentity(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.service.RestoreService(c.Request.Context(), clinicID, id); err != nil {
		RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Service restaure"})
}

// RegisterClinicRoutes registers clinic profile and catalogue routes.
func (h *ClinicHandler) RegisterClinicRoutes(rg *gin.RouterGroup) {
	clinicGroup := rg.Group("/clinic")
	clinicGroup.Use(middleware.RequireAuth())
	{
		clinicGroup.GET("", h.Get)
		clinicGroup.PATCH("", middleware.OwnerMiddleware(), h.Update)
	}

	serviceGroup := rg.Group("/services")
	serviceGroup.Use(middleware.RequireAuth())
	{
		serviceGroup.GET("", h.ListServices)
		serviceGroup.GET("/:id", h.GetService)
		serviceGroup.POST("", middleware.AdminMiddleware(), h.CreateService)
		serviceGroup.PATCH("/:id", middleware.AdminMiddleware(), h.UpdateService)
		serviceGroup.DELETE("/:id", middleware.AdminMiddleware(), h.DeleteService)
		serviceGroup.POST("/:id/restore", middleware.AdminMiddleware(), h.RestoreService)
	}
}
