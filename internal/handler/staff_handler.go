package handler

import (
	"net/http"

	"clinic_manager/internal/middleware"
	"clinic_manager/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// StaffHandler handles staff account management
type StaffHandler struct {
	service service.StaffService
	log     *logrus.Logger
}

// NewStaffHandler creates a new StaffHandler
func NewStaffHandler(s service.StaffService, log *logrus.Logger) *StaffHandler {
	return &StaffHandler{service: s, log: log}
}

func (h *StaffHandler) Invite(c *gin.Context) {
	_, clinicID, role, ok := authIdentity(c)
	if !ok {
		return
	}

	var req service.InviteStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBindError(c, err)
		return
	}

	user, err := h.service.Invite(c.Request.Context(), clinicID, role, req)
	if err != nil {
		RespondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Membre du personnel invite",
		"user":    user,
	})
}

func (h *StaffHandler) List(c *gin.Context) {
	_, clinicID, _, ok := authIdentity(c)
	if !ok {
		return
	}

	users, err := h.service.List(c.Request.Context(), clinicID)
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"staff": users})
}

func (h *StaffHandler) Get(c *gin.Context) {
	_, clinicID, _, ok := authIdentity(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	user, err := h.service.Get(c.Request.Context(), clinicID, id)
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *StaffHandler) Update(c *gin.Context) {
	_, clinicID, role, ok := authIdentity(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req service.UpdateStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBindError(c, err)
		return
	}

	user, err := h.service.Update(c.Request.Context(), clinicID, role, id, req)
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *StaffHandler) Deactivate(c *gin.Context) {
	userID, clinicID, _, ok := authIdentity(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Deactivate(c.Request.Context(), clinicID, userID, id); err != nil {
		RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Compte desactive"})
}

// RegisterStaffRoutes registers staff routes. Admin and above only.
func (h *StaffHandler) RegisterStaffRoutes(rg *gin.RouterGroup) {
	staffGroup := rg.Group("/staff")
	staffGroup.Use(middleware.RequireAuth(), middleware.AdminMiddleware())
	{
		staffGroup.POST("", h.Invite)
		staffGroup.GET("", h.List)
		staffGroup.GET("/:id", h.Get)
		staffGroup.PATCH("/:id", h.Update)
		staffGroup.DELETE("/:id", h.Deactivate)
	}
}
