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

// BillingHandler handles invoice, payment and report requests
type BillingHandler struct {
	service service.BillingService
	log     *logrus.Logger
}

// NewBillingHandler creates a new BillingHandler
func NewBillingHandler(s service.BillingService, log *logrus.Logger) *BillingHandler {
	return &BillingHandler{service: s, log: log}
}

// billingFilters parses the shared invoice/payment query filters.
// Writes the validation envelope and returns false on a bad value.
func billingFilters(c *gin.Context) (model.BillingFilters, bool) {
	var filters model.BillingFilters
	if raw := c.Query("patient_id"); raw != "" {
		patientID, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "validation_error",
				"message": "Erreur de validation",
				"details": gin.H{"patient_id": []string{"identifiant invalide"}},
			})
			return filters, false
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
			return filters, false
		}
		filters.Day = &day
	}
	return filters, true
}

func (h *BillingHandler) CreateInvoice(c *gin.Context) {
	_, clinicID, _, ok := authIdentity(c)
	if !ok {
		return
	}

	var req model.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBindError(c, err)
		return
	}

	invoice, items, err := h.service.CreateInvoice(c.Request.Context(), clinicID, req)
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"invoice": invoice, "items": items})
}

func (h *BillingHandler) GetInvoice(c *gin.Context) {
	_, clinicID, _, ok := authIdentity(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	invoice, items, err := h.service.GetInvoice(c.Request.Context(), clinicID, id)
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invoice": invoice, "items": items})
}

func (h *BillingHandler) ListInvoices(c *gin.Context) {
	_, clinicID, _, ok := authIdentity(c)
	if !ok {
		return
	}
	filters, ok := billingFilters(c)
	if !ok {
		return
	}

	invoices, err := h.service.ListInvoices(c.Request.Context(), clinicID, filters)
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invoices": invoices})
}

func (h *BillingHandler) CancelInvoice(c *gin.Context) {
	_, clinicID, _, ok := authIdentity(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.service.CancelInvoice(c.Request.Context(), clinicID, id); err != nil {
		RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Facture annulee"})
}

func (h *BillingHandler) RecordPayment(c *gin.Context) {
	userID, clinicID, _, ok := authIdentity(c)
	if !ok {
		return
	}

	var req model.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBindError(c, err)
		return
	}

	payment, err := h.service.RecordPayment(c.Request.Context(), clinicID, userID, req)
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, payment)
}

func (h *BillingHandler) ListPayments(c *gin.Context) {
	_, clinicID, _, ok := authIdentity(c)
	if !ok {
		return
	}
	filters, ok := billingFilters(c)
	if !ok {
		return
	}

	payments, err := h.service.ListPayments(c.Request.Context(), clinicID, filters)
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": payments})
}

func (h *BillingHandler) DailySummary(c *gin.Context) {
	_, clinicID, _, ok := authIdentity(c)
	if !ok {
		return
	}

	day := time.Now()
	if raw := c.Query("day"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "validation_error",
				"message": "Erreur de validation",
				"details": gin.H{"day": []string{"format attendu: AAAA-MM-JJ"}},
			})
			return
		}
		day = parsed
	}

	summary, err := h.service.DailySummary(c.Request.Context(), clinicID, day)
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// RegisterBillingRoutes registers invoice, payment and report routes.
func (h *BillingHandler) RegisterBillingRoutes(rg *gin.RouterGroup) {
	invoiceGroup := rg.Group("/invoices")
	invoiceGroup.Use(middleware.RequireAuth(), middleware.ReceptionistMiddleware())
	{
		invoiceGroup.POST("", h.CreateInvoice)
		invoiceGroup.GET("", h.ListInvoices)
		invoiceGroup.GET("/:id", h.GetInvoice)
		invoiceGroup.POST("/:id/cancel", middleware.AdminMiddleware(), h.CancelInvoice)
	}

	paymentGroup := rg.Group("/payments")
	paymentGroup.Use(middleware.RequireAuth(), middleware.ReceptionistMiddleware())
	{
		paymentGroup.POST("", h.RecordPayment)
		paymentGroup.GET("", h.ListPayments)
	}

	reportGroup := rg.Group("/reports")
	reportGroup.Use(middleware.RequireAuth(), middleware.AdminMiddleware())
	{
		reportGroup.GET("/daily-summary", h.DailySummary)
	}
}
