package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	InvoiceStatusPending   = "pending"
	InvoiceStatusPartial   = "partial"
	InvoiceStatusPaid      = "paid"
	InvoiceStatusCancelled = "cancelled"
)

const (
	PaymentMethodCash        = "cash"
	PaymentMethodMTNMomo     = "mtn_momo"
	PaymentMethodOrangeMoney = "orange_money"
	PaymentMethodBank        = "bank"
)

// Invoice is a bill for a patient, identified as INV-YYYYMMDD-NNNN.
// Amounts are XAF, whole francs.
type Invoice struct {
	ID            uuid.UUID  `json:"id"`
	ClinicID      uuid.UUID  `json:"clinic_id"`
	InvoiceNumber string     `json:"invoice_number"`
	PatientID     uuid.UUID  `json:"patient_id"`
	VisitID       *uuid.UUID `json:"visit_id,omitempty"`
	TotalAmount   int64      `json:"total_amount"`
	PaidAmount    int64      `json:"paid_amount"`
	Status        string     `json:"status"`
	IssuedAt      time.Time  `json:"issued_at"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// InvoiceItem is one billed service line on an invoice.
type InvoiceItem struct {
	ID        uuid.UUID `json:"id"`
	InvoiceID uuid.UUID `json:"invoice_id"`
	ServiceID uuid.UUID `json:"service_id"`
	Label     string    `json:"label"`
	Quantity  int       `json:"quantity"`
	UnitPrice int64     `json:"unit_price"`
}

// Payment records money received against an invoice, identified as
// PAY-YYYYMMDD-NNNN.
type Payment struct {
	ID         uuid.UUID `json:"id"`
	ClinicID   uuid.UUID `json:"clinic_id"`
	PaymentID  string    `json:"payment_id"`
	InvoiceID  uuid.UUID `json:"invoice_id"`
	Amount     int64     `json:"amount"`
	Method     string    `json:"method"`
	ReceivedBy uuid.UUID `json:"received_by"`
	ReceivedAt time.Time `json:"received_at"`
	CreatedAt  time.Time `json:"created_at"`
}

// CreateInvoiceRequest is used for issuing a new invoice
type CreateInvoiceRequest struct {
	PatientID uuid.UUID                  `json:"patient_id" binding:"required"`
	VisitID   *uuid.UUID                 `json:"visit_id"`
	Items     []CreateInvoiceItemRequest `json:"items" binding:"required,min=1,dive"`
}

type CreateInvoiceItemRequest struct {
	ServiceID uuid.UUID `json:"service_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,gt=0"`
}

// CreatePaymentRequest is used for recording a payment
type CreatePaymentRequest struct {
	InvoiceID uuid.UUID `json:"invoice_id" binding:"required"`
	Amount    int64     `json:"amount" binding:"required,gt=0"`
	Method    string    `json:"method" binding:"required,oneof=cash mtn_momo orange_money bank"`
}

// BillingFilters contains filter parameters for invoice/payment listing
type BillingFilters struct {
	PatientID *uuid.UUID
	Status    *string
	Day       *time.Time
}

// DailySummary aggregates one clinic day for reporting.
type DailySummary struct {
	Day             string           `json:"day"`
	RevenueByMethod map[string]int64 `json:"revenue_by_method"`
	TotalRevenue    int64            `json:"total_revenue"`
	InvoiceCount    int64            `json:"invoice_count"`
	VisitCount      int64            `json:"visit_count"`
	NewPatients     int64            `json:"new_patients"`
}
