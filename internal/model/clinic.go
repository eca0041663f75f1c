package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	ServiceCategoryConsultation = "consultation"
	ServiceCategoryLaboratory   = "laboratory"
	ServiceCategoryPharmacy     = "pharmacy"
	ServiceCategoryCare         = "care"
)

// Clinic is the tenant boundary: every scoped record carries exactly
// one clinic reference.
type Clinic struct {
	ID                 uuid.UUID `json:"id"`
	Name               string    `json:"name"`
	Address            string    `json:"address"`
	City               string    `json:"city"`
	Region             string    `json:"region"`
	PhonePrimary       string    `json:"phone_primary"`
	PhoneSecondary     string    `json:"phone_secondary"`
	Email              string    `json:"email"`
	RegistrationNumber string    `json:"registration_number"`

	// Invoice settings
	InvoiceFooter string `json:"invoice_footer"`
	CashThreshold int    `json:"cash_threshold"`

	// Payment method settings (displayed on invoices)
	MTNMomoNumber     string `json:"mtn_momo_number"`
	OrangeMoneyNumber string `json:"orange_money_number"`
	BankName          string `json:"bank_name"`
	BankAccount       string `json:"bank_account"`

	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Service is a billable act in the clinic's catalogue. Prices are in
// XAF, whole francs only.
type Service struct {
	ID          uuid.UUID  `json:"id"`
	ClinicID    uuid.UUID  `json:"clinic_id"`
	Name        string     `json:"name"`
	Code        string     `json:"code"`
	Category    string     `json:"category"`
	Price       int        `json:"price"`
	Description string     `json:"description"`
	IsActive    bool       `json:"is_active"`
	IsDeleted   bool       `json:"is_deleted"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// CreateServiceRequest is used for adding a service to the catalogue
type CreateServiceRequest struct {
	Name        string `json:"name" binding:"required"`
	Code        string `json:"code" binding:"required"`
	Category    string `json:"category" binding:"required,oneof=consultation laboratory pharmacy care"`
	Price       int    `json:"price" binding:"required,gt=0"`
	Description string `json:"description"`
}

type UpdateServiceRequest struct {
	Name        *string `json:"name,omitempty"`
	Category    *string `json:"category,omitempty" binding:"omitempty,oneof=consultation laboratory pharmacy care"`
	Price       *int    `json:"price,omitempty" binding:"omitempty,gt=0"`
	Description *string `json:"description,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

type UpdateClinicRequest struct {
	Name               *string `json:"name,omitempty"`
	Address            *string `json:"address,omitempty"`
	City               *string `json:"city,omitempty"`
	Region             *string `json:"region,omitempty"`
	PhonePrimary       *string `json:"phone_primary,omitempty"`
	PhoneSecondary     *string `json:"phone_secondary,omitempty"`
	Email              *string `json:"email,omitempty"`
	RegistrationNumber *string `json:"registration_number,omitempty"`
	InvoiceFooter      *string `json:"invoice_footer,omitempty"`
	CashThreshold      *int    `json:"cash_threshold,omitempty"`
	MTNMomoNumber      *string `json:"mtn_momo_number,omitempty"`
	OrangeMoneyNumber  *string `json:"orange_money_number,omitempty"`
	BankName           *string `json:"bank_name,omitempty"`
	BankAccount        *string `json:"bank_account,omitempty"`
}
