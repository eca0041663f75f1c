package model

import (
	"time"

	"github.com/google/uuid"
)

// Patient is a clinic-scoped patient record with a human-readable
// identifier of the form PAT-YYYYMMDD-NNNN. Patients are never hard
// deleted; soft delete keeps the identifier space stable.
type Patient struct {
	ID          uuid.UUID  `json:"id"`
	ClinicID    uuid.UUID  `json:"clinic_id"`
	PatientID   string     `json:"patient_id"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	Phone       string     `json:"phone"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	Sex         string     `json:"sex"`
	Address     string     `json:"address"`
	BloodGroup  string     `json:"blood_group"`
	Allergies   string     `json:"allergies"`
	Notes       string     `json:"notes"`
	IsDeleted   bool       `json:"is_deleted"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// CreatePatientRequest is used for registering a new patient
type CreatePatientRequest struct {
	FirstName   string     `json:"first_name" binding:"required"`
	LastName    string     `json:"last_name" binding:"required"`
	Phone       string     `json:"phone"`
	DateOfBirth *time.Time `json:"date_of_birth"`
	Sex         string     `json:"sex" binding:"omitempty,oneof=M F"`
	Address     string     `json:"address"`
	BloodGroup  string     `json:"blood_group"`
	Allergies   string     `json:"allergies"`
	Notes       string     `json:"notes"`
}

type UpdatePatientRequest struct {
	FirstName   *string    `json:"first_name,omitempty"`
	LastName    *string    `json:"last_name,omitempty"`
	Phone       *string    `json:"phone,omitempty"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	Sex         *string    `json:"sex,omitempty" binding:"omitempty,oneof=M F"`
	Address     *string    `json:"address,omitempty"`
	BloodGroup  *string    `json:"blood_group,omitempty"`
	Allergies   *string    `json:"allergies,omitempty"`
	Notes       *string    `json:"notes,omitempty"`
}

// PatientFilters contains filter parameters for patient listing.
// IncludeDeleted is an explicit choice, never an implicit default.
type PatientFilters struct {
	Search         string
	IncludeDeleted bool
}
