package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	VisitStatusWaiting        = "waiting"
	VisitStatusInConsultation = "in_consultation"
	VisitStatusCompleted      = "completed"
	VisitStatusCancelled      = "cancelled"
)

// Visit is one patient encounter, identified as VIS-YYYYMMDD-NNNN.
type Visit struct {
	ID        uuid.UUID  `json:"id"`
	ClinicID  uuid.UUID  `json:"clinic_id"`
	VisitID   string     `json:"visit_id"`
	PatientID uuid.UUID  `json:"patient_id"`
	Reason    string     `json:"reason"`
	Diagnosis string     `json:"diagnosis"`
	Notes     string     `json:"notes"`
	Status    string     `json:"status"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// visitTransitions lists the allowed status changes.
var visitTransitions = map[string][]string{
	VisitStatusWaiting:        {VisitStatusInConsultation, VisitStatusCancelled},
	VisitStatusInConsultation: {VisitStatusCompleted, VisitStatusCancelled},
}

// CanTransitionVisit reports whether a visit may move from one status
// to another. Completed and cancelled are terminal.
func CanTransitionVisit(from, to string) bool {
	for _, next := range visitTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CreateVisitRequest is used for opening a new visit
type CreateVisitRequest struct {
	PatientID uuid.UUID `json:"patient_id" binding:"required"`
	Reason    string    `json:"reason" binding:"required"`
}

type UpdateVisitRequest struct {
	Reason    *string `json:"reason,omitempty"`
	Diagnosis *string `json:"diagnosis,omitempty"`
	Notes     *string `json:"notes,omitempty"`
}

// VisitFilters contains filter parameters for visit listing
type VisitFilters struct {
	PatientID *uuid.UUID
	Status    *string
	Day       *time.Time
}
