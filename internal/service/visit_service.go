package service

import (
	"context"
	"errors"
	"time"

	"clinic_manager/internal/apperr"
	"clinic_manager/internal/model"
	"clinic_manager/internal/repository"
	"clinic_manager/internal/sequence"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// VisitService manages patient visits for one clinic
type VisitService interface {
	Create(ctx context.Context, clinicID uuid.UUID, req model.CreateVisitRequest) (*model.Visit, error)
	Get(ctx context.Context, clinicID, id uuid.UUID) (*model.Visit, error)
	List(ctx context.Context, clinicID uuid.UUID, filters model.VisitFilters) ([]model.Visit, error)
	Update(ctx context.Context, clinicID, id uuid.UUID, req model.UpdateVisitRequest) (*model.Visit, error)
	Transition(ctx context.Context, clinicID, id uuid.UUID, status string) (*model.Visit, error)
}

type visitService struct {
	visitRepo   repository.VisitRepository
	patientRepo repository.PatientRepository
	idGen       *sequence.Generator
}

// NewVisitService creates a new VisitService
func NewVisitService(visitRepo repository.VisitRepository, patientRepo repository.PatientRepository,
	idGen *sequence.Generator) VisitService {
	return &visitService{visitRepo: visitRepo, patientRepo: patientRepo, idGen: idGen}
}

// Create opens a visit for an existing patient, assigning the next
// VIS identifier
func (s *visitService) Create(ctx context.Context, clinicID uuid.UUID, req model.CreateVisitRequest) (*model.Visit, error) {
	patient, err := s.patientRepo.FindByID(ctx, clinicID, req.PatientID, false)
	if err != nil {
		return nil, err
	}
	if patient == nil {
		return nil, apperr.NotFound()
	}

	visitID, err := s.idGen.Generate(ctx, sequence.KindVisit, clinicID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	v := &model.Visit{
		ID:        uuid.New(),
		ClinicID:  clinicID,
		VisitID:   visitID,
		PatientID: patient.ID,
		Reason:    req.Reason,
		Status:    model.VisitStatusWaiting,
		StartedAt: now,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.visitRepo.Create(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

// Get returns one visit of the clinic
func (s *visitService) Get(ctx context.Context, clinicID, id uuid.UUID) (*model.Visit, error) {
	v, err := s.visitRepo.FindByID(ctx, clinicID, id)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, apperr.NotFound()
	}
	return v, nil
}

// List returns visits of the clinic
func (s *visitService) List(ctx context.Context, clinicID uuid.UUID, filters model.VisitFilters) ([]model.Visit, error) {
	return s.visitRepo.List(ctx, clinicID, filters)
}

// Update modifies the editable fields of a visit
func (s *visitService) Update(ctx context.Context, clinicID, id uuid.UUID, req model.UpdateVisitRequest) (*model.Visit, error) {
	v, err := s.visitRepo.FindByID(ctx, clinicID, id)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, apperr.NotFound()
	}

	if req.Reason != nil {
		v.Reason = *req.Reason
	}
	if req.Diagnosis != nil {
		v.Diagnosis = *req.Diagnosis
	}
	if req.Notes != nil {
		v.Notes = *req.Notes
	}

	if err := s.visitRepo.Update(ctx, clinicID, v); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound()
		}
		return nil, err
	}
	return v, nil
}

// Transition moves a visit through its status machine
func (s *visitService) Transition(ctx context.Context, clinicID, id uuid.UUID, status string) (*model.Visit, error) {
	v, err := s.visitRepo.FindByID(ctx, clinicID, id)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, apperr.NotFound()
	}

	if !model.CanTransitionVisit(v.Status, status) {
		return nil, apperr.Validation("Transition de statut invalide", map[string][]string{
			"status": {"impossible de passer de " + v.Status + " a " + status},
		})
	}

	ended := status == model.VisitStatusCompleted || status == model.VisitStatusCancelled
	if err := s.visitRepo.UpdateStatus(ctx, clinicID, id, status, ended); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound()
		}
		return nil, err
	}

	v.Status = status
	if ended {
		now := time.Now()
		v.EndedAt = &now
	}
	return v, nil
}
