package service

import (
	"context"
	"errors"
	"time"

	"clinic_manager/internal/apperr"
	"clinic_manager/internal/model"
	"clinic_manager/internal/repository"
	"clinic_manager/internal/sequence"
	"clinic_manager/internal/utils"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// PatientService manages patient records for one clinic
type PatientService interface {
	Create(ctx context.Context, clinicID uuid.UUID, req model.CreatePatientRequest) (*model.Patient, error)
	Get(ctx context.Context, clinicID, id uuid.UUID, includeDeleted bool) (*model.Patient, error)
	List(ctx context.Context, clinicID uuid.UUID, filters model.PatientFilters) ([]model.Patient, error)
	Update(ctx context.Context, clinicID, id uuid.UUID, req model.UpdatePatientRequest) (*model.Patient, error)
	Delete(ctx context.Context, clinicID, id uuid.UUID) error
	Restore(ctx context.Context, clinicID, id uuid.UUID) error
}

type patientService struct {
	patientRepo repository.PatientRepository
	idGen       *sequence.Generator
}

// NewPatientService creates a new PatientService
func NewPatientService(patientRepo repository.PatientRepository, idGen *sequence.Generator) PatientService {
	return &patientService{patientRepo: patientRepo, idGen: idGen}
}

// Create registers a patient, assigning the next PAT identifier
func (s *patientService) Create(ctx context.Context, clinicID uuid.UUID, req model.CreatePatientRequest) (*model.Patient, error) {
	patientID, err := s.idGen.Generate(ctx, sequence.KindPatient, clinicID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	p := &model.Patient{
		ID:          uuid.New(),
		ClinicID:    clinicID,
		PatientID:   patientID,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Phone:       utils.NormalizePhone(req.Phone),
		DateOfBirth: req.DateOfBirth,
		Sex:         req.Sex,
		Address:     req.Address,
		BloodGroup:  req.BloodGroup,
		Allergies:   req.Allergies,
		Notes:       req.Notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.patientRepo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Get returns one patient of the clinic
func (s *patientService) Get(ctx context.Context, clinicID, id uuid.UUID, includeDeleted bool) (*model.Patient, error) {
	p, err := s.patientRepo.FindByID(ctx, clinicID, id, includeDeleted)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.NotFound()
	}
	return p, nil
}

// List returns patients of the clinic
func (s *patientService) List(ctx context.Context, clinicID uuid.UUID, filters model.PatientFilters) ([]model.Patient, error) {
	return s.patientRepo.List(ctx, clinicID, filters)
}

// Update modifies a patient record
func (s *patientService) Update(ctx context.Context, clinicID, id uuid.UUID, req model.UpdatePatientRequest) (*model.Patient, error) {
	p, err := s.patientRepo.FindByID(ctx, clinicID, id, false)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.NotFound()
	}

	if req.FirstName != nil {
		p.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		p.LastName = *req.LastName
	}
	if req.Phone != nil {
		p.Phone = utils.NormalizePhone(*req.Phone)
	}
	if req.DateOfBirth != nil {
		p.DateOfBirth = req.DateOfBirth
	}
	if req.Sex != nil {
		p.Sex = *req.Sex
	}
	if req.Address != nil {
		p.Address = *req.Address
	}
	if req.BloodGroup != nil {
		p.BloodGroup = *req.BloodGroup
	}
	if req.Allergies != nil {
		p.Allergies = *req.Allergies
	}
	if req.Notes != nil {
		p.Notes = *req.Notes
	}

	if err := s.patientRepo.Update(ctx, clinicID, p); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound()
		}
		return nil, err
	}
	return p, nil
}

// Delete soft-deletes a patient, keeping the record and its identifier
func (s *patientService) Delete(ctx context.Context, clinicID, id uuid.UUID) error {
	if err := s.patientRepo.SoftDelete(ctx, clinicID, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.NotFound()
		}
		return err
	}
	return nil
}

// Restore reverses a soft delete
func (s *patientService) Restore(ctx context.Context, clinicID, id uuid.UUID) error {
	if err := s.patientRepo.Restore(ctx, clinicID, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.NotFound()
		}
		return err
	}
	return nil
}
