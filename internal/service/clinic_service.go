package service

import (
	"context"
	"errors"
	"time"

	"clinic_manager/internal/apperr"
	"clinic_manager/internal/model"
	"clinic_manager/internal/repository"
	"clinic_manager/internal/utils"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ClinicService manages the clinic profile and its service catalogue
type ClinicService interface {
	Get(ctx context.Context, clinicID uuid.UUID) (*model.Clinic, error)
	Update(ctx context.Context, clinicID uuid.UUID, req model.UpdateClinicRequest) (*model.Clinic, error)

	CreateService(ctx context.Context, clinicID uuid.UUID, req model.CreateServiceRequest) (*model.Service, error)
	GetService(ctx context.Context, clinicID, id uuid.UUID, includeDeleted bool) (*model.Service, error)
	ListServices(ctx context.Context, clinicID uuid.UUID, includeDeleted bool) ([]model.Service, error)
	UpdateService(ctx context.Context, clinicID, id uuid.UUID, req model.UpdateServiceRequest) (*model.Service, error)
	DeleteService(ctx context.Context, clinicID, id uuid.UUID) error
	RestoreService(ctx context.Context, clinicID, id uuid.UUID) error
}

type clinicService struct {
	clinicRepo  repository.ClinicRepository
	serviceRepo repository.ServiceRepository
}

// NewClinicService creates a new ClinicService
func NewClinicService(clinicRepo repository.ClinicRepository, serviceRepo repository.ServiceRepository) ClinicService {
	return &clinicService{clinicRepo: clinicRepo, serviceRepo: serviceRepo}
}

// Get returns the caller's clinic
func (s *clinicService) Get(ctx context.Context, clinicID uuid.UUID) (*model.Clinic, error) {
	clinic, err := s.clinicRepo.FindByID(ctx, clinicID)
	if err != nil {
		return nil, err
	}
	if clinic == nil {
		return nil, apperr.NotFound()
	}
	return clinic, nil
}

// Update modifies the clinic profile and settings
func (s *clinicService) Update(ctx context.Context, clinicID uuid.UUID, req model.UpdateClinicRequest) (*model.Clinic, error) {
	clinic, err := s.Get(ctx, clinicID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		clinic.Name = *req.Name
	}
	if req.Address != nil {
		clinic.Address = *req.Address
	}
	if req.City != nil {
		clinic.City = *req.City
	}
	if req.Region != nil {
		clinic.Region = *req.Region
	}
	if req.PhonePrimary != nil {
		clinic.PhonePrimary = utils.NormalizePhone(*req.PhonePrimary)
	}
	if req.PhoneSecondary != nil {
		clinic.PhoneSecondary = utils.NormalizePhone(*req.PhoneSecondary)
	}
	if req.Email != nil {
		clinic.Email = *req.Email
	}
	if req.RegistrationNumber != nil {
		clinic.RegistrationNumber = *req.RegistrationNumber
	}
	if req.InvoiceFooter != nil {
		clinic.InvoiceFooter = *req.InvoiceFooter
	}
	if req.CashThreshold != nil {
		clinic.CashThreshold = *req.CashThreshold
	}
	if req.MTNMomoNumber != nil {
		clinic.MTNMomoNumber = *req.MTNMomoNumber
	}
	if req.OrangeMoneyNumber != nil {
		clinic.OrangeMoneyNumber = *req.OrangeMoneyNumber
	}
	if req.BankName != nil {
		clinic.BankName = *req.BankName
	}
	if req.BankAccount != nil {
		clinic.BankAccount = *req.BankAccount
	}

	if err := s.clinicRepo.Update(ctx, clinic); err != nil {
		return nil, err
	}
	return clinic, nil
}

// CreateService adds a service to the catalogue
func (s *clinicService) CreateService(ctx context.Context, clinicID uuid.UUID, req model.CreateServiceRequest) (*model.Service, error) {
	now := time.Now()
	svc := &model.Service{
		ID:          uuid.New(),
		ClinicID:    clinicID,
		Name:        req.Name,
		Code:        req.Code,
		Category:    req.Category,
		Price:       req.Price,
		Description: req.Description,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.serviceRepo.Create(ctx, svc); err != nil {
		return nil, err
	}
	return svc, nil
}

// GetService returns one catalogue entry
func (s *clinicService) GetService(ctx context.Context, clinicID, id uuid.UUID, includeDeleted bool) (*model.Service, error) {
	svc, err := s.serviceRepo.FindByID(ctx, clinicID, id, includeDeleted)
	if err != nil {
		return nil, err
	}
	if svc == nil {
		return nil, apperr.NotFound()
	}
	return svc, nil
}

// ListServices returns the catalogue
func (s *clinicService) ListServices(ctx context.Context, clinicID uuid.UUID, includeDeleted bool) ([]model.Service, error) {
	return s.serviceRepo.List(ctx, clinicID, includeDeleted)
}

// UpdateService modifies a catalogue entry
func (s *clinicService) UpdateService(ctx context.Context, clinicID, id uuid.UUID, req model.UpdateServiceRequest) (*model.Service, error) {
	svc, err := s.GetService(ctx, clinicID, id, false)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		svc.Name = *req.Name
	}
	if req.Category != nil {
		svc.Category = *req.Category
	}
	if req.Price != nil {
		svc.Price = *req.Price
	}
	if req.Description != nil {
		svc.Description = *req.Description
	}
	if req.IsActive != nil {
		svc.IsActive = *req.IsActive
	}

	if err := s.serviceRepo.Update(ctx, clinicID, svc); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound()
		}
		return nil, err
	}
	return svc, nil
}

// DeleteService soft-deletes a catalogue entry
func (s *clinicService) DeleteService(ctx context.Context, clinicID, id uuid.UUID) error {
	if err := s.serviceRepo.SoftDelete(ctx, clinicID, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.NotFound()
		}
		return err
	}
	return nil
}

// RestoreService reverses a soft delete
func (s *clinicService) RestoreService(ctx context.Context, clinicID, id uuid.UUID) error {
	if err := s.serviceRepo.Restore(ctx, clinicID, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.NotFound()
		}
		return err
	}
	return nil
}
