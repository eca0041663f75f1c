package service

import (
	"context"
	"fmt"
	"time"

	"clinic_manager/internal/apperr"
	"clinic_manager/internal/model"
	"clinic_manager/internal/repository"
	"clinic_manager/internal/sms"
	"clinic_manager/internal/utils"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// StaffService manages staff accounts within one clinic. Role
// assignment is capped by the caller's own rank: nobody can create or
// promote above themselves.
type StaffService interface {
	Invite(ctx context.Context, clinicID uuid.UUID, callerRole string, req InviteStaffRequest) (*model.User, error)
	List(ctx context.Context, clinicID uuid.UUID) ([]model.User, error)
	Get(ctx context.Context, clinicID, id uuid.UUID) (*model.User, error)
	Update(ctx context.Context, clinicID uuid.UUID, callerRole string, id uuid.UUID, req UpdateStaffRequest) (*model.User, error)
	Deactivate(ctx context.Context, clinicID uuid.UUID, callerID, id uuid.UUID) error
}

// InviteStaffRequest creates a staff account with a temporary password
type InviteStaffRequest struct {
	Phone     string `json:"phone" binding:"required"`
	Email     string `json:"email" binding:"omitempty,email"`
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Role      string `json:"role" binding:"required,oneof=admin receptionist nurse"`
}

type UpdateStaffRequest struct {
	Email     *string `json:"email,omitempty" binding:"omitempty,email"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Role      *string `json:"role,omitempty" binding:"omitempty,oneof=admin receptionist nurse"`
}

type staffService struct {
	userRepo  repository.UserRepository
	smsSender sms.Sender
	log       *logrus.Logger
}

// NewStaffService creates a new StaffService
func NewStaffService(userRepo repository.UserRepository, smsSender sms.Sender, log *logrus.Logger) StaffService {
	return &staffService{userRepo: userRepo, smsSender: smsSender, log: log}
}

// Invite creates a staff account and sends the temporary password by SMS
func (s *staffService) Invite(ctx context.Context, clinicID uuid.UUID, callerRole string, req InviteStaffRequest) (*model.User, error) {
	if model.RoleLevel(req.Role) >= model.RoleLevel(callerRole) {
		return nil, apperr.New(apperr.KindAuthorization, "Vous ne pouvez pas attribuer un role superieur ou egal au votre")
	}

	phone := utils.NormalizePhone(req.Phone)
	existing, err := s.userRepo.FindByPhone(ctx, phone)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, apperr.New(apperr.KindConflict, "Un compte existe deja avec ce numero")
	}

	tempPassword := utils.GenerateTempPassword(10)
	hashedPassword, err := utils.HashPassword(tempPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to hash temporary password: %w", err)
	}

	now := time.Now()
	user := &model.User{
		ID:                 uuid.New(),
		Phone:              phone,
		Email:              req.Email,
		FirstName:          req.FirstName,
		LastName:           req.LastName,
		PasswordHash:       hashedPassword,
		Role:               req.Role,
		ClinicID:           clinicID,
		IsActive:           true,
		MustChangePassword: true,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create staff account: %w", err)
	}

	message := fmt.Sprintf("Bienvenue %s. Votre mot de passe temporaire est %s. Changez-le a la premiere connexion.",
		user.FirstName, tempPassword)
	if err := s.smsSender.Send(ctx, user.Phone, message); err != nil {
		// The account exists either way; the temp password can be
		// re-issued through the reset flow.
		s.log.WithField("user_id", user.ID).Errorf("failed to send invitation SMS: %v", err)
	}

	s.log.WithFields(logrus.Fields{"clinic_id": clinicID, "user_id": user.ID, "role": user.Role}).Info("staff invited")
	return user, nil
}

// List returns all staff accounts of the clinic
func (s *staffService) List(ctx context.Context, clinicID uuid.UUID) ([]model.User, error) {
	return s.userRepo.ListByClinic(ctx, clinicID)
}

// Get returns one staff account of the clinic
func (s *staffService) Get(ctx context.Context, clinicID, id uuid.UUID) (*model.User, error) {
	user, err := s.userRepo.FindInClinic(ctx, clinicID, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.NotFound()
	}
	return user, nil
}

// Update modifies profile fields and, within the caller's rank, the role
func (s *staffService) Update(ctx context.Context, clinicID uuid.UUID, callerRole string, id uuid.UUID, req UpdateStaffRequest) (*model.User, error) {
	user, err := s.userRepo.FindInClinic(ctx, clinicID, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.NotFound()
	}
	if model.RoleLevel(user.Role) >= model.RoleLevel(callerRole) {
		return nil, apperr.New(apperr.KindAuthorization, "Vous ne pouvez pas modifier un compte de rang superieur ou egal")
	}

	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Role != nil {
		if model.RoleLevel(*req.Role) >= model.RoleLevel(callerRole) {
			return nil, apperr.New(apperr.KindAuthorization, "Vous ne pouvez pas attribuer un role superieur ou egal au votre")
		}
		user.Role = *req.Role
	}

	if err := s.userRepo.Update(ctx, clinicID, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Deactivate disables an account. Accounts are never hard-deleted.
func (s *staffService) Deactivate(ctx context.Context, clinicID uuid.UUID, callerID, id uuid.UUID) error {
	if callerID == id {
		return apperr.New(apperr.KindValidation, "Impossible de desactiver votre propre compte")
	}

	user, err := s.userRepo.FindInClinic(ctx, clinicID, id)
	if err != nil {
		return err
	}
	if user == nil {
		return apperr.NotFound()
	}
	if user.Role == model.RoleOwner {
		return apperr.New(apperr.KindAuthorization, "Le compte proprietaire ne peut pas etre desactive")
	}

	if err := s.userRepo.SetActive(ctx, clinicID, id, false); err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{"clinic_id": clinicID, "user_id": id}).Info("staff deactivated")
	return nil
}
