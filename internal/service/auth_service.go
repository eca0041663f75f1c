package service

import (
	"context"
	"fmt"
	"time"

	"clinic_manager/internal/apperr"
	"clinic_manager/internal/config"
	"clinic_manager/internal/model"
	"clinic_manager/internal/repository"
	"clinic_manager/internal/sms"
	"clinic_manager/internal/utils"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Locked and deactivated accounts get the same message as a wrong
// password, so callers cannot enumerate accounts or probe their
// state. The precise reason is still logged server-side.
const msgInvalidCredentials = "Telephone ou mot de passe invalide"

// AuthService provides authentication related services
type AuthService interface {
	RegisterClinic(ctx context.Context, req RegisterClinicRequest) (*model.Clinic, *model.User, *TokenPair, error)
	Login(ctx context.Context, phone, password, ip string) (*model.User, *TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*model.User, string, error)
	RequestPasswordReset(ctx context.Context, phone string) error
	ConfirmPasswordReset(ctx context.Context, phone, code, newPassword string) error
	ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error
}

// RegisterClinicRequest bootstraps a clinic with its owner account
type RegisterClinicRequest struct {
	ClinicName  string `json:"clinic_name" binding:"required"`
	City        string `json:"city"`
	Region      string `json:"region"`
	ClinicPhone string `json:"clinic_phone" binding:"required"`
	OwnerPhone  string `json:"owner_phone" binding:"required"`
	FirstName   string `json:"first_name" binding:"required"`
	LastName    string `json:"last_name" binding:"required"`
	Password    string `json:"password" binding:"required,min=8"`
}

// TokenPair carries both credentials issued at login
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

type authService struct {
	userRepo   repository.UserRepository
	clinicRepo repository.ClinicRepository
	jwtUtil    *utils.JWTUtil
	smsSender  sms.Sender
	cfg        *config.Config
	log        *logrus.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo repository.UserRepository, clinicRepo repository.ClinicRepository,
	jwtUtil *utils.JWTUtil, smsSender sms.Sender, cfg *config.Config, log *logrus.Logger) AuthService {
	return &authService{
		userRepo:   userRepo,
		clinicRepo: clinicRepo,
		jwtUtil:    jwtUtil,
		smsSender:  smsSender,
		cfg:        cfg,
		log:        log,
	}
}

func (s *authService) issueTokens(user *model.User) (*TokenPair, error) {
	access, err := s.jwtUtil.GenerateAccessToken(user.ID, user.ClinicID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refresh, err := s.jwtUtil.GenerateRefreshToken(user.ID, user.ClinicID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// RegisterClinic creates a clinic and its owner account
func (s *authService) RegisterClinic(ctx context.Context, req RegisterClinicRequest) (*model.Clinic, *model.User, *TokenPair, error) {
	phone := utils.NormalizePhone(req.OwnerPhone)

	existing, err := s.userRepo.FindByPhone(ctx, phone)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, nil, nil, apperr.New(apperr.KindConflict, "Un compte existe deja avec ce numero")
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	clinic := &model.Clinic{
		ID:            uuid.New(),
		Name:          req.ClinicName,
		City:          req.City,
		Region:        req.Region,
		PhonePrimary:  utils.NormalizePhone(req.ClinicPhone),
		CashThreshold: 500,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.clinicRepo.Create(ctx, clinic); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create clinic: %w", err)
	}

	user := &model.User{
		ID:                 uuid.New(),
		Phone:              phone,
		FirstName:          req.FirstName,
		LastName:           req.LastName,
		PasswordHash:       hashedPassword,
		Role:               model.RoleOwner,
		ClinicID:           clinic.ID,
		IsActive:           true,
		MustChangePassword: false,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create owner account: %w", err)
	}

	tokens, err := s.issueTokens(user)
	if err != nil {
		return nil, nil, nil, err
	}

	s.log.WithFields(logrus.Fields{"clinic_id": clinic.ID, "user_id": user.ID}).Info("clinic registered")
	return clinic, user, tokens, nil
}

// Login authenticates a user by phone and password. Failed attempts
// are counted; reaching the threshold opens the lockout window.
func (s *authService) Login(ctx context.Context, phone, password, ip string) (*model.User, *TokenPair, error) {
	phone = utils.NormalizePhone(phone)

	user, err := s.userRepo.FindByPhone(ctx, phone)
	if err != nil {
		return nil, nil, fmt.Errorf("error finding user by phone: %w", err)
	}
	if user == nil {
		return nil, nil, apperr.New(apperr.KindAuthentication, msgInvalidCredentials)
	}

	if !user.IsActive {
		s.log.WithField("user_id", user.ID).Warn("login rejected: account deactivated")
		return nil, nil, apperr.New(apperr.KindAuthentication, msgInvalidCredentials)
	}
	if user.IsLocked() {
		s.log.WithField("user_id", user.ID).Warn("login rejected: account locked")
		return nil, nil, apperr.New(apperr.KindAuthentication, msgInvalidCredentials)
	}

	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		lockUntil := time.Now().Add(s.cfg.LockoutDuration)
		attempts, recErr := s.userRepo.RecordFailedAttempt(ctx, user.ID, s.cfg.LockoutThreshold, lockUntil)
		if recErr != nil {
			return nil, nil, recErr
		}
		if attempts >= s.cfg.LockoutThreshold {
			s.log.WithFields(logrus.Fields{"user_id": user.ID, "attempts": attempts}).Warn("account locked after failed logins")
		}
		return nil, nil, apperr.New(apperr.KindAuthentication, msgInvalidCredentials)
	}

	if err := s.userRepo.ResetFailedAttempts(ctx, user.ID); err != nil {
		return nil, nil, err
	}
	if ip != "" {
		// Best-effort: losing the IP stamp must not fail the login.
		if err := s.userRepo.RecordLogin(ctx, user.ID, ip); err != nil {
			s.log.WithField("user_id", user.ID).Warnf("failed to record login IP: %v", err)
		}
	}

	tokens, err := s.issueTokens(user)
	if err != nil {
		return nil, nil, err
	}
	return user, tokens, nil
}

// Refresh exchanges a valid refresh token for a new access token.
// The refresh credential travels in an HttpOnly cookie read by the
// handler, never by the bearer-token middleware.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*model.User, string, error) {
	claims, err := s.jwtUtil.ValidateToken(refreshToken, utils.TokenTypeRefresh)
	if err != nil {
		return nil, "", apperr.Wrap(apperr.KindAuthentication, "Session expiree", err)
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, "", fmt.Errorf("error loading user for refresh: %w", err)
	}
	if user == nil || !user.IsActive || user.IsLocked() {
		return nil, "", apperr.New(apperr.KindAuthentication, "Session expiree")
	}

	access, err := s.jwtUtil.GenerateAccessToken(user.ID, user.ClinicID, user.Role)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate access token: %w", err)
	}
	return user, access, nil
}

// RequestPasswordReset issues a one-time SMS code. It reports success
// whether or not the phone matches an account, to avoid enumeration.
func (s *authService) RequestPasswordReset(ctx context.Context, phone string) error {
	phone = utils.NormalizePhone(phone)

	user, err := s.userRepo.FindByPhone(ctx, phone)
	if err != nil {
		return fmt.Errorf("error finding user for password reset: %w", err)
	}
	if user == nil || !user.IsActive {
		return nil
	}

	code := utils.GenerateResetCode()
	expires := time.Now().Add(s.cfg.ResetCodeTTL)
	if err := s.userRepo.SetResetCode(ctx, user.ID, code, expires); err != nil {
		return err
	}

	message := fmt.Sprintf("Votre code de reinitialisation est %s. Il expire dans %d minutes.",
		code, int(s.cfg.ResetCodeTTL.Minutes()))
	if err := s.smsSender.Send(ctx, user.Phone, message); err != nil {
		s.log.WithField("user_id", user.ID).Errorf("failed to dispatch reset code: %v", err)
		return apperr.Wrap(apperr.KindInternal, "Echec de l'envoi du SMS", err)
	}
	return nil
}

// ConfirmPasswordReset verifies the one-time code and installs the
// new password. The code is cleared on success: a second confirmation
// with the same code fails.
func (s *authService) ConfirmPasswordReset(ctx context.Context, phone, code, newPassword string) error {
	phone = utils.NormalizePhone(phone)

	user, err := s.userRepo.FindByPhone(ctx, phone)
	if err != nil {
		return fmt.Errorf("error finding user for reset confirmation: %w", err)
	}
	if user == nil || !user.VerifyResetCode(code) {
		return apperr.New(apperr.KindAuthentication, "Code invalide ou expire")
	}

	hashedPassword, err := utils.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.userRepo.UpdatePassword(ctx, user.ID, hashedPassword, false); err != nil {
		return err
	}
	if err := s.userRepo.ClearResetCode(ctx, user.ID); err != nil {
		return err
	}
	// A successful reset also closes any open lockout window.
	if err := s.userRepo.ResetFailedAttempts(ctx, user.ID); err != nil {
		return err
	}

	s.log.WithField("user_id", user.ID).Info("password reset confirmed")
	return nil
}

// ChangePassword replaces the credential of an authenticated user
func (s *authService) ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("error loading user for password change: %w", err)
	}
	if user == nil {
		return apperr.NotFound()
	}

	if !utils.CheckPasswordHash(currentPassword, user.PasswordHash) {
		return apperr.New(apperr.KindAuthentication, "Mot de passe actuel invalide")
	}

	hashedPassword, err := utils.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return s.userRepo.UpdatePassword(ctx, userID, hashedPassword, false)
}
