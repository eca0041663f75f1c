package service

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"clinic_manager/internal/apperr"
	"clinic_manager/internal/config"
	"clinic_manager/internal/model"
	"clinic_manager/internal/utils"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeUserRepo is an in-memory UserRepository mirroring the SQL
// semantics of the real one, including the atomic lockout update.
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*model.User)}
}

func (r *fakeUserRepo) add(u *model.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *u
	r.users[u.ID] = &cp
}

func (r *fakeUserRepo) get(id uuid.UUID) *model.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := r.users[id]
	if u == nil {
		return nil
	}
	cp := *u
	return &cp
}

func (r *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	r.add(user)
	return nil
}

func (r *fakeUserRepo) FindByPhone(_ context.Context, phone string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Phone == phone {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	return r.get(id), nil
}

func (r *fakeUserRepo) FindInClinic(_ context.Context, clinicID, id uuid.UUID) (*model.User, error) {
	u := r.get(id)
	if u == nil || u.ClinicID != clinicID {
		return nil, nil
	}
	return u, nil
}

func (r *fakeUserRepo) ListByClinic(_ context.Context, clinicID uuid.UUID) ([]model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.User
	for _, u := range r.users {
		if u.ClinicID == clinicID {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) Update(_ context.Context, clinicID uuid.UUID, user *model.User) error {
	r.add(user)
	return nil
}

func (r *fakeUserRepo) SetActive(_ context.Context, clinicID, id uuid.UUID, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u := r.users[id]; u != nil {
		u.IsActive = active
	}
	return nil
}

func (r *fakeUserRepo) RecordFailedAttempt(_ context.Context, id uuid.UUID, threshold int, lockUntil time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := r.users[id]
	u.FailedLoginAttempts++
	if u.FailedLoginAttempts >= threshold &&
		(u.LockedUntil == nil || u.LockedUntil.Before(time.Now())) {
		t := lockUntil
		u.LockedUntil = &t
	}
	return u.FailedLoginAttempts, nil
}

func (r *fakeUserRepo) ResetFailedAttempts(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u := r.users[id]; u != nil {
		u.FailedLoginAttempts = 0
		u.LockedUntil = nil
	}
	return nil
}

func (r *fakeUserRepo) SetResetCode(_ context.Context, id uuid.UUID, code string, expires time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u := r.users[id]; u != nil {
		u.ResetCode = code
		t := expires
		u.ResetCodeExpires = &t
	}
	return nil
}

func (r *fakeUserRepo) ClearResetCode(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u := r.users[id]; u != nil {
		u.ResetCode = ""
		u.ResetCodeExpires = nil
	}
	return nil
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, id uuid.UUID, passwordHash string, mustChange bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u := r.users[id]; u != nil {
		u.PasswordHash = passwordHash
		u.MustChangePassword = mustChange
	}
	return nil
}

func (r *fakeUserRepo) RecordLogin(_ context.Context, id uuid.UUID, ip string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u := r.users[id]; u != nil {
		u.LastLoginIP = &ip
	}
	return nil
}

type fakeClinicRepo struct {
	mu      sync.Mutex
	clinics map[uuid.UUID]*model.Clinic
}

func newFakeClinicRepo() *fakeClinicRepo {
	return &fakeClinicRepo{clinics: make(map[uuid.UUID]*model.Clinic)}
}

func (r *fakeClinicRepo) Create(_ context.Context, clinic *model.Clinic) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *clinic
	r.clinics[clinic.ID] = &cp
	return nil
}

func (r *fakeClinicRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Clinic, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := r.clinics[id]
	if c == nil {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *fakeClinicRepo) Update(_ context.Context, clinic *model.Clinic) error {
	return r.Create(context.Background(), clinic)
}

// fakeSMS records dispatched messages.
type fakeSMS struct {
	mu       sync.Mutex
	messages []string
	to       []string
}

func (f *fakeSMS) Send(_ context.Context, to, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.to = append(f.to, to)
	f.messages = append(f.messages, message)
	return nil
}

func (f *fakeSMS) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.messages)
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:        "test-secret",
		AccessTokenTTL:   time.Hour,
		RefreshTokenTTL:  24 * time.Hour,
		LockoutThreshold: 5,
		LockoutDuration:  15 * time.Minute,
		ResetCodeTTL:     15 * time.Minute,
	}
}

type authFixture struct {
	service AuthService
	users   *fakeUserRepo
	clinics *fakeClinicRepo
	sms     *fakeSMS
	cfg     *config.Config
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	cfg := testConfig()
	users := newFakeUserRepo()
	clinics := newFakeClinicRepo()
	smsSender := &fakeSMS{}
	jwtUtil := utils.NewJWTUtil(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	svc := NewAuthService(users, clinics, jwtUtil, smsSender, cfg, quietLogger())
	return &authFixture{service: svc, users: users, clinics: clinics, sms: smsSender, cfg: cfg}
}

func (f *authFixture) seedUser(t *testing.T, phone, password string) *model.User {
	t.Helper()
	hash, err := utils.HashPassword(password)
	require.NoError(t, err)
	user := &model.User{
		ID:           uuid.New(),
		Phone:        phone,
		FirstName:    "Marie",
		LastName:     "Ngo",
		PasswordHash: hash,
		Role:         model.RoleReceptionist,
		ClinicID:     uuid.New(),
		IsActive:     true,
	}
	f.users.add(user)
	return user
}

func TestAuthService_Login_Success(t *testing.T) {
	f := newAuthFixture(t)
	f.seedUser(t, "+237677123456", "correct-horse-8")

	// Local format must resolve to the same account
	user, tokens, err := f.service.Login(context.Background(), "677123456", "correct-horse-8", "10.0.0.1")

	require.NoError(t, err)
	require.NotNil(t, tokens)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)
	assert.Equal(t, "+237677123456", user.Phone)

	stored := f.users.get(user.ID)
	require.NotNil(t, stored.LastLoginIP)
	assert.Equal(t, "10.0.0.1", *stored.LastLoginIP)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	f := newAuthFixture(t)
	seeded := f.seedUser(t, "+237677123456", "correct-horse-8")

	_, _, err := f.service.Login(context.Background(), "+237677123456", "wrong", "")

	require.Error(t, err)
	assert.Equal(t, apperr.KindAuthentication, apperr.KindOf(err))
	assert.Equal(t, "Telephone ou mot de passe invalide", err.Error())
	assert.Equal(t, 1, f.users.get(seeded.ID).FailedLoginAttempts)
}

func TestAuthService_Login_UnknownPhoneSameMessage(t *testing.T) {
	f := newAuthFixture(t)
	f.seedUser(t, "+237677123456", "correct-horse-8")

	_, _, errUnknown := f.service.Login(context.Background(), "+237699999999", "whatever", "")
	_, _, errWrong := f.service.Login(context.Background(), "+237677123456", "wrong", "")

	require.Error(t, errUnknown)
	require.Error(t, errWrong)
	// Identical message so callers cannot tell the two apart
	assert.Equal(t, errWrong.Error(), errUnknown.Error())
}

func TestAuthService_Login_LocksAfterThreshold(t *testing.T) {
	f := newAuthFixture(t)
	seeded := f.seedUser(t, "+237677123456", "correct-horse-8")

	for i := 0; i < f.cfg.LockoutThreshold; i++ {
		_, _, err := f.service.Login(context.Background(), "+237677123456", "wrong", "")
		require.Error(t, err)
	}

	stored := f.users.get(seeded.ID)
	assert.Equal(t, f.cfg.LockoutThreshold, stored.FailedLoginAttempts)
	require.NotNil(t, stored.LockedUntil)
	assert.True(t, stored.IsLocked())
	lockedUntil := *stored.LockedUntil

	// Even the correct password is rejected during the window, and
	// the window is not extended by further attempts
	_, _, err := f.service.Login(context.Background(), "+237677123456", "correct-horse-8", "")
	require.Error(t, err)
	assert.Equal(t, "Telephone ou mot de passe invalide", err.Error())
	assert.Equal(t, lockedUntil, *f.users.get(seeded.ID).LockedUntil)
}

func TestAuthService_Login_SuccessResetsAttempts(t *testing.T) {
	f := newAuthFixture(t)
	seeded := f.seedUser(t, "+237677123456", "correct-horse-8")

	for i := 0; i < 3; i++ {
		_, _, err := f.service.Login(context.Background(), "+237677123456", "wrong", "")
		require.Error(t, err)
	}

	_, _, err := f.service.Login(context.Background(), "+237677123456", "correct-horse-8", "")
	require.NoError(t, err)
	assert.Equal(t, 0, f.users.get(seeded.ID).FailedLoginAttempts)
}

func TestAuthService_Login_ExpiredLockReopens(t *testing.T) {
	f := newAuthFixture(t)
	seeded := f.seedUser(t, "+237677123456", "correct-horse-8")

	past := time.Now().Add(-time.Minute)
	stored := f.users.get(seeded.ID)
	stored.FailedLoginAttempts = f.cfg.LockoutThreshold
	stored.LockedUntil = &past
	f.users.add(stored)

	_, _, err := f.service.Login(context.Background(), "+237677123456", "correct-horse-8", "")
	require.NoError(t, err)
}

func TestAuthService_Login_DeactivatedAccount(t *testing.T) {
	f := newAuthFixture(t)
	seeded := f.seedUser(t, "+237677123456", "correct-horse-8")
	stored := f.users.get(seeded.ID)
	stored.IsActive = false
	f.users.add(stored)

	_, _, err := f.service.Login(context.Background(), "+237677123456", "correct-horse-8", "")
	require.Error(t, err)
	assert.Equal(t, "Telephone ou mot de passe invalide", err.Error())
}

func TestAuthService_RegisterClinic(t *testing.T) {
	f := newAuthFixture(t)

	clinic, owner, tokens, err := f.service.RegisterClinic(context.Background(), RegisterClinicRequest{
		ClinicName:  "Clinique Sainte Marie",
		City:        "Douala",
		ClinicPhone: "233421234",
		OwnerPhone:  "677123456",
		FirstName:   "Jean",
		LastName:    "Mbarga",
		Password:    "first-password-1",
	})

	require.NoError(t, err)
	assert.Equal(t, model.RoleOwner, owner.Role)
	assert.Equal(t, clinic.ID, owner.ClinicID)
	assert.Equal(t, "+237677123456", owner.Phone)
	assert.NotEmpty(t, tokens.AccessToken)

	stored, err := f.clinics.FindByID(context.Background(), clinic.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.True(t, stored.IsActive)
}

func TestAuthService_RegisterClinic_DuplicatePhone(t *testing.T) {
	f := newAuthFixture(t)
	f.seedUser(t, "+237677123456", "correct-horse-8")

	_, _, _, err := f.service.RegisterClinic(context.Background(), RegisterClinicRequest{
		ClinicName:  "Clinique B",
		ClinicPhone: "233421234",
		OwnerPhone:  "677123456",
		FirstName:   "Jean",
		LastName:    "Mbarga",
		Password:    "first-password-1",
	})

	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestAuthService_Refresh(t *testing.T) {
	f := newAuthFixture(t)
	f.seedUser(t, "+237677123456", "correct-horse-8")

	user, tokens, err := f.service.Login(context.Background(), "+237677123456", "correct-horse-8", "")
	require.NoError(t, err)

	refreshed, access, err := f.service.Refresh(context.Background(), tokens.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, refreshed.ID)
	assert.NotEmpty(t, access)

	// An access token must not work as a refresh credential
	_, _, err = f.service.Refresh(context.Background(), tokens.AccessToken)
	require.Error(t, err)
	assert.Equal(t, apperr.KindAuthentication, apperr.KindOf(err))
}

func TestAuthService_Refresh_DeactivatedAccount(t *testing.T) {
	f := newAuthFixture(t)
	seeded := f.seedUser(t, "+237677123456", "correct-horse-8")

	_, tokens, err := f.service.Login(context.Background(), "+237677123456", "correct-horse-8", "")
	require.NoError(t, err)

	require.NoError(t, f.users.SetActive(context.Background(), seeded.ClinicID, seeded.ID, false))

	_, _, err = f.service.Refresh(context.Background(), tokens.RefreshToken)
	require.Error(t, err)
	assert.Equal(t, "Session expiree", err.Error())
}

func TestAuthService_PasswordReset_Flow(t *testing.T) {
	f := newAuthFixture(t)
	seeded := f.seedUser(t, "+237677123456", "correct-horse-8")

	require.NoError(t, f.service.RequestPasswordReset(context.Background(), "677123456"))
	assert.Equal(t, 1, f.sms.count())

	code := f.users.get(seeded.ID).ResetCode
	require.Len(t, code, 6)

	err := f.service.ConfirmPasswordReset(context.Background(), "+237677123456", code, "new-password-9")
	require.NoError(t, err)

	// New password works, old one does not
	_, _, err = f.service.Login(context.Background(), "+237677123456", "new-password-9", "")
	require.NoError(t, err)
	_, _, err = f.service.Login(context.Background(), "+237677123456", "correct-horse-8", "")
	require.Error(t, err)

	// The code is single use
	err = f.service.ConfirmPasswordReset(context.Background(), "+237677123456", code, "another-pass-3")
	require.Error(t, err)
	assert.Equal(t, "Code invalide ou expire", err.Error())
}

func TestAuthService_PasswordReset_UnknownPhoneSilent(t *testing.T) {
	f := newAuthFixture(t)

	err := f.service.RequestPasswordReset(context.Background(), "+237699999999")

	require.NoError(t, err)
	assert.Equal(t, 0, f.sms.count())
}

func TestAuthService_PasswordReset_ExpiredCode(t *testing.T) {
	f := newAuthFixture(t)
	seeded := f.seedUser(t, "+237677123456", "correct-horse-8")

	past := time.Now().Add(-time.Minute)
	require.NoError(t, f.users.SetResetCode(context.Background(), seeded.ID, "123456", past))

	err := f.service.ConfirmPasswordReset(context.Background(), "+237677123456", "123456", "new-password-9")
	require.Error(t, err)
	assert.Equal(t, apperr.KindAuthentication, apperr.KindOf(err))
}

func TestAuthService_PasswordReset_ClearsLockout(t *testing.T) {
	f := newAuthFixture(t)
	seeded := f.seedUser(t, "+237677123456", "correct-horse-8")

	for i := 0; i < f.cfg.LockoutThreshold; i++ {
		_, _, err := f.service.Login(context.Background(), "+237677123456", "wrong", "")
		require.Error(t, err)
	}
	require.True(t, f.users.get(seeded.ID).IsLocked())

	future := time.Now().Add(10 * time.Minute)
	require.NoError(t, f.users.SetResetCode(context.Background(), seeded.ID, "654321", future))
	require.NoError(t, f.service.ConfirmPasswordReset(context.Background(), "+237677123456", "654321", "new-password-9"))

	_, _, err := f.service.Login(context.Background(), "+237677123456", "new-password-9", "")
	require.NoError(t, err)
}

func TestAuthService_ChangePassword(t *testing.T) {
	f := newAuthFixture(t)
	seeded := f.seedUser(t, "+237677123456", "correct-horse-8")

	err := f.service.ChangePassword(context.Background(), seeded.ID, "wrong", "new-password-9")
	require.Error(t, err)
	assert.Equal(t, apperr.KindAuthentication, apperr.KindOf(err))

	err = f.service.ChangePassword(context.Background(), seeded.ID, "correct-horse-8", "new-password-9")
	require.NoError(t, err)

	_, _, err = f.service.Login(context.Background(), "+237677123456", "new-password-9", "")
	require.NoError(t, err)
}
