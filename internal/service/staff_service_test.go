package service

import (
	"context"
	"testing"

	"clinic_manager/internal/apperr"
	"clinic_manager/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staffFixture struct {
	service  StaffService
	users    *fakeUserRepo
	sms      *fakeSMS
	clinicID uuid.UUID
}

func newStaffFixture(t *testing.T) *staffFixture {
	t.Helper()
	users := newFakeUserRepo()
	smsSender := &fakeSMS{}
	return &staffFixture{
		service:  NewStaffService(users, smsSender, quietLogger()),
		users:    users,
		sms:      smsSender,
		clinicID: uuid.New(),
	}
}

func (f *staffFixture) seedStaff(role string) *model.User {
	user := &model.User{
		ID:       uuid.New(),
		Phone:    "+2376" + uuid.NewString()[:8],
		Role:     role,
		ClinicID: f.clinicID,
		IsActive: true,
	}
	f.users.add(user)
	return user
}

func TestStaffService_Invite(t *testing.T) {
	f := newStaffFixture(t)

	user, err := f.service.Invite(context.Background(), f.clinicID, model.RoleOwner, InviteStaffRequest{
		Phone:     "677123456",
		FirstName: "Alice",
		LastName:  "Fomo",
		Role:      model.RoleReceptionist,
	})

	require.NoError(t, err)
	assert.Equal(t, "+237677123456", user.Phone)
	assert.Equal(t, model.RoleReceptionist, user.Role)
	assert.True(t, user.MustChangePassword)
	assert.Empty(t, user.FailedLoginAttempts)

	// The temporary password travels by SMS, never in the response
	require.Equal(t, 1, f.sms.count())
	assert.Contains(t, f.sms.messages[0], "mot de passe temporaire")
}

func TestStaffService_Invite_RoleCeiling(t *testing.T) {
	f := newStaffFixture(t)

	// An admin cannot mint another admin
	_, err := f.service.Invite(context.Background(), f.clinicID, model.RoleAdmin, InviteStaffRequest{
		Phone:     "677123456",
		FirstName: "Bob",
		LastName:  "Essomba",
		Role:      model.RoleAdmin,
	})

	require.Error(t, err)
	assert.Equal(t, apperr.KindAuthorization, apperr.KindOf(err))
	assert.Equal(t, 0, f.sms.count())
}

func TestStaffService_Invite_DuplicatePhone(t *testing.T) {
	f := newStaffFixture(t)
	existing := f.seedStaff(model.RoleNurse)

	_, err := f.service.Invite(context.Background(), f.clinicID, model.RoleOwner, InviteStaffRequest{
		Phone:     existing.Phone,
		FirstName: "Bob",
		LastName:  "Essomba",
		Role:      model.RoleNurse,
	})

	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestStaffService_Update_CannotTouchHigherRank(t *testing.T) {
	f := newStaffFixture(t)
	owner := f.seedStaff(model.RoleOwner)

	newName := "Pirate"
	_, err := f.service.Update(context.Background(), f.clinicID, model.RoleAdmin, owner.ID, UpdateStaffRequest{
		FirstName: &newName,
	})

	require.Error(t, err)
	assert.Equal(t, apperr.KindAuthorization, apperr.KindOf(err))
}

func TestStaffService_Update_CannotPromoteToOwnRank(t *testing.T) {
	f := newStaffFixture(t)
	nurse := f.seedStaff(model.RoleNurse)

	adminRole := model.RoleAdmin
	_, err := f.service.Update(context.Background(), f.clinicID, model.RoleAdmin, nurse.ID, UpdateStaffRequest{
		Role: &adminRole,
	})

	require.Error(t, err)
	assert.Equal(t, apperr.KindAuthorization, apperr.KindOf(err))
}

func TestStaffService_Update_Promote(t *testing.T) {
	f := newStaffFixture(t)
	nurse := f.seedStaff(model.RoleNurse)

	receptionist := model.RoleReceptionist
	updated, err := f.service.Update(context.Background(), f.clinicID, model.RoleAdmin, nurse.ID, UpdateStaffRequest{
		Role: &receptionist,
	})

	require.NoError(t, err)
	assert.Equal(t, model.RoleReceptionist, updated.Role)
}

func TestStaffService_Deactivate(t *testing.T) {
	f := newStaffFixture(t)
	caller := f.seedStaff(model.RoleOwner)
	nurse := f.seedStaff(model.RoleNurse)

	require.NoError(t, f.service.Deactivate(context.Background(), f.clinicID, caller.ID, nurse.ID))
	assert.False(t, f.users.get(nurse.ID).IsActive)
}

func TestStaffService_Deactivate_SelfForbidden(t *testing.T) {
	f := newStaffFixture(t)
	caller := f.seedStaff(model.RoleAdmin)

	err := f.service.Deactivate(context.Background(), f.clinicID, caller.ID, caller.ID)

	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestStaffService_Deactivate_OwnerProtected(t *testing.T) {
	f := newStaffFixture(t)
	caller := f.seedStaff(model.RoleAdmin)
	owner := f.seedStaff(model.RoleOwner)

	err := f.service.Deactivate(context.Background(), f.clinicID, caller.ID, owner.ID)

	require.Error(t, err)
	assert.Equal(t, apperr.KindAuthorization, apperr.KindOf(err))
}

func TestStaffService_Get_OtherClinicInvisible(t *testing.T) {
	f := newStaffFixture(t)
	foreign := &model.User{ID: uuid.New(), Phone: "+237699000000", Role: model.RoleNurse, ClinicID: uuid.New(), IsActive: true}
	f.users.add(foreign)

	_, err := f.service.Get(context.Background(), f.clinicID, foreign.ID)

	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}
