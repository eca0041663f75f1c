package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRoleLevel(t *testing.T) {
	assert.Greater(t, RoleLevel(RoleOwner), RoleLevel(RoleAdmin))
	assert.Greater(t, RoleLevel(RoleAdmin), RoleLevel(RoleReceptionist))
	assert.Greater(t, RoleLevel(RoleReceptionist), RoleLevel(RoleNurse))
	assert.Equal(t, 0, RoleLevel("janitor"))
}

func TestUser_IsLocked(t *testing.T) {
	var u User
	assert.False(t, u.IsLocked(), "no lock window means unlocked")

	past := time.Now().Add(-time.Minute)
	u.LockedUntil = &past
	assert.False(t, u.IsLocked(), "an elapsed window opens lazily, without any sweep")

	future := time.Now().Add(time.Minute)
	u.LockedUntil = &future
	assert.True(t, u.IsLocked())
}

func TestUser_VerifyResetCode(t *testing.T) {
	var u User
	assert.False(t, u.VerifyResetCode("123456"), "no code stored")

	future := time.Now().Add(10 * time.Minute)
	u.ResetCode = "123456"
	u.ResetCodeExpires = &future
	assert.True(t, u.VerifyResetCode("123456"))
	assert.False(t, u.VerifyResetCode("654321"))

	past := time.Now().Add(-time.Minute)
	u.ResetCodeExpires = &past
	assert.False(t, u.VerifyResetCode("123456"), "expired code")
}
