package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleOwner        = "owner"
	RoleAdmin        = "admin"
	RoleReceptionist = "receptionist"
	RoleNurse        = "nurse"
)

// roleHierarchy ranks roles for permission checks. Higher outranks lower.
var roleHierarchy = map[string]int{
	RoleOwner:        4,
	RoleAdmin:        3,
	RoleReceptionist: 2,
	RoleNurse:        1,
}

// RoleLevel returns the rank of a role, 0 for unknown roles.
func RoleLevel(role string) int {
	return roleHierarchy[role]
}

// ValidRole reports whether role is one of the known staff roles.
func ValidRole(role string) bool {
	_, ok := roleHierarchy[role]
	return ok
}

// User represents a staff account. Phone is the login identifier and
// is always stored in canonical +237XXXXXXXXX form.
type User struct {
	ID           uuid.UUID `json:"id"`
	Phone        string    `json:"phone"`
	Email        string    `json:"email"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	PasswordHash string    `json:"-"` // Do not expose password hash in JSON responses
	Role         string    `json:"role"`
	ClinicID     uuid.UUID `json:"clinic_id"`

	IsActive           bool `json:"is_active"`
	MustChangePassword bool `json:"must_change_password"`

	// Security: login attempts & lockout
	FailedLoginAttempts int        `json:"-"`
	LockedUntil         *time.Time `json:"-"`
	LastLoginIP         *string    `json:"-"`
	PasswordChangedAt   *time.Time `json:"-"`

	// SMS password reset
	ResetCode        string     `json:"-"`
	ResetCodeExpires *time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FullName returns the display name.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// IsLocked reports whether the lockout window is still open. Expiry
// is lazy: no sweep ever clears LockedUntil, reads just compare.
func (u *User) IsLocked() bool {
	return u.LockedUntil != nil && u.LockedUntil.After(time.Now())
}

// RoleLevel returns the rank of the user's role.
func (u *User) RoleLevel() int {
	return RoleLevel(u.Role)
}

// VerifyResetCode checks a reset code for existence, expiry and exact
// match. It does not clear the code; the caller does that after use.
func (u *User) VerifyResetCode(code string) bool {
	if u.ResetCode == "" || u.ResetCodeExpires == nil {
		return false
	}
	if u.ResetCodeExpires.Before(time.Now()) {
		return false
	}
	return u.ResetCode == code
}
