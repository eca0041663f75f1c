package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"clinic_manager/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// UserRepository defines operations for staff account data. Listing
// and clinic-bound lookups take the clinic explicitly; phone and ID
// lookups are global because both columns are globally unique.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByPhone(ctx context.Context, phone string) (*model.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	FindInClinic(ctx context.Context, clinicID, id uuid.UUID) (*model.User, error)
	ListByClinic(ctx context.Context, clinicID uuid.UUID) ([]model.User, error)
	Update(ctx context.Context, clinicID uuid.UUID, user *model.User) error
	SetActive(ctx context.Context, clinicID, id uuid.UUID, active bool) error

	// Security state transitions. Each one is a single-statement
	// row-level update, so parallel failed logins cannot lose counts.
	RecordFailedAttempt(ctx context.Context, id uuid.UUID, threshold int, lockUntil time.Time) (int, error)
	ResetFailedAttempts(ctx context.Context, id uuid.UUID) error
	SetResetCode(ctx context.Context, id uuid.UUID, code string, expires time.Time) error
	ClearResetCode(ctx context.Context, id uuid.UUID) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string, mustChange bool) error
	RecordLogin(ctx context.Context, id uuid.UUID, ip string) error
}

type userRepository struct {
	db DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db DB) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, phone, email, first_name, last_name, password_hash, role, clinic_id,
            is_active, must_change_password, failed_login_attempts, locked_until, last_login_ip,
            password_changed_at, reset_code, reset_code_expires, created_at, updated_at`

func scanUser(row pgx.Row) (*model.User, error) {
	user := &model.User{}
	err := row.Scan(
		&user.ID, &user.Phone, &user.Email, &user.FirstName, &user.LastName,
		&user.PasswordHash, &user.Role, &user.ClinicID,
		&user.IsActive, &user.MustChangePassword, &user.FailedLoginAttempts,
		&user.LockedUntil, &user.LastLoginIP, &user.PasswordChangedAt,
		&user.ResetCode, &user.ResetCodeExpires, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Create inserts a new user into the database
func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	sql := `INSERT INTO users (id, phone, email, first_name, last_name, password_hash, role, clinic_id,
                is_active, must_change_password, created_at, updated_at)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)`
	_, err := r.db.Exec(ctx, sql,
		user.ID, user.Phone, user.Email, user.FirstName, user.LastName,
		user.PasswordHash, user.Role, user.ClinicID,
		user.IsActive, user.MustChangePassword, user.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// FindByPhone retrieves a user by their canonical phone number
func (r *userRepository) FindByPhone(ctx context.Context, phone string) (*model.User, error) {
	sql := `SELECT ` + userColumns + ` FROM users WHERE phone = $1`
	user, err := scanUser(r.db.QueryRow(ctx, sql, phone))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found is not an error here, service layer decides
		}
		return nil, fmt.Errorf("failed to find user by phone: %w", err)
	}
	return user, nil
}

// FindByID retrieves a user by their ID
func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	sql := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(r.db.QueryRow(ctx, sql, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}
	return user, nil
}

// FindInClinic retrieves a user by ID within one clinic only
func (r *userRepository) FindInClinic(ctx context.Context, clinicID, id uuid.UUID) (*model.User, error) {
	sql := `SELECT ` + userColumns + ` FROM users WHERE clinic_id = $1 AND id = $2`
	user, err := scanUser(r.db.QueryRow(ctx, sql, clinicID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find user in clinic: %w", err)
	}
	return user, nil
}

// ListByClinic retrieves all staff accounts of a clinic
func (r *userRepository) ListByClinic(ctx context.Context, clinicID uuid.UUID) ([]model.User, error) {
	sql := `SELECT ` + userColumns + ` FROM users WHERE clinic_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, sql, clinicID)
	if err != nil {
		return nil, fmt.Errorf("failed to query users by clinic: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, *user)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}
	return users, nil
}

// Update modifies profile fields of a user within one clinic
func (r *userRepository) Update(ctx context.Context, clinicID uuid.UUID, user *model.User) error {
	sql := `UPDATE users
            SET email = $1, first_name = $2, last_name = $3, role = $4, updated_at = NOW()
            WHERE clinic_id = $5 AND id = $6 RETURNING updated_at`
	err := r.db.QueryRow(ctx, sql,
		user.Email, user.FirstName, user.LastName, user.Role,
		clinicID, user.ID).Scan(&user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return pgx.ErrNoRows
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

// SetActive toggles the active flag of a user within one clinic
func (r *userRepository) SetActive(ctx context.Context, clinicID, id uuid.UUID, active bool) error {
	sql := `UPDATE users SET is_active = $1, updated_at = NOW() WHERE clinic_id = $2 AND id = $3`
	tag, err := r.db.Exec(ctx, sql, active, clinicID, id)
	if err != nil {
		return fmt.Errorf("failed to set user active flag: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// RecordFailedAttempt increments the failed-attempt counter and, when
// the counter reaches the threshold, opens the lock window — all in
// one statement so two parallel wrong-password attempts cannot both
// read the same count. Returns the counter value after increment.
func (r *userRepository) RecordFailedAttempt(ctx context.Context, id uuid.UUID, threshold int, lockUntil time.Time) (int, error) {
	sql := `UPDATE users
            SET failed_login_attempts = failed_login_attempts + 1,
                locked_until = CASE
                    WHEN failed_login_attempts + 1 >= $2 AND (locked_until IS NULL OR locked_until < NOW())
                    THEN $3
                    ELSE locked_until
                END,
                updated_at = NOW()
            WHERE id = $1
            RETURNING failed_login_attempts`
	var attempts int
	if err := r.db.QueryRow(ctx, sql, id, threshold, lockUntil).Scan(&attempts); err != nil {
		return 0, fmt.Errorf("failed to record failed login attempt: %w", err)
	}
	return attempts, nil
}

// ResetFailedAttempts clears the counter and the lock window
func (r *userRepository) ResetFailedAttempts(ctx context.Context, id uuid.UUID) error {
	sql := `UPDATE users SET failed_login_attempts = 0, locked_until = NULL, updated_at = NOW() WHERE id = $1`
	if _, err := r.db.Exec(ctx, sql, id); err != nil {
		return fmt.Errorf("failed to reset failed attempts: %w", err)
	}
	return nil
}

// SetResetCode stores a one-time reset code, overwriting any prior one
func (r *userRepository) SetResetCode(ctx context.Context, id uuid.UUID, code string, expires time.Time) error {
	sql := `UPDATE users SET reset_code = $1, reset_code_expires = $2, updated_at = NOW() WHERE id = $3`
	if _, err := r.db.Exec(ctx, sql, code, expires, id); err != nil {
		return fmt.Errorf("failed to set reset code: %w", err)
	}
	return nil
}

// ClearResetCode invalidates the stored reset code after use
func (r *userRepository) ClearResetCode(ctx context.Context, id uuid.UUID) error {
	sql := `UPDATE users SET reset_code = '', reset_code_expires = NULL, updated_at = NOW() WHERE id = $1`
	if _, err := r.db.Exec(ctx, sql, id); err != nil {
		return fmt.Errorf("failed to clear reset code: %w", err)
	}
	return nil
}

// UpdatePassword replaces the credential and stamps the change time
func (r *userRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string, mustChange bool) error {
	sql := `UPDATE users SET password_hash = $1, must_change_password = $2, password_changed_at = NOW(), updated_at = NOW() WHERE id = $3`
	if _, err := r.db.Exec(ctx, sql, passwordHash, mustChange, id); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// RecordLogin stores the source IP of the latest successful login
func (r *userRepository) RecordLogin(ctx context.Context, id uuid.UUID, ip string) error {
	sql := `UPDATE users SET last_login_ip = $1, updated_at = NOW() WHERE id = $2`
	if _, err := r.db.Exec(ctx, sql, ip, id); err != nil {
		return fmt.Errorf("failed to record login: %w", err)
	}
	return nil
}
