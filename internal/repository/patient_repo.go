package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"clinic_manager/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// PatientRepository defines operations for patient records
type PatientRepository interface {
	Create(ctx context.Context, p *model.Patient) error
	FindByID(ctx context.Context, clinicID, id uuid.UUID, includeDeleted bool) (*model.Patient, error)
	List(ctx context.Context, clinicID uuid.UUID, filters model.PatientFilters) ([]model.Patient, error)
	Update(ctx context.Context, clinicID uuid.UUID, p *model.Patient) error
	SoftDelete(ctx context.Context, clinicID, id uuid.UUID) error
	Restore(ctx context.Context, clinicID, id uuid.UUID) error
	CountCreatedOn(ctx context.Context, clinicID uuid.UUID, day string) (int64, error)
}

type patientRepository struct {
	db DB
}

// NewPatientRepository creates a new PatientRepository
func NewPatientRepository(db DB) PatientRepository {
	return &patientRepository{db: db}
}

const patientColumns = `id, clinic_id, patient_id, first_name, last_name, phone, date_of_birth,
            sex, address, blood_group, allergies, notes, is_deleted, deleted_at, created_at, updated_at`

func scanPatient(row pgx.Row) (*model.Patient, error) {
	p := &model.Patient{}
	err := row.Scan(
		&p.ID, &p.ClinicID, &p.PatientID, &p.FirstName, &p.LastName, &p.Phone,
		&p.DateOfBirth, &p.Sex, &p.Address, &p.BloodGroup, &p.Allergies, &p.Notes,
		&p.IsDeleted, &p.DeletedAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Create inserts a new patient record
func (r *patientRepository) Create(ctx context.Context, p *model.Patient) error {
	sql := `INSERT INTO patients (id, clinic_id, patient_id, first_name, last_name, phone, date_of_birth,
                sex, address, blood_group, allergies, notes, created_at, updated_at)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $13)`
	_, err := r.db.Exec(ctx, sql,
		p.ID, p.ClinicID, p.PatientID, p.FirstName, p.LastName, p.Phone, p.DateOfBirth,
		p.Sex, p.Address, p.BloodGroup, p.Allergies, p.Notes, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create patient: %w", err)
	}
	return nil
}

// FindByID retrieves a patient within one clinic
func (r *patientRepository) FindByID(ctx context.Context, clinicID, id uuid.UUID, includeDeleted bool) (*model.Patient, error) {
	sql := `SELECT ` + patientColumns + ` FROM patients WHERE clinic_id = $1 AND id = $2`
	if !includeDeleted {
		sql += ` AND is_deleted = FALSE`
	}
	p, err := scanPatient(r.db.QueryRow(ctx, sql, clinicID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find patient by ID: %w", err)
	}
	return p, nil
}

// List retrieves patients of a clinic with optional name/phone search
func (r *patientRepository) List(ctx context.Context, clinicID uuid.UUID, filters model.PatientFilters) ([]model.Patient, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + patientColumns + ` FROM patients WHERE clinic_id = $1`)
	args := []interface{}{clinicID}
	argCount := 2

	if !filters.IncludeDeleted {
		queryBuilder.WriteString(" AND is_deleted = FALSE")
	}
	if filters.Search != "" {
		queryBuilder.WriteString(fmt.Sprintf(
			" AND (first_name ILIKE $%d OR last_name ILIKE $%d OR phone ILIKE $%d OR patient_id ILIKE $%d)",
			argCount, argCount, argCount, argCount))
		args = append(args, "%"+filters.Search+"%")
	}

	queryBuilder.WriteString(" ORDER BY created_at DESC")

	rows, err := r.db.Query(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query patients: %w", err)
	}
	defer rows.Close()

	var patients []model.Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan patient row: %w", err)
		}
		patients = append(patients, *p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating patient rows: %w", err)
	}
	return patients, nil
}

// Update modifies a patient record
func (r *patientRepository) Update(ctx context.Context, clinicID uuid.UUID, p *model.Patient) error {
	sql := `UPDATE patients
            SET first_name = $1, last_name = $2, phone = $3, date_of_birth = $4, sex = $5,
                address = $6, blood_group = $7, allergies = $8, notes = $9, updated_at = NOW()
            WHERE clinic_id = $10 AND id = $11 AND is_deleted = FALSE RETURNING updated_at`
	err := r.db.QueryRow(ctx, sql,
		p.FirstName, p.LastName, p.Phone, p.DateOfBirth, p.Sex,
		p.Address, p.BloodGroup, p.Allergies, p.Notes,
		clinicID, p.ID).Scan(&p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return pgx.ErrNoRows
		}
		return fmt.Errorf("failed to update patient: %w", err)
	}
	return nil
}

// SoftDelete marks a patient deleted without losing the record or its
// identifier, so PAT numbers are never reused.
func (r *patientRepository) SoftDelete(ctx context.Context, clinicID, id uuid.UUID) error {
	sql := `UPDATE patients SET is_deleted = TRUE, deleted_at = NOW(), updated_at = NOW()
            WHERE clinic_id = $1 AND id = $2 AND is_deleted = FALSE`
	tag, err := r.db.Exec(ctx, sql, clinicID, id)
	if err != nil {
		return fmt.Errorf("failed to soft-delete patient: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Restore undoes a soft delete
func (r *patientRepository) Restore(ctx context.Context, clinicID, id uuid.UUID) error {
	sql := `UPDATE patients SET is_deleted = FALSE, deleted_at = NULL, updated_at = NOW()
            WHERE clinic_id = $1 AND id = $2 AND is_deleted = TRUE`
	tag, err := r.db.Exec(ctx, sql, clinicID, id)
	if err != nil {
		return fmt.Errorf("failed to restore patient: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// CountCreatedOn counts patients registered on one YYYYMMDD day,
// soft-deleted included, for reporting.
func (r *patientRepository) CountCreatedOn(ctx context.Context, clinicID uuid.UUID, day string) (int64, error) {
	sql := `SELECT COUNT(*) FROM patients WHERE clinic_id = $1 AND to_char(created_at, 'YYYYMMDD') = $2`
	var count int64
	if err := r.db.QueryRow(ctx, sql, clinicID, day).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count patients created on day: %w", err)
	}
	return count, nil
}
