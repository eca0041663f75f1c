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

// VisitRepository defines operations for patient visits
type VisitRepository interface {
	Create(ctx context.Context, v *model.Visit) error
	FindByID(ctx context.Context, clinicID, id uuid.UUID) (*model.Visit, error)
	List(ctx context.Context, clinicID uuid.UUID, filters model.VisitFilters) ([]model.Visit, error)
	Update(ctx context.Context, clinicID uuid.UUID, v *model.Visit) error
	UpdateStatus(ctx context.Context, clinicID, id uuid.UUID, status string, ended bool) error
	CountOn(ctx context.Context, clinicID uuid.UUID, day string) (int64, error)
}

type visitRepository struct {
	db DB
}

// NewVisitRepository creates a new VisitRepository
func NewVisitRepository(db DB) VisitRepository {
	return &visitRepository{db: db}
}

const visitColumns = `id, clinic_id, visit_id, patient_id, reason, diagnosis, notes, status,
            started_at, ended_at, created_at, updated_at`

func scanVisit(row pgx.Row) (*model.Visit, error) {
	v := &model.Visit{}
	err := row.Scan(
		&v.ID, &v.ClinicID, &v.VisitID, &v.PatientID, &v.Reason, &v.Diagnosis, &v.Notes,
		&v.Status, &v.StartedAt, &v.EndedAt, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return v, nil
}

// Create inserts a new visit
func (r *visitRepository) Create(ctx context.Context, v *model.Visit) error {
	sql := `INSERT INTO visits (id, clinic_id, visit_id, patient_id, reason, diagnosis, notes, status, started_at, created_at, updated_at)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)`
	_, err := r.db.Exec(ctx, sql,
		v.ID, v.ClinicID, v.VisitID, v.PatientID, v.Reason, v.Diagnosis, v.Notes,
		v.Status, v.StartedAt, v.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create visit: %w", err)
	}
	return nil
}

// FindByID retrieves a visit within one clinic
func (r *visitRepository) FindByID(ctx context.Context, clinicID, id uuid.UUID) (*model.Visit, error) {
	sql := `SELECT ` + visitColumns + ` FROM visits WHERE clinic_id = $1 AND id = $2`
	v, err := scanVisit(r.db.QueryRow(ctx, sql, clinicID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find visit by ID: %w", err)
	}
	return v, nil
}

// List retrieves visits of a clinic with optional filters
func (r *visitRepository) List(ctx context.Context, clinicID uuid.UUID, filters model.VisitFilters) ([]model.Visit, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + visitColumns + ` FROM visits WHERE clinic_id = $1`)
	args := []interface{}{clinicID}
	argCount := 2

	if filters.PatientID != nil {
		queryBuilder.WriteString(fmt.Sprintf(" AND patient_id = $%d", argCount))
		args = append(args, *filters.PatientID)
		argCount++
	}
	if filters.Status != nil && *filters.Status != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND status = $%d", argCount))
		args = append(args, *filters.Status)
		argCount++
	}
	if filters.Day != nil {
		queryBuilder.WriteString(fmt.Sprintf(" AND started_at::date = $%d::date", argCount))
		args = append(args, *filters.Day)
	}

	queryBuilder.WriteString(" ORDER BY started_at DESC")

	rows, err := r.db.Query(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query visits: %w", err)
	}
	defer rows.Close()

	var visits []model.Visit
	for rows.Next() {
		v, err := scanVisit(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan visit row: %w", err)
		}
		visits = append(visits, *v)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating visit rows: %w", err)
	}
	return visits, nil
}

// Update modifies the editable fields of a visit
func (r *visitRepository) Update(ctx context.Context, clinicID uuid.UUID, v *model.Visit) error {
	sql := `UPDATE visits
            SET reason = $1, diagnosis = $2, notes = $3, updated_at = NOW()
            WHERE clinic_id = $4 AND id = $5 RETURNING updated_at`
	err := r.db.QueryRow(ctx, sql,
		v.Reason, v.Diagnosis, v.Notes, clinicID, v.ID).Scan(&v.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return pgx.ErrNoRows
		}
		return fmt.Errorf("failed to update visit: %w", err)
	}
	return nil
}

// UpdateStatus moves a visit to a new status, stamping ended_at for
// terminal transitions
func (r *visitRepository) UpdateStatus(ctx context.Context, clinicID, id uuid.UUID, status string, ended bool) error {
	sql := `UPDATE visits SET status = $1, ended_at = CASE WHEN $2 THEN NOW() ELSE ended_at END, updated_at = NOW()
            WHERE clinic_id = $3 AND id = $4`
	tag, err := r.db.Exec(ctx, sql, status, ended, clinicID, id)
	if err != nil {
		return fmt.Errorf("failed to update visit status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// CountOn counts visits started on one YYYYMMDD day, for reporting
func (r *visitRepository) CountOn(ctx context.Context, clinicID uuid.UUID, day string) (int64, error) {
	sql := `SELECT COUNT(*) FROM visits WHERE clinic_id = $1 AND to_char(started_at, 'YYYYMMDD') = $2`
	var count int64
	if err := r.db.QueryRow(ctx, sql, clinicID, day).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count visits on day: %w", err)
	}
	return count, nil
}
