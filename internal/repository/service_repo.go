package repository

import (
	"context"
	"errors"
	"fmt"

	"clinic_manager/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ServiceRepository defines operations for the clinic service
// catalogue. Soft-delete visibility is an explicit parameter on every
// read, never a property of which method was called.
type ServiceRepository interface {
	Create(ctx context.Context, svc *model.Service) error
	FindByID(ctx context.Context, clinicID, id uuid.UUID, includeDeleted bool) (*model.Service, error)
	List(ctx context.Context, clinicID uuid.UUID, includeDeleted bool) ([]model.Service, error)
	Update(ctx context.Context, clinicID uuid.UUID, svc *model.Service) error
	SoftDelete(ctx context.Context, clinicID, id uuid.UUID) error
	Restore(ctx context.Context, clinicID, id uuid.UUID) error
}

type serviceRepository struct {
	db DB
}

// NewServiceRepository creates a new ServiceRepository
func NewServiceRepository(db DB) ServiceRepository {
	return &serviceRepository{db: db}
}

const serviceColumns = `id, clinic_id, name, code, category, price, description,
            is_active, is_deleted, deleted_at, created_at, updated_at`

func scanService(row pgx.Row) (*model.Service, error) {
	s := &model.Service{}
	err := row.Scan(
		&s.ID, &s.ClinicID, &s.Name, &s.Code, &s.Category, &s.Price, &s.Description,
		&s.IsActive, &s.IsDeleted, &s.DeletedAt, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Create inserts a new service into the catalogue
func (r *serviceRepository) Create(ctx context.Context, svc *model.Service) error {
	sql := `INSERT INTO services (id, clinic_id, name, code, category, price, description, is_active, created_at, updated_at)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)`
	_, err := r.db.Exec(ctx, sql,
		svc.ID, svc.ClinicID, svc.Name, svc.Code, svc.Category, svc.Price,
		svc.Description, svc.IsActive, svc.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}
	return nil
}

// FindByID retrieves a service within one clinic
func (r *serviceRepository) FindByID(ctx context.Context, clinicID, id uuid.UUID, includeDeleted bool) (*model.Service, error) {
	sql := `SELECT ` + serviceColumns + ` FROM services WHERE clinic_id = $1 AND id = $2`
	if !includeDeleted {
		sql += ` AND is_deleted = FALSE`
	}
	svc, err := scanService(r.db.QueryRow(ctx, sql, clinicID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find service by ID: %w", err)
	}
	return svc, nil
}

// List retrieves the catalogue of a clinic
func (r *serviceRepository) List(ctx context.Context, clinicID uuid.UUID, includeDeleted bool) ([]model.Service, error) {
	sql := `SELECT ` + serviceColumns + ` FROM services WHERE clinic_id = $1`
	if !includeDeleted {
		sql += ` AND is_deleted = FALSE`
	}
	sql += ` ORDER BY category, name`

	rows, err := r.db.Query(ctx, sql, clinicID)
	if err != nil {
		return nil, fmt.Errorf("failed to query services: %w", err)
	}
	defer rows.Close()

	var services []model.Service
	for rows.Next() {
		svc, err := scanService(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan service row: %w", err)
		}
		services = append(services, *svc)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating service rows: %w", err)
	}
	return services, nil
}

// Update modifies an existing service
func (r *serviceRepository) Update(ctx context.Context, clinicID uuid.UUID, svc *model.Service) error {
	sql := `UPDATE services
            SET name = $1, category = $2, price = $3, description = $4, is_active = $5, updated_at = NOW()
            WHERE clinic_id = $6 AND id = $7 AND is_deleted = FALSE RETURNING updated_at`
	err := r.db.QueryRow(ctx, sql,
		svc.Name, svc.Category, svc.Price, svc.Description, svc.IsActive,
		clinicID, svc.ID).Scan(&svc.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return pgx.ErrNoRows
		}
		return fmt.Errorf("failed to update service: %w", err)
	}
	return nil
}

// SoftDelete marks a service deleted, keeping the row
func (r *serviceRepository) SoftDelete(ctx context.Context, clinicID, id uuid.UUID) error {
	sql := `UPDATE services SET is_deleted = TRUE, deleted_at = NOW(), updated_at = NOW()
            WHERE clinic_id = $1 AND id = $2 AND is_deleted = FALSE`
	tag, err := r.db.Exec(ctx, sql, clinicID, id)
	if err != nil {
		return fmt.Errorf("failed to soft-delete service: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Restore undoes a soft delete
func (r *serviceRepository) Restore(ctx context.Context, clinicID, id uuid.UUID) error {
	sql := `UPDATE services SET is_deleted = FALSE, deleted_at = NULL, updated_at = NOW()
            WHERE clinic_id = $1 AND id = $2 AND is_deleted = TRUE`
	tag, err := r.db.Exec(ctx, sql, clinicID, id)
	if err != nil {
		return fmt.Errorf("failed to restore service: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
