package repository

import (
	"context"
	"errors"
	"fmt"

	"clinic_manager/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ClinicRepository defines operations for clinic (tenant) data
type ClinicRepository interface {
	Create(ctx context.Context, clinic *model.Clinic) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Clinic, error)
	Update(ctx context.Context, clinic *model.Clinic) error
}

type clinicRepository struct {
	db DB
}

// NewClinicRepository creates a new ClinicRepository
func NewClinicRepository(db DB) ClinicRepository {
	return &clinicRepository{db: db}
}

const clinicColumns = `id, name, address, city, region, phone_primary, phone_secondary, email,
            registration_number, invoice_footer, cash_threshold, mtn_momo_number,
            orange_money_number, bank_name, bank_account, is_active, created_at, updated_at`

func scanClinic(row pgx.Row) (*model.Clinic, error) {
	c := &model.Clinic{}
	err := row.Scan(
		&c.ID, &c.Name, &c.Address, &c.City, &c.Region, &c.PhonePrimary, &c.PhoneSecondary,
		&c.Email, &c.RegistrationNumber, &c.InvoiceFooter, &c.CashThreshold,
		&c.MTNMomoNumber, &c.OrangeMoneyNumber, &c.BankName, &c.BankAccount,
		&c.IsActive, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Create inserts a new clinic into the database
func (r *clinicRepository) Create(ctx context.Context, clinic *model.Clinic) error {
	sql := `INSERT INTO clinics (id, name, address, city, region, phone_primary, phone_secondary, email,
                registration_number, invoice_footer, cash_threshold, mtn_momo_number,
                orange_money_number, bank_name, bank_account, is_active, created_at, updated_at)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $17)`
	_, err := r.db.Exec(ctx, sql,
		clinic.ID, clinic.Name, clinic.Address, clinic.City, clinic.Region,
		clinic.PhonePrimary, clinic.PhoneSecondary, clinic.Email, clinic.RegistrationNumber,
		clinic.InvoiceFooter, clinic.CashThreshold, clinic.MTNMomoNumber,
		clinic.OrangeMoneyNumber, clinic.BankName, clinic.BankAccount,
		clinic.IsActive, clinic.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create clinic: %w", err)
	}
	return nil
}

// FindByID retrieves a clinic by its ID
func (r *clinicRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Clinic, error) {
	sql := `SELECT ` + clinicColumns + ` FROM clinics WHERE id = $1`
	clinic, err := scanClinic(r.db.QueryRow(ctx, sql, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find clinic by ID: %w", err)
	}
	return clinic, nil
}

// Update modifies clinic settings
func (r *clinicRepository) Update(ctx context.Context, clinic *model.Clinic) error {
	sql := `UPDATE clinics
            SET name = $1, address = $2, city = $3, region = $4, phone_primary = $5,
                phone_secondary = $6, email = $7, registration_number = $8, invoice_footer = $9,
                cash_threshold = $10, mtn_momo_number = $11, orange_money_number = $12,
                bank_name = $13, bank_account = $14, updated_at = NOW()
            WHERE id = $15 RETURNING updated_at`
	err := r.db.QueryRow(ctx, sql,
		clinic.Name, clinic.Address, clinic.City, clinic.Region, clinic.PhonePrimary,
		clinic.PhoneSecondary, clinic.Email, clinic.RegistrationNumber, clinic.InvoiceFooter,
		clinic.CashThreshold, clinic.MTNMomoNumber, clinic.OrangeMoneyNumber,
		clinic.BankName, clinic.BankAccount, clinic.ID).Scan(&clinic.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return pgx.ErrNoRows
		}
		return fmt.Errorf("failed to update clinic: %w", err)
	}
	return nil
}
