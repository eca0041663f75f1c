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

// BillingRepository defines operations for invoices and payments
type BillingRepository interface {
	CreateInvoice(ctx context.Context, inv *model.Invoice, items []model.InvoiceItem) error
	FindInvoiceByID(ctx context.Context, clinicID, id uuid.UUID) (*model.Invoice, error)
	ListInvoices(ctx context.Context, clinicID uuid.UUID, filters model.BillingFilters) ([]model.Invoice, error)
	ListInvoiceItems(ctx context.Context, invoiceID uuid.UUID) ([]model.InvoiceItem, error)
	CancelInvoice(ctx context.Context, clinicID, id uuid.UUID) error

	// RecordPayment inserts the payment and settles it against the
	// invoice balance inside one transaction.
	RecordPayment(ctx context.Context, p *model.Payment) error
	ListPayments(ctx context.Context, clinicID uuid.UUID, filters model.BillingFilters) ([]model.Payment, error)

	RevenueByMethod(ctx context.Context, clinicID uuid.UUID, day string) (map[string]int64, int64, error)
	CountInvoicesOn(ctx context.Context, clinicID uuid.UUID, day string) (int64, error)
}

type billingRepository struct {
	db DB
}

// NewBillingRepository creates a new BillingRepository
func NewBillingRepository(db DB) BillingRepository {
	return &billingRepository{db: db}
}

const invoiceColumns = `id, clinic_id, invoice_number, patient_id, visit_id, total_amount,
            paid_amount, status, issued_at, created_at, updated_at`

func scanInvoice(row pgx.Row) (*model.Invoice, error) {
	inv := &model.Invoice{}
	err := row.Scan(
		&inv.ID, &inv.ClinicID, &inv.InvoiceNumber, &inv.PatientID, &inv.VisitID,
		&inv.TotalAmount, &inv.PaidAmount, &inv.Status, &inv.IssuedAt,
		&inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return inv, nil
}

// CreateInvoice inserts an invoice and its line items atomically
func (r *billingRepository) CreateInvoice(ctx context.Context, inv *model.Invoice, items []model.InvoiceItem) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin invoice transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	invoiceSQL := `INSERT INTO invoices (id, clinic_id, invoice_number, patient_id, visit_id, total_amount,
                paid_amount, status, issued_at, created_at, updated_at)
            VALUES ($1, $2, $3, $4, $5, $6, 0, $7, $8, $9, $9)`
	if _, err := tx.Exec(ctx, invoiceSQL,
		inv.ID, inv.ClinicID, inv.InvoiceNumber, inv.PatientID, inv.VisitID,
		inv.TotalAmount, inv.Status, inv.IssuedAt, inv.CreatedAt); err != nil {
		return fmt.Errorf("failed to create invoice: %w", err)
	}

	itemSQL := `INSERT INTO invoice_items (id, invoice_id, service_id, label, quantity, unit_price)
            VALUES ($1, $2, $3, $4, $5, $6)`
	for _, item := range items {
		if _, err := tx.Exec(ctx, itemSQL,
			item.ID, inv.ID, item.ServiceID, item.Label, item.Quantity, item.UnitPrice); err != nil {
			return fmt.Errorf("failed to create invoice item: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit invoice transaction: %w", err)
	}
	return nil
}

// FindInvoiceByID retrieves an invoice within one clinic
func (r *billingRepository) FindInvoiceByID(ctx context.Context, clinicID, id uuid.UUID) (*model.Invoice, error) {
	sql := `SELECT ` + invoiceColumns + ` FROM invoices WHERE clinic_id = $1 AND id = $2`
	inv, err := scanInvoice(r.db.QueryRow(ctx, sql, clinicID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find invoice by ID: %w", err)
	}
	return inv, nil
}

// ListInvoices retrieves invoices of a clinic with optional filters
func (r *billingRepository) ListInvoices(ctx context.Context, clinicID uuid.UUID, filters model.BillingFilters) ([]model.Invoice, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + invoiceColumns + ` FROM invoices WHERE clinic_id = $1`)
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
		queryBuilder.WriteString(fmt.Sprintf(" AND issued_at::date = $%d::date", argCount))
		args = append(args, *filters.Day)
	}

	queryBuilder.WriteString(" ORDER BY issued_at DESC")

	rows, err := r.db.Query(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query invoices: %w", err)
	}
	defer rows.Close()

	var invoices []model.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invoice row: %w", err)
		}
		invoices = append(invoices, *inv)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating invoice rows: %w", err)
	}
	return invoices, nil
}

// ListInvoiceItems retrieves the line items of an invoice
func (r *billingRepository) ListInvoiceItems(ctx context.Context, invoiceID uuid.UUID) ([]model.InvoiceItem, error) {
	sql := `SELECT id, invoice_id, service_id, label, quantity, unit_price
            FROM invoice_items WHERE invoice_id = $1`
	rows, err := r.db.Query(ctx, sql, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query invoice items: %w", err)
	}
	defer rows.Close()

	var items []model.InvoiceItem
	for rows.Next() {
		var item model.InvoiceItem
		if err := rows.Scan(&item.ID, &item.InvoiceID, &item.ServiceID, &item.Label, &item.Quantity, &item.UnitPrice); err != nil {
			return nil, fmt.Errorf("failed to scan invoice item row: %w", err)
		}
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating invoice item rows: %w", err)
	}
	return items, nil
}

// CancelInvoice cancels an unpaid invoice
func (r *billingRepository) CancelInvoice(ctx context.Context, clinicID, id uuid.UUID) error {
	sql := `UPDATE invoices SET status = 'cancelled', updated_at = NOW()
            WHERE clinic_id = $1 AND id = $2 AND status IN ('pending', 'partial')`
	tag, err := r.db.Exec(ctx, sql, clinicID, id)
	if err != nil {
		return fmt.Errorf("failed to cancel invoice: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// RecordPayment inserts the payment row and advances the invoice's
// paid amount and status in the same transaction.
func (r *billingRepository) RecordPayment(ctx context.Context, p *model.Payment) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin payment transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	paymentSQL := `INSERT INTO payments (id, clinic_id, payment_id, invoice_id, amount, method, received_by, received_at, created_at)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)`
	if _, err := tx.Exec(ctx, paymentSQL,
		p.ID, p.ClinicID, p.PaymentID, p.InvoiceID, p.Amount, p.Method,
		p.ReceivedBy, p.ReceivedAt); err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}

	invoiceSQL := `UPDATE invoices
            SET paid_amount = paid_amount + $1,
                status = CASE WHEN paid_amount + $1 >= total_amount THEN 'paid' ELSE 'partial' END,
                updated_at = NOW()
            WHERE clinic_id = $2 AND id = $3 AND status IN ('pending', 'partial')`
	tag, err := tx.Exec(ctx, invoiceSQL, p.Amount, p.ClinicID, p.InvoiceID)
	if err != nil {
		return fmt.Errorf("failed to settle invoice: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit payment transaction: %w", err)
	}
	return nil
}

// ListPayments retrieves payments of a clinic with optional filters
func (r *billingRepository) ListPayments(ctx context.Context, clinicID uuid.UUID, filters model.BillingFilters) ([]model.Payment, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT id, clinic_id, payment_id, invoice_id, amount, method, received_by, received_at, created_at
            FROM payments WHERE clinic_id = $1`)
	args := []interface{}{clinicID}
	argCount := 2

	if filters.Day != nil {
		queryBuilder.WriteString(fmt.Sprintf(" AND received_at::date = $%d::date", argCount))
		args = append(args, *filters.Day)
	}

	queryBuilder.WriteString(" ORDER BY received_at DESC")

	rows, err := r.db.Query(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query payments: %w", err)
	}
	defer rows.Close()

	var payments []model.Payment
	for rows.Next() {
		var p model.Payment
		if err := rows.Scan(&p.ID, &p.ClinicID, &p.PaymentID, &p.InvoiceID, &p.Amount,
			&p.Method, &p.ReceivedBy, &p.ReceivedAt, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan payment row: %w", err)
		}
		payments = append(payments, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating payment rows: %w", err)
	}
	return payments, nil
}

// RevenueByMethod aggregates one day's receipts per payment method
func (r *billingRepository) RevenueByMethod(ctx context.Context, clinicID uuid.UUID, day string) (map[string]int64, int64, error) {
	sql := `SELECT method, COALESCE(SUM(amount), 0)
            FROM payments
            WHERE clinic_id = $1 AND to_char(received_at, 'YYYYMMDD') = $2
            GROUP BY method`
	rows, err := r.db.Query(ctx, sql, clinicID, day)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query revenue by method: %w", err)
	}
	defer rows.Close()

	byMethod := make(map[string]int64)
	var total int64
	for rows.Next() {
		var method string
		var sum int64
		if err := rows.Scan(&method, &sum); err != nil {
			return nil, 0, fmt.Errorf("failed to scan revenue row: %w", err)
		}
		byMethod[method] = sum
		total += sum
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating revenue rows: %w", err)
	}
	return byMethod, total, nil
}

// CountInvoicesOn counts invoices issued on one YYYYMMDD day
func (r *billingRepository) CountInvoicesOn(ctx context.Context, clinicID uuid.UUID, day string) (int64, error) {
	sql := `SELECT COUNT(*) FROM invoices WHERE clinic_id = $1 AND to_char(issued_at, 'YYYYMMDD') = $2`
	var count int64
	if err := r.db.QueryRow(ctx, sql, clinicID, day).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count invoices on day: %w", err)
	}
	return count, nil
}
