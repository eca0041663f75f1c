package service

import (
	"context"
	"errors"
	"time"

	"clinic_manager/internal/apperr"
	"clinic_manager/internal/model"
	"clinic_manager/internal/repository"
	"clinic_manager/internal/sequence"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// BillingService manages invoices and payments for one clinic
type BillingService interface {
	CreateInvoice(ctx context.Context, clinicID uuid.UUID, req model.CreateInvoiceRequest) (*model.Invoice, []model.InvoiceItem, error)
	GetInvoice(ctx context.Context, clinicID, id uuid.UUID) (*model.Invoice, []model.InvoiceItem, error)
	ListInvoices(ctx context.Context, clinicID uuid.UUID, filters model.BillingFilters) ([]model.Invoice, error)
	CancelInvoice(ctx context.Context, clinicID, id uuid.UUID) error
	RecordPayment(ctx context.Context, clinicID, receivedBy uuid.UUID, req model.CreatePaymentRequest) (*model.Payment, error)
	ListPayments(ctx context.Context, clinicID uuid.UUID, filters model.BillingFilters) ([]model.Payment, error)
	DailySummary(ctx context.Context, clinicID uuid.UUID, day time.Time) (*model.DailySummary, error)
}

type billingService struct {
	billingRepo repository.BillingRepository
	patientRepo repository.PatientRepository
	visitRepo   repository.VisitRepository
	serviceRepo repository.ServiceRepository
	idGen       *sequence.Generator
}

// NewBillingService creates a new BillingService
func NewBillingService(billingRepo repository.BillingRepository, patientRepo repository.PatientRepository,
	visitRepo repository.VisitRepository, serviceRepo repository.ServiceRepository,
	idGen *sequence.Generator) BillingService {
	return &billingService{
		billingRepo: billingRepo,
		patientRepo: patientRepo,
		visitRepo:   visitRepo,
		serviceRepo: serviceRepo,
		idGen:       idGen,
	}
}

// CreateInvoice issues an invoice for catalogue services, assigning
// the next INV identifier. Prices come from the catalogue at issue
// time, not from the caller.
func (s *billingService) CreateInvoice(ctx context.Context, clinicID uuid.UUID, req model.CreateInvoiceRequest) (*model.Invoice, []model.InvoiceItem, error) {
	patient, err := s.patientRepo.FindByID(ctx, clinicID, req.PatientID, false)
	if err != nil {
		return nil, nil, err
	}
	if patient == nil {
		return nil, nil, apperr.NotFound()
	}

	if req.VisitID != nil {
		visit, err := s.visitRepo.FindByID(ctx, clinicID, *req.VisitID)
		if err != nil {
			return nil, nil, err
		}
		if visit == nil {
			return nil, nil, apperr.NotFound()
		}
	}

	var items []model.InvoiceItem
	var total int64
	for _, itemReq := range req.Items {
		svc, err := s.serviceRepo.FindByID(ctx, clinicID, itemReq.ServiceID, false)
		if err != nil {
			return nil, nil, err
		}
		if svc == nil {
			return nil, nil, apperr.NotFound()
		}
		items = append(items, model.InvoiceItem{
			ID:        uuid.New(),
			ServiceID: svc.ID,
			Label:     svc.Name,
			Quantity:  itemReq.Quantity,
			UnitPrice: int64(svc.Price),
		})
		total += int64(svc.Price) * int64(itemReq.Quantity)
	}

	invoiceNumber, err := s.idGen.Generate(ctx, sequence.KindInvoice, clinicID)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now()
	inv := &model.Invoice{
		ID:            uuid.New(),
		ClinicID:      clinicID,
		InvoiceNumber: invoiceNumber,
		PatientID:     patient.ID,
		VisitID:       req.VisitID,
		TotalAmount:   total,
		Status:        model.InvoiceStatusPending,
		IssuedAt:      now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	for i := range items {
		items[i].InvoiceID = inv.ID
	}

	if err := s.billingRepo.CreateInvoice(ctx, inv, items); err != nil {
		return nil, nil, err
	}
	return inv, items, nil
}

// GetInvoice returns one invoice with its line items
func (s *billingService) GetInvoice(ctx context.Context, clinicID, id uuid.UUID) (*model.Invoice, []model.InvoiceItem, error) {
	inv, err := s.billingRepo.FindInvoiceByID(ctx, clinicID, id)
	if err != nil {
		return nil, nil, err
	}
	if inv == nil {
		return nil, nil, apperr.NotFound()
	}
	items, err := s.billingRepo.ListInvoiceItems(ctx, inv.ID)
	if err != nil {
		return nil, nil, err
	}
	return inv, items, nil
}

// ListInvoices returns invoices of the clinic
func (s *billingService) ListInvoices(ctx context.Context, clinicID uuid.UUID, filters model.BillingFilters) ([]model.Invoice, error) {
	return s.billingRepo.ListInvoices(ctx, clinicID, filters)
}

// CancelInvoice cancels an unpaid or partially paid invoice
func (s *billingService) CancelInvoice(ctx context.Context, clinicID, id uuid.UUID) error {
	if err := s.billingRepo.CancelInvoice(ctx, clinicID, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.NotFound()
		}
		return err
	}
	return nil
}

// RecordPayment records money received against an invoice, assigning
// the next PAY identifier
func (s *billingService) RecordPayment(ctx context.Context, clinicID, receivedBy uuid.UUID, req model.CreatePaymentRequest) (*model.Payment, error) {
	inv, err := s.billingRepo.FindInvoiceByID(ctx, clinicID, req.InvoiceID)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, apperr.NotFound()
	}
	if inv.Status == model.InvoiceStatusPaid || inv.Status == model.InvoiceStatusCancelled {
		return nil, apperr.Validation("Facture deja reglee ou annulee", nil)
	}
	if req.Amount > inv.TotalAmount-inv.PaidAmount {
		return nil, apperr.Validation("Montant superieur au solde restant", map[string][]string{
			"amount": {"le montant depasse le solde de la facture"},
		})
	}

	paymentID, err := s.idGen.Generate(ctx, sequence.KindPayment, clinicID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	p := &model.Payment{
		ID:         uuid.New(),
		ClinicID:   clinicID,
		PaymentID:  paymentID,
		InvoiceID:  inv.ID,
		Amount:     req.Amount,
		Method:     req.Method,
		ReceivedBy: receivedBy,
		ReceivedAt: now,
		CreatedAt:  now,
	}
	if err := s.billingRepo.RecordPayment(ctx, p); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound()
		}
		return nil, err
	}
	return p, nil
}

// ListPayments returns payments of the clinic
func (s *billingService) ListPayments(ctx context.Context, clinicID uuid.UUID, filters model.BillingFilters) ([]model.Payment, error) {
	return s.billingRepo.ListPayments(ctx, clinicID, filters)
}

// DailySummary aggregates one clinic day: revenue per payment method,
// invoice and visit counts, and new patient registrations
func (s *billingService) DailySummary(ctx context.Context, clinicID uuid.UUID, day time.Time) (*model.DailySummary, error) {
	dayStr := day.Format("20060102")

	byMethod, total, err := s.billingRepo.RevenueByMethod(ctx, clinicID, dayStr)
	if err != nil {
		return nil, err
	}
	invoiceCount, err := s.billingRepo.CountInvoicesOn(ctx, clinicID, dayStr)
	if err != nil {
		return nil, err
	}
	visitCount, err := s.visitRepo.CountOn(ctx, clinicID, dayStr)
	if err != nil {
		return nil, err
	}
	newPatients, err := s.patientRepo.CountCreatedOn(ctx, clinicID, dayStr)
	if err != nil {
		return nil, err
	}

	return &model.DailySummary{
		Day:             dayStr,
		RevenueByMethod: byMethod,
		TotalRevenue:    total,
		InvoiceCount:    invoiceCount,
		VisitCount:      visitCount,
		NewPatients:     newPatients,
	}, nil
}
