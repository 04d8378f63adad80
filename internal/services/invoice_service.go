package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"funnelcrm/internal/common"
	"funnelcrm/internal/models"
	"funnelcrm/internal/plans"
	"funnelcrm/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateInvoiceRequest struct {
	TenantID  uuid.UUID       `json:"tenant_id"`
	Number    string          `json:"number"`
	ContactID *uuid.UUID      `json:"contact_id"`
	Client    string          `json:"client"`
	Amount    decimal.Decimal `json:"amount"`
	Tax       decimal.Decimal `json:"tax"`
	DueDate   *time.Time      `json:"due_date"`
	Status    string          `json:"status"`
	QuoteID   *uuid.UUID      `json:"quote_id"`
	CreatedBy *uuid.UUID      `json:"created_by"`
}

type UpdateInvoiceRequest struct {
	TenantID  uuid.UUID       `json:"tenant_id"`
	ID        uuid.UUID       `json:"id"`
	Number    string          `json:"number"`
	ContactID *uuid.UUID      `json:"contact_id"`
	Client    string          `json:"client"`
	Amount    decimal.Decimal `json:"amount"`
	Tax       decimal.Decimal `json:"tax"`
	DueDate   *time.Time      `json:"due_date"`
	Status    string          `json:"status"`
	QuoteID   *uuid.UUID      `json:"quote_id"`
}

type InvoiceService interface {
	Create(ctx context.Context, req CreateInvoiceRequest) (*models.Invoice, error)
	Get(ctx context.Context, tenantID, id uuid.UUID) (*models.Invoice, error)
	Update(ctx context.Context, req UpdateInvoiceRequest) (*models.Invoice, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Invoice, error)
	ListByStatus(ctx context.Context, tenantID uuid.UUID, status string, limit, offset int) ([]*models.Invoice, error)
}

type invoiceService struct {
	guard       tenantGuard
	invoiceRepo repositories.InvoiceRepository
	contactRepo repositories.ContactRepository
	quoteRepo   repositories.QuoteRepository
	subs        SubscriptionService
}

func NewInvoiceService(invoiceRepo repositories.InvoiceRepository,
	contactRepo repositories.ContactRepository, quoteRepo repositories.QuoteRepository,
	tenantRepo repositories.TenantRepository, subs SubscriptionService, cache TenantCache) InvoiceService {
	return &invoiceService{
		guard:       tenantGuard{tenantRepo: tenantRepo, cache: cache},
		invoiceRepo: invoiceRepo,
		contactRepo: contactRepo,
		quoteRepo:   quoteRepo,
		subs:        subs,
	}
}

func (s *invoiceService) checkRefs(ctx context.Context, tenantID uuid.UUID, contactID, quoteID *uuid.UUID) error {
	if contactID != nil {
		if _, err := s.contactRepo.GetByID(ctx, tenantID, *contactID); err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return fmt.Errorf("contact %s: %w", contactID, common.ErrTenantMismatch)
			}
			return err
		}
	}
	if quoteID != nil {
		if _, err := s.quoteRepo.GetByID(ctx, tenantID, *quoteID); err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return fmt.Errorf("quote %s: %w", quoteID, common.ErrTenantMismatch)
			}
			return err
		}
	}
	return nil
}

func validateInvoiceAmounts(amount, tax decimal.Decimal) error {
	if amount.IsNegative() {
		return fmt.Errorf("amount cannot be negative")
	}
	if tax.IsNegative() {
		return fmt.Errorf("tax cannot be negative")
	}
	return nil
}

func (s *invoiceService) Create(ctx context.Context, req CreateInvoiceRequest) (*models.Invoice, error) {
	if _, err := s.guard.requireLiveTenant(ctx, req.TenantID); err != nil {
		return nil, err
	}
	if err := s.subs.RequireFeature(ctx, req.TenantID, plans.FeatureInvoices); err != nil {
		return nil, err
	}
	if err := common.ValidateRequiredString(req.Number, "number"); err != nil {
		return nil, err
	}
	if req.Status == "" {
		req.Status = "draft"
	}
	if err := common.ValidateStatus(req.Status, common.InvoiceStatuses, "invoice status"); err != nil {
		return nil, err
	}
	if err := validateInvoiceAmounts(req.Amount, req.Tax); err != nil {
		return nil, err
	}
	if err := s.checkRefs(ctx, req.TenantID, req.ContactID, req.QuoteID); err != nil {
		return nil, err
	}

	invoice := &models.Invoice{
		ID:        uuid.New(),
		TenantID:  req.TenantID,
		Number:    req.Number,
		ContactID: req.ContactID,
		Client:    req.Client,
		Amount:    req.Amount,
		Tax:       req.Tax,
		Total:     req.Amount.Add(req.Tax),
		DueDate:   req.DueDate,
		Status:    req.Status,
		QuoteID:   req.QuoteID,
		CreatedBy: req.CreatedBy,
	}
	if err := s.invoiceRepo.Create(ctx, invoice); err != nil {
		return nil, err
	}
	return invoice, nil
}

func (s *invoiceService) Get(ctx context.Context, tenantID, id uuid.UUID) (*models.Invoice, error) {
	return s.invoiceRepo.GetByID(ctx, tenantID, id)
}

func (s *invoiceService) Update(ctx context.Context, req UpdateInvoiceRequest) (*models.Invoice, error) {
	if _, err := s.guard.requireLiveTenant(ctx, req.TenantID); err != nil {
		return nil, err
	}
	if err := s.subs.RequireFeature(ctx, req.TenantID, plans.FeatureInvoices); err != nil {
		return nil, err
	}
	if err := common.ValidateRequiredString(req.Number, "number"); err != nil {
		return nil, err
	}
	if err := common.ValidateStatus(req.Status, common.InvoiceStatuses, "invoice status"); err != nil {
		return nil, err
	}
	if err := validateInvoiceAmounts(req.Amount, req.Tax); err != nil {
		return nil, err
	}
	if err := s.checkRefs(ctx, req.TenantID, req.ContactID, req.QuoteID); err != nil {
		return nil, err
	}

	invoice, err := s.invoiceRepo.GetByID(ctx, req.TenantID, req.ID)
	if err != nil {
		return nil, err
	}
	invoice.Number = req.Number
	invoice.ContactID = req.ContactID
	invoice.Client = req.Client
	invoice.Amount = req.Amount
	invoice.Tax = req.Tax
	invoice.Total = req.Amount.Add(req.Tax)
	invoice.DueDate = req.DueDate
	invoice.Status = req.Status
	invoice.QuoteID = req.QuoteID
	if err := s.invoiceRepo.Update(ctx, invoice); err != nil {
		return nil, err
	}
	return invoice, nil
}

func (s *invoiceService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	if _, err := s.guard.requireLiveTenant(ctx, tenantID); err != nil {
		return err
	}
	return s.invoiceRepo.Delete(ctx, tenantID, id)
}

func (s *invoiceService) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Invoice, error) {
	limit, offset = common.ValidatePaginationParams(limit, offset)
	return s.invoiceRepo.List(ctx, tenantID, limit, offset)
}

func (s *invoiceService) ListByStatus(ctx context.Context, tenantID uuid.UUID, status string, limit, offset int) ([]*models.Invoice, error) {
	if err := common.ValidateStatus(status, common.InvoiceStatuses, "invoice status"); err != nil {
		return nil, err
	}
	limit, offset = common.ValidatePaginationParams(limit, offset)
	return s.invoiceRepo.ListByStatus(ctx, tenantID, status, limit, offset)
}
