package services

import (
	"context"
	"errors"
	"fmt"

	"funnelcrm/internal/common"
	"funnelcrm/internal/models"
	"funnelcrm/internal/repositories"

	"github.com/google/uuid"
)

type CreateContactRequest struct {
	TenantID  uuid.UUID  `json:"tenant_id"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone"`
	Company   string     `json:"company"`
	AccountID *uuid.UUID `json:"account_id"`
	CreatedBy *uuid.UUID `json:"created_by"`
}

type UpdateContactRequest struct {
	TenantID  uuid.UUID  `json:"tenant_id"`
	ID        uuid.UUID  `json:"id"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone"`
	Company   string     `json:"company"`
	AccountID *uuid.UUID `json:"account_id"`
	Status    string     `json:"status"`
}

type ContactService interface {
	Create(ctx context.Context, req CreateContactRequest) (*models.Contact, error)
	Get(ctx context.Context, tenantID, id uuid.UUID) (*models.Contact, error)
	Update(ctx context.Context, req UpdateContactRequest) (*models.Contact, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Contact, error)
	ListByAccount(ctx context.Context, tenantID, accountID uuid.UUID) ([]*models.Contact, error)
}

type contactService struct {
	db          Store
	guard       tenantGuard
	contactRepo repositories.ContactRepository
	accountRepo repositories.AccountRepository
}

func NewContactService(db Store, contactRepo repositories.ContactRepository,
	accountRepo repositories.AccountRepository,
	tenantRepo repositories.TenantRepository, cache TenantCache) ContactService {
	return &contactService{
		db:          db,
		guard:       tenantGuard{tenantRepo: tenantRepo, cache: cache},
		contactRepo: contactRepo,
		accountRepo: accountRepo,
	}
}

// checkAccountRef verifies the referenced account lives in the same tenant.
// A lookup scoped to the tenant misses both absent and foreign accounts, and
// both are rejected the same way.
func (s *contactService) checkAccountRef(ctx context.Context, tenantID uuid.UUID, accountID *uuid.UUID) error {
	if accountID == nil {
		return nil
	}
	if _, err := s.accountRepo.GetByID(ctx, tenantID, *accountID); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return fmt.Errorf("account %s: %w", accountID, common.ErrTenantMismatch)
		}
		return err
	}
	return nil
}

func (s *contactService) Create(ctx context.Context, req CreateContactRequest) (*models.Contact, error) {
	if _, err := s.guard.requireLiveTenant(ctx, req.TenantID); err != nil {
		return nil, err
	}
	if err := common.ValidateRequiredString(req.FirstName, "first_name"); err != nil {
		return nil, err
	}
	if err := common.ValidateRequiredString(req.LastName, "last_name"); err != nil {
		return nil, err
	}
	if err := s.checkAccountRef(ctx, req.TenantID, req.AccountID); err != nil {
		return nil, err
	}

	contact := &models.Contact{
		ID:        uuid.New(),
		TenantID:  req.TenantID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Company:   req.Company,
		AccountID: req.AccountID,
		Status:    "active",
		CreatedBy: req.CreatedBy,
	}
	if err := s.contactRepo.Create(ctx, contact); err != nil {
		return nil, err
	}
	return contact, nil
}

func (s *contactService) Get(ctx context.Context, tenantID, id uuid.UUID) (*models.Contact, error) {
	return s.contactRepo.GetByID(ctx, tenantID, id)
}

func (s *contactService) Update(ctx context.Context, req UpdateContactRequest) (*models.Contact, error) {
	if _, err := s.guard.requireLiveTenant(ctx, req.TenantID); err != nil {
		return nil, err
	}
	if err := common.ValidateRequiredString(req.FirstName, "first_name"); err != nil {
		return nil, err
	}
	if err := common.ValidateRequiredString(req.LastName, "last_name"); err != nil {
		return nil, err
	}
	if err := s.checkAccountRef(ctx, req.TenantID, req.AccountID); err != nil {
		return nil, err
	}
	contact, err := s.contactRepo.GetByID(ctx, req.TenantID, req.ID)
	if err != nil {
		return nil, err
	}
	contact.FirstName = req.FirstName
	contact.LastName = req.LastName
	contact.Email = req.Email
	contact.Phone = req.Phone
	contact.Company = req.Company
	contact.AccountID = req.AccountID
	if req.Status != "" {
		contact.Status = req.Status
	}
	if err := s.contactRepo.Update(ctx, contact); err != nil {
		return nil, err
	}
	return contact, nil
}

// Delete removes the contact and nulls every weak reference to it: deals,
// quotes, invoices and orders keep their rows with contact_id cleared.
func (s *contactService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	if _, err := s.guard.requireLiveTenant(ctx, tenantID); err != nil {
		return err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := repositories.NewDealRepo(tx).DetachContact(ctx, tenantID, id); err != nil {
		return err
	}
	if err := repositories.NewQuoteRepo(tx).DetachContact(ctx, tenantID, id); err != nil {
		return err
	}
	if err := repositories.NewInvoiceRepo(tx).DetachContact(ctx, tenantID, id); err != nil {
		return err
	}
	if err := repositories.NewOrderRepo(tx).DetachContact(ctx, tenantID, id); err != nil {
		return err
	}
	if err := repositories.NewContactRepo(tx).Delete(ctx, tenantID, id); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *contactService) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Contact, error) {
	limit, offset = common.ValidatePaginationParams(limit, offset)
	return s.contactRepo.List(ctx, tenantID, limit, offset)
}

func (s *contactService) ListByAccount(ctx context.Context, tenantID, accountID uuid.UUID) ([]*models.Contact, error) {
	return s.contactRepo.ListByAccount(ctx, tenantID, accountID)
}
