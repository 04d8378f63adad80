package services

import (
	"context"
	"fmt"

	"funnelcrm/internal/common"
	"funnelcrm/internal/models"
	"funnelcrm/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateAccountRequest struct {
	TenantID  uuid.UUID       `json:"tenant_id"`
	Name      string          `json:"name"`
	Industry  string          `json:"industry"`
	Website   string          `json:"website"`
	Phone     string          `json:"phone"`
	Email     string          `json:"email"`
	Revenue   decimal.Decimal `json:"revenue"`
	Employees int             `json:"employees"`
	OwnerID   *uuid.UUID      `json:"owner_id"`
	CreatedBy *uuid.UUID      `json:"created_by"`
}

type UpdateAccountRequest struct {
	TenantID  uuid.UUID       `json:"tenant_id"`
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Industry  string          `json:"industry"`
	Website   string          `json:"website"`
	Phone     string          `json:"phone"`
	Email     string          `json:"email"`
	Revenue   decimal.Decimal `json:"revenue"`
	Employees int             `json:"employees"`
	Status    string          `json:"status"`
	OwnerID   *uuid.UUID      `json:"owner_id"`
}

type AccountService interface {
	Create(ctx context.Context, req CreateAccountRequest) (*models.Account, error)
	Get(ctx context.Context, tenantID, id uuid.UUID) (*models.Account, error)
	Update(ctx context.Context, req UpdateAccountRequest) (*models.Account, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Account, error)
}

type accountService struct {
	db          Store
	guard       tenantGuard
	accountRepo repositories.AccountRepository
}

func NewAccountService(db Store, accountRepo repositories.AccountRepository,
	tenantRepo repositories.TenantRepository, cache TenantCache) AccountService {
	return &accountService{
		db:          db,
		guard:       tenantGuard{tenantRepo: tenantRepo, cache: cache},
		accountRepo: accountRepo,
	}
}

func validateAccountFields(name string, revenue decimal.Decimal, employees int) error {
	if err := common.ValidateRequiredString(name, "name"); err != nil {
		return err
	}
	if revenue.IsNegative() {
		return fmt.Errorf("revenue cannot be negative")
	}
	if employees < 0 {
		return fmt.Errorf("employees cannot be negative")
	}
	return nil
}

func (s *accountService) Create(ctx context.Context, req CreateAccountRequest) (*models.Account, error) {
	if _, err := s.guard.requireLiveTenant(ctx, req.TenantID); err != nil {
		return nil, err
	}
	if err := validateAccountFields(req.Name, req.Revenue, req.Employees); err != nil {
		return nil, err
	}

	account := &models.Account{
		ID:        uuid.New(),
		TenantID:  req.TenantID,
		Name:      req.Name,
		Industry:  req.Industry,
		Website:   req.Website,
		Phone:     req.Phone,
		Email:     req.Email,
		Revenue:   req.Revenue,
		Employees: req.Employees,
		Status:    "active",
		OwnerID:   req.OwnerID,
		CreatedBy: req.CreatedBy,
	}
	if err := s.accountRepo.Create(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

func (s *accountService) Get(ctx context.Context, tenantID, id uuid.UUID) (*models.Account, error) {
	return s.accountRepo.GetByID(ctx, tenantID, id)
}

func (s *accountService) Update(ctx context.Context, req UpdateAccountRequest) (*models.Account, error) {
	if _, err := s.guard.requireLiveTenant(ctx, req.TenantID); err != nil {
		return nil, err
	}
	if err := validateAccountFields(req.Name, req.Revenue, req.Employees); err != nil {
		return nil, err
	}
	account, err := s.accountRepo.GetByID(ctx, req.TenantID, req.ID)
	if err != nil {
		return nil, err
	}
	account.Name = req.Name
	account.Industry = req.Industry
	account.Website = req.Website
	account.Phone = req.Phone
	account.Email = req.Email
	account.Revenue = req.Revenue
	account.Employees = req.Employees
	if req.Status != "" {
		account.Status = req.Status
	}
	account.OwnerID = req.OwnerID
	if err := s.accountRepo.Update(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// Delete removes the account and detaches dependents in one transaction:
// contacts and deals that pointed at it survive with a nulled reference.
func (s *accountService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	if _, err := s.guard.requireLiveTenant(ctx, tenantID); err != nil {
		return err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := repositories.NewContactRepo(tx).DetachAccount(ctx, tenantID, id); err != nil {
		return err
	}
	if err := repositories.NewDealRepo(tx).DetachAccount(ctx, tenantID, id); err != nil {
		return err
	}
	if err := repositories.NewAccountRepo(tx).Delete(ctx, tenantID, id); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *accountService) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Account, error) {
	limit, offset = common.ValidatePaginationParams(limit, offset)
	return s.accountRepo.List(ctx, tenantID, limit, offset)
}
