package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"funnelcrm/internal/common"
	"funnelcrm/internal/models"
	"funnelcrm/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateDealRequest struct {
	TenantID    uuid.UUID       `json:"tenant_id"`
	Title       string          `json:"title"`
	ContactID   *uuid.UUID      `json:"contact_id"`
	AccountID   *uuid.UUID      `json:"account_id"`
	Stage       string          `json:"stage"`
	Value       decimal.Decimal `json:"value"`
	Margin      decimal.Decimal `json:"margin"`
	Cost        decimal.Decimal `json:"cost"`
	Revenue     decimal.Decimal `json:"revenue"`
	Probability int             `json:"probability"`
	CloseDate   *time.Time      `json:"close_date"`
	CreatedBy   *uuid.UUID      `json:"created_by"`
}

type UpdateDealRequest struct {
	TenantID    uuid.UUID       `json:"tenant_id"`
	ID          uuid.UUID       `json:"id"`
	Title       string          `json:"title"`
	ContactID   *uuid.UUID      `json:"contact_id"`
	AccountID   *uuid.UUID      `json:"account_id"`
	Stage       string          `json:"stage"`
	Value       decimal.Decimal `json:"value"`
	Margin      decimal.Decimal `json:"margin"`
	Cost        decimal.Decimal `json:"cost"`
	Revenue     decimal.Decimal `json:"revenue"`
	Probability int             `json:"probability"`
	CloseDate   *time.Time      `json:"close_date"`
}

type DealService interface {
	Create(ctx context.Context, req CreateDealRequest) (*models.Deal, error)
	Get(ctx context.Context, tenantID, id uuid.UUID) (*models.Deal, error)
	Update(ctx context.Context, req UpdateDealRequest) (*models.Deal, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Deal, error)
	ListByStage(ctx context.Context, tenantID uuid.UUID, stage string, limit, offset int) ([]*models.Deal, error)
}

type dealService struct {
	db          Store
	guard       tenantGuard
	dealRepo    repositories.DealRepository
	contactRepo repositories.ContactRepository
	accountRepo repositories.AccountRepository
}

func NewDealService(db Store, dealRepo repositories.DealRepository,
	contactRepo repositories.ContactRepository, accountRepo repositories.AccountRepository,
	tenantRepo repositories.TenantRepository, cache TenantCache) DealService {
	return &dealService{
		db:          db,
		guard:       tenantGuard{tenantRepo: tenantRepo, cache: cache},
		dealRepo:    dealRepo,
		contactRepo: contactRepo,
		accountRepo: accountRepo,
	}
}

func (s *dealService) checkRefs(ctx context.Context, tenantID uuid.UUID, contactID, accountID *uuid.UUID) error {
	if contactID != nil {
		if _, err := s.contactRepo.GetByID(ctx, tenantID, *contactID); err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return fmt.Errorf("contact %s: %w", contactID, common.ErrTenantMismatch)
			}
			return err
		}
	}
	if accountID != nil {
		if _, err := s.accountRepo.GetByID(ctx, tenantID, *accountID); err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return fmt.Errorf("account %s: %w", accountID, common.ErrTenantMismatch)
			}
			return err
		}
	}
	return nil
}

func validateDealFields(title, stage string, probability int) error {
	if err := common.ValidateRequiredString(title, "title"); err != nil {
		return err
	}
	if err := common.ValidateEnum(stage, common.DealStages, "stage"); err != nil {
		return err
	}
	if probability < 0 || probability > 100 {
		return fmt.Errorf("probability must be between 0 and 100, got %d", probability)
	}
	return nil
}

// dealStatusFor couples the outcome to the stage: closing a deal settles its
// status, everything before that stays active.
func dealStatusFor(stage string) string {
	switch stage {
	case "closed_won":
		return "won"
	case "closed_lost":
		return "lost"
	default:
		return "active"
	}
}

func (s *dealService) Create(ctx context.Context, req CreateDealRequest) (*models.Deal, error) {
	if _, err := s.guard.requireLiveTenant(ctx, req.TenantID); err != nil {
		return nil, err
	}
	if req.Stage == "" {
		req.Stage = "discovery"
	}
	if err := validateDealFields(req.Title, req.Stage, req.Probability); err != nil {
		return nil, err
	}
	if err := s.checkRefs(ctx, req.TenantID, req.ContactID, req.AccountID); err != nil {
		return nil, err
	}

	deal := &models.Deal{
		ID:          uuid.New(),
		TenantID:    req.TenantID,
		Title:       req.Title,
		ContactID:   req.ContactID,
		AccountID:   req.AccountID,
		Stage:       req.Stage,
		Value:       req.Value,
		Margin:      req.Margin,
		Cost:        req.Cost,
		Revenue:     req.Revenue,
		Probability: req.Probability,
		CloseDate:   req.CloseDate,
		Status:      dealStatusFor(req.Stage),
		CreatedBy:   req.CreatedBy,
	}
	if err := s.dealRepo.Create(ctx, deal); err != nil {
		return nil, err
	}
	return deal, nil
}

func (s *dealService) Get(ctx context.Context, tenantID, id uuid.UUID) (*models.Deal, error) {
	return s.dealRepo.GetByID(ctx, tenantID, id)
}

func (s *dealService) Update(ctx context.Context, req UpdateDealRequest) (*models.Deal, error) {
	if _, err := s.guard.requireLiveTenant(ctx, req.TenantID); err != nil {
		return nil, err
	}
	if err := validateDealFields(req.Title, req.Stage, req.Probability); err != nil {
		return nil, err
	}
	if err := s.checkRefs(ctx, req.TenantID, req.ContactID, req.AccountID); err != nil {
		return nil, err
	}
	deal, err := s.dealRepo.GetByID(ctx, req.TenantID, req.ID)
	if err != nil {
		return nil, err
	}
	deal.Title = req.Title
	deal.ContactID = req.ContactID
	deal.AccountID = req.AccountID
	deal.Stage = req.Stage
	deal.Value = req.Value
	deal.Margin = req.Margin
	deal.Cost = req.Cost
	deal.Revenue = req.Revenue
	deal.Probability = req.Probability
	deal.CloseDate = req.CloseDate
	deal.Status = dealStatusFor(req.Stage)
	if err := s.dealRepo.Update(ctx, deal); err != nil {
		return nil, err
	}
	return deal, nil
}

// Delete removes the deal; quotes that referenced it keep their rows with
// deal_id cleared.
func (s *dealService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	if _, err := s.guard.requireLiveTenant(ctx, tenantID); err != nil {
		return err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := repositories.NewQuoteRepo(tx).DetachDeal(ctx, tenantID, id); err != nil {
		return err
	}
	if err := repositories.NewDealRepo(tx).Delete(ctx, tenantID, id); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *dealService) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Deal, error) {
	limit, offset = common.ValidatePaginationParams(limit, offset)
	return s.dealRepo.List(ctx, tenantID, limit, offset)
}

func (s *dealService) ListByStage(ctx context.Context, tenantID uuid.UUID, stage string, limit, offset int) ([]*models.Deal, error) {
	if err := common.ValidateEnum(stage, common.DealStages, "stage"); err != nil {
		return nil, err
	}
	limit, offset = common.ValidatePaginationParams(limit, offset)
	return s.dealRepo.ListByStage(ctx, tenantID, stage, limit, offset)
}
