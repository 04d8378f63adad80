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

type QuoteItemInput struct {
	ProductID *uuid.UUID      `json:"product_id"`
	Name      string          `json:"name"`
	Qty       int             `json:"qty"`
	Price     decimal.Decimal `json:"price"`
}

type CreateQuoteRequest struct {
	TenantID    uuid.UUID        `json:"tenant_id"`
	Number      string           `json:"number"`
	ContactID   *uuid.UUID       `json:"contact_id"`
	ContactName string           `json:"contact_name"`
	DealID      *uuid.UUID       `json:"deal_id"`
	Status      string           `json:"status"`
	ValidUntil  *time.Time       `json:"valid_until"`
	Items       []QuoteItemInput `json:"items"`
	CreatedBy   *uuid.UUID       `json:"created_by"`
}

type UpdateQuoteRequest struct {
	TenantID    uuid.UUID        `json:"tenant_id"`
	ID          uuid.UUID        `json:"id"`
	Number      string           `json:"number"`
	ContactID   *uuid.UUID       `json:"contact_id"`
	ContactName string           `json:"contact_name"`
	DealID      *uuid.UUID       `json:"deal_id"`
	Status      string           `json:"status"`
	ValidUntil  *time.Time       `json:"valid_until"`
	Items       []QuoteItemInput `json:"items"`
}

type QuoteService interface {
	Create(ctx context.Context, req CreateQuoteRequest) (*models.Quote, error)
	Get(ctx context.Context, tenantID, id uuid.UUID) (*models.Quote, error)
	Update(ctx context.Context, req UpdateQuoteRequest) (*models.Quote, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Quote, error)
}

type quoteService struct {
	db          Store
	guard       tenantGuard
	quoteRepo   repositories.QuoteRepository
	contactRepo repositories.ContactRepository
	dealRepo    repositories.DealRepository
	subs        SubscriptionService
}

func NewQuoteService(db Store, quoteRepo repositories.QuoteRepository,
	contactRepo repositories.ContactRepository, dealRepo repositories.DealRepository,
	tenantRepo repositories.TenantRepository, subs SubscriptionService, cache TenantCache) QuoteService {
	return &quoteService{
		db:          db,
		guard:       tenantGuard{tenantRepo: tenantRepo, cache: cache},
		quoteRepo:   quoteRepo,
		contactRepo: contactRepo,
		dealRepo:    dealRepo,
		subs:        subs,
	}
}

func (s *quoteService) checkRefs(ctx context.Context, tenantID uuid.UUID, contactID, dealID *uuid.UUID) error {
	if contactID != nil {
		if _, err := s.contactRepo.GetByID(ctx, tenantID, *contactID); err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return fmt.Errorf("contact %s: %w", contactID, common.ErrTenantMismatch)
			}
			return err
		}
	}
	if dealID != nil {
		if _, err := s.dealRepo.GetByID(ctx, tenantID, *dealID); err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return fmt.Errorf("deal %s: %w", dealID, common.ErrTenantMismatch)
			}
			return err
		}
	}
	return nil
}

// buildItems validates item inputs and totals them; the quote amount is
// always derived from its items, never taken from the caller.
func buildItems(quoteID uuid.UUID, inputs []QuoteItemInput) ([]*models.QuoteItem, decimal.Decimal, error) {
	amount := decimal.Zero
	items := make([]*models.QuoteItem, 0, len(inputs))
	for _, in := range inputs {
		if err := common.ValidateRequiredString(in.Name, "item name"); err != nil {
			return nil, decimal.Zero, err
		}
		if in.Qty < 1 {
			return nil, decimal.Zero, fmt.Errorf("item %q: qty must be at least 1", in.Name)
		}
		if in.Price.IsNegative() {
			return nil, decimal.Zero, fmt.Errorf("item %q: price cannot be negative", in.Name)
		}
		items = append(items, &models.QuoteItem{
			ID:        uuid.New(),
			QuoteID:   quoteID,
			ProductID: in.ProductID,
			Name:      in.Name,
			Qty:       in.Qty,
			Price:     in.Price,
		})
		amount = amount.Add(in.Price.Mul(decimal.NewFromInt(int64(in.Qty))))
	}
	return items, amount, nil
}

func (s *quoteService) Create(ctx context.Context, req CreateQuoteRequest) (*models.Quote, error) {
	if _, err := s.guard.requireLiveTenant(ctx, req.TenantID); err != nil {
		return nil, err
	}
	if err := s.subs.RequireFeature(ctx, req.TenantID, plans.FeatureQuotes); err != nil {
		return nil, err
	}
	if err := common.ValidateRequiredString(req.Number, "number"); err != nil {
		return nil, err
	}
	if req.Status == "" {
		req.Status = "draft"
	}
	if err := common.ValidateStatus(req.Status, common.QuoteStatuses, "quote status"); err != nil {
		return nil, err
	}
	if err := s.checkRefs(ctx, req.TenantID, req.ContactID, req.DealID); err != nil {
		return nil, err
	}

	quoteID := uuid.New()
	items, amount, err := buildItems(quoteID, req.Items)
	if err != nil {
		return nil, err
	}
	quote := &models.Quote{
		ID:          quoteID,
		TenantID:    req.TenantID,
		Number:      req.Number,
		ContactID:   req.ContactID,
		ContactName: req.ContactName,
		DealID:      req.DealID,
		Amount:      amount,
		Status:      req.Status,
		ValidUntil:  req.ValidUntil,
		Items:       items,
		CreatedBy:   req.CreatedBy,
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	quotes := repositories.NewQuoteRepo(tx)
	if err := quotes.Create(ctx, quote); err != nil {
		return nil, err
	}
	if err := quotes.ReplaceItems(ctx, quoteID, items); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return quote, nil
}

func (s *quoteService) Get(ctx context.Context, tenantID, id uuid.UUID) (*models.Quote, error) {
	quote, err := s.quoteRepo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	items, err := s.quoteRepo.ListItems(ctx, id)
	if err != nil {
		return nil, err
	}
	quote.Items = items
	return quote, nil
}

// Update rewrites the quote and its full item set in one transaction.
func (s *quoteService) Update(ctx context.Context, req UpdateQuoteRequest) (*models.Quote, error) {
	if _, err := s.guard.requireLiveTenant(ctx, req.TenantID); err != nil {
		return nil, err
	}
	if err := s.subs.RequireFeature(ctx, req.TenantID, plans.FeatureQuotes); err != nil {
		return nil, err
	}
	if err := common.ValidateRequiredString(req.Number, "number"); err != nil {
		return nil, err
	}
	if err := common.ValidateStatus(req.Status, common.QuoteStatuses, "quote status"); err != nil {
		return nil, err
	}
	if err := s.checkRefs(ctx, req.TenantID, req.ContactID, req.DealID); err != nil {
		return nil, err
	}

	quote, err := s.quoteRepo.GetByID(ctx, req.TenantID, req.ID)
	if err != nil {
		return nil, err
	}
	items, amount, err := buildItems(quote.ID, req.Items)
	if err != nil {
		return nil, err
	}
	quote.Number = req.Number
	quote.ContactID = req.ContactID
	quote.ContactName = req.ContactName
	quote.DealID = req.DealID
	quote.Amount = amount
	quote.Status = req.Status
	quote.ValidUntil = req.ValidUntil
	quote.Items = items

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	quotes := repositories.NewQuoteRepo(tx)
	if err := quotes.Update(ctx, quote); err != nil {
		return nil, err
	}
	if err := quotes.ReplaceItems(ctx, quote.ID, items); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return quote, nil
}

// Delete removes the quote and its items (store cascade); invoices minted
// from it keep their rows with quote_id cleared.
func (s *quoteService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	if _, err := s.guard.requireLiveTenant(ctx, tenantID); err != nil {
		return err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := repositories.NewInvoiceRepo(tx).DetachQuote(ctx, tenantID, id); err != nil {
		return err
	}
	if err := repositories.NewQuoteRepo(tx).Delete(ctx, tenantID, id); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *quoteService) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Quote, error) {
	limit, offset = common.ValidatePaginationParams(limit, offset)
	return s.quoteRepo.List(ctx, tenantID, limit, offset)
}
