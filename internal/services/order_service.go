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

type CreateOrderRequest struct {
	TenantID     uuid.UUID       `json:"tenant_id"`
	Number       string          `json:"number"`
	ContactID    *uuid.UUID      `json:"contact_id"`
	Client       string          `json:"client"`
	Items        int             `json:"items"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	Tax          decimal.Decimal `json:"tax"`
	Status       string          `json:"status"`
	OrderDate    *time.Time      `json:"order_date"`
	DeliveryDate *time.Time      `json:"delivery_date"`
	CreatedBy    *uuid.UUID      `json:"created_by"`
}

type UpdateOrderRequest struct {
	TenantID     uuid.UUID       `json:"tenant_id"`
	ID           uuid.UUID       `json:"id"`
	Number       string          `json:"number"`
	ContactID    *uuid.UUID      `json:"contact_id"`
	Client       string          `json:"client"`
	Items        int             `json:"items"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	Tax          decimal.Decimal `json:"tax"`
	Status       string          `json:"status"`
	OrderDate    *time.Time      `json:"order_date"`
	DeliveryDate *time.Time      `json:"delivery_date"`
}

type OrderService interface {
	Create(ctx context.Context, req CreateOrderRequest) (*models.Order, error)
	Get(ctx context.Context, tenantID, id uuid.UUID) (*models.Order, error)
	Update(ctx context.Context, req UpdateOrderRequest) (*models.Order, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Order, error)
}

type orderService struct {
	guard       tenantGuard
	orderRepo   repositories.OrderRepository
	contactRepo repositories.ContactRepository
	subs        SubscriptionService
}

func NewOrderService(orderRepo repositories.OrderRepository,
	contactRepo repositories.ContactRepository,
	tenantRepo repositories.TenantRepository, subs SubscriptionService, cache TenantCache) OrderService {
	return &orderService{
		guard:       tenantGuard{tenantRepo: tenantRepo, cache: cache},
		orderRepo:   orderRepo,
		contactRepo: contactRepo,
		subs:        subs,
	}
}

func (s *orderService) checkContactRef(ctx context.Context, tenantID uuid.UUID, contactID *uuid.UUID) error {
	if contactID == nil {
		return nil
	}
	if _, err := s.contactRepo.GetByID(ctx, tenantID, *contactID); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return fmt.Errorf("contact %s: %w", contactID, common.ErrTenantMismatch)
		}
		return err
	}
	return nil
}

func validateOrderFields(number string, items int, subtotal, tax decimal.Decimal) error {
	if err := common.ValidateRequiredString(number, "number"); err != nil {
		return err
	}
	if items < 0 {
		return fmt.Errorf("items cannot be negative")
	}
	if subtotal.IsNegative() {
		return fmt.Errorf("subtotal cannot be negative")
	}
	if tax.IsNegative() {
		return fmt.Errorf("tax cannot be negative")
	}
	return nil
}

func (s *orderService) Create(ctx context.Context, req CreateOrderRequest) (*models.Order, error) {
	if _, err := s.guard.requireLiveTenant(ctx, req.TenantID); err != nil {
		return nil, err
	}
	if err := s.subs.RequireFeature(ctx, req.TenantID, plans.FeatureOrders); err != nil {
		return nil, err
	}
	if req.Status == "" {
		req.Status = "pending"
	}
	if err := common.ValidateStatus(req.Status, common.OrderStatuses, "order status"); err != nil {
		return nil, err
	}
	if err := validateOrderFields(req.Number, req.Items, req.Subtotal, req.Tax); err != nil {
		return nil, err
	}
	if err := s.checkContactRef(ctx, req.TenantID, req.ContactID); err != nil {
		return nil, err
	}

	order := &models.Order{
		ID:           uuid.New(),
		TenantID:     req.TenantID,
		Number:       req.Number,
		ContactID:    req.ContactID,
		Client:       req.Client,
		Items:        req.Items,
		Subtotal:     req.Subtotal,
		Tax:          req.Tax,
		Total:        req.Subtotal.Add(req.Tax),
		Status:       req.Status,
		OrderDate:    req.OrderDate,
		DeliveryDate: req.DeliveryDate,
		CreatedBy:    req.CreatedBy,
	}
	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *orderService) Get(ctx context.Context, tenantID, id uuid.UUID) (*models.Order, error) {
	return s.orderRepo.GetByID(ctx, tenantID, id)
}

func (s *orderService) Update(ctx context.Context, req UpdateOrderRequest) (*models.Order, error) {
	if _, err := s.guard.requireLiveTenant(ctx, req.TenantID); err != nil {
		return nil, err
	}
	if err := s.subs.RequireFeature(ctx, req.TenantID, plans.FeatureOrders); err != nil {
		return nil, err
	}
	if err := common.ValidateStatus(req.Status, common.OrderStatuses, "order status"); err != nil {
		return nil, err
	}
	if err := validateOrderFields(req.Number, req.Items, req.Subtotal, req.Tax); err != nil {
		return nil, err
	}
	if err := s.checkContactRef(ctx, req.TenantID, req.ContactID); err != nil {
		return nil, err
	}

	order, err := s.orderRepo.GetByID(ctx, req.TenantID, req.ID)
	if err != nil {
		return nil, err
	}
	order.Number = req.Number
	order.ContactID = req.ContactID
	order.Client = req.Client
	order.Items = req.Items
	order.Subtotal = req.Subtotal
	order.Tax = req.Tax
	order.Total = req.Subtotal.Add(req.Tax)
	order.Status = req.Status
	order.OrderDate = req.OrderDate
	order.DeliveryDate = req.DeliveryDate
	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *orderService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	if _, err := s.guard.requireLiveTenant(ctx, tenantID); err != nil {
		return err
	}
	return s.orderRepo.Delete(ctx, tenantID, id)
}

func (s *orderService) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Order, error) {
	limit, offset = common.ValidatePaginationParams(limit, offset)
	return s.orderRepo.List(ctx, tenantID, limit, offset)
}
