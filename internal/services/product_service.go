package services

import (
	"context"
	"fmt"

	"funnelcrm/internal/common"
	"funnelcrm/internal/models"
	"funnelcrm/internal/plans"
	"funnelcrm/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateProductRequest struct {
	TenantID    uuid.UUID       `json:"tenant_id"`
	Name        string          `json:"name"`
	SKU         string          `json:"sku"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Stock       int             `json:"stock"`
	CreatedBy   *uuid.UUID      `json:"created_by"`
}

type UpdateProductRequest struct {
	TenantID    uuid.UUID       `json:"tenant_id"`
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	SKU         string          `json:"sku"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Status      string          `json:"status"`
	Description string          `json:"description"`
	Stock       int             `json:"stock"`
}

type ProductService interface {
	Create(ctx context.Context, req CreateProductRequest) (*models.Product, error)
	Get(ctx context.Context, tenantID, id uuid.UUID) (*models.Product, error)
	Update(ctx context.Context, req UpdateProductRequest) (*models.Product, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Product, error)
}

type productService struct {
	guard       tenantGuard
	productRepo repositories.ProductRepository
	subs        SubscriptionService
}

func NewProductService(productRepo repositories.ProductRepository,
	tenantRepo repositories.TenantRepository, subs SubscriptionService, cache TenantCache) ProductService {
	return &productService{
		guard:       tenantGuard{tenantRepo: tenantRepo, cache: cache},
		productRepo: productRepo,
		subs:        subs,
	}
}

func validateProductFields(name string, price decimal.Decimal, stock int) error {
	if err := common.ValidateRequiredString(name, "name"); err != nil {
		return err
	}
	if price.IsNegative() {
		return fmt.Errorf("price cannot be negative")
	}
	if stock < 0 {
		return fmt.Errorf("stock cannot be negative")
	}
	return nil
}

func (s *productService) Create(ctx context.Context, req CreateProductRequest) (*models.Product, error) {
	if _, err := s.guard.requireLiveTenant(ctx, req.TenantID); err != nil {
		return nil, err
	}
	if err := s.subs.RequireFeature(ctx, req.TenantID, plans.FeatureProducts); err != nil {
		return nil, err
	}
	if err := validateProductFields(req.Name, req.Price, req.Stock); err != nil {
		return nil, err
	}

	product := &models.Product{
		ID:          uuid.New(),
		TenantID:    req.TenantID,
		Name:        req.Name,
		SKU:         req.SKU,
		Price:       req.Price,
		Category:    req.Category,
		Status:      "active",
		Description: req.Description,
		Stock:       req.Stock,
		CreatedBy:   req.CreatedBy,
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *productService) Get(ctx context.Context, tenantID, id uuid.UUID) (*models.Product, error) {
	return s.productRepo.GetByID(ctx, tenantID, id)
}

func (s *productService) Update(ctx context.Context, req UpdateProductRequest) (*models.Product, error) {
	if _, err := s.guard.requireLiveTenant(ctx, req.TenantID); err != nil {
		return nil, err
	}
	if err := s.subs.RequireFeature(ctx, req.TenantID, plans.FeatureProducts); err != nil {
		return nil, err
	}
	if err := validateProductFields(req.Name, req.Price, req.Stock); err != nil {
		return nil, err
	}
	product, err := s.productRepo.GetByID(ctx, req.TenantID, req.ID)
	if err != nil {
		return nil, err
	}
	product.Name = req.Name
	product.SKU = req.SKU
	product.Price = req.Price
	product.Category = req.Category
	if req.Status != "" {
		product.Status = req.Status
	}
	product.Description = req.Description
	product.Stock = req.Stock
	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *productService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	if _, err := s.guard.requireLiveTenant(ctx, tenantID); err != nil {
		return err
	}
	return s.productRepo.Delete(ctx, tenantID, id)
}

func (s *productService) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Product, error) {
	limit, offset = common.ValidatePaginationParams(limit, offset)
	return s.productRepo.List(ctx, tenantID, limit, offset)
}
