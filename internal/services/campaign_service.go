package services

import (
	"context"
	"fmt"
	"time"

	"funnelcrm/internal/common"
	"funnelcrm/internal/models"
	"funnelcrm/internal/plans"
	"funnelcrm/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateCampaignRequest struct {
	TenantID  uuid.UUID       `json:"tenant_id"`
	Name      string          `json:"name"`
	Type      string          `json:"type"`
	Status    string          `json:"status"`
	Leads     int             `json:"leads"`
	Converted int             `json:"converted"`
	Budget    decimal.Decimal `json:"budget"`
	Spent     decimal.Decimal `json:"spent"`
	StartDate *time.Time      `json:"start_date"`
	EndDate   *time.Time      `json:"end_date"`
	CreatedBy *uuid.UUID      `json:"created_by"`
}

type UpdateCampaignRequest struct {
	TenantID  uuid.UUID       `json:"tenant_id"`
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Type      string          `json:"type"`
	Status    string          `json:"status"`
	Leads     int             `json:"leads"`
	Converted int             `json:"converted"`
	Budget    decimal.Decimal `json:"budget"`
	Spent     decimal.Decimal `json:"spent"`
	StartDate *time.Time      `json:"start_date"`
	EndDate   *time.Time      `json:"end_date"`
}

type CampaignService interface {
	Create(ctx context.Context, req CreateCampaignRequest) (*models.Campaign, error)
	Get(ctx context.Context, tenantID, id uuid.UUID) (*models.Campaign, error)
	Update(ctx context.Context, req UpdateCampaignRequest) (*models.Campaign, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Campaign, error)
}

type campaignService struct {
	guard        tenantGuard
	campaignRepo repositories.CampaignRepository
	subs         SubscriptionService
}

func NewCampaignService(campaignRepo repositories.CampaignRepository,
	tenantRepo repositories.TenantRepository, subs SubscriptionService, cache TenantCache) CampaignService {
	return &campaignService{
		guard:        tenantGuard{tenantRepo: tenantRepo, cache: cache},
		campaignRepo: campaignRepo,
		subs:         subs,
	}
}

func validateCampaignFields(name, campaignType, status string, leads, converted int, budget, spent decimal.Decimal) error {
	if err := common.ValidateRequiredString(name, "name"); err != nil {
		return err
	}
	if err := common.ValidateEnum(campaignType, common.CampaignTypes, "campaign type"); err != nil {
		return err
	}
	if err := common.ValidateStatus(status, common.CampaignStatuses, "campaign status"); err != nil {
		return err
	}
	if leads < 0 || converted < 0 {
		return fmt.Errorf("lead counts cannot be negative")
	}
	if converted > leads {
		return fmt.Errorf("%w: converted (%d) cannot exceed leads (%d)",
			common.ErrConstraintViolation, converted, leads)
	}
	if budget.IsNegative() || spent.IsNegative() {
		return fmt.Errorf("budget and spent cannot be negative")
	}
	return nil
}

func (s *campaignService) Create(ctx context.Context, req CreateCampaignRequest) (*models.Campaign, error) {
	if _, err := s.guard.requireLiveTenant(ctx, req.TenantID); err != nil {
		return nil, err
	}
	if err := s.subs.RequireFeature(ctx, req.TenantID, plans.FeatureCampaigns); err != nil {
		return nil, err
	}
	if req.Type == "" {
		req.Type = "Email"
	}
	if req.Status == "" {
		req.Status = "draft"
	}
	if err := validateCampaignFields(req.Name, req.Type, req.Status,
		req.Leads, req.Converted, req.Budget, req.Spent); err != nil {
		return nil, err
	}

	campaign := &models.Campaign{
		ID:        uuid.New(),
		TenantID:  req.TenantID,
		Name:      req.Name,
		Type:      req.Type,
		Status:    req.Status,
		Leads:     req.Leads,
		Converted: req.Converted,
		Budget:    req.Budget,
		Spent:     req.Spent,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		CreatedBy: req.CreatedBy,
	}
	if err := s.campaignRepo.Create(ctx, campaign); err != nil {
		return nil, err
	}
	return campaign, nil
}

func (s *campaignService) Get(ctx context.Context, tenantID, id uuid.UUID) (*models.Campaign, error) {
	return s.campaignRepo.GetByID(ctx, tenantID, id)
}

func (s *campaignService) Update(ctx context.Context, req UpdateCampaignRequest) (*models.Campaign, error) {
	if _, err := s.guard.requireLiveTenant(ctx, req.TenantID); err != nil {
		return nil, err
	}
	if err := s.subs.RequireFeature(ctx, req.TenantID, plans.FeatureCampaigns); err != nil {
		return nil, err
	}
	if err := validateCampaignFields(req.Name, req.Type, req.Status,
		req.Leads, req.Converted, req.Budget, req.Spent); err != nil {
		return nil, err
	}
	campaign, err := s.campaignRepo.GetByID(ctx, req.TenantID, req.ID)
	if err != nil {
		return nil, err
	}
	campaign.Name = req.Name
	campaign.Type = req.Type
	campaign.Status = req.Status
	campaign.Leads = req.Leads
	campaign.Converted = req.Converted
	campaign.Budget = req.Budget
	campaign.Spent = req.Spent
	campaign.StartDate = req.StartDate
	campaign.EndDate = req.EndDate
	if err := s.campaignRepo.Update(ctx, campaign); err != nil {
		return nil, err
	}
	return campaign, nil
}

func (s *campaignService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	if _, err := s.guard.requireLiveTenant(ctx, tenantID); err != nil {
		return err
	}
	return s.campaignRepo.Delete(ctx, tenantID, id)
}

func (s *campaignService) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Campaign, error) {
	limit, offset = common.ValidatePaginationParams(limit, offset)
	return s.campaignRepo.List(ctx, tenantID, limit, offset)
}
