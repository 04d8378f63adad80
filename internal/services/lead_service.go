package services

import (
	"context"
	"fmt"

	"funnelcrm/internal/common"
	"funnelcrm/internal/models"
	"funnelcrm/internal/repositories"

	"github.com/google/uuid"
)

type CreateLeadRequest struct {
	TenantID  uuid.UUID  `json:"tenant_id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone"`
	Company   string     `json:"company"`
	Status    string     `json:"status"`
	Source    string     `json:"source"`
	Score     int        `json:"score"`
	CreatedBy *uuid.UUID `json:"created_by"`
}

type UpdateLeadRequest struct {
	TenantID uuid.UUID `json:"tenant_id"`
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Phone    string    `json:"phone"`
	Company  string    `json:"company"`
	Status   string    `json:"status"`
	Source   string    `json:"source"`
	Score    int       `json:"score"`
}

type LeadService interface {
	Create(ctx context.Context, req CreateLeadRequest) (*models.Lead, error)
	Get(ctx context.Context, tenantID, id uuid.UUID) (*models.Lead, error)
	Update(ctx context.Context, req UpdateLeadRequest) (*models.Lead, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Lead, error)
	ListByStatus(ctx context.Context, tenantID uuid.UUID, status string, limit, offset int) ([]*models.Lead, error)
}

type leadService struct {
	guard    tenantGuard
	leadRepo repositories.LeadRepository
}

func NewLeadService(leadRepo repositories.LeadRepository,
	tenantRepo repositories.TenantRepository, cache TenantCache) LeadService {
	return &leadService{
		guard:    tenantGuard{tenantRepo: tenantRepo, cache: cache},
		leadRepo: leadRepo,
	}
}

func validateLeadFields(name, status string, score int) error {
	if err := common.ValidateRequiredString(name, "name"); err != nil {
		return err
	}
	if err := common.ValidateStatus(status, common.LeadStatuses, "lead status"); err != nil {
		return err
	}
	if score < 0 || score > 100 {
		return fmt.Errorf("score must be between 0 and 100, got %d", score)
	}
	return nil
}

func (s *leadService) Create(ctx context.Context, req CreateLeadRequest) (*models.Lead, error) {
	if _, err := s.guard.requireLiveTenant(ctx, req.TenantID); err != nil {
		return nil, err
	}
	if req.Status == "" {
		req.Status = "new"
	}
	if req.Source == "" {
		req.Source = "other"
	}
	if err := validateLeadFields(req.Name, req.Status, req.Score); err != nil {
		return nil, err
	}

	lead := &models.Lead{
		ID:        uuid.New(),
		TenantID:  req.TenantID,
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Company:   req.Company,
		Status:    req.Status,
		Source:    req.Source,
		Score:     req.Score,
		CreatedBy: req.CreatedBy,
	}
	if err := s.leadRepo.Create(ctx, lead); err != nil {
		return nil, err
	}
	return lead, nil
}

func (s *leadService) Get(ctx context.Context, tenantID, id uuid.UUID) (*models.Lead, error) {
	return s.leadRepo.GetByID(ctx, tenantID, id)
}

func (s *leadService) Update(ctx context.Context, req UpdateLeadRequest) (*models.Lead, error) {
	if _, err := s.guard.requireLiveTenant(ctx, req.TenantID); err != nil {
		return nil, err
	}
	if err := validateLeadFields(req.Name, req.Status, req.Score); err != nil {
		return nil, err
	}
	lead, err := s.leadRepo.GetByID(ctx, req.TenantID, req.ID)
	if err != nil {
		return nil, err
	}
	lead.Name = req.Name
	lead.Email = req.Email
	lead.Phone = req.Phone
	lead.Company = req.Company
	lead.Status = req.Status
	lead.Source = req.Source
	lead.Score = req.Score
	if err := s.leadRepo.Update(ctx, lead); err != nil {
		return nil, err
	}
	return lead, nil
}

func (s *leadService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	if _, err := s.guard.requireLiveTenant(ctx, tenantID); err != nil {
		return err
	}
	return s.leadRepo.Delete(ctx, tenantID, id)
}

func (s *leadService) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Lead, error) {
	limit, offset = common.ValidatePaginationParams(limit, offset)
	return s.leadRepo.List(ctx, tenantID, limit, offset)
}

func (s *leadService) ListByStatus(ctx context.Context, tenantID uuid.UUID, status string, limit, offset int) ([]*models.Lead, error) {
	if err := common.ValidateStatus(status, common.LeadStatuses, "lead status"); err != nil {
		return nil, err
	}
	limit, offset = common.ValidatePaginationParams(limit, offset)
	return s.leadRepo.ListByStatus(ctx, tenantID, status, limit, offset)
}
