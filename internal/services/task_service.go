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
)

type CreateTaskRequest struct {
	TenantID    uuid.UUID         `json:"tenant_id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	DueDate     *time.Time        `json:"due_date"`
	Priority    string            `json:"priority"`
	Status      string            `json:"status"`
	AssignedTo  *uuid.UUID        `json:"assigned_to"`
	RelatedTo   *models.EntityRef `json:"related_to"`
	CreatedBy   *uuid.UUID        `json:"created_by"`
}

type UpdateTaskRequest struct {
	TenantID    uuid.UUID         `json:"tenant_id"`
	ID          uuid.UUID         `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	DueDate     *time.Time        `json:"due_date"`
	Priority    string            `json:"priority"`
	Status      string            `json:"status"`
	AssignedTo  *uuid.UUID        `json:"assigned_to"`
	RelatedTo   *models.EntityRef `json:"related_to"`
}

type TaskService interface {
	Create(ctx context.Context, req CreateTaskRequest) (*models.Task, error)
	Get(ctx context.Context, tenantID, id uuid.UUID) (*models.Task, error)
	Update(ctx context.Context, req UpdateTaskRequest) (*models.Task, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Task, error)
	ListByAssignee(ctx context.Context, tenantID, userID uuid.UUID, limit, offset int) ([]*models.Task, error)
}

type taskService struct {
	guard    tenantGuard
	taskRepo repositories.TaskRepository
	userRepo repositories.UserRepository
}

func NewTaskService(taskRepo repositories.TaskRepository, userRepo repositories.UserRepository,
	tenantRepo repositories.TenantRepository, cache TenantCache) TaskService {
	return &taskService{
		guard:    tenantGuard{tenantRepo: tenantRepo, cache: cache},
		taskRepo: taskRepo,
		userRepo: userRepo,
	}
}

// checkAssignee validates the assignee is a user of the same tenant. The
// related-to reference stays loose: its type tag is checked against the
// registry, the target row is not required to exist.
func (s *taskService) checkAssignee(ctx context.Context, tenantID uuid.UUID, userID *uuid.UUID) error {
	if userID == nil {
		return nil
	}
	if _, err := s.userRepo.GetByID(ctx, tenantID, *userID); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return fmt.Errorf("assignee %s: %w", userID, common.ErrTenantMismatch)
		}
		return err
	}
	return nil
}

func validateTaskFields(title, priority, status string, relatedTo *models.EntityRef) error {
	if err := common.ValidateRequiredString(title, "title"); err != nil {
		return err
	}
	if err := common.ValidateEnum(priority, common.TaskPriorities, "priority"); err != nil {
		return err
	}
	if err := common.ValidateStatus(status, common.TaskStatuses, "task status"); err != nil {
		return err
	}
	if relatedTo != nil {
		if err := relatedTo.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (s *taskService) Create(ctx context.Context, req CreateTaskRequest) (*models.Task, error) {
	if _, err := s.guard.requireLiveTenant(ctx, req.TenantID); err != nil {
		return nil, err
	}
	if req.Priority == "" {
		req.Priority = "medium"
	}
	if req.Status == "" {
		req.Status = "open"
	}
	if err := validateTaskFields(req.Title, req.Priority, req.Status, req.RelatedTo); err != nil {
		return nil, err
	}
	if err := s.checkAssignee(ctx, req.TenantID, req.AssignedTo); err != nil {
		return nil, err
	}

	task := &models.Task{
		ID:          uuid.New(),
		TenantID:    req.TenantID,
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		Priority:    req.Priority,
		Status:      req.Status,
		AssignedTo:  req.AssignedTo,
		RelatedTo:   req.RelatedTo,
		CreatedBy:   req.CreatedBy,
	}
	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *taskService) Get(ctx context.Context, tenantID, id uuid.UUID) (*models.Task, error) {
	return s.taskRepo.GetByID(ctx, tenantID, id)
}

func (s *taskService) Update(ctx context.Context, req UpdateTaskRequest) (*models.Task, error) {
	if _, err := s.guard.requireLiveTenant(ctx, req.TenantID); err != nil {
		return nil, err
	}
	if err := validateTaskFields(req.Title, req.Priority, req.Status, req.RelatedTo); err != nil {
		return nil, err
	}
	if err := s.checkAssignee(ctx, req.TenantID, req.AssignedTo); err != nil {
		return nil, err
	}
	task, err := s.taskRepo.GetByID(ctx, req.TenantID, req.ID)
	if err != nil {
		return nil, err
	}
	task.Title = req.Title
	task.Description = req.Description
	task.DueDate = req.DueDate
	task.Priority = req.Priority
	task.Status = req.Status
	task.AssignedTo = req.AssignedTo
	task.RelatedTo = req.RelatedTo
	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *taskService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	if _, err := s.guard.requireLiveTenant(ctx, tenantID); err != nil {
		return err
	}
	return s.taskRepo.Delete(ctx, tenantID, id)
}

func (s *taskService) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Task, error) {
	limit, offset = common.ValidatePaginationParams(limit, offset)
	return s.taskRepo.List(ctx, tenantID, limit, offset)
}

func (s *taskService) ListByAssignee(ctx context.Context, tenantID, userID uuid.UUID, limit, offset int) ([]*models.Task, error) {
	limit, offset = common.ValidatePaginationParams(limit, offset)
	return s.taskRepo.ListByAssignee(ctx, tenantID, userID, limit, offset)
}
