package repositories

import (
	"context"
	"errors"

	"funnelcrm/internal/common"
	"funnelcrm/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type TaskRepository interface {
	Create(ctx context.Context, task *models.Task) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Task, error)
	Update(ctx context.Context, task *models.Task) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Task, error)
	ListByAssignee(ctx context.Context, tenantID, userID uuid.UUID, limit, offset int) ([]*models.Task, error)
}

type taskRepo struct {
	db Database
}

func NewTaskRepo(db Database) TaskRepository {
	return &taskRepo{db: db}
}

const taskColumns = "id, tenant_id, title, description, due_date, priority, status, assigned_to, related_to, created_by, created_at, updated_at"

// related_to is stored as "entityType:id" text; converted at the repository
// boundary so the model carries a typed reference.
func relatedToColumn(task *models.Task) *string {
	if task.RelatedTo == nil {
		return nil
	}
	s := task.RelatedTo.String()
	return &s
}

func scanTask(row pgx.Row) (*models.Task, error) {
	task := &models.Task{}
	var relatedTo *string
	err := row.Scan(&task.ID, &task.TenantID, &task.Title, &task.Description, &task.DueDate,
		&task.Priority, &task.Status, &task.AssignedTo, &relatedTo, &task.CreatedBy,
		&task.CreatedAt, &task.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if relatedTo != nil {
		ref, err := models.ParseEntityRef(*relatedTo)
		if err != nil {
			return nil, err
		}
		task.RelatedTo = ref
	}
	return task, nil
}

func (r *taskRepo) Create(ctx context.Context, task *models.Task) error {
	query := `
		INSERT INTO tasks (id, tenant_id, title, description, due_date, priority, status, assigned_to, related_to, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, task.ID, task.TenantID, task.Title, task.Description, task.DueDate,
		task.Priority, task.Status, task.AssignedTo, relatedToColumn(task), task.CreatedBy)
	return common.MapPgError(err)
}

func (r *taskRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1 AND tenant_id = $2`
	return scanTask(r.db.QueryRow(ctx, query, id, tenantID))
}

func (r *taskRepo) Update(ctx context.Context, task *models.Task) error {
	query := `
		UPDATE tasks
		SET title = $1, description = $2, due_date = $3, priority = $4, status = $5, assigned_to = $6, related_to = $7, updated_at = NOW()
		WHERE id = $8 AND tenant_id = $9
	`
	tag, err := r.db.Exec(ctx, query, task.Title, task.Description, task.DueDate, task.Priority,
		task.Status, task.AssignedTo, relatedToColumn(task), task.ID, task.TenantID)
	if err != nil {
		return common.MapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *taskRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	query := `DELETE FROM tasks WHERE id = $1 AND tenant_id = $2`
	tag, err := r.db.Exec(ctx, query, id, tenantID)
	if err != nil {
		return common.MapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *taskRepo) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE tenant_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	return r.queryTasks(ctx, query, tenantID, limit, offset)
}

func (r *taskRepo) ListByAssignee(ctx context.Context, tenantID, userID uuid.UUID, limit, offset int) ([]*models.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE tenant_id = $1 AND assigned_to = $2
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`
	return r.queryTasks(ctx, query, tenantID, userID, limit, offset)
}

func (r *taskRepo) queryTasks(ctx context.Context, query string, args ...any) ([]*models.Task, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []*models.Task
	for rows.Next() {
		task := &models.Task{}
		var relatedTo *string
		if err := rows.Scan(&task.ID, &task.TenantID, &task.Title, &task.Description, &task.DueDate,
			&task.Priority, &task.Status, &task.AssignedTo, &relatedTo, &task.CreatedBy,
			&task.CreatedAt, &task.UpdatedAt); err != nil {
			return nil, err
		}
		if relatedTo != nil {
			ref, err := models.ParseEntityRef(*relatedTo)
			if err != nil {
				return nil, err
			}
			task.RelatedTo = ref
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}
