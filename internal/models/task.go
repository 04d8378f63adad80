package models

import (
	"time"

	"github.com/google/uuid"
)

// Task.RelatedTo is a loosely-typed polymorphic reference to any known entity
// type, stored as "entityType:id" and validated through the EntityRef
// registry. AssignedTo is a soft user reference.
type Task struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	TenantID    uuid.UUID  `json:"tenant_id" db:"tenant_id"`
	Title       string     `json:"title" db:"title"`
	Description string     `json:"description" db:"description"`
	DueDate     *time.Time `json:"due_date" db:"due_date"`
	Priority    string     `json:"priority" db:"priority"`
	Status      string     `json:"status" db:"status"`
	AssignedTo  *uuid.UUID `json:"assigned_to" db:"assigned_to"`
	RelatedTo   *EntityRef `json:"related_to" db:"related_to"`
	CreatedBy   *uuid.UUID `json:"created_by" db:"created_by"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}
