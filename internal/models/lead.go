package models

import (
	"time"

	"github.com/google/uuid"
)

type Lead struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	TenantID  uuid.UUID  `json:"tenant_id" db:"tenant_id"`
	Name      string     `json:"name" db:"name"`
	Email     string     `json:"email" db:"email"`
	Phone     string     `json:"phone" db:"phone"`
	Company   string     `json:"company" db:"company"`
	Status    string     `json:"status" db:"status"`
	Source    string     `json:"source" db:"source"`
	Score     int        `json:"score" db:"score"`
	CreatedBy *uuid.UUID `json:"created_by" db:"created_by"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}
