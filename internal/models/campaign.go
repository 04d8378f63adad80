package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Campaign counts carry the business invariant Converted <= Leads, enforced
// by the writer.
type Campaign struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	TenantID  uuid.UUID       `json:"tenant_id" db:"tenant_id"`
	Name      string          `json:"name" db:"name"`
	Type      string          `json:"type" db:"type"`
	Status    string          `json:"status" db:"status"`
	Leads     int             `json:"leads" db:"leads"`
	Converted int             `json:"converted" db:"converted"`
	Budget    decimal.Decimal `json:"budget" db:"budget"`
	Spent     decimal.Decimal `json:"spent" db:"spent"`
	StartDate *time.Time      `json:"start_date" db:"start_date"`
	EndDate   *time.Time      `json:"end_date" db:"end_date"`
	CreatedBy *uuid.UUID      `json:"created_by" db:"created_by"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`
}
