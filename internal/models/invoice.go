package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Invoice.Total must always equal Amount + Tax; the writer recomputes it on
// every create and update rather than trusting input.
type Invoice struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	TenantID  uuid.UUID       `json:"tenant_id" db:"tenant_id"`
	Number    string          `json:"number" db:"number"`
	ContactID *uuid.UUID      `json:"contact_id" db:"contact_id"`
	Client    string          `json:"client" db:"client"`
	Amount    decimal.Decimal `json:"amount" db:"amount"`
	Tax       decimal.Decimal `json:"tax" db:"tax"`
	Total     decimal.Decimal `json:"total" db:"total"`
	DueDate   *time.Time      `json:"due_date" db:"due_date"`
	Status    string          `json:"status" db:"status"`
	QuoteID   *uuid.UUID      `json:"quote_id" db:"quote_id"`
	CreatedBy *uuid.UUID      `json:"created_by" db:"created_by"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`
}
