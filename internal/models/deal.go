package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Deal struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	TenantID    uuid.UUID       `json:"tenant_id" db:"tenant_id"`
	Title       string          `json:"title" db:"title"`
	ContactID   *uuid.UUID      `json:"contact_id" db:"contact_id"`
	AccountID   *uuid.UUID      `json:"account_id" db:"account_id"`
	Stage       string          `json:"stage" db:"stage"`
	Value       decimal.Decimal `json:"value" db:"value"`
	Margin      decimal.Decimal `json:"margin" db:"margin"`
	Cost        decimal.Decimal `json:"cost" db:"cost"`
	Revenue     decimal.Decimal `json:"revenue" db:"revenue"`
	Probability int             `json:"probability" db:"probability"`
	CloseDate   *time.Time      `json:"close_date" db:"close_date"`
	Status      string          `json:"status" db:"status"`
	CreatedBy   *uuid.UUID      `json:"created_by" db:"created_by"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}
