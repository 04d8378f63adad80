package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Quote struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	TenantID    uuid.UUID       `json:"tenant_id" db:"tenant_id"`
	Number      string          `json:"number" db:"number"`
	ContactID   *uuid.UUID      `json:"contact_id" db:"contact_id"`
	ContactName string          `json:"contact_name" db:"contact_name"`
	DealID      *uuid.UUID      `json:"deal_id" db:"deal_id"`
	Amount      decimal.Decimal `json:"amount" db:"amount"`
	Status      string          `json:"status" db:"status"`
	ValidUntil  *time.Time      `json:"valid_until" db:"valid_until"`
	Items       []*QuoteItem    `json:"items" db:"-"`
	CreatedBy   *uuid.UUID      `json:"created_by" db:"created_by"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

// QuoteItem is exclusively owned by its quote: no independent lifecycle,
// deleted when the quote is deleted. ProductID is a soft reference.
type QuoteItem struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	QuoteID   uuid.UUID       `json:"quote_id" db:"quote_id"`
	ProductID *uuid.UUID      `json:"product_id" db:"product_id"`
	Name      string          `json:"name" db:"name"`
	Qty       int             `json:"qty" db:"qty"`
	Price     decimal.Decimal `json:"price" db:"price"`
}
