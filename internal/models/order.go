package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Order struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	TenantID     uuid.UUID       `json:"tenant_id" db:"tenant_id"`
	Number       string          `json:"number" db:"number"`
	ContactID    *uuid.UUID      `json:"contact_id" db:"contact_id"`
	Client       string          `json:"client" db:"client"`
	Items        int             `json:"items" db:"items"`
	Subtotal     decimal.Decimal `json:"subtotal" db:"subtotal"`
	Tax          decimal.Decimal `json:"tax" db:"tax"`
	Total        decimal.Decimal `json:"total" db:"total"`
	Status       string          `json:"status" db:"status"`
	OrderDate    *time.Time      `json:"order_date" db:"order_date"`
	DeliveryDate *time.Time      `json:"delivery_date" db:"delivery_date"`
	CreatedBy    *uuid.UUID      `json:"created_by" db:"created_by"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at" db:"updated_at"`
}
