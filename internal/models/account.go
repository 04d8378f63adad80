package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Account's owner and creator are soft references: no foreign key, preserved
// even when the referenced user is gone.
type Account struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	TenantID  uuid.UUID       `json:"tenant_id" db:"tenant_id"`
	Name      string          `json:"name" db:"name"`
	Industry  string          `json:"industry" db:"industry"`
	Website   string          `json:"website" db:"website"`
	Phone     string          `json:"phone" db:"phone"`
	Email     string          `json:"email" db:"email"`
	Revenue   decimal.Decimal `json:"revenue" db:"revenue"`
	Employees int             `json:"employees" db:"employees"`
	Status    string          `json:"status" db:"status"`
	OwnerID   *uuid.UUID      `json:"owner_id" db:"owner_id"`
	CreatedBy *uuid.UUID      `json:"created_by" db:"created_by"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`
}
