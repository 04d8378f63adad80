package models

import (
	"time"

	"github.com/google/uuid"
)

// Contact optionally belongs to an Account; deleting the account nulls
// AccountID, the contact itself survives.
type Contact struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	TenantID  uuid.UUID  `json:"tenant_id" db:"tenant_id"`
	FirstName string     `json:"first_name" db:"first_name"`
	LastName  string     `json:"last_name" db:"last_name"`
	Email     string     `json:"email" db:"email"`
	Phone     string     `json:"phone" db:"phone"`
	Company   string     `json:"company" db:"company"`
	AccountID *uuid.UUID `json:"account_id" db:"account_id"`
	Status    string     `json:"status" db:"status"`
	CreatedBy *uuid.UUID `json:"created_by" db:"created_by"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}
