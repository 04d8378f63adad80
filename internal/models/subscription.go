package models

import (
	"time"

	"github.com/google/uuid"
)

// Subscription is stored 1:N per tenant; the business rule is one active
// subscription per tenant, with the newest row winning on reads.
type Subscription struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	TenantID   uuid.UUID  `json:"tenant_id" db:"tenant_id"`
	Plan       string     `json:"plan" db:"plan"`
	Status     string     `json:"status" db:"status"`
	MaxUsers   int        `json:"max_users" db:"max_users"`
	ExpiryDate *time.Time `json:"expiry_date" db:"expiry_date"`
	Features   []string   `json:"features" db:"features"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at" db:"updated_at"`
}

// Expired reports whether the subscription's expiry date has passed.
func (s *Subscription) Expired(now time.Time) bool {
	return s.ExpiryDate != nil && s.ExpiryDate.Before(now)
}

// HasFeature reports whether the feature key is part of the subscription.
func (s *Subscription) HasFeature(feature string) bool {
	for _, f := range s.Features {
		if f == feature {
			return true
		}
	}
	return false
}
