package models

import (
	"time"

	"github.com/google/uuid"
)

// PasswordResetToken is single-use: Used flips true on redemption and expired
// or used tokens are rejected. Rows cascade when the owning user is deleted.
type PasswordResetToken struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Token     string    `json:"-" db:"token"` // Never return in JSON
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
	Used      bool      `json:"used" db:"used"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
