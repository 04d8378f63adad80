package models

import (
	"time"

	"github.com/google/uuid"
)

type Tenant struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Domain       string    `json:"domain" db:"domain"`
	Plan         string    `json:"plan" db:"plan"`
	Status       string    `json:"status" db:"status"`
	LogoURL      string    `json:"logo_url" db:"logo_url"`
	PrimaryColor string    `json:"primary_color" db:"primary_color"`
	DarkMode     bool      `json:"dark_mode" db:"dark_mode"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}
