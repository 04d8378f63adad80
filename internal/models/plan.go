package models

import "github.com/shopspring/decimal"

// Plan is global reference data with no tenant scope. The fixed set is
// basic/pro/enterprise, seeded once and never duplicated on re-seed.
type Plan struct {
	Plan          string          `json:"plan" db:"plan"`
	Label         string          `json:"label" db:"label"`
	Subtitle      string          `json:"subtitle" db:"subtitle"`
	MaxUsers      int             `json:"max_users" db:"max_users"`
	MonthlyPrice  decimal.Decimal `json:"monthly_price" db:"monthly_price"`
	Features      []string        `json:"features" db:"features"`
	FeatureLabels []string        `json:"feature_labels" db:"feature_labels"`
}
