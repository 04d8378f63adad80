package common

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Closed enum sets. These value sets are part of the on-disk contract (they
// back CHECK constraints in the schema) and must not drift.
var (
	TenantPlans          = []string{"basic", "pro", "enterprise"}
	TenantStatuses       = []string{"active", "suspended", "cancelled"}
	SubscriptionStatuses = []string{"active", "warning", "expired", "cancelled"}
	UserRoles            = []string{"ADMIN", "MANAGER", "SALES"}
	UserStatuses         = []string{"active", "inactive"}
	LeadStatuses         = []string{"new", "contacted", "qualified", "disqualified"}
	DealStages           = []string{"discovery", "proposal", "negotiation", "closed_won", "closed_lost"}
	DealStatuses         = []string{"active", "won", "lost"}
	QuoteStatuses        = []string{"draft", "sent", "active", "done", "expired"}
	InvoiceStatuses      = []string{"draft", "sent", "paid", "pending", "overdue"}
	OrderStatuses        = []string{"pending", "in_progress", "done", "cancelled"}
	TaskPriorities       = []string{"low", "medium", "high"}
	TaskStatuses         = []string{"open", "in_progress", "done"}
	CampaignTypes        = []string{"Email", "Social", "Event", "Referral", "Other"}
	CampaignStatuses     = []string{"draft", "active", "done", "paused"}
)

func inSet(value string, set []string) bool {
	for _, v := range set {
		if v == value {
			return true
		}
	}
	return false
}

// ValidateStatus checks a status value against its closed set. Invalid values
// fail, they are never coerced.
func ValidateStatus(value string, set []string, fieldName string) error {
	if !inSet(value, set) {
		return fmt.Errorf("%w: %s must be one of %s, got %q",
			ErrInvalidStatus, fieldName, strings.Join(set, ", "), value)
	}
	return nil
}

// ValidateEnum is ValidateStatus for non-status closed sets (roles, stages,
// priorities, campaign types).
func ValidateEnum(value string, set []string, fieldName string) error {
	if !inSet(value, set) {
		return fmt.Errorf("%w: %s must be one of %s, got %q",
			ErrInvalidEnum, fieldName, strings.Join(set, ", "), value)
	}
	return nil
}

// ValidateRequiredString validates required string fields.
func ValidateRequiredString(value, fieldName string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required", fieldName)
	}
	return nil
}

// ValidateUUID parses and validates a UUID string parameter.
func ValidateUUID(idStr, fieldName string) (uuid.UUID, error) {
	idStr = strings.TrimSpace(idStr)
	if idStr == "" {
		return uuid.Nil, fmt.Errorf("%s is required", fieldName)
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s is not a valid UUID: %v", fieldName, err)
	}
	return id, nil
}

// ValidatePaginationParams clamps pagination to safe bounds.
func ValidatePaginationParams(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 1000 {
		limit = 1000
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// SafeString safely dereferences an optional string.
func SafeString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
