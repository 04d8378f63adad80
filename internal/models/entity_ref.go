package models

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Entity type tags usable in polymorphic references.
const (
	EntityLead     = "lead"
	EntityAccount  = "account"
	EntityContact  = "contact"
	EntityDeal     = "deal"
	EntityQuote    = "quote"
	EntityInvoice  = "invoice"
	EntityOrder    = "order"
	EntityTask     = "task"
	EntityCampaign = "campaign"
	EntityProduct  = "product"
	EntityUser     = "user"
)

var knownEntityTypes = map[string]bool{
	EntityLead:     true,
	EntityAccount:  true,
	EntityContact:  true,
	EntityDeal:     true,
	EntityQuote:    true,
	EntityInvoice:  true,
	EntityOrder:    true,
	EntityTask:     true,
	EntityCampaign: true,
	EntityProduct:  true,
	EntityUser:     true,
}

// EntityRef is a tagged polymorphic reference {entityType, entityId}. It is
// persisted as "entityType:id" text and validated against the registry of
// known entity types instead of being a raw untyped string.
type EntityRef struct {
	Type string    `json:"type"`
	ID   uuid.UUID `json:"id"`
}

// ParseEntityRef parses the stored "entityType:id" form.
func ParseEntityRef(s string) (*EntityRef, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("entity reference must be entityType:id, got %q", s)
	}
	id, err := uuid.Parse(parts[1])
	if err != nil {
		return nil, fmt.Errorf("entity reference has invalid id: %v", err)
	}
	ref := &EntityRef{Type: parts[0], ID: id}
	if err := ref.Validate(); err != nil {
		return nil, err
	}
	return ref, nil
}

// Validate checks the type tag against the registry.
func (r *EntityRef) Validate() error {
	if !knownEntityTypes[r.Type] {
		return fmt.Errorf("unknown entity type %q in reference", r.Type)
	}
	if r.ID == uuid.Nil {
		return fmt.Errorf("entity reference requires a non-nil id")
	}
	return nil
}

func (r *EntityRef) String() string {
	return r.Type + ":" + r.ID.String()
}
