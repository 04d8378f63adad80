package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestParseEntityRef_Roundtrip(t *testing.T) {
	id := uuid.New()
	ref, err := ParseEntityRef("deal:" + id.String())
	assert.NoError(t, err)
	assert.Equal(t, EntityDeal, ref.Type)
	assert.Equal(t, id, ref.ID)
	assert.Equal(t, "deal:"+id.String(), ref.String())
}

func TestParseEntityRef_UnknownType(t *testing.T) {
	_, err := ParseEntityRef("widget:" + uuid.New().String())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown entity type")
}

func TestParseEntityRef_MissingSeparator(t *testing.T) {
	_, err := ParseEntityRef("justastring")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "entityType:id")
}

func TestParseEntityRef_BadID(t *testing.T) {
	_, err := ParseEntityRef("deal:not-a-uuid")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid id")
}

func TestEntityRefValidate_NilID(t *testing.T) {
	ref := &EntityRef{Type: EntityLead}
	assert.Error(t, ref.Validate())
}

func TestEntityRefValidate_AllRegisteredTypes(t *testing.T) {
	for _, typ := range []string{EntityLead, EntityAccount, EntityContact, EntityDeal,
		EntityQuote, EntityInvoice, EntityOrder, EntityTask, EntityCampaign, EntityProduct, EntityUser} {
		ref := &EntityRef{Type: typ, ID: uuid.New()}
		assert.NoError(t, ref.Validate())
	}
}
