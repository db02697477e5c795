package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAuditEvent_Category(t *testing.T) {
	assert.Equal(t, CategoryCompliance, EventPolicyPublished.Category())
	assert.Equal(t, CategoryCompliance, EventClientDeleted.Category())
	assert.Equal(t, CategoryOperations, EventPolicyUpdated.Category())
	assert.Equal(t, CategoryOperations, EventJurisdictionResolved.Category())
	assert.Equal(t, CategoryOperations, AuditEvent("unknown").Category())
}
