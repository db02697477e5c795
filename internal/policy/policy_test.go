package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"compliance-panel/internal/policy/store"
)

func TestNewStoreWithoutDatabaseIsInMemory(t *testing.T) {
	_, ok := NewStore(nil).(*store.InMemory)
	assert.True(t, ok)
}
