package domain

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "compliance-panel/pkg/domain-errors"
)

// TestParseUUID_Invariants checks the trust-boundary rule that IDs are valid,
// non-empty, non-nil UUIDs.
func TestParseUUID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParsePolicyID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParsePolicyID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParsePolicyID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts valid UUID", func(t *testing.T) {
		validUUID := uuid.New()
		id, err := ParsePolicyID(validUUID.String())
		require.NoError(t, err)
		assert.Equal(t, PolicyID(validUUID), id)
	})
}

func TestParseID_HostileInput(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"SQL injection attempt", "'; DROP TABLE policies;--", true},
		{"Path traversal", "../../../etc/passwd", true},
		{"Null byte injection", "550e8400\x00-e29b-41d4-a716-446655440000", true},
		{"Oversized input", strings.Repeat("a", 1000), true},
		{"Whitespace only", "   ", true},
		{"Uppercase valid UUID", "550E8400-E29B-41D4-A716-446655440000", false},
		{"Valid UUID lowercase", "550e8400-e29b-41d4-a716-446655440000", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseWidgetID(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestAllIDTypes_ConsistentBehavior(t *testing.T) {
	validUUID := uuid.New().String()

	t.Run("all accept valid UUID", func(t *testing.T) {
		_, errPolicy := ParsePolicyID(validUUID)
		_, errWidget := ParseWidgetID(validUUID)
		_, errClient := ParseClientID(validUUID)
		require.NoError(t, errPolicy)
		require.NoError(t, errWidget)
		require.NoError(t, errClient)
	})

	for _, input := range []string{"", "invalid", uuid.Nil.String()} {
		t.Run("all reject: "+input, func(t *testing.T) {
			_, errPolicy := ParsePolicyID(input)
			_, errWidget := ParseWidgetID(input)
			_, errClient := ParseClientID(input)
			require.Error(t, errPolicy)
			require.Error(t, errWidget)
			require.Error(t, errClient)
		})
	}
}

func TestIDs_JSONAndSQL(t *testing.T) {
	id := NewClientID()

	b, err := json.Marshal(struct {
		ID ClientID `json:"id"`
	}{ID: id})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"`+id.String()+`"}`, string(b))

	var decoded struct {
		ID ClientID `json:"id"`
	}
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, id, decoded.ID)

	v, err := id.Value()
	require.NoError(t, err)
	var scanned ClientID
	require.NoError(t, scanned.Scan(v))
	assert.Equal(t, id, scanned)
	assert.False(t, scanned.IsNil())
}
