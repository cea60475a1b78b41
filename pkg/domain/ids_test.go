package domain

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "fleetdesk/pkg/domain-errors"
)

// TestParseID_Invariants validates the parsing invariant:
// "IDs must be valid, non-empty, non-nil UUIDs".
func TestParseID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseDriverID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParseDriverID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParseOrgID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts valid UUID", func(t *testing.T) {
		valid := uuid.New()
		id, err := ParseDriverID(valid.String())
		require.NoError(t, err)
		assert.Equal(t, DriverID(valid), id)
	})
}

// TestParseID_TrustBoundary validates that attack-shaped input is rejected
// before it can reach a store.
func TestParseID_TrustBoundary(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"SQL injection attempt", "'; DROP TABLE driver_rse_counters;--"},
		{"path traversal", "../../../etc/passwd"},
		{"null byte injection", "550e8400\x00-e29b-41d4-a716-446655440000"},
		{"oversized input", strings.Repeat("a", 1000)},
		{"zero-width space", "550e8400​-e29b-41d4-a716-446655440000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseLicenseCategoryID(tt.input)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
		})
	}
}

func TestParseRegulatoryCategory(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    RegulatoryCategory
		wantErr bool
	}{
		{"canonical heavy", "HEAVY", RegulatoryHeavy, false},
		{"canonical light", "LIGHT", RegulatoryLight, false},
		{"lower case", "heavy", RegulatoryHeavy, false},
		{"surrounding spaces", "  light ", RegulatoryLight, false},
		{"unknown", "MEDIUM", "", true},
		{"empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRegulatoryCategory(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("only heavy is regulated", func(t *testing.T) {
		assert.True(t, RegulatoryHeavy.IsRegulated())
		assert.False(t, RegulatoryLight.IsRegulated())
	})
}
