package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndComparePassword(t *testing.T) {
	hash, err := HashPassword("Abcdef1!", bcrypt.MinCost)
	require.NoError(t, err)
	require.NotEqual(t, "Abcdef1!", hash)

	assert.True(t, ComparePassword(hash, "Abcdef1!"))
	assert.False(t, ComparePassword(hash, "abcdef1!"))
	assert.False(t, ComparePassword(hash, ""))
}

func TestComparePasswordMalformedHash(t *testing.T) {
	assert.False(t, ComparePassword("not-a-bcrypt-hash", "whatever"))
}

func TestValidateStrength(t *testing.T) {
	policy := DefaultStrengthPolicy()

	tests := []struct {
		name      string
		password  string
		wantOK    bool
		wantCount int
	}{
		{"all rules satisfied", "Abcdef1!", true, 0},
		{"short misses most rules", "short", false, 4},
		{"lowercase only", "password", false, 3},
		{"missing symbol", "Abcdefg1", false, 1},
		{"missing digit", "Abcdefg!", false, 1},
		{"missing uppercase", "abcdef1!", false, 1},
		{"empty", "", false, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := policy.ValidateStrength(tt.password)
			assert.Equal(t, tt.wantOK, result.OK)
			assert.Len(t, result.Errors, tt.wantCount)
		})
	}
}

func TestValidateStrengthReportsAllViolations(t *testing.T) {
	result := DefaultStrengthPolicy().ValidateStrength("password")
	require.False(t, result.OK)

	// Every violated rule is reported at once, not just the first.
	assert.Contains(t, result.Errors, "password must contain at least one uppercase letter")
	assert.Contains(t, result.Errors, "password must contain at least one number")
	assert.Contains(t, result.Errors, "password must contain at least one special character")
}

func TestValidateStrengthCustomMinLength(t *testing.T) {
	policy := StrengthPolicy{MinLength: 12}
	result := policy.ValidateStrength("Abcdef1!")
	require.False(t, result.OK)
	assert.Len(t, result.Errors, 1)
}
