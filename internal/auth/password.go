package auth

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost matches the work factor used across the platform.
const DefaultBcryptCost = 12

const symbolSet = "!@#$%^&*()_+-=[]{};':\"\\|,.<>?"

// HashPassword hashes a plaintext password with the configured cost.
func HashPassword(password string, cost int) (string, error) {
	if cost <= 0 {
		cost = DefaultBcryptCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePassword verifies a password against its hashed value. bcrypt's
// comparison is constant-time; a mismatch returns false, never an error.
func ComparePassword(hashed, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)) == nil
}

// StrengthResult carries every violated rule so callers can report them
// all at once rather than one per attempt.
type StrengthResult struct {
	OK     bool
	Errors []string
}

// StrengthPolicy holds tunable password rule thresholds.
type StrengthPolicy struct {
	MinLength int
}

// DefaultStrengthPolicy mirrors the platform-wide minimum.
func DefaultStrengthPolicy() StrengthPolicy {
	return StrengthPolicy{MinLength: 8}
}

// ValidateStrength evaluates all rules independently; rules are not
// short-circuited so the result lists every violation.
func (p StrengthPolicy) ValidateStrength(password string) StrengthResult {
	var errs []string

	if len(password) < p.MinLength {
		errs = append(errs, fmt.Sprintf("password must be at least %d characters long", p.MinLength))
	}

	var hasLower, hasUpper, hasDigit, hasSymbol bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		case strings.ContainsRune(symbolSet, r):
			hasSymbol = true
		}
	}

	if !hasLower {
		errs = append(errs, "password must contain at least one lowercase letter")
	}
	if !hasUpper {
		errs = append(errs, "password must contain at least one uppercase letter")
	}
	if !hasDigit {
		errs = append(errs, "password must contain at least one number")
	}
	if !hasSymbol {
		errs = append(errs, "password must contain at least one special character")
	}

	return StrengthResult{OK: len(errs) == 0, Errors: errs}
}
