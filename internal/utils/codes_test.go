package utils

import (
	"testing"
	"unicode"

	"github.com/stretchr/testify/assert"
)

func TestGenerateResetCode(t *testing.T) {
	code := GenerateResetCode()

	assert.Len(t, code, 6)
	for _, r := range code {
		assert.True(t, unicode.IsDigit(r), "reset code must be digits only, got %q", code)
	}
}

func TestGenerateResetCode_Varies(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		seen[GenerateResetCode()] = true
	}
	// 20 draws from a million values colliding every time would mean
	// the generator is broken
	assert.Greater(t, len(seen), 1)
}

func TestGenerateTempPassword(t *testing.T) {
	password := GenerateTempPassword(12)

	assert.Len(t, password, 12)

	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	assert.True(t, hasUpper)
	assert.True(t, hasLower)
	assert.True(t, hasDigit)
}
