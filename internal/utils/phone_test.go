package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"local nine digit mobile", "677123456", "+237677123456"},
		{"country code without plus", "237677123456", "+237677123456"},
		{"already normalized", "+237677123456", "+237677123456"},
		{"spaces and dashes", "6 77-12-34-56", "+237677123456"},
		{"dotted local format", "677.12.34.56", "+237677123456"},
		{"empty string", "", ""},
		{"foreign number keeps digits", "+33612345678", "+33612345678"},
		{"unknown shape gets plus", "12345", "+12345"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizePhone(tt.input))
		})
	}
}

func TestNormalizePhone_Idempotent(t *testing.T) {
	inputs := []string{"677123456", "237677123456", "+237677123456", "+33612345678", ""}
	for _, in := range inputs {
		once := NormalizePhone(in)
		assert.Equal(t, once, NormalizePhone(once), "normalizing %q twice changed the result", in)
	}
}
