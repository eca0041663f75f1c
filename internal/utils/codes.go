package utils

import (
	"crypto/rand"
	"math/big"
)

const (
	digits       = "0123456789"
	letters      = "abcdefghijklmnopqrstuvwxyz"
	upperLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

func randomFrom(charset string, length int) string {
	b := make([]byte, length)
	for i := range b {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			panic(err)
		}
		b[i] = charset[n.Int64()]
	}
	return string(b)
}

// GenerateResetCode returns a 6-digit numeric password-reset code.
func GenerateResetCode() string {
	return randomFrom(digits, 6)
}

// GenerateTempPassword returns a temporary password for staff
// invitations, containing at least one uppercase letter, one
// lowercase letter and one digit.
func GenerateTempPassword(length int) string {
	if length < 3 {
		length = 10
	}
	for {
		pw := randomFrom(letters+upperLetters+digits, length)
		var hasUpper, hasLower, hasDigit bool
		for _, c := range pw {
			switch {
			case c >= 'A' && c <= 'Z':
				hasUpper = true
			case c >= 'a' && c <= 'z':
				hasLower = true
			case c >= '0' && c <= '9':
				hasDigit = true
			}
		}
		if hasUpper && hasLower && hasDigit {
			return pw
		}
	}
}
