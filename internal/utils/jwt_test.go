package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestJWTUtil_GenerateAccessToken(t *testing.T) {
	jwtUtil := NewJWTUtil("secret", time.Hour, 24*time.Hour)
	userID := uuid.New()
	clinicID := uuid.New()
	role := "admin"

	tokenString, err := jwtUtil.GenerateAccessToken(userID, clinicID, role)

	assert.NoError(t, err)
	assert.NotEmpty(t, tokenString)

	// Validate the token to ensure it's well-formed and contains correct claims
	claims, err := jwtUtil.ValidateToken(tokenString, TokenTypeAccess)
	assert.NoError(t, err)
	assert.NotNil(t, claims)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, clinicID, claims.ClinicID)
	assert.Equal(t, role, claims.Role)
	assert.Equal(t, TokenTypeAccess, claims.TokenType)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestJWTUtil_RefreshTokenNotValidAsAccess(t *testing.T) {
	jwtUtil := NewJWTUtil("secret", time.Hour, 24*time.Hour)

	tokenString, err := jwtUtil.GenerateRefreshToken(uuid.New(), uuid.New(), "owner")
	assert.NoError(t, err)

	// A refresh token must never pass where an access token is expected
	_, err = jwtUtil.ValidateToken(tokenString, TokenTypeAccess)
	assert.Error(t, err)

	claims, err := jwtUtil.ValidateToken(tokenString, TokenTypeRefresh)
	assert.NoError(t, err)
	assert.Equal(t, TokenTypeRefresh, claims.TokenType)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestJWTUtil_ValidateToken_InvalidToken(t *testing.T) {
	jwtUtil := NewJWTUtil("secret", time.Hour, 24*time.Hour)

	_, err := jwtUtil.ValidateToken("invalid.token.string", TokenTypeAccess)
	assert.Error(t, err)
}

func TestJWTUtil_ValidateToken_ExpiredToken(t *testing.T) {
	jwtUtil := NewJWTUtil("secret", -time.Hour, 24*time.Hour) // Token expires in the past

	tokenString, _ := jwtUtil.GenerateAccessToken(uuid.New(), uuid.New(), "nurse")

	_, err := jwtUtil.ValidateToken(tokenString, TokenTypeAccess)
	assert.Error(t, err)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestJWTUtil_ValidateToken_WrongSecret(t *testing.T) {
	jwtUtil1 := NewJWTUtil("secret1", time.Hour, 24*time.Hour)
	jwtUtil2 := NewJWTUtil("secret2", time.Hour, 24*time.Hour)

	tokenString, _ := jwtUtil1.GenerateAccessToken(uuid.New(), uuid.New(), "admin")

	_, err := jwtUtil2.ValidateToken(tokenString, TokenTypeAccess)
	assert.Error(t, err)
}

func TestJWTUtil_ValidateToken_InvalidSigningMethod(t *testing.T) {
	jwtUtil := NewJWTUtil("secret", time.Hour, 24*time.Hour)
	// Create a token with a non-HMAC signing method
	claims := &JWTClaims{
		UserID:    uuid.New(),
		ClinicID:  uuid.New(),
		Role:      "admin",
		TokenType: TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodNone, claims)
	tokenString, _ := token.SignedString(jwt.UnsafeAllowNoneSignatureType)

	_, err := jwtUtil.ValidateToken(tokenString, TokenTypeAccess)
	assert.Error(t, err)
}
