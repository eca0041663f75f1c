package utils

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// JWTClaims custom claims for JWT
type JWTClaims struct {
	UserID    uuid.UUID `json:"user_id"`
	ClinicID  uuid.UUID `json:"clinic_id"`
	Role      string    `json:"role"`
	TokenType string    `json:"token_type"` // "access" or "refresh"
	jwt.RegisteredClaims
}

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// JWTUtil provides JWT generation and validation
type JWTUtil struct {
	secretKey  string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewJWTUtil creates a new JWTUtil
func NewJWTUtil(secretKey string, accessTTL, refreshTTL time.Duration) *JWTUtil {
	return &JWTUtil{secretKey: secretKey, accessTTL: accessTTL, refreshTTL: refreshTTL}
}

func (ju *JWTUtil) generate(userID, clinicID uuid.UUID, role, tokenType string, ttl time.Duration) (string, error) {
	claims := &JWTClaims{
		UserID:    userID,
		ClinicID:  clinicID,
		Role:      role,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Subject:   userID.String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(ju.secretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// GenerateAccessToken generates a short-lived access token
func (ju *JWTUtil) GenerateAccessToken(userID, clinicID uuid.UUID, role string) (string, error) {
	return ju.generate(userID, clinicID, role, TokenTypeAccess, ju.accessTTL)
}

// GenerateRefreshToken generates a long-lived refresh token
func (ju *JWTUtil) GenerateRefreshToken(userID, clinicID uuid.UUID, role string) (string, error) {
	return ju.generate(userID, clinicID, role, TokenTypeRefresh, ju.refreshTTL)
}

// RefreshTTL exposes the refresh token lifetime for cookie expiry
func (ju *JWTUtil) RefreshTTL() time.Duration { return ju.refreshTTL }

// ValidateToken validates a JWT token of the expected type
func (ju *JWTUtil) ValidateToken(tokenString, tokenType string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(ju.secretKey), nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if claims.TokenType != tokenType {
		return nil, fmt.Errorf("unexpected token type %q", claims.TokenType)
	}
	return claims, nil
}
