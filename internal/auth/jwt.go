// Package auth issues and validates admin API tokens.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/heartmarshall/recobot/internal/domain"
)

// ScopeAdmin is the only scope the admin API accepts.
const ScopeAdmin = "catalogue:admin"

// JWTManager handles admin token generation and validation.
type JWTManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewJWTManager creates a new JWT manager.
// secret must be at least 32 characters for HS256 security.
func NewJWTManager(secret string, issuer string, ttl time.Duration) *JWTManager {
	return &JWTManager{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
	}
}

// adminClaims extends standard JWT claims with the granted scope.
type adminClaims struct {
	jwt.RegisteredClaims
	Scope string `json:"scope"`
}

// IssuedToken is a freshly signed admin token.
type IssuedToken struct {
	Token     string
	ID        string
	ExpiresAt time.Time
}

// GenerateAdminToken creates a signed HS256 JWT for subject with the admin
// scope and a random token id.
func (m *JWTManager) GenerateAdminToken(subject string) (IssuedToken, error) {
	if subject == "" {
		return IssuedToken{}, errors.New("subject is empty")
	}

	now := time.Now()
	expires := now.Add(m.ttl)
	id := uuid.NewString()

	claims := adminClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id,
			Subject:   subject,
			Issuer:    m.issuer,
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Scope: ScopeAdmin,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return IssuedToken{}, fmt.Errorf("sign token: %w", err)
	}

	return IssuedToken{Token: signed, ID: id, ExpiresAt: expires}, nil
}

// ValidateAdminToken parses and validates an admin token and returns its
// subject. All failures wrap domain.ErrUnauthorized.
func (m *JWTManager) ValidateAdminToken(tokenString string) (string, error) {
	if tokenString == "" {
		return "", fmt.Errorf("%w: token is empty", domain.ErrUnauthorized)
	}

	token, err := jwt.ParseWithClaims(tokenString, &adminClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithIssuer(m.issuer), jwt.WithExpirationRequired())
	if err != nil {
		return "", fmt.Errorf("%w: parse token: %w", domain.ErrUnauthorized, err)
	}

	claims, ok := token.Claims.(*adminClaims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("%w: invalid token claims", domain.ErrUnauthorized)
	}
	if claims.Scope != ScopeAdmin {
		return "", fmt.Errorf("%w: scope %q", domain.ErrUnauthorized, claims.Scope)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: missing subject", domain.ErrUnauthorized)
	}

	return claims.Subject, nil
}
