// Package auth verifies bearer tokens issued by the external identity
// provider. This service never issues tokens itself; it only checks the
// signature and extracts the actor and company claims the ledger needs.
package auth

import (
	"errors"
	"time"

	"github.com/finbooks/backend/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Verification errors
var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrTokenNotYetValid = errors.New("token is not yet valid")
	ErrInvalidClaims    = errors.New("invalid token claims")
	ErrWrongIssuer      = errors.New("token issuer mismatch")
	ErrTokenTooLong     = errors.New("token lifetime exceeds policy")
	ErrMissingCompanyID = errors.New("missing company_id claim")
	ErrMissingUserID    = errors.New("missing user_id claim")
	ErrTokenRevoked     = errors.New("token has been revoked")
)

// Claims are the custom JWT claims the identity provider puts on its
// access tokens.
type Claims struct {
	jwt.RegisteredClaims
	CompanyID string   `json:"company_id"`
	UserID    string   `json:"user_id"`
	Username  string   `json:"username,omitempty"`
	Roles     []string `json:"roles,omitempty"`
}

// GetCompanyUUID parses the company ID claim
func (c *Claims) GetCompanyUUID() (uuid.UUID, error) {
	return uuid.Parse(c.CompanyID)
}

// GetUserUUID parses the user ID claim
func (c *Claims) GetUserUUID() (uuid.UUID, error) {
	return uuid.Parse(c.UserID)
}

// HasRole reports whether the claims carry the given role
func (c *Claims) HasRole(role string) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// TokenVerifier validates HS256 access tokens against the shared secret.
type TokenVerifier struct {
	secret []byte
	issuer string
	// maxLifetime rejects tokens whose exp-iat window exceeds the
	// configured access token expiration. Zero disables the check.
	maxLifetime time.Duration
}

// NewTokenVerifier creates a verifier from the JWT configuration
func NewTokenVerifier(cfg config.JWTConfig) *TokenVerifier {
	return &TokenVerifier{
		secret:      []byte(cfg.Secret),
		issuer:      cfg.Issuer,
		maxLifetime: cfg.AccessTokenExpiration,
	}
}

// Verify checks the token signature and standard time claims, then
// validates that the company and user claims are present.
func (v *TokenVerifier) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return v.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenNotValidYet):
			return nil, ErrTokenNotYetValid
		default:
			return nil, ErrInvalidToken
		}
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaims
	}

	if v.issuer != "" && claims.Issuer != v.issuer {
		return nil, ErrWrongIssuer
	}
	if v.maxLifetime > 0 && claims.ExpiresAt != nil && claims.IssuedAt != nil {
		if claims.ExpiresAt.Sub(claims.IssuedAt.Time) > v.maxLifetime {
			return nil, ErrTokenTooLong
		}
	}
	if claims.CompanyID == "" {
		return nil, ErrMissingCompanyID
	}
	if claims.UserID == "" {
		return nil, ErrMissingUserID
	}

	return claims, nil
}
