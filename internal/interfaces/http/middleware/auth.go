package middleware

import (
	"net/http"
	"strings"

	"github.com/finbooks/backend/internal/infrastructure/auth"
	"github.com/finbooks/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Context keys set by the auth middleware
const (
	ClaimsKey    = "auth_claims"
	CompanyIDKey = "auth_company_id"
	ActorIDKey   = "auth_actor_id"
)

// AuthConfig holds configuration for the authentication middleware
type AuthConfig struct {
	Verifier *auth.TokenVerifier
	// Revocations is optional; when set, revoked tokens are rejected.
	Revocations auth.RevocationList
	// SkipPaths bypass authentication (health probes etc.)
	SkipPaths []string
	Logger    *zap.Logger
}

// Authenticate verifies the bearer token and stores the company and actor
// IDs on the gin context for handlers to read.
func Authenticate(cfg AuthConfig) gin.HandlerFunc {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, skip := range cfg.SkipPaths {
			if path == skip {
				c.Next()
				return
			}
		}

		header := c.GetHeader("Authorization")
		if header == "" {
			abortUnauthorized(c, "Missing authorization header")
			return
		}
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			abortUnauthorized(c, "Invalid authorization header format")
			return
		}

		claims, err := cfg.Verifier.Verify(token)
		if err != nil {
			abortUnauthorized(c, err.Error())
			return
		}

		if cfg.Revocations != nil {
			if rejected := checkRevocation(c, cfg, claims, logger); rejected {
				return
			}
		}

		companyID, err := claims.GetCompanyUUID()
		if err != nil {
			abortUnauthorized(c, "Malformed company claim")
			return
		}
		actorID, err := claims.GetUserUUID()
		if err != nil {
			abortUnauthorized(c, "Malformed user claim")
			return
		}

		c.Set(ClaimsKey, claims)
		c.Set(CompanyIDKey, companyID)
		c.Set(ActorIDKey, actorID)
		c.Next()
	}
}

// checkRevocation rejects revoked tokens. Revocation-store outages fail
// open: availability wins over immediate revocation.
func checkRevocation(c *gin.Context, cfg AuthConfig, claims *auth.Claims, logger *zap.Logger) bool {
	ctx := c.Request.Context()

	if claims.ID != "" {
		revoked, err := cfg.Revocations.IsRevoked(ctx, claims.ID)
		if err != nil {
			logger.Error("failed to check token revocation", zap.String("jti", claims.ID), zap.Error(err))
		} else if revoked {
			abortUnauthorized(c, "Token has been revoked")
			return true
		}
	}

	if claims.IssuedAt != nil {
		revoked, err := cfg.Revocations.IsUserRevoked(ctx, claims.UserID, claims.IssuedAt.Time)
		if err != nil {
			logger.Error("failed to check user revocation", zap.String("user_id", claims.UserID), zap.Error(err))
		} else if revoked {
			abortUnauthorized(c, "Token has been revoked")
			return true
		}
	}
	return false
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized,
		dto.NewErrorResponse(dto.ErrCodeUnauthorized, message))
}

// GetCompanyID returns the authenticated company ID from the context
func GetCompanyID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(CompanyIDKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// GetActorID returns the authenticated user ID from the context
func GetActorID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(ActorIDKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// GetClaims returns the full verified claims from the context
func GetClaims(c *gin.Context) (*auth.Claims, bool) {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok
}
