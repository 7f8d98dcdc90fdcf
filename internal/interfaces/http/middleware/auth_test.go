package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/finbooks/backend/internal/infrastructure/auth"
	"github.com/finbooks/backend/internal/infrastructure/config"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret = "middleware-test-secret"
	testIssuer = "finbooks-idp"
)

var (
	testCompanyID = uuid.MustParse("aaaaaaaa-0000-0000-0000-000000000001")
	testUserID    = uuid.MustParse("aaaaaaaa-0000-0000-0000-000000000002")
)

func testVerifier() *auth.TokenVerifier {
	return auth.NewTokenVerifier(config.JWTConfig{
		Secret: testSecret,
		Issuer: testIssuer,
	})
}

func signTestToken(t *testing.T, mutate func(*auth.Claims)) string {
	t.Helper()
	now := time.Now()
	claims := &auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    testIssuer,
			Subject:   testUserID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(30 * time.Minute)),
		},
		CompanyID: testCompanyID.String(),
		UserID:    testUserID.String(),
		Username:  "bookkeeper",
	}
	if mutate != nil {
		mutate(claims)
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func authTestRouter(cfg AuthConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(Authenticate(cfg))
	engine.GET("/protected", func(c *gin.Context) {
		companyID, ok := GetCompanyID(c)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "no company"})
			return
		}
		actorID, _ := GetActorID(c)
		c.JSON(http.StatusOK, gin.H{
			"company_id": companyID.String(),
			"actor_id":   actorID.String(),
		})
	})
	engine.GET("/health", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return engine
}

func TestAuthenticate(t *testing.T) {
	baseCfg := AuthConfig{
		Verifier:  testVerifier(),
		SkipPaths: []string{"/health"},
	}

	t.Run("valid token sets identity on context", func(t *testing.T) {
		router := authTestRouter(baseCfg)
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+signTestToken(t, nil))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), testCompanyID.String())
		assert.Contains(t, rec.Body.String(), testUserID.String())
	})

	t.Run("missing header is rejected", func(t *testing.T) {
		router := authTestRouter(baseCfg)
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "UNAUTHORIZED")
	})

	t.Run("malformed header is rejected", func(t *testing.T) {
		router := authTestRouter(baseCfg)
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Token abc")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("expired token is rejected", func(t *testing.T) {
		router := authTestRouter(baseCfg)
		token := signTestToken(t, func(c *auth.Claims) {
			c.IssuedAt = jwt.NewNumericDate(time.Now().Add(-2 * time.Hour))
			c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-1 * time.Hour))
		})
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("skip path bypasses authentication", func(t *testing.T) {
		router := authTestRouter(baseCfg)
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("revoked token is rejected", func(t *testing.T) {
		revocations := auth.NewInMemoryRevocationList()
		jti := uuid.NewString()
		require.NoError(t, revocations.Revoke(context.Background(), jti, time.Hour))

		router := authTestRouter(AuthConfig{
			Verifier:    testVerifier(),
			Revocations: revocations,
		})
		token := signTestToken(t, func(c *auth.Claims) { c.ID = jti })
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("user-wide revocation rejects earlier tokens", func(t *testing.T) {
		revocations := auth.NewInMemoryRevocationList()
		require.NoError(t, revocations.RevokeUser(context.Background(), testUserID.String(), time.Hour))

		router := authTestRouter(AuthConfig{
			Verifier:    testVerifier(),
			Revocations: revocations,
		})
		token := signTestToken(t, func(c *auth.Claims) {
			c.IssuedAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
		})
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
