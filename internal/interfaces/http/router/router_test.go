package router

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/finbooks/backend/internal/infrastructure/auth"
	"github.com/finbooks/backend/internal/infrastructure/config"
	"github.com/finbooks/backend/internal/interfaces/http/handler"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type fakePinger struct {
	err error
}

func (p *fakePinger) Ping() error { return p.err }

func newTestRouter(db *fakePinger) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return New(Config{
		ServiceName: "finbooks-test",
		Verifier: auth.NewTokenVerifier(config.JWTConfig{
			Secret: "router-test-secret",
			Issuer: "finbooks-idp",
		}),
	}, Handlers{
		System:      handler.NewSystemHandler(db, "test"),
		Documents:   handler.NewDocumentHandler(nil, nil),
		Payments:    handler.NewPaymentHandler(nil),
		Allocations: handler.NewAllocationHandler(nil),
		Periods:     handler.NewPeriodHandler(nil),
		Parties:     handler.NewPartyHandler(nil),
		FundsSource: handler.NewFundsSourceHandler(nil),
		Attachments: handler.NewAttachmentHandler(nil),
	})
}

func TestRouter_HealthProbes(t *testing.T) {
	t.Run("health is open", func(t *testing.T) {
		router := newTestRouter(&fakePinger{})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "ok")
	})

	t.Run("ready reports database state", func(t *testing.T) {
		router := newTestRouter(&fakePinger{err: errors.New("connection refused")})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestRouter_RequiresAuthentication(t *testing.T) {
	router := newTestRouter(&fakePinger{})

	paths := []string{
		"/api/v1/documents",
		"/api/v1/payments",
		"/api/v1/parties",
		"/api/v1/periods",
		"/api/v1/cashboxes",
		"/api/v1/bank-accounts",
		"/api/v1/attachments",
	}
	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Contains(t, rec.Body.String(), "UNAUTHORIZED")
		})
	}
}

func TestRouter_SetsRequestID(t *testing.T) {
	router := newTestRouter(&fakePinger{})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}
