// Package router assembles the gin engine: middleware chain plus all
// API route groups.
package router

import (
	"github.com/finbooks/backend/internal/infrastructure/auth"
	"github.com/finbooks/backend/internal/infrastructure/logger"
	"github.com/finbooks/backend/internal/interfaces/http/handler"
	"github.com/finbooks/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const defaultMaxBodyBytes = 1 << 20 // 1MB; uploads bypass the API via presigned URLs

// Handlers bundles every endpoint handler the router mounts
type Handlers struct {
	System      *handler.SystemHandler
	Documents   *handler.DocumentHandler
	Payments    *handler.PaymentHandler
	Allocations *handler.AllocationHandler
	Periods     *handler.PeriodHandler
	Parties     *handler.PartyHandler
	FundsSource *handler.FundsSourceHandler
	Attachments *handler.AttachmentHandler
	Print       *handler.PrintHandler
}

// Config carries router-level settings
type Config struct {
	ServiceName  string
	AllowOrigins []string
	MaxBodyBytes int64
	Verifier     *auth.TokenVerifier
	Revocations  auth.RevocationList
	Logger       *zap.Logger
}

// New builds the gin engine with the full middleware chain and all routes
func New(cfg Config, h Handlers) *gin.Engine {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = defaultMaxBodyBytes
	}

	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{AllowOrigins: cfg.AllowOrigins}))
	engine.Use(middleware.BodyLimit(maxBody))
	engine.Use(middleware.Tracing(cfg.ServiceName))
	engine.Use(middleware.Authenticate(middleware.AuthConfig{
		Verifier:    cfg.Verifier,
		Revocations: cfg.Revocations,
		SkipPaths:   []string{"/health", "/ready"},
		Logger:      log,
	}))

	engine.GET("/health", h.System.Health)
	engine.GET("/ready", h.System.Ready)

	v1 := engine.Group("/api/v1")

	documents := v1.Group("/documents")
	{
		documents.POST("", h.Documents.Create)
		documents.GET("", h.Documents.List)
		documents.GET("/:id", h.Documents.Get)
		documents.POST("/:id/cancel", h.Documents.Cancel)
		documents.POST("/:id/reverse", h.Documents.Reverse)
		if h.Print != nil {
			documents.GET("/:id/pdf", h.Print.Document)
		}
	}

	payments := v1.Group("/payments")
	{
		payments.POST("", h.Payments.Record)
		payments.GET("", h.Payments.List)
		payments.GET("/:id", h.Payments.Get)
		if h.Print != nil {
			payments.GET("/:id/receipt", h.Print.PaymentReceipt)
		}
	}

	allocations := v1.Group("/allocations")
	{
		allocations.POST("", h.Allocations.Allocate)
		allocations.POST("/:id/cancel", h.Allocations.Cancel)
	}

	periods := v1.Group("/periods")
	{
		periods.GET("", h.Periods.List)
		periods.POST("/lock", h.Periods.Lock)
		periods.POST("/unlock", h.Periods.Unlock)
	}

	parties := v1.Group("/parties")
	{
		parties.POST("", h.Parties.Create)
		parties.GET("", h.Parties.List)
		parties.GET("/:id", h.Parties.Get)
		parties.PUT("/:id", h.Parties.Update)
		parties.POST("/:id/activate", h.Parties.Activate)
		parties.POST("/:id/deactivate", h.Parties.Deactivate)
		parties.GET("/:id/balance", h.Parties.BalanceSummary)
		parties.GET("/:id/outstanding-documents", h.Documents.Outstanding)
	}

	cashboxes := v1.Group("/cashboxes")
	{
		cashboxes.POST("", h.FundsSource.CreateCashbox)
		cashboxes.GET("", h.FundsSource.ListCashboxes)
		cashboxes.GET("/:id", h.FundsSource.GetCashbox)
		cashboxes.POST("/:id/deactivate", h.FundsSource.DeactivateCashbox)
	}

	bankAccounts := v1.Group("/bank-accounts")
	{
		bankAccounts.POST("", h.FundsSource.CreateBankAccount)
		bankAccounts.GET("", h.FundsSource.ListBankAccounts)
		bankAccounts.GET("/:id", h.FundsSource.GetBankAccount)
		bankAccounts.POST("/:id/deactivate", h.FundsSource.DeactivateBankAccount)
	}

	attachments := v1.Group("/attachments")
	{
		attachments.POST("/initiate", h.Attachments.InitiateUpload)
		attachments.GET("", h.Attachments.List)
		attachments.GET("/:id", h.Attachments.Get)
		attachments.POST("/:id/confirm", h.Attachments.ConfirmUpload)
		attachments.DELETE("/:id", h.Attachments.Delete)
	}

	return engine
}
