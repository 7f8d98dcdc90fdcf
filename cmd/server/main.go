package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appledger "github.com/finbooks/backend/internal/application/ledger"
	appparty "github.com/finbooks/backend/internal/application/party"
	"github.com/finbooks/backend/internal/infrastructure/auth"
	"github.com/finbooks/backend/internal/infrastructure/cache"
	"github.com/finbooks/backend/internal/infrastructure/config"
	"github.com/finbooks/backend/internal/infrastructure/event"
	"github.com/finbooks/backend/internal/infrastructure/logger"
	"github.com/finbooks/backend/internal/infrastructure/persistence"
	"github.com/finbooks/backend/internal/infrastructure/printing"
	"github.com/finbooks/backend/internal/infrastructure/storage"
	"github.com/finbooks/backend/internal/infrastructure/telemetry"
	"github.com/finbooks/backend/internal/interfaces/http/handler"
	"github.com/finbooks/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// version is stamped at build time via -ldflags
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting finbooks backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("version", version),
	)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Telemetry providers; no-ops when disabled
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}

	// Database with zap-backed GORM logging
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	if cfg.Telemetry.DBTraceEnabled {
		plugin := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
			Enabled:         true,
			LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
			SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		}, log)
		if err := plugin.RegisterOtelGorm(db.DB); err != nil {
			log.Warn("Failed to register database tracing", zap.Error(err))
		}
	}

	// Shared Redis client for the period lock cache and token revocations.
	// Without Redis the server degrades to in-process fallbacks.
	var redisClient *redis.Client
	if cfg.Redis.Host != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := redisClient.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			log.Warn("Redis unreachable, using in-process fallbacks", zap.Error(err))
			redisClient = nil
		}
	}

	var periodCache appledger.PeriodLockCache
	var revocations auth.RevocationList
	if redisClient != nil {
		periodCache = cache.NewRedisPeriodLockCacheWithClient(redisClient, "", 0)
		revocations = auth.NewRedisRevocationList(redisClient)
		log.Info("Redis connected")
	} else {
		periodCache = cache.NewInMemoryPeriodLockCache(10 * time.Minute)
		revocations = auth.NewInMemoryRevocationList()
	}

	// Repositories and transaction scope
	scope := persistence.NewGormTransactionScope(db.DB)
	partyRepo := persistence.NewGormPartyRepository(db.DB)
	documentRepo := persistence.NewGormDocumentRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	attachmentRepo := persistence.NewGormAttachmentRepository(db.DB)
	auditRepo := persistence.NewGormAuditRepository(db.DB)
	cashboxRepo := persistence.NewGormCashboxRepository(db.DB)
	bankAccountRepo := persistence.NewGormBankAccountRepository(db.DB)
	sequences := persistence.NewGormSequenceGenerator(db.DB)

	// Object storage for attachments
	var objectStorage appledger.ObjectStorageService
	if cfg.Storage.Bucket != "" {
		objectStorage, err = storage.NewS3ObjectStorage(&cfg.Storage)
		if err != nil {
			log.Fatal("Failed to initialize object storage", zap.Error(err))
		}
		log.Info("Object storage enabled", zap.String("bucket", cfg.Storage.Bucket))
	} else {
		objectStorage = storage.NewStubObjectStorage()
		log.Warn("Object storage not configured, attachment uploads are disabled")
	}

	// Event bus and ledger metrics. Domain events published by the
	// settlement services feed the business counters; balance gauges are
	// collected periodically from the documents table.
	eventBus := event.NewInMemoryEventBus(log)
	var ledgerMetrics *telemetry.LedgerMetrics
	if meterProvider.IsEnabled() {
		ledgerMetrics, err = telemetry.NewLedgerMetrics(telemetry.LedgerMetricsConfig{
			Meter:           meterProvider.Meter("finbooks"),
			Logger:          log,
			BalanceProvider: telemetry.NewGormBalanceMetricsProvider(db.DB),
		})
		if err != nil {
			log.Warn("Failed to initialize ledger metrics", zap.Error(err))
		} else {
			eventBus.Subscribe(event.NewLedgerMetricsHandler(ledgerMetrics))
			ledgerMetrics.StartPeriodicCollection(ctx, telemetry.NewGormCompanyProvider(db.DB), 5*time.Minute)
		}
	}

	// Application services
	obligationService := appledger.NewObligationService(scope, eventBus)
	paymentService := appledger.NewPaymentService(scope, eventBus)
	allocationService := appledger.NewAllocationService(scope, eventBus)
	reversalService := appledger.NewReversalService(scope, eventBus)
	periodService := appledger.NewPeriodService(scope, periodCache, eventBus)
	partyService := appparty.NewPartyService(partyRepo, documentRepo, auditRepo, sequences)
	fundsSourceService := appledger.NewFundsSourceService(cashboxRepo, bankAccountRepo, auditRepo)
	attachmentService := appledger.NewAttachmentService(attachmentRepo, documentRepo, paymentRepo, objectStorage)

	// PDF rendering for receipts and document printouts
	var printHandler *handler.PrintHandler
	var printService *printing.Service
	if cfg.Printing.Enabled {
		renderer, err := printing.NewChromedpRenderer(&printing.ChromedpConfig{
			DefaultTimeout: cfg.Printing.RenderTimeout,
			RemoteURL:      cfg.Printing.ChromeURL,
			NoSandbox:      cfg.Printing.NoSandbox,
			Logger:         log,
		})
		if err != nil {
			log.Fatal("Failed to initialize PDF renderer", zap.Error(err))
		}
		printService, err = printing.NewService(renderer,
			printing.WithTemplateDir(cfg.Printing.TemplateDir),
			printing.WithFooterNote(cfg.Printing.ReceiptFooter),
			printing.WithServiceLogger(log),
		)
		if err != nil {
			log.Fatal("Failed to initialize printing service", zap.Error(err))
		}
		receiptService := appledger.NewReceiptService(scope, printService, appledger.CompanyProfile{
			Name:       cfg.App.Name,
			LogoURL:    cfg.Printing.CompanyLogoURL,
			FooterNote: cfg.Printing.ReceiptFooter,
		})
		printHandler = handler.NewPrintHandler(receiptService)
		log.Info("PDF printing enabled")
	}

	engine := router.New(router.Config{
		ServiceName:  cfg.Telemetry.ServiceName,
		AllowOrigins: cfg.HTTP.CORSAllowOrigins,
		MaxBodyBytes: cfg.HTTP.MaxBodySize,
		Verifier:     auth.NewTokenVerifier(cfg.JWT),
		Revocations:  revocations,
		Logger:       log,
	}, router.Handlers{
		System:      handler.NewSystemHandler(db, version),
		Documents:   handler.NewDocumentHandler(obligationService, reversalService),
		Payments:    handler.NewPaymentHandler(paymentService),
		Allocations: handler.NewAllocationHandler(allocationService),
		Periods:     handler.NewPeriodHandler(periodService),
		Parties:     handler.NewPartyHandler(partyService),
		FundsSource: handler.NewFundsSourceHandler(fundsSourceService),
		Attachments: handler.NewAttachmentHandler(attachmentService),
		Print:       printHandler,
	})
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Invalid trusted proxies", zap.Error(err))
		}
	}

	server := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server listening", zap.String("port", cfg.App.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if ledgerMetrics != nil {
		ledgerMetrics.Stop()
	}
	if printService != nil {
		if err := printService.Close(); err != nil {
			log.Error("Error closing printing service", zap.Error(err))
		}
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Error("Error closing Redis client", zap.Error(err))
		}
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down meter provider", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down tracer provider", zap.Error(err))
	}

	log.Info("Server stopped")
}
