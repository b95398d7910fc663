package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	catalogapp "github.com/bizledger/backend/internal/application/catalog"
	ledgerapp "github.com/bizledger/backend/internal/application/ledger"
	purchasingapp "github.com/bizledger/backend/internal/application/purchasing"
	salesapp "github.com/bizledger/backend/internal/application/sales"
	"github.com/bizledger/backend/internal/infrastructure/cache"
	"github.com/bizledger/backend/internal/infrastructure/config"
	"github.com/bizledger/backend/internal/infrastructure/extraction"
	"github.com/bizledger/backend/internal/infrastructure/logger"
	"github.com/bizledger/backend/internal/infrastructure/persistence"
	"github.com/bizledger/backend/internal/infrastructure/storage"
	"github.com/bizledger/backend/internal/infrastructure/telemetry"
	"github.com/bizledger/backend/internal/interfaces/http/handler"
	"github.com/bizledger/backend/internal/interfaces/http/middleware"
	"github.com/bizledger/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const meterName = "bizledger"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logCfg := &logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.Output}
	bootLog, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx := context.Background()

	// OTLP log export has to exist before the real logger so its core can be teed in
	loggerProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, bootLog)
	if err != nil {
		bootLog.Fatal("Failed to initialize log export", zap.Error(err))
	}

	log, err := logger.New(logCfg, loggerProvider.ZapCore(logger.ParseLevel(cfg.Log.Level)))
	if err != nil {
		bootLog.Fatal("Failed to initialize logger", zap.Error(err))
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting ledger service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}
	meter := meterProvider.Meter(meterName)

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh))
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
	}, log); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}
	dbMetrics, err := telemetry.RegisterDBMetrics(db.DB, meter, telemetry.DBMetricsConfig{
		SlowQueryThreshold: cfg.Telemetry.DBSlowQueryThresh,
	}, log)
	if err != nil {
		log.Fatal("Failed to register database metrics", zap.Error(err))
	}
	dbMetrics.StartPoolStatsCollection(ctx)
	defer dbMetrics.Stop()

	idempotency, err := cache.NewIdempotencyStore(ctx, cfg.Redis, cache.WithLogger(log))
	if err != nil {
		log.Fatal("Failed to initialize idempotency store", zap.Error(err))
	}
	defer func() {
		if err := idempotency.Close(); err != nil {
			log.Error("Error closing idempotency store", zap.Error(err))
		}
	}()

	policy, err := purchasingapp.ParseIntakePolicy(cfg.Intake.Policy)
	if err != nil {
		log.Fatal("Invalid intake policy", zap.Error(err))
	}

	// Repositories
	clientRepo := persistence.NewGormClientRepository(db.DB)
	supplierRepo := persistence.NewGormSupplierRepository(db.DB)
	stockRepo := persistence.NewGormStockItemRepository(db.DB)
	grvRepo := persistence.NewGormGrvRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	quoteRepo := persistence.NewGormQuoteRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	salesScope := persistence.NewSalesTransactionScope(db.DB)

	// Application services
	documentService := salesapp.NewDocumentService(invoiceRepo, quoteRepo, clientRepo, salesScope, log)
	paymentService := salesapp.NewPaymentService(paymentRepo, clientRepo, salesScope, log)
	statementService := ledgerapp.NewStatementService(clientRepo, invoiceRepo, paymentRepo, log)
	intakeService := purchasingapp.NewGrvIntakeService(grvRepo, stockRepo, supplierRepo,
		persistence.NewPurchasingTransactionScope(db.DB), log)
	intakeService.SetPolicy(policy)
	intakeService.SetIdempotencyStore(idempotency, cfg.Intake.IdempotencyTTL)

	intakeMetrics, err := telemetry.NewIntakeMetrics(telemetry.IntakeMetricsConfig{
		Meter:         meter,
		Logger:        log,
		StockProvider: telemetry.NewGormStockMetricsProvider(db.DB),
	})
	if err != nil {
		log.Fatal("Failed to initialize intake metrics", zap.Error(err))
	}
	intakeMetrics.StartPeriodicCollection(ctx, cfg.Telemetry.MetricsInterval)
	defer intakeMetrics.Stop()
	intakeService.SetIntakeMetrics(intakeMetrics)

	if cfg.Storage.Enabled {
		objectStorage, err := storage.NewS3ObjectStorage(ctx, &cfg.Storage, storage.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to initialize object storage", zap.Error(err))
		}
		if err := objectStorage.EnsureBucket(ctx); err != nil {
			log.Fatal("Failed to prepare document bucket", zap.Error(err), zap.String("bucket", cfg.Storage.Bucket))
		}
		intakeService.SetObjectStorage(objectStorage)
	} else {
		log.Info("Object storage disabled, source documents will not be archived")
	}

	if cfg.Extraction.Endpoint != "" {
		extractor, err := extraction.NewHTTPExtractor(cfg.Extraction, extraction.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to initialize document extraction", zap.Error(err))
		}
		intakeService.SetExtractor(extractor)
	} else {
		log.Info("Document extraction not configured, PDF import is disabled")
	}

	log.Info("GRV intake configured",
		zap.String("policy", string(intakeService.Policy())),
		zap.Duration("idempotency_ttl", cfg.Intake.IdempotencyTTL),
	)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Tracing opens the request span first so every later log line carries its trace id
	engine.Use(middleware.Tracing(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.RequestID(log))
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.HTTPMetrics(meter, log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxUploadSize))

	engine.GET("/health", healthHandler(db))

	router.RegisterLedgerRoutes(engine, router.Handlers{
		Invoice:   handler.NewInvoiceHandler(documentService),
		Quote:     handler.NewQuoteHandler(documentService),
		Payment:   handler.NewPaymentHandler(paymentService),
		Statement: handler.NewStatementHandler(statementService),
		Grv:       handler.NewGrvHandler(intakeService),
		Catalog:   handler.NewCatalogHandler(catalogapp.NewCatalogService(stockRepo, supplierRepo, log)),
	}, router.WithAPIVersion("v1"))

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	// flush telemetry after the last request has finished
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Tracer shutdown failed", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Meter shutdown failed", zap.Error(err))
	}
	if err := loggerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Logger provider shutdown failed", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler reports database reachability
func healthHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			logger.GetGinLogger(c).Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
