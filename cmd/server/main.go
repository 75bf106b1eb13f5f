package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	ledgerapp "github.com/fzhange/financial-sys/internal/application/ledger"
	partnerapp "github.com/fzhange/financial-sys/internal/application/partner"
	"github.com/fzhange/financial-sys/internal/infrastructure/cache"
	"github.com/fzhange/financial-sys/internal/infrastructure/config"
	"github.com/fzhange/financial-sys/internal/infrastructure/logger"
	"github.com/fzhange/financial-sys/internal/infrastructure/persistence"
	"github.com/fzhange/financial-sys/internal/infrastructure/recognition"
	"github.com/fzhange/financial-sys/internal/interfaces/http/handler"
	"github.com/fzhange/financial-sys/internal/interfaces/http/middleware"
	"github.com/fzhange/financial-sys/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting accounts payable service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("failed to close database", zap.Error(err))
		}
	}()
	log.Info("database connected",
		zap.String("host", cfg.Database.Host),
		zap.String("database", cfg.Database.DBName),
	)

	// Repositories
	supplierRepo := persistence.NewGormSupplierRepository(db.DB)
	payableRepo := persistence.NewGormAccountPayableRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	relationRepo := persistence.NewGormPayableInvoiceRelationRepository(db.DB)
	requestRepo := persistence.NewGormPaymentRequestRepository(db.DB)
	voucherRepo := persistence.NewGormPaymentVoucherRepository(db.DB)
	statementRepo := persistence.NewGormReconciliationStatementRepository(db.DB)
	txManager := persistence.NewGormTransactionManager(db.DB)

	idempotencyStore, err := cache.NewIdempotencyStoreFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(cfg.App.Env != "production"),
	).CreateStore()
	if err != nil {
		log.Fatal("failed to create idempotency store", zap.Error(err))
	}

	var recognizer ledgerapp.InvoiceRecognizer
	if cfg.Recognition.Enabled {
		docAI, err := recognition.NewDocumentAIRecognizer(context.Background(), cfg.Recognition, log)
		if err != nil {
			log.Fatal("failed to initialize invoice recognizer", zap.Error(err))
		}
		defer func() {
			if err := docAI.Close(); err != nil {
				log.Error("failed to close invoice recognizer", zap.Error(err))
			}
		}()
		recognizer = docAI
		log.Info("invoice recognition enabled",
			zap.String("project", cfg.Recognition.ProjectID),
			zap.String("location", cfg.Recognition.Location),
		)
	}

	// Application services
	supplierService := partnerapp.NewSupplierService(supplierRepo)
	payableService := ledgerapp.NewPayableService(payableRepo, txManager)
	invoiceService := ledgerapp.NewInvoiceService(invoiceRepo, payableRepo, relationRepo, txManager)
	reconciliationService := ledgerapp.NewReconciliationService(statementRepo, payableRepo, supplierRepo, txManager)
	requestService := ledgerapp.NewPaymentRequestService(requestRepo, payableRepo, voucherRepo, invoiceRepo, txManager, idempotencyStore)
	voucherService := ledgerapp.NewVoucherService(voucherRepo, payableRepo, txManager)
	recognitionService := ledgerapp.NewRecognitionService(recognizer)

	// HTTP handlers
	supplierHandler := handler.NewSupplierHandler(supplierService)
	payableHandler := handler.NewPayableHandler(payableService, invoiceService)
	invoiceHandler := handler.NewInvoiceHandler(invoiceService, recognitionService)
	reconciliationHandler := handler.NewReconciliationHandler(reconciliationService)
	requestHandler := handler.NewPaymentRequestHandler(requestService)
	voucherHandler := handler.NewPaymentVoucherHandler(voucherService)
	systemHandler := handler.NewSystemHandler()

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("failed to set trusted proxies", zap.Error(err))
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	if cfg.HTTP.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(limiter))
	}

	engine.GET("/health", healthHandler(db))

	supplierGroup := router.NewDomainGroup("supplier", "/suppliers").
		POST("", supplierHandler.Create).
		GET("", supplierHandler.List).
		GET("/code/:code", supplierHandler.GetByCode).
		GET("/:id", supplierHandler.GetByID).
		PUT("/:id", supplierHandler.Update).
		POST("/:id/activate", supplierHandler.Activate).
		POST("/:id/deactivate", supplierHandler.Deactivate).
		POST("/:id/block", supplierHandler.Block)

	reconciliationGroup := router.NewDomainGroup("reconciliation", "/reconciliations").
		POST("", reconciliationHandler.Create).
		GET("", reconciliationHandler.List).
		GET("/:id", reconciliationHandler.GetByID).
		POST("/:id/receipts/:receiptId/match", reconciliationHandler.MatchReceipt).
		POST("/:id/receipts/:receiptId/unmatch", reconciliationHandler.UnmatchReceipt).
		POST("/:id/match-all", reconciliationHandler.MatchAll).
		POST("/:id/confirm", reconciliationHandler.Confirm).
		POST("/:id/dispute", reconciliationHandler.Dispute).
		POST("/:id/resolve", reconciliationHandler.Resolve)

	payableGroup := router.NewDomainGroup("payable", "/payables").
		GET("", payableHandler.List).
		GET("/summary", payableHandler.Summary).
		GET("/:id", payableHandler.GetByID).
		POST("/:id/pay", payableHandler.Pay).
		POST("/:id/cancel", payableHandler.Cancel).
		GET("/:id/available-invoices", payableHandler.AvailableInvoices).
		POST("/:id/invoices", payableHandler.LinkInvoices).
		DELETE("/:id/invoices/:invoiceId", payableHandler.UnlinkInvoice)

	invoiceGroup := router.NewDomainGroup("invoice", "/invoices").
		POST("", invoiceHandler.Register).
		GET("", invoiceHandler.List).
		GET("/summary", invoiceHandler.Summary).
		POST("/import", invoiceHandler.Import).
		POST("/recognize", invoiceHandler.Recognize).
		GET("/:id", invoiceHandler.GetByID).
		POST("/:id/verify", invoiceHandler.Verify).
		POST("/:id/fail-verification", invoiceHandler.FailVerification)

	requestGroup := router.NewDomainGroup("payment-request", "/payment-requests").
		POST("", requestHandler.Create).
		GET("", requestHandler.List).
		GET("/summary", requestHandler.Summary).
		GET("/:id", requestHandler.GetByID).
		POST("/:id/submit", requestHandler.Submit).
		POST("/:id/approve", requestHandler.Approve).
		POST("/:id/reject", requestHandler.Reject).
		POST("/:id/cancel", requestHandler.Cancel).
		GET("/:id/write-off-preview", requestHandler.WriteOffPreview).
		POST("/:id/pay", requestHandler.Pay)

	voucherGroup := router.NewDomainGroup("payment-voucher", "/payment-vouchers").
		POST("", voucherHandler.Create).
		GET("", voucherHandler.List).
		GET("/:id", voucherHandler.GetByID).
		POST("/:id/write-off", voucherHandler.WriteOff).
		POST("/:id/cancel", voucherHandler.Cancel)

	systemGroup := router.NewDomainGroup("system", "/system").
		GET("/ping", systemHandler.Ping).
		GET("/info", systemHandler.GetSystemInfo)

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(supplierGroup).
		Register(reconciliationGroup).
		Register(payableGroup).
		Register(invoiceGroup).
		Register(requestGroup).
		Register(voucherGroup).
		Register(systemGroup).
		Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("server forced to shutdown", zap.Error(err))
	}
	log.Info("server exited")
}

// healthHandler reports process liveness and database reachability.
func healthHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			log.Error("health check failed", zap.Error(err))
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
