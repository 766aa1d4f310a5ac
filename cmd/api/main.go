package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	_ "github.com/joho/godotenv/autoload"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/sjperalta/smartdebt-api/docs" // Swagger docs
	"github.com/sjperalta/smartdebt-api/internal/ai"
	"github.com/sjperalta/smartdebt-api/internal/config"
	"github.com/sjperalta/smartdebt-api/internal/handlers"
	"github.com/sjperalta/smartdebt-api/internal/jobs"
	"github.com/sjperalta/smartdebt-api/internal/metrics"
	"github.com/sjperalta/smartdebt-api/internal/middleware"
	"github.com/sjperalta/smartdebt-api/internal/repository"
	"github.com/sjperalta/smartdebt-api/internal/services"
	"github.com/sjperalta/smartdebt-api/internal/sheets"
	"github.com/sjperalta/smartdebt-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// @title SmartDebt API
// @version 1.0
// @description REST API for the SmartDebt personal debt ledger
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url http://www.swagger.io/support
// @contact.email support@swagger.io

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Setup(cfg.Environment, cfg.LogLevel)

	// Initialize Sentry (GlitchTip) when DSN is configured
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			TracesSampleRate: 0.2,
			Environment:      cfg.Environment,
		}); err != nil {
			logger.Error("Sentry initialization failed", "error", err)
		} else {
			logger.Info("Sentry initialized")
		}
	}

	if cfg.ResendAPIKey == "" || cfg.BackupEmailTo == "" {
		logger.Warn("Backup email disabled: RESEND_API_KEY or BACKUP_EMAIL_TO not set")
	}

	// Set Gin mode
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Open the state store for the configured backend
	repo, err := repository.NewStateRepository(cfg)
	if err != nil {
		logger.Error("Failed to open state store", "backend", cfg.StorageBackend, "error", err)
		os.Exit(1)
	}
	logger.Info("Opened state store", "backend", cfg.StorageBackend)

	m := metrics.New()

	// Initialize background worker
	worker := jobs.NewWorker(cfg.WorkerCount)
	worker.SetObserver(m)
	logger.Info("Started background worker", "goroutines", cfg.WorkerCount)

	ctx := context.Background()
	adapters := services.Adapters{}
	if cfg.GeminiAPIKey != "" {
		gemini, err := ai.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Error("Gemini client unavailable, insights will use the fallback text", "error", err)
		} else {
			adapters.Generator = gemini
		}
	}
	if cfg.SheetsEnabled() {
		writer, err := sheets.NewGoogleWriter(ctx, cfg.GoogleSpreadsheetID, cfg.GoogleSheetName, sheets.Credentials{
			JSON: cfg.GoogleServiceAccountJSON,
			File: cfg.GoogleServiceAccountFile,
		})
		if err != nil {
			logger.Error("Google Sheets export disabled", "error", err)
		} else {
			adapters.Sheets = writer
		}
	}

	// Initialize services
	svcs, err := services.NewServices(cfg, repo, worker, adapters)
	if err != nil {
		logger.Error("Failed to initialize services", "error", err)
		os.Exit(1)
	}
	svcs.Ledger.SetObserver(m)
	svcs.Insight.SetObserver(m)

	if err := svcs.Ledger.Init(ctx, cfg.SeedDemoData); err != nil {
		logger.Error("Failed to load ledger", "error", err)
		os.Exit(1)
	}

	// Schedule recurring jobs
	svcs.Job.ScheduleBackupEmail(cfg.BackupEmailInterval, svcs.Email)

	// Initialize handlers
	h := handlers.NewHandlers(svcs)

	// Setup router
	router := setupRouter(h, svcs, m, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	// Drain pending saves, then write the final snapshot
	worker.Shutdown()
	logger.Info("Background worker stopped")
	if err := svcs.Ledger.Flush(shutdownCtx); err != nil {
		logger.Error("Final save failed", "error", err)
	}
	if err := repo.Close(); err != nil {
		logger.Error("Failed to close state store", "error", err)
	}

	if cfg.SentryDSN != "" {
		sentry.Flush(5 * time.Second)
	}

	logger.Info("Server exited gracefully")
}

func setupRouter(h *handlers.Handlers, svcs *services.Services, m *metrics.Metrics, cfg *config.Config) *gin.Engine {
	router := gin.New()

	// Global middleware
	if cfg.SentryDSN != "" {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedExtensions([]string{".pdf", ".xlsx"})))
	router.Use(m.Middleware())

	router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
	})
	router.GET("/metrics", gin.WrapH(m.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	handlers.RegisterRoutes(router.Group("/api/v1"), h, middleware.Auth(svcs.Auth))

	return router
}
