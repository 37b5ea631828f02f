package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/casesurf/casesurf/internal/auth"
	"github.com/casesurf/casesurf/internal/cache"
	"github.com/casesurf/casesurf/internal/config"
	"github.com/casesurf/casesurf/internal/credits"
	"github.com/casesurf/casesurf/internal/database"
	"github.com/casesurf/casesurf/internal/library"
	"github.com/casesurf/casesurf/internal/logging"
	"github.com/casesurf/casesurf/internal/metrics"
	"github.com/casesurf/casesurf/internal/middleware"
	"github.com/casesurf/casesurf/internal/payment"
	"github.com/casesurf/casesurf/internal/paypal"
	"github.com/casesurf/casesurf/internal/profile"
	"github.com/casesurf/casesurf/internal/queue"
	"github.com/casesurf/casesurf/internal/report"
	"github.com/casesurf/casesurf/internal/research"
	"github.com/casesurf/casesurf/internal/storage"
	"github.com/casesurf/casesurf/internal/tracing"
	"github.com/casesurf/casesurf/pkg/models"
)

type libraryService interface {
	ListVideos(ctx context.Context, query library.Query) (*models.VideoPage, error)
	Keywords(ctx context.Context) ([]models.KeywordCount, error)
	RecordClick(ctx context.Context, url string) error
	ToggleLike(ctx context.Context, sessionID, url string) (bool, error)
	LikedVideos(ctx context.Context, sessionID string) ([]string, error)
}

type researchService interface {
	GenerateReport(ctx context.Context, product, userID string) (*models.Report, error)
}

type creditService interface {
	ImproveScript(ctx context.Context, userID, baseText string, improvements []string, iterative bool) (string, error)
	Balance(ctx context.Context, userID string) (*models.User, error)
}

type paymentService interface {
	CaptureAndApply(ctx context.Context, userID, orderID, planID string) (*models.Payment, error)
	History(ctx context.Context, userID string) ([]*models.Payment, error)
}

type authService interface {
	Login(ctx context.Context, id, email, name string) (*models.User, string, error)
	Profile(ctx context.Context, userID string) (*models.User, error)
}

type scriptStore interface {
	SaveScript(ctx context.Context, script *models.SavedScript) error
	GetScript(ctx context.Context, userID, docKey string) (*models.SavedScript, error)
	ListScripts(ctx context.Context, userID string) ([]*models.SavedScript, error)
	DeleteScript(ctx context.Context, userID, docKey string) error
}

type healthChecker interface {
	Health(ctx context.Context) error
}

type API struct {
	library  libraryService
	research researchService
	credits  creditService
	payments paymentService
	auth     authService
	scripts  scriptStore
	broker   *profile.Broker
	db       healthChecker
	logger   *logging.Logger
}

func main() {
	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.NewLogger(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	// Initialize JWT secret from config
	middleware.SetJWTSecret(cfg.Auth.JWTSecret)

	// Initialize tracing
	if cfg.Tracing.JaegerEndpoint != "" {
		_, closer, err := tracing.InitTracer("casesurf-api", cfg.Tracing.JaegerEndpoint)
		if err != nil {
			logger.WithError(err).Warn("Tracing disabled")
		} else {
			defer closer.Close()
		}
	}

	// Initialize database
	db, err := database.New(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	userRepo := database.NewUserRepository(db)
	videoRepo := database.NewVideoRepository(db)
	scriptRepo := database.NewScriptRepository(db)
	paymentRepo := database.NewPaymentRepository(db)

	// Initialize cache
	redisCache, err := cache.NewCache(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisCache.Close()

	// Initialize queue
	q, err := queue.New(cfg.Queue)
	if err != nil {
		log.Fatalf("Failed to connect to queue: %v", err)
	}
	defer q.Close()

	// Initialize storage for generation archives
	archive, err := storage.New(cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	// External clients
	backend := report.NewClient(cfg.Backend)
	paypalClient := paypal.NewClient(cfg.PayPal)

	// Profile event fan-out
	broker := profile.NewBroker()

	// Services
	libSvc := library.NewService(backend, videoRepo, redisCache, cfg.Feed.SnapshotTTL, cfg.Feed.PageSize, logger)
	researchSvc := research.NewService(backend, redisCache, scriptRepo, videoRepo, archive, cfg.Backend.ReportCacheTTL, logger)
	creditSvc := credits.NewService(userRepo, backend, archive, broker, logger)
	paymentSvc := payment.NewService(paypalClient, userRepo, paymentRepo, q, broker, logger)
	authSvc := auth.NewService(userRepo, cfg.Auth.TokenTTL, logger)

	api := &API{
		library:  libSvc,
		research: researchSvc,
		credits:  creditSvc,
		payments: paymentSvc,
		auth:     authSvc,
		scripts:  scriptRepo,
		broker:   broker,
		db:       db,
		logger:   logger,
	}

	// Metrics server
	metricsServer := metrics.NewServer(cfg.Server.MetricsPort)
	go func() {
		if err := metricsServer.Start(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("Metrics server failed")
		}
	}()

	// Warm the library so the first page load does not wait on the
	// upstream feed
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		if err := libSvc.SyncFeed(ctx); err != nil {
			logger.WithError(err).Warn("Initial feed sync failed")
		}
	}()

	// Setup router
	router := setupRouter(api, cfg)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Infof("Starting API server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	if err := metricsServer.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Metrics server shutdown failed")
	}

	logger.Info("Server stopped")
}

func setupRouter(api *API, cfg *config.Config) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(api.logger))
	router.Use(middleware.Session())

	rl := middleware.NewRateLimiter(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst)
	go rl.Cleanup()
	router.Use(middleware.RateLimit(rl))

	// Health check
	router.GET("/health", api.healthCheck)

	v1 := router.Group("/api/v1")
	{
		// Library
		v1.GET("/videos", api.listVideos)
		v1.GET("/keywords", api.getKeywords)
		v1.POST("/videos/click", api.recordClick)
		v1.POST("/videos/like", api.toggleLike)
		v1.GET("/videos/liked", api.likedVideos)

		// Research; signed-out users can generate reports but never
		// resume a saved document
		v1.POST("/report", middleware.OptionalJWTAuth(), api.generateReport)

		// Auth
		v1.POST("/auth/login", api.login)

		// Plans are public so the pricing page can render them
		v1.GET("/plans", api.listPlans)

		// Signed-in surface
		authed := v1.Group("")
		authed.Use(middleware.JWTAuth())
		{
			authed.GET("/users/me", api.getProfile)
			authed.GET("/users/me/events", api.profileEvents)

			authed.POST("/improvement-script", api.improveScript)

			authed.POST("/orders/:order_id/capture", api.captureOrder)
			authed.GET("/payments", api.listPayments)

			authed.POST("/scripts", api.saveScript)
			authed.GET("/scripts", api.listScripts)
			authed.GET("/scripts/:doc_key", api.getScript)
			authed.DELETE("/scripts/:doc_key", api.deleteScript)
		}
	}

	return router
}

// Health check endpoint
func (api *API) healthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := api.db.Health(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
	})
}
