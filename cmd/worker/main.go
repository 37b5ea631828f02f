package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/casesurf/casesurf/internal/cache"
	"github.com/casesurf/casesurf/internal/config"
	"github.com/casesurf/casesurf/internal/database"
	"github.com/casesurf/casesurf/internal/library"
	"github.com/casesurf/casesurf/internal/logging"
	"github.com/casesurf/casesurf/internal/mail"
	"github.com/casesurf/casesurf/internal/metrics"
	"github.com/casesurf/casesurf/internal/queue"
	"github.com/casesurf/casesurf/internal/report"
	"github.com/casesurf/casesurf/pkg/models"
)

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

	// Initialize database
	db, err := database.New(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	videoRepo := database.NewVideoRepository(db)

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

	// Feed sync service
	backend := report.NewClient(cfg.Backend)
	libSvc := library.NewService(backend, videoRepo, redisCache, cfg.Feed.SnapshotTTL, cfg.Feed.PageSize, logger)

	// Receipt mailer; nil when no SendGrid key is configured
	var sender receiptSender
	if mailer := mail.NewMailer(cfg.Mail); mailer != nil {
		sender = mailer
	} else {
		logger.Warn("SendGrid not configured, payment receipts disabled")
	}

	// Metrics server
	metricsServer := metrics.NewServer(cfg.Server.MetricsPort)
	go func() {
		if err := metricsServer.Start(); err != nil {
			logger.WithError(err).Error("Metrics server failed")
		}
	}()

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown gracefully
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Shutting down worker gracefully...")
		cancel()
	}()

	// Periodic feed sync keeps the library fresh even when no sync
	// task is ever queued
	go func() {
		ticker := time.NewTicker(cfg.Feed.SyncInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if err := libSvc.SyncFeed(ctx); err != nil {
					logger.WithError(err).Error("Periodic feed sync failed")
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	// Task handler
	taskHandler := func(task *models.Task) error {
		logger.Infof("Processing task %s", task.Type)

		var err error
		switch task.Type {
		case models.TaskTypeFeedSync:
			err = libSvc.SyncFeed(ctx)
		case models.TaskTypePaymentEmail:
			err = handlePaymentEmail(sender, task, logger)
		default:
			logger.Warnf("Dropping task with unknown type %q", task.Type)
			metrics.RecordTaskProcessed(string(task.Type), "dropped")
			return nil
		}

		if err != nil {
			logger.WithError(err).Errorf("Failed to process task %s", task.Type)
			metrics.RecordTaskProcessed(string(task.Type), "error")
			return err
		}

		metrics.RecordTaskProcessed(string(task.Type), "success")
		return nil
	}

	// Start consuming tasks
	logger.Info("Worker started, waiting for tasks...")
	if err := q.ConsumeTasks(ctx, taskHandler); err != nil {
		log.Fatalf("Failed to consume tasks: %v", err)
	}

	// Wait for shutdown
	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Metrics server shutdown failed")
	}

	logger.Info("Worker stopped")
}

// receiptSender delivers purchase receipts
type receiptSender interface {
	SendPaymentReceipt(email *models.PaymentEmail) error
}

// handlePaymentEmail sends the purchase receipt. Receipts are strictly
// best-effort: every failure is logged and the task is dropped, never
// requeued, so a permanently undeliverable receipt cannot wedge the
// queue behind it.
func handlePaymentEmail(sender receiptSender, task *models.Task, logger *logging.Logger) error {
	if task.Email == nil {
		logger.Warn("Payment email task without payload")
		return nil
	}
	if sender == nil {
		logger.WithOrderID(task.Email.OrderID).Warn("Skipping receipt, mailer disabled")
		return nil
	}

	if err := sender.SendPaymentReceipt(task.Email); err != nil {
		logger.WithOrderID(task.Email.OrderID).WithError(err).Error("Failed to send receipt email")
	}
	return nil
}
