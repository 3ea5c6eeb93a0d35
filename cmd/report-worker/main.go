// cmd/report-worker/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"student-report-worker/internal/analysis"
	"student-report-worker/internal/common/aws"
	"student-report-worker/internal/common/config"
	"student-report-worker/internal/common/database"
	"student-report-worker/internal/common/logger"
	"student-report-worker/internal/common/observability"
	"student-report-worker/internal/common/rabbitmq"
	"student-report-worker/internal/disability"
	"student-report-worker/internal/idempotency"
	"student-report-worker/internal/notify"
	"student-report-worker/internal/pipeline"
	"student-report-worker/internal/predictor"
	"student-report-worker/internal/repository"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := logger.New("info", "console")
		fallback.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting report worker...",
		zap.String("app", cfg.App.Name),
		zap.String("version", cfg.App.Version),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Redis (optional idempotency guard) ---
	var guard pipeline.Guard
	if cfg.Database.Redis.Address != "" {
		var redis *database.RedisClient
		err = retryWithBackoff(func() error {
			var err error
			redis, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return redis.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")

		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer redis.Close()
		guard = idempotency.New(redis.Client, 24*time.Hour)
		zapLog.Info("Redis connected successfully, idempotency guard enabled")
	} else {
		zapLog.Info("Redis not configured, idempotency guard disabled")
	}

	// --- Init S3 blob store ---
	blob, err := aws.NewS3Client(ctx, cfg.Storage.Region, cfg.Storage.Bucket)
	if err != nil {
		zapLog.Fatal("s3 client failed", zap.Error(err))
	}
	zapLog.Info("S3 client initialized", zap.String("bucket", cfg.Storage.Bucket))

	// --- Init notifier (optional) ---
	var notifier pipeline.Notifier
	if cfg.Notifications.Enabled {
		n, err := notify.New(ctx, notify.Config{
			Region:    cfg.Notifications.Region,
			TopicARN:  cfg.Notifications.TopicARN,
			AlertFrom: cfg.Notifications.AlertFrom,
			AlertTo:   cfg.Notifications.AlertTo,
		}, log)
		if err != nil {
			zapLog.Fatal("notifier failed", zap.Error(err))
		}
		notifier = n
		zapLog.Info("Notifications enabled")
	}

	// --- Init RabbitMQ consumer with retry ---
	var consumer *rabbitmq.Consumer
	err = retryWithBackoff(func() error {
		var err error
		consumer, err = rabbitmq.NewConsumer(cfg.RabbitMQ, log)
		return err
	}, 10, 2*time.Second, zapLog, "RabbitMQ connection")

	if err != nil {
		zapLog.Fatal("rabbitmq failed after retries", zap.Error(err))
	}
	defer consumer.Close()

	// --- Assemble the pipeline ---
	processor := pipeline.New(pipeline.Params{
		Repo:       repository.NewPostgres(pg.DB),
		Blob:       blob,
		Disability: disability.New(predictor.FileClassifierLoader{Path: cfg.Models.LogisticPath}),
		Scores:     analysis.NewScorePredictor(predictor.FileRegressorLoader{Path: cfg.Models.LinearPath}),
		Guard:      guard,
		Notifier:   notifier,
		Obs:        obs,
		Logger:     log,
	})

	// --- Health & Metrics Server ---
	go func() {
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "healthy",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.Handle("/metrics", promhttp.Handler())
		zapLog.Info("Health/Metrics server listening", zap.String("address", cfg.Metrics.Address))
		if err := http.ListenAndServe(cfg.Metrics.Address, nil); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	deliveries, err := consumer.Consume(ctx)
	if err != nil {
		zapLog.Fatal("consume failed", zap.Error(err))
	}
	zapLog.Info("Worker registered, waiting for jobs",
		zap.String("queue", cfg.RabbitMQ.Queue),
	)

	// Deliveries are processed one at a time; prefetch guarantees the broker
	// never hands this worker a second message before the first is settled.
	for {
		select {
		case <-ctx.Done():
			zapLog.Info("Shutdown signal received, stopping worker...")
			return
		case d, ok := <-deliveries:
			if !ok {
				zapLog.Warn("Delivery channel closed, shutting down")
				return
			}
			processor.Process(ctx, d)
		}
	}
}
