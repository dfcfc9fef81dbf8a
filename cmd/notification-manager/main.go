// cmd/notification-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/myster33/edlead-impact-sub001/internal/common/aws"
	"github.com/myster33/edlead-impact-sub001/internal/common/camunda"
	"github.com/myster33/edlead-impact-sub001/internal/common/config"
	"github.com/myster33/edlead-impact-sub001/internal/common/database"
	httpclient "github.com/myster33/edlead-impact-sub001/internal/common/http"
	"github.com/myster33/edlead-impact-sub001/internal/common/logger"
	"github.com/myster33/edlead-impact-sub001/internal/common/observability"
	"github.com/myster33/edlead-impact-sub001/internal/notify/banner"
	"github.com/myster33/edlead-impact-sub001/internal/notify/channel"
	"github.com/myster33/edlead-impact-sub001/internal/notify/deliverylog"
	"github.com/myster33/edlead-impact-sub001/internal/notify/orchestrator"
	"github.com/myster33/edlead-impact-sub001/internal/notify/phone"
	"github.com/myster33/edlead-impact-sub001/internal/notify/settings"
	"github.com/myster33/edlead-impact-sub001/internal/notify/template"

	statuschanged "github.com/myster33/edlead-impact-sub001/internal/workers/notifications/status-changed"
	storyapproved "github.com/myster33/edlead-impact-sub001/internal/workers/notifications/story-approved"
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
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting notification manager...",
		zap.String("app", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	// A missing default template is a deploy-time failure, not something to
	// discover mid-dispatch.
	if err := template.VerifyDefaults(); err != nil {
		zapLog.Fatal("default template verification failed", zap.Error(err))
	}

	obs := observability.New("notification-manager")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init Camunda client with retry ---
	var camundaClient *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		camundaClient, err = camunda.NewClient(cfg.Camunda.BrokerAddress)
		return err
	}, 10, 2*time.Second, zapLog, "Camunda client initialization")
	if err != nil {
		zapLog.Fatal("camunda client failed after retries", zap.Error(err))
	}
	defer camundaClient.Close()
	zapLog.Info("Camunda client connected successfully")

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

	// --- Init Redis with retry ---
	var redisClient *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redisClient, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redisClient.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redisClient.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init Elasticsearch with retry ---
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		return esClient.Ping()
	}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected successfully")

	// --- Init AWS clients ---
	sesClient, err := aws.NewSESClient(ctx, cfg.Notifications.Email.AWSRegion)
	if err != nil {
		zapLog.Fatal("ses client init failed", zap.Error(err))
	}
	snsClient, err := aws.NewSNSClient(ctx, cfg.Notifications.SMS.AWSRegion)
	if err != nil {
		zapLog.Fatal("sns client init failed", zap.Error(err))
	}

	// --- Build the dispatch engine ---
	normalizer := phone.NewNormalizer(cfg.Notifications.CountryCallingCode)
	webClient := httpclient.NewClient(30 * time.Second)

	senders := []channel.Sender{
		channel.NewEmailSender(sesClient, cfg.Notifications.Email.FromEmail, log),
		channel.NewSMSSender(snsClient, cfg.Notifications.SMS.SenderID, normalizer, log),
		channel.NewWhatsAppSender(channel.WhatsAppConfig{
			AccountSID: cfg.Notifications.WhatsApp.AccountSID,
			AuthToken:  cfg.Notifications.WhatsApp.AuthToken,
			FromNumber: cfg.Notifications.WhatsApp.FromNumber,
			BaseURL:    cfg.Notifications.WhatsApp.BaseURL,
		}, webClient, normalizer, log),
	}

	var bannerPipeline *banner.Pipeline
	if cfg.Banner.Enabled {
		s3Client, err := aws.NewS3Client(ctx, cfg.Banner.Storage.AWSRegion)
		if err != nil {
			zapLog.Fatal("s3 client init failed", zap.Error(err))
		}
		visionClient := banner.NewVisionClient(
			cfg.Banner.Vision.BaseURL,
			cfg.Banner.Vision.Model,
			cfg.Banner.Vision.MaxTokens,
			cfg.Banner.Vision.SigningSecret,
			webClient,
			log,
		)
		uploader := banner.NewS3Uploader(s3Client, cfg.Banner.Storage.Bucket, cfg.Banner.Storage.PublicBaseURL)
		bannerPipeline = banner.NewPipeline(
			cfg.Banner.TemplateImageURL,
			time.Duration(cfg.Banner.Timeout)*time.Millisecond,
			webClient,
			visionClient,
			uploader,
			obs,
			log,
		)
		zapLog.Info("Banner sub-pipeline enabled")
	} else {
		zapLog.Info("Banner sub-pipeline disabled by configuration")
	}

	settingsStore := settings.NewRedisStore(redisClient.Client, settings.Settings{
		ParentEmailsEnabled: cfg.Notifications.DefaultToggles.ParentEmails,
		SMSEnabled:          cfg.Notifications.DefaultToggles.SMS,
		WhatsAppEnabled:     cfg.Notifications.DefaultToggles.WhatsApp,
	}, log)

	deliveryWriter := deliverylog.NewWriter(
		pg.DB,
		&deliverylog.ESIndexer{Client: esClient.Client},
		cfg.Notifications.DeliveryLogIndex,
		log,
	)

	dispatcher := orchestrator.New(orchestrator.Options{
		Settings:          settingsStore,
		Resolver:          template.NewResolver(template.NewPostgresStore(pg.DB), log),
		Senders:           senders,
		Banner:            bannerPipeline,
		DeliveryLog:       deliveryWriter,
		Normalizer:        normalizer,
		DefaultParentName: cfg.Notifications.DefaultParentName,
		Observability:     obs,
		Logger:            log,
	})

	// --- Register workers ---
	statusHandler, err := statuschanged.NewHandler(statuschanged.HandlerOptions{
		AppConfig: cfg,
		Camunda:   camundaClient,
		Notifier:  dispatcher,
		Logger:    log,
	})
	if err != nil {
		zapLog.Fatal("failed to create status-changed handler", zap.Error(err))
	}
	if err := statusHandler.Register(); err != nil {
		zapLog.Fatal("failed to register status-changed worker", zap.Error(err))
	}
	defer statusHandler.Close()

	storyHandler, err := storyapproved.NewHandler(storyapproved.HandlerOptions{
		AppConfig: cfg,
		Camunda:   camundaClient,
		Notifier:  dispatcher,
		Logger:    log,
	})
	if err != nil {
		zapLog.Fatal("failed to create story-approved handler", zap.Error(err))
	}
	if err := storyHandler.Register(); err != nil {
		zapLog.Fatal("failed to register story-approved worker", zap.Error(err))
	}
	defer storyHandler.Close()

	zapLog.Info("All notification workers registered successfully")

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
		http.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
			checkCtx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
			defer cancel()

			status := "ready"
			code := http.StatusOK
			if err := camundaClient.HealthCheck(checkCtx); err != nil {
				status = "broker unreachable"
				code = http.StatusServiceUnavailable
			}

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(code)
			json.NewEncoder(w).Encode(map[string]string{
				"status": status,
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.Handle("/metrics", promhttp.Handler())
		zapLog.Info("Health/Metrics server listening on :8080")
		if err := http.ListenAndServe(":8080", nil); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	statusHandler.Close()
	storyHandler.Close()

	zapLog.Info("Notification manager stopped gracefully")
}
