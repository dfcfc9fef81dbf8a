// internal/workers/notifications/status-changed/handler.go

// Package statuschanged implements the notification.application-status-changed
// job worker: it turns a review status transition into a notification event
// and hands it to the dispatch orchestrator.
package statuschanged

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"github.com/myster33/edlead-impact-sub001/internal/common/camunda"
	"github.com/myster33/edlead-impact-sub001/internal/common/config"
	commonerrors "github.com/myster33/edlead-impact-sub001/internal/common/errors"
	"github.com/myster33/edlead-impact-sub001/internal/common/logger"
	"github.com/myster33/edlead-impact-sub001/internal/common/metrics"
	"github.com/myster33/edlead-impact-sub001/internal/common/validation"
	"github.com/myster33/edlead-impact-sub001/internal/models"
)

const TaskType = "notification.application-status-changed"

// Notifier runs the notification fan-out. *orchestrator.Orchestrator
// satisfies this.
type Notifier interface {
	Notify(ctx context.Context, event models.NotificationEvent) (models.NotifyResult, error)
}

type Handler struct {
	config       *Config
	logger       logger.Logger
	camunda      *camunda.Client
	notifier     Notifier
	errorHandler *commonerrors.ErrorHandler
	jobWorker    worker.JobWorker
}

type HandlerOptions struct {
	AppConfig    *config.Config
	Camunda      *camunda.Client
	Notifier     Notifier
	CustomConfig *Config
	Logger       logger.Logger
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	workerConfig := createConfigFromAppConfig(opts.AppConfig, opts.CustomConfig)

	if err := workerConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", TaskType, err)
	}
	if opts.Notifier == nil {
		return nil, fmt.Errorf("%s requires a notifier", TaskType)
	}

	loggerInstance := opts.Logger
	if loggerInstance == nil {
		loggerInstance = logger.NewNoOpLogger()
	}

	return &Handler{
		config:       workerConfig,
		logger:       loggerInstance,
		camunda:      opts.Camunda,
		notifier:     opts.Notifier,
		errorHandler: commonerrors.NewErrorHandler(loggerInstance),
	}, nil
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	startTime := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	h.logger.Info("Processing application status change", map[string]interface{}{
		"jobKey":             job.GetKey(),
		"processInstanceKey": job.GetProcessInstanceKey(),
		"worker":             TaskType,
	})

	input, err := h.parseInput(job)
	if err != nil {
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, extractErrorCode(err)).Inc()
		h.errorHandler.HandleJobError(ctx, client, job, err)
		return
	}

	output, err := h.Execute(ctx, input)
	if err != nil {
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, extractErrorCode(err)).Inc()
		h.errorHandler.HandleJobError(ctx, client, job, err)
		return
	}

	h.completeJob(ctx, client, job, output)
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(startTime).Seconds())
}

// Execute converts the input into an event and dispatches it. Send failures
// do not fail the job; they are reflected in the output flags.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	event, err := input.ToEvent()
	if err != nil {
		return nil, err
	}

	result, err := h.notifier.Notify(ctx, event)
	if err != nil {
		return nil, err
	}

	return &Output{
		Success:         true,
		Message:         fmt.Sprintf("Notifications dispatched for %s (%s)", input.ReferenceID, event.Kind),
		Learner:         result.Learner,
		Parent:          result.Parent,
		BannerGenerated: result.BannerGenerated,
	}, nil
}

func (h *Handler) parseInput(job entities.Job) (*Input, error) {
	document := []byte(job.GetVariables())

	if err := validation.ValidateDocument(document, GetInputSchema()); err != nil {
		return nil, commonerrors.NewEventValidationFailedError(err.Error())
	}

	var input Input
	if err := json.Unmarshal(document, &input); err != nil {
		return nil, commonerrors.NewEventParseFailedError(err)
	}
	return &input, nil
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	variables := map[string]interface{}{
		"notificationDispatched": output.Success,
		"notificationMessage":    output.Message,
		"learnerChannels":        output.Learner,
		"parentChannels":         output.Parent,
		"bannerGenerated":        output.BannerGenerated,
	}

	request, err := client.NewCompleteJobCommand().JobKey(job.GetKey()).VariablesFromMap(variables)
	if err != nil {
		h.logger.Error("Failed to create complete job command", map[string]interface{}{
			"jobKey": job.GetKey(),
			"error":  err.Error(),
			"worker": TaskType,
		})
		return
	}

	if _, err = request.Send(ctx); err != nil {
		h.logger.Error("Failed to complete job", map[string]interface{}{
			"jobKey": job.GetKey(),
			"error":  err.Error(),
			"worker": TaskType,
		})
		return
	}

	h.logger.Info("Successfully completed status change notification", map[string]interface{}{
		"jobKey":          job.GetKey(),
		"learnerChannels": output.Learner,
		"parentChannels":  output.Parent,
		"worker":          TaskType,
	})
}

func (h *Handler) Register() error {
	if !h.config.Enabled {
		h.logger.Info("Worker is disabled, skipping registration", map[string]interface{}{
			"worker": TaskType,
		})
		return nil
	}

	jobWorker := h.camunda.GetClient().NewJobWorker().
		JobType(TaskType).
		Handler(h.Handle).
		MaxJobsActive(h.config.MaxJobsActive).
		Timeout(h.config.Timeout).
		Name(fmt.Sprintf("%s-worker", TaskType)).
		Open()

	h.jobWorker = jobWorker

	h.logger.Info("Status change notification worker registered with Camunda", map[string]interface{}{
		"taskType":      TaskType,
		"maxJobsActive": h.config.MaxJobsActive,
		"timeout":       h.config.Timeout.String(),
	})
	return nil
}

func (h *Handler) Close() {
	if h.jobWorker != nil {
		h.logger.Info("Shutting down worker gracefully", map[string]interface{}{
			"worker": TaskType,
		})
		h.jobWorker.Close()
		h.jobWorker = nil
	}
}

func (h *Handler) HealthCheck(ctx context.Context) error {
	if err := h.camunda.HealthCheck(ctx); err != nil {
		return fmt.Errorf("camunda health check failed: %w", err)
	}
	return nil
}

func (h *Handler) GetTaskType() string {
	return TaskType
}

func (h *Handler) IsEnabled() bool {
	return h.config.Enabled
}

func extractErrorCode(err error) string {
	if stdErr, ok := err.(*commonerrors.StandardError); ok {
		return string(stdErr.Code)
	}
	return "UNKNOWN_ERROR"
}

func createConfigFromAppConfig(appConfig *config.Config, customConfig *Config) *Config {
	if customConfig != nil {
		return customConfig
	}

	cfg := DefaultConfig()
	if appConfig != nil {
		if workerCfg, exists := appConfig.Workers["status-changed"]; exists {
			cfg.Enabled = workerCfg.Enabled
			if workerCfg.MaxJobsActive > 0 {
				cfg.MaxJobsActive = workerCfg.MaxJobsActive
			}
			if workerCfg.Timeout > 0 {
				cfg.Timeout = time.Duration(workerCfg.Timeout) * time.Millisecond
			}
		}
	}
	return cfg
}
