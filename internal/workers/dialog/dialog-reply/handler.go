// internal/workers/dialog/dialog-reply/handler.go
package dialogreply

import (
	"context"
	"fmt"
	"strings"
	"time"

	"kiosk-dialog/internal/common/config"
	"kiosk-dialog/internal/common/errors"
	"kiosk-dialog/internal/common/logger"
	"kiosk-dialog/internal/common/metrics"
	"kiosk-dialog/internal/common/observability"
	"kiosk-dialog/internal/common/validation"
	"kiosk-dialog/internal/dialog"
	"kiosk-dialog/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "dialog-reply"

// Responder answers one turn of a session. *tracker.Tracker implements it.
type Responder interface {
	Predict(ctx context.Context, sessionID, text string) dialog.Result
	Respond(ctx context.Context, sessionID string, turn models.Turn) dialog.Result
}

type Handler struct {
	config       *Config
	logger       logger.Logger
	responder    Responder
	errorHandler *errors.ErrorHandler
	obs          *observability.Observability
}

type HandlerOptions struct {
	AppConfig     *config.Config
	CustomConfig  *Config
	Responder     Responder
	Observability *observability.Observability
	Logger        logger.Logger
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	workerConfig := opts.CustomConfig
	if workerConfig == nil {
		workerConfig = createConfigFromAppConfig(opts.AppConfig)
	}
	if err := workerConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", TaskType, err)
	}
	if opts.Responder == nil {
		return nil, fmt.Errorf("%s requires a responder", TaskType)
	}

	loggerInstance := opts.Logger
	if loggerInstance == nil {
		loggerInstance = logger.NewStructured("info", "json")
	}

	return &Handler{
		config:       workerConfig,
		logger:       loggerInstance.With(map[string]interface{}{"worker": TaskType}),
		responder:    opts.Responder,
		errorHandler: errors.NewErrorHandler(loggerInstance),
		obs:          opts.Observability,
	}, nil
}

func (h *Handler) Config() *Config {
	return h.config
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	startTime := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	h.logger.Info("Processing dialog reply", map[string]interface{}{
		"jobKey":             job.GetKey(),
		"processInstanceKey": job.GetProcessInstanceKey(),
	})

	input, err := h.parseInput(job)
	if err == nil {
		var output *Output
		output, err = h.Execute(ctx, input)
		if err == nil {
			h.completeJob(ctx, client, job, output)
			metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
			metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(startTime).Seconds())
			h.obs.RecordJobProcessed(ctx, TaskType, output.Status)
			h.obs.RecordJobDuration(ctx, TaskType, time.Since(startTime), output.Status)
			return
		}
	}

	metrics.WorkerJobsFailed.WithLabelValues(TaskType, extractErrorCode(err)).Inc()
	h.obs.RecordJobProcessed(ctx, TaskType, "failed")
	h.obs.RecordJobDuration(ctx, TaskType, time.Since(startTime), "failed")
	h.errorHandler.HandleJobError(ctx, client, job, err)
}

// Execute answers the input. A reply is always produced once the input is
// valid; fallback and data problems are reported through Output.Status.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if strings.TrimSpace(input.SessionID) == "" {
		return nil, errors.NewInvalidJobInputError("sessionId is required")
	}
	if input.Intent == nil && strings.TrimSpace(input.Text) == "" {
		return nil, errors.NewInvalidJobInputError("either text or intent is required")
	}

	var res dialog.Result
	if input.Intent != nil {
		res = h.responder.Respond(ctx, input.SessionID, models.Turn{
			Text:     input.Text,
			Intent:   *input.Intent,
			Entities: input.Entities,
		})
	} else {
		res = h.responder.Predict(ctx, input.SessionID, input.Text)
	}

	output := &Output{
		SessionID: input.SessionID,
		Reply:     res.Reply,
		Rule:      res.Rule.String(),
		Status:    string(res.Status),
		Repeated:  res.Repeated,
	}
	if res.Err != nil {
		output.ErrorCode = extractErrorCode(res.Err)
	}
	return output, nil
}

func (h *Handler) parseInput(job entities.Job) (*Input, error) {
	variables, err := job.GetVariablesAsMap()
	if err != nil {
		return nil, errors.NewInvalidJobInputError(fmt.Sprintf("failed to parse job variables: %v", err))
	}

	validationResult := validation.ValidateInput(variables, GetInputSchema())
	if !validationResult.Valid {
		return nil, errors.NewInvalidJobInputError(
			fmt.Sprintf("Validation errors: %v", validationResult.GetErrorMessages()))
	}

	input := &Input{}
	if err := job.GetVariablesAs(input); err != nil {
		return nil, errors.NewInvalidJobInputError(fmt.Sprintf("failed to decode job variables: %v", err))
	}
	return input, nil
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	request, err := client.NewCompleteJobCommand().JobKey(job.GetKey()).VariablesFromObject(output)
	if err != nil {
		h.logger.Error("Failed to create complete job command", map[string]interface{}{
			"jobKey": job.GetKey(),
			"error":  err.Error(),
		})
		return
	}

	if _, err := request.Send(ctx); err != nil {
		h.logger.Error("Failed to complete job", map[string]interface{}{
			"jobKey": job.GetKey(),
			"error":  err.Error(),
		})
		return
	}

	h.logger.Info("Completed dialog reply", map[string]interface{}{
		"jobKey":    job.GetKey(),
		"sessionId": output.SessionID,
		"rule":      output.Rule,
		"status":    output.Status,
	})
}

func extractErrorCode(err error) string {
	if stdErr, ok := errors.AsStandardError(err); ok {
		return string(stdErr.Code)
	}
	return string(errors.ErrCodeInternal)
}
