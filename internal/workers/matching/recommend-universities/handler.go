// internal/workers/matching/recommend-universities/handler.go
package recommenduniversities

import (
	"context"
	"errors"
	"time"

	commonerrors "unimatch/internal/common/errors"
	"unimatch/internal/common/logger"
	"unimatch/internal/common/metrics"
	"unimatch/internal/common/observability"
	"unimatch/internal/common/validation"
	"unimatch/internal/matching"
	"unimatch/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.opentelemetry.io/otel/attribute"
)

const (
	TaskType = "recommend-universities"
)

type Recommender interface {
	RecommendUniversities(ctx context.Context, userID string) ([]models.MatchResult, error)
}

type Handler struct {
	config      *Config
	recommender Recommender
	validator   *validation.Validator
	obs         *observability.Observability
	errHandler  *commonerrors.ErrorHandler
	logger      logger.Logger
}

func NewHandler(config *Config, recommender Recommender, validator *validation.Validator, obs *observability.Observability, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:      config,
		recommender: recommender,
		validator:   validator,
		obs:         obs,
		errHandler:  commonerrors.NewErrorHandler(log),
		logger:      log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()
	ctx, span := h.obs.StartSpan(ctx, TaskType, attribute.Int64("job.key", job.Key))

	var input Input
	err := h.validator.Decode(TaskType, job.Variables, &input)
	var output *Output
	if err == nil {
		span.SetAttributes(attribute.String("user.id", input.UserID))
		output, err = h.execute(ctx, &input)
	}
	observability.EndSpan(span, err)

	if err != nil {
		h.failJob(ctx, client, job, err, start)
		return
	}
	h.completeJob(ctx, client, job, output, start)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.UserID == "" {
		return nil, commonerrors.NewInvalidInputError("userId is required")
	}

	recommendations, err := h.recommender.RecommendUniversities(ctx, input.UserID)
	if err != nil {
		if errors.Is(err, matching.ErrSubjectNotFound) {
			return nil, commonerrors.NewSubjectNotFoundError(input.UserID)
		}
		return nil, err
	}

	h.obs.RecordResults(ctx, "recommend", len(recommendations))
	return &Output{
		Recommendations:     recommendations,
		RecommendationCount: len(recommendations),
	}, nil
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output, start time.Time) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		h.failJob(ctx, client, job, commonerrors.NewInternalError(err), start)
		return
	}
	if _, err := cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	h.obs.RecordJobProcessed(ctx, TaskType, "success")
	h.obs.RecordJobDuration(ctx, TaskType, time.Since(start), "success")
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, err error, start time.Time) {
	bpmnErr := h.errHandler.HandleJobError(context.Background(), client, job, err)

	metrics.WorkerJobsFailed.WithLabelValues(TaskType, bpmnErr.Code).Inc()
	h.obs.RecordJobProcessed(ctx, TaskType, "failed")
	h.obs.RecordJobDuration(ctx, TaskType, time.Since(start), "failed")
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
