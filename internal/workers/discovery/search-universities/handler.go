// internal/workers/discovery/search-universities/handler.go
package searchuniversities

import (
	"context"
	"errors"
	"strings"
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
	TaskType = "search-universities"
)

type Searcher interface {
	SearchUniversities(ctx context.Context, criteria *models.DiscoveryCriteria, tier models.AccessTier, anonymous bool) (*models.DiscoveryResponse, error)
}

// TierResolver looks up the subscription tier of a signed-in user.
type TierResolver interface {
	ResolveTier(ctx context.Context, userID string) (models.AccessTier, error)
}

type Handler struct {
	config     *Config
	searcher   Searcher
	tiers      TierResolver
	validator  *validation.Validator
	obs        *observability.Observability
	errHandler *commonerrors.ErrorHandler
	logger     logger.Logger
}

// NewHandler wires the search worker. tiers may be nil, in which case callers
// without an explicit tier are treated as free users.
func NewHandler(config *Config, searcher Searcher, tiers TierResolver, validator *validation.Validator, obs *observability.Observability, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		searcher:   searcher,
		tiers:      tiers,
		validator:  validator,
		obs:        obs,
		errHandler: commonerrors.NewErrorHandler(log),
		logger:     log,
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
		output, err = h.execute(ctx, &input)
	}
	if output != nil {
		span.SetAttributes(
			attribute.String("access.tier", output.AccessTier),
			attribute.Int("results.total", output.Pagination.TotalResults),
		)
	}
	observability.EndSpan(span, err)

	if err != nil {
		h.failJob(ctx, client, job, err, start)
		return
	}
	h.completeJob(ctx, client, job, output, start)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	anonymous := input.IsAnonymous || (input.UserID == "" && input.Tier == "")

	tier, err := h.accessTier(ctx, input, anonymous)
	if err != nil {
		return nil, err
	}

	resp, err := h.searcher.SearchUniversities(ctx, input.Criteria, tier, anonymous)
	if err != nil {
		if errors.Is(err, matching.ErrInvalidCriteria) {
			return nil, commonerrors.NewInvalidCriteriaError(err)
		}
		return nil, err
	}

	accessTier := string(tier)
	if anonymous {
		accessTier = "anonymous"
	}

	h.logger.Debug("search completed", map[string]interface{}{
		"searchId":     resp.SearchID,
		"accessTier":   accessTier,
		"totalResults": resp.Pagination.TotalResults,
		"restricted":   resp.Restricted != nil,
	})
	h.obs.RecordResults(ctx, "search", len(resp.Results))

	return &Output{DiscoveryResponse: *resp, AccessTier: accessTier}, nil
}

// accessTier prefers an explicit tier on the job, then the user's
// subscription, then the free tier.
func (h *Handler) accessTier(ctx context.Context, input *Input, anonymous bool) (models.AccessTier, error) {
	if tier := strings.ToLower(strings.TrimSpace(input.Tier)); tier != "" {
		return models.AccessTier(tier), nil
	}
	if anonymous || input.UserID == "" || h.tiers == nil {
		return models.TierFree, nil
	}
	return h.tiers.ResolveTier(ctx, input.UserID)
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
