// internal/matching/engine.go
package matching

import (
	"context"
	"errors"
	"fmt"

	"unimatch/internal/common/logger"
	"unimatch/internal/common/metrics"
	"unimatch/internal/models"

	"github.com/google/uuid"
)

var (
	ErrSubjectNotFound = errors.New("SUBJECT_NOT_FOUND")
	ErrInvalidCriteria = errors.New("INVALID_CRITERIA")
)

// CandidateStore returns the universities satisfying f. Implementations must
// not return candidates that fail f.Matches.
type CandidateStore interface {
	FindCandidates(ctx context.Context, f *Filter) ([]models.University, error)
}

// ProfileStore loads what is known about a user. UserProfile returns
// ErrSubjectNotFound for unknown users; the optional profiles return nil, nil
// when absent.
type ProfileStore interface {
	UserProfile(ctx context.Context, userID string) (*models.UserProfile, error)
	AcademicProfile(ctx context.Context, userID string) (*models.AcademicProfile, error)
	FinancialProfile(ctx context.Context, userID string) (*models.FinancialProfile, error)
}

type Engine struct {
	config     Config
	candidates CandidateStore
	profiles   ProfileStore
	scorers    Scorers
	normalizer *Normalizer
	logger     logger.Logger
}

func NewEngine(cfg Config, candidates CandidateStore, profiles ProfileStore, log logger.Logger) *Engine {
	cfg = cfg.withDefaults()
	return &Engine{
		config:     cfg,
		candidates: candidates,
		profiles:   profiles,
		scorers:    DefaultScorers(),
		normalizer: NewNormalizer(cfg, log),
		logger:     log,
	}
}

// FindMatches scores the catalog against an explicit profile and returns the
// best matches, capped at the configured match limit.
func (e *Engine) FindMatches(ctx context.Context, req *models.MatchRequest) ([]models.MatchResult, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: match request is required", ErrInvalidCriteria)
	}

	candidates, err := e.candidates.FindCandidates(ctx, &Filter{})
	if err != nil {
		return nil, fmt.Errorf("find candidates: %w", err)
	}
	if req.StrictMatch {
		candidates = ApplyDealbreakers(candidates, DealbreakersFromRequest(req))
	}

	weights := NormalizeImportance(req.ImportanceFactors, e.config.Weights)
	results := e.scoreAll(candidates, req, nil, weights)
	metrics.CandidatesEvaluated.WithLabelValues("find_matches").Add(float64(len(results)))

	Rank(results, models.SortMatchPercentage)
	return e.top(results), nil
}

// RecommendUniversities builds a profile from stored user data and returns
// the best matches after onboarding relevance filtering.
func (e *Engine) RecommendUniversities(ctx context.Context, userID string) ([]models.MatchResult, error) {
	user, err := e.profiles.UserProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user %s", ErrSubjectNotFound, userID)
	}

	academic, financial, err := e.optionalProfiles(ctx, userID)
	if err != nil {
		return nil, err
	}

	req := RecommendationRequest(user, academic, financial)

	candidates, err := e.candidates.FindCandidates(ctx, &Filter{})
	if err != nil {
		return nil, fmt.Errorf("find candidates: %w", err)
	}

	if !hasExplicitPreferences(req) {
		before := len(candidates)
		candidates = OnboardingFilter(candidates, OnboardingSignals{
			Major:       req.PreferredMajor,
			FocusArea:   user.FocusArea,
			PersonaRole: user.PersonaRole,
		})
		e.logger.Debug("onboarding relevance filter applied", map[string]interface{}{
			"userId": userID,
			"before": before,
			"after":  len(candidates),
		})
	}

	weights := NormalizeImportance(req.ImportanceFactors, e.config.Weights)
	results := e.scoreAll(candidates, req, academic, weights)
	metrics.CandidatesEvaluated.WithLabelValues("recommend").Add(float64(len(results)))

	Rank(results, models.SortMatchPercentage)
	return e.top(results), nil
}

// SearchUniversities runs the full discovery pipeline: filter, score, rank,
// tier gate and paginate, in that order.
func (e *Engine) SearchUniversities(ctx context.Context, criteria *models.DiscoveryCriteria, tier models.AccessTier, anonymous bool) (*models.DiscoveryResponse, error) {
	if criteria == nil {
		criteria = e.normalizer.DefaultCriteria()
	}
	if err := ValidateCriteria(criteria); err != nil {
		return nil, err
	}

	filter := FilterFromCriteria(criteria)
	candidates, err := e.candidates.FindCandidates(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find candidates: %w", err)
	}
	if criteria.StrictFiltering {
		candidates = ApplyDealbreakers(candidates, DealbreakersFromCriteria(criteria))
	}

	req := RequestFromCriteria(criteria)
	if req != nil && !criteria.ReachSchoolsIncluded() {
		candidates = excludeReachSchools(candidates, req)
	}

	weights := WeightsFromCriteria(criteria.Weights, e.config.Weights)
	results := e.scoreAll(candidates, req, nil, weights)
	metrics.CandidatesEvaluated.WithLabelValues("search").Add(float64(len(results)))

	Rank(results, criteria.SortBy)

	visible, restriction := Gate{Cap: e.config.FreeTierCap}.Apply(results, tier, anonymous)
	if restriction != nil {
		metrics.ResultsRestricted.WithLabelValues(restriction.Reason).Inc()
	}

	page, limit := normalizePage(criteria.Page, criteria.Limit, e.config.DefaultPageSize, e.config.MaxPageSize)
	pageResults, pagination := Paginate(visible, page, limit, restriction != nil)

	return &models.DiscoveryResponse{
		SearchID:   uuid.New().String(),
		Results:    pageResults,
		Pagination: pagination,
		Filters:    models.AppliedFilters{Applied: filter.AppliedCount()},
		Restricted: restriction,
	}, nil
}

// InitialCriteria derives a starting criteria set for userID. Unknown users
// get the defaults.
func (e *Engine) InitialCriteria(ctx context.Context, userID string) (*models.DiscoveryCriteria, error) {
	user, err := e.profiles.UserProfile(ctx, userID)
	if err != nil && !errors.Is(err, ErrSubjectNotFound) {
		return nil, err
	}
	if errors.Is(err, ErrSubjectNotFound) {
		e.logger.Info("user profile not found, using defaults", map[string]interface{}{"userId": userID})
		user = nil
	}

	academic, financial, err := e.optionalProfiles(ctx, userID)
	if err != nil {
		return nil, err
	}
	return e.normalizer.Normalize(userID, user, academic, financial), nil
}

func (e *Engine) optionalProfiles(ctx context.Context, userID string) (*models.AcademicProfile, *models.FinancialProfile, error) {
	academic, err := e.profiles.AcademicProfile(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("load academic profile: %w", err)
	}
	financial, err := e.profiles.FinancialProfile(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("load financial profile: %w", err)
	}
	return academic, financial, nil
}

func (e *Engine) scoreAll(candidates []models.University, req *models.MatchRequest, academic *models.AcademicProfile, weights Weights) []models.MatchResult {
	results := make([]models.MatchResult, 0, len(candidates))
	for i := range candidates {
		results = append(results, e.scoreOne(&candidates[i], req, academic, weights))
	}
	return results
}

func (e *Engine) scoreOne(u *models.University, req *models.MatchRequest, academic *models.AcademicProfile, weights Weights) models.MatchResult {
	scores := neutralScores()
	reasons := []string{}
	if req != nil {
		var r []string
		scores, r = e.scorers.ScoreAll(&Subject{University: u, Request: req, Academic: academic})
		reasons = append(reasons, r...)
	}

	percentage, breakdown := Aggregate(scores, weights)
	return models.MatchResult{
		University:      *u,
		MatchPercentage: percentage,
		Breakdown: models.CategoryBreakdown{
			Academic:  roundInt(scores.Academic),
			Financial: roundInt(scores.Financial),
			Social:    roundInt(scores.Social),
			Location:  roundInt(scores.Location),
			Future:    roundInt(scores.Future),
		},
		ScoreBreakdown: breakdown,
		Reasons:        reasons,
	}
}

func (e *Engine) top(results []models.MatchResult) []models.MatchResult {
	if len(results) > e.config.MatchLimit {
		return results[:e.config.MatchLimit]
	}
	return results
}

func excludeReachSchools(candidates []models.University, req *models.MatchRequest) []models.University {
	out := make([]models.University, 0, len(candidates))
	for i := range candidates {
		if !IsReachSchool(&candidates[i], req) {
			out = append(out, candidates[i])
		}
	}
	return out
}
