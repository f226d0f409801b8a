// internal/matching/normalizer.go
package matching

import (
	"math"
	"strings"

	"unimatch/internal/common/logger"
	"unimatch/internal/models"
)

const (
	gpaSpread = 0.3
	satSpread = 150
	actSpread = 3
	satFloor  = 400
	satCeil   = 1600
	actFloor  = 1
	actCeil   = 36
)

// Normalizer derives a starting DiscoveryCriteria from whatever profile data exists.
type Normalizer struct {
	config Config
	logger logger.Logger
}

func NewNormalizer(cfg Config, log logger.Logger) *Normalizer {
	return &Normalizer{
		config: cfg.withDefaults(),
		logger: log,
	}
}

// DefaultCriteria is the criteria set used when nothing is known about the user.
func (n *Normalizer) DefaultCriteria() *models.DiscoveryCriteria {
	include := true
	return &models.DiscoveryCriteria{
		Weights:             CriteriaWeightsFrom(n.config.Weights),
		SortBy:              models.SortMatchPercentage,
		Page:                1,
		Limit:               n.config.DefaultPageSize,
		IncludeReachSchools: &include,
		StrictFiltering:     false,
	}
}

// Normalize never fails: any of user, academic and financial may be nil.
func (n *Normalizer) Normalize(userID string, user *models.UserProfile, academic *models.AcademicProfile, financial *models.FinancialProfile) *models.DiscoveryCriteria {
	criteria := n.DefaultCriteria()
	log := n.logger.WithFields(map[string]interface{}{"userId": userID})

	if user == nil && academic == nil && financial == nil {
		log.Info("no profile data, using default criteria", nil)
		return criteria
	}
	if academic == nil {
		log.Info("academic profile not found, falling back to legacy fields", nil)
	}
	if financial == nil {
		log.Info("financial profile not found, falling back to legacy fields", nil)
	}

	if academic != nil {
		criteria.Academics = academicRanges(academic)
	}
	if majors := defaultMajors(user, academic); len(majors) > 0 {
		if criteria.Academics == nil {
			criteria.Academics = &models.AcademicFilters{}
		}
		criteria.Academics.Majors = majors
	}

	if financial != nil && financial.MaxBudget != nil {
		budget := *financial.MaxBudget
		maxTuition, maxNet := budget, budget
		criteria.Financials = &models.FinancialFilters{
			MaxTuition: &maxTuition,
			MaxNetCost: &maxNet,
		}
	}

	criteria.UserProfile = scoringProfile(user, academic, financial)
	return criteria
}

func academicRanges(a *models.AcademicProfile) *models.AcademicFilters {
	f := &models.AcademicFilters{}
	if a.GPA != nil {
		scale := a.GPAScale
		if scale <= 0 {
			scale = defaultGPAScale
		}
		lo := round2(clamp(*a.GPA-gpaSpread, 0, scale))
		hi := round2(clamp(*a.GPA+gpaSpread, 0, scale))
		f.MinGPA, f.MaxGPA = &lo, &hi
	}
	if a.SATTotal != nil {
		lo, hi := clampInt(*a.SATTotal-satSpread, satFloor, satCeil), clampInt(*a.SATTotal+satSpread, satFloor, satCeil)
		f.MinSAT, f.MaxSAT = &lo, &hi
	}
	if a.ACTComposite != nil {
		lo, hi := clampInt(*a.ACTComposite-actSpread, actFloor, actCeil), clampInt(*a.ACTComposite+actSpread, actFloor, actCeil)
		f.MinACT, f.MaxACT = &lo, &hi
	}
	return f
}

func defaultMajors(user *models.UserProfile, academic *models.AcademicProfile) []string {
	if academic != nil && strings.TrimSpace(academic.PrimaryMajor) != "" {
		return []string{strings.TrimSpace(academic.PrimaryMajor)}
	}
	if major := legacyMajor(user); major != "" {
		return []string{major}
	}
	return nil
}

func legacyMajor(user *models.UserProfile) string {
	if user == nil {
		return ""
	}
	major := strings.TrimSpace(user.PreferredMajor)
	if strings.EqualFold(major, models.UndeclaredMajor) {
		return ""
	}
	return major
}

func scoringProfile(user *models.UserProfile, academic *models.AcademicProfile, financial *models.FinancialProfile) *models.CriteriaProfile {
	p := &models.CriteriaProfile{}
	if user != nil {
		p.GPA, p.SAT, p.ACT = user.GPA, user.SAT, user.ACT
		p.MaxBudget = user.MaxBudget
	}
	if academic != nil {
		if academic.GPA != nil {
			p.GPA = academic.GPA
		}
		if academic.SATTotal != nil {
			p.SAT = academic.SATTotal
		}
		if academic.ACTComposite != nil {
			p.ACT = academic.ACTComposite
		}
	}
	if majors := defaultMajors(user, academic); len(majors) > 0 {
		p.PreferredMajor = majors[0]
	}
	if financial != nil && financial.MaxBudget != nil {
		p.MaxBudget = financial.MaxBudget
	}
	return p
}

func clampInt(v, lo, hi int) int {
	return int(math.Max(float64(lo), math.Min(float64(hi), float64(v))))
}
