// internal/matching/scoring.go
package matching

import (
	"math"
	"strings"

	"unimatch/internal/models"
)

// Subject is one candidate evaluated against one profile. Academic is optional
// enrichment and may be nil.
type Subject struct {
	University *models.University
	Request    *models.MatchRequest
	Academic   *models.AcademicProfile
}

// Rule is a single named adjustment. Apply returns the new running score and
// whether the rule fired; a rule that did not fire must leave the score alone.
type Rule struct {
	Name   string
	Reason string
	Apply  func(s *Subject, score float64) (float64, bool)
}

type Scorer struct {
	Category string
	Baseline func(s *Subject) float64
	Rules    []Rule
}

// Score runs every rule in order and clamps the result to [0,100]. Reasons are
// collected from rules that raised the score by a noticeable amount.
func (sc Scorer) Score(s *Subject) (float64, []string) {
	score := sc.Baseline(s)
	var reasons []string
	for _, rule := range sc.Rules {
		next, fired := rule.Apply(s, score)
		if !fired {
			continue
		}
		if rule.Reason != "" && next-score >= minReasonDelta {
			reasons = append(reasons, rule.Reason)
		}
		score = next
	}
	return clamp(score, 0, 100), reasons
}

type Scorers struct {
	Academic  Scorer
	Financial Scorer
	Social    Scorer
	Location  Scorer
	Future    Scorer
}

func DefaultScorers() Scorers {
	return Scorers{
		Academic:  AcademicScorer,
		Financial: FinancialScorer,
		Social:    SocialScorer,
		Location:  LocationScorer,
		Future:    FutureScorer,
	}
}

func (s Scorers) ScoreAll(subject *Subject) (CategoryScores, []string) {
	var reasons []string
	collect := func(sc Scorer) float64 {
		score, r := sc.Score(subject)
		reasons = append(reasons, r...)
		return score
	}
	scores := CategoryScores{
		Academic:  collect(s.Academic),
		Financial: collect(s.Financial),
		Social:    collect(s.Social),
		Location:  collect(s.Location),
		Future:    collect(s.Future),
	}
	return scores, reasons
}

func fixed(v float64) func(*Subject) float64 {
	return func(*Subject) float64 { return v }
}

// ==========================
// Academic
// ==========================

var AcademicScorer = Scorer{
	Category: "academic",
	Baseline: fixed(70),
	Rules: []Rule{
		{
			Name:   "gpa_meets_average",
			Reason: "Your GPA meets or exceeds the average admitted GPA",
			Apply: func(s *Subject, score float64) (float64, bool) {
				if gpaMeetsAverage(s) {
					return score + 25, true
				}
				return score, false
			},
		},
		{
			Name:   "gpa_meets_minimum",
			Reason: "Your GPA clears the minimum admitted GPA",
			Apply: func(s *Subject, score float64) (float64, bool) {
				if !gpaMeetsAverage(s) && gpaMeetsMinimum(s) {
					return score + 15, true
				}
				return score, false
			},
		},
		{
			Name: "gpa_reach",
			Apply: func(s *Subject, score float64) (float64, bool) {
				if isGPAReach(s) {
					return score - 20, true
				}
				return score, false
			},
		},
		{
			Name:   "sat_above_average",
			Reason: "Your SAT score is at or above the average",
			Apply:  testBand(satBand, bandAbove, 15),
		},
		{
			Name:   "sat_near_average",
			Reason: "Your SAT score is within 100 points of the average",
			Apply:  testBand(satBand, bandNear, 5),
		},
		{
			Name:  "sat_below_average",
			Apply: testBand(satBand, bandBelow, -15),
		},
		{
			Name:   "act_above_average",
			Reason: "Your ACT score is at or above the average",
			Apply:  testBand(actBand, bandAbove, 15),
		},
		{
			Name:   "act_near_average",
			Reason: "Your ACT score is within 2 points of the average",
			Apply:  testBand(actBand, bandNear, 5),
		},
		{
			Name:  "act_below_average",
			Apply: testBand(actBand, bandBelow, -15),
		},
		{
			Name:   "major_match",
			Reason: "Offers your preferred major",
			Apply: func(s *Subject, score float64) (float64, bool) {
				if majorOffered(s.Request.PreferredMajor, s.University.Academics.PopularMajors) {
					return score + 25, true
				}
				return score, false
			},
		},
		{
			Name:   "secondary_major_match",
			Reason: "Also offers your secondary major",
			Apply: func(s *Subject, score float64) (float64, bool) {
				if majorOffered(secondaryMajor(s), s.University.Academics.PopularMajors) {
					return score + 10, true
				}
				return score, false
			},
		},
		{
			Name:   "honors",
			Reason: "Academic honors strengthen your application",
			Apply: func(s *Subject, score float64) (float64, bool) {
				if s.Academic == nil || len(s.Academic.Honors) == 0 {
					return score, false
				}
				bonus := math.Min(float64(2*len(s.Academic.Honors)), 10)
				for _, h := range s.Academic.Honors {
					if h.Level == models.HonorLevelNational || h.Level == models.HonorLevelInternational {
						bonus += 3
					}
				}
				return score + bonus, true
			},
		},
		{
			Name: "extracurriculars",
			Apply: func(s *Subject, score float64) (float64, bool) {
				if s.Academic == nil || len(s.Academic.Extracurriculars) == 0 {
					return score, false
				}
				return score + math.Min(float64(len(s.Academic.Extracurriculars)), 5), true
			},
		},
		{
			Name:   "ap_exams",
			Reason: "Strong AP exam record",
			Apply: func(s *Subject, score float64) (float64, bool) {
				if s.Academic == nil || len(s.Academic.APExams) == 0 {
					return score, false
				}
				bonus := math.Min(float64(2*len(s.Academic.APExams)), 10)
				perfect := 0
				for _, exam := range s.Academic.APExams {
					if exam.Score >= 5 {
						perfect++
					}
				}
				bonus += math.Min(float64(perfect), 5)
				return score + bonus, true
			},
		},
	},
}

func gpaMeetsAverage(s *Subject) bool {
	gpa, avg := s.Request.GPA, s.University.Academics.AvgGPA
	return gpa != nil && avg != nil && *avg <= *gpa+floatTolerance
}

func gpaMeetsMinimum(s *Subject) bool {
	gpa, minGPA := s.Request.GPA, s.University.Academics.MinGPA
	return gpa != nil && minGPA != nil && *minGPA <= *gpa+floatTolerance
}

func isGPAReach(s *Subject) bool {
	if gpaMeetsAverage(s) || gpaMeetsMinimum(s) {
		return false
	}
	gpa, avg := s.Request.GPA, s.University.Academics.AvgGPA
	return gpa != nil && avg != nil && *gpa <= *avg-0.5+floatTolerance
}

type band int

const (
	bandNone band = iota
	bandAbove
	bandNear
	bandBelow
)

func scoreBand(have, avg *int, window int) band {
	if have == nil || avg == nil {
		return bandNone
	}
	switch {
	case *have >= *avg:
		return bandAbove
	case *have >= *avg-window:
		return bandNear
	default:
		return bandBelow
	}
}

func satBand(s *Subject) band {
	return scoreBand(s.Request.SAT, s.University.Academics.AvgSAT, 100)
}

func actBand(s *Subject) band {
	return scoreBand(s.Request.ACT, s.University.Academics.AvgACT, 2)
}

func testBand(of func(*Subject) band, want band, delta float64) func(*Subject, float64) (float64, bool) {
	return func(s *Subject, score float64) (float64, bool) {
		if of(s) == want {
			return score + delta, true
		}
		return score, false
	}
}

func secondaryMajor(s *Subject) string {
	if s.Request.SecondaryMajor != "" {
		return s.Request.SecondaryMajor
	}
	if s.Academic != nil {
		return s.Academic.SecondaryMajor
	}
	return ""
}

// IsReachSchool reports whether u's academic bar sits clearly above the profile.
func IsReachSchool(u *models.University, req *models.MatchRequest) bool {
	if req == nil {
		return false
	}
	s := &Subject{University: u, Request: req}
	return isGPAReach(s) || satBand(s) == bandBelow
}

// ==========================
// Financial
// ==========================

var FinancialScorer = Scorer{
	Category: "financial",
	Baseline: fixed(NeutralScore),
	Rules: []Rule{
		{
			Name:   "sticker_price_covered",
			Reason: "Tuition fits within your budget",
			Apply: func(s *Subject, score float64) (float64, bool) {
				budget, tuition, _, ok := financialInputs(s)
				if ok && budget >= tuition {
					return 100, true
				}
				return score, false
			},
		},
		{
			Name:   "net_cost_covered",
			Reason: "Affordable after average grant aid",
			Apply: func(s *Subject, score float64) (float64, bool) {
				budget, tuition, net, ok := financialInputs(s)
				if ok && budget < tuition && budget >= net {
					return 85, true
				}
				return score, false
			},
		},
		{
			Name: "budget_shortfall",
			Apply: func(s *Subject, score float64) (float64, bool) {
				budget, _, net, ok := financialInputs(s)
				if ok && budget < net {
					return math.Max(0, 100-(net-budget)/1000), true
				}
				return score, false
			},
		},
	},
}

func financialInputs(s *Subject) (budget, tuition, net float64, ok bool) {
	if s.Request.MaxBudget == nil {
		return 0, 0, 0, false
	}
	t := EffectiveTuition(s.University, s.Request.PreferredCountry)
	if t == nil {
		return 0, 0, 0, false
	}
	tuition = *t
	net = tuition
	if aid := s.University.Financials.AvgGrantAid; aid != nil {
		net -= *aid
	}
	return *s.Request.MaxBudget, tuition, net, true
}

// EffectiveTuition is the international rate when the candidate sits outside
// the requested country, otherwise the out-of-state rate.
func EffectiveTuition(u *models.University, requestedCountry string) *float64 {
	f := u.Financials
	if requestedCountry != "" && !strings.EqualFold(strings.TrimSpace(requestedCountry), strings.TrimSpace(u.Country)) &&
		f.TuitionInternational != nil {
		return f.TuitionInternational
	}
	return f.TuitionOutState
}

// ==========================
// Social
// ==========================

var SocialScorer = Scorer{
	Category: "social",
	Baseline: func(s *Subject) float64 {
		if life := s.University.Social.StudentLifeScore; life != nil {
			return *life * 20
		}
		return 50
	},
	Rules: []Rule{
		{
			Name:   "diversity_target",
			Reason: "Student body diversity is close to your preference",
			Apply: func(s *Subject, score float64) (float64, bool) {
				target, div := s.Request.PreferredDiversity, s.University.Social.DiversityScore
				if target == nil || div == nil {
					return score, false
				}
				fit := 100 - math.Abs(*div-*target)*100
				return 0.5*score + 0.5*fit, true
			},
		},
		{
			Name:   "diversity_bonus",
			Reason: "Highly diverse student body",
			Apply: func(s *Subject, score float64) (float64, bool) {
				div := s.University.Social.DiversityScore
				if s.Request.PreferredDiversity == nil && div != nil && *div > 0.7 {
					return score + 5, true
				}
				return score, false
			},
		},
		{
			Name:   "safety",
			Reason: "Strong campus safety record",
			Apply: func(s *Subject, score float64) (float64, bool) {
				safety := s.University.Social.SafetyRating
				if safety == nil {
					return score, false
				}
				return 0.7*score + 0.3*(*safety*20), true
			},
		},
		{
			Name:   "party_scene",
			Reason: "Lively social scene",
			Apply: func(s *Subject, score float64) (float64, bool) {
				party := s.University.Social.PartySceneRating
				if party == nil {
					return score, false
				}
				return 0.8*score + 0.2*(*party*20), true
			},
		},
	},
}

// ==========================
// Location
// ==========================

var LocationScorer = Scorer{
	Category: "location",
	Baseline: fixed(80),
	Rules: []Rule{
		{
			Name:   "setting_match",
			Reason: "Matches your preferred campus setting",
			Apply: func(s *Subject, score float64) (float64, bool) {
				pref, have := s.Request.PreferredSetting, string(s.University.Setting)
				if pref != "" && have != "" && strings.EqualFold(pref, have) {
					return score + 20, true
				}
				return score, false
			},
		},
		{
			Name: "setting_mismatch",
			Apply: func(s *Subject, score float64) (float64, bool) {
				pref, have := s.Request.PreferredSetting, string(s.University.Setting)
				if pref != "" && have != "" && !strings.EqualFold(pref, have) {
					return score - 20, true
				}
				return score, false
			},
		},
		{
			Name:   "climate_match",
			Reason: "Matches your preferred climate",
			Apply: func(s *Subject, score float64) (float64, bool) {
				if containsEither(s.Request.PreferredClimate, s.University.Climate) {
					return score + 20, true
				}
				return score, false
			},
		},
	},
}

// ==========================
// Future
// ==========================

var FutureScorer = Scorer{
	Category: "future",
	Baseline: fixed(50),
	Rules: []Rule{
		{
			Name:   "employment_rate",
			Reason: "Strong graduate employment rate",
			Apply: func(s *Subject, score float64) (float64, bool) {
				rate := s.University.Outcomes.EmploymentRate
				if rate == nil {
					return score, false
				}
				return score + 0.33*(*rate*100), true
			},
		},
		{
			Name:   "alumni_network",
			Reason: "Well-connected alumni network",
			Apply: func(s *Subject, score float64) (float64, bool) {
				alumni := s.University.Outcomes.AlumniNetwork
				if alumni == nil {
					return score, false
				}
				return score + 0.33*(*alumni/5*100), true
			},
		},
		{
			Name:   "internship_support",
			Reason: "Good internship support",
			Apply: func(s *Subject, score float64) (float64, bool) {
				support := s.University.Outcomes.InternshipSupport
				if support == nil {
					return score, false
				}
				return score + 0.33*(*support/5*100), true
			},
		},
		{
			Name:   "visa_requirement_met",
			Reason: "Post-study visa meets your requirement",
			Apply: func(s *Subject, score float64) (float64, bool) {
				if visaRequirementMet(s) {
					return score + 20, true
				}
				return score, false
			},
		},
		{
			Name:   "long_visa_duration",
			Reason: "Post-study visa of at least 24 months",
			Apply: func(s *Subject, score float64) (float64, bool) {
				months := s.University.Outcomes.VisaDurationMonths
				if !visaRequirementMet(s) && months != nil && *months >= 24 {
					return score + 10, true
				}
				return score, false
			},
		},
	},
}

func visaRequirementMet(s *Subject) bool {
	months := s.University.Outcomes.VisaDurationMonths
	if !s.Request.NeedsVisaSupport || months == nil {
		return false
	}
	required := 0
	if s.Request.MinVisaMonths != nil {
		required = *s.Request.MinVisaMonths
	}
	return *months >= required
}

// ==========================
// Text helpers
// ==========================

func containsEither(a, b string) bool {
	a, b = strings.ToLower(strings.TrimSpace(a)), strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

func majorOffered(major string, offered []string) bool {
	for _, m := range offered {
		if containsEither(major, m) {
			return true
		}
	}
	return false
}
