// internal/matching/request.go
package matching

import (
	"fmt"
	"math"

	"unimatch/internal/models"
)

// recommendationFactors weight a recommendation once the academic profile is known.
var recommendationFactors = models.ImportanceFactors{
	Academics: 8,
	Cost:      6,
	Social:    3,
	Location:  3,
	Future:    4,
}

// RecommendationRequest builds the synthetic match request used for
// recommendations. Structured profiles win over the legacy user fields.
func RecommendationRequest(user *models.UserProfile, academic *models.AcademicProfile, financial *models.FinancialProfile) *models.MatchRequest {
	req := &models.MatchRequest{}
	if user != nil {
		req.GPA, req.SAT, req.ACT = user.GPA, user.SAT, user.ACT
		req.PreferredMajor = legacyMajor(user)
		req.PreferredCountry = user.PreferredCountry
		req.PreferredSetting = user.PreferredSetting
		req.PreferredClimate = user.PreferredClimate
		req.MaxBudget = user.MaxBudget
	}

	if academic != nil {
		if academic.GPA != nil {
			req.GPA = academic.GPA
		}
		if academic.SATTotal != nil {
			req.SAT = academic.SATTotal
		}
		if academic.ACTComposite != nil {
			req.ACT = academic.ACTComposite
		}
		if majors := defaultMajors(user, academic); len(majors) > 0 {
			req.PreferredMajor = majors[0]
		}
		req.SecondaryMajor = academic.SecondaryMajor
		factors := recommendationFactors
		req.ImportanceFactors = &factors
	}

	if financial != nil && financial.MaxBudget != nil {
		req.MaxBudget = financial.MaxBudget
	}
	return req
}

// RequestFromCriteria derives the scoring profile of a discovery search. It
// returns nil when the criteria carry no user profile, which scores every
// category neutrally.
func RequestFromCriteria(c *models.DiscoveryCriteria) *models.MatchRequest {
	if c == nil || c.UserProfile == nil {
		return nil
	}
	p := c.UserProfile
	req := &models.MatchRequest{
		GPA:            p.GPA,
		SAT:            p.SAT,
		ACT:            p.ACT,
		PreferredMajor: p.PreferredMajor,
		MaxBudget:      p.MaxBudget,
		StrictMatch:    c.StrictFiltering,
	}
	if c.Location != nil {
		req.PreferredCountry = c.Location.Country
		if settings := nonEmpty(c.Location.Settings); len(settings) == 1 {
			req.PreferredSetting = settings[0]
		}
		if climates := nonEmpty(c.Location.Climates); len(climates) == 1 {
			req.PreferredClimate = climates[0]
		}
	}
	if c.Social != nil {
		req.MinSafetyRating = c.Social.MinSafetyRating
	}
	if c.Future != nil {
		req.NeedsVisaSupport = c.Future.NeedsVisaSupport
		req.MinVisaMonths = c.Future.MinVisaMonths
	}
	return req
}

// ValidateCriteria rejects ranges whose lower bound exceeds the upper bound.
func ValidateCriteria(c *models.DiscoveryCriteria) error {
	if c == nil {
		return nil
	}
	if a := c.Academics; a != nil {
		if err := checkFloatRange("academics.gpa", a.MinGPA, a.MaxGPA); err != nil {
			return err
		}
		if err := checkIntRange("academics.sat", a.MinSAT, a.MaxSAT); err != nil {
			return err
		}
		if err := checkIntRange("academics.act", a.MinACT, a.MaxACT); err != nil {
			return err
		}
	}
	if f := c.Financials; f != nil {
		if err := checkFloatRange("financials.tuition", f.MinTuition, f.MaxTuition); err != nil {
			return err
		}
	}
	if s := c.Social; s != nil {
		if err := checkFloatRange("social.safetyRating", s.MinSafetyRating, s.MaxSafetyRating); err != nil {
			return err
		}
		if err := checkFloatRange("social.diversity", s.MinDiversity, s.MaxDiversity); err != nil {
			return err
		}
		if err := checkFloatRange("social.partyScene", s.MinPartyScene, s.MaxPartyScene); err != nil {
			return err
		}
	}
	return nil
}

func checkFloatRange(field string, lo, hi *float64) error {
	if lo != nil && hi != nil && *lo > *hi {
		return fmt.Errorf("%w: %s min %.2f exceeds max %.2f", ErrInvalidCriteria, field, *lo, *hi)
	}
	return nil
}

func checkIntRange(field string, lo, hi *int) error {
	if lo != nil && hi != nil && *lo > *hi {
		return fmt.Errorf("%w: %s min %d exceeds max %d", ErrInvalidCriteria, field, *lo, *hi)
	}
	return nil
}

func roundInt(v float64) int {
	return int(math.Round(clamp(v, 0, 100)))
}
