// internal/matching/onboarding.go
package matching

import (
	"strings"
	"unicode"

	"unimatch/internal/models"
)

// OnboardingSignals are the weak hints known about a user before they state
// explicit preferences.
type OnboardingSignals struct {
	Major       string
	FocusArea   string
	PersonaRole string
}

func (s OnboardingSignals) Empty() bool {
	return strings.TrimSpace(s.Major) == "" &&
		len(focusKeywords(s.FocusArea)) == 0 &&
		len(personaHeuristics[normalizePersona(s.PersonaRole)]) == 0
}

type personaCheck func(u *models.University) bool

var personaHeuristics = map[string][]personaCheck{
	"international_student": {
		func(u *models.University) bool { return atLeastInt(u.Outcomes.VisaDurationMonths, 12) },
		func(u *models.University) bool { return u.Financials.TuitionInternational != nil },
	},
	"budget_conscious": {
		func(u *models.University) bool { return atMost(u.Financials.TuitionOutState, 30000) },
		func(u *models.University) bool { return atLeast(u.Financials.AvgGrantAid, 15000) },
	},
	"career_focused": {
		func(u *models.University) bool { return atLeast(u.Outcomes.EmploymentRate, 0.85) },
		func(u *models.University) bool { return atLeast(u.Outcomes.InternshipSupport, 4) },
	},
	"researcher": {
		func(u *models.University) bool { return u.Ranking != nil && *u.Ranking <= 100 },
		func(u *models.University) bool { return atLeast(u.Outcomes.AlumniNetwork, 4) },
	},
	"social_explorer": {
		func(u *models.University) bool { return atLeast(u.Social.StudentLifeScore, 4) },
		func(u *models.University) bool { return atLeast(u.Social.PartySceneRating, 3.5) },
	},
	"transfer_student": {
		func(u *models.University) bool { return atLeast(u.AcceptanceRate, 0.5) },
	},
}

var focusStopWords = map[string]bool{
	"and": true, "the": true, "for": true, "with": true, "studies": true,
}

// RelevanceTally scores u against the onboarding signals: +3 for the major,
// +2 for a focus-area keyword and +1 per satisfied persona heuristic.
func RelevanceTally(u *models.University, s OnboardingSignals) int {
	tally := 0
	if majorOffered(s.Major, u.Academics.PopularMajors) {
		tally += 3
	}
	if matchesFocus(u, focusKeywords(s.FocusArea)) {
		tally += 2
	}
	for _, check := range personaHeuristics[normalizePersona(s.PersonaRole)] {
		if check(u) {
			tally++
		}
	}
	return tally
}

// OnboardingFilter keeps candidates with a positive relevance tally. With no
// usable signal every candidate is kept.
func OnboardingFilter(candidates []models.University, s OnboardingSignals) []models.University {
	if s.Empty() {
		return candidates
	}
	out := make([]models.University, 0, len(candidates))
	for i := range candidates {
		if RelevanceTally(&candidates[i], s) > 0 {
			out = append(out, candidates[i])
		}
	}
	return out
}

// hasExplicitPreferences is true when the user already told us what they want,
// in which case onboarding relevance is skipped.
func hasExplicitPreferences(r *models.MatchRequest) bool {
	return r.StrictMatch ||
		r.PreferredCountry != "" ||
		r.PreferredSetting != "" ||
		r.PreferredClimate != ""
}

func focusKeywords(focus string) []string {
	words := strings.FieldsFunc(strings.ToLower(focus), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	var out []string
	for _, w := range words {
		if len(w) >= 3 && !focusStopWords[w] {
			out = append(out, w)
		}
	}
	return out
}

func matchesFocus(u *models.University, keywords []string) bool {
	name := strings.ToLower(u.Name)
	for _, k := range keywords {
		if strings.Contains(name, k) {
			return true
		}
		for _, m := range u.Academics.PopularMajors {
			if strings.Contains(strings.ToLower(m), k) {
				return true
			}
		}
	}
	return false
}

func normalizePersona(role string) string {
	role = strings.ToLower(strings.TrimSpace(role))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(role)
}

func atLeast(v *float64, floor float64) bool { return v != nil && *v >= floor }

func atMost(v *float64, ceiling float64) bool { return v != nil && *v <= ceiling }

func atLeastInt(v *int, floor int) bool { return v != nil && *v >= floor }
