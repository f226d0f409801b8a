// internal/matching/filter.go
package matching

import (
	"strings"

	"unimatch/internal/models"
)

// Filter is the structural candidate predicate handed to a CandidateStore.
// Stores may push parts of it down to their backend but must still honor
// Matches for the final result.
type Filter struct {
	Search string `json:"search,omitempty"`

	Country string `json:"country,omitempty"`
	State   string `json:"state,omitempty"`
	City    string `json:"city,omitempty"`

	MinGPA *float64 `json:"minGpa,omitempty"`
	MaxGPA *float64 `json:"maxGpa,omitempty"`
	MinSAT *int     `json:"minSat,omitempty"`
	MaxSAT *int     `json:"maxSat,omitempty"`
	MinACT *int     `json:"minAct,omitempty"`
	MaxACT *int     `json:"maxAct,omitempty"`
	Majors []string `json:"majors,omitempty"`

	MinTuition  *float64 `json:"minTuition,omitempty"`
	MaxTuition  *float64 `json:"maxTuition,omitempty"`
	MaxNetCost  *float64 `json:"maxNetCost,omitempty"`
	MinGrantAid *float64 `json:"minGrantAid,omitempty"`

	Settings []string `json:"settings,omitempty"`
	Climates []string `json:"climates,omitempty"`

	MinSafety     *float64 `json:"minSafety,omitempty"`
	MaxSafety     *float64 `json:"maxSafety,omitempty"`
	MinDiversity  *float64 `json:"minDiversity,omitempty"`
	MaxDiversity  *float64 `json:"maxDiversity,omitempty"`
	MinPartyScene *float64 `json:"minPartyScene,omitempty"`
	MaxPartyScene *float64 `json:"maxPartyScene,omitempty"`

	MinEmploymentRate    *float64 `json:"minEmploymentRate,omitempty"`
	MinAlumniNetwork     *float64 `json:"minAlumniNetwork,omitempty"`
	MinInternshipSupport *float64 `json:"minInternshipSupport,omitempty"`
	MinVisaMonths        *int     `json:"minVisaMonths,omitempty"`
}

func FilterFromCriteria(c *models.DiscoveryCriteria) *Filter {
	f := &Filter{}
	if c == nil {
		return f
	}
	f.Search = strings.TrimSpace(c.Search)

	if a := c.Academics; a != nil {
		f.MinGPA, f.MaxGPA = a.MinGPA, a.MaxGPA
		f.MinSAT, f.MaxSAT = a.MinSAT, a.MaxSAT
		f.MinACT, f.MaxACT = a.MinACT, a.MaxACT
		f.Majors = nonEmpty(a.Majors)
	}
	if fin := c.Financials; fin != nil {
		f.MinTuition, f.MaxTuition = fin.MinTuition, fin.MaxTuition
		f.MaxNetCost = fin.MaxNetCost
		f.MinGrantAid = fin.MinGrantAid
	}
	if l := c.Location; l != nil {
		f.Country = strings.TrimSpace(l.Country)
		f.State = strings.TrimSpace(l.State)
		f.City = strings.TrimSpace(l.City)
		f.Settings = nonEmpty(l.Settings)
		f.Climates = nonEmpty(l.Climates)
	}
	if s := c.Social; s != nil {
		f.MinSafety, f.MaxSafety = s.MinSafetyRating, s.MaxSafetyRating
		f.MinDiversity, f.MaxDiversity = s.MinDiversity, s.MaxDiversity
		f.MinPartyScene, f.MaxPartyScene = s.MinPartyScene, s.MaxPartyScene
	}
	if fu := c.Future; fu != nil {
		f.MinEmploymentRate = fu.MinEmploymentRate
		f.MinAlumniNetwork = fu.MinAlumniNetwork
		f.MinInternshipSupport = fu.MinInternshipSupport
		f.MinVisaMonths = fu.MinVisaMonths
	}
	return f
}

// AppliedCount is the number of individual constraints the filter carries.
func (f *Filter) AppliedCount() int {
	if f == nil {
		return 0
	}
	n := 0
	for _, s := range []string{f.Search, f.Country, f.State, f.City} {
		if s != "" {
			n++
		}
	}
	for _, p := range []*float64{
		f.MinGPA, f.MaxGPA, f.MinTuition, f.MaxTuition, f.MaxNetCost, f.MinGrantAid,
		f.MinSafety, f.MaxSafety, f.MinDiversity, f.MaxDiversity, f.MinPartyScene, f.MaxPartyScene,
		f.MinEmploymentRate, f.MinAlumniNetwork, f.MinInternshipSupport,
	} {
		if p != nil {
			n++
		}
	}
	for _, p := range []*int{f.MinSAT, f.MaxSAT, f.MinACT, f.MaxACT, f.MinVisaMonths} {
		if p != nil {
			n++
		}
	}
	for _, l := range [][]string{f.Majors, f.Settings, f.Climates} {
		if len(l) > 0 {
			n++
		}
	}
	return n
}

// Matches reports whether u satisfies every constraint on f. A candidate that
// lacks an attribute a bound is placed on does not match.
func (f *Filter) Matches(u *models.University) bool {
	if f == nil {
		return true
	}
	if f.Search != "" && !matchesSearch(u, f.Search) {
		return false
	}
	if !equalIfSet(f.Country, u.Country) || !equalIfSet(f.State, u.State) || !equalIfSet(f.City, u.City) {
		return false
	}

	a := u.Academics
	if !floatInRange(a.AvgGPA, f.MinGPA, f.MaxGPA) ||
		!intInRange(a.AvgSAT, f.MinSAT, f.MaxSAT) ||
		!intInRange(a.AvgACT, f.MinACT, f.MaxACT) {
		return false
	}
	if len(f.Majors) > 0 && !anyMajorOffered(f.Majors, a.PopularMajors) {
		return false
	}

	fin := u.Financials
	if !floatInRange(fin.TuitionOutState, f.MinTuition, f.MaxTuition) ||
		!floatInRange(fin.AvgGrantAid, f.MinGrantAid, nil) {
		return false
	}
	if f.MaxNetCost != nil {
		net := netCost(u)
		if net == nil || *net > *f.MaxNetCost {
			return false
		}
	}

	if len(f.Settings) > 0 && !equalsAny(string(u.Setting), f.Settings) {
		return false
	}
	if len(f.Climates) > 0 && !containsAny(u.Climate, f.Climates) {
		return false
	}

	s := u.Social
	if !floatInRange(s.SafetyRating, f.MinSafety, f.MaxSafety) ||
		!floatInRange(s.DiversityScore, f.MinDiversity, f.MaxDiversity) ||
		!floatInRange(s.PartySceneRating, f.MinPartyScene, f.MaxPartyScene) {
		return false
	}

	o := u.Outcomes
	return floatInRange(o.EmploymentRate, f.MinEmploymentRate, nil) &&
		floatInRange(o.AlumniNetwork, f.MinAlumniNetwork, nil) &&
		floatInRange(o.InternshipSupport, f.MinInternshipSupport, nil) &&
		intInRange(o.VisaDurationMonths, f.MinVisaMonths, nil)
}

// Apply returns the candidates that satisfy f, preserving order.
func (f *Filter) Apply(candidates []models.University) []models.University {
	out := make([]models.University, 0, len(candidates))
	for i := range candidates {
		if f.Matches(&candidates[i]) {
			out = append(out, candidates[i])
		}
	}
	return out
}

func matchesSearch(u *models.University, search string) bool {
	q := strings.ToLower(search)
	for _, field := range []string{u.Name, u.City, u.Country} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	for _, m := range u.Academics.PopularMajors {
		if strings.Contains(strings.ToLower(m), q) {
			return true
		}
	}
	return false
}

func netCost(u *models.University) *float64 {
	if u.Financials.TuitionOutState == nil {
		return nil
	}
	net := *u.Financials.TuitionOutState
	if aid := u.Financials.AvgGrantAid; aid != nil {
		net -= *aid
	}
	return &net
}

func equalIfSet(want, have string) bool {
	return want == "" || strings.EqualFold(want, strings.TrimSpace(have))
}

func equalsAny(have string, wants []string) bool {
	for _, w := range wants {
		if strings.EqualFold(strings.TrimSpace(w), have) {
			return true
		}
	}
	return false
}

func containsAny(have string, wants []string) bool {
	for _, w := range wants {
		if containsEither(w, have) {
			return true
		}
	}
	return false
}

func anyMajorOffered(wanted, offered []string) bool {
	for _, w := range wanted {
		if majorOffered(w, offered) {
			return true
		}
	}
	return false
}

func floatInRange(v, lo, hi *float64) bool {
	if lo == nil && hi == nil {
		return true
	}
	if v == nil {
		return false
	}
	if lo != nil && *v < *lo-floatTolerance {
		return false
	}
	return hi == nil || *v <= *hi+floatTolerance
}

func intInRange(v, lo, hi *int) bool {
	if lo == nil && hi == nil {
		return true
	}
	if v == nil {
		return false
	}
	if lo != nil && *v < *lo {
		return false
	}
	return hi == nil || *v <= *hi
}

func nonEmpty(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// ==========================
// Strict dealbreakers
// ==========================

// Dealbreakers are hard exclusions applied only under strict matching.
type Dealbreakers struct {
	MaxBudget        *float64
	RequestedCountry string
	NeedsVisaSupport bool
	MinVisaMonths    *int
	MinSafetyRating  *float64
}

func DealbreakersFromRequest(r *models.MatchRequest) Dealbreakers {
	if r == nil {
		return Dealbreakers{}
	}
	return Dealbreakers{
		MaxBudget:        r.MaxBudget,
		RequestedCountry: r.PreferredCountry,
		NeedsVisaSupport: r.NeedsVisaSupport,
		MinVisaMonths:    r.MinVisaMonths,
		MinSafetyRating:  r.MinSafetyRating,
	}
}

func DealbreakersFromCriteria(c *models.DiscoveryCriteria) Dealbreakers {
	var d Dealbreakers
	if c == nil {
		return d
	}
	if c.UserProfile != nil {
		d.MaxBudget = c.UserProfile.MaxBudget
	}
	if c.Location != nil {
		d.RequestedCountry = c.Location.Country
	}
	if c.Future != nil {
		d.NeedsVisaSupport = c.Future.NeedsVisaSupport
		d.MinVisaMonths = c.Future.MinVisaMonths
	}
	if c.Social != nil {
		d.MinSafetyRating = c.Social.MinSafetyRating
	}
	return d
}

// Allows reports whether u survives every dealbreaker. Unknown attributes
// cannot be shown to satisfy a hard limit and are excluded.
func (d Dealbreakers) Allows(u *models.University) bool {
	if d.MaxBudget != nil {
		tuition := EffectiveTuition(u, d.RequestedCountry)
		if tuition == nil || *tuition > *d.MaxBudget {
			return false
		}
	}
	if d.NeedsVisaSupport && d.MinVisaMonths != nil {
		months := u.Outcomes.VisaDurationMonths
		if months == nil || *months < *d.MinVisaMonths {
			return false
		}
	}
	if d.MinSafetyRating != nil {
		safety := u.Social.SafetyRating
		if safety == nil || *safety < *d.MinSafetyRating {
			return false
		}
	}
	return true
}

func ApplyDealbreakers(candidates []models.University, d Dealbreakers) []models.University {
	out := make([]models.University, 0, len(candidates))
	for i := range candidates {
		if d.Allows(&candidates[i]) {
			out = append(out, candidates[i])
		}
	}
	return out
}
