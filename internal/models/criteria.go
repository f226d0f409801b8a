package models

type SortKey string

const (
	SortMatchPercentage SortKey = "matchPercentage"
	SortTuitionAsc      SortKey = "tuition_asc"
	SortTuitionDesc     SortKey = "tuition_desc"
	SortRankingAsc      SortKey = "ranking_asc"
	SortRankingDesc     SortKey = "ranking_desc"
	SortAcceptanceAsc   SortKey = "acceptanceRate_asc"
	SortAcceptanceDesc  SortKey = "acceptanceRate_desc"
	SortNameAsc         SortKey = "name_asc"
	SortNameDesc        SortKey = "name_desc"
)

// DiscoveryCriteria groups are pointers: nil means the caller never sent the
// group, an empty struct means it was sent without constraints.
type DiscoveryCriteria struct {
	Search              string            `json:"search,omitempty"`
	Academics           *AcademicFilters  `json:"academics,omitempty"`
	Financials          *FinancialFilters `json:"financials,omitempty"`
	Location            *LocationFilters  `json:"location,omitempty"`
	Social              *SocialFilters    `json:"social,omitempty"`
	Future              *FutureFilters    `json:"future,omitempty"`
	UserProfile         *CriteriaProfile  `json:"userProfile,omitempty"`
	Weights             *CriteriaWeights  `json:"weights,omitempty"`
	SortBy              SortKey           `json:"sortBy,omitempty"`
	Page                int               `json:"page,omitempty"`
	Limit               int               `json:"limit,omitempty"`
	IncludeReachSchools *bool             `json:"includeReachSchools,omitempty"`
	StrictFiltering     bool              `json:"strictFiltering"`
}

func (c *DiscoveryCriteria) ReachSchoolsIncluded() bool {
	return c.IncludeReachSchools == nil || *c.IncludeReachSchools
}

type AcademicFilters struct {
	MinGPA *float64 `json:"minGpa,omitempty"`
	MaxGPA *float64 `json:"maxGpa,omitempty"`
	MinSAT *int     `json:"minSat,omitempty"`
	MaxSAT *int     `json:"maxSat,omitempty"`
	MinACT *int     `json:"minAct,omitempty"`
	MaxACT *int     `json:"maxAct,omitempty"`
	Majors []string `json:"majors,omitempty"`
}

type FinancialFilters struct {
	MinTuition  *float64 `json:"minTuition,omitempty"`
	MaxTuition  *float64 `json:"maxTuition,omitempty"`
	MaxNetCost  *float64 `json:"maxNetCost,omitempty"`
	MinGrantAid *float64 `json:"minGrantAid,omitempty"`
}

type LocationFilters struct {
	Country  string   `json:"country,omitempty"`
	State    string   `json:"state,omitempty"`
	City     string   `json:"city,omitempty"`
	Settings []string `json:"settings,omitempty"`
	Climates []string `json:"climates,omitempty"`
}

type SocialFilters struct {
	MinSafetyRating *float64 `json:"minSafetyRating,omitempty"`
	MaxSafetyRating *float64 `json:"maxSafetyRating,omitempty"`
	MinDiversity    *float64 `json:"minDiversity,omitempty"`
	MaxDiversity    *float64 `json:"maxDiversity,omitempty"`
	MinPartyScene   *float64 `json:"minPartyScene,omitempty"`
	MaxPartyScene   *float64 `json:"maxPartyScene,omitempty"`
}

type FutureFilters struct {
	MinEmploymentRate    *float64 `json:"minEmploymentRate,omitempty"`
	MinAlumniNetwork     *float64 `json:"minAlumniNetwork,omitempty"`
	MinInternshipSupport *float64 `json:"minInternshipSupport,omitempty"`
	MinVisaMonths        *int     `json:"minVisaMonths,omitempty"`
	NeedsVisaSupport     bool     `json:"needsVisaSupport,omitempty"`
}

type CriteriaProfile struct {
	GPA            *float64 `json:"gpa,omitempty"`
	SAT            *int     `json:"sat,omitempty"`
	ACT            *int     `json:"act,omitempty"`
	PreferredMajor string   `json:"preferredMajor,omitempty"`
	MaxBudget      *float64 `json:"maxBudget,omitempty"`
}

type CriteriaWeights struct {
	Academic  int `json:"academic"`
	Financial int `json:"financial"`
	Location  int `json:"location"`
	Social    int `json:"social"`
	Future    int `json:"future"`
}
