// internal/models/match.go
package models

type AccessTier string

const (
	TierFree       AccessTier = "free"
	TierBasic      AccessTier = "basic"
	TierPremium    AccessTier = "premium"
	TierEnterprise AccessTier = "enterprise"
	TierAdmin      AccessTier = "admin"
)

const (
	RestrictionAnonymous = "anonymous_user"
	RestrictionFreeTier  = "free_tier"
)

type CategoryBreakdown struct {
	Academic  int `json:"academic"`
	Financial int `json:"financial"`
	Social    int `json:"social"`
	Location  int `json:"location"`
	Future    int `json:"future"`
}

type CategoryScoreView struct {
	Score        float64 `json:"score"`
	Weight       int     `json:"weight"`
	Contribution float64 `json:"contribution"`
}

type ScoreBreakdown struct {
	Academic  CategoryScoreView `json:"academic"`
	Financial CategoryScoreView `json:"financial"`
	Social    CategoryScoreView `json:"social"`
	Location  CategoryScoreView `json:"location"`
	Future    CategoryScoreView `json:"future"`
	Total     float64           `json:"total"`
}

type MatchResult struct {
	University      University        `json:"university"`
	MatchPercentage int               `json:"matchPercentage"`
	Breakdown       CategoryBreakdown `json:"breakdown"`
	ScoreBreakdown  ScoreBreakdown    `json:"scoreBreakdown"`
	Reasons         []string          `json:"reasons"`
}

type Pagination struct {
	CurrentPage     int  `json:"currentPage"`
	TotalPages      int  `json:"totalPages"`
	TotalResults    int  `json:"totalResults"`
	Limit           int  `json:"limit"`
	HasNextPage     bool `json:"hasNextPage"`
	HasPreviousPage bool `json:"hasPreviousPage"`
}

type Restriction struct {
	Reason      string `json:"reason"`
	ActualTotal int    `json:"actualTotal"`
	Showing     int    `json:"showing"`
}

type AppliedFilters struct {
	Applied int `json:"applied"`
}

type DiscoveryResponse struct {
	SearchID   string         `json:"searchId"`
	Results    []MatchResult  `json:"results"`
	Pagination Pagination     `json:"pagination"`
	Filters    AppliedFilters `json:"filters"`
	Restricted *Restriction   `json:"restricted,omitempty"`
}
