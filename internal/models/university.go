// internal/models/university.go
package models

type Setting string

const (
	SettingUrban    Setting = "Urban"
	SettingSuburban Setting = "Suburban"
	SettingRural    Setting = "Rural"
)

type University struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Country        string         `json:"country"`
	State          string         `json:"state,omitempty"`
	City           string         `json:"city,omitempty"`
	Setting        Setting        `json:"setting,omitempty"`
	Climate        string         `json:"climate,omitempty"`
	Ranking        *int           `json:"ranking,omitempty"`
	AcceptanceRate *float64       `json:"acceptanceRate,omitempty"`
	Academics      AcademicStats  `json:"academics"`
	Financials     FinancialStats `json:"financials"`
	Social         SocialStats    `json:"social"`
	Outcomes       OutcomeStats   `json:"outcomes"`
}

type AcademicStats struct {
	AvgGPA        *float64 `json:"avgGpa,omitempty"`
	MinGPA        *float64 `json:"minGpa,omitempty"`
	AvgSAT        *int     `json:"avgSat,omitempty"`
	AvgACT        *int     `json:"avgAct,omitempty"`
	PopularMajors []string `json:"popularMajors,omitempty"`
}

type FinancialStats struct {
	TuitionOutState      *float64 `json:"tuitionOutState,omitempty"`
	TuitionInternational *float64 `json:"tuitionInternational,omitempty"`
	AvgGrantAid          *float64 `json:"avgGrantAid,omitempty"`
}

type SocialStats struct {
	StudentLifeScore *float64 `json:"studentLifeScore,omitempty"`
	DiversityScore   *float64 `json:"diversityScore,omitempty"`
	PartySceneRating *float64 `json:"partySceneRating,omitempty"`
	SafetyRating     *float64 `json:"safetyRating,omitempty"`
}

type OutcomeStats struct {
	EmploymentRate     *float64 `json:"employmentRate,omitempty"`
	AlumniNetwork      *float64 `json:"alumniNetwork,omitempty"`
	InternshipSupport  *float64 `json:"internshipSupport,omitempty"`
	VisaDurationMonths *int     `json:"visaDurationMonths,omitempty"`
}
