// internal/models/profile.go
package models

// UndeclaredMajor is the legacy placeholder stored for users who never picked a major.
const UndeclaredMajor = "Undeclared"

type ImportanceFactors struct {
	Academics int `json:"academics"`
	Cost      int `json:"cost"`
	Social    int `json:"social"`
	Location  int `json:"location"`
	Future    int `json:"future"`
}

type MatchRequest struct {
	GPA                *float64           `json:"gpa,omitempty"`
	SAT                *int               `json:"sat,omitempty"`
	ACT                *int               `json:"act,omitempty"`
	PreferredMajor     string             `json:"preferredMajor,omitempty"`
	SecondaryMajor     string             `json:"secondaryMajor,omitempty"`
	PreferredCountry   string             `json:"preferredCountry,omitempty"`
	PreferredSetting   string             `json:"preferredSetting,omitempty"`
	PreferredClimate   string             `json:"preferredClimate,omitempty"`
	PreferredDiversity *float64           `json:"preferredDiversity,omitempty"`
	MinSafetyRating    *float64           `json:"minSafetyRating,omitempty"`
	MaxBudget          *float64           `json:"maxBudget,omitempty"`
	NeedsVisaSupport   bool               `json:"needsVisaSupport,omitempty"`
	MinVisaMonths      *int               `json:"minVisaMonths,omitempty"`
	StrictMatch        bool               `json:"strictMatch,omitempty"`
	ImportanceFactors  *ImportanceFactors `json:"importanceFactors,omitempty"`
}

type HonorLevel string

const (
	HonorLevelSchool        HonorLevel = "school"
	HonorLevelState         HonorLevel = "state"
	HonorLevelNational      HonorLevel = "national"
	HonorLevelInternational HonorLevel = "international"
)

type Honor struct {
	Title string     `json:"title"`
	Level HonorLevel `json:"level"`
}

type Extracurricular struct {
	Name string `json:"name"`
	Role string `json:"role,omitempty"`
}

type APExam struct {
	Subject string `json:"subject"`
	Score   int    `json:"score"`
}

type AcademicProfile struct {
	UserID           string            `json:"userId"`
	GPA              *float64          `json:"gpa,omitempty"`
	GPAScale         float64           `json:"gpaScale,omitempty"`
	SATTotal         *int              `json:"satTotal,omitempty"`
	ACTComposite     *int              `json:"actComposite,omitempty"`
	PrimaryMajor     string            `json:"primaryMajor,omitempty"`
	SecondaryMajor   string            `json:"secondaryMajor,omitempty"`
	Honors           []Honor           `json:"honors,omitempty"`
	Extracurriculars []Extracurricular `json:"extracurriculars,omitempty"`
	APExams          []APExam          `json:"apExams,omitempty"`
}

type FinancialProfile struct {
	UserID    string   `json:"userId"`
	MaxBudget *float64 `json:"maxBudget,omitempty"`
}

// UserProfile is the legacy flat record kept on the users table.
type UserProfile struct {
	ID               string   `json:"id"`
	GPA              *float64 `json:"gpa,omitempty"`
	SAT              *int     `json:"sat,omitempty"`
	ACT              *int     `json:"act,omitempty"`
	PreferredMajor   string   `json:"preferredMajor,omitempty"`
	MaxBudget        *float64 `json:"maxBudget,omitempty"`
	PreferredCountry string   `json:"preferredCountry,omitempty"`
	PreferredSetting string   `json:"preferredSetting,omitempty"`
	PreferredClimate string   `json:"preferredClimate,omitempty"`
	FocusArea        string   `json:"focusArea,omitempty"`
	PersonaRole      string   `json:"personaRole,omitempty"`
}
