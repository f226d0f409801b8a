package matching

import (
	"context"
	"testing"

	"unimatch/internal/common/logger"
	"unimatch/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

func f64(v float64) *float64 { return &v }

func intp(v int) *int { return &v }

func boolp(v bool) *bool { return &v }

// researchUniversity is selective, expensive and strong on outcomes.
func researchUniversity() models.University {
	return models.University{
		ID:             "uni-research",
		Name:           "Northfield Institute of Technology",
		Country:        "USA",
		State:          "MA",
		City:           "Cambridge",
		Setting:        models.SettingUrban,
		Climate:        "Cold winters",
		Ranking:        intp(5),
		AcceptanceRate: f64(0.07),
		Academics: models.AcademicStats{
			AvgGPA:        f64(3.9),
			MinGPA:        f64(3.5),
			AvgSAT:        intp(1500),
			AvgACT:        intp(34),
			PopularMajors: []string{"Physics", "Computer Science", "Mathematics"},
		},
		Financials: models.FinancialStats{
			TuitionOutState:      f64(60000),
			TuitionInternational: f64(62000),
			AvgGrantAid:          f64(10000),
		},
		Social: models.SocialStats{
			StudentLifeScore: f64(4.5),
			DiversityScore:   f64(0.8),
			PartySceneRating: f64(3),
			SafetyRating:     f64(4.5),
		},
		Outcomes: models.OutcomeStats{
			EmploymentRate:     f64(0.95),
			AlumniNetwork:      f64(5),
			InternshipSupport:  f64(5),
			VisaDurationMonths: intp(36),
		},
	}
}

// communityCollege is cheap and open with modest outcomes.
func communityCollege() models.University {
	return models.University{
		ID:             "uni-community",
		Name:           "Lakeside State College",
		Country:        "USA",
		State:          "OH",
		City:           "Toledo",
		Setting:        models.SettingSuburban,
		Climate:        "Temperate",
		Ranking:        intp(250),
		AcceptanceRate: f64(0.8),
		Academics: models.AcademicStats{
			AvgGPA:        f64(3.0),
			MinGPA:        f64(2.5),
			AvgSAT:        intp(1100),
			AvgACT:        intp(22),
			PopularMajors: []string{"Business", "Nursing"},
		},
		Financials: models.FinancialStats{
			TuitionOutState: f64(15000),
			AvgGrantAid:     f64(2000),
		},
		Social: models.SocialStats{
			StudentLifeScore: f64(3),
			DiversityScore:   f64(0.5),
			PartySceneRating: f64(3),
			SafetyRating:     f64(3),
		},
		Outcomes: models.OutcomeStats{
			EmploymentRate:    f64(0.6),
			AlumniNetwork:     f64(2),
			InternshipSupport: f64(2),
		},
	}
}

// sparseUniversity knows almost nothing about itself.
func sparseUniversity() models.University {
	return models.University{
		ID:      "uni-sparse",
		Name:    "Hollow Pines University",
		Country: "Canada",
		City:    "Halifax",
	}
}

func numberedCatalog(n int) []models.University {
	out := make([]models.University, 0, n)
	for i := 0; i < n; i++ {
		u := communityCollege()
		u.ID = "uni-" + string(rune('a'+i/26)) + string(rune('a'+i%26))
		u.Name = "College " + u.ID
		u.Financials.TuitionOutState = f64(float64(10000 + i*1000))
		out = append(out, u)
	}
	return out
}

type memoryCandidates struct {
	universities []models.University
	err          error
	lastFilter   *Filter
}

func (m *memoryCandidates) FindCandidates(_ context.Context, f *Filter) ([]models.University, error) {
	m.lastFilter = f
	if m.err != nil {
		return nil, m.err
	}
	return f.Apply(m.universities), nil
}

type memoryProfiles struct {
	users     map[string]*models.UserProfile
	academic  map[string]*models.AcademicProfile
	financial map[string]*models.FinancialProfile
	err       error
}

func (m *memoryProfiles) UserProfile(_ context.Context, userID string) (*models.UserProfile, error) {
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.users[userID]
	if !ok {
		return nil, ErrSubjectNotFound
	}
	return u, nil
}

func (m *memoryProfiles) AcademicProfile(_ context.Context, userID string) (*models.AcademicProfile, error) {
	return m.academic[userID], nil
}

func (m *memoryProfiles) FinancialProfile(_ context.Context, userID string) (*models.FinancialProfile, error) {
	return m.financial[userID], nil
}

func newTestEngine(t *testing.T, catalog []models.University, profiles *memoryProfiles) *Engine {
	if profiles == nil {
		profiles = &memoryProfiles{}
	}
	return NewEngine(DefaultConfig(), &memoryCandidates{universities: catalog}, profiles, logger.NewTestLogger(t))
}
