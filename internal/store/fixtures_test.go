package store

import (
	"database/sql"
	"errors"
	"testing"

	commonerrors "unimatch/internal/common/errors"
	"unimatch/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func f64(v float64) *float64 { return &v }

func intp(v int) *int { return &v }

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

var universityColumnNames = []string{
	"id", "name", "country", "state", "city", "setting", "climate", "ranking", "acceptance_rate",
	"avg_gpa", "min_gpa", "avg_sat", "avg_act", "popular_majors",
	"tuition_out_state", "tuition_international", "avg_grant_aid",
	"student_life_score", "diversity_score", "party_scene_rating", "safety_rating",
	"employment_rate", "alumni_network", "internship_support", "visa_duration_months",
}

func universityRows() *sqlmock.Rows {
	return sqlmock.NewRows(universityColumnNames).
		AddRow(
			"uni-research", "Northfield Institute of Technology", "USA", "MA", "Cambridge", "Urban", "Cold winters", int64(5), 0.07,
			3.9, 3.5, int64(1500), int64(34), `{Physics,"Computer Science"}`,
			60000.0, 62000.0, 10000.0,
			4.5, 0.8, 3.0, 4.5,
			0.95, 5.0, 5.0, int64(36),
		).
		AddRow(
			"uni-community", "Lakeshore Community College", "USA", "OH", "Toledo", "Suburban", nil, nil, 0.8,
			3.0, 2.5, int64(1100), nil, `{Business,Nursing}`,
			15000.0, nil, 2000.0,
			3.0, nil, nil, 3.0,
			0.6, nil, nil, nil,
		)
}

func catalogUniversities() []models.University {
	return []models.University{
		{
			ID:      "uni-halifax",
			Name:    "Harbourview University",
			Country: "Canada",
			City:    "Halifax",
			Setting: models.SettingUrban,
			Academics: models.AcademicStats{
				AvgGPA:        f64(3.4),
				PopularMajors: []string{"Marine Biology"},
			},
			Financials: models.FinancialStats{TuitionOutState: f64(28000)},
		},
		{
			ID:      "uni-boston",
			Name:    "Boston Polytechnic",
			Country: "USA",
			State:   "MA",
			City:    "Boston",
			Setting: models.SettingUrban,
			Academics: models.AcademicStats{
				AvgGPA:        f64(3.7),
				PopularMajors: []string{"Engineering"},
			},
			Financials: models.FinancialStats{TuitionOutState: f64(52000)},
		},
	}
}

func assertErrorCode(t *testing.T, err error, code commonerrors.ErrorCode) {
	t.Helper()
	var stdErr *commonerrors.StandardError
	require.True(t, errors.As(err, &stdErr), "expected StandardError, got %v", err)
	assert.Equal(t, code, stdErr.Code)
}
