// internal/workers/matching/recommend-universities/handler_test.go
package recommenduniversities

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	commonerrors "unimatch/internal/common/errors"
	"unimatch/internal/common/logger"
	"unimatch/internal/matching"
	"unimatch/internal/models"
	"unimatch/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func f64(v float64) *float64 { return &v }

type profileFixture struct {
	users    map[string]*models.UserProfile
	academic map[string]*models.AcademicProfile
	err      error
}

func (p *profileFixture) UserProfile(_ context.Context, userID string) (*models.UserProfile, error) {
	if p.err != nil {
		return nil, p.err
	}
	u, ok := p.users[userID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", matching.ErrSubjectNotFound, userID)
	}
	return u, nil
}

func (p *profileFixture) AcademicProfile(_ context.Context, userID string) (*models.AcademicProfile, error) {
	return p.academic[userID], nil
}

func (p *profileFixture) FinancialProfile(context.Context, string) (*models.FinancialProfile, error) {
	return nil, nil
}

func testCatalog() []models.University {
	return []models.University{
		{
			ID: "uni-arts", Name: "Meridian School of Art", Country: "USA",
			Academics: models.AcademicStats{AvgGPA: f64(3.2), PopularMajors: []string{"Fine Arts", "Design"}},
		},
		{
			ID: "uni-engineering", Name: "Ridgeway Technical University", Country: "USA",
			Academics: models.AcademicStats{AvgGPA: f64(3.7), PopularMajors: []string{"Mechanical Engineering", "Computer Science"}},
		},
		{
			ID: "uni-medicine", Name: "Bayview Health Sciences", Country: "USA",
			Academics: models.AcademicStats{AvgGPA: f64(3.8), PopularMajors: []string{"Nursing", "Biology"}},
		},
	}
}

func createTestHandler(t *testing.T, profiles *profileFixture) *Handler {
	engine := matching.NewEngine(matching.DefaultConfig(), store.NewMemoryCatalog(testCatalog()), profiles, logger.NewTestLogger(t))
	return NewHandler(&Config{Timeout: 5 * time.Second}, engine, nil, nil, logger.NewTestLogger(t))
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_Success(t *testing.T) {
	profiles := &profileFixture{
		users: map[string]*models.UserProfile{
			"user-1": {ID: "user-1", GPA: f64(3.6), PreferredMajor: "Computer Science"},
		},
	}
	handler := createTestHandler(t, profiles)

	output, err := handler.Execute(context.Background(), &Input{UserID: "user-1"})
	require.NoError(t, err)

	require.NotEmpty(t, output.Recommendations)
	assert.Equal(t, len(output.Recommendations), output.RecommendationCount)
	assert.Equal(t, "uni-engineering", output.Recommendations[0].University.ID)
}

func TestHandler_Execute_AcademicProfileIsOptional(t *testing.T) {
	profiles := &profileFixture{
		users: map[string]*models.UserProfile{"user-2": {ID: "user-2"}},
		academic: map[string]*models.AcademicProfile{
			"user-2": {UserID: "user-2", GPA: f64(3.9), GPAScale: 4, PrimaryMajor: "Biology"},
		},
	}
	handler := createTestHandler(t, profiles)

	output, err := handler.Execute(context.Background(), &Input{UserID: "user-2"})
	require.NoError(t, err)
	require.NotEmpty(t, output.Recommendations)
	assert.Equal(t, "uni-medicine", output.Recommendations[0].University.ID)
	assert.LessOrEqual(t, output.RecommendationCount, matching.DefaultMatchLimit)
}

// ==========================
// Error Handling Tests
// ==========================

func TestHandler_Execute_Errors(t *testing.T) {
	tests := []struct {
		name          string
		input         *Input
		profiles      *profileFixture
		expectedCode  commonerrors.ErrorCode
		expectedRetry bool
	}{
		{
			name:         "missing user id",
			input:        &Input{},
			profiles:     &profileFixture{},
			expectedCode: commonerrors.ErrCodeInvalidInput,
		},
		{
			name:         "unknown user",
			input:        &Input{UserID: "ghost"},
			profiles:     &profileFixture{users: map[string]*models.UserProfile{}},
			expectedCode: commonerrors.ErrCodeSubjectNotFound,
		},
		{
			name:          "profile store unavailable",
			input:         &Input{UserID: "user-1"},
			profiles:      &profileFixture{err: commonerrors.NewProfileLookupFailedError("user-1", errors.New("connection refused"))},
			expectedCode:  commonerrors.ErrCodeProfileLookupFailed,
			expectedRetry: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := createTestHandler(t, tt.profiles)

			_, err := handler.Execute(context.Background(), tt.input)
			require.Error(t, err)

			stdErr := commonerrors.Normalize(err)
			assert.Equal(t, tt.expectedCode, stdErr.Code)
			assert.Equal(t, tt.expectedRetry, stdErr.Retryable)
		})
	}
}

func TestHandler_UnknownUserIsNotRetried(t *testing.T) {
	handler := createTestHandler(t, &profileFixture{users: map[string]*models.UserProfile{}})

	_, err := handler.Execute(context.Background(), &Input{UserID: "ghost"})
	bpmnErr := commonerrors.ConvertToBPMNError(commonerrors.Normalize(err))

	assert.Equal(t, "SUBJECT_NOT_FOUND", bpmnErr.Code)
	assert.Zero(t, bpmnErr.Retries)
}
