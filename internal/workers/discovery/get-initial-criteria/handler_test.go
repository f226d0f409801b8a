// internal/workers/discovery/get-initial-criteria/handler_test.go
package getinitialcriteria

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

func intp(v int) *int { return &v }

type profileFixture struct {
	users     map[string]*models.UserProfile
	academic  map[string]*models.AcademicProfile
	financial map[string]*models.FinancialProfile
	err       error
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

func (p *profileFixture) FinancialProfile(_ context.Context, userID string) (*models.FinancialProfile, error) {
	return p.financial[userID], nil
}

func createTestHandler(t *testing.T, profiles *profileFixture) *Handler {
	engine := matching.NewEngine(matching.DefaultConfig(), store.NewMemoryCatalog(nil), profiles, logger.NewTestLogger(t))
	return NewHandler(LoadConfig(), engine, nil, nil, logger.NewTestLogger(t))
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_DerivesRangesFromAcademicProfile(t *testing.T) {
	profiles := &profileFixture{
		users: map[string]*models.UserProfile{"user-1": {ID: "user-1", PreferredMajor: "History"}},
		academic: map[string]*models.AcademicProfile{
			"user-1": {UserID: "user-1", GPA: f64(3.8), GPAScale: 4, SATTotal: intp(1450), PrimaryMajor: "Economics"},
		},
		financial: map[string]*models.FinancialProfile{
			"user-1": {UserID: "user-1", MaxBudget: f64(40000)},
		},
	}
	handler := createTestHandler(t, profiles)

	output, err := handler.Execute(context.Background(), &Input{UserID: "user-1"})
	require.NoError(t, err)

	c := output.Criteria
	require.NotNil(t, c.Academics)
	assert.Equal(t, 3.5, *c.Academics.MinGPA)
	assert.Equal(t, 4.0, *c.Academics.MaxGPA)
	assert.Equal(t, 1300, *c.Academics.MinSAT)
	assert.Equal(t, 1600, *c.Academics.MaxSAT)
	assert.Equal(t, []string{"Economics"}, c.Academics.Majors)

	require.NotNil(t, c.Financials)
	assert.Equal(t, 40000.0, *c.Financials.MaxTuition)
	assert.Equal(t, 40000.0, *c.Financials.MaxNetCost)

	assert.Equal(t, models.SortMatchPercentage, c.SortBy)
	assert.Equal(t, 1, c.Page)
	assert.Equal(t, matching.DefaultPageSize, c.Limit)
	assert.True(t, c.ReachSchoolsIncluded())
	assert.False(t, c.StrictFiltering)
}

func TestHandler_Execute_LegacyMajorWithoutAcademicProfile(t *testing.T) {
	profiles := &profileFixture{
		users: map[string]*models.UserProfile{"user-2": {ID: "user-2", PreferredMajor: "Philosophy"}},
	}
	handler := createTestHandler(t, profiles)

	output, err := handler.Execute(context.Background(), &Input{UserID: "user-2"})
	require.NoError(t, err)

	require.NotNil(t, output.Criteria.Academics)
	assert.Nil(t, output.Criteria.Academics.MinGPA)
	assert.Equal(t, []string{"Philosophy"}, output.Criteria.Academics.Majors)
	assert.Nil(t, output.Criteria.Financials)
}

func TestHandler_Execute_UnknownUserGetsDefaults(t *testing.T) {
	handler := createTestHandler(t, &profileFixture{})

	output, err := handler.Execute(context.Background(), &Input{UserID: "ghost"})
	require.NoError(t, err)

	c := output.Criteria
	assert.Nil(t, c.Academics)
	assert.Nil(t, c.Financials)
	assert.Nil(t, c.UserProfile)
	require.NotNil(t, c.Weights)
	assert.Equal(t, 40, c.Weights.Academic)
	assert.Equal(t, 30, c.Weights.Financial)
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
			name:          "profile lookup fails",
			input:         &Input{UserID: "user-1"},
			profiles:      &profileFixture{err: commonerrors.NewProfileLookupFailedError("user-1", errors.New("too many connections"))},
			expectedCode:  commonerrors.ErrCodeProfileLookupFailed,
			expectedRetry: true,
		},
		{
			name:          "profile lookup times out",
			input:         &Input{UserID: "user-1"},
			profiles:      &profileFixture{err: commonerrors.NewQueryTimeoutError("profile_lookup")},
			expectedCode:  commonerrors.ErrCodeQueryTimeout,
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

func TestLoadConfig(t *testing.T) {
	assert.Equal(t, 10*time.Second, LoadConfig().Timeout)
}
