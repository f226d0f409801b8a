package store

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	commonerrors "unimatch/internal/common/errors"
	"unimatch/internal/common/logger"
	"unimatch/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var subscriptionColumns = []string{"user_id", "tier", "expires_at", "is_valid"}

func TestSubscriptionStore_ResolveTier(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-24 * time.Hour)
	future := now.Add(30 * 24 * time.Hour)

	tests := []struct {
		name     string
		rows     *sqlmock.Rows
		expected models.AccessTier
	}{
		{
			name:     "no subscription row",
			rows:     sqlmock.NewRows(subscriptionColumns),
			expected: models.TierFree,
		},
		{
			name:     "active premium",
			rows:     sqlmock.NewRows(subscriptionColumns).AddRow("user-1", "premium", future, true),
			expected: models.TierPremium,
		},
		{
			name:     "open ended enterprise",
			rows:     sqlmock.NewRows(subscriptionColumns).AddRow("user-1", "enterprise", nil, true),
			expected: models.TierEnterprise,
		},
		{
			name:     "tier is normalised",
			rows:     sqlmock.NewRows(subscriptionColumns).AddRow("user-1", " Premium ", nil, true),
			expected: models.TierPremium,
		},
		{
			name:     "expired premium",
			rows:     sqlmock.NewRows(subscriptionColumns).AddRow("user-1", "premium", past, true),
			expected: models.TierFree,
		},
		{
			name:     "invalidated subscription",
			rows:     sqlmock.NewRows(subscriptionColumns).AddRow("user-1", "premium", future, false),
			expected: models.TierFree,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := setupMockDB(t)
			store := NewSubscriptionStore(db, nil, 0, logger.NewTestLogger(t))
			store.now = func() time.Time { return now }

			mock.ExpectQuery(`SELECT user_id, tier, expires_at, is_valid FROM user_subscriptions WHERE user_id = \$1`).
				WithArgs("user-1").
				WillReturnRows(tt.rows)

			tier, err := store.ResolveTier(context.Background(), "user-1")
			require.NoError(t, err)
			assert.Equal(t, tt.expected, tier)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestSubscriptionStore_ResolveTier_CachesRow(t *testing.T) {
	db, mock := setupMockDB(t)
	rdb, redisMock := redismock.NewClientMock()
	store := NewSubscriptionStore(db, rdb, 5*time.Minute, logger.NewTestLogger(t))

	expires := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	sub := Subscription{UserID: "user-1", Tier: "basic", ExpiresAt: &expires, IsValid: true}
	cached, _ := json.Marshal(sub)

	redisMock.ExpectGet("sub:user-1").RedisNil()
	mock.ExpectQuery(`SELECT (.+) FROM user_subscriptions`).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows(subscriptionColumns).AddRow("user-1", "basic", expires, true))
	redisMock.ExpectSet("sub:user-1", cached, 5*time.Minute).SetVal("OK")

	tier, err := store.ResolveTier(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, models.TierBasic, tier)

	require.NoError(t, mock.ExpectationsWereMet())
	require.NoError(t, redisMock.ExpectationsWereMet())
}

func TestSubscriptionStore_ResolveTier_CacheHit(t *testing.T) {
	db, mock := setupMockDB(t)
	rdb, redisMock := redismock.NewClientMock()
	store := NewSubscriptionStore(db, rdb, 5*time.Minute, logger.NewTestLogger(t))

	cached, _ := json.Marshal(Subscription{UserID: "user-1", Tier: "admin", IsValid: true})
	redisMock.ExpectGet("sub:user-1").SetVal(string(cached))

	tier, err := store.ResolveTier(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, models.TierAdmin, tier)

	require.NoError(t, mock.ExpectationsWereMet())
	require.NoError(t, redisMock.ExpectationsWereMet())
}

func TestSubscriptionStore_ResolveTier_DatabaseError(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewSubscriptionStore(db, nil, 0, logger.NewTestLogger(t))

	mock.ExpectQuery(`SELECT (.+) FROM user_subscriptions`).
		WillReturnError(errors.New("connection refused"))

	_, err := store.ResolveTier(context.Background(), "user-1")
	require.Error(t, err)
	assertErrorCode(t, err, commonerrors.ErrCodeSubscriptionCheckFailed)
}
