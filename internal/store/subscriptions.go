// internal/store/subscriptions.go
package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	commonerrors "unimatch/internal/common/errors"
	"unimatch/internal/common/logger"
	"unimatch/internal/models"

	"github.com/redis/go-redis/v9"
)

// Subscription is a user_subscriptions row.
type Subscription struct {
	UserID    string     `json:"userId"`
	Tier      string     `json:"tier"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
	IsValid   bool       `json:"isValid"`
}

// SubscriptionStore resolves the access tier a user searches with.
type SubscriptionStore struct {
	db     *sql.DB
	cache  *jsonCache
	logger logger.Logger
	now    func() time.Time
}

func NewSubscriptionStore(db *sql.DB, rdb *redis.Client, cacheTTL time.Duration, log logger.Logger) *SubscriptionStore {
	log = log.WithFields(map[string]interface{}{"store": "subscriptions"})
	return &SubscriptionStore{
		db:     db,
		cache:  newJSONCache(rdb, "subscription", cacheTTL, log),
		logger: log,
		now:    time.Now,
	}
}

// ResolveTier returns the user's tier. Users without a row, or whose
// subscription is invalid or expired, are on the free tier.
func (s *SubscriptionStore) ResolveTier(ctx context.Context, userID string) (models.AccessTier, error) {
	sub, err := s.subscription(ctx, userID)
	if err != nil {
		return "", err
	}
	if sub == nil {
		return models.TierFree, nil
	}

	if !sub.IsValid {
		s.logger.Debug("subscription invalid, using free tier", map[string]interface{}{"userId": userID})
		return models.TierFree, nil
	}
	if sub.ExpiresAt != nil && s.now().After(*sub.ExpiresAt) {
		s.logger.Debug("subscription expired, using free tier", map[string]interface{}{
			"userId":    userID,
			"expiresAt": sub.ExpiresAt.Format(time.RFC3339),
		})
		return models.TierFree, nil
	}
	return models.AccessTier(strings.ToLower(strings.TrimSpace(sub.Tier))), nil
}

func (s *SubscriptionStore) subscription(ctx context.Context, userID string) (*Subscription, error) {
	cacheKey := "sub:" + userID
	var cached Subscription
	if s.cache.get(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	var (
		sub     Subscription
		expires sql.NullTime
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id, tier, expires_at, is_valid FROM user_subscriptions WHERE user_id = $1`, userID,
	).Scan(&sub.UserID, &sub.Tier, &expires, &sub.IsValid)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, commonerrors.NewQueryTimeoutError("subscription_check")
		}
		return nil, commonerrors.NewSubscriptionCheckFailedError(err)
	}
	if expires.Valid {
		t := expires.Time.UTC()
		sub.ExpiresAt = &t
	}

	s.cache.set(ctx, cacheKey, sub)
	return &sub, nil
}
