//go:build e2e

// test/e2e/e2e_test.go
package e2e

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"unimatch/internal/common/camunda"
	"unimatch/internal/common/config"
	"unimatch/internal/common/database"
	"unimatch/internal/common/logger"
	"unimatch/internal/common/validation"
	"unimatch/internal/matching"
	"unimatch/internal/models"
	"unimatch/internal/store"
	"unimatch/pkg/registry"

	gic "unimatch/internal/workers/discovery/get-initial-criteria"
	su "unimatch/internal/workers/discovery/search-universities"
	fm "unimatch/internal/workers/matching/find-matches"
	ru "unimatch/internal/workers/matching/recommend-universities"
)

const (
	e2eIndex       = "universities-e2e"
	premiumUser    = "e2e-premium"
	freeUser       = "e2e-free"
	seedCatalogRel = "../../configs/universities.json"
)

// services holds the live connections shared by the suite.
type services struct {
	cfg      *config.Config
	zeebe    *camunda.Client
	postgres *database.PostgresClient
	redis    *database.RedisClient
	es       *database.ElasticsearchClient
	log      logger.Logger
}

var live *services

func TestMain(m *testing.M) {
	cfg, err := config.LoadFromFile(filepath.Join("..", "..", "configs", "config.yaml"))
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	// force localhost for the docker-compose stack
	cfg.Database.Postgres.Host = "localhost"
	cfg.Database.Redis.Address = "localhost:6379"
	cfg.Database.Elasticsearch.URL = "http://localhost:9200"
	cfg.Database.Elasticsearch.Addresses = nil
	cfg.Camunda.BrokerAddress = "localhost:26500"
	cfg.Registry.Path = filepath.Join("..", "..", "configs", "activity-registry.json")

	live, err = connect(cfg)
	if err != nil {
		panic(fmt.Sprintf("failed to connect to e2e services: %v", err))
	}

	code := m.Run()

	_ = live.zeebe.Close()
	_ = live.redis.Close()
	_ = live.postgres.Close()
	os.Exit(code)
}

func connect(cfg *config.Config) (*services, error) {
	s := &services{cfg: cfg, log: logger.NewNoOpLogger()}
	var err error
	if s.zeebe, err = camunda.NewClient(cfg.Camunda); err != nil {
		return nil, err
	}
	if s.postgres, err = database.NewPostgres(cfg.Database.Postgres); err != nil {
		return nil, err
	}
	if s.redis, err = database.NewRedis(cfg.Database.Redis); err != nil {
		return nil, err
	}
	if s.es, err = database.NewElasticsearch(cfg.Database.Elasticsearch); err != nil {
		return nil, err
	}
	return s, nil
}

// ==========================
// Full Suite
// ==========================

func TestFullE2E(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	assertAllServicesConnectivity(ctx, t)
	universities := seedDatabase(ctx, t)

	pgCatalog := store.NewPostgresCatalog(live.postgres.DB, live.redis.Client, time.Minute, live.log)
	esCatalog := store.NewElasticsearchCatalog(live.es.Client, e2eIndex, live.log)

	t.Run("backends agree", func(t *testing.T) {
		filter := &matching.Filter{Country: "USA", MaxTuition: ptr(45000.0)}
		fromPG, err := pgCatalog.FindCandidates(ctx, filter)
		require.NoError(t, err)
		fromES, err := esCatalog.FindCandidates(ctx, filter)
		require.NoError(t, err)

		assert.NotEmpty(t, fromPG)
		assert.Equal(t, ids(fromPG), ids(fromES))
		assert.Less(t, len(fromPG), len(universities))
	})

	t.Run("workers", func(t *testing.T) {
		testAllWorkers(ctx, t, pgCatalog)
	})

	t.Run("job worker lifecycle", func(t *testing.T) {
		reg, err := registry.LoadRegistry(live.cfg.Registry.Path)
		require.NoError(t, err)
		engine := matching.NewEngine(matching.DefaultConfig(), pgCatalog, store.NewPostgresProfiles(live.postgres.DB, live.log), live.log)
		handler := gic.NewHandler(gic.LoadConfig(), engine, validation.NewValidator(reg), nil, live.log)

		w := camunda.StartWorker(live.zeebe.GetClient(), gic.TaskType, config.GetWorkerConfig(live.cfg, gic.TaskType), handler, live.log)
		require.NotNil(t, w)
		assert.Equal(t, gic.TaskType, w.TaskType())
		w.Stop()
	})
}

func assertAllServicesConnectivity(ctx context.Context, t *testing.T) {
	t.Log("Checking service connectivity...")

	require.NoError(t, live.postgres.Ping(ctx), "PostgreSQL ping failed")
	require.NoError(t, live.redis.Ping(ctx), "Redis ping failed")
	require.NoError(t, live.es.Ping(ctx), "Elasticsearch ping failed")
	require.NoError(t, live.zeebe.HealthCheck(ctx), "Zeebe topology request failed")
}

// ==========================
// Database Setup + Test Data
// ==========================

func seedDatabase(ctx context.Context, t *testing.T) []models.University {
	t.Log("Migrating schema and loading the seed catalog...")

	require.NoError(t, database.Migrate(live.postgres.DB, live.log))

	universities, err := store.ReadCatalogFile(seedCatalogRel)
	require.NoError(t, err)

	pg := store.NewPostgresCatalog(live.postgres.DB, live.redis.Client, time.Minute, live.log)
	require.NoError(t, pg.Upsert(ctx, universities))

	require.NoError(t, live.es.EnsureIndex(ctx, e2eIndex, store.UniversityIndexMapping))
	require.NoError(t, store.NewElasticsearchCatalog(live.es.Client, e2eIndex, live.log).Index(ctx, universities))

	statements := []struct {
		query string
		args  []interface{}
	}{
		{`DELETE FROM user_subscriptions WHERE user_id IN ($1, $2)`, []interface{}{premiumUser, freeUser}},
		{`DELETE FROM academic_profiles WHERE user_id IN ($1, $2)`, []interface{}{premiumUser, freeUser}},
		{`DELETE FROM financial_profiles WHERE user_id IN ($1, $2)`, []interface{}{premiumUser, freeUser}},
		{`DELETE FROM users WHERE id IN ($1, $2)`, []interface{}{premiumUser, freeUser}},
		{`INSERT INTO users (id, gpa, sat, preferred_major) VALUES ($1, 3.7, 1400, 'Computer Science'), ($2, 3.2, NULL, 'Nursing')`, []interface{}{premiumUser, freeUser}},
		{`INSERT INTO academic_profiles (user_id, gpa, gpa_scale, sat_total, primary_major) VALUES ($1, 3.8, 4.0, 1450, 'Computer Science')`, []interface{}{premiumUser}},
		{`INSERT INTO financial_profiles (user_id, max_budget) VALUES ($1, 45000)`, []interface{}{premiumUser}},
		{`INSERT INTO user_subscriptions (user_id, tier, expires_at, is_valid) VALUES ($1, 'premium', NOW() + INTERVAL '30 days', TRUE)`, []interface{}{premiumUser}},
	}
	for _, s := range statements {
		_, err := live.postgres.DB.ExecContext(ctx, s.query, s.args...)
		require.NoError(t, err, s.query)
	}
	live.redis.Client.Del(ctx, "sub:"+premiumUser, "sub:"+freeUser)
	return universities
}

// ==========================
// Worker Execution
// ==========================

func testAllWorkers(ctx context.Context, t *testing.T, catalog matching.CandidateStore) {
	profiles := store.NewPostgresProfiles(live.postgres.DB, live.log)
	subscriptions := store.NewSubscriptionStore(live.postgres.DB, live.redis.Client, time.Minute, live.log)
	engine := matching.NewEngine(matching.DefaultConfig(), catalog, profiles, live.log)

	t.Run(fm.TaskType, func(t *testing.T) {
		h := fm.NewHandler(fm.LoadConfig(), engine, nil, nil, live.log)
		out, err := h.Execute(ctx, &fm.Input{Profile: &models.MatchRequest{GPA: ptr(3.6), PreferredMajor: "Biology"}})
		require.NoError(t, err)
		assert.NotEmpty(t, out.Matches)
		assert.Equal(t, len(out.Matches), out.MatchCount)
	})

	t.Run(ru.TaskType, func(t *testing.T) {
		h := ru.NewHandler(ru.LoadConfig(), engine, nil, nil, live.log)
		out, err := h.Execute(ctx, &ru.Input{UserID: premiumUser})
		require.NoError(t, err)
		require.NotEmpty(t, out.Recommendations)
		assert.Contains(t, out.Recommendations[0].University.Academics.PopularMajors, "Computer Science")
	})

	t.Run(su.TaskType, func(t *testing.T) {
		h := su.NewHandler(su.LoadConfig(), engine, subscriptions, nil, nil, live.log)

		premium, err := h.Execute(ctx, &su.Input{UserID: premiumUser})
		require.NoError(t, err)
		assert.Equal(t, "premium", premium.AccessTier)
		assert.Nil(t, premium.Restricted)

		free, err := h.Execute(ctx, &su.Input{UserID: freeUser})
		require.NoError(t, err)
		assert.Equal(t, "free", free.AccessTier)
		require.NotNil(t, free.Restricted)
		assert.Len(t, free.Results, 3)
		assert.Equal(t, premium.Pagination.TotalResults, free.Restricted.ActualTotal)
	})

	t.Run(gic.TaskType, func(t *testing.T) {
		h := gic.NewHandler(gic.LoadConfig(), engine, nil, nil, live.log)
		out, err := h.Execute(ctx, &gic.Input{UserID: premiumUser})
		require.NoError(t, err)
		require.NotNil(t, out.Criteria.Academics)
		assert.Equal(t, 3.5, *out.Criteria.Academics.MinGPA)
		assert.Equal(t, 1300, *out.Criteria.Academics.MinSAT)
		require.NotNil(t, out.Criteria.Financials)
		assert.Equal(t, 45000.0, *out.Criteria.Financials.MaxTuition)
	})
}

// ==========================
// Benchmarks
// ==========================

func BenchmarkEngine_SearchUniversities(b *testing.B) {
	catalog, err := store.LoadMemoryCatalog(seedCatalogRel)
	require.NoError(b, err)
	engine := matching.NewEngine(matching.DefaultConfig(), catalog, nil, logger.NewNoOpLogger())
	criteria := &models.DiscoveryCriteria{
		UserProfile: &models.CriteriaProfile{GPA: ptr(3.5), PreferredMajor: "Computer Science"},
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := engine.SearchUniversities(context.Background(), criteria, models.TierPremium, false); err != nil {
			b.Fatal(err)
		}
	}
}

func ptr[T any](v T) *T { return &v }

func ids(universities []models.University) []string {
	out := make([]string, len(universities))
	for i, u := range universities {
		out[i] = u.ID
	}
	sort.Strings(out)
	return out
}
