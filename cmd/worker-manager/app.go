// cmd/worker-manager/app.go
package main

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"unimatch/internal/common/camunda"
	"unimatch/internal/common/config"
	"unimatch/internal/common/database"
	"unimatch/internal/common/logger"
	"unimatch/internal/common/observability"
	"unimatch/internal/common/validation"
	"unimatch/internal/matching"
	"unimatch/internal/store"
	"unimatch/pkg/registry"

	gic "unimatch/internal/workers/discovery/get-initial-criteria"
	su "unimatch/internal/workers/discovery/search-universities"
	fm "unimatch/internal/workers/matching/find-matches"
	ru "unimatch/internal/workers/matching/recommend-universities"
)

type appDeps struct {
	zeebe    *camunda.Client
	postgres *database.PostgresClient
	redis    *database.RedisClient
	es       *database.ElasticsearchClient
	obs      *observability.Observability
}

type app struct {
	cfg      *config.Config
	deps     appDeps
	handlers map[string]camunda.JobHandler
	workers  []*camunda.Worker
	logger   logger.Logger
}

func newApp(ctx context.Context, cfg *config.Config, deps appDeps, log logger.Logger) (*app, error) {
	var db *sql.DB
	if deps.postgres != nil {
		db = deps.postgres.DB
	}
	var rdb *goredis.Client
	if deps.redis != nil {
		rdb = deps.redis.Client
	}

	catalog, err := buildCatalog(ctx, cfg, db, rdb, deps.es, log)
	if err != nil {
		return nil, err
	}

	reg, err := registry.LoadRegistry(cfg.Registry.Path)
	if err != nil {
		return nil, fmt.Errorf("load activity registry: %w", err)
	}
	validator := validation.NewValidator(reg)

	profiles := store.NewPostgresProfiles(db, log)
	subscriptions := store.NewSubscriptionStore(db, rdb, config.GetDuration(cfg.Matching.SubscriptionCacheTTL), log)
	engine := matching.NewEngine(matchingConfig(cfg.Matching), catalog, profiles, log)

	handlers := map[string]camunda.JobHandler{
		fm.TaskType:  fm.NewHandler(&fm.Config{Timeout: workerTimeout(cfg, fm.TaskType, fm.LoadConfig().Timeout)}, engine, validator, deps.obs, log),
		ru.TaskType:  ru.NewHandler(&ru.Config{Timeout: workerTimeout(cfg, ru.TaskType, ru.LoadConfig().Timeout)}, engine, validator, deps.obs, log),
		su.TaskType:  su.NewHandler(&su.Config{Timeout: workerTimeout(cfg, su.TaskType, su.LoadConfig().Timeout)}, engine, subscriptions, validator, deps.obs, log),
		gic.TaskType: gic.NewHandler(&gic.Config{Timeout: workerTimeout(cfg, gic.TaskType, gic.LoadConfig().Timeout)}, engine, validator, deps.obs, log),
	}

	for _, taskType := range reg.Implemented() {
		if _, ok := handlers[taskType]; !ok {
			log.Warn("registry activity has no handler", map[string]interface{}{"taskType": taskType})
		}
	}

	return &app{
		cfg:      cfg,
		deps:     deps,
		handlers: handlers,
		logger:   log,
	}, nil
}

// buildCatalog returns the candidate store selected by catalog.backend.
func buildCatalog(ctx context.Context, cfg *config.Config, db *sql.DB, rdb *goredis.Client, es *database.ElasticsearchClient, log logger.Logger) (matching.CandidateStore, error) {
	switch strings.ToLower(cfg.Catalog.Backend) {
	case config.CatalogBackendPostgres, "":
		if db == nil {
			return nil, fmt.Errorf("catalog backend %q needs a postgres connection", cfg.Catalog.Backend)
		}
		return store.NewPostgresCatalog(db, rdb, config.GetDuration(cfg.Catalog.CacheTTL), log), nil

	case config.CatalogBackendElasticsearch:
		if es == nil {
			return nil, fmt.Errorf("catalog backend %q needs an elasticsearch client", cfg.Catalog.Backend)
		}
		if err := es.EnsureIndex(ctx, cfg.Catalog.Index, store.UniversityIndexMapping); err != nil {
			return nil, err
		}
		return store.NewElasticsearchCatalog(es.Client, cfg.Catalog.Index, log), nil

	case config.CatalogBackendMemory:
		catalog, err := store.LoadMemoryCatalog(cfg.Catalog.SeedFile)
		if err != nil {
			return nil, err
		}
		log.Info("loaded in-memory catalog", map[string]interface{}{
			"file":         cfg.Catalog.SeedFile,
			"universities": catalog.Len(),
		})
		return catalog, nil

	default:
		return nil, fmt.Errorf("unknown catalog backend %q", cfg.Catalog.Backend)
	}
}

func matchingConfig(m config.MatchingConfig) matching.Config {
	return matching.Config{
		MatchLimit:      m.MatchLimit,
		FreeTierCap:     m.FreeTierCap,
		DefaultPageSize: m.DefaultPageSize,
		MaxPageSize:     m.MaxPageSize,
		Weights: matching.Weights{
			Academic:  m.DefaultWeights.Academic,
			Financial: m.DefaultWeights.Financial,
			Location:  m.DefaultWeights.Location,
			Social:    m.DefaultWeights.Social,
			Future:    m.DefaultWeights.Future,
		},
	}
}

func workerTimeout(cfg *config.Config, taskType string, fallback time.Duration) time.Duration {
	if ms := config.GetWorkerConfig(cfg, taskType).Timeout; ms > 0 {
		return config.GetDuration(ms)
	}
	return fallback
}

func (a *app) startWorkers() {
	client := a.deps.zeebe.GetClient()
	for taskType, handler := range a.handlers {
		w := camunda.StartWorker(client, taskType, config.GetWorkerConfig(a.cfg, taskType), handler, a.logger)
		if w != nil {
			a.workers = append(a.workers, w)
		}
	}
	a.logger.Info("workers registered", map[string]interface{}{"count": len(a.workers)})
}

func (a *app) readinessChecks() map[string]func(context.Context) error {
	checks := map[string]func(context.Context) error{}
	if a.deps.zeebe != nil {
		checks["zeebe"] = a.deps.zeebe.HealthCheck
	}
	if a.deps.postgres != nil {
		checks["postgres"] = a.deps.postgres.Ping
	}
	if a.deps.redis != nil {
		checks["redis"] = a.deps.redis.Ping
	}
	if a.deps.es != nil {
		checks["elasticsearch"] = a.deps.es.Ping
	}
	return checks
}

func (a *app) stop() {
	for _, w := range a.workers {
		w.Stop()
	}
	if a.deps.zeebe != nil {
		if err := a.deps.zeebe.Close(); err != nil {
			a.logger.Error("error closing zeebe client", map[string]interface{}{"error": err.Error()})
		}
	}
	if a.deps.redis != nil {
		_ = a.deps.redis.Close()
	}
	if a.deps.postgres != nil {
		_ = a.deps.postgres.Close()
	}
}
