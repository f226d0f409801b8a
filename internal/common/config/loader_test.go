package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

const minimalPostgres = `
camunda:
  broker_address: localhost:26500
database:
  postgres:
    host: localhost
    database: unimatch
    user: unimatch
`

func TestLoadFromFile_AppliesDefaults(t *testing.T) {
	cfg, err := LoadFromFile(writeConfig(t, minimalPostgres))
	require.NoError(t, err)

	assert.Equal(t, "unimatch", cfg.App.Name)
	assert.Equal(t, 5432, cfg.Database.Postgres.Port)
	assert.Equal(t, "disable", cfg.Database.Postgres.SSLMode)
	assert.Equal(t, CatalogBackendPostgres, cfg.Catalog.Backend)
	assert.Equal(t, "universities", cfg.Catalog.Index)
	assert.Equal(t, 20, cfg.Matching.MatchLimit)
	assert.Equal(t, 3, cfg.Matching.FreeTierCap)
	assert.Equal(t, 20, cfg.Matching.DefaultPageSize)
	assert.Equal(t, 100, cfg.Matching.MaxPageSize)
	assert.Equal(t, "configs/activity-registry.json", cfg.Registry.Path)
	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.False(t, cfg.Database.Redis.Enabled())
}

func TestLoadFromFile_ExpandsEnvironment(t *testing.T) {
	t.Setenv("UNIMATCH_TEST_BROKER", "zeebe:26500")
	t.Setenv("UNIMATCH_TEST_REDIS", "redis:6379")

	cfg, err := LoadFromFile(writeConfig(t, `
camunda:
  broker_address: ${UNIMATCH_TEST_BROKER}
database:
  postgres:
    host: db
    database: unimatch
    user: unimatch
  redis:
    address: ${UNIMATCH_TEST_REDIS}
`))
	require.NoError(t, err)

	assert.Equal(t, "zeebe:26500", cfg.Camunda.BrokerAddress)
	assert.Equal(t, "redis:6379", cfg.Database.Redis.Address)
	assert.True(t, cfg.Database.Redis.Enabled())
}

func TestLoadFromFile_CredentialFallback(t *testing.T) {
	t.Setenv("DB_PASSWORD", "s3cret")

	cfg, err := LoadFromFile(writeConfig(t, minimalPostgres))
	require.NoError(t, err)
	assert.Equal(t, "s3cret", cfg.Database.Postgres.Password)
}

func TestLoadFromFile_WorkerDefaults(t *testing.T) {
	cfg, err := LoadFromFile(writeConfig(t, minimalPostgres+`
workers:
  find-matches:
    enabled: true
  search-universities:
    enabled: false
    timeout: 2500
`))
	require.NoError(t, err)

	fm := GetWorkerConfig(cfg, "find-matches")
	assert.Equal(t, 5, fm.MaxJobsActive)
	assert.Equal(t, 30000, fm.Timeout)
	assert.Equal(t, 3, fm.MaxRetries)

	assert.False(t, IsWorkerEnabled(cfg, "search-universities"))
	assert.Equal(t, 2500*time.Millisecond, GetDuration(GetWorkerConfig(cfg, "search-universities").Timeout))

	assert.True(t, IsWorkerEnabled(cfg, "get-initial-criteria"))
	assert.Equal(t, 3, GetWorkerConfig(cfg, "get-initial-criteria").MaxRetries)
}

func TestLoadFromFile_Validation(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		expectedErr string
	}{
		{
			name: "missing broker",
			body: `
database:
  postgres:
    host: localhost
    database: unimatch
    user: unimatch
`,
			expectedErr: "camunda.broker_address is required",
		},
		{
			name: "postgres backend without host",
			body: `
camunda:
  broker_address: localhost:26500
`,
			expectedErr: "database.postgres.host is required",
		},
		{
			name: "elasticsearch backend without address",
			body: `
camunda:
  broker_address: localhost:26500
catalog:
  backend: elasticsearch
`,
			expectedErr: "database.elasticsearch.addresses or url is required",
		},
		{
			name: "memory backend without seed file",
			body: `
camunda:
  broker_address: localhost:26500
catalog:
  backend: memory
`,
			expectedErr: "catalog.seed_file is required",
		},
		{
			name: "unknown backend",
			body: `
camunda:
  broker_address: localhost:26500
catalog:
  backend: mongodb
`,
			expectedErr: `catalog.backend "mongodb" is not supported`,
		},
		{
			name: "page size above maximum",
			body: minimalPostgres + `
matching:
  default_page_size: 50
  max_page_size: 10
`,
			expectedErr: "matching.default_page_size exceeds matching.max_page_size",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("ZEEBE_ADDRESS", "")
			t.Setenv("DB_USER", "")

			_, err := LoadFromFile(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectedErr)
		})
	}
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestElasticsearchConfig_GetURL(t *testing.T) {
	assert.Equal(t, "http://es:9200", ElasticsearchConfig{URL: "http://es:9200", Addresses: []string{"http://other:9200"}}.GetURL())
	assert.Equal(t, "http://other:9200", ElasticsearchConfig{Addresses: []string{"http://other:9200"}}.GetURL())
	assert.Empty(t, ElasticsearchConfig{}.GetURL())
}

func TestPostgresConfig_GetDSN(t *testing.T) {
	dsn := PostgresConfig{Host: "db", Port: 5432, User: "u", Password: "p", Database: "unimatch", SSLMode: "disable"}.GetDSN()
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=unimatch sslmode=disable", dsn)
}
