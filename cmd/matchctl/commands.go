// cmd/matchctl/commands.go
package main

import (
	"errors"
	"fmt"
	"strings"

	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"unimatch/internal/common/config"
	"unimatch/internal/common/database"
	"unimatch/internal/models"
	"unimatch/internal/store"
)

func newSearchCmd(opts *options) *cobra.Command {
	var (
		criteriaFile string
		tier         string
		anonymous    bool
	)
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Filter, score and rank the catalog with discovery criteria.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var criteria *models.DiscoveryCriteria
			if criteriaFile != "" {
				criteria = &models.DiscoveryCriteria{}
				if err := readJSONFile(criteriaFile, criteria); err != nil {
					return err
				}
			}

			engine, err := opts.engine()
			if err != nil {
				return err
			}
			resp, err := engine.SearchUniversities(rootCtx, criteria, models.AccessTier(strings.ToLower(tier)), anonymous)
			if err != nil {
				return err
			}

			if opts.output == "json" {
				return writeJSON(cmd.OutOrStdout(), resp)
			}
			return writeDiscoveryTable(cmd.OutOrStdout(), resp)
		},
	}
	cmd.Flags().StringVarP(&criteriaFile, "criteria", "c", "", "discovery criteria JSON file, - for stdin")
	cmd.Flags().StringVar(&tier, "tier", string(models.TierFree), "access tier of the caller")
	cmd.Flags().BoolVar(&anonymous, "anonymous", false, "search as a visitor who is not signed in")
	return cmd
}

func newMatchCmd(opts *options) *cobra.Command {
	var requestFile string
	cmd := &cobra.Command{
		Use:   "match",
		Short: "Score the catalog against an explicit student profile.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if requestFile == "" {
				return errors.New("--request is required")
			}
			req := &models.MatchRequest{}
			if err := readJSONFile(requestFile, req); err != nil {
				return err
			}

			engine, err := opts.engine()
			if err != nil {
				return err
			}
			results, err := engine.FindMatches(rootCtx, req)
			if err != nil {
				return err
			}

			if opts.output == "json" {
				return writeJSON(cmd.OutOrStdout(), results)
			}
			return writeMatchTable(cmd.OutOrStdout(), results)
		},
	}
	cmd.Flags().StringVarP(&requestFile, "request", "r", "", "match request JSON file, - for stdin")
	return cmd
}

func newRecommendCmd(opts *options) *cobra.Command {
	var userID string
	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Recommend universities for a user in the profile dump.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if userID == "" {
				return errors.New("--user is required")
			}
			engine, err := opts.engine()
			if err != nil {
				return err
			}
			results, err := engine.RecommendUniversities(rootCtx, userID)
			if err != nil {
				return err
			}

			if opts.output == "json" {
				return writeJSON(cmd.OutOrStdout(), results)
			}
			return writeMatchTable(cmd.OutOrStdout(), results)
		},
	}
	cmd.Flags().StringVarP(&userID, "user", "u", "", "user id")
	return cmd
}

func newCriteriaCmd(opts *options) *cobra.Command {
	var userID string
	cmd := &cobra.Command{
		Use:   "criteria",
		Short: "Print the starting discovery criteria for a user.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			engine, err := opts.engine()
			if err != nil {
				return err
			}
			criteria, err := engine.InitialCriteria(rootCtx, userID)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), criteria)
		},
	}
	cmd.Flags().StringVarP(&userID, "user", "u", "", "user id; unknown users get the defaults")
	return cmd
}

const (
	importTargetPostgres      = "postgres"
	importTargetElasticsearch = "elasticsearch"
)

func newImportCmd(opts *options) *cobra.Command {
	var (
		target     string
		configFile string
		migrate    bool
	)
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load the catalog file into postgres or elasticsearch.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if target != importTargetPostgres && target != importTargetElasticsearch {
				return fmt.Errorf("unknown import target %q", target)
			}

			universities, err := store.ReadCatalogFile(opts.catalogFile)
			if err != nil {
				return err
			}

			cfg, err := loadConfig(configFile)
			if err != nil {
				return err
			}
			log := opts.logger()

			switch target {
			case importTargetPostgres:
				pg, err := database.NewPostgres(cfg.Database.Postgres)
				if err != nil {
					return err
				}
				defer pg.Close()
				if migrate {
					if err := database.Migrate(pg.DB, log); err != nil {
						return err
					}
				}

				// the cache is only needed so the upsert can invalidate it
				var rdb *goredis.Client
				if cfg.Database.Redis.Enabled() {
					client, err := database.NewRedis(cfg.Database.Redis)
					if err != nil {
						return err
					}
					defer client.Close()
					rdb = client.Client
				}
				catalog := store.NewPostgresCatalog(pg.DB, rdb, config.GetDuration(cfg.Catalog.CacheTTL), log)
				if err := catalog.Upsert(rootCtx, universities); err != nil {
					return err
				}

			case importTargetElasticsearch:
				es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
				if err != nil {
					return err
				}
				if err := es.EnsureIndex(rootCtx, cfg.Catalog.Index, store.UniversityIndexMapping); err != nil {
					return err
				}
				if err := store.NewElasticsearchCatalog(es.Client, cfg.Catalog.Index, log).Index(rootCtx, universities); err != nil {
					return err
				}
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Imported %d universities into %s\n", len(universities), target)
			return err
		},
	}
	cmd.Flags().StringVarP(&target, "target", "t", importTargetPostgres, "postgres or elasticsearch")
	cmd.Flags().StringVar(&configFile, "config", "", "config file; defaults to configs/config.yaml")
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply schema migrations before a postgres import")
	return cmd
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}
