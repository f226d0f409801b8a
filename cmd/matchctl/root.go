// cmd/matchctl/root.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"unimatch/internal/common/logger"
	"unimatch/internal/matching"
	"unimatch/internal/store"
)

// options are the persistent flags shared by every subcommand.
type options struct {
	catalogFile string
	profileFile string
	output      string
	logLevel    string
	noColor     bool
}

func newRootCmd(out io.Writer) *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "matchctl",
		Short: "Run the university matching engine against a local catalog.",
		Long: `matchctl runs the same matching and discovery engine as the workers,
against a catalog JSON file instead of the production stores.

Examples:
  # Search with the default criteria as an anonymous visitor
  matchctl search --anonymous

  # Search with criteria from a file as a premium user
  matchctl search --criteria criteria.json --tier premium

  # Score the catalog against an explicit profile
  matchctl match --request profile.json

  # Derive starting criteria from a stored profile dump
  matchctl criteria --profiles profiles.json --user user-1

  # Load the catalog into postgres or elasticsearch
  matchctl import --target postgres

  # Check the activity registry after editing it
  matchctl registry validate`,
		SilenceUsage: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if opts.noColor {
				color.NoColor = true
			}
		},
	}
	root.SetOut(out)
	root.SetErr(out)

	flags := root.PersistentFlags()
	flags.StringVar(&opts.catalogFile, "catalog", "configs/universities.json", "university catalog JSON file")
	flags.StringVar(&opts.profileFile, "profiles", "", "profile dump JSON file used by criteria and recommend")
	flags.StringVarP(&opts.output, "output", "o", "table", "output format: table or json")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "log level")
	flags.BoolVar(&opts.noColor, "no-color", false, "disable colored output")

	root.AddCommand(
		newSearchCmd(opts),
		newMatchCmd(opts),
		newRecommendCmd(opts),
		newCriteriaCmd(opts),
		newImportCmd(opts),
		newRegistryCmd(),
	)
	return root
}

// engine builds a matching engine over the catalog file and, when given, the
// profile dump.
func (o *options) engine() (*matching.Engine, error) {
	catalog, err := store.LoadMemoryCatalog(o.catalogFile)
	if err != nil {
		return nil, err
	}

	profiles := newFileProfiles()
	if o.profileFile != "" {
		if profiles, err = loadFileProfiles(o.profileFile); err != nil {
			return nil, err
		}
	}
	return matching.NewEngine(matching.DefaultConfig(), catalog, profiles, o.logger()), nil
}

func (o *options) logger() logger.Logger {
	return logger.NewZapAdapter(logger.New(o.logLevel, "console"))
}

// readJSONFile decodes path into dest. "-" reads standard input.
func readJSONFile(path string, dest interface{}) error {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func writeJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

var rootCtx = context.Background()
