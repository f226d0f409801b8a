// cmd/matchctl/registry.go
package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"unimatch/internal/common/validation"
	"unimatch/pkg/registry"
)

func newRegistryCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "registry",
		Short: "Inspect and maintain the activity registry.",
	}
	cmd.PersistentFlags().StringVar(&path, "registry", "configs/activity-registry.json", "activity registry file")

	list := &cobra.Command{
		Use:   "list",
		Short: "List registered activities.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := registry.LoadRegistry(path)
			if err != nil {
				return err
			}
			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.Header([]string{"ID", "Task Type", "Status", "Timeout", "Retries"})
			var data [][]string
			for _, a := range reg.Activities {
				data = append(data, []string{a.ID, a.TaskType, a.ImplementationStatus, a.Timeout, strconv.Itoa(a.Retries)})
			}
			if err := table.Bulk(data); err != nil {
				return err
			}
			return table.Render()
		},
	}

	validate := &cobra.Command{
		Use:   "validate",
		Short: "Check ids, naming and that every input schema compiles.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := registry.LoadRegistry(path)
			if err != nil {
				return err
			}
			if len(reg.Activities) == 0 {
				return errors.New("registry contains no activities")
			}

			validator := validation.NewValidator(reg)
			for _, a := range reg.Activities {
				if err := validation.ValidateActivityNaming(a.ID); err != nil {
					return err
				}
				if _, err := validator.ValidateInput(a.TaskType, nil); err != nil {
					return fmt.Errorf("activity %s: %w", a.ID, err)
				}
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Registry validation passed. Found %d activities.\n", len(reg.Activities))
			return err
		},
	}

	var id, field, value string
	set := &cobra.Command{
		Use:   "set",
		Short: "Update one field of an activity.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if id == "" || field == "" || value == "" {
				return errors.New("--id, --field and --value are required")
			}
			reg, err := registry.LoadRegistry(path)
			if err != nil {
				return err
			}
			if err := reg.SetField(id, field, value); err != nil {
				return err
			}
			if err := reg.Save(path); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Updated activity %s, field %s to %s\n", id, field, value)
			return err
		},
	}
	set.Flags().StringVar(&id, "id", "", "activity id")
	set.Flags().StringVar(&field, "field", "", "status, version, displayName, description, timeout or retries")
	set.Flags().StringVar(&value, "value", "", "new value")

	cmd.AddCommand(list, validate, set)
	return cmd
}
