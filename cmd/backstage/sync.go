// Sync command: one-shot content refresh.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stageworks/backstage/pkg/content"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Refresh the content view once and print a summary",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		configDir, err := resolveConfigDir()
		if err != nil {
			return err
		}
		v, err := loadConfig(configDir)
		if err != nil {
			return err
		}
		cfg, err := buildConfig(v)
		if err != nil {
			return err
		}

		a, err := buildApp(cmd.Context(), cfg, newLogger())
		if err != nil {
			return err
		}
		defer a.close()

		a.sync.RefreshAll(cmd.Context())
		state := a.sync.Snapshot()

		for _, collection := range content.Collections() {
			items, err := state.List(collection)
			if err != nil {
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%-10s %d\n", collection, len(items))
		}
		if len(state.Errors) > 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "errors:")
			for _, msg := range state.Errors {
				fmt.Fprintln(cmd.OutOrStdout(), " ", msg)
			}
			return fmt.Errorf("sync finished with %d error(s)", len(state.Errors))
		}
		return nil
	},
}
