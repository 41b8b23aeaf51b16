// Version command for the backstage CLI.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stageworks/backstage/pkg/backstage"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the backstage version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("backstage", backstage.Version)
	},
}
