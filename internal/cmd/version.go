package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vidlens/vidlens/internal/server/handlers"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the vidlens version",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "vidlens %s\n", handlers.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
