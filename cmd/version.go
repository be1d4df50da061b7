package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/mathstudent/internal/progress"
)

// version is set via -ldflags at build time.
var version = "(devel)"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the current version",
	Run: func(cmd *cobra.Command, args []string) {
		printf(cmd, "mathstudent %s (progress data %s)\n", version, progress.CurrentVersion)
	},
}
