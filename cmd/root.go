package cmd

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "mathstudent",
	Short: "Math drills with levels, stars and badges",
	Long: "mathstudent: a terminal math trainer. Work through task blocks level by level,\n" +
		"earn stars and badges, and move your progress between devices with a share code.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if isInteractive() {
			return runApp(cmd)
		}
		return printDashboard(cmd, false)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("db", "", "Path to SQLite database file (overrides MATHSTUDENT_DB)")
	pf.String("catalog", "", "Path to a JSON or YAML task catalog (overrides MATHSTUDENT_CATALOG)")
	pf.String("mode", "", "Progression mode: starred, fixed or adaptive (overrides MATHSTUDENT_MODE)")
	pf.Bool("ephemeral", false, "Keep progress in memory only")
	pf.String("env-file", "", "Dotenv file to load before reading the environment")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(badgesCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// isInteractive reports whether stdout is a terminal.
func isInteractive() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func printf(cmd *cobra.Command, format string, a ...any) {
	fmt.Fprintf(cmd.OutOrStdout(), format, a...)
}
