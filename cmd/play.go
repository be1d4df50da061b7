package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/mathstudent/internal/app"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Start the interactive trainer",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

// runApp builds dependencies and launches the TUI.
func runApp(cmd *cobra.Command) error {
	e, err := openEnv(cmd, true)
	if err != nil {
		return err
	}
	defer e.Close()

	return app.Run(app.Options{
		Trainer: e.trainer,
		Events:  e.events,
	})
}
