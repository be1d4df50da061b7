package cmd

import (
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Print a share code for the current progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd, false)
		if err != nil {
			return err
		}
		defer e.Close()

		code, err := e.trainer.Export()
		if err != nil {
			return err
		}
		printf(cmd, "%s\n", code)
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <code>",
	Short: "Replace the current progress with a share code's",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd, false)
		if err != nil {
			return err
		}
		defer e.Close()

		if err := e.trainer.Import(cmd.Context(), args[0]); err != nil {
			printNotices(cmd, e.trainer)
			return err
		}
		printf(cmd, "Progress imported.\n")
		return nil
	},
}
