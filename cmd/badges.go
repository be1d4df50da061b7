package cmd

import (
	"strings"

	"github.com/spf13/cobra"
)

var badgesCmd = &cobra.Command{
	Use:   "badges",
	Short: "List badges and which ones are earned",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd, false)
		if err != nil {
			return err
		}
		defer e.Close()

		list := e.trainer.Badges()
		earned := 0
		printf(cmd, "%-3s %-22s %-24s %s\n", "", "ID", "Badge", "Description")
		printf(cmd, "%s\n", strings.Repeat("─", 90))
		for _, b := range list {
			mark := " "
			if b.Earned {
				mark = "✓"
				earned++
			}
			printf(cmd, "%-3s %-22s %-24s %s\n", mark, b.ID, b.Icon+" "+b.Title, b.Description)
		}
		printf(cmd, "\n%d of %d earned\n", earned, len(list))
		return nil
	},
}
