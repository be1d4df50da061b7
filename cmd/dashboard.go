package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/mathstudent/internal/progress"
	"github.com/abhisek/mathstudent/internal/trainer"
	"github.com/abhisek/mathstudent/internal/ui/layout"
)

var dashboardCmd = &cobra.Command{
	Use:     "dashboard",
	Aliases: []string{"stats"},
	Short:   "Show progress per block",
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		return printDashboard(cmd, asJSON)
	},
}

func init() {
	dashboardCmd.Flags().Bool("json", false, "Print the dashboard as JSON")
}

func printDashboard(cmd *cobra.Command, asJSON bool) error {
	e, err := openEnv(cmd, false)
	if err != nil {
		return err
	}
	defer e.Close()

	d := e.trainer.Dashboard()
	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(d)
	}

	printNotices(cmd, e.trainer)
	printf(cmd, "Mode: %s   Streak: %d   Badges: %d/%d\n\n",
		d.Mode, d.Streak, len(d.Badges), len(e.trainer.Badges()))
	if len(d.Blocks) == 0 {
		printf(cmd, "No blocks in the catalog.\n")
		return nil
	}

	printf(cmd, "%-4s  %-28s  %-24s  %s\n", "ID", "Block", "Progress", "Levels")
	printf(cmd, "%s\n", strings.Repeat("─", 80))
	for _, b := range d.Blocks {
		printf(cmd, "%-4s  %-28s  %-24s  %s\n",
			b.ID, truncate(b.Title, 28), blockProgress(b, d.Mode), levelStars(b))
	}
	return nil
}

func blockProgress(b trainer.BlockSummary, mode progress.Mode) string {
	switch mode {
	case progress.ModeAdaptive:
		return fmt.Sprintf("difficulty %d, %d solved", b.Difficulty, b.Solved)
	case progress.ModeFixed:
		return fmt.Sprintf("L%d %d/%d (%d%%)", b.UnlockedLevel, b.LevelDone, b.LevelTasks, b.Percent)
	}
	return fmt.Sprintf("L%d (%d%%)", b.UnlockedLevel, b.Percent)
}

func levelStars(b trainer.BlockSummary) string {
	parts := make([]string, 0, len(b.Levels))
	for _, lv := range b.Levels {
		if lv.Locked {
			parts = append(parts, fmt.Sprintf("%d:locked", lv.Level))
			continue
		}
		parts = append(parts, fmt.Sprintf("%d:%s", lv.Level, layout.Stars(lv.Stars)))
	}
	return strings.Join(parts, " ")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
