package home

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/mathstudent/internal/progress"
	"github.com/abhisek/mathstudent/internal/trainer"
	"github.com/abhisek/mathstudent/internal/ui/components"
	"github.com/abhisek/mathstudent/internal/ui/layout"
	"github.com/abhisek/mathstudent/internal/ui/theme"
)

const titleBanner = "M A T H · S T U D E N T"

// renderTitle returns the styled title line.
func renderTitle(cw int) string {
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Foreground(theme.Star).
		Bold(true).
		Render(titleBanner)
}

// renderStatsBar renders the streak, badge and mode counters in a
// double-bordered box at content width.
func renderStatsBar(d trainer.Dashboard, totalBadges, cw int) string {
	streak := lipgloss.NewStyle().Foreground(theme.Accent).Bold(true).
		Render(fmt.Sprintf("🔥 %d STREAK", d.Streak))
	badges := lipgloss.NewStyle().Foreground(theme.Star).Bold(true).
		Render(fmt.Sprintf("🏅 %d/%d BADGES", len(d.Badges), totalBadges))
	mode := lipgloss.NewStyle().Foreground(theme.Secondary).
		Render(strings.ToUpper(string(d.Mode)))

	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Secondary).
		Width(cw-2).
		Align(lipgloss.Center).
		Padding(0, 1).
		Render(streak + "   " + badges + "   " + mode)
}

// blockDetail is the one-line progress summary shown next to a block.
func blockDetail(b trainer.BlockSummary, mode progress.Mode) string {
	switch mode {
	case progress.ModeAdaptive:
		return fmt.Sprintf("difficulty %d · %d solved", b.Difficulty, b.Solved)
	case progress.ModeFixed:
		return fmt.Sprintf("level %d · %d/%d · %d%%", b.UnlockedLevel, b.LevelDone, b.LevelTasks, b.Percent)
	}
	return fmt.Sprintf("level %d · %d%%", b.UnlockedLevel, b.Percent)
}

// renderLevels renders the per-level star row of a block with the
// selected level highlighted.
func renderLevels(b trainer.BlockSummary, selected, cw int) string {
	var cells []string
	for _, lv := range b.Levels {
		label := fmt.Sprintf("L%d ", lv.Level)
		var cell string
		switch {
		case lv.Locked:
			cell = theme.Disabled.Render(label + "🔒")
		default:
			cell = label + layout.Stars(lv.Stars)
		}
		if lv.Level == selected {
			cell = lipgloss.NewStyle().Underline(true).Render("▸") + cell
		} else {
			cell = " " + cell
		}
		cells = append(cells, cell)
	}
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(strings.Join(cells, "  "))
}

// renderProgress renders the unlock progress bar of a block.
func renderProgress(b trainer.BlockSummary, cw int) string {
	return lipgloss.PlaceHorizontal(cw, lipgloss.Center,
		components.NewProgressBar("Progress", b.Percent, true, min(cw, 48)).View())
}

// renderFrame wraps content in a double-border frame, centred in the
// given dimensions.
func renderFrame(content string, width, height int) string {
	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Primary).
		Width(width-2).
		Height(height-2).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}
