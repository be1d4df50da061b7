package summary

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mathstudent/internal/router"
	"github.com/abhisek/mathstudent/internal/screen"
	"github.com/abhisek/mathstudent/internal/session"
	"github.com/abhisek/mathstudent/internal/ui/layout"
	"github.com/abhisek/mathstudent/internal/ui/theme"
)

// SummaryScreen displays the session summary.
type SummaryScreen struct {
	summary    *session.Summary
	blockTitle string
	badges     []string
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)

// New creates a new SummaryScreen. badges are the titles of the badges
// earned during the session.
func New(summary *session.Summary, blockTitle string, badges []string) *SummaryScreen {
	return &SummaryScreen{summary: summary, blockTitle: blockTitle, badges: badges}
}

func (s *SummaryScreen) Init() tea.Cmd {
	return nil
}

func (s *SummaryScreen) Title() string {
	return "Session Summary"
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Continue"},
		{Key: "Esc", Description: "Home"},
	}
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "enter", "esc":
			return s, func() tea.Msg { return router.PopToRootMsg{} }
		}
	}
	return s, nil
}

func (s *SummaryScreen) View(width, height int) string {
	sum := s.summary
	if sum == nil {
		return ""
	}

	center := func(st lipgloss.Style, text string) string {
		return lipgloss.PlaceHorizontal(width, lipgloss.Center, st.Render(text))
	}

	var b strings.Builder

	heading := "Session complete!"
	if sum.Replay {
		heading = "Replay complete!"
	}
	b.WriteString(center(lipgloss.NewStyle().Foreground(theme.Primary).Bold(true), heading))
	b.WriteString("\n")
	b.WriteString(center(lipgloss.NewStyle().Foreground(theme.TextDim),
		fmt.Sprintf("%s · Level %d", s.blockTitle, sum.Level)))
	b.WriteString("\n\n")

	// Stars.
	if st := sum.Stars; st != nil {
		b.WriteString(center(lipgloss.NewStyle(), layout.Stars(st.Stars)))
		b.WriteString("\n")
		if st.NewBest {
			b.WriteString(center(lipgloss.NewStyle().Foreground(theme.Star),
				fmt.Sprintf("New best! (was %d)", st.PreviousBest)))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	// Duration.
	mins := int(sum.Duration.Minutes())
	secs := int(sum.Duration.Seconds()) % 60
	b.WriteString(center(lipgloss.NewStyle().Foreground(theme.TextDim),
		fmt.Sprintf("Duration: %d:%02d", mins, secs)))
	b.WriteString("\n\n")

	// Stats line.
	statsLine := fmt.Sprintf("Tasks: %d        Correct: %d        Accuracy: %.0f%%",
		sum.TotalTasks-sum.Skipped, sum.TotalCorrect, sum.Accuracy*100)
	b.WriteString(center(lipgloss.NewStyle().Foreground(theme.Text), statsLine))
	b.WriteString("\n\n")

	if sum.LevelUnlocked || (sum.Stars != nil && sum.Stars.LevelUnlocked) {
		b.WriteString(center(lipgloss.NewStyle().Foreground(theme.Success).Bold(true),
			fmt.Sprintf("Level %d unlocked!", sum.UnlockedLevel)))
		b.WriteString("\n\n")
	}

	// Results.
	divider := lipgloss.NewStyle().Foreground(theme.Border).Render(
		strings.Repeat("─", max(min(width-8, 40), 0)))
	b.WriteString(center(lipgloss.NewStyle().Foreground(theme.TextDim), "Tasks"))
	b.WriteString("\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, divider))
	b.WriteString("\n")

	var marks []string
	for _, r := range sum.Results {
		switch {
		case r.Skipped:
			marks = append(marks, lipgloss.NewStyle().Foreground(theme.TextDim).Render("·"))
		case r.Correct:
			marks = append(marks, theme.Correct.Render("✓"))
		default:
			marks = append(marks, theme.Incorrect.Render("✗"))
		}
	}
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, strings.Join(marks, " ")))
	b.WriteString("\n")

	// Badges.
	if len(s.badges) > 0 {
		b.WriteString("\n")
		b.WriteString(center(lipgloss.NewStyle().Foreground(theme.TextDim), "Badges"))
		b.WriteString("\n")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, divider))
		b.WriteString("\n")
		for _, title := range s.badges {
			b.WriteString(center(lipgloss.NewStyle().Foreground(theme.Star), "🏅 "+title))
			b.WriteString("\n")
		}
	}

	return b.String()
}
