package badgecase

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mathstudent/internal/badges"
	"github.com/abhisek/mathstudent/internal/router"
	"github.com/abhisek/mathstudent/internal/screen"
	"github.com/abhisek/mathstudent/internal/trainer"
	"github.com/abhisek/mathstudent/internal/ui/layout"
	"github.com/abhisek/mathstudent/internal/ui/theme"
)

// tabs lists the badge filters in display order. The empty kind shows
// every badge.
var tabs = []badges.ConditionKind{
	"",
	badges.KindStreak,
	badges.KindSolveCount,
	badges.KindSolveCountByType,
	badges.KindMinTasksPerBlock,
}

// BadgeCaseScreen displays every badge and whether it was earned.
type BadgeCaseScreen struct {
	all          []trainer.BadgeStatus
	selectedTab  int
	scrollOffset int
}

var _ screen.Screen = (*BadgeCaseScreen)(nil)
var _ screen.KeyHintProvider = (*BadgeCaseScreen)(nil)

// New creates a new BadgeCaseScreen.
func New(tr *trainer.Trainer) *BadgeCaseScreen {
	return &BadgeCaseScreen{all: tr.Badges()}
}

func (s *BadgeCaseScreen) Init() tea.Cmd {
	return nil
}

func (s *BadgeCaseScreen) Title() string {
	return "Badges"
}

func (s *BadgeCaseScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Tab", Description: "Switch filter"},
		{Key: "↑↓", Description: "Scroll"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *BadgeCaseScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}
	switch kmsg.String() {
	case "esc":
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	case "tab":
		s.selectedTab = (s.selectedTab + 1) % len(tabs)
		s.scrollOffset = 0
	case "shift+tab":
		s.selectedTab = (s.selectedTab - 1 + len(tabs)) % len(tabs)
		s.scrollOffset = 0
	case "up", "k":
		if s.scrollOffset > 0 {
			s.scrollOffset--
		}
	case "down", "j":
		if s.scrollOffset < len(s.filtered())-1 {
			s.scrollOffset++
		}
	}
	return s, nil
}

func (s *BadgeCaseScreen) View(width, height int) string {
	var b strings.Builder

	earned := 0
	for _, st := range s.all {
		if st.Earned {
			earned++
		}
	}
	b.WriteString(lipgloss.NewStyle().
		Width(width).Align(lipgloss.Center).Foreground(theme.Text).
		Render(fmt.Sprintf("\nEarned: %d of %d\n", earned, len(s.all))))
	b.WriteString("\n")

	// Filter tabs.
	var labels []string
	for i, k := range tabs {
		label := "All"
		if k != "" {
			label = k.DisplayName()
		}
		label = fmt.Sprintf("%s (%d)", label, s.countByKind(k))
		if i == s.selectedTab {
			labels = append(labels, lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render(label))
		} else {
			labels = append(labels, lipgloss.NewStyle().Foreground(theme.TextDim).Render(label))
		}
	}
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, strings.Join(labels, "   ")))
	b.WriteString("\n\n")

	divider := lipgloss.NewStyle().Foreground(theme.Border).Render(
		strings.Repeat("─", max(min(width-8, 60), 0)))
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, divider))
	b.WriteString("\n\n")

	filtered := s.filtered()
	if len(filtered) == 0 {
		b.WriteString(lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("No badges of this kind"))
		return b.String()
	}

	maxVisible := max(height-10, 3)
	start := s.scrollOffset
	end := min(start+maxVisible, len(filtered))

	for _, st := range filtered[start:end] {
		mark := "  "
		style := lipgloss.NewStyle().Foreground(theme.TextDim)
		if st.Earned {
			mark = "✓ "
			style = lipgloss.NewStyle().Foreground(theme.Star)
		}
		line := fmt.Sprintf("%s%s %-18s %s", mark, st.Icon, st.Title, st.Description)
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(line)))
		b.WriteString("\n")
	}

	if end < len(filtered) {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render(fmt.Sprintf("... %d more", len(filtered)-end)))
	}

	return b.String()
}

func (s *BadgeCaseScreen) filtered() []trainer.BadgeStatus {
	kind := tabs[s.selectedTab]
	if kind == "" {
		return s.all
	}
	var out []trainer.BadgeStatus
	for _, st := range s.all {
		if st.Condition != nil && st.Condition.Kind() == kind {
			out = append(out, st)
		}
	}
	return out
}

func (s *BadgeCaseScreen) countByKind(kind badges.ConditionKind) int {
	if kind == "" {
		return len(s.all)
	}
	n := 0
	for _, st := range s.all {
		if st.Condition != nil && st.Condition.Kind() == kind {
			n++
		}
	}
	return n
}
