package history

import (
	"context"
	"fmt"
	"slices"
	"strings"

	tea "charm.land/bubbletea/v2"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/mathstudent/internal/catalog"
	"github.com/abhisek/mathstudent/internal/router"
	"github.com/abhisek/mathstudent/internal/screen"
	"github.com/abhisek/mathstudent/internal/store"
	"github.com/abhisek/mathstudent/internal/ui/layout"
	"github.com/abhisek/mathstudent/internal/ui/theme"
)

// recentLimit caps the number of answers listed.
const recentLimit = 50

type historyLoadedMsg struct {
	Answers []store.AnswerEvent
	Stats   map[string]store.AnswerStats
	Err     error
}

// HistoryScreen displays per-block accuracy and recent answers.
type HistoryScreen struct {
	eventRepo store.EventRepo
	cat       *catalog.Catalog
	answers   []store.AnswerEvent // newest first
	stats     map[string]store.AnswerStats
	selected  int
	expanded  map[int]bool
	loaded    bool
	errMsg    string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(eventRepo store.EventRepo, cat *catalog.Catalog) *HistoryScreen {
	return &HistoryScreen{
		eventRepo: eventRepo,
		cat:       cat,
		expanded:  make(map[int]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	if s.eventRepo == nil {
		return func() tea.Msg { return historyLoadedMsg{} }
	}
	return func() tea.Msg {
		ctx := context.Background()

		answers, err := s.eventRepo.QueryAnswers(ctx, store.QueryOpts{})
		if err != nil {
			return historyLoadedMsg{Err: err}
		}
		if len(answers) > recentLimit {
			answers = answers[len(answers)-recentLimit:]
		}
		slices.Reverse(answers)

		stats, err := s.eventRepo.AnswerStatsByBlock(ctx)
		if err != nil {
			return historyLoadedMsg{Answers: answers}
		}
		return historyLoadedMsg{Answers: answers, Stats: stats}
	}
}

func (s *HistoryScreen) Title() string {
	return "History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Details"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.answers = msg.Answers
			s.stats = msg.Stats
		}
		s.loaded = true
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
			return s, nil
		case "down", "j":
			if s.selected < len(s.answers)-1 {
				s.selected++
			}
			return s, nil
		case "enter":
			s.expanded[s.selected] = !s.expanded[s.selected]
			return s, nil
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading history...")
	}
	if len(s.answers) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  No answers yet. Start practicing!")
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(s.renderAccuracy(width))
	b.WriteString("\n")

	maxVisible := max(height-len(s.stats)-6, 3)
	start := 0
	if s.selected >= maxVisible {
		start = s.selected - maxVisible + 1
	}
	end := min(start+maxVisible, len(s.answers))

	for i := start; i < end; i++ {
		a := s.answers[i]
		mark := lipgloss.NewStyle().Foreground(theme.Success).Render("✓")
		if !a.Correct {
			mark = lipgloss.NewStyle().Foreground(theme.Error).Render("✗")
		}

		prefix := "  "
		if i == s.selected {
			prefix = "> "
		}
		line := fmt.Sprintf("%s%s  %-20s  task %-4s", prefix,
			a.Timestamp.Format("Jan 02 15:04"), s.blockTitle(a.BlockID), a.TaskID)

		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			style = style.Foreground(theme.Primary).Bold(true)
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			style.Render(line)+"  "+mark))
		b.WriteString("\n")

		if s.expanded[i] {
			detail := fmt.Sprintf("    %s  level %d  session %s",
				catalog.Kind(a.TaskType).DisplayName(), a.Level, shortID(a.SessionID))
			b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
				lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true).Render(detail)))
			b.WriteString("\n")
		}
	}

	return b.String()
}

func (s *HistoryScreen) renderAccuracy(width int) string {
	if len(s.stats) == 0 {
		return ""
	}
	ids := make([]string, 0, len(s.stats))
	for id := range s.stats {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	var b strings.Builder
	for _, id := range ids {
		st := s.stats[id]
		var accuracy float64
		if st.Total > 0 {
			accuracy = float64(st.Correct) / float64(st.Total) * 100
		}
		line := fmt.Sprintf("%-20s  %d/%d correct  %.0f%%", s.blockTitle(id), st.Correct, st.Total, accuracy)
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			lipgloss.NewStyle().Foreground(theme.Secondary).Render(line)))
		b.WriteString("\n")
	}
	return b.String()
}

func (s *HistoryScreen) blockTitle(id string) string {
	if s.cat != nil {
		if blk, ok := s.cat.Block(id); ok && blk.Title != "" {
			return blk.Title
		}
	}
	return id
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
