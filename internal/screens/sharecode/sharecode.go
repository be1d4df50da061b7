package sharecode

import (
	"context"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mathstudent/internal/router"
	"github.com/abhisek/mathstudent/internal/screen"
	"github.com/abhisek/mathstudent/internal/trainer"
	"github.com/abhisek/mathstudent/internal/ui/components"
	"github.com/abhisek/mathstudent/internal/ui/layout"
	"github.com/abhisek/mathstudent/internal/ui/theme"
)

type importedMsg struct {
	Err error
}

// ShareCodeScreen shows the current share code and accepts one to import.
// Outcome messages are surfaced through the trainer's notices.
type ShareCodeScreen struct {
	trainer  *trainer.Trainer
	code     string
	input    components.TextInput
	imported bool
	busy     bool
}

var _ screen.Screen = (*ShareCodeScreen)(nil)
var _ screen.KeyHintProvider = (*ShareCodeScreen)(nil)

// New creates a new ShareCodeScreen.
func New(tr *trainer.Trainer) *ShareCodeScreen {
	code, _ := tr.Export()
	return &ShareCodeScreen{
		trainer: tr,
		code:    code,
		input:   components.NewTextInput("paste a share code", 0),
	}
}

func (s *ShareCodeScreen) Init() tea.Cmd {
	return nil
}

func (s *ShareCodeScreen) Title() string {
	return "Share Code"
}

func (s *ShareCodeScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Import"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *ShareCodeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case importedMsg:
		s.busy = false
		if msg.Err != nil {
			s.input = components.NewTextInput("paste a share code", 0)
			return s, nil
		}
		s.imported = true
		s.code, _ = s.trainer.Export()
		s.input.Submit(true)
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "enter":
			token := strings.TrimSpace(s.input.Value())
			if token == "" || s.busy || s.imported {
				return s, nil
			}
			s.busy = true
			tr := s.trainer
			return s, func() tea.Msg {
				return importedMsg{Err: tr.Import(context.Background(), token)}
			}
		}
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *ShareCodeScreen) View(width, height int) string {
	cw := components.ContentWidth(width)

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(theme.Subtitle.Render("Your share code"))
	b.WriteString("\n\n")

	code := s.code
	if code == "" {
		code = "(unavailable)"
	}
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Accent).Width(cw - 8).Render(code))
	b.WriteString("\n\n")
	b.WriteString(theme.Hint.Render("Copy this code to move your progress to another device."))
	b.WriteString("\n\n\n")

	b.WriteString(theme.Subtitle.Render("Import a share code"))
	b.WriteString("\n\n")
	b.WriteString(s.input.View())
	b.WriteString("\n\n")
	switch {
	case s.imported:
		b.WriteString(theme.Correct.Render("Progress imported."))
	case s.busy:
		b.WriteString(theme.Hint.Render("Importing..."))
	default:
		b.WriteString(theme.Hint.Render("Importing replaces all current progress."))
	}

	return lipgloss.PlaceHorizontal(width, lipgloss.Center, components.Card(b.String(), cw))
}
