package session

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/mathstudent/internal/catalog"
	"github.com/abhisek/mathstudent/internal/ui/theme"
)

func centered(width int) lipgloss.Style {
	return lipgloss.NewStyle().Width(width).Align(lipgloss.Center)
}

// renderTaskView renders the task awaiting an answer.
func (s *SessionScreen) renderTaskView(width, height int) string {
	var b strings.Builder

	// Info line.
	kind := lipgloss.NewStyle().
		Foreground(theme.Secondary).
		Bold(true).
		Render("  " + s.task.Kind().DisplayName())

	var progressStr string
	if sn := s.trainer.Session(); sn != nil {
		progressStr = fmt.Sprintf("Task %d/%d  %s %d",
			sn.Answered()+1, sn.Total(),
			lipgloss.NewStyle().Foreground(theme.Success).Render("✓"),
			sn.CorrectCount)
	}
	progress := lipgloss.NewStyle().Foreground(theme.TextDim).Render(progressStr)

	infoLine := kind
	if pad := width - lipgloss.Width(kind) - lipgloss.Width(progress) - 4; pad > 0 {
		infoLine += strings.Repeat(" ", pad) + progress
	}
	b.WriteString(infoLine)
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", max(width-4, 0))))
	b.WriteString("\n\n")

	// Question.
	if s.task.Payload != nil {
		b.WriteString(centered(width).Foreground(theme.Text).Bold(true).Render(s.task.Payload.Prompt()))
		b.WriteString("\n\n")
	}

	b.WriteString(s.renderInteraction(width))

	// Hints.
	if s.hintsShown > 0 {
		b.WriteString("\n\n")
		for i := range s.hintsShown {
			b.WriteString(centered(width).Inherit(theme.Hint).Render(fmt.Sprintf("Hint %d: %s", i+1, s.hints[i])))
			b.WriteString("\n")
		}
	} else if s.hints != nil && len(s.hints) == 0 {
		b.WriteString("\n\n")
		b.WriteString(centered(width).Inherit(theme.Hint).Render("No hints for this task."))
	}

	return b.String()
}

func (s *SessionScreen) renderInteraction(width int) string {
	switch s.task.Kind() {
	case catalog.KindSolveExpression:
		return centered(width).Render("Answer: " + s.input.View())

	case catalog.KindDragAndDrop:
		placed := strings.Join(s.arrangement(), " ")
		if placed == "" {
			placed = "…"
		}
		var b strings.Builder
		b.WriteString(centered(width).Foreground(theme.Accent).Bold(true).Render(placed))
		b.WriteString("\n\n")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.pool.View()))
		return b.String()

	case catalog.KindAssignmentMemory:
		cols := lipgloss.JoinHorizontal(lipgloss.Top,
			s.lefts.View(),
			"      ",
			s.rights.View(),
		)
		var b strings.Builder
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, cols))
		b.WriteString("\n")
		status := fmt.Sprintf("Matched %d/%d", s.board.Matched(), len(s.lefts.Options))
		if s.pickedLeft >= 0 {
			status = fmt.Sprintf("%s = ?", s.lefts.Options[s.pickedLeft])
		}
		style := centered(width).Foreground(theme.TextDim)
		if s.lastMatch != nil && s.pickedLeft < 0 {
			if *s.lastMatch {
				style = centered(width).Inherit(theme.Correct)
			} else {
				style = centered(width).Inherit(theme.Incorrect)
			}
		}
		b.WriteString(style.Render(status))
		return b.String()

	case catalog.KindFindTheError:
		var b strings.Builder
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.steps.View()))
		b.WriteString(centered(width).Foreground(theme.TextDim).Render("\nWhich step is wrong?"))
		return b.String()

	case catalog.KindMultipleChoice:
		opt, ok := s.reveal.Current()
		if !ok {
			return ""
		}
		pos, total := s.reveal.Position()
		var b strings.Builder
		b.WriteString(centered(width).Foreground(theme.TextDim).Render(fmt.Sprintf("Option %d of %d", pos, total)))
		b.WriteString("\n\n")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			theme.Card.Foreground(theme.Text).Bold(true).Render(opt)))
		b.WriteString("\n\n")
		b.WriteString(centered(width).Foreground(theme.TextDim).Render("Is this the answer? [Y]es / [N]o"))
		return b.String()
	}
	return ""
}

// renderFeedback renders the result of the last answer.
func (s *SessionScreen) renderFeedback(width, height int) string {
	out := s.outcome

	var b strings.Builder
	b.WriteString("\n\n")

	if out.Correct {
		b.WriteString(centered(width).Inherit(theme.Correct).Render("Correct!"))
	} else {
		b.WriteString(centered(width).Inherit(theme.Incorrect).Render("Not quite"))
		if out.CanonicalAnswer != "" {
			b.WriteString("\n")
			b.WriteString(centered(width).Foreground(theme.TextDim).
				Render(fmt.Sprintf("Correct answer: %s", out.CanonicalAnswer)))
		}
	}
	b.WriteString("\n\n")

	switch {
	case out.DifficultyChange > 0:
		b.WriteString(centered(width).Foreground(theme.Accent).Bold(true).Render("Difficulty up!"))
		b.WriteString("\n\n")
	case out.DifficultyChange < 0:
		b.WriteString(centered(width).Foreground(theme.Info).Render("Let's take it a little easier."))
		b.WriteString("\n\n")
	}
	if out.LevelUnlocked {
		b.WriteString(centered(width).Foreground(theme.Star).Bold(true).Render("Level complete!"))
		b.WriteString("\n\n")
	}
	for _, title := range s.trainer.BadgeTitles(out.NewBadges) {
		b.WriteString(centered(width).Foreground(theme.Star).Render("🏅 " + title))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(centered(width).Foreground(theme.TextDim).Render("Press any key to continue..."))
	return b.String()
}

// renderQuitConfirm renders the quit confirmation dialog.
func renderQuitConfirm(width, height int) string {
	var b strings.Builder
	b.WriteString("\n\n\n")
	b.WriteString(centered(width).Foreground(theme.Text).Bold(true).Render("End session early?"))
	b.WriteString("\n")
	b.WriteString(centered(width).Foreground(theme.TextDim).Render("Answers so far are saved."))
	b.WriteString("\n\n")
	b.WriteString(centered(width).Foreground(theme.Success).Render("[Y] Yes, end session"))
	b.WriteString("\n")
	b.WriteString(centered(width).Foreground(theme.Primary).Render("[N] No, keep going"))
	return b.String()
}

// renderLoading renders the loading state.
func renderLoading(width, height int) string {
	return centered(width).Foreground(theme.TextDim).Render("\n\n\n  Preparing your session...")
}

// renderError renders an error message.
func renderError(width, height int, errMsg string) string {
	return centered(width).Foreground(theme.Error).
		Render(fmt.Sprintf("\n\n\n  Error: %s\n\n  Press any key to go back.", errMsg))
}
