package components

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mathstudent/internal/ui/theme"
)

// ContentWidth returns the uniform inner width used for all card sections
// so boxes line up.
func ContentWidth(frameWidth int) int {
	// Leave room for the frame border (2) + inner padding (4)
	return min(max(frameWidth-6, 20), 72)
}

// Card wraps content in a rounded-border card at the given content width.
func Card(content string, cw int) string {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Width(cw-2).
		Padding(1, 2).
		Render(content)
}
