package components

import (
	"fmt"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mathstudent/internal/ui/theme"
)

// ChoiceList is a numbered vertical list the learner picks from. It backs
// step selection, block arrangement and pair matching.
type ChoiceList struct {
	Options  []string
	Disabled map[int]bool
	Selected int
	Focused  bool
}

// NewChoiceList creates a focused list with the first enabled option
// selected.
func NewChoiceList(options []string, disabled map[int]bool) ChoiceList {
	if disabled == nil {
		disabled = map[int]bool{}
	}
	c := ChoiceList{Options: options, Disabled: disabled, Selected: -1, Focused: true}
	c.Selected = c.next(-1, 1)
	return c
}

func (c ChoiceList) next(from, step int) int {
	for i := from + step; i >= 0 && i < len(c.Options); i += step {
		if !c.Disabled[i] {
			return i
		}
	}
	return from
}

// Update handles navigation. It returns chosen=true when the learner
// confirms an option with enter or its number key.
func (c ChoiceList) Update(msg tea.Msg) (ChoiceList, bool) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok || !c.Focused {
		return c, false
	}

	key := kmsg.String()
	switch key {
	case "up", "k":
		c.Selected = c.next(c.Selected, -1)
	case "down", "j":
		c.Selected = c.next(c.Selected, 1)
	case "enter":
		return c, c.Selected >= 0 && !c.Disabled[c.Selected]
	default:
		if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
			i := int(key[0] - '1')
			if i < len(c.Options) && !c.Disabled[i] {
				c.Selected = i
				return c, true
			}
		}
	}
	return c, false
}

// Disable removes an option from selection and moves off it.
func (c *ChoiceList) Disable(i int) {
	c.Disabled[i] = true
	if c.Selected == i {
		if n := c.next(i, 1); n != i {
			c.Selected = n
		} else {
			c.Selected = c.next(i, -1)
		}
	}
}

// Remaining counts the options that can still be picked.
func (c ChoiceList) Remaining() int {
	n := 0
	for i := range c.Options {
		if !c.Disabled[i] {
			n++
		}
	}
	return n
}

// View renders the list.
func (c ChoiceList) View() string {
	var s string
	for i, opt := range c.Options {
		prefix := "  "
		if i == c.Selected && c.Focused {
			prefix = "▸ "
		}
		line := fmt.Sprintf("%s%d)  %s", prefix, i+1, opt)

		switch {
		case c.Disabled[i]:
			s += theme.Disabled.Render(line) + "\n"
		case i == c.Selected && c.Focused:
			s += theme.Selected.Render(line) + "\n"
		default:
			s += lipgloss.NewStyle().Foreground(theme.Text).Render(line) + "\n"
		}
	}
	return s
}
