package components

import (
	"testing"

	tea "charm.land/bubbletea/v2"
)

func key(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func TestChoiceListSkipsDisabled(t *testing.T) {
	c := NewChoiceList([]string{"a", "b", "c"}, map[int]bool{0: true})
	if c.Selected != 1 {
		t.Fatalf("expected first enabled option selected, got %d", c.Selected)
	}

	c, _ = c.Update(tea.KeyPressMsg{Code: tea.KeyUp})
	if c.Selected != 1 {
		t.Errorf("expected selection to stay on 1, got %d", c.Selected)
	}

	c, _ = c.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	if c.Selected != 2 {
		t.Errorf("expected selection 2, got %d", c.Selected)
	}
}

func TestChoiceListNumberKeys(t *testing.T) {
	c := NewChoiceList([]string{"a", "b", "c"}, map[int]bool{0: true})

	c, chosen := c.Update(key('1'))
	if chosen {
		t.Error("disabled option must not be chosen")
	}

	c, chosen = c.Update(key('3'))
	if !chosen || c.Selected != 2 {
		t.Errorf("expected option 3 chosen, got chosen=%v selected=%d", chosen, c.Selected)
	}
}

func TestChoiceListDisable(t *testing.T) {
	c := NewChoiceList([]string{"a", "b"}, nil)
	c.Disable(0)
	if c.Selected != 1 {
		t.Errorf("expected selection to move to 1, got %d", c.Selected)
	}
	if c.Remaining() != 1 {
		t.Errorf("expected 1 remaining, got %d", c.Remaining())
	}

	c.Disable(1)
	if c.Remaining() != 0 {
		t.Errorf("expected 0 remaining, got %d", c.Remaining())
	}
	if _, chosen := c.Update(tea.KeyPressMsg{Code: tea.KeyEnter}); chosen {
		t.Error("expected nothing chosen once every option is disabled")
	}
}

func TestProgressBarClamps(t *testing.T) {
	for _, pct := range []int{-10, 0, 50, 100, 150} {
		if v := NewProgressBar("", pct, false, 20).View(); v == "" {
			t.Errorf("empty render for %d%%", pct)
		}
	}
}
