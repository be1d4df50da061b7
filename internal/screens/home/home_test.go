package home

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/mathstudent/internal/progress"
	"github.com/abhisek/mathstudent/internal/router"
	sessionscreen "github.com/abhisek/mathstudent/internal/screens/session"
	"github.com/abhisek/mathstudent/internal/testutil"
	"github.com/abhisek/mathstudent/internal/trainer/trainertest"
)

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func newHome(t *testing.T, mode progress.Mode) (*HomeScreen, *trainertest.Fixture) {
	t.Helper()
	fx := trainertest.New(t, testutil.StandardCatalog(), trainertest.WithMode(mode))
	return New(fx.Trainer, fx.Events, testutil.IdentityRand{}), fx
}

func TestHomeScreen_MenuItems(t *testing.T) {
	h, _ := newHome(t, progress.ModeStarred)

	// Two blocks followed by badges, history, share code and exit.
	if got := len(h.menu.Items); got != 6 {
		t.Fatalf("menu items = %d, want 6", got)
	}
	if h.menu.Items[0].Label != "# Block 1" {
		t.Errorf("first item = %q", h.menu.Items[0].Label)
	}
	if h.menu.Items[3].Disabled {
		t.Error("history should be enabled when events are available")
	}
}

func TestHomeScreen_HistoryDisabledWithoutEvents(t *testing.T) {
	fx := trainertest.New(t, testutil.StandardCatalog())
	h := New(fx.Trainer, nil, testutil.IdentityRand{})
	if !h.menu.Items[3].Disabled {
		t.Error("history should be disabled without an event repo")
	}
}

func TestHomeScreen_StartSession(t *testing.T) {
	h, fx := newHome(t, progress.ModeStarred)

	_, cmd := h.Update(specialKey(tea.KeyEnter))
	if cmd == nil {
		t.Fatal("expected a command on enter")
	}
	msg := cmd()
	start, ok := msg.(startSessionMsg)
	if !ok {
		t.Fatalf("expected startSessionMsg, got %T", msg)
	}
	if start.BlockID != "1" || start.Level != 1 {
		t.Errorf("start = %+v, want block 1 level 1", start)
	}

	_, cmd = h.Update(start)
	if cmd == nil {
		t.Fatal("expected a push command")
	}
	push, ok := cmd().(router.PushScreenMsg)
	if !ok {
		t.Fatal("expected PushScreenMsg")
	}
	if _, ok := push.Screen.(*sessionscreen.SessionScreen); !ok {
		t.Errorf("pushed %T, want session screen", push.Screen)
	}
	if fx.Trainer.Session() == nil {
		t.Error("trainer should have an active session")
	}
}

func TestHomeScreen_LockedLevelRejected(t *testing.T) {
	h, fx := newHome(t, progress.ModeStarred)

	_, cmd := h.Update(startSessionMsg{BlockID: "1", Level: 4})
	if cmd != nil {
		t.Error("locked level should not push a screen")
	}
	if fx.Trainer.Session() != nil {
		t.Error("no session should be active")
	}
	if _, ok := fx.Notices.Latest(); !ok {
		t.Error("expected a notice for the locked level")
	}
}

func TestHomeScreen_LevelSelectionClamped(t *testing.T) {
	h, _ := newHome(t, progress.ModeStarred)

	h.Update(specialKey(tea.KeyRight))
	if h.levels["1"] != 1 {
		t.Errorf("level = %d, want 1 (only level 1 unlocked)", h.levels["1"])
	}
	h.Update(specialKey(tea.KeyLeft))
	if h.levels["1"] != 1 {
		t.Errorf("level = %d, want 1", h.levels["1"])
	}
}

func TestHomeScreen_NavigationEntries(t *testing.T) {
	h, _ := newHome(t, progress.ModeStarred)

	for range 2 {
		h.Update(specialKey(tea.KeyDown))
	}
	_, cmd := h.Update(specialKey(tea.KeyEnter))
	if cmd == nil {
		t.Fatal("expected a command")
	}
	push, ok := cmd().(router.PushScreenMsg)
	if !ok {
		t.Fatal("expected PushScreenMsg")
	}
	if push.Screen.Title() != "Badges" {
		t.Errorf("pushed %q, want Badges", push.Screen.Title())
	}
}

func TestHomeScreen_View(t *testing.T) {
	h, _ := newHome(t, progress.ModeStarred)
	view := h.View(80, 40)

	for _, want := range []string{"Block 1", "Block 2", "BADGES", "SHARE CODE", "STREAK"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestHomeScreen_KeyHintsByMode(t *testing.T) {
	starred, _ := newHome(t, progress.ModeStarred)
	fixed, _ := newHome(t, progress.ModeFixed)

	has := func(h *HomeScreen) bool {
		for _, k := range h.KeyHints() {
			if k.Key == "←→" {
				return true
			}
		}
		return false
	}
	if !has(starred) {
		t.Error("starred mode should offer level selection")
	}
	if has(fixed) {
		t.Error("fixed mode should not offer level selection")
	}
}
