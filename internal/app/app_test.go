package app

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/mathstudent/internal/notice"
	"github.com/abhisek/mathstudent/internal/testutil"
	"github.com/abhisek/mathstudent/internal/trainer/trainertest"
)

func newModel(t *testing.T) (AppModel, *trainertest.Fixture) {
	t.Helper()
	fx := trainertest.New(t, testutil.StandardCatalog())
	m := newAppModel(Options{Trainer: fx.Trainer, Events: fx.Events, Rand: testutil.IdentityRand{}})
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return updated.(AppModel), fx
}

func TestAppModel_RendersHome(t *testing.T) {
	m, _ := newModel(t)
	if m.router.Active().Title() != "Dashboard" {
		t.Errorf("active = %q, want Dashboard", m.router.Active().Title())
	}
	if !strings.Contains(m.render(), "Block 1") {
		t.Error("home screen should list the catalog blocks")
	}
}

func TestAppModel_TickReschedules(t *testing.T) {
	m, _ := newModel(t)
	_, cmd := m.Update(tickMsg{})
	if cmd == nil {
		t.Error("tick should schedule the next tick")
	}
}

func TestAppModel_CtrlCAbandonsSession(t *testing.T) {
	m, fx := newModel(t)
	if _, err := fx.Trainer.StartSession(t.Context(), "1", 1); err != nil {
		t.Fatalf("start: %v", err)
	}
	_, cmd := m.Update(tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected QuitMsg")
	}
	if fx.Trainer.Session() != nil {
		t.Error("session should be abandoned on quit")
	}
}

func TestAppModel_FooterUsesScreenHints(t *testing.T) {
	m, _ := newModel(t)
	hints := m.footerHints(m.router.Active())
	if len(hints) == 0 || hints[0].Key != "↑↓" {
		t.Errorf("hints = %+v, want home hints", hints)
	}
}

func TestAppModel_NoticeRendered(t *testing.T) {
	m, fx := newModel(t)
	fx.Notices.Notify(notice.KindInfo, "Welcome back", nil)
	if !strings.Contains(m.render(), "Welcome back") {
		t.Error("latest notice should be rendered")
	}
}
