package sharecode

import (
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/mathstudent/internal/notice"
	"github.com/abhisek/mathstudent/internal/router"
	"github.com/abhisek/mathstudent/internal/testutil"
	"github.com/abhisek/mathstudent/internal/trainer/trainertest"
)

func enter() tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: tea.KeyEnter}
}

func TestShareCodeScreen_ShowsExport(t *testing.T) {
	fx := trainertest.New(t, testutil.StandardCatalog())
	s := New(fx.Trainer)

	want, err := fx.Trainer.Export()
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if s.code != want {
		t.Errorf("code = %q, want %q", s.code, want)
	}
}

func TestShareCodeScreen_EmptyInputIgnored(t *testing.T) {
	fx := trainertest.New(t, testutil.StandardCatalog())
	s := New(fx.Trainer)
	if _, cmd := s.Update(enter()); cmd != nil {
		t.Error("enter on empty input should do nothing")
	}
}

func TestShareCodeScreen_InvalidCode(t *testing.T) {
	fx := trainertest.New(t, testutil.StandardCatalog())
	s := New(fx.Trainer)
	s.input.Model.SetValue("not-a-code")

	_, cmd := s.Update(enter())
	if cmd == nil {
		t.Fatal("expected import command")
	}
	msg := cmd()
	if m, ok := msg.(importedMsg); !ok || m.Err == nil {
		t.Fatalf("expected failed import, got %#v", msg)
	}
	s.Update(msg)

	if s.imported || s.busy {
		t.Error("screen should be ready for another attempt")
	}
	if s.input.Value() != "" {
		t.Error("input should be cleared after a failed import")
	}
	n, ok := fx.Notices.Latest()
	if !ok || n.Kind != notice.KindError {
		t.Errorf("expected an error notice, got %+v", n)
	}
}

func TestShareCodeScreen_ImportFromAnotherDevice(t *testing.T) {
	src := trainertest.New(t, testutil.StandardCatalog())
	code, err := src.Trainer.Export()
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	fx := trainertest.New(t, testutil.StandardCatalog())
	s := New(fx.Trainer)
	s.input.Model.SetValue(code)

	_, cmd := s.Update(enter())
	if cmd == nil {
		t.Fatal("expected import command")
	}
	s.Update(cmd())

	if !s.imported {
		t.Error("import should succeed")
	}
	n, ok := fx.Notices.Latest()
	if !ok || n.Kind != notice.KindSuccess {
		t.Errorf("expected a success notice, got %+v", n)
	}
	if _, cmd := s.Update(enter()); cmd != nil {
		t.Error("a second enter after import should do nothing")
	}
}

func TestShareCodeScreen_EscPops(t *testing.T) {
	fx := trainertest.New(t, testutil.StandardCatalog())
	s := New(fx.Trainer)
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	if cmd == nil {
		t.Fatal("expected a command")
	}
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Error("expected PopScreenMsg")
	}
}
