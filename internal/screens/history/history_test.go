package history

import (
	"context"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/mathstudent/internal/router"
	"github.com/abhisek/mathstudent/internal/store"
	"github.com/abhisek/mathstudent/internal/testutil"
)

func seed(t *testing.T) store.EventRepo {
	t.Helper()
	repo := testutil.OpenStore(t).EventRepo()
	ctx := context.Background()
	for i, correct := range []bool{true, false, true} {
		err := repo.AppendAnswerEvent(ctx, store.AnswerEventData{
			SessionID: "session-abcdef12",
			BlockID:   "1",
			TaskID:    []string{"a", "b", "c"}[i],
			TaskType:  "solve_expression",
			Level:     1,
			Correct:   correct,
		})
		if err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	return repo
}

func load(s *HistoryScreen) {
	s.Update(s.Init()())
}

func TestHistoryScreen_Loading(t *testing.T) {
	s := New(seed(t), testutil.StandardCatalog())
	if !strings.Contains(s.View(80, 30), "Loading") {
		t.Error("expected loading view before data arrives")
	}
}

func TestHistoryScreen_ShowsAnswers(t *testing.T) {
	s := New(seed(t), testutil.StandardCatalog())
	load(s)

	if len(s.answers) != 3 {
		t.Fatalf("answers = %d, want 3", len(s.answers))
	}
	if s.answers[0].TaskID != "c" {
		t.Errorf("newest answer = %q, want c", s.answers[0].TaskID)
	}

	view := s.View(100, 40)
	for _, want := range []string{"Block 1", "2/3 correct", "67%", "✗"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestHistoryScreen_ExpandDetails(t *testing.T) {
	s := New(seed(t), testutil.StandardCatalog())
	load(s)

	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if !s.expanded[1] {
		t.Fatal("second row should be expanded")
	}
	if !strings.Contains(s.View(100, 40), "session session-") {
		t.Error("expanded row should show the session id")
	}
}

func TestHistoryScreen_Empty(t *testing.T) {
	s := New(nil, testutil.StandardCatalog())
	load(s)
	if !strings.Contains(s.View(80, 30), "No answers yet") {
		t.Error("expected empty-state message")
	}
}

func TestHistoryScreen_EscPops(t *testing.T) {
	s := New(nil, nil)
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	if cmd == nil {
		t.Fatal("expected a command")
	}
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Error("expected PopScreenMsg")
	}
}
