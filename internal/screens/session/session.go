package session

import (
	"context"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/mathstudent/internal/catalog"
	"github.com/abhisek/mathstudent/internal/grading"
	"github.com/abhisek/mathstudent/internal/router"
	"github.com/abhisek/mathstudent/internal/screen"
	"github.com/abhisek/mathstudent/internal/screens/summary"
	sess "github.com/abhisek/mathstudent/internal/session"
	"github.com/abhisek/mathstudent/internal/shuffle"
	"github.com/abhisek/mathstudent/internal/trainer"
	"github.com/abhisek/mathstudent/internal/ui/components"
	"github.com/abhisek/mathstudent/internal/ui/layout"
)

// SessionScreen implements screen.Screen for the active practice session.
// The trainer owns the session; the screen only collects responses.
type SessionScreen struct {
	trainer *trainer.Trainer
	rng     shuffle.Rand

	task   catalog.Task
	loaded bool
	input  components.TextInput

	// drag_and_drop
	pool     components.ChoiceList
	arranged []int

	// assignment_memory
	board      *grading.MemoryBoard
	lefts      components.ChoiceList
	rights     components.ChoiceList
	pickedLeft int
	lastMatch  *bool

	// find_the_error
	steps components.ChoiceList

	// multiple_choice
	reveal *grading.Reveal

	hints      []string
	hintsShown int

	outcome     *sess.Outcome
	quitConfirm bool
	errMsg      string
}

var _ screen.Screen = (*SessionScreen)(nil)
var _ screen.KeyHintProvider = (*SessionScreen)(nil)

// New creates a SessionScreen for the trainer's active session. rng
// shuffles arrangement blocks and choice options; nil means the global
// source.
func New(tr *trainer.Trainer, rng shuffle.Rand) *SessionScreen {
	if rng == nil {
		rng = shuffle.Global
	}
	return &SessionScreen{trainer: tr, rng: rng, pickedLeft: -1}
}

func (s *SessionScreen) Init() tea.Cmd {
	return s.loadTask()
}

func (s *SessionScreen) Title() string {
	if sn := s.trainer.Session(); sn != nil {
		if block, ok := s.trainer.Catalog().Block(sn.BlockID); ok {
			return block.Title
		}
	}
	return "Practice"
}

func (s *SessionScreen) KeyHints() []layout.KeyHint {
	switch {
	case s.errMsg != "":
		return []layout.KeyHint{{Key: "any key", Description: "Back"}}
	case s.quitConfirm:
		return []layout.KeyHint{
			{Key: "Y", Description: "End session"},
			{Key: "N", Description: "Keep going"},
		}
	case s.outcome != nil:
		return []layout.KeyHint{{Key: "any key", Description: "Continue"}}
	}

	hints := []layout.KeyHint{{Key: "Tab", Description: "Hint"}}
	switch s.task.Kind() {
	case catalog.KindSolveExpression:
		hints = append(hints, layout.KeyHint{Key: "Enter", Description: "Submit"})
	case catalog.KindDragAndDrop:
		hints = append(hints,
			layout.KeyHint{Key: "Enter", Description: "Place"},
			layout.KeyHint{Key: "Bksp", Description: "Undo"})
	case catalog.KindAssignmentMemory:
		hints = append(hints,
			layout.KeyHint{Key: "Enter", Description: "Pick"},
			layout.KeyHint{Key: "Bksp", Description: "Unpick"})
	case catalog.KindFindTheError:
		hints = append(hints, layout.KeyHint{Key: "Enter", Description: "Select step"})
	case catalog.KindMultipleChoice:
		hints = append(hints,
			layout.KeyHint{Key: "Y", Description: "Accept"},
			layout.KeyHint{Key: "N", Description: "Reject"})
	}
	return append(hints, layout.KeyHint{Key: "Esc", Description: "Quit"})
}

func (s *SessionScreen) View(width, height int) string {
	switch {
	case s.errMsg != "":
		return renderError(width, height, s.errMsg)
	case !s.loaded:
		return renderLoading(width, height)
	case s.quitConfirm:
		return renderQuitConfirm(width, height)
	case s.outcome != nil:
		return s.renderFeedback(width, height)
	}
	return s.renderTaskView(width, height)
}

func (s *SessionScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case taskReadyMsg:
		return s.handleTaskReady(msg)

	case answerGradedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.outcome = msg.Outcome
		if s.task.Kind() == catalog.KindSolveExpression {
			s.input.Submit(msg.Outcome.Correct)
		}
		return s, nil

	case hintsLoadedMsg:
		if msg.Err == nil {
			s.hints = msg.Hints
			s.hintsShown = min(s.hintsShown+1, len(s.hints))
		}
		return s, nil

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	if s.loaded && s.outcome == nil && s.task.Kind() == catalog.KindSolveExpression {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

// loadTask fetches the task awaiting an answer.
func (s *SessionScreen) loadTask() tea.Cmd {
	return func() tea.Msg {
		task, ok := s.trainer.CurrentTask()
		return taskReadyMsg{Task: task, OK: ok}
	}
}

func (s *SessionScreen) handleTaskReady(msg taskReadyMsg) (screen.Screen, tea.Cmd) {
	if !msg.OK {
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	}
	s.setup(msg.Task)
	return s, nil
}

// setup resets the per-task interaction state for task.
func (s *SessionScreen) setup(task catalog.Task) {
	s.task = task
	s.loaded = true
	s.outcome = nil
	s.hints = nil
	s.hintsShown = 0
	s.arranged = nil
	s.pickedLeft = -1
	s.lastMatch = nil

	switch p := task.Payload.(type) {
	case catalog.SolveExpression:
		s.input = components.NewTextInput("Type your answer...", 64)
	case catalog.DragAndDrop:
		s.pool = components.NewChoiceList(shuffle.Slice(s.rng, p.Blocks), nil)
	case catalog.AssignmentMemory:
		s.board = grading.NewMemoryBoard(p, s.trainer.MemoryPolicy())
		var lefts, rights []string
		for _, pair := range p.Pairs {
			lefts = append(lefts, pair.Left)
			rights = append(rights, pair.Right)
		}
		s.lefts = components.NewChoiceList(lefts, nil)
		s.rights = components.NewChoiceList(shuffle.Slice(s.rng, rights), nil)
		s.rights.Focused = false
	case catalog.FindTheError:
		texts := make([]string, len(p.Steps))
		for i, step := range p.Steps {
			texts[i] = step.Text
		}
		// The first step restates the question and cannot be wrong.
		s.steps = components.NewChoiceList(texts, map[int]bool{0: true})
	case catalog.MultipleChoice:
		s.reveal = grading.NewReveal(p, s.rng)
	}
}

func (s *SessionScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	if s.errMsg != "" {
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	}
	if !s.loaded {
		return s, nil
	}

	if s.quitConfirm {
		switch key {
		case "y", "Y":
			s.quitConfirm = false
			s.trainer.Abandon(context.Background())
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "n", "N", "esc":
			s.quitConfirm = false
		}
		return s, nil
	}

	if s.outcome != nil {
		return s.advance()
	}

	switch key {
	case "esc":
		s.quitConfirm = true
		return s, nil
	case "tab":
		return s, s.showHint()
	}

	switch s.task.Kind() {
	case catalog.KindSolveExpression:
		if key == "enter" {
			if s.input.Value() == "" {
				return s, nil
			}
			return s, s.submit(grading.TextResponse{Answer: s.input.Value()})
		}
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd

	case catalog.KindDragAndDrop:
		return s, s.handleArrangeKey(msg)

	case catalog.KindAssignmentMemory:
		return s, s.handleMemoryKey(msg)

	case catalog.KindFindTheError:
		var chosen bool
		s.steps, chosen = s.steps.Update(msg)
		if chosen {
			return s, s.submit(grading.StepResponse{Step: s.steps.Selected + 1})
		}

	case catalog.KindMultipleChoice:
		switch key {
		case "y", "Y", "enter":
			if s.reveal.Decide(true) {
				return s, s.submit(s.reveal.Response())
			}
		case "n", "N":
			if s.reveal.Decide(false) {
				return s, s.submit(s.reveal.Response())
			}
		}
	}
	return s, nil
}

func (s *SessionScreen) handleArrangeKey(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "backspace" && len(s.arranged) > 0 {
		last := s.arranged[len(s.arranged)-1]
		s.arranged = s.arranged[:len(s.arranged)-1]
		delete(s.pool.Disabled, last)
		s.pool.Selected = last
		return nil
	}

	var chosen bool
	s.pool, chosen = s.pool.Update(msg)
	if !chosen {
		return nil
	}
	s.arranged = append(s.arranged, s.pool.Selected)
	s.pool.Disable(s.pool.Selected)
	if s.pool.Remaining() > 0 {
		return nil
	}
	return s.submit(grading.ArrangementResponse{Blocks: s.arrangement()})
}

// arrangement returns the placed block values in order.
func (s *SessionScreen) arrangement() []string {
	out := make([]string, len(s.arranged))
	for i, idx := range s.arranged {
		out[i] = s.pool.Options[idx]
	}
	return out
}

func (s *SessionScreen) handleMemoryKey(msg tea.KeyMsg) tea.Cmd {
	if s.pickedLeft < 0 {
		var chosen bool
		s.lefts, chosen = s.lefts.Update(msg)
		if chosen {
			s.pickedLeft = s.lefts.Selected
			s.lefts.Focused = false
			s.rights.Focused = true
		}
		return nil
	}

	if msg.String() == "backspace" {
		s.pickedLeft = -1
		s.lefts.Focused = true
		s.rights.Focused = false
		return nil
	}

	var chosen bool
	s.rights, chosen = s.rights.Update(msg)
	if !chosen {
		return nil
	}

	left := s.lefts.Options[s.pickedLeft]
	right := s.rights.Options[s.rights.Selected]
	matched := s.board.Try(left, right)
	s.lastMatch = &matched
	if matched {
		s.lefts.Disable(s.pickedLeft)
		s.rights.Disable(s.rights.Selected)
	}
	s.pickedLeft = -1
	s.lefts.Focused = true
	s.rights.Focused = false

	if s.board.Done() {
		return s.submit(s.board.Response())
	}
	return nil
}

// submit hands a response to the trainer.
func (s *SessionScreen) submit(resp grading.Response) tea.Cmd {
	taskID := s.task.ID
	return func() tea.Msg {
		out, err := s.trainer.Submit(context.Background(), taskID, resp)
		return answerGradedMsg{Outcome: out, Err: err}
	}
}

// showHint reveals the next hint of the task on display.
func (s *SessionScreen) showHint() tea.Cmd {
	if s.hints != nil {
		s.hintsShown = min(s.hintsShown+1, len(s.hints))
		return nil
	}
	taskID := s.task.ID
	return func() tea.Msg {
		hints, err := s.trainer.Hints(context.Background(), "", taskID)
		if hints == nil && err == nil {
			hints = []string{}
		}
		return hintsLoadedMsg{Hints: hints, Err: err}
	}
}

// advance moves past the feedback for the last answer.
func (s *SessionScreen) advance() (screen.Screen, tea.Cmd) {
	if sum := s.outcome.Summary; sum != nil {
		title := sum.BlockID
		if block, ok := s.trainer.Catalog().Block(sum.BlockID); ok {
			title = block.Title
		}
		s.trainer.Finish()
		return s, func() tea.Msg {
			return router.ReplaceScreenMsg{Screen: summary.New(sum, title, s.trainer.BadgeTitles(sum.EarnedBadges))}
		}
	}
	return s, s.loadTask()
}
