package api

import (
	"slices"

	"github.com/abhisek/mathstudent/internal/catalog"
	"github.com/abhisek/mathstudent/internal/progress"
	"github.com/abhisek/mathstudent/internal/session"
)

// taskView is a task as shown to the learner. Solutions are never sent.
type taskView struct {
	ID         catalog.TaskID `json:"id"`
	Type       catalog.Kind   `json:"type"`
	Difficulty int            `json:"difficulty"`
	Question   string         `json:"question"`
	HintCount  int            `json:"hintCount"`

	Blocks  []string `json:"blocks,omitempty"`
	Lefts   []string `json:"lefts,omitempty"`
	Rights  []string `json:"rights,omitempty"`
	Steps   []string `json:"steps,omitempty"`
	Options []string `json:"options,omitempty"`
}

func newTaskView(t catalog.Task) *taskView {
	v := &taskView{
		ID:         t.ID,
		Type:       t.Kind(),
		Difficulty: t.Difficulty,
		HintCount:  len(t.Hints),
	}
	if t.Payload != nil {
		v.Question = t.Payload.Prompt()
	}

	switch p := t.Payload.(type) {
	case catalog.DragAndDrop:
		v.Blocks = slices.Clone(p.Blocks)
	case catalog.AssignmentMemory:
		for _, pair := range p.Pairs {
			v.Lefts = append(v.Lefts, pair.Left)
			v.Rights = append(v.Rights, pair.Right)
		}
		// Pair order would give the matches away.
		slices.Sort(v.Rights)
	case catalog.FindTheError:
		for _, step := range p.Steps {
			v.Steps = append(v.Steps, step.Text)
		}
	case catalog.MultipleChoice:
		v.Options = slices.Clone(p.Options)
	}
	return v
}

type sessionView struct {
	ID           string               `json:"id"`
	BlockID      string               `json:"blockId"`
	Level        int                  `json:"level"`
	Mode         progress.Mode        `json:"mode"`
	Phase        session.Phase        `json:"phase"`
	Replay       bool                 `json:"replay"`
	Total        int                  `json:"total"`
	Answered     int                  `json:"answered"`
	CorrectCount int                  `json:"correctCount"`
	Errors       int                  `json:"errors"`
	Results      []session.TaskResult `json:"results"`
	EarnedBadges []string             `json:"earnedBadges"`
	Current      *taskView            `json:"current,omitempty"`
}

func newSessionView(sess *session.Session) sessionView {
	v := sessionView{
		ID:           sess.ID,
		BlockID:      sess.BlockID,
		Level:        sess.Level,
		Mode:         sess.Mode,
		Phase:        sess.Phase,
		Replay:       sess.Replay,
		Total:        sess.Total(),
		Answered:     sess.Answered(),
		CorrectCount: sess.CorrectCount,
		Errors:       sess.Errors,
		Results:      sess.Results,
		EarnedBadges: sess.EarnedBadges,
	}
	if v.Results == nil {
		v.Results = []session.TaskResult{}
	}
	if v.EarnedBadges == nil {
		v.EarnedBadges = []string{}
	}
	if task, ok := sess.Current(); ok {
		v.Current = newTaskView(task)
	}
	return v
}
