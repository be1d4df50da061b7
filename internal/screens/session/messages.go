package session

import (
	"github.com/abhisek/mathstudent/internal/catalog"
	sess "github.com/abhisek/mathstudent/internal/session"
)

// taskReadyMsg is sent when the next task is loaded from the trainer.
type taskReadyMsg struct {
	Task catalog.Task
	OK   bool
}

// answerGradedMsg is sent when the trainer has graded and persisted an answer.
type answerGradedMsg struct {
	Outcome *sess.Outcome
	Err     error
}

// hintsLoadedMsg carries the hints of the task on display.
type hintsLoadedMsg struct {
	Hints []string
	Err   error
}
