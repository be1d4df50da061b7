package session

import (
	"fmt"
	"slices"
	"time"

	"github.com/abhisek/mathstudent/internal/catalog"
	"github.com/abhisek/mathstudent/internal/progress"
)

// Phase represents the lifecycle phase of a session.
type Phase int

const (
	PhaseIdle       Phase = iota // No task served yet, or returned to dashboard
	PhaseInProgress              // Serving tasks
	PhaseCompleted               // Every task answered, summary available
)

func (p Phase) String() string {
	switch p {
	case PhaseInProgress:
		return "in_progress"
	case PhaseCompleted:
		return "completed"
	default:
		return "idle"
	}
}

// MarshalText encodes the phase by name.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText decodes a phase name written by MarshalText.
func (p *Phase) UnmarshalText(b []byte) error {
	switch string(b) {
	case "idle":
		*p = PhaseIdle
	case "in_progress":
		*p = PhaseInProgress
	case "completed":
		*p = PhaseCompleted
	default:
		return fmt.Errorf("unknown session phase %q", b)
	}
	return nil
}

// TaskResult records the outcome of one session task.
type TaskResult struct {
	TaskID  catalog.TaskID `json:"taskId"`
	Correct bool           `json:"correct"`

	// Skipped is set for tasks carried over as already completed when a
	// fixed-level attempt is resumed.
	Skipped bool `json:"skipped,omitempty"`
}

// Session tracks one run through a selected task list. It is never persisted.
type Session struct {
	// ID is the UUID for this session.
	ID string `json:"id"`

	BlockID string        `json:"blockId"`
	Level   int           `json:"level"`
	Mode    progress.Mode `json:"mode"`

	// Tasks is the ordered task list chosen by the selector.
	Tasks []catalog.Task `json:"tasks"`

	// CurrentIndex is the index into Tasks of the task awaiting an answer.
	CurrentIndex int `json:"currentIndex"`

	// CorrectCount is the count of correct answers given in this session.
	CorrectCount int `json:"correctCount"`

	// Errors is the count of incorrect answers given in this session.
	Errors int `json:"errors"`

	Results []TaskResult `json:"results"`
	Phase   Phase        `json:"phase"`

	// Replay is set when a fully completed fixed level is practiced again;
	// answers then leave level progress untouched.
	Replay bool `json:"replay"`

	// EarnedBadges accumulates badge ids awarded during the session.
	EarnedBadges []string `json:"earnedBadges"`

	// LevelUnlocked is set once the session unlocks a new level.
	LevelUnlocked bool `json:"levelUnlocked"`

	StartTime time.Time `json:"startTime"`
}

// Current returns the task awaiting an answer.
func (s *Session) Current() (catalog.Task, bool) {
	if s.Phase != PhaseInProgress || s.CurrentIndex >= len(s.Tasks) {
		return catalog.Task{}, false
	}
	return s.Tasks[s.CurrentIndex], true
}

// Total returns the number of tasks in the session.
func (s *Session) Total() int { return len(s.Tasks) }

// Answered returns the number of tasks already behind the learner.
func (s *Session) Answered() int { return s.CurrentIndex }

// Task looks up a session task by id.
func (s *Session) Task(id catalog.TaskID) (catalog.Task, bool) {
	for _, t := range s.Tasks {
		if t.ID == id {
			return t, true
		}
	}
	return catalog.Task{}, false
}

// Clone returns a copy of the session that shares only the immutable tasks.
func (s *Session) Clone() *Session {
	c := *s
	c.Tasks = slices.Clone(s.Tasks)
	c.Results = slices.Clone(s.Results)
	c.EarnedBadges = slices.Clone(s.EarnedBadges)
	return &c
}
