package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Kind identifies how a task is presented and graded.
type Kind string

const (
	KindSolveExpression  Kind = "solve_expression"
	KindDragAndDrop      Kind = "drag_and_drop"
	KindAssignmentMemory Kind = "assignment_memory"
	KindFindTheError     Kind = "find_the_error"
	KindMultipleChoice   Kind = "multiple_choice"
)

// AllKinds returns every task kind in display order.
func AllKinds() []Kind {
	return []Kind{
		KindSolveExpression,
		KindDragAndDrop,
		KindAssignmentMemory,
		KindFindTheError,
		KindMultipleChoice,
	}
}

// Valid reports whether k is one of the known task kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindSolveExpression, KindDragAndDrop, KindAssignmentMemory, KindFindTheError, KindMultipleChoice:
		return true
	}
	return false
}

// DisplayName returns a human-readable label for the kind.
func (k Kind) DisplayName() string {
	switch k {
	case KindSolveExpression:
		return "Solve"
	case KindDragAndDrop:
		return "Arrange"
	case KindAssignmentMemory:
		return "Memory"
	case KindFindTheError:
		return "Find the error"
	case KindMultipleChoice:
		return "Multiple choice"
	default:
		return string(k)
	}
}

// TaskID identifies a task within its block. Catalog documents may write
// ids as numbers or strings; both decode to the same TaskID.
type TaskID string

func (id *TaskID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = TaskID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("task id must be a string or number: %w", err)
	}
	*id = TaskID(n.String())
	return nil
}

func (id TaskID) String() string { return string(id) }

// Payload is the kind-specific content of a task. The set of
// implementations is closed: one struct per Kind.
type Payload interface {
	Kind() Kind
	Prompt() string
	isPayload()
}

// SolveExpression asks for a typed answer.
type SolveExpression struct {
	Question string `json:"question"`
	Solution string `json:"solution"`
}

// DragAndDrop asks the user to arrange Blocks into FinalSolution.
type DragAndDrop struct {
	Question      string   `json:"question"`
	Blocks        []string `json:"blocks"`
	FinalSolution string   `json:"finalSolution"`
}

// Pair is one left/right match of an assignment memory task.
type Pair struct {
	Left  string `json:"left"`
	Right string `json:"right"`
}

// AssignmentMemory asks the user to match every pair.
type AssignmentMemory struct {
	Question string `json:"question"`
	Pairs    []Pair `json:"pairs"`
}

// Step is one line of a worked solution. Exactly one step of a
// FindTheError task has IsCorrect set to false.
type Step struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"isCorrect"`
}

// FindTheError asks the user to point at the faulty step.
type FindTheError struct {
	Question string `json:"question"`
	Steps    []Step `json:"steps"`
}

// MultipleChoice reveals Options one at a time for accept/reject.
type MultipleChoice struct {
	Question        string   `json:"question"`
	Options         []string `json:"options"`
	CorrectSolution string   `json:"correctSolution"`
}

func (SolveExpression) Kind() Kind  { return KindSolveExpression }
func (DragAndDrop) Kind() Kind      { return KindDragAndDrop }
func (AssignmentMemory) Kind() Kind { return KindAssignmentMemory }
func (FindTheError) Kind() Kind     { return KindFindTheError }
func (MultipleChoice) Kind() Kind   { return KindMultipleChoice }

func (p SolveExpression) Prompt() string  { return p.Question }
func (p DragAndDrop) Prompt() string      { return p.Question }
func (p AssignmentMemory) Prompt() string { return p.Question }
func (p FindTheError) Prompt() string     { return p.Question }
func (p MultipleChoice) Prompt() string   { return p.Question }

func (SolveExpression) isPayload()  {}
func (DragAndDrop) isPayload()      {}
func (AssignmentMemory) isPayload() {}
func (FindTheError) isPayload()     {}
func (MultipleChoice) isPayload()   {}

// FaultyStep returns the 1-based number of the step flagged as wrong,
// or 0 if no step is flagged.
func (p FindTheError) FaultyStep() int {
	for i, s := range p.Steps {
		if !s.IsCorrect {
			return i + 1
		}
	}
	return 0
}

// Task is a single immutable catalog entry.
type Task struct {
	ID         TaskID
	Difficulty int
	Payload    Payload
	Hints      []string
}

// Kind returns the interaction kind of the task.
func (t Task) Kind() Kind {
	if t.Payload == nil {
		return ""
	}
	return t.Payload.Kind()
}

// taskDoc is the wire form of a Task.
type taskDoc struct {
	ID         TaskID          `json:"id"`
	Difficulty int             `json:"difficulty"`
	Type       Kind            `json:"type"`
	Data       json.RawMessage `json:"data"`
	Hints      []string        `json:"hints,omitempty"`
}

func (t *Task) UnmarshalJSON(b []byte) error {
	var doc taskDoc
	if err := json.Unmarshal(b, &doc); err != nil {
		return err
	}
	payload, err := decodePayload(doc.Type, doc.Data)
	if err != nil {
		return fmt.Errorf("task %s: %w", doc.ID, err)
	}
	*t = Task{
		ID:         doc.ID,
		Difficulty: doc.Difficulty,
		Payload:    payload,
		Hints:      doc.Hints,
	}
	return nil
}

func (t Task) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(t.Payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(taskDoc{
		ID:         t.ID,
		Difficulty: t.Difficulty,
		Type:       t.Kind(),
		Data:       data,
		Hints:      t.Hints,
	})
}

func decodePayload(kind Kind, data json.RawMessage) (Payload, error) {
	if len(data) == 0 {
		data = []byte("{}")
	}
	switch kind {
	case KindSolveExpression:
		var p SolveExpression
		err := json.Unmarshal(data, &p)
		return p, err
	case KindDragAndDrop:
		var p DragAndDrop
		err := json.Unmarshal(data, &p)
		return p, err
	case KindAssignmentMemory:
		var p AssignmentMemory
		err := json.Unmarshal(data, &p)
		return p, err
	case KindFindTheError:
		var p FindTheError
		err := json.Unmarshal(data, &p)
		return p, err
	case KindMultipleChoice:
		var p MultipleChoice
		err := json.Unmarshal(data, &p)
		return p, err
	default:
		return nil, fmt.Errorf("unknown task type %s", strconv.Quote(string(kind)))
	}
}
