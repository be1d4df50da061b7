// Package grading decides whether a response solves a task.
package grading

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/abhisek/mathstudent/internal/catalog"
)

var (
	// ErrResponseMismatch is returned when a response does not fit the task kind.
	ErrResponseMismatch = errors.New("response does not match task type")

	// ErrStepNotSelectable is returned when the original expression of a
	// find_the_error task is chosen.
	ErrStepNotSelectable = errors.New("the first step cannot be selected")

	// ErrIncomplete is returned when a response ends before the task is decided.
	ErrIncomplete = errors.New("response is incomplete")

	// ErrInvalidResponse is returned for out-of-range or malformed responses.
	ErrInvalidResponse = errors.New("invalid response")
)

// MemoryPolicy decides how wrong pair attempts are treated.
type MemoryPolicy string

const (
	// MemoryStrict ends the task as incorrect on the first wrong pair.
	MemoryStrict MemoryPolicy = "strict"
	// MemoryLenient lets the learner retry; the task is correct once every
	// pair is matched.
	MemoryLenient MemoryPolicy = "lenient"
)

// ParseMemoryPolicy validates a policy name. Empty means strict.
func ParseMemoryPolicy(s string) (MemoryPolicy, error) {
	switch p := MemoryPolicy(s); p {
	case MemoryStrict, MemoryLenient:
		return p, nil
	case "":
		return MemoryStrict, nil
	default:
		return "", fmt.Errorf("unknown memory policy %q (want strict or lenient)", s)
	}
}

// Result is the outcome of grading one response.
type Result struct {
	Correct         bool   `json:"correct"`
	CanonicalAnswer string `json:"canonicalAnswer"`
}

// Grader grades responses under a memory policy.
type Grader struct {
	policy MemoryPolicy
}

// New returns a Grader. An empty policy means strict.
func New(policy MemoryPolicy) *Grader {
	if policy == "" {
		policy = MemoryStrict
	}
	return &Grader{policy: policy}
}

// Policy returns the memory policy in effect.
func (g *Grader) Policy() MemoryPolicy { return g.policy }

// Grade grades resp against task under the strict memory policy.
func Grade(task catalog.Task, resp Response) (Result, error) {
	return New(MemoryStrict).Grade(task, resp)
}

// Grade evaluates resp against task.
func (g *Grader) Grade(task catalog.Task, resp Response) (Result, error) {
	if isNilResponse(resp) || resp.Kind() != task.Kind() {
		return Result{}, fmt.Errorf("%w: task %s is %s", ErrResponseMismatch, task.ID, task.Kind())
	}

	switch p := task.Payload.(type) {
	case catalog.SolveExpression:
		r, err := as[TextResponse](resp)
		if err != nil {
			return Result{}, err
		}
		return Result{
			Correct:         strings.EqualFold(stripSpace(r.Answer), stripSpace(p.Solution)),
			CanonicalAnswer: p.Solution,
		}, nil

	case catalog.DragAndDrop:
		r, err := as[ArrangementResponse](resp)
		if err != nil {
			return Result{}, err
		}
		return Result{
			Correct:         stripSpace(strings.Join(r.Blocks, "")) == stripSpace(p.FinalSolution),
			CanonicalAnswer: p.FinalSolution,
		}, nil

	case catalog.AssignmentMemory:
		r, err := as[MemoryResponse](resp)
		if err != nil {
			return Result{}, err
		}
		return g.gradeMemory(p, r)

	case catalog.FindTheError:
		r, err := as[StepResponse](resp)
		if err != nil {
			return Result{}, err
		}
		return gradeStep(p, r)

	case catalog.MultipleChoice:
		r, err := as[ChoiceResponse](resp)
		if err != nil {
			return Result{}, err
		}
		return gradeChoice(p, r)

	default:
		return Result{}, fmt.Errorf("%w: unsupported payload %T", ErrResponseMismatch, task.Payload)
	}
}

// isNilResponse reports whether resp is nil or a typed nil pointer.
func isNilResponse(resp Response) bool {
	switch r := any(resp).(type) {
	case nil:
		return true
	case *TextResponse:
		return r == nil
	case *ArrangementResponse:
		return r == nil
	case *MemoryResponse:
		return r == nil
	case *StepResponse:
		return r == nil
	case *ChoiceResponse:
		return r == nil
	}
	return false
}

// as unwraps a response given by value or by pointer.
func as[T Response](resp Response) (T, error) {
	switch r := any(resp).(type) {
	case T:
		return r, nil
	case *T:
		if r != nil {
			return *r, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("%w: got %T", ErrResponseMismatch, resp)
}

func (g *Grader) gradeMemory(p catalog.AssignmentMemory, r MemoryResponse) (Result, error) {
	board := NewMemoryBoard(p, g.policy)
	for _, a := range r.Attempts {
		if board.Done() {
			break
		}
		board.Try(a.Left, a.Right)
	}
	if !board.Done() {
		return Result{}, fmt.Errorf("%w: %d of %d pairs matched", ErrIncomplete, board.Matched(), len(p.Pairs))
	}
	return board.Result(), nil
}

func gradeStep(p catalog.FindTheError, r StepResponse) (Result, error) {
	if r.Step < 1 || r.Step > len(p.Steps) {
		return Result{}, fmt.Errorf("%w: step %d out of range 2..%d", ErrInvalidResponse, r.Step, len(p.Steps))
	}
	if r.Step == 1 {
		return Result{}, ErrStepNotSelectable
	}
	faulty := p.FaultyStep()
	canonical := ""
	if faulty > 0 {
		canonical = fmt.Sprintf("Step %d: %s", faulty, p.Steps[faulty-1].Text)
	}
	return Result{Correct: r.Step == faulty, CanonicalAnswer: canonical}, nil
}

// gradeChoice replays the reveal sequence. Accepting the solution is the
// only way to be correct; rejecting it, accepting a distractor, or
// rejecting every option is incorrect.
func gradeChoice(p catalog.MultipleChoice, r ChoiceResponse) (Result, error) {
	rejected := make(map[string]bool, len(p.Options))
	for _, d := range r.Decisions {
		isSolution := d.Option == p.CorrectSolution
		switch {
		case d.Accept:
			return Result{Correct: isSolution, CanonicalAnswer: p.CorrectSolution}, nil
		case isSolution:
			return Result{Correct: false, CanonicalAnswer: p.CorrectSolution}, nil
		default:
			rejected[d.Option] = true
		}
	}
	for _, o := range p.Options {
		if !rejected[o] {
			return Result{}, fmt.Errorf("%w: option %q was never decided", ErrIncomplete, o)
		}
	}
	return Result{Correct: false, CanonicalAnswer: p.CorrectSolution}, nil
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
