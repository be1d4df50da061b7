package grading

import (
	"encoding/json"
	"fmt"

	"github.com/abhisek/mathstudent/internal/catalog"
)

// Response is a learner's answer to one task. The set of implementations
// is closed: one struct per task kind.
type Response interface {
	Kind() catalog.Kind
	isResponse()
}

// TextResponse answers a solve_expression task.
type TextResponse struct {
	Answer string `json:"answer"`
}

// ArrangementResponse answers a drag_and_drop task with the block values
// in their final order.
type ArrangementResponse struct {
	Blocks []string `json:"blocks"`
}

// PairAttempt is one attempted match in an assignment memory task.
type PairAttempt struct {
	Left  string `json:"left"`
	Right string `json:"right"`
}

// MemoryResponse answers an assignment_memory task with every attempt in order.
type MemoryResponse struct {
	Attempts []PairAttempt `json:"attempts"`
}

// StepResponse answers a find_the_error task with a 1-based step number.
type StepResponse struct {
	Step int `json:"step"`
}

// Decision is an accept or reject of one revealed option.
type Decision struct {
	Option string `json:"option"`
	Accept bool   `json:"accept"`
}

// ChoiceResponse answers a multiple_choice task with the decisions made
// as options were revealed one at a time.
type ChoiceResponse struct {
	Decisions []Decision `json:"decisions"`
}

func (TextResponse) Kind() catalog.Kind        { return catalog.KindSolveExpression }
func (ArrangementResponse) Kind() catalog.Kind { return catalog.KindDragAndDrop }
func (MemoryResponse) Kind() catalog.Kind      { return catalog.KindAssignmentMemory }
func (StepResponse) Kind() catalog.Kind        { return catalog.KindFindTheError }
func (ChoiceResponse) Kind() catalog.Kind      { return catalog.KindMultipleChoice }

func (TextResponse) isResponse()        {}
func (ArrangementResponse) isResponse() {}
func (MemoryResponse) isResponse()      {}
func (StepResponse) isResponse()        {}
func (ChoiceResponse) isResponse()      {}

// DecodeResponse parses the JSON form of a response for a task kind.
func DecodeResponse(kind catalog.Kind, raw json.RawMessage) (Response, error) {
	var (
		resp Response
		err  error
	)
	switch kind {
	case catalog.KindSolveExpression:
		var r TextResponse
		err = json.Unmarshal(raw, &r)
		resp = r
	case catalog.KindDragAndDrop:
		var r ArrangementResponse
		err = json.Unmarshal(raw, &r)
		resp = r
	case catalog.KindAssignmentMemory:
		var r MemoryResponse
		err = json.Unmarshal(raw, &r)
		resp = r
	case catalog.KindFindTheError:
		var r StepResponse
		err = json.Unmarshal(raw, &r)
		resp = r
	case catalog.KindMultipleChoice:
		var r ChoiceResponse
		err = json.Unmarshal(raw, &r)
		resp = r
	default:
		return nil, fmt.Errorf("unknown task type %q", kind)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s response: %w", kind, err)
	}
	return resp, nil
}
