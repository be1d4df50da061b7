package grading

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/mathstudent/internal/catalog"
)

func task(p catalog.Payload) catalog.Task {
	return catalog.Task{ID: "t", Difficulty: 1, Payload: p}
}

func TestGradeSolveExpression(t *testing.T) {
	tk := task(catalog.SolveExpression{Question: "2x+3x", Solution: "5X"})
	tests := []struct {
		answer string
		want   bool
	}{
		{"5x", true},
		{" 5 x ", true},
		{"5X\t", true},
		{"6x", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.answer, func(t *testing.T) {
			res, err := Grade(tk, TextResponse{Answer: tt.answer})
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Correct)
			assert.Equal(t, "5X", res.CanonicalAnswer)
		})
	}
}

func TestGradeDragAndDrop(t *testing.T) {
	tk := task(catalog.DragAndDrop{Blocks: []string{"x", "+ 1", "2"}, FinalSolution: "2x + 1"})

	res, err := Grade(tk, ArrangementResponse{Blocks: []string{"2", "x", "+ 1"}})
	require.NoError(t, err)
	assert.True(t, res.Correct)

	res, err = Grade(tk, ArrangementResponse{Blocks: []string{"x", "2", "+ 1"}})
	require.NoError(t, err)
	assert.False(t, res.Correct)
	assert.Equal(t, "2x + 1", res.CanonicalAnswer)
}

func TestGradeFindTheError(t *testing.T) {
	tk := task(catalog.FindTheError{Steps: []catalog.Step{
		{Text: "2(x+1)", IsCorrect: true},
		{Text: "2x+1", IsCorrect: false},
		{Text: "2x+2", IsCorrect: true},
	}})

	res, err := Grade(tk, StepResponse{Step: 2})
	require.NoError(t, err)
	assert.True(t, res.Correct)

	res, err = Grade(tk, StepResponse{Step: 3})
	require.NoError(t, err)
	assert.False(t, res.Correct)
	assert.Equal(t, "Step 2: 2x+1", res.CanonicalAnswer)

	_, err = Grade(tk, StepResponse{Step: 1})
	assert.ErrorIs(t, err, ErrStepNotSelectable)

	_, err = Grade(tk, StepResponse{Step: 4})
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestGradeMultipleChoice(t *testing.T) {
	tk := task(catalog.MultipleChoice{Options: []string{"3/4", "2/6", "1/8"}, CorrectSolution: "3/4"})
	tests := []struct {
		name      string
		decisions []Decision
		want      bool
	}{
		{"accept solution first", []Decision{{"3/4", true}}, true},
		{"reject distractor then accept", []Decision{{"1/8", false}, {"3/4", true}}, true},
		{"accept distractor", []Decision{{"2/6", true}}, false},
		{"reject solution", []Decision{{"2/6", false}, {"3/4", false}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Grade(tk, ChoiceResponse{Decisions: tt.decisions})
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Correct)
			assert.Equal(t, "3/4", res.CanonicalAnswer)
		})
	}

	_, err := Grade(tk, ChoiceResponse{Decisions: []Decision{{"1/8", false}}})
	assert.ErrorIs(t, err, ErrIncomplete)
}

func TestGradeMultipleChoiceExhausted(t *testing.T) {
	// The stored solution is not among the options, so every option is
	// rightly rejected and the task still counts as failed.
	tk := task(catalog.MultipleChoice{Options: []string{"a", "b"}, CorrectSolution: "c"})
	res, err := Grade(tk, ChoiceResponse{Decisions: []Decision{{"a", false}, {"b", false}}})
	require.NoError(t, err)
	assert.False(t, res.Correct)
	assert.Equal(t, "c", res.CanonicalAnswer)
}

func TestGradeAssignmentMemory(t *testing.T) {
	tk := task(catalog.AssignmentMemory{Pairs: []catalog.Pair{
		{Left: "2x+x", Right: "3x"},
		{Left: "a*a", Right: "a²"},
	}})
	perfect := MemoryResponse{Attempts: []PairAttempt{{"a*a", "a²"}, {"2x+x", "3x"}}}
	withMiss := MemoryResponse{Attempts: []PairAttempt{{"a*a", "3x"}, {"a*a", "a²"}, {"2x+x", "3x"}}}

	tests := []struct {
		name   string
		policy MemoryPolicy
		resp   MemoryResponse
		want   bool
	}{
		{"strict perfect", MemoryStrict, perfect, true},
		{"strict miss", MemoryStrict, withMiss, false},
		{"lenient perfect", MemoryLenient, perfect, true},
		{"lenient miss then complete", MemoryLenient, withMiss, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := New(tt.policy).Grade(tk, tt.resp)
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Correct)
			assert.Equal(t, "2x+x = 3x, a*a = a²", res.CanonicalAnswer)
		})
	}

	_, err := New(MemoryLenient).Grade(tk, MemoryResponse{Attempts: []PairAttempt{{"a*a", "3x"}}})
	assert.ErrorIs(t, err, ErrIncomplete)

	strictMiss := MemoryResponse{Attempts: []PairAttempt{{"a*a", "3x"}}}
	res, err := New(MemoryStrict).Grade(tk, strictMiss)
	require.NoError(t, err, "a strict miss decides the task")
	assert.False(t, res.Correct)
}

func TestGradeRejectsMismatchedResponse(t *testing.T) {
	tk := task(catalog.SolveExpression{Solution: "1"})

	_, err := Grade(tk, StepResponse{Step: 2})
	assert.ErrorIs(t, err, ErrResponseMismatch)

	_, err = Grade(tk, nil)
	assert.ErrorIs(t, err, ErrResponseMismatch)

	res, err := Grade(tk, &TextResponse{Answer: "1"})
	require.NoError(t, err, "pointer responses are accepted")
	assert.True(t, res.Correct)
}

func TestGradeRejectsTypedNilResponse(t *testing.T) {
	tests := []struct {
		name string
		tk   catalog.Task
		resp Response
	}{
		{"text", task(catalog.SolveExpression{Solution: "1"}), (*TextResponse)(nil)},
		{"arrangement", task(catalog.DragAndDrop{FinalSolution: "1"}), (*ArrangementResponse)(nil)},
		{"memory", task(catalog.AssignmentMemory{Pairs: []catalog.Pair{{Left: "a", Right: "b"}}}), (*MemoryResponse)(nil)},
		{"step", task(catalog.FindTheError{}), (*StepResponse)(nil)},
		{"choice", task(catalog.MultipleChoice{}), (*ChoiceResponse)(nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				_, err := Grade(tt.tk, tt.resp)
				assert.ErrorIs(t, err, ErrResponseMismatch)
			})
		})
	}
}

func TestDecodeResponse(t *testing.T) {
	tests := []struct {
		kind catalog.Kind
		raw  string
		want Response
	}{
		{catalog.KindSolveExpression, `{"answer": "5x"}`, TextResponse{Answer: "5x"}},
		{catalog.KindDragAndDrop, `{"blocks": ["5", "x"]}`, ArrangementResponse{Blocks: []string{"5", "x"}}},
		{catalog.KindAssignmentMemory, `{"attempts": [{"left": "a", "right": "b"}]}`, MemoryResponse{Attempts: []PairAttempt{{"a", "b"}}}},
		{catalog.KindFindTheError, `{"step": 2}`, StepResponse{Step: 2}},
		{catalog.KindMultipleChoice, `{"decisions": [{"option": "x", "accept": true}]}`, ChoiceResponse{Decisions: []Decision{{"x", true}}}},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			got, err := DecodeResponse(tt.kind, json.RawMessage(tt.raw))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := DecodeResponse("bogus", json.RawMessage(`{}`))
	assert.Error(t, err)
	_, err = DecodeResponse(catalog.KindFindTheError, json.RawMessage(`{"step": "two"}`))
	assert.Error(t, err)
}

func TestParseMemoryPolicy(t *testing.T) {
	p, err := ParseMemoryPolicy("")
	require.NoError(t, err)
	assert.Equal(t, MemoryStrict, p)

	p, err = ParseMemoryPolicy("lenient")
	require.NoError(t, err)
	assert.Equal(t, MemoryLenient, p)

	_, err = ParseMemoryPolicy("forgiving")
	assert.Error(t, err)
}
