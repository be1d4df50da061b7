package grading

import (
	"github.com/abhisek/mathstudent/internal/catalog"
	"github.com/abhisek/mathstudent/internal/shuffle"
)

// Reveal walks a multiple choice task one option at a time.
type Reveal struct {
	options   []string
	solution  string
	index     int
	decisions []Decision
	done      bool
}

// NewReveal shuffles the task's options with r.
func NewReveal(p catalog.MultipleChoice, r shuffle.Rand) *Reveal {
	return &Reveal{
		options:  shuffle.Slice(r, p.Options),
		solution: p.CorrectSolution,
		done:     len(p.Options) == 0,
	}
}

// Current returns the option on display.
func (v *Reveal) Current() (string, bool) {
	if v.done || v.index >= len(v.options) {
		return "", false
	}
	return v.options[v.index], true
}

// Position returns the 1-based index of the option on display and the
// number of options.
func (v *Reveal) Position() (int, int) {
	return v.index + 1, len(v.options)
}

// Decide accepts or rejects the option on display and reports whether the
// task is now decided. Rejecting a distractor moves to the next option.
func (v *Reveal) Decide(accept bool) bool {
	opt, ok := v.Current()
	if !ok {
		return true
	}
	v.decisions = append(v.decisions, Decision{Option: opt, Accept: accept})
	if accept || opt == v.solution {
		v.done = true
		return true
	}
	v.index++
	if v.index >= len(v.options) {
		v.done = true
	}
	return v.done
}

// Done reports whether the task is decided.
func (v *Reveal) Done() bool { return v.done }

// Response returns the decisions made so far.
func (v *Reveal) Response() ChoiceResponse {
	return ChoiceResponse{Decisions: append([]Decision(nil), v.decisions...)}
}
