package grading

import (
	"strings"

	"github.com/abhisek/mathstudent/internal/catalog"
)

// MemoryBoard tracks an assignment memory task as pairs are attempted.
type MemoryBoard struct {
	pairs    []catalog.Pair
	matched  []bool
	policy   MemoryPolicy
	attempts []PairAttempt
	misses   int
}

// NewMemoryBoard starts a board for the task's pairs.
func NewMemoryBoard(p catalog.AssignmentMemory, policy MemoryPolicy) *MemoryBoard {
	if policy == "" {
		policy = MemoryStrict
	}
	return &MemoryBoard{
		pairs:   p.Pairs,
		matched: make([]bool, len(p.Pairs)),
		policy:  policy,
	}
}

// Try attempts to match left with right and reports whether they form an
// unmatched pair. Attempts after the board is done are ignored.
func (b *MemoryBoard) Try(left, right string) bool {
	if b.Done() {
		return false
	}
	b.attempts = append(b.attempts, PairAttempt{Left: left, Right: right})
	for i, p := range b.pairs {
		if !b.matched[i] && p.Left == left && p.Right == right {
			b.matched[i] = true
			return true
		}
	}
	b.misses++
	return false
}

// Matched returns how many pairs have been matched.
func (b *MemoryBoard) Matched() int {
	n := 0
	for _, m := range b.matched {
		if m {
			n++
		}
	}
	return n
}

// Misses returns how many attempts were wrong.
func (b *MemoryBoard) Misses() int { return b.misses }

// Done reports whether the task is decided: every pair matched, or a
// miss under the strict policy.
func (b *MemoryBoard) Done() bool {
	if b.policy == MemoryStrict && b.misses > 0 {
		return true
	}
	return b.Matched() == len(b.pairs)
}

// Remaining returns the pairs not yet matched.
func (b *MemoryBoard) Remaining() []catalog.Pair {
	var out []catalog.Pair
	for i, p := range b.pairs {
		if !b.matched[i] {
			out = append(out, p)
		}
	}
	return out
}

// Result grades the board. Under the strict policy a single miss fails
// the task; under the lenient policy matching every pair is enough.
func (b *MemoryBoard) Result() Result {
	correct := b.Matched() == len(b.pairs)
	if b.policy == MemoryStrict {
		correct = correct && b.misses == 0
	}
	return Result{Correct: correct, CanonicalAnswer: formatPairs(b.pairs)}
}

// Response returns the attempts made so far.
func (b *MemoryBoard) Response() MemoryResponse {
	return MemoryResponse{Attempts: append([]PairAttempt(nil), b.attempts...)}
}

func formatPairs(pairs []catalog.Pair) string {
	parts := make([]string, len(pairs))
	for i, p := range pairs {
		parts[i] = p.Left + " = " + p.Right
	}
	return strings.Join(parts, ", ")
}
