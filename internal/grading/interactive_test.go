package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/mathstudent/internal/catalog"
)

type lastIndex struct{}

func (lastIndex) IntN(n int) int { return n - 1 }

func TestRevealWalksOptions(t *testing.T) {
	mc := catalog.MultipleChoice{Options: []string{"a", "b", "c"}, CorrectSolution: "c"}
	v := NewReveal(mc, lastIndex{})

	opt, ok := v.Current()
	require.True(t, ok)
	assert.Equal(t, "a", opt)
	pos, total := v.Position()
	assert.Equal(t, 1, pos)
	assert.Equal(t, 3, total)

	assert.False(t, v.Decide(false))
	assert.False(t, v.Decide(false))
	assert.True(t, v.Decide(true))
	assert.True(t, v.Done())

	res, err := Grade(catalog.Task{ID: "t", Payload: mc}, v.Response())
	require.NoError(t, err)
	assert.True(t, res.Correct)
}

func TestRevealRejectingSolutionEndsTask(t *testing.T) {
	mc := catalog.MultipleChoice{Options: []string{"a", "b"}, CorrectSolution: "a"}
	v := NewReveal(mc, lastIndex{})

	assert.True(t, v.Decide(false))
	_, ok := v.Current()
	assert.False(t, ok)

	res, err := Grade(catalog.Task{ID: "t", Payload: mc}, v.Response())
	require.NoError(t, err)
	assert.False(t, res.Correct)
}

func TestMemoryBoardStrict(t *testing.T) {
	mem := catalog.AssignmentMemory{Pairs: []catalog.Pair{{Left: "1", Right: "one"}, {Left: "2", Right: "two"}}}
	b := NewMemoryBoard(mem, MemoryStrict)

	assert.True(t, b.Try("1", "one"))
	assert.Len(t, b.Remaining(), 1)
	assert.False(t, b.Try("2", "one"))
	assert.True(t, b.Done(), "first miss ends a strict board")
	assert.False(t, b.Try("2", "two"), "attempts after the end are ignored")
	assert.False(t, b.Result().Correct)
	assert.Len(t, b.Response().Attempts, 2)
}

func TestMemoryBoardLenient(t *testing.T) {
	mem := catalog.AssignmentMemory{Pairs: []catalog.Pair{{Left: "1", Right: "one"}, {Left: "2", Right: "two"}}}
	b := NewMemoryBoard(mem, MemoryLenient)

	b.Try("1", "two")
	assert.False(t, b.Done())
	b.Try("1", "one")
	b.Try("2", "two")
	assert.True(t, b.Done())
	assert.Equal(t, 1, b.Misses())
	assert.True(t, b.Result().Correct)
}
