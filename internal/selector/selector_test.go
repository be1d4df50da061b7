package selector

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/mathstudent/internal/catalog"
	"github.com/abhisek/mathstudent/internal/progress"
	"github.com/abhisek/mathstudent/internal/testutil"
)

func ids(tasks []catalog.Task) []catalog.TaskID {
	out := make([]catalog.TaskID, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func TestShuffleIsAPermutation(t *testing.T) {
	s := New(rand.New(rand.NewPCG(1, 2)))
	in := testutil.LevelTasks("t", 1, 20)

	out := s.Shuffle(in)
	assert.ElementsMatch(t, ids(in), ids(out))
	assert.Equal(t, catalog.TaskID("t1-1"), in[0].ID, "input is not modified")
}

func TestShuffleUsesInjectedSource(t *testing.T) {
	in := testutil.LevelTasks("t", 1, 3)

	assert.Equal(t, ids(in), ids(New(testutil.IdentityRand{}).Shuffle(in)))
	assert.Equal(t,
		[]catalog.TaskID{"t1-2", "t1-3", "t1-1"},
		ids(New(testutil.ZeroRand{}).Shuffle(in)))
}

func TestShuffleIsUniform(t *testing.T) {
	s := New(rand.New(rand.NewPCG(7, 11)))
	in := testutil.LevelTasks("t", 1, 3)
	counts := map[catalog.TaskID]int{}
	const rounds = 6000
	for i := 0; i < rounds; i++ {
		counts[s.Shuffle(in)[0].ID]++
	}
	for id, n := range counts {
		assert.InDelta(t, rounds/3, n, rounds/20, "first position %s", id)
	}
}

func TestStarred(t *testing.T) {
	block := testutil.NewBlock("1",
		append(testutil.LevelTasks("a", 1, 8), testutil.LevelTasks("a", 2, 3)...)...)
	s := New(testutil.IdentityRand{})

	got := s.Starred(block, 1)
	assert.Len(t, got, StarSessionSize)
	for _, task := range got {
		assert.Equal(t, 1, task.Difficulty)
	}

	assert.Len(t, s.Starred(block, 2), 3, "short levels return what exists")
	assert.Empty(t, s.Starred(block, 4))
}

func TestAdaptiveExactDifficulty(t *testing.T) {
	block := testutil.NewBlock("1",
		append(testutil.LevelTasks("a", 2, 8), testutil.LevelTasks("a", 3, 8)...)...)
	bp := progress.NewBlockProgress()
	bp.RecordAnswer("a2-1", true)
	bp.RecordAnswer("a2-2", true)

	got := New(testutil.IdentityRand{}).Adaptive(block, bp, 2, 5)
	require.Len(t, got, 5)
	for _, task := range got {
		assert.Equal(t, 2, task.Difficulty)
		assert.NotContains(t, []catalog.TaskID{"a2-1", "a2-2"}, task.ID, "recently seen tasks are skipped")
	}
}

func TestAdaptiveWidensToAdjacentDifficulty(t *testing.T) {
	block := testutil.NewBlock("1",
		append(testutil.LevelTasks("a", 1, 2), testutil.LevelTasks("a", 4, 2)...)...)
	bp := progress.NewBlockProgress()

	got := New(testutil.IdentityRand{}).Adaptive(block, bp, 2, 5)
	assert.ElementsMatch(t, []catalog.TaskID{"a1-1", "a1-2"}, ids(got))

	sparse := testutil.NewBlock("2", testutil.LevelTasks("b", 1, 2)...)
	assert.Empty(t, New(nil).Adaptive(sparse, bp, 4, 5), "no widening past one level")
}

func TestAdaptiveSmallPoolIgnoresRecent(t *testing.T) {
	block := testutil.NewBlock("1", testutil.LevelTasks("a", 1, 4)...)
	bp := progress.NewBlockProgress()
	for _, task := range block.Tasks {
		bp.RecordAnswer(task.ID, true)
	}

	got := New(testutil.IdentityRand{}).Adaptive(block, bp, 1, 2)
	assert.Len(t, got, 4, "small pools return every task")
}

func TestAdaptiveSkipsRecentWindow(t *testing.T) {
	block := testutil.NewBlock("1", testutil.LevelTasks("a", 1, 6)...)
	bp := progress.NewBlockProgress()
	for _, id := range []catalog.TaskID{"a1-1", "a1-2", "a1-3", "a1-4", "a1-5"} {
		bp.RecordAnswer(id, true)
	}

	got := New(testutil.IdentityRand{}).Adaptive(block, bp, 1, 3)
	assert.Equal(t, []catalog.TaskID{"a1-6"}, ids(got))

	// a1-1 slides out of the five-answer window.
	bp.RecordAnswer("a1-6", true)
	got = New(testutil.IdentityRand{}).Adaptive(block, bp, 1, 3)
	assert.Equal(t, []catalog.TaskID{"a1-1"}, ids(got))
}

func TestFixedLevelOrdersCompletedFirst(t *testing.T) {
	block := testutil.NewBlock("1",
		append(testutil.LevelTasks("a", 1, 2), testutil.LevelTasks("a", 2, 4)...)...)
	bp := progress.NewBlockProgress()
	bp.UnlockedLevel = 2
	bp.CurrentLevelProgress = []catalog.TaskID{"a2-3", "a2-1"}

	got, replay := New(testutil.ZeroRand{}).FixedLevel(block, bp)
	assert.False(t, replay)
	assert.Equal(t, []catalog.TaskID{"a2-1", "a2-3", "a2-4", "a2-2"}, ids(got))
}

func TestFixedLevelReplayWhenComplete(t *testing.T) {
	block := testutil.NewBlock("1", testutil.LevelTasks("a", 5, 3)...)
	bp := progress.NewBlockProgress()
	bp.UnlockedLevel = 5
	bp.CurrentLevelProgress = []catalog.TaskID{"a5-1", "a5-2", "a5-3"}

	got, replay := New(testutil.IdentityRand{}).FixedLevel(block, bp)
	assert.True(t, replay)
	assert.Len(t, got, 3)
}

func TestFixedLevelIsStrict(t *testing.T) {
	block := testutil.NewBlock("1", testutil.LevelTasks("a", 1, 3)...)
	bp := progress.NewBlockProgress()
	bp.UnlockedLevel = 2

	got, _ := New(nil).FixedLevel(block, bp)
	assert.Empty(t, got, "no fallback to other levels")
}

func TestSelectReportsNoTasks(t *testing.T) {
	block := testutil.NewBlock("1", testutil.LevelTasks("a", 1, 3)...)
	bp := progress.NewBlockProgress()
	s := New(testutil.IdentityRand{})

	for _, mode := range progress.AllModes() {
		_, err := s.Select(mode, block, bp, 4, 5)
		if mode == progress.ModeFixed {
			assert.NoError(t, err, "fixed mode uses the unlocked level")
			continue
		}
		assert.ErrorIs(t, err, ErrNoTasksAvailable, mode)
	}
}

func TestHasFresh(t *testing.T) {
	block := testutil.NewBlock("1", testutil.LevelTasks("a", 2, 2)...)
	bp := progress.NewBlockProgress()
	assert.True(t, HasFresh(block, bp, 2))
	assert.False(t, HasFresh(block, bp, 3), "no tasks at that difficulty")

	bp.RecordAnswer("a2-1", false)
	assert.True(t, HasFresh(block, bp, 2))

	bp.RecordAnswer("a2-2", false)
	assert.False(t, HasFresh(block, bp, 2))
}
