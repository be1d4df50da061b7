package trainer

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/mathstudent/internal/badges"
	"github.com/abhisek/mathstudent/internal/catalog"
	"github.com/abhisek/mathstudent/internal/grading"
	"github.com/abhisek/mathstudent/internal/notice"
	"github.com/abhisek/mathstudent/internal/progress"
	"github.com/abhisek/mathstudent/internal/selector"
	"github.com/abhisek/mathstudent/internal/session"
	"github.com/abhisek/mathstudent/internal/sharecode"
	"github.com/abhisek/mathstudent/internal/store"
	"github.com/abhisek/mathstudent/internal/testutil"
)

var fixedNow = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

type fixture struct {
	trainer *Trainer
	slot    store.Slot
	cat     *catalog.Catalog
	notices *notice.Queue
}

func newFixture(t *testing.T, cat *catalog.Catalog, events store.EventRepo) *fixture {
	t.Helper()
	slot := store.NewMemorySlot(store.DefaultSlotName)
	return newFixtureWithSlot(t, cat, slot, events)
}

func newFixtureWithSlot(t *testing.T, cat *catalog.Catalog, slot store.Slot, events store.EventRepo) *fixture {
	t.Helper()
	notices := notice.NewQueue(notice.DefaultTTL)
	notices.SetClock(func() time.Time { return fixedNow })

	mgr := progress.NewManager(progress.Options{
		Slot:    slot,
		Catalog: cat,
		Now:     func() time.Time { return fixedNow },
		Notices: notices,
	})
	_, err := mgr.Load(context.Background())
	require.NoError(t, err)

	eng := session.NewEngine(session.Options{
		Catalog:  cat,
		Selector: selector.New(testutil.IdentityRand{}),
		Badges:   badges.Defaults(),
		Now:      func() time.Time { return fixedNow },
	})
	return &fixture{
		trainer: New(Options{Manager: mgr, Engine: eng, Events: events, Notices: notices}),
		slot:    slot,
		cat:     cat,
		notices: notices,
	}
}

func (f *fixture) answerAll(t *testing.T, correct bool) *session.Outcome {
	t.Helper()
	ctx := context.Background()
	var out *session.Outcome
	for {
		task, ok := f.trainer.CurrentTask()
		if !ok {
			return out
		}
		answer := "wrong"
		if correct {
			answer = "ans-" + string(task.ID)
		}
		var err error
		out, err = f.trainer.Submit(ctx, task.ID, grading.TextResponse{Answer: answer})
		require.NoError(t, err)
	}
}

func lastNotice(t *testing.T, q *notice.Queue) notice.Notice {
	t.Helper()
	n, ok := q.Latest()
	require.True(t, ok, "expected a notice")
	return n
}

func TestDashboardDefaults(t *testing.T) {
	f := newFixture(t, testutil.StandardCatalog(), nil)

	d := f.trainer.Dashboard()
	assert.Equal(t, progress.ModeStarred, d.Mode)
	require.Len(t, d.Blocks, 2)
	b := d.Blocks[0]
	assert.Equal(t, "1", b.ID)
	assert.Equal(t, 1, b.UnlockedLevel)
	assert.Equal(t, 0, b.Percent)
	assert.Equal(t, 5, b.LevelTasks)
	require.Len(t, b.Levels, 5)
	assert.False(t, b.Levels[0].Locked)
	assert.True(t, b.Levels[1].Locked)
	assert.Empty(t, d.Badges)
}

func TestProgressPercent(t *testing.T) {
	tests := []struct {
		name       string
		unlocked   int
		done       int
		levelTasks int
		want       int
	}{
		{"fresh", 1, 0, 5, 0},
		{"two of five at level 3", 3, 2, 5, 48},
		{"one of three at level 1", 1, 1, 3, 7},
		{"empty level", 2, 0, 0, 20},
		{"last level complete", 5, 5, 5, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bp := progress.NewBlockProgress()
			bp.UnlockedLevel = tt.unlocked
			for i := range tt.done {
				bp.AddLevelProgress(catalog.TaskID(rune('a' + i)))
			}
			assert.Equal(t, tt.want, ProgressPercent(bp, tt.levelTasks))
		})
	}
}

func TestStartSessionRefusals(t *testing.T) {
	cat := testutil.NewCatalog(
		testutil.NewBlock("1", testutil.LevelTasks("a", 1, 5)...),
		testutil.NewBlock("2", testutil.LevelTasks("b", 3, 5)...),
	)
	f := newFixture(t, cat, nil)
	ctx := context.Background()

	_, err := f.trainer.StartSession(ctx, "1", 2)
	assert.ErrorIs(t, err, ErrLevelLocked)
	assert.Equal(t, notice.KindError, lastNotice(t, f.notices).Kind)

	_, err = f.trainer.StartSession(ctx, "2", 1)
	assert.ErrorIs(t, err, ErrNoTasksAvailable)
	assert.Equal(t, "No tasks available for this level.", lastNotice(t, f.notices).Message)

	_, err = f.trainer.StartSession(ctx, "nope", 1)
	assert.ErrorIs(t, err, ErrUnknownBlock)
	assert.Nil(t, f.trainer.Session())
}

func TestSessionPersistsProgress(t *testing.T) {
	cat := testutil.StandardCatalog()
	slot := store.NewMemorySlot(store.DefaultSlotName)
	f := newFixtureWithSlot(t, cat, slot, nil)
	ctx := context.Background()

	_, err := f.trainer.Submit(ctx, "b1-1-1", grading.TextResponse{Answer: "x"})
	assert.ErrorIs(t, err, ErrNoActiveSession)

	_, err = f.trainer.StartSession(ctx, "1", 1)
	require.NoError(t, err)
	out := f.answerAll(t, true)
	require.NotNil(t, out.Summary)
	assert.Equal(t, 3, out.Summary.Stars.Stars)
	assert.Equal(t, "Level 2 unlocked!", lastNotice(t, f.notices).Message)

	// A fresh trainer over the same slot sees the persisted result.
	again := newFixtureWithSlot(t, cat, slot, nil)
	d := again.trainer.Dashboard()
	assert.Equal(t, 2, d.Blocks[0].UnlockedLevel)
	assert.Equal(t, 3, d.Blocks[0].Levels[0].Stars)
	assert.Equal(t, 20, d.Blocks[0].Percent)
	assert.Equal(t, 5, d.Streak)
	assert.Contains(t, d.Badges, "streak-5")

	f.trainer.Finish()
	assert.Nil(t, f.trainer.Session())
}

func TestHints(t *testing.T) {
	cat := testutil.NewCatalog(testutil.NewBlock("1",
		testutil.NewTask("h", 1, testutil.WithHints("first", "second")),
	))
	f := newFixture(t, cat, nil)
	ctx := context.Background()

	_, err := f.trainer.Hints(ctx, "", "h")
	assert.ErrorIs(t, err, ErrNoActiveSession)

	hints, err := f.trainer.Hints(ctx, "1", "h")
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, hints)

	_, err = f.trainer.StartSession(ctx, "1", 1)
	require.NoError(t, err)
	hints, err = f.trainer.Hints(ctx, "", "h")
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, hints)

	_, err = f.trainer.Hints(ctx, "1", "missing")
	assert.ErrorIs(t, err, ErrUnknownTask)
}

func TestExportImportRoundTrip(t *testing.T) {
	f := newFixture(t, testutil.StandardCatalog(), nil)
	ctx := context.Background()

	_, err := f.trainer.StartSession(ctx, "1", 1)
	require.NoError(t, err)
	f.answerAll(t, true)
	before := f.trainer.Snapshot()

	code, err := f.trainer.Export()
	require.NoError(t, err)

	require.NoError(t, f.trainer.Reset(ctx))
	assert.Equal(t, "Progress was reset.", lastNotice(t, f.notices).Message)
	assert.Equal(t, 1, f.trainer.Snapshot().Block("1").UnlockedLevel)

	require.NoError(t, f.trainer.Import(ctx, "  "+code+"\n"))
	assert.Equal(t, notice.KindSuccess, lastNotice(t, f.notices).Kind)
	after := f.trainer.Snapshot()
	assert.Equal(t, before.Progress, after.Progress)
	assert.Equal(t, before.Badges(), after.Badges())
}

func TestImportFailuresLeaveProgress(t *testing.T) {
	cat := testutil.StandardCatalog()
	f := newFixture(t, cat, nil)
	ctx := context.Background()

	_, err := f.trainer.StartSession(ctx, "1", 1)
	require.NoError(t, err)
	f.answerAll(t, true)
	before := f.trainer.Snapshot()

	err = f.trainer.Import(ctx, "not a share code")
	var malformed *sharecode.ErrMalformed
	assert.ErrorAs(t, err, &malformed)
	assert.Equal(t, "Invalid share code.", lastNotice(t, f.notices).Message)

	old := progress.NewStore("4.0.0", cat, fixedNow)
	code, err := sharecode.Encode(old)
	require.NoError(t, err)
	err = f.trainer.Import(ctx, code)
	var incompatible *progress.ErrIncompatibleVersion
	assert.ErrorAs(t, err, &incompatible)

	assert.Equal(t, before, f.trainer.Snapshot())
}

func TestBadgesListing(t *testing.T) {
	f := newFixture(t, testutil.StandardCatalog(), nil)
	ctx := context.Background()

	list := f.trainer.Badges()
	require.Len(t, list, len(badges.Defaults()))
	for _, b := range list {
		assert.False(t, b.Earned, b.ID)
	}

	_, err := f.trainer.StartSession(ctx, "1", 1)
	require.NoError(t, err)
	f.answerAll(t, true)

	earned := map[string]bool{}
	for _, b := range f.trainer.Badges() {
		earned[b.ID] = b.Earned
	}
	assert.True(t, earned["streak-5"])
	assert.False(t, earned["streak-10"])
}

func TestEventsRecorded(t *testing.T) {
	db := testutil.OpenStore(t)
	f := newFixture(t, testutil.StandardCatalog(), db.EventRepo())
	ctx := context.Background()

	_, err := f.trainer.StartSession(ctx, "1", 1)
	require.NoError(t, err)
	f.answerAll(t, true)

	_, err = f.trainer.StartSession(ctx, "2", 1)
	require.NoError(t, err)
	f.trainer.Abandon(ctx)
	assert.Nil(t, f.trainer.Session())

	events := db.EventRepo()
	for action, want := range map[string]int{"start": 2, "complete": 1, "abandon": 1} {
		n, err := events.CountSessions(ctx, action)
		require.NoError(t, err)
		assert.Equal(t, want, n, action)
	}

	answers, err := events.QueryAnswers(ctx, store.QueryOpts{BlockID: "1"})
	require.NoError(t, err)
	assert.Len(t, answers, 5)

	stats, err := events.AnswerStatsByBlock(ctx)
	require.NoError(t, err)
	assert.Equal(t, store.AnswerStats{Total: 5, Correct: 5}, stats["1"])
}

func TestStartSessionReturnsCopy(t *testing.T) {
	f := newFixture(t, testutil.StandardCatalog(), nil)
	ctx := context.Background()

	sess, err := f.trainer.StartSession(ctx, "1", 1)
	require.NoError(t, err)
	task, ok := f.trainer.CurrentTask()
	require.True(t, ok)
	_, err = f.trainer.Submit(ctx, task.ID, grading.TextResponse{Answer: "ans-" + string(task.ID)})
	require.NoError(t, err)

	assert.Equal(t, 0, sess.CurrentIndex, "returned session is not the live one")
	assert.Empty(t, sess.Results)
	assert.Equal(t, 1, f.trainer.Session().CurrentIndex)
}

func TestSubmitWriteFailureKeepsState(t *testing.T) {
	slot := &testutil.FailingSlot{Slot: store.NewMemorySlot(store.DefaultSlotName)}
	f := newFixtureWithSlot(t, testutil.StandardCatalog(), slot, nil)
	ctx := context.Background()

	_, err := f.trainer.StartSession(ctx, "1", 1)
	require.NoError(t, err)
	before := f.trainer.Snapshot()
	task, ok := f.trainer.CurrentTask()
	require.True(t, ok)

	slot.FailWrites = true
	_, err = f.trainer.Submit(ctx, task.ID, grading.TextResponse{Answer: "ans-" + string(task.ID)})
	require.ErrorIs(t, err, testutil.ErrWriteFailed)

	sess := f.trainer.Session()
	require.NotNil(t, sess)
	assert.Equal(t, 0, sess.CurrentIndex)
	assert.Equal(t, 0, sess.CorrectCount)
	assert.Equal(t, before.Progress, f.trainer.Snapshot().Progress)

	slot.FailWrites = false
	out, err := f.trainer.Submit(ctx, task.ID, grading.TextResponse{Answer: "ans-" + string(task.ID)})
	require.NoError(t, err, "the same task can be answered after the failure")
	assert.True(t, out.Correct)
}

func TestImportWriteFailureKeepsProgress(t *testing.T) {
	slot := &testutil.FailingSlot{Slot: store.NewMemorySlot(store.DefaultSlotName)}
	cat := testutil.StandardCatalog()
	f := newFixtureWithSlot(t, cat, slot, nil)
	ctx := context.Background()
	before := f.trainer.Snapshot()

	other := progress.NewStore(progress.CurrentVersion, cat, fixedNow)
	other.Block("1").UnlockedLevel = 4
	code, err := sharecode.Encode(other)
	require.NoError(t, err)

	slot.FailWrites = true
	require.ErrorIs(t, f.trainer.Import(ctx, code), testutil.ErrWriteFailed)
	assert.Equal(t, before.Progress, f.trainer.Snapshot().Progress)
}

// Run with -race: readers of returned sessions must not share memory with
// the trainer's live session.
func TestConcurrentSessionAccess(t *testing.T) {
	f := newFixture(t, testutil.StandardCatalog(), nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sess, err := f.trainer.StartSession(ctx, "1", 1)
			if err == nil {
				_ = len(sess.Results) + sess.CurrentIndex + sess.CorrectCount
				_ = sess.Phase.String()
			}
			if task, ok := f.trainer.CurrentTask(); ok {
				_, _ = f.trainer.Submit(ctx, task.ID, grading.TextResponse{Answer: "ans-" + string(task.ID)})
			}
			if cur := f.trainer.Session(); cur != nil {
				_ = len(cur.Results) + cur.CurrentIndex
			}
			if i%5 == 0 {
				f.trainer.Abandon(ctx)
			}
		}()
	}
	wg.Wait()

	if sess := f.trainer.Session(); sess != nil {
		assert.LessOrEqual(t, sess.CurrentIndex, len(sess.Tasks))
	}
}
