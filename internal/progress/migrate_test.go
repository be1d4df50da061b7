package progress

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/mathstudent/internal/catalog"
	"github.com/abhisek/mathstudent/internal/testutil"
)

func rawRecord(t *testing.T, s string) map[string]json.RawMessage {
	t.Helper()
	var m map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(s), &m))
	return m
}

func TestDetectGeneration(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Generation
	}{
		{"adaptive", `{"currentDifficulty": 3, "correctlySolvedTasks": []}`, GenerationAdaptive},
		{"fixed", `{"unlockedLevel": 2, "currentLevelProgress": []}`, GenerationFixed},
		{"starred", `{"unlockedLevel": 2, "levelResults": {}}`, GenerationStarred},
		{"adaptive mode on canonical", `{"unlockedLevel": 2, "levelResults": {}, "currentDifficulty": 4}`, GenerationStarred},
		{"empty", `{}`, GenerationUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectGeneration(rawRecord(t, tt.raw)))
		})
	}
}

func TestMigrateAdaptiveRecord(t *testing.T) {
	raw := rawRecord(t, `{
		"currentDifficulty": 7,
		"correctlySolvedTasks": [1, 2, 2],
		"recentAnswers": [{"taskId": 1, "correct": true}]
	}`)

	bp, err := MigrateBlock(raw)
	require.NoError(t, err)

	assert.Equal(t, 5, bp.UnlockedLevel, "difficulty is clamped into the level range")
	assert.Nil(t, bp.CurrentDifficulty, "legacy field is dropped")
	assert.Empty(t, bp.CurrentLevelProgress)
	assert.NotNil(t, bp.CurrentLevelProgress)
	assert.Equal(t, map[int]int{}, bp.LevelResults)
	assert.Equal(t, []catalog.TaskID{"1", "2"}, bp.CorrectlySolvedTasks)
	assert.Equal(t, []Answer{{TaskID: "1", Correct: true}}, bp.RecentAnswers)
}

func TestMigrateAdaptiveClampsLow(t *testing.T) {
	bp, err := MigrateBlock(rawRecord(t, `{"currentDifficulty": 0}`))
	require.NoError(t, err)
	assert.Equal(t, 1, bp.UnlockedLevel)
}

func TestMigrateFixedRecord(t *testing.T) {
	raw := rawRecord(t, `{
		"unlockedLevel": 3,
		"currentLevelProgress": ["a"],
		"correctlySolvedTasks": ["a", "b"],
		"recentAnswers": []
	}`)

	bp, err := MigrateBlock(raw)
	require.NoError(t, err)
	assert.Equal(t, 3, bp.UnlockedLevel)
	assert.Equal(t, []catalog.TaskID{"a"}, bp.CurrentLevelProgress, "fixed-level progress survives")
	assert.Equal(t, map[int]int{}, bp.LevelResults)
}

func TestBackfillRepairsRanges(t *testing.T) {
	raw := rawRecord(t, `{
		"unlockedLevel": 9,
		"levelResults": {"1": 5, "2": -1, "8": 3},
		"currentDifficulty": -2
	}`)

	bp, err := MigrateBlock(raw)
	require.NoError(t, err)
	assert.Equal(t, 5, bp.UnlockedLevel)
	assert.Equal(t, map[int]int{1: 3, 2: 0}, bp.LevelResults)
	require.NotNil(t, bp.CurrentDifficulty)
	assert.Equal(t, 1, *bp.CurrentDifficulty)
	assert.NotNil(t, bp.RecentAnswers)
}

func TestMigrationIsIdempotent(t *testing.T) {
	inputs := []string{
		`{"currentDifficulty": 2, "correctlySolvedTasks": [3], "recentAnswers": [{"taskId": 3, "correct": false}]}`,
		`{"unlockedLevel": 4, "currentLevelProgress": ["x", "x"]}`,
		`{"unlockedLevel": 2, "levelResults": {"1": 2}, "currentLevelProgress": [], "correctlySolvedTasks": [], "recentAnswers": []}`,
		`{}`,
	}
	for _, in := range inputs {
		once, err := MigrateBlock(rawRecord(t, in))
		require.NoError(t, err)

		b, err := json.Marshal(once)
		require.NoError(t, err)
		twice, err := MigrateBlock(rawRecord(t, string(b)))
		require.NoError(t, err)

		assert.Equal(t, once, twice, in)
	}
}

func TestDecodeLegacyStore(t *testing.T) {
	data := []byte(`{
		"version": "5.0.0",
		"progress": {
			"block_1": {"currentDifficulty": 2, "correctlySolvedTasks": [], "recentAnswers": []},
			"block_2": null
		},
		"lastSession": "2025-03-01T10:00:00.000Z"
	}`)

	s, err := Decode(data)
	require.NoError(t, err)

	assert.Equal(t, 2, s.Block("1").UnlockedLevel)
	assert.Equal(t, 1, s.Block("2").UnlockedLevel)
	require.NotNil(t, s.UserProfile)
	assert.Equal(t, []string{}, s.UserProfile.BadgesEarned)
	require.NotNil(t, s.Streak)
	assert.Equal(t, 2025, s.LastSession.Year())
}

func TestDecodeCompatibleRejectsBeforeMigrating(t *testing.T) {
	_, err := DecodeCompatible([]byte(`{"version": "4.2.0", "progress": {"block_1": {"currentDifficulty": "bad"}}}`), CurrentVersion)
	var incompatible *ErrIncompatibleVersion
	require.ErrorAs(t, err, &incompatible)
	assert.Equal(t, "4.2.0", incompatible.Stored)
}

func TestReconcile(t *testing.T) {
	cat := testutil.NewCatalog(
		testutil.NewBlock("1", append(testutil.LevelTasks("a", 1, 2), testutil.LevelTasks("a", 2, 2)...)...),
		testutil.NewBlock("2", testutil.LevelTasks("b", 1, 1)...),
	)
	s := &Store{Progress: map[string]*BlockProgress{
		BlockKey("1"): {
			UnlockedLevel:        2,
			LevelResults:         map[int]int{1: 1},
			CurrentLevelProgress: []catalog.TaskID{"a1-1", "a2-1", "gone"},
		},
		BlockKey("99"): NewBlockProgress(),
	}}

	Reconcile(s, cat)

	assert.Equal(t, []catalog.TaskID{"a2-1"}, s.Block("1").CurrentLevelProgress)
	assert.NotNil(t, s.Block("2"), "new catalog block gets default progress")
	assert.NotNil(t, s.Block("99"), "unknown blocks are kept")
}

func TestReconcileWithEmptyCatalogKeepsData(t *testing.T) {
	s := &Store{Progress: map[string]*BlockProgress{
		BlockKey("1"): {UnlockedLevel: 1, CurrentLevelProgress: []catalog.TaskID{"x"}},
	}}
	Reconcile(s, catalog.Empty())
	assert.Equal(t, []catalog.TaskID{"x"}, s.Block("1").CurrentLevelProgress)
}
