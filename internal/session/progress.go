package session

import (
	"slices"

	"github.com/abhisek/mathstudent/internal/catalog"
	"github.com/abhisek/mathstudent/internal/progress"
	"github.com/abhisek/mathstudent/internal/selector"
)

const (
	// RaiseStreak is the run of correct answers that raises the adaptive difficulty.
	RaiseStreak = 3

	// LowerWindow and LowerMisses: LowerMisses wrong answers among the last
	// LowerWindow lower the adaptive difficulty.
	LowerWindow = 4
	LowerMisses = 2
)

// StarsFor rates a starred session by its correct answers.
func StarsFor(correct int) int {
	switch {
	case correct >= 5:
		return 3
	case correct >= 3:
		return 2
	case correct >= 1:
		return 1
	default:
		return 0
	}
}

// adjustDifficulty moves the adaptive difficulty after an answer has been
// recorded and returns the change (-1, 0 or +1).
func adjustDifficulty(bp *progress.BlockProgress, block *catalog.Block) int {
	d := bp.Difficulty()
	if bp.CurrentDifficulty == nil {
		bp.SetDifficulty(d)
	}

	if last := bp.LastAnswers(RaiseStreak); len(last) == RaiseStreak && allCorrect(last) {
		if d < catalog.MaxLevel {
			bp.SetDifficulty(d + 1)
			return 1
		}
		return 0
	}

	misses := 0
	for _, a := range bp.LastAnswers(LowerWindow) {
		if !a.Correct {
			misses++
		}
	}
	// Varying content is preferred over dropping the difficulty.
	if misses >= LowerMisses && d > catalog.MinLevel && !selector.HasFresh(block, bp, d) {
		bp.SetDifficulty(d - 1)
		return -1
	}
	return 0
}

func allCorrect(answers []progress.Answer) bool {
	for _, a := range answers {
		if !a.Correct {
			return false
		}
	}
	return true
}

// advanceFixed applies fixed-level rules for one answer and reports whether
// a new level was unlocked. Errors must already include this answer.
func advanceFixed(bp *progress.BlockProgress, block *catalog.Block, id catalog.TaskID, correct bool, errorsBefore int) bool {
	if !correct {
		bp.CurrentLevelProgress = []catalog.TaskID{}
		return false
	}
	if errorsBefore > 0 {
		return false
	}
	bp.AddLevelProgress(id)

	for _, want := range block.TaskIDsAt(bp.UnlockedLevel) {
		if !slices.Contains(bp.CurrentLevelProgress, want) {
			return false
		}
	}
	// The last level keeps its completed set so it can be replayed.
	if bp.UnlockedLevel >= catalog.MaxLevel {
		return false
	}
	bp.UnlockedLevel++
	bp.CurrentLevelProgress = []catalog.TaskID{}
	return true
}

// StarResult is the outcome of rating a finished starred session.
type StarResult struct {
	Stars         int  `json:"stars"`
	PreviousBest  int  `json:"previousBest"`
	NewBest       bool `json:"newBest"`
	LevelUnlocked bool `json:"levelUnlocked"`
}

// rateStarred records the session's stars if they beat the stored best and
// unlocks the next level when the unlocked level earns its first star.
func rateStarred(bp *progress.BlockProgress, level, correct int) StarResult {
	res := StarResult{Stars: StarsFor(correct), PreviousBest: bp.Stars(level)}
	if res.Stars <= res.PreviousBest {
		return res
	}
	if bp.LevelResults == nil {
		bp.LevelResults = map[int]int{}
	}
	bp.LevelResults[level] = res.Stars
	res.NewBest = true

	if level == bp.UnlockedLevel && level < catalog.MaxLevel {
		bp.UnlockedLevel = level + 1
		res.LevelUnlocked = true
	}
	return res
}
