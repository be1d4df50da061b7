// Package selector assembles the ordered task list for one practice session.
package selector

import (
	"errors"
	"slices"

	"github.com/abhisek/mathstudent/internal/catalog"
	"github.com/abhisek/mathstudent/internal/progress"
	"github.com/abhisek/mathstudent/internal/shuffle"
)

const (
	// RecentWindow is how many recent answers count as "recently seen".
	RecentWindow = 5

	// SmallPoolSize is the pool size at or below which anti-repetition
	// filtering is skipped.
	SmallPoolSize = 5

	// StarSessionSize is the fixed session length used for star ratings.
	StarSessionSize = 5
)

// ErrNoTasksAvailable is returned when no task matches the requested level.
var ErrNoTasksAvailable = errors.New("no tasks available for this level")

// Rand is a uniform random source. *rand.Rand from math/rand/v2 satisfies it.
type Rand = shuffle.Rand

// Selection is the outcome of selecting tasks for a session.
type Selection struct {
	Tasks []catalog.Task

	// Replay is set when a fully completed fixed level is being practiced again.
	Replay bool
}

// Selector draws session tasks from a block.
type Selector struct {
	rand Rand
}

// New returns a Selector using r, or the global math/rand/v2 source if r is nil.
func New(r Rand) *Selector {
	if r == nil {
		r = shuffle.Global
	}
	return &Selector{rand: r}
}

// Shuffle returns a uniformly permuted copy of tasks.
func (s *Selector) Shuffle(tasks []catalog.Task) []catalog.Task {
	return shuffle.Slice(s.rand, tasks)
}

// Select dispatches on the progression mode. Level is the requested level
// for starred mode and the target difficulty for adaptive mode; fixed mode
// always uses the block's unlocked level.
func (s *Selector) Select(mode progress.Mode, block *catalog.Block, bp *progress.BlockProgress, level, maxCount int) (Selection, error) {
	var sel Selection
	switch mode {
	case progress.ModeAdaptive:
		sel.Tasks = s.Adaptive(block, bp, level, maxCount)
	case progress.ModeFixed:
		sel.Tasks, sel.Replay = s.FixedLevel(block, bp)
	default:
		sel.Tasks = s.Starred(block, level)
	}
	if len(sel.Tasks) == 0 {
		return Selection{}, ErrNoTasksAvailable
	}
	return sel, nil
}

// Adaptive picks tasks at the target difficulty, widening to adjacent
// difficulties when none exist, and avoids recently seen tasks when the
// pool is large enough to afford it.
func (s *Selector) Adaptive(block *catalog.Block, bp *progress.BlockProgress, target, maxCount int) []catalog.Task {
	candidates := block.TasksAt(target)
	if len(candidates) == 0 {
		for _, t := range block.Tasks {
			if abs(t.Difficulty-target) <= 1 {
				candidates = append(candidates, t)
			}
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	if len(candidates) <= SmallPoolSize {
		return s.Shuffle(candidates)
	}

	recent := bp.RecentlySeen(RecentWindow)
	fresh := make([]catalog.Task, 0, len(candidates))
	for _, t := range candidates {
		if !recent[t.ID] {
			fresh = append(fresh, t)
		}
	}
	if len(fresh) == 0 {
		fresh = candidates
	}

	out := s.Shuffle(fresh)
	if maxCount > 0 && len(out) > maxCount {
		out = out[:maxCount]
	}
	return out
}

// FixedLevel returns every task of the unlocked level: tasks already
// completed in the current attempt first, in catalog order, then the rest
// shuffled. A level with nothing left to complete is returned shuffled
// for replay.
func (s *Selector) FixedLevel(block *catalog.Block, bp *progress.BlockProgress) (tasks []catalog.Task, replay bool) {
	levelTasks := block.TasksAt(bp.UnlockedLevel)
	if len(levelTasks) == 0 {
		return nil, false
	}

	var completed, remaining []catalog.Task
	for _, t := range levelTasks {
		if slices.Contains(bp.CurrentLevelProgress, t.ID) {
			completed = append(completed, t)
		} else {
			remaining = append(remaining, t)
		}
	}
	if len(remaining) == 0 {
		return s.Shuffle(levelTasks), true
	}
	return append(completed, s.Shuffle(remaining)...), false
}

// Starred draws StarSessionSize random tasks from the requested level.
func (s *Selector) Starred(block *catalog.Block, level int) []catalog.Task {
	out := s.Shuffle(block.TasksAt(level))
	if len(out) > StarSessionSize {
		out = out[:StarSessionSize]
	}
	return out
}

// HasFresh reports whether the block has a task at difficulty that is not
// among the recently answered ones.
func HasFresh(block *catalog.Block, bp *progress.BlockProgress, difficulty int) bool {
	recent := bp.RecentlySeen(RecentWindow)
	for _, t := range block.TasksAt(difficulty) {
		if !recent[t.ID] {
			return true
		}
	}
	return false
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
