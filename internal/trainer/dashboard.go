package trainer

import (
	"math"

	"github.com/abhisek/mathstudent/internal/catalog"
	"github.com/abhisek/mathstudent/internal/progress"
)

// LevelSummary describes one level of a block on the dashboard.
type LevelSummary struct {
	Level  int  `json:"level"`
	Stars  int  `json:"stars"`
	Locked bool `json:"locked"`
	Tasks  int  `json:"tasks"`
}

// BlockSummary describes one block on the dashboard.
type BlockSummary struct {
	ID            string         `json:"id"`
	Title         string         `json:"title"`
	Icon          string         `json:"icon"`
	UnlockedLevel int            `json:"unlockedLevel"`
	Difficulty    int            `json:"difficulty,omitempty"`
	Percent       int            `json:"percent"`
	LevelDone     int            `json:"levelDone"`
	LevelTasks    int            `json:"levelTasks"`
	Solved        int            `json:"solved"`
	Levels        []LevelSummary `json:"levels"`
}

// Dashboard is the overview shown between sessions.
type Dashboard struct {
	Mode   progress.Mode  `json:"mode"`
	Blocks []BlockSummary `json:"blocks"`
	Streak int            `json:"streak"`
	Badges []string       `json:"badges"`
}

// Dashboard summarizes progress for every catalog block.
func (t *Trainer) Dashboard() Dashboard {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.mgr.Data()
	d := Dashboard{
		Mode:   t.eng.Mode(),
		Streak: s.StreakCurrent(),
		Badges: append([]string{}, s.Badges()...),
	}
	for _, block := range t.cat.Blocks() {
		bp := s.Block(block.ID)
		if bp == nil {
			bp = progress.NewBlockProgress()
		}
		d.Blocks = append(d.Blocks, summarizeBlock(block, bp, d.Mode))
	}
	return d
}

func summarizeBlock(block *catalog.Block, bp *progress.BlockProgress, mode progress.Mode) BlockSummary {
	levelTasks := len(block.TasksAt(bp.UnlockedLevel))
	sum := BlockSummary{
		ID:            block.ID,
		Title:         block.Title,
		Icon:          block.Icon,
		UnlockedLevel: bp.UnlockedLevel,
		Percent:       ProgressPercent(bp, levelTasks),
		LevelDone:     len(bp.CurrentLevelProgress),
		LevelTasks:    levelTasks,
		Solved:        len(bp.CorrectlySolvedTasks),
	}
	if mode == progress.ModeAdaptive {
		sum.Difficulty = bp.Difficulty()
	}
	for level := catalog.MinLevel; level <= catalog.MaxLevel; level++ {
		sum.Levels = append(sum.Levels, LevelSummary{
			Level:  level,
			Stars:  bp.Stars(level),
			Locked: level > bp.UnlockedLevel,
			Tasks:  len(block.TasksAt(level)),
		})
	}
	return sum
}

// ProgressPercent rates a block 0-100: each level below the unlocked one
// is worth 20, and the unlocked level contributes its completed share.
func ProgressPercent(bp *progress.BlockProgress, levelTasks int) int {
	perLevel := 100.0 / catalog.MaxLevel
	pct := float64(max(0, bp.UnlockedLevel-1)) * perLevel
	if levelTasks > 0 {
		pct += float64(len(bp.CurrentLevelProgress)) / float64(levelTasks) * perLevel
	}
	return min(100, int(math.Round(pct)))
}
