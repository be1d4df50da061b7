// Package badges evaluates permanent achievement rules against a progress
// snapshot.
package badges

import (
	"fmt"

	"github.com/abhisek/mathstudent/internal/catalog"
	"github.com/abhisek/mathstudent/internal/progress"
)

// ConditionKind identifies a predicate family.
type ConditionKind string

const (
	KindStreak           ConditionKind = "streak"
	KindSolveCount       ConditionKind = "solveCount"
	KindSolveCountByType ConditionKind = "solveCountByType"
	KindMinTasksPerBlock ConditionKind = "minTasksPerBlock"
)

// DisplayName returns a human-readable label for the condition kind.
func (k ConditionKind) DisplayName() string {
	switch k {
	case KindStreak:
		return "Streak"
	case KindSolveCount:
		return "Block mastery"
	case KindSolveCountByType:
		return "Task type"
	case KindMinTasksPerBlock:
		return "All-rounder"
	default:
		return string(k)
	}
}

// Condition is a predicate over a progress snapshot. The set of
// implementations is closed.
type Condition interface {
	Kind() ConditionKind
	Met(s *progress.Store, cat *catalog.Catalog) bool
	isCondition()
}

// Streak is met when the global streak reaches Length.
type Streak struct {
	Length int
}

// SolveCount is met when Block has at least Count distinct solved tasks.
type SolveCount struct {
	Block string
	Count int
}

// SolveCountByType is met when at least Count solved tasks, across all
// blocks, are of the given kind.
type SolveCountByType struct {
	Type  catalog.Kind
	Count int
}

// MinTasksPerBlock is met when every catalog block has at least Count
// solved tasks. It is never met for an empty catalog.
type MinTasksPerBlock struct {
	Count int
}

func (Streak) Kind() ConditionKind           { return KindStreak }
func (SolveCount) Kind() ConditionKind       { return KindSolveCount }
func (SolveCountByType) Kind() ConditionKind { return KindSolveCountByType }
func (MinTasksPerBlock) Kind() ConditionKind { return KindMinTasksPerBlock }

func (Streak) isCondition()           {}
func (SolveCount) isCondition()       {}
func (SolveCountByType) isCondition() {}
func (MinTasksPerBlock) isCondition() {}

func (c Streak) Met(s *progress.Store, _ *catalog.Catalog) bool {
	return s.StreakCurrent() >= c.Length
}

func (c SolveCount) Met(s *progress.Store, _ *catalog.Catalog) bool {
	return solvedIn(s, c.Block) >= c.Count
}

func (c SolveCountByType) Met(s *progress.Store, cat *catalog.Catalog) bool {
	n := 0
	for _, blockID := range cat.BlockIDs() {
		bp := s.Block(blockID)
		if bp == nil {
			continue
		}
		for _, id := range bp.CorrectlySolvedTasks {
			if cat.TaskKind(blockID, id) == c.Type {
				n++
			}
		}
	}
	return n >= c.Count
}

func (c MinTasksPerBlock) Met(s *progress.Store, cat *catalog.Catalog) bool {
	ids := cat.BlockIDs()
	if len(ids) == 0 {
		return false
	}
	for _, id := range ids {
		if solvedIn(s, id) < c.Count {
			return false
		}
	}
	return true
}

func solvedIn(s *progress.Store, blockID string) int {
	bp := s.Block(blockID)
	if bp == nil {
		return 0
	}
	return len(bp.CorrectlySolvedTasks)
}

// Badge is a named achievement.
type Badge struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	Condition   Condition `json:"-"`
}

// Evaluate returns the ids of badges in defs that are met by s and not yet
// earned, in definition order. It does not modify s.
func Evaluate(s *progress.Store, cat *catalog.Catalog, defs []Badge) []string {
	var earned []string
	for _, b := range defs {
		if b.Condition == nil || s.HasBadge(b.ID) {
			continue
		}
		if b.Condition.Met(s, cat) {
			earned = append(earned, b.ID)
		}
	}
	return earned
}

// Award evaluates defs and appends newly earned ids to s. It returns the
// ids that were added.
func Award(s *progress.Store, cat *catalog.Catalog, defs []Badge) []string {
	earned := Evaluate(s, cat, defs)
	s.AwardBadges(earned...)
	return earned
}

// Lookup returns the badge with the given id.
func Lookup(defs []Badge, id string) (Badge, bool) {
	for _, b := range defs {
		if b.ID == id {
			return b, true
		}
	}
	return Badge{}, false
}

// FromCatalog converts badge declarations of a catalog document. An empty
// list yields the defaults.
func FromCatalog(decls []catalog.BadgeDef) ([]Badge, error) {
	if len(decls) == 0 {
		return Defaults(), nil
	}
	out := make([]Badge, 0, len(decls))
	seen := make(map[string]bool, len(decls))
	for _, d := range decls {
		if seen[d.ID] {
			return nil, fmt.Errorf("duplicate badge id %q", d.ID)
		}
		seen[d.ID] = true
		cond, err := conditionFrom(d.Condition)
		if err != nil {
			return nil, fmt.Errorf("badge %s: %w", d.ID, err)
		}
		out = append(out, Badge{
			ID:          d.ID,
			Title:       d.Title,
			Description: d.Description,
			Icon:        d.Icon,
			Condition:   cond,
		})
	}
	return out, nil
}

func conditionFrom(c catalog.BadgeCondition) (Condition, error) {
	switch ConditionKind(c.Kind) {
	case KindStreak:
		return Streak{Length: c.Count}, nil
	case KindSolveCount:
		if c.Block == "" {
			return nil, fmt.Errorf("solveCount needs a block")
		}
		return SolveCount{Block: c.Block, Count: c.Count}, nil
	case KindSolveCountByType:
		if !c.TaskType.Valid() {
			return nil, fmt.Errorf("unknown task type %q", c.TaskType)
		}
		return SolveCountByType{Type: c.TaskType, Count: c.Count}, nil
	case KindMinTasksPerBlock:
		return MinTasksPerBlock{Count: c.Count}, nil
	default:
		return nil, fmt.Errorf("unknown condition kind %q", c.Kind)
	}
}
