// Package progress owns the persisted learner state: the canonical
// per-block progress schema, its migration from older schema generations,
// and the manager that loads and saves it.
package progress

import (
	"slices"
	"strings"
	"time"

	"github.com/abhisek/mathstudent/internal/catalog"
)

const (
	// MaxRecentAnswers bounds each block's recent answer log.
	MaxRecentAnswers = 50

	// MaxStars is the best rating a level can earn.
	MaxStars = 3

	blockKeyPrefix = "block_"
)

// BlockKey returns the store key for a catalog block id.
func BlockKey(blockID string) string { return blockKeyPrefix + blockID }

// BlockIDFromKey reverses BlockKey.
func BlockIDFromKey(key string) (string, bool) {
	return strings.CutPrefix(key, blockKeyPrefix)
}

// Answer is one entry of the recent answer log.
type Answer struct {
	TaskID  catalog.TaskID `json:"taskId"`
	Correct bool           `json:"correct"`
}

// BlockProgress is the canonical per-block progress record.
type BlockProgress struct {
	UnlockedLevel        int              `json:"unlockedLevel"`
	LevelResults         map[int]int      `json:"levelResults"`
	CurrentLevelProgress []catalog.TaskID `json:"currentLevelProgress"`
	CorrectlySolvedTasks []catalog.TaskID `json:"correctlySolvedTasks"`
	RecentAnswers        []Answer         `json:"recentAnswers"`

	// CurrentDifficulty is only maintained by the adaptive progression mode.
	CurrentDifficulty *int `json:"currentDifficulty,omitempty"`
}

// NewBlockProgress returns the default progress for a block nobody has played.
func NewBlockProgress() *BlockProgress {
	return &BlockProgress{
		UnlockedLevel:        catalog.MinLevel,
		LevelResults:         map[int]int{},
		CurrentLevelProgress: []catalog.TaskID{},
		CorrectlySolvedTasks: []catalog.TaskID{},
		RecentAnswers:        []Answer{},
	}
}

// Stars returns the best rating recorded for level.
func (p *BlockProgress) Stars(level int) int {
	return p.LevelResults[level]
}

// Difficulty returns the adaptive difficulty, falling back to the unlocked level.
func (p *BlockProgress) Difficulty() int {
	if p.CurrentDifficulty != nil {
		return *p.CurrentDifficulty
	}
	return p.UnlockedLevel
}

// SetDifficulty stores an adaptive difficulty clamped to the level range.
func (p *BlockProgress) SetDifficulty(d int) {
	d = ClampLevel(d)
	p.CurrentDifficulty = &d
}

// HasSolved reports whether id was ever answered correctly.
func (p *BlockProgress) HasSolved(id catalog.TaskID) bool {
	return slices.Contains(p.CorrectlySolvedTasks, id)
}

// MarkSolved adds id to the solved set.
func (p *BlockProgress) MarkSolved(id catalog.TaskID) {
	if !p.HasSolved(id) {
		p.CorrectlySolvedTasks = append(p.CorrectlySolvedTasks, id)
	}
}

// AddLevelProgress adds id to the current level attempt.
func (p *BlockProgress) AddLevelProgress(id catalog.TaskID) {
	if !slices.Contains(p.CurrentLevelProgress, id) {
		p.CurrentLevelProgress = append(p.CurrentLevelProgress, id)
	}
}

// RecordAnswer appends to the recent answer log. The log may briefly exceed
// MaxRecentAnswers; TrimAnswers runs on every save.
func (p *BlockProgress) RecordAnswer(id catalog.TaskID, correct bool) {
	p.RecentAnswers = append(p.RecentAnswers, Answer{TaskID: id, Correct: correct})
}

// LastAnswers returns up to n of the most recent answers, oldest first.
func (p *BlockProgress) LastAnswers(n int) []Answer {
	if n >= len(p.RecentAnswers) {
		return p.RecentAnswers
	}
	return p.RecentAnswers[len(p.RecentAnswers)-n:]
}

// RecentlySeen returns the task ids among the last n answers.
func (p *BlockProgress) RecentlySeen(n int) map[catalog.TaskID]bool {
	seen := make(map[catalog.TaskID]bool, n)
	for _, a := range p.LastAnswers(n) {
		seen[a.TaskID] = true
	}
	return seen
}

// TrimAnswers keeps the max most recent answers in their original order.
func (p *BlockProgress) TrimAnswers(max int) {
	if len(p.RecentAnswers) > max {
		p.RecentAnswers = slices.Clone(p.RecentAnswers[len(p.RecentAnswers)-max:])
	}
}

// Clone returns a deep copy.
func (p *BlockProgress) Clone() *BlockProgress {
	c := &BlockProgress{
		UnlockedLevel:        p.UnlockedLevel,
		LevelResults:         make(map[int]int, len(p.LevelResults)),
		CurrentLevelProgress: slices.Clone(p.CurrentLevelProgress),
		CorrectlySolvedTasks: slices.Clone(p.CorrectlySolvedTasks),
		RecentAnswers:        slices.Clone(p.RecentAnswers),
	}
	for l, s := range p.LevelResults {
		c.LevelResults[l] = s
	}
	if p.CurrentDifficulty != nil {
		d := *p.CurrentDifficulty
		c.CurrentDifficulty = &d
	}
	return c
}

// UserProfile holds learner-wide achievements.
type UserProfile struct {
	BadgesEarned []string `json:"badgesEarned"`
}

// Streak counts consecutive correct answers across all blocks.
type Streak struct {
	Current int `json:"current"`
}

// Store is the whole persisted progress document.
type Store struct {
	Version     string                    `json:"version"`
	Progress    map[string]*BlockProgress `json:"progress"`
	UserProfile *UserProfile              `json:"userProfile,omitempty"`
	Streak      *Streak                   `json:"streak,omitempty"`
	LastSession time.Time                 `json:"lastSession"`
}

// NewStore returns the default store for a catalog.
func NewStore(version string, cat *catalog.Catalog, now time.Time) *Store {
	s := &Store{
		Version:     version,
		Progress:    make(map[string]*BlockProgress, cat.Len()),
		UserProfile: &UserProfile{BadgesEarned: []string{}},
		Streak:      &Streak{},
		LastSession: now,
	}
	for _, id := range cat.BlockIDs() {
		s.Progress[BlockKey(id)] = NewBlockProgress()
	}
	return s
}

// Block returns the progress of a catalog block, or nil.
func (s *Store) Block(blockID string) *BlockProgress {
	return s.Progress[BlockKey(blockID)]
}

// EnsureBlock returns the progress of a block, creating a default one if missing.
func (s *Store) EnsureBlock(blockID string) *BlockProgress {
	if s.Progress == nil {
		s.Progress = map[string]*BlockProgress{}
	}
	bp, ok := s.Progress[BlockKey(blockID)]
	if !ok {
		bp = NewBlockProgress()
		s.Progress[BlockKey(blockID)] = bp
	}
	return bp
}

// Badges returns the earned badge ids in award order.
func (s *Store) Badges() []string {
	if s.UserProfile == nil {
		return nil
	}
	return s.UserProfile.BadgesEarned
}

// HasBadge reports whether a badge was already earned.
func (s *Store) HasBadge(id string) bool {
	return slices.Contains(s.Badges(), id)
}

// AwardBadges appends ids not yet earned, preserving order.
func (s *Store) AwardBadges(ids ...string) {
	if s.UserProfile == nil {
		s.UserProfile = &UserProfile{BadgesEarned: []string{}}
	}
	for _, id := range ids {
		if !s.HasBadge(id) {
			s.UserProfile.BadgesEarned = append(s.UserProfile.BadgesEarned, id)
		}
	}
}

// StreakCurrent returns the global streak, 0 if untracked.
func (s *Store) StreakCurrent() int {
	if s.Streak == nil {
		return 0
	}
	return s.Streak.Current
}

// RecordStreak extends the streak on a correct answer and resets it otherwise.
func (s *Store) RecordStreak(correct bool) {
	if s.Streak == nil {
		s.Streak = &Streak{}
	}
	if correct {
		s.Streak.Current++
	} else {
		s.Streak.Current = 0
	}
}

// TrimAnswers bounds every block's recent answer log.
func (s *Store) TrimAnswers(max int) {
	for _, bp := range s.Progress {
		bp.TrimAnswers(max)
	}
}

// Clone returns a deep copy.
func (s *Store) Clone() *Store {
	c := &Store{
		Version:     s.Version,
		Progress:    make(map[string]*BlockProgress, len(s.Progress)),
		LastSession: s.LastSession,
	}
	for k, bp := range s.Progress {
		c.Progress[k] = bp.Clone()
	}
	if s.UserProfile != nil {
		c.UserProfile = &UserProfile{BadgesEarned: slices.Clone(s.UserProfile.BadgesEarned)}
	}
	if s.Streak != nil {
		c.Streak = &Streak{Current: s.Streak.Current}
	}
	return c
}

// ClampLevel bounds a level or difficulty to [MinLevel, MaxLevel].
func ClampLevel(l int) int {
	return min(max(l, catalog.MinLevel), catalog.MaxLevel)
}
