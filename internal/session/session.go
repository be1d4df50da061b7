// Package session runs practice sessions: it draws tasks, grades answers
// and applies the progression rules of the active mode to the store.
package session

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/mathstudent/internal/badges"
	"github.com/abhisek/mathstudent/internal/catalog"
	"github.com/abhisek/mathstudent/internal/grading"
	"github.com/abhisek/mathstudent/internal/progress"
	"github.com/abhisek/mathstudent/internal/selector"
)

// DefaultSize is the adaptive session length when none is configured.
const DefaultSize = 5

var (
	// ErrUnknownBlock is returned when a block id is not in the catalog.
	ErrUnknownBlock = errors.New("unknown block")

	// ErrLevelLocked is returned when starting a level above the unlocked one.
	ErrLevelLocked = errors.New("level is locked")

	// ErrNotInProgress is returned when answering outside an active session.
	ErrNotInProgress = errors.New("session is not in progress")

	// ErrTaskMismatch is returned when the answered task is not the current one.
	ErrTaskMismatch = errors.New("task is not the current task")
)

// Options configures an Engine.
type Options struct {
	Catalog  *catalog.Catalog
	Selector *selector.Selector
	Grader   *grading.Grader
	Badges   []badges.Badge
	Mode     progress.Mode

	// Size caps adaptive sessions. Starred sessions always use
	// selector.StarSessionSize and fixed sessions cover the whole level.
	Size int

	Now    func() time.Time
	NewID  func() string
	Logger *slog.Logger
}

// Engine applies session rules to a progress store. It holds no store
// state of its own; the caller owns persistence.
type Engine struct {
	cat    *catalog.Catalog
	sel    *selector.Selector
	grader *grading.Grader
	badges []badges.Badge
	mode   progress.Mode
	size   int
	now    func() time.Time
	newID  func() string
	logger *slog.Logger
}

// NewEngine returns an Engine with defaults filled in for unset options.
func NewEngine(opts Options) *Engine {
	e := &Engine{
		cat:    opts.Catalog,
		sel:    opts.Selector,
		grader: opts.Grader,
		badges: opts.Badges,
		mode:   opts.Mode,
		size:   opts.Size,
		now:    opts.Now,
		newID:  opts.NewID,
		logger: opts.Logger,
	}
	if e.cat == nil {
		e.cat = catalog.Empty()
	}
	if e.sel == nil {
		e.sel = selector.New(nil)
	}
	if e.grader == nil {
		e.grader = grading.New(grading.MemoryStrict)
	}
	if e.badges == nil {
		e.badges = badges.Defaults()
	}
	if e.mode == "" {
		e.mode = progress.ModeStarred
	}
	if e.size <= 0 {
		e.size = DefaultSize
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.newID == nil {
		e.newID = uuid.NewString
	}
	if e.logger == nil {
		e.logger = slog.New(slog.DiscardHandler)
	}
	return e
}

// Mode returns the progression mode in effect.
func (e *Engine) Mode() progress.Mode { return e.mode }

// MemoryPolicy returns the policy used to grade assignment memory tasks.
func (e *Engine) MemoryPolicy() grading.MemoryPolicy { return e.grader.Policy() }

// Catalog returns the catalog sessions are drawn from.
func (e *Engine) Catalog() *catalog.Catalog { return e.cat }

// BadgeDefs returns the badge definitions evaluated after each answer.
func (e *Engine) BadgeDefs() []badges.Badge { return e.badges }

// Start selects tasks and opens a session. Level is honored in starred
// mode; fixed mode plays the unlocked level and adaptive mode the current
// difficulty. The store is only touched to create a missing block record.
func (e *Engine) Start(s *progress.Store, blockID string, level int) (*Session, error) {
	block, ok := e.cat.Block(blockID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBlock, blockID)
	}
	bp := s.EnsureBlock(blockID)

	switch e.mode {
	case progress.ModeFixed:
		level = bp.UnlockedLevel
	case progress.ModeAdaptive:
		level = bp.Difficulty()
	default:
		if level == 0 {
			level = bp.UnlockedLevel
		}
		if level < catalog.MinLevel || level > catalog.MaxLevel {
			return nil, fmt.Errorf("%w: level %d out of range", selector.ErrNoTasksAvailable, level)
		}
		if level > bp.UnlockedLevel {
			return nil, fmt.Errorf("%w: level %d of block %s (unlocked %d)", ErrLevelLocked, level, blockID, bp.UnlockedLevel)
		}
	}

	sel, err := e.sel.Select(e.mode, block, bp, level, e.size)
	if err != nil {
		return nil, fmt.Errorf("block %s level %d: %w", blockID, level, err)
	}

	sess := &Session{
		ID:        e.newID(),
		BlockID:   blockID,
		Level:     level,
		Mode:      e.mode,
		Tasks:     sel.Tasks,
		Phase:     PhaseInProgress,
		Replay:    sel.Replay,
		StartTime: e.now(),
	}

	// A resumed fixed attempt starts after the tasks it already completed.
	if e.mode == progress.ModeFixed && !sel.Replay {
		for _, t := range sel.Tasks {
			if !slices.Contains(bp.CurrentLevelProgress, t.ID) {
				break
			}
			sess.Results = append(sess.Results, TaskResult{TaskID: t.ID, Correct: true, Skipped: true})
			sess.CurrentIndex++
		}
	}

	e.logger.Info("session started",
		"session_id", sess.ID,
		"block", blockID,
		"level", level,
		"mode", e.mode,
		"tasks", len(sess.Tasks),
		"replay", sess.Replay,
	)
	return sess, nil
}

// Outcome is the result of answering one task.
type Outcome struct {
	TaskID          catalog.TaskID `json:"taskId"`
	Correct         bool           `json:"correct"`
	CanonicalAnswer string         `json:"canonicalAnswer"`

	// DifficultyChange is the adaptive difficulty step caused by the answer.
	DifficultyChange int `json:"difficultyChange,omitempty"`

	// LevelUnlocked is set when the answer completed a fixed level.
	LevelUnlocked bool `json:"levelUnlocked,omitempty"`

	NewBadges []string `json:"newBadges,omitempty"`

	// Summary is set when the answer finished the session.
	Summary *Summary `json:"summary,omitempty"`
}

// Answer grades resp for the current task, applies progression to s and
// advances the session. A grading error leaves both untouched.
func (e *Engine) Answer(s *progress.Store, sess *Session, taskID catalog.TaskID, resp grading.Response) (*Outcome, error) {
	if sess == nil || sess.Phase != PhaseInProgress {
		return nil, ErrNotInProgress
	}
	task, ok := sess.Current()
	if !ok {
		return nil, ErrNotInProgress
	}
	if task.ID != taskID {
		return nil, fmt.Errorf("%w: answered %s, current is %s", ErrTaskMismatch, taskID, task.ID)
	}

	res, err := e.grader.Grade(task, resp)
	if err != nil {
		return nil, err
	}

	block, _ := e.cat.Block(sess.BlockID)
	bp := s.EnsureBlock(sess.BlockID)
	out := &Outcome{TaskID: task.ID, Correct: res.Correct, CanonicalAnswer: res.CanonicalAnswer}

	errorsBefore := sess.Errors
	bp.RecordAnswer(task.ID, res.Correct)
	s.RecordStreak(res.Correct)
	if res.Correct {
		sess.CorrectCount++
		bp.MarkSolved(task.ID)
	} else {
		sess.Errors++
	}

	switch sess.Mode {
	case progress.ModeAdaptive:
		if block != nil {
			out.DifficultyChange = adjustDifficulty(bp, block)
		}
	case progress.ModeFixed:
		if !sess.Replay && block != nil {
			out.LevelUnlocked = advanceFixed(bp, block, task.ID, res.Correct, errorsBefore)
			if out.LevelUnlocked {
				sess.LevelUnlocked = true
				e.logger.Info("level unlocked", "block", sess.BlockID, "level", bp.UnlockedLevel)
			}
		}
	}

	sess.Results = append(sess.Results, TaskResult{TaskID: task.ID, Correct: res.Correct})
	sess.CurrentIndex++

	out.NewBadges = badges.Award(s, e.cat, e.badges)
	sess.EarnedBadges = append(sess.EarnedBadges, out.NewBadges...)
	for _, id := range out.NewBadges {
		e.logger.Info("badge earned", "badge", id, "session_id", sess.ID)
	}

	if sess.CurrentIndex >= len(sess.Tasks) {
		out.Summary = e.complete(s, sess)
	}
	return out, nil
}

// complete closes the session and, in starred mode, records its rating.
func (e *Engine) complete(s *progress.Store, sess *Session) *Summary {
	sess.Phase = PhaseCompleted
	sum := BuildSummary(sess, e.now())

	if sess.Mode == progress.ModeStarred {
		bp := s.EnsureBlock(sess.BlockID)
		stars := rateStarred(bp, sess.Level, sess.CorrectCount)
		sum.Stars = &stars
		if stars.LevelUnlocked {
			sess.LevelUnlocked = true
			e.logger.Info("level unlocked", "block", sess.BlockID, "level", bp.UnlockedLevel)
		}
	}
	sum.LevelUnlocked = sess.LevelUnlocked
	sum.UnlockedLevel = s.EnsureBlock(sess.BlockID).UnlockedLevel

	e.logger.Info("session completed",
		"session_id", sess.ID,
		"correct", sess.CorrectCount,
		"total", len(sess.Tasks),
		"level_unlocked", sess.LevelUnlocked,
	)
	return sum
}

// Abandon discards an in-progress session. Answers already given keep
// their effects; the incomplete attempt earns no rating.
func (e *Engine) Abandon(sess *Session) {
	if sess == nil || sess.Phase == PhaseIdle {
		return
	}
	e.logger.Info("session abandoned", "session_id", sess.ID, "answered", sess.Answered())
	sess.Phase = PhaseIdle
}

// Close returns a completed session to idle.
func (e *Engine) Close(sess *Session) {
	if sess != nil && sess.Phase == PhaseCompleted {
		sess.Phase = PhaseIdle
	}
}
