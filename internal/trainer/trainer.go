// Package trainer is the facade collaborators (terminal UI, HTTP API, CLI)
// use to drive practice. It owns the active session and persists the
// progress store after every mutating operation.
package trainer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/abhisek/mathstudent/internal/badges"
	"github.com/abhisek/mathstudent/internal/catalog"
	"github.com/abhisek/mathstudent/internal/grading"
	"github.com/abhisek/mathstudent/internal/notice"
	"github.com/abhisek/mathstudent/internal/progress"
	"github.com/abhisek/mathstudent/internal/selector"
	"github.com/abhisek/mathstudent/internal/session"
	"github.com/abhisek/mathstudent/internal/sharecode"
	"github.com/abhisek/mathstudent/internal/store"
)

var (
	ErrUnknownBlock     = session.ErrUnknownBlock
	ErrLevelLocked      = session.ErrLevelLocked
	ErrNoTasksAvailable = selector.ErrNoTasksAvailable

	// ErrNoActiveSession is returned when an operation needs a running session.
	ErrNoActiveSession = errors.New("no active session")

	// ErrUnknownTask is returned when a task id is not in the block.
	ErrUnknownTask = errors.New("unknown task")
)

// Options configures a Trainer.
type Options struct {
	Manager *progress.Manager
	Engine  *session.Engine
	Events  store.EventRepo // optional
	Notices *notice.Queue
	Logger  *slog.Logger
}

// Trainer serializes access to the progress store. The HTTP server calls
// it from concurrent handlers.
type Trainer struct {
	mu      sync.Mutex
	mgr     *progress.Manager
	eng     *session.Engine
	cat     *catalog.Catalog
	events  store.EventRepo
	notices *notice.Queue
	logger  *slog.Logger
	sess    *session.Session
}

// New returns a Trainer. The manager must already be loaded.
func New(opts Options) *Trainer {
	t := &Trainer{
		mgr:     opts.Manager,
		eng:     opts.Engine,
		events:  opts.Events,
		notices: opts.Notices,
		logger:  opts.Logger,
	}
	if t.notices == nil {
		t.notices = notice.NewQueue(notice.DefaultTTL)
	}
	if t.logger == nil {
		t.logger = slog.New(slog.DiscardHandler)
	}
	t.cat = t.eng.Catalog()
	return t
}

// Catalog returns the task catalog.
func (t *Trainer) Catalog() *catalog.Catalog { return t.cat }

// Mode returns the progression mode in effect.
func (t *Trainer) Mode() progress.Mode { return t.eng.Mode() }

// MemoryPolicy returns the policy used to grade assignment memory tasks.
func (t *Trainer) MemoryPolicy() grading.MemoryPolicy { return t.eng.MemoryPolicy() }

// Snapshot returns a deep copy of the progress store.
func (t *Trainer) Snapshot() *progress.Store {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.mgr.Data().Clone()
}

// StartSession opens a session for a block level. A session already in
// progress is abandoned.
func (t *Trainer) StartSession(ctx context.Context, blockID string, level int) (*session.Session, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.sess != nil && t.sess.Phase == session.PhaseInProgress {
		t.abandonLocked(ctx)
	}

	next := t.mgr.Data().Clone()
	sess, err := t.eng.Start(next, blockID, level)
	if err != nil {
		switch {
		case errors.Is(err, ErrLevelLocked):
			t.notices.Notify(notice.KindError, "This level is not unlocked yet.", err)
		case errors.Is(err, ErrNoTasksAvailable):
			t.notices.Notify(notice.KindError, "No tasks available for this level.", err)
		}
		return nil, err
	}
	if err := t.mgr.Commit(ctx, next); err != nil {
		return nil, err
	}
	t.sess = sess
	t.recordSession(ctx, sess, "start", nil)
	return sess.Clone(), nil
}

// Session returns a copy of the current session, or nil.
func (t *Trainer) Session() *session.Session {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.sess == nil {
		return nil
	}
	return t.sess.Clone()
}

// CurrentTask returns the task awaiting an answer.
func (t *Trainer) CurrentTask() (catalog.Task, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.sess == nil {
		return catalog.Task{}, false
	}
	return t.sess.Current()
}

// Submit grades an answer for the current task and persists the result.
func (t *Trainer) Submit(ctx context.Context, taskID catalog.TaskID, resp grading.Response) (*session.Outcome, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.sess == nil {
		return nil, ErrNoActiveSession
	}
	// Work on copies so a failed save leaves both unchanged.
	next := t.mgr.Data().Clone()
	sess := t.sess.Clone()
	out, err := t.eng.Answer(next, sess, taskID, resp)
	if err != nil {
		return nil, err
	}
	if err := t.mgr.Commit(ctx, next); err != nil {
		return nil, err
	}
	t.sess = sess

	t.recordAnswer(ctx, sess, out)
	if out.LevelUnlocked {
		t.notices.Notify(notice.KindSuccess, fmt.Sprintf("Level %d unlocked!", t.mgr.Data().Block(sess.BlockID).UnlockedLevel), nil)
	}
	for _, title := range t.BadgeTitles(out.NewBadges) {
		t.notices.Notify(notice.KindSuccess, "Badge earned: "+title, nil)
	}
	if sum := out.Summary; sum != nil {
		if sum.Stars != nil && sum.Stars.LevelUnlocked {
			t.notices.Notify(notice.KindSuccess, fmt.Sprintf("Level %d unlocked!", sum.UnlockedLevel), nil)
		}
		t.recordSession(ctx, sess, "complete", sum)
	}
	return out, nil
}

// Hints returns the hints of a task in order. An empty blockID means the
// block of the active session.
func (t *Trainer) Hints(ctx context.Context, blockID string, taskID catalog.TaskID) ([]string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	sessionID := ""
	if t.sess != nil {
		sessionID = t.sess.ID
		if blockID == "" {
			blockID = t.sess.BlockID
		}
	}
	if blockID == "" {
		return nil, ErrNoActiveSession
	}
	block, ok := t.cat.Block(blockID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBlock, blockID)
	}
	task, ok := block.Task(taskID)
	if !ok {
		return nil, fmt.Errorf("%w: %s in block %s", ErrUnknownTask, taskID, blockID)
	}

	if t.events != nil {
		err := t.events.AppendHintEvent(ctx, store.HintEventData{
			SessionID: sessionID,
			BlockID:   blockID,
			TaskID:    string(taskID),
			HintCount: len(task.Hints),
		})
		if err != nil {
			t.logger.Warn("record hint event", "error", err)
		}
	}
	return append([]string(nil), task.Hints...), nil
}

// Abandon discards the active session. Answers already given stay recorded.
func (t *Trainer) Abandon(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.abandonLocked(ctx)
}

func (t *Trainer) abandonLocked(ctx context.Context) {
	if t.sess == nil {
		return
	}
	if t.sess.Phase == session.PhaseInProgress {
		t.recordSession(ctx, t.sess, "abandon", nil)
	}
	t.eng.Abandon(t.sess)
	t.sess = nil
}

// Finish returns from a completed session to the dashboard.
func (t *Trainer) Finish() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.sess != nil && t.sess.Phase == session.PhaseCompleted {
		t.eng.Close(t.sess)
		t.sess = nil
	}
}

// Export returns the share code for the current progress.
func (t *Trainer) Export() (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	code, err := sharecode.Encode(t.mgr.Data())
	if err != nil {
		t.notices.Notify(notice.KindError, "Could not create a share code.", err)
		return "", err
	}
	return code, nil
}

// Import replaces the current progress with a share code's. On failure
// the current progress is untouched.
func (t *Trainer) Import(ctx context.Context, token string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, err := sharecode.Decode(token, t.mgr.Version())
	if err != nil {
		var incompatible *progress.ErrIncompatibleVersion
		if errors.As(err, &incompatible) {
			t.notices.Notify(notice.KindError, "This share code comes from an incompatible version.", err)
		} else {
			t.notices.Notify(notice.KindError, "Invalid share code.", err)
		}
		t.logger.Info("import rejected", "error", err)
		return err
	}

	t.abandonLocked(ctx)
	if err := t.mgr.Replace(ctx, s); err != nil {
		t.notices.Notify(notice.KindError, "Could not import progress.", err)
		return err
	}
	t.notices.Notify(notice.KindSuccess, "Progress imported.", nil)
	return nil
}

// Reset clears all progress and starts over from defaults.
func (t *Trainer) Reset(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.abandonLocked(ctx)
	if err := t.mgr.Reset(ctx); err != nil {
		t.notices.Notify(notice.KindError, "Could not reset progress.", err)
		return err
	}
	t.notices.Notify(notice.KindSuccess, "Progress was reset.", nil)
	return nil
}

// BadgeStatus pairs a badge definition with whether it was earned.
type BadgeStatus struct {
	badges.Badge
	Earned bool `json:"earned"`
}

// Badges lists every badge definition in order with its earned state.
func (t *Trainer) Badges() []BadgeStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	s := t.mgr.Data()
	defs := t.eng.BadgeDefs()
	out := make([]BadgeStatus, 0, len(defs))
	for _, b := range defs {
		out = append(out, BadgeStatus{Badge: b, Earned: s.HasBadge(b.ID)})
	}
	return out
}

// BadgeTitles maps badge ids to their titles. Unknown ids are kept as is.
func (t *Trainer) BadgeTitles(ids []string) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id
		if b, ok := badges.Lookup(t.eng.BadgeDefs(), id); ok {
			out[i] = b.Title
		}
	}
	return out
}

// Notices returns the notices that have not expired.
func (t *Trainer) Notices() []notice.Notice {
	return t.notices.Active()
}

// DismissNotice removes a notice before it expires.
func (t *Trainer) DismissNotice(id int) {
	t.notices.Dismiss(id)
}

func (t *Trainer) recordAnswer(ctx context.Context, sess *session.Session, out *session.Outcome) {
	if t.events == nil {
		return
	}
	kind := ""
	if task, ok := sess.Task(out.TaskID); ok {
		kind = string(task.Kind())
	}
	err := t.events.AppendAnswerEvent(ctx, store.AnswerEventData{
		SessionID: sess.ID,
		BlockID:   sess.BlockID,
		TaskID:    string(out.TaskID),
		TaskType:  kind,
		Level:     sess.Level,
		Correct:   out.Correct,
	})
	if err != nil {
		t.logger.Warn("record answer event", "error", err)
	}
}

func (t *Trainer) recordSession(ctx context.Context, sess *session.Session, action string, sum *session.Summary) {
	if t.events == nil {
		return
	}
	data := store.SessionEventData{
		SessionID:      sess.ID,
		BlockID:        sess.BlockID,
		Level:          sess.Level,
		Mode:           string(sess.Mode),
		Action:         action,
		TasksServed:    sess.Answered(),
		CorrectAnswers: sess.CorrectCount,
	}
	if sum != nil && sum.Stars != nil {
		data.Stars = sum.Stars.Stars
	}
	if err := t.events.AppendSessionEvent(ctx, data); err != nil {
		t.logger.Warn("record session event", "action", action, "error", err)
	}
}
