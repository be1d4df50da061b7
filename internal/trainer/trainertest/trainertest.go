// Package trainertest builds trainers over in-memory storage for tests of
// the collaborators that drive them.
package trainertest

import (
	"context"
	"testing"
	"time"

	"github.com/abhisek/mathstudent/internal/badges"
	"github.com/abhisek/mathstudent/internal/catalog"
	"github.com/abhisek/mathstudent/internal/grading"
	"github.com/abhisek/mathstudent/internal/notice"
	"github.com/abhisek/mathstudent/internal/progress"
	"github.com/abhisek/mathstudent/internal/selector"
	"github.com/abhisek/mathstudent/internal/session"
	"github.com/abhisek/mathstudent/internal/store"
	"github.com/abhisek/mathstudent/internal/testutil"
	"github.com/abhisek/mathstudent/internal/trainer"
)

// Now is the fixed clock every test trainer runs on.
var Now = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

// Option adjusts the engine options before the trainer is built.
type Option func(*session.Options)

// WithMode selects the progression mode.
func WithMode(m progress.Mode) Option {
	return func(o *session.Options) { o.Mode = m }
}

// WithMemoryPolicy selects the assignment memory policy.
func WithMemoryPolicy(p grading.MemoryPolicy) Option {
	return func(o *session.Options) { o.Grader = grading.New(p) }
}

// Fixture bundles a trainer with its notice queue.
type Fixture struct {
	Trainer *trainer.Trainer
	Notices *notice.Queue
	Events  store.EventRepo
}

// New returns a trainer over cat backed by a memory slot. Tasks are
// served in catalog order.
func New(t testing.TB, cat *catalog.Catalog, opts ...Option) *Fixture {
	t.Helper()
	notices := notice.NewQueue(notice.DefaultTTL)
	notices.SetClock(func() time.Time { return Now })

	mgr := progress.NewManager(progress.Options{
		Slot:    store.NewMemorySlot(store.DefaultSlotName),
		Catalog: cat,
		Now:     func() time.Time { return Now },
		Notices: notices,
	})
	if _, err := mgr.Load(context.Background()); err != nil {
		t.Fatalf("load progress: %v", err)
	}

	engOpts := session.Options{
		Catalog:  cat,
		Selector: selector.New(testutil.IdentityRand{}),
		Badges:   badges.Defaults(),
		Now:      func() time.Time { return Now },
	}
	for _, opt := range opts {
		opt(&engOpts)
	}

	events := testutil.OpenStore(t).EventRepo()
	return &Fixture{
		Trainer: trainer.New(trainer.Options{
			Manager: mgr,
			Engine:  session.NewEngine(engOpts),
			Events:  events,
			Notices: notices,
		}),
		Notices: notices,
		Events:  events,
	}
}
