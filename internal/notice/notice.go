// Package notice carries transient, dismissible messages from the engine
// to whichever collaborator is rendering it.
package notice

import (
	"sync"
	"time"
)

// Kind is the severity of a notice.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindInfo    Kind = "info"
)

// DefaultTTL is how long a notice stays visible unless dismissed.
const DefaultTTL = 5 * time.Second

// Notice is a single user-visible message.
type Notice struct {
	ID        int       `json:"id"`
	Kind      Kind      `json:"kind"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
	Err       error     `json:"-"`
}

// Sink receives notices.
type Sink interface {
	Notify(kind Kind, message string, err error)
}

// Discard is a Sink that drops every notice.
var Discard Sink = discard{}

type discard struct{}

func (discard) Notify(Kind, string, error) {}

// Queue is a Sink that keeps notices until they expire or are dismissed.
type Queue struct {
	mu     sync.Mutex
	ttl    time.Duration
	now    func() time.Time
	nextID int
	items  []Notice
}

// NewQueue returns a queue whose notices expire after ttl.
func NewQueue(ttl time.Duration) *Queue {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Queue{ttl: ttl, now: time.Now}
}

// SetClock replaces the queue's time source.
func (q *Queue) SetClock(now func() time.Time) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.now = now
}

func (q *Queue) Notify(kind Kind, message string, err error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.nextID++
	q.items = append(q.items, Notice{
		ID:        q.nextID,
		Kind:      kind,
		Message:   message,
		CreatedAt: q.now(),
		Err:       err,
	})
}

// Active returns the notices that have not expired, oldest first.
func (q *Queue) Active() []Notice {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.expire()
	return append([]Notice(nil), q.items...)
}

// Latest returns the newest active notice.
func (q *Queue) Latest() (Notice, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.expire()
	if len(q.items) == 0 {
		return Notice{}, false
	}
	return q.items[len(q.items)-1], true
}

// Dismiss removes the notice with the given id.
func (q *Queue) Dismiss(id int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, n := range q.items {
		if n.ID == id {
			q.items = append(q.items[:i], q.items[i+1:]...)
			return
		}
	}
}

func (q *Queue) expire() {
	cutoff := q.now().Add(-q.ttl)
	kept := q.items[:0]
	for _, n := range q.items {
		if n.CreatedAt.After(cutoff) {
			kept = append(kept, n)
		}
	}
	q.items = kept
}
