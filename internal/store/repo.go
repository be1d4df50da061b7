package store

import (
	"context"
	"time"
)

// DefaultSlotName is the slot holding the serialized progress store.
const DefaultSlotName = "mathStudentData"

// Slot is a single named entry in a key-value store holding one blob.
type Slot interface {
	// Name returns the slot key.
	Name() string

	// Read returns the stored blob, or nil if the slot is empty.
	Read(ctx context.Context) ([]byte, error)

	// Write replaces the stored blob.
	Write(ctx context.Context, data []byte) error

	// Clear removes the blob. Clearing an empty slot is not an error.
	Clear(ctx context.Context) error
}

// Backup is a copy of a slot's blob taken before it was overwritten or discarded.
type Backup struct {
	ID        int64
	Slot      string
	Reason    string
	CreatedAt time.Time
	Data      []byte
}

// BackupRepo keeps copies of progress data that is about to be replaced.
type BackupRepo interface {
	// Save stores a new backup.
	Save(ctx context.Context, b *Backup) error

	// Latest returns the most recent backup for slot, or nil if none exist.
	Latest(ctx context.Context, slot string) (*Backup, error)

	// Prune deletes all but the N most recent backups for slot.
	Prune(ctx context.Context, slot string, keep int) error
}

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit   int       // max results (0 = unlimited)
	After   int64     // sequence > After
	BlockID string    // empty = all blocks
	From    time.Time // timestamp >= From
}

// AnswerEventData captures a single graded answer.
type AnswerEventData struct {
	SessionID string
	BlockID   string
	TaskID    string
	TaskType  string
	Level     int
	Correct   bool
}

// AnswerEvent is a stored answer with its ordering metadata.
type AnswerEvent struct {
	AnswerEventData
	Sequence  int64
	Timestamp time.Time
}

// SessionEventData captures a session lifecycle transition.
type SessionEventData struct {
	SessionID      string
	BlockID        string
	Level          int
	Mode           string
	Action         string // "start", "complete" or "abandon"
	TasksServed    int
	CorrectAnswers int
	Stars          int
}

// HintEventData captures a hint request.
type HintEventData struct {
	SessionID string
	BlockID   string
	TaskID    string
	HintCount int
}

// AnswerStats aggregates answer events.
type AnswerStats struct {
	Total   int
	Correct int
}

// EventRepo provides append and query access to practice history.
type EventRepo interface {
	AppendAnswerEvent(ctx context.Context, data AnswerEventData) error
	AppendSessionEvent(ctx context.Context, data SessionEventData) error
	AppendHintEvent(ctx context.Context, data HintEventData) error

	// QueryAnswers returns answer events in sequence order.
	QueryAnswers(ctx context.Context, opts QueryOpts) ([]AnswerEvent, error)

	// AnswerStatsByBlock returns totals keyed by block id.
	AnswerStatsByBlock(ctx context.Context) (map[string]AnswerStats, error)

	// CountSessions returns how many sessions reached the given action.
	CountSessions(ctx context.Context, action string) (int, error)
}
