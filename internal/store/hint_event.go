package store

import (
	"context"
	"fmt"
	"time"
)

func (r *eventRepo) AppendHintEvent(ctx context.Context, data HintEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO hint_events (sequence, timestamp, session_id, block_id, task_id, hint_count)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		seqNum, time.Now().UnixNano(), data.SessionID, data.BlockID, data.TaskID, data.HintCount,
	)
	if err != nil {
		return fmt.Errorf("save hint event: %w", err)
	}
	return nil
}
