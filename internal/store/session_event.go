package store

import (
	"context"
	"fmt"
	"strings"
	"time"
)

func (r *eventRepo) AppendSessionEvent(ctx context.Context, data SessionEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO session_events
		 (sequence, timestamp, session_id, block_id, level, mode, action, tasks_served, correct_answers, stars)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		seqNum, time.Now().UnixNano(), data.SessionID, data.BlockID, data.Level, data.Mode,
		data.Action, data.TasksServed, data.CorrectAnswers, data.Stars,
	)
	if err != nil {
		return fmt.Errorf("save session event: %w", err)
	}
	return nil
}

func (r *eventRepo) AppendAnswerEvent(ctx context.Context, data AnswerEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO answer_events
		 (sequence, timestamp, session_id, block_id, task_id, task_type, level, correct)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		seqNum, time.Now().UnixNano(), data.SessionID, data.BlockID, data.TaskID,
		data.TaskType, data.Level, data.Correct,
	)
	if err != nil {
		return fmt.Errorf("save answer event: %w", err)
	}
	return nil
}

func (r *eventRepo) QueryAnswers(ctx context.Context, opts QueryOpts) ([]AnswerEvent, error) {
	var (
		where []string
		args  []any
	)
	if opts.After > 0 {
		where = append(where, "sequence > ?")
		args = append(args, opts.After)
	}
	if opts.BlockID != "" {
		where = append(where, "block_id = ?")
		args = append(args, opts.BlockID)
	}
	if !opts.From.IsZero() {
		where = append(where, "timestamp >= ?")
		args = append(args, opts.From.UnixNano())
	}

	q := `SELECT sequence, timestamp, session_id, block_id, task_id, task_type, level, correct FROM answer_events`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY sequence"
	if opts.Limit > 0 {
		q += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query answer events: %w", err)
	}
	defer rows.Close()

	var events []AnswerEvent
	for rows.Next() {
		var (
			e  AnswerEvent
			ts int64
		)
		if err := rows.Scan(&e.Sequence, &ts, &e.SessionID, &e.BlockID, &e.TaskID,
			&e.TaskType, &e.Level, &e.Correct); err != nil {
			return nil, fmt.Errorf("scan answer event: %w", err)
		}
		e.Timestamp = time.Unix(0, ts).UTC()
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *eventRepo) AnswerStatsByBlock(ctx context.Context) (map[string]AnswerStats, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT block_id, COUNT(*), COALESCE(SUM(correct), 0) FROM answer_events GROUP BY block_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("query answer stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]AnswerStats)
	for rows.Next() {
		var (
			blockID string
			s       AnswerStats
		)
		if err := rows.Scan(&blockID, &s.Total, &s.Correct); err != nil {
			return nil, fmt.Errorf("scan answer stats: %w", err)
		}
		stats[blockID] = s
	}
	return stats, rows.Err()
}

func (r *eventRepo) CountSessions(ctx context.Context, action string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM session_events WHERE action = ?`, action,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count sessions: %w", err)
	}
	return n, nil
}
