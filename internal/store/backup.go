package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// backupRepo implements BackupRepo on the backups table.
type backupRepo struct {
	db *sql.DB
}

func (r *backupRepo) Save(ctx context.Context, b *Backup) error {
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO backups (slot, reason, created_at, data) VALUES (?, ?, ?, ?)`,
		b.Slot, b.Reason, b.CreatedAt.UnixNano(), b.Data,
	)
	if err != nil {
		return fmt.Errorf("save backup: %w", err)
	}
	if id, err := res.LastInsertId(); err == nil {
		b.ID = id
	}
	return nil
}

func (r *backupRepo) Latest(ctx context.Context, slot string) (*Backup, error) {
	var (
		b       Backup
		created int64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, slot, reason, created_at, data FROM backups
		 WHERE slot = ? ORDER BY id DESC LIMIT 1`, slot,
	).Scan(&b.ID, &b.Slot, &b.Reason, &created, &b.Data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query latest backup: %w", err)
	}
	b.CreatedAt = time.Unix(0, created).UTC()
	return &b, nil
}

func (r *backupRepo) Prune(ctx context.Context, slot string, keep int) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM backups WHERE slot = ? AND id NOT IN (
			SELECT id FROM backups WHERE slot = ? ORDER BY id DESC LIMIT ?
		)`, slot, slot, keep,
	)
	if err != nil {
		return fmt.Errorf("prune backups: %w", err)
	}
	return nil
}
