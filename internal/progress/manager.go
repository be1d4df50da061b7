package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/abhisek/mathstudent/internal/catalog"
	"github.com/abhisek/mathstudent/internal/notice"
	"github.com/abhisek/mathstudent/internal/store"
)

// backupsKept is how many discarded stores are retained per slot.
const backupsKept = 5

// Backup reasons.
const (
	ReasonIncompatible = "incompatible"
	ReasonCorrupt      = "corrupt"
	ReasonImport       = "import"
	ReasonReset        = "reset"
)

// Options configures a Manager.
type Options struct {
	Slot    store.Slot
	Backups store.BackupRepo // optional
	Catalog *catalog.Catalog
	Version string // defaults to CurrentVersion
	Now     func() time.Time
	Logger  *slog.Logger
	Notices notice.Sink
}

// Manager is the single owner of the progress store. Every mutation made
// through the engine is followed by Save.
type Manager struct {
	slot    store.Slot
	backups store.BackupRepo
	catalog *catalog.Catalog
	version string
	now     func() time.Time
	logger  *slog.Logger
	notices notice.Sink
	data    *Store
}

// NewManager creates a Manager. Call Load before using Data.
func NewManager(opts Options) *Manager {
	m := &Manager{
		slot:    opts.Slot,
		backups: opts.Backups,
		catalog: opts.Catalog,
		version: opts.Version,
		now:     opts.Now,
		logger:  opts.Logger,
		notices: opts.Notices,
	}
	if m.catalog == nil {
		m.catalog = catalog.Empty()
	}
	if m.version == "" {
		m.version = CurrentVersion
	}
	if m.now == nil {
		m.now = time.Now
	}
	if m.logger == nil {
		m.logger = slog.New(slog.DiscardHandler)
	}
	if m.notices == nil {
		m.notices = notice.Discard
	}
	return m
}

// Version returns the data version the manager writes.
func (m *Manager) Version() string { return m.version }

// Data returns the live store. Callers that mutate it must call Save.
func (m *Manager) Data() *Store { return m.data }

// Load reads the slot and returns the live store. An empty slot yields a
// fresh default store. Data written by an incompatible release, or data
// that cannot be parsed, is backed up, discarded and replaced by defaults;
// the loss is reported as an error notice rather than returned.
func (m *Manager) Load(ctx context.Context) (*Store, error) {
	raw, err := m.slot.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("load progress: %w", err)
	}
	if raw == nil {
		m.logger.Info("initializing progress", "slot", m.slot.Name(), "blocks", m.catalog.Len())
		return m.initialize(ctx)
	}

	s, err := DecodeCompatible(raw, m.version)
	if err != nil {
		var incompatible *ErrIncompatibleVersion
		reason := ReasonCorrupt
		msg := "Saved progress could not be read and was reset."
		if errors.As(err, &incompatible) {
			reason = ReasonIncompatible
			msg = "Saved progress comes from an incompatible version and could not be loaded."
		}
		m.logger.Warn("discarding stored progress", "slot", m.slot.Name(), "reason", reason, "error", err)
		m.backup(ctx, reason, raw)
		if err := m.slot.Clear(ctx); err != nil {
			return nil, fmt.Errorf("clear progress: %w", err)
		}
		m.notices.Notify(notice.KindError, msg, err)
		return m.initialize(ctx)
	}

	Reconcile(s, m.catalog)
	m.data = s
	m.logger.Debug("progress loaded", "slot", m.slot.Name(), "version", s.Version, "blocks", len(s.Progress))
	if err := m.Save(ctx); err != nil {
		return nil, err
	}
	return m.data, nil
}

func (m *Manager) initialize(ctx context.Context) (*Store, error) {
	if err := m.Commit(ctx, NewStore(m.version, m.catalog, m.stamp())); err != nil {
		return nil, err
	}
	return m.data, nil
}

// Save trims every recent answer log, stamps the session time and writes
// the store to the slot.
func (m *Manager) Save(ctx context.Context) error {
	if m.data == nil {
		return errors.New("save progress: store not loaded")
	}
	return m.write(ctx, m.data)
}

// Commit writes next to the slot and makes it the live store only once the
// write succeeded. On failure the live store is left as it was.
func (m *Manager) Commit(ctx context.Context, next *Store) error {
	if err := m.write(ctx, next); err != nil {
		return err
	}
	m.data = next
	return nil
}

func (m *Manager) write(ctx context.Context, s *Store) error {
	s.TrimAnswers(MaxRecentAnswers)
	s.LastSession = m.stamp()

	b, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode progress: %w", err)
	}
	if err := m.slot.Write(ctx, b); err != nil {
		return fmt.Errorf("save progress: %w", err)
	}
	return nil
}

// Replace swaps in an imported store. The previous store is backed up.
func (m *Manager) Replace(ctx context.Context, s *Store) error {
	if err := checkVersion(s.Version, m.version); err != nil {
		return err
	}
	if m.data != nil {
		if b, err := json.Marshal(m.data); err == nil {
			m.backup(ctx, ReasonImport, b)
		}
	}
	s = s.Clone()
	Reconcile(s, m.catalog)
	if err := m.Commit(ctx, s); err != nil {
		return err
	}
	m.logger.Info("progress replaced", "slot", m.slot.Name(), "version", s.Version)
	return nil
}

// Reset clears the slot and starts over from defaults. The previous store
// is backed up.
func (m *Manager) Reset(ctx context.Context) error {
	if m.data != nil {
		if b, err := json.Marshal(m.data); err == nil {
			m.backup(ctx, ReasonReset, b)
		}
	}
	if err := m.slot.Clear(ctx); err != nil {
		return fmt.Errorf("reset progress: %w", err)
	}
	m.logger.Info("progress reset", "slot", m.slot.Name())
	_, err := m.initialize(ctx)
	return err
}

// LatestBackup returns the most recent backup of this manager's slot.
func (m *Manager) LatestBackup(ctx context.Context) (*store.Backup, error) {
	if m.backups == nil {
		return nil, nil
	}
	return m.backups.Latest(ctx, m.slot.Name())
}

// backup is best effort: a failure is logged and never blocks the caller.
func (m *Manager) backup(ctx context.Context, reason string, data []byte) {
	if m.backups == nil {
		return
	}
	err := m.backups.Save(ctx, &store.Backup{
		Slot:      m.slot.Name(),
		Reason:    reason,
		CreatedAt: m.stamp(),
		Data:      data,
	})
	if err == nil {
		err = m.backups.Prune(ctx, m.slot.Name(), backupsKept)
	}
	if err != nil {
		m.logger.Warn("backup failed", "slot", m.slot.Name(), "reason", reason, "error", err)
	}
}

func (m *Manager) stamp() time.Time {
	return m.now().UTC().Truncate(time.Millisecond)
}
