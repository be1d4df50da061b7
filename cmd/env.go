package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/abhisek/mathstudent/internal/badges"
	"github.com/abhisek/mathstudent/internal/catalog"
	"github.com/abhisek/mathstudent/internal/config"
	"github.com/abhisek/mathstudent/internal/grading"
	"github.com/abhisek/mathstudent/internal/logging"
	"github.com/abhisek/mathstudent/internal/notice"
	"github.com/abhisek/mathstudent/internal/progress"
	"github.com/abhisek/mathstudent/internal/selector"
	"github.com/abhisek/mathstudent/internal/session"
	"github.com/abhisek/mathstudent/internal/store"
	"github.com/abhisek/mathstudent/internal/trainer"
)

// logFileName is written next to the database while the TUI owns the terminal.
const logFileName = "mathstudent.log"

// env is the assembled application: configuration, storage and the trainer.
type env struct {
	cfg     config.Config
	logger  *slog.Logger
	trainer *trainer.Trainer
	events  store.EventRepo // nil unless the sqlite backend is used
	closers []io.Closer
}

func (e *env) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		e.closers[i].Close()
	}
}

// loadConfig reads the environment and applies command-line overrides.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	var files []string
	if f, _ := cmd.Flags().GetString("env-file"); f != "" {
		files = append(files, f)
	}
	cfg, err := config.Load(files...)
	if err != nil {
		return config.Config{}, err
	}
	applyFlags(cmd.Flags(), &cfg)
	return cfg, cfg.Validate()
}

// applyFlags copies explicitly set flags over the environment values.
func applyFlags(fs *pflag.FlagSet, cfg *config.Config) {
	if fs.Changed("db") {
		cfg.DB, _ = fs.GetString("db")
		cfg.Backend = config.BackendSQLite
	}
	if fs.Changed("catalog") {
		cfg.Catalog, _ = fs.GetString("catalog")
	}
	if fs.Changed("mode") {
		cfg.Mode, _ = fs.GetString("mode")
	}
	if ephemeral, _ := fs.GetBool("ephemeral"); ephemeral {
		cfg.Backend = config.BackendMemory
	}
}

// openEnv wires the trainer for a command. When tui is set, logs go to a
// file so they do not corrupt the screen.
func openEnv(cmd *cobra.Command, tui bool) (*env, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	e := &env{cfg: cfg}

	var logOut io.Writer = cmd.ErrOrStderr()
	var slot store.Slot
	var backups store.BackupRepo

	switch cfg.Backend {
	case config.BackendSQLite:
		dbPath := cfg.DB
		if dbPath == "" {
			if dbPath, err = store.DefaultDBPath(); err != nil {
				return nil, fmt.Errorf("resolve DB path: %w", err)
			}
		} else if err := store.EnsureDir(dbPath); err != nil {
			return nil, fmt.Errorf("resolve DB path: %w", err)
		}
		st, err := store.Open(dbPath)
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		e.closers = append(e.closers, st)
		slot = st.Slot(cfg.Slot)
		backups = st.BackupRepo()
		e.events = st.EventRepo()

		if tui {
			f, err := os.OpenFile(filepath.Join(filepath.Dir(dbPath), logFileName),
				os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
			if err != nil {
				logOut = io.Discard
			} else {
				e.closers = append(e.closers, f)
				logOut = f
			}
		}

	case config.BackendRedis:
		rs, err := store.OpenRedis(ctx, store.RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
		}, cfg.Slot)
		if err != nil {
			return nil, err
		}
		e.closers = append(e.closers, rs)
		slot = rs
		if tui {
			logOut = io.Discard
		}

	default:
		slot = store.NewMemorySlot(cfg.Slot)
		if tui {
			logOut = io.Discard
		}
	}

	logger, err := logging.New(logOut, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		e.Close()
		return nil, err
	}
	e.logger = logger

	notices := notice.NewQueue(notice.DefaultTTL)

	cat, err := loadCatalog(cfg.Catalog)
	if err != nil {
		var loadErr *catalog.ErrLoad
		if !errors.As(err, &loadErr) {
			e.Close()
			return nil, err
		}
		logger.Warn("catalog unavailable, continuing with an empty catalog", "source", loadErr.Source, "error", loadErr.Err)
		notices.Notify(notice.KindError, "The task catalog could not be loaded.", err)
	}

	defs, err := badges.FromCatalog(cat.Badges())
	if err != nil {
		logger.Warn("invalid badge definitions, using defaults", "error", err)
		notices.Notify(notice.KindError, "Badge definitions are invalid; using the defaults.", err)
		defs = badges.Defaults()
	}

	mode, _ := progress.ParseMode(cfg.Mode)
	policy, _ := grading.ParseMemoryPolicy(cfg.MemoryPolicy)

	mgr := progress.NewManager(progress.Options{
		Slot:    slot,
		Backups: backups,
		Catalog: cat,
		Logger:  logger,
		Notices: notices,
	})
	if _, err := mgr.Load(ctx); err != nil {
		e.Close()
		return nil, fmt.Errorf("load progress: %w", err)
	}

	eng := session.NewEngine(session.Options{
		Catalog:  cat,
		Selector: selector.New(nil),
		Grader:   grading.New(policy),
		Badges:   defs,
		Mode:     mode,
		Size:     cfg.SessionSize,
		Logger:   logger,
	})

	e.trainer = trainer.New(trainer.Options{
		Manager: mgr,
		Engine:  eng,
		Events:  e.events,
		Notices: notices,
		Logger:  logger,
	})
	return e, nil
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default()
	}
	return catalog.Load(path)
}

// printNotices writes pending notices to stderr for non-interactive commands.
func printNotices(cmd *cobra.Command, tr *trainer.Trainer) {
	for _, n := range tr.Notices() {
		fmt.Fprintf(cmd.ErrOrStderr(), "[%s] %s\n", n.Kind, n.Message)
	}
}
