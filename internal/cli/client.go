package cli

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/mealtrack/mealsync/internal/config"
	"github.com/mealtrack/mealsync/internal/fetch"
	"github.com/mealtrack/mealsync/internal/store"
	"github.com/mealtrack/mealsync/internal/syncer"
)

// timeNow is swapped out in tests that pin the current date.
var timeNow = time.Now

// app bundles everything a command needs to talk to the tracker.
type app struct {
	cfg  config.Config
	st   *store.Store
	sync *syncer.Orchestrator
}

func (a *app) close() {
	if a.st != nil {
		a.st.Close()
	}
}

// setupLogging configures slog from the verbose flag. Logs go to
// stderr so JSON output on stdout stays parseable.
func setupLogging(opts *RootOptions) {
	logLevel := slog.LevelWarn
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}

// newApp loads the config, opens the local state database, and wires
// the fetch selector and sync orchestrator.
func newApp(ctx context.Context, opts *RootOptions) (*app, error) {
	setupLogging(opts)

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if err := cfg.EnsureDataDir(); err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to prepare data dir", err)
	}

	st, err := store.Open(cfg.StateDBPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open state database", err)
	}

	if err := syncer.EnsureStaticGeneration(ctx, st, cfg.StaticVersion); err != nil {
		st.Close()
		return nil, WrapExitError(ExitCommandError, "failed to roll static cache", err)
	}

	sel, err := fetch.New(st, fetch.Config{
		BaseURL:          cfg.ServerURL,
		StaticPartition:  syncer.StaticPartitionName(cfg.StaticVersion),
		DynamicPartition: syncer.DynamicPartition,
		Timeout:          cfg.Timeout,
	})
	if err != nil {
		st.Close()
		return nil, WrapExitError(ExitCommandError, "invalid server url", err)
	}

	return &app{
		cfg:  cfg,
		st:   st,
		sync: syncer.New(st, sel, syncer.DynamicPartition),
	}, nil
}
