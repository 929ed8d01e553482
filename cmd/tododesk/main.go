package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"tododesk/internal/config"
	"tododesk/internal/notify"
	"tododesk/internal/scheduler"
	"tododesk/internal/service"
	"tododesk/internal/storage"
	"tododesk/internal/store"
	"tododesk/internal/update"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "tododesk failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(config.DefaultPath())
	if err != nil {
		return err
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "tododesk",
	})
	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	repo, err := storage.OpenSQLite(cfg.DBPath)
	if err != nil {
		return err
	}
	defer repo.Close()
	if err := storage.MigrateUp(repo.DB()); err != nil {
		return err
	}

	engineOpts := []scheduler.Option{scheduler.WithLogger(logger)}
	if cfg.CoarseTimerSeconds > 0 {
		engineOpts = append(engineOpts, scheduler.WithCoarseResolution(time.Duration(cfg.CoarseTimerSeconds)*time.Second))
	}
	engine := scheduler.NewEngine(cfg.SchedulerBuffer, engineOpts...)
	engine.Start()
	defer engine.Stop()

	st := store.New(repo, logger)
	svc := service.New(st, engine, logger)

	var notifier notify.Notifier = notify.NoopNotifier{}
	if cfg.DesktopNotifications {
		notifier = notify.ExecNotifier{}
	}
	reminder := notify.NewHandler(notify.StaticGate(cfg.DesktopNotifications), notifier, logger)

	ctx := context.Background()
	armed, err := svc.RearmReminders(ctx)
	if err != nil {
		return fmt.Errorf("rearm reminders: %w", err)
	}
	logger.Debug("reminders rearmed", "count", armed)

	spec, err := svc.SortAndFilter(ctx)
	if err != nil {
		return err
	}
	sub, err := st.Subscribe(ctx, spec)
	if err != nil {
		return err
	}
	defer st.Unsubscribe(sub.ID)

	program := tea.NewProgram(update.NewModelWithRuntime(svc, sub, reminder, spec))
	if _, err := program.Run(); err != nil {
		return err
	}
	return nil
}
