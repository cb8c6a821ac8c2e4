package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"HabitSentinel/internal/config"
	"HabitSentinel/internal/recorder"
	"HabitSentinel/internal/reminder"
	"HabitSentinel/internal/sleep"
	"HabitSentinel/internal/store"
	"HabitSentinel/internal/water"

	"go.uber.org/zap"
)

func openStore(cfg *config.Config, log *zap.Logger) (store.Store, error) {
	switch cfg.Storage.Driver {
	case "memory":
		log.Warn("using in-memory store, state is lost on exit")
		return store.NewMemoryStore(), nil
	case "sqlite":
		if err := ensureDir(cfg.Storage.SQLitePath); err != nil {
			return nil, err
		}
		s, err := store.NewSQLiteStore(cfg.Storage.SQLitePath, log)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		s, err := store.NewFileStore(cfg.Storage.StateFile)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}

func openRecorder(cfg *config.Config, log *zap.Logger) recorder.Recorder {
	if cfg.Database.HistoryPath == "" {
		return recorder.NewNoopRecorder()
	}
	if err := ensureDir(cfg.Database.HistoryPath); err != nil {
		log.Warn("init sqlite recorder failed, using noop", zap.Error(err))
		return recorder.NewNoopRecorder()
	}
	rec, err := recorder.NewSQLiteRecorder(cfg.Database.HistoryPath, log)
	if err != nil {
		log.Warn("init sqlite recorder failed, using noop", zap.Error(err))
		return recorder.NewNoopRecorder()
	}
	return rec
}

func ensureDir(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	return nil
}

type trackers struct {
	Water *water.Engine
	Sleep *sleep.Tracker
}

type trackerDeps struct {
	Store     store.Store
	Reminders reminder.Scheduler
	Archiver  recorder.Recorder
	WaterPub  water.Publisher
	SleepPub  sleep.Publisher
	Now       func() time.Time
	Log       *zap.Logger
}

func newTrackers(cfg *config.Config, d trackerDeps) (*trackers, error) {
	wake, err := config.ParseClock(cfg.Sleep.WakeUpTime)
	if err != nil {
		return nil, fmt.Errorf("sleep.wake_up_time: %w", err)
	}
	return &trackers{
		Water: water.NewEngine(water.Options{
			Store:         d.Store,
			Reminders:     d.Reminders,
			Publisher:     d.WaterPub,
			Archiver:      d.Archiver,
			Now:           d.Now,
			Log:           d.Log.Named("water"),
			MinTarget:     cfg.Water.MinTarget,
			MaxTarget:     cfg.Water.MaxTarget,
			DefaultTarget: cfg.Water.TargetLiters,
		}),
		Sleep: sleep.NewTracker(sleep.Options{
			Store:         d.Store,
			Reminders:     d.Reminders,
			Publisher:     d.SleepPub,
			Archiver:      d.Archiver,
			Now:           d.Now,
			Log:           d.Log.Named("sleep"),
			DefaultTarget: cfg.Sleep.TargetHours,
			DefaultWakeUp: wake,
		}),
	}, nil
}

func clockIn(loc *time.Location) func() time.Time {
	return func() time.Time { return time.Now().In(loc) }
}
