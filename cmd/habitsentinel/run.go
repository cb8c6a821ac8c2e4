package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"HabitSentinel/internal/app"
	"HabitSentinel/internal/cloudsync"
	"HabitSentinel/internal/config"
	"HabitSentinel/internal/logging"
	"HabitSentinel/internal/loop"
	"HabitSentinel/internal/notifier"
	"HabitSentinel/internal/reminder"
	"HabitSentinel/internal/scheduler"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the reminder bot",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("config validation: %w", err)
		}
		log, err := logging.NewLogger(cfg.Log.Level, cfg.Log.Format, "habitsentinel")
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		defer log.Sync()
		return run(cmd.Context(), cfg, log)
	},
}

func run(parent context.Context, cfg *config.Config, log *zap.Logger) error {
	log.Info("HabitSentinel starting...")

	loc, err := cfg.Location()
	if err != nil {
		return fmt.Errorf("timezone: %w", err)
	}
	now := clockIn(loc)

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	st, err := openStore(cfg, log)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	rec := openRecorder(cfg, log)
	defer rec.Close()

	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Telegram.APIBase, cfg.Proxy, log.Named("telegram"))
	center := reminder.NewCenter(&scheduler.RecordingDeliverer{
		Next:     tn,
		Recorder: rec,
		Now:      now,
		Log:      log,
	}, now, log.Named("reminder"))

	// Remote sync is optional.
	session := cloudsync.NewSession()
	deps := trackerDeps{Store: st, Reminders: center, Archiver: rec, Now: now, Log: log}
	var fetcher app.Fetcher
	var pub *cloudsync.Publisher
	if cfg.Remote.RedisURL != "" {
		client, err := cloudsync.DialRedis(ctx, cfg.Remote.RedisURL)
		if err != nil {
			log.Warn("redis unavailable, running without sync", zap.Error(err))
		} else {
			defer client.Close()
			pub = cloudsync.NewPublisher(cloudsync.NewRedisRemote(client), session,
				cloudsync.DefaultBreakerConfig(), cfg.Remote.Timeout, log.Named("sync"))
			deps.WaterPub, deps.SleepPub, fetcher = pub, pub, pub
			log.Info("remote sync enabled")
		}
	}

	tr, err := newTrackers(cfg, deps)
	if err != nil {
		return err
	}

	l := loop.New(64)
	go l.Run(ctx)

	a := app.New(app.Options{
		Loop:    l,
		Water:   tr.Water,
		Sleep:   tr.Sleep,
		Session: session,
		Fetcher: fetcher,
		Now:     now,
		Log:     log.Named("app"),
	})

	wake, _ := config.ParseClock(cfg.Water.WakeTime)
	bed, _ := config.ParseClock(cfg.Water.SleepTime)
	sched := scheduler.NewScheduler(ctx, scheduler.Options{
		App:        a,
		Reminders:  center,
		Notifier:   tn,
		Recorder:   rec,
		WaterWake:  wake,
		WaterSleep: bed,
		Now:        now,
		Log:        log.Named("scheduler"),
	})
	if err := sched.RegisterAll(cfg.Schedule.ReminderCron, cfg.Schedule.RolloverCron, cfg.Schedule.DailyScheduleCron); err != nil {
		return fmt.Errorf("register cron tasks: %w", err)
	}
	sched.Start()

	if uid := cfg.Remote.UserID; uid != "" {
		if err := l.Do(ctx, func() { a.SignIn(ctx, uid) }); err != nil {
			log.Warn("auto sign-in failed", zap.Error(err))
		}
	}
	go sched.RunDailyNow()

	// Start Telegram polling
	go tn.StartPolling(ctx, sched.HandleCommand)
	log.Info("HabitSentinel is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
		log.Info("shutdown signal received, stopping...")
	case <-ctx.Done():
	}

	sched.Stop()
	cancel()
	<-l.Done()
	a.Wait()
	if pub != nil {
		pub.Wait()
	}
	log.Info("HabitSentinel stopped")
	return nil
}
