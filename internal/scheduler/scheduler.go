package scheduler

import (
	"context"
	"fmt"
	"time"

	"HabitSentinel/internal/app"
	"HabitSentinel/internal/model"
	"HabitSentinel/internal/notifier"
	"HabitSentinel/internal/recorder"
	"HabitSentinel/internal/reminder"
	"HabitSentinel/internal/weekkey"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Sender pushes a message to the user.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Options wires a Scheduler. WaterWake and WaterSleep are clock times; only
// their hour and minute are used.
type Options struct {
	App        *app.App
	Reminders  *reminder.Center
	Notifier   Sender
	Recorder   recorder.Recorder
	WaterWake  time.Time
	WaterSleep time.Time
	Now        func() time.Time
	Log        *zap.Logger
}

// Scheduler manages all cron tasks and answers chat commands.
type Scheduler struct {
	Cron      *cron.Cron
	App       *app.App
	Reminders *reminder.Center
	Notifier  Sender
	Recorder  recorder.Recorder
	Ctx       context.Context

	waterWake  time.Time
	waterSleep time.Time
	now        func() time.Time
	log        *zap.Logger
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, opts Options) *Scheduler {
	s := &Scheduler{
		Cron:       cron.New(cron.WithSeconds()),
		App:        opts.App,
		Reminders:  opts.Reminders,
		Notifier:   opts.Notifier,
		Recorder:   opts.Recorder,
		Ctx:        ctx,
		waterWake:  opts.WaterWake,
		waterSleep: opts.WaterSleep,
		now:        opts.Now,
		log:        opts.Log,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.Recorder == nil {
		s.Recorder = recorder.NewNoopRecorder()
	}
	return s
}

// RegisterAll registers the reminder tick, the weekly rollover and the daily
// schedule tasks.
func (s *Scheduler) RegisterAll(reminderCron, rolloverCron, dailyCron string) error {
	if _, err := s.Cron.AddFunc(reminderCron, s.reminderTick); err != nil {
		return fmt.Errorf("register reminder task: %w", err)
	}
	if _, err := s.Cron.AddFunc(rolloverCron, s.rolloverTask); err != nil {
		return fmt.Errorf("register rollover task: %w", err)
	}
	if _, err := s.Cron.AddFunc(dailyCron, s.dailyTask); err != nil {
		return fmt.Errorf("register daily task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.log.Info("scheduler started", zap.Int("jobs", len(s.Cron.Entries())))
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.log.Info("scheduler stopped")
}

// RunDailyNow builds today's schedule immediately (used on startup).
func (s *Scheduler) RunDailyNow() {
	s.dailyTask()
}

func (s *Scheduler) reminderTick() {
	if n := s.Reminders.DeliverDue(s.Ctx); n > 0 {
		s.log.Info("reminders delivered", zap.Int("count", n))
	}
}

func (s *Scheduler) rolloverTask() {
	s.log.Info("running weekly rollover")
	var week time.Time
	err := s.App.Loop.Do(s.Ctx, func() {
		s.App.Water.EnsureCurrentWeek()
		s.App.Sleep.EnsureCurrentWeek()
		week = s.App.Water.Week().WeekStart
	})
	if err != nil {
		s.log.Error("weekly rollover", zap.Error(err))
		return
	}

	msg := fmt.Sprintf("📅 <b>New week started</b> | %s\n", weekkey.ISODate(week))
	if weeks, err := s.Recorder.RecentWeeks(model.ArchiveWater, 1); err != nil {
		s.log.Error("load last week", zap.Error(err))
	} else if len(weeks) > 0 {
		msg += "\n" + notifier.FormatHistory(model.ArchiveWater, weeks)
	}
	s.trySend(msg)
}

func (s *Scheduler) dailyTask() {
	s.log.Info("running daily schedule")
	err := s.App.Loop.Do(s.Ctx, func() {
		now := s.now()
		s.App.Water.GenerateSchedule(weekkey.AtClock(now, s.waterWake), weekkey.AtClock(now, s.waterSleep))

		if wake := s.App.Sleep.WakeUpTime(); !wake.After(now) {
			s.App.Sleep.SetWakeUpTime(nextOccurrence(now, wake))
		}
		s.scheduleBedtime()
	})
	if err != nil {
		s.log.Error("daily schedule", zap.Error(err))
	}
}

// scheduleBedtime registers the bedtime reminder unless bedtime has already
// passed. Must run on the app loop.
func (s *Scheduler) scheduleBedtime() bool {
	if !s.App.Sleep.BedTime().After(s.now()) {
		return false
	}
	s.App.Sleep.ScheduleBedtimeNotification()
	return true
}

// nextOccurrence is the first instant after now at clock's hour and minute.
func nextOccurrence(now, clock time.Time) time.Time {
	t := weekkey.AtClock(now, clock)
	if !t.After(now) {
		t = t.AddDate(0, 0, 1)
	}
	return t
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		s.log.Error("send notification", zap.Error(err))
	}
}
