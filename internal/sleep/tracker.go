// Package sleep tracks the week's logged sleep and the bedtime implied by a
// wake-up time and a sleep target.
package sleep

import (
	"math"
	"time"

	"HabitSentinel/internal/model"
	"HabitSentinel/internal/reminder"
	"HabitSentinel/internal/store"
	"HabitSentinel/internal/weekkey"

	"go.uber.org/zap"
)

const (
	DefaultTarget = 8.0
	MinTarget     = 7.0
	MaxTarget     = 10.0

	reminderKind = "sleep."
)

// Publisher receives the full week after each local change.
type Publisher interface {
	PublishSleep(weekStart time.Time, hours model.WeeklyHours)
}

// Archiver stores a finished week before it is reset.
type Archiver interface {
	ArchiveWeek(a model.WeekArchive) error
}

// Options configures a Tracker. Store, Reminders and Log are required.
type Options struct {
	Store     store.Store
	Reminders reminder.Scheduler
	Publisher Publisher
	Archiver  Archiver
	Now       func() time.Time
	Log       *zap.Logger

	DefaultTarget float64
	// DefaultWakeUp is the clock time used when no wake-up time was saved.
	DefaultWakeUp time.Time
}

// Snapshot is a copy of the tracker's observable state.
type Snapshot struct {
	Target       float64
	WakeUp       time.Time
	BedTime      time.Time
	BedTimeToday time.Time
	Week         model.SleepWeekState
	Today        float64
	Condition    model.SleepCondition
	Average      float64
}

// Tracker is not safe for concurrent use.
type Tracker struct {
	store     store.Store
	reminders reminder.Scheduler
	publisher Publisher
	archiver  Archiver
	now       func() time.Time
	log       *zap.Logger

	target    float64
	wakeUp    time.Time
	week      model.SleepWeekState
	observers []func(Snapshot)
}

// NewTracker creates a Tracker and loads persisted state.
func NewTracker(opts Options) *Tracker {
	t := &Tracker{
		store:     opts.Store,
		reminders: opts.Reminders,
		publisher: opts.Publisher,
		archiver:  opts.Archiver,
		now:       opts.Now,
		log:       opts.Log,
		target:    DefaultTarget,
	}
	if t.now == nil {
		t.now = time.Now
	}
	if opts.DefaultTarget > 0 {
		t.target = clampTarget(opts.DefaultTarget)
	}
	var saved float64
	if store.GetJSON(t.store, store.KeySleepTarget, &saved) {
		t.target = clampTarget(saved)
	}

	clock := opts.DefaultWakeUp
	if clock.IsZero() {
		clock = time.Date(0, 1, 1, 7, 0, 0, 0, time.UTC)
	}
	t.wakeUp = weekkey.AtClock(t.now(), clock)
	var wake time.Time
	if store.GetJSON(t.store, store.KeySleepWakeUp, &wake) {
		t.wakeUp = wake.In(t.now().Location())
	}

	t.loadWeek()
	return t
}

func (t *Tracker) loadWeek() {
	current := weekkey.MondayStart(t.now())

	var start time.Time
	var hours []float64
	if store.GetJSON(t.store, store.KeySleepWeekStart, &start) &&
		store.GetJSON(t.store, store.KeySleepWeekHours, &hours) &&
		len(hours) == model.DaysPerWeek {
		copy(t.week.Hours[:], hours)
		if weekkey.SameDay(current, start) {
			t.week.WeekStart = current
			return
		}
		t.week.WeekStart = start
		t.archive()
	}

	t.week = model.SleepWeekState{WeekStart: current}
	t.saveWeek()
}

func (t *Tracker) saveWeek() {
	if err := store.SetJSON(t.store, store.KeySleepWeekStart, t.week.WeekStart); err != nil {
		t.log.Error("failed to save sleep week start", zap.Error(err))
	}
	if err := store.SetJSON(t.store, store.KeySleepWeekHours, t.week.Hours[:]); err != nil {
		t.log.Error("failed to save sleep week hours", zap.Error(err))
	}
}

func (t *Tracker) archive() {
	if t.archiver == nil {
		return
	}
	if err := t.archiver.ArchiveWeek(model.WeekArchive{
		Kind:       model.ArchiveSleep,
		WeekStart:  t.week.WeekStart,
		Values:     append([]float64(nil), t.week.Hours[:]...),
		ArchivedAt: t.now(),
	}); err != nil {
		t.log.Error("failed to archive sleep week", zap.Error(err))
	}
}

// EnsureCurrentWeek resets the hours when the stored week start is no longer
// the Monday of now.
func (t *Tracker) EnsureCurrentWeek() {
	current := weekkey.MondayStart(t.now())
	if weekkey.SameDay(current, t.week.WeekStart) {
		return
	}
	t.archive()
	t.log.Info("sleep week rolled over",
		zap.String("from", weekkey.ISODate(t.week.WeekStart)),
		zap.String("to", weekkey.ISODate(current)))
	t.week = model.SleepWeekState{WeekStart: current}
	t.saveWeek()
	t.notify()
}

// UpdateTodaySleep records hours slept for today. Negative values count as 0.
func (t *Tracker) UpdateTodaySleep(hours float64) {
	t.EnsureCurrentWeek()
	if math.IsNaN(hours) {
		hours = 0
	}
	t.week.Hours[weekkey.DayIndex(t.now())] = math.Max(0, hours)
	t.saveWeek()
	if t.publisher != nil {
		t.publisher.PublishSleep(t.week.WeekStart, t.week.Hours)
	}
	t.notify()
}

// SetTarget changes the nightly target, clamped to 7..10 hours.
func (t *Tracker) SetTarget(hours float64) {
	t.target = clampTarget(hours)
	if err := store.SetJSON(t.store, store.KeySleepTarget, t.target); err != nil {
		t.log.Error("failed to save sleep target", zap.Error(err))
	}
	t.notify()
}

func clampTarget(hours float64) float64 {
	if math.IsNaN(hours) {
		return MinTarget
	}
	return math.Min(MaxTarget, math.Max(MinTarget, hours))
}

// SetWakeUpTime sets the wake-up instant the bedtime is derived from.
func (t *Tracker) SetWakeUpTime(at time.Time) {
	t.wakeUp = at
	if err := store.SetJSON(t.store, store.KeySleepWakeUp, at); err != nil {
		t.log.Error("failed to save wake-up time", zap.Error(err))
	}
	t.notify()
}

// BedTime is the wake-up time minus the sleep target, at minute resolution.
func (t *Tracker) BedTime() time.Time {
	return t.wakeUp.Add(-time.Duration(int(t.target*60)) * time.Minute)
}

// BedTimeToday is BedTime moved one calendar day forward when it does not
// fall after the wake-up time, so a night-spanning bedtime reads as upcoming.
func (t *Tracker) BedTimeToday() time.Time {
	bt := t.BedTime()
	if !bt.After(t.wakeUp) {
		return bt.AddDate(0, 0, 1)
	}
	return bt
}

// ScheduleBedtimeNotification replaces today's bedtime reminder with one at
// BedTime.
func (t *Tracker) ScheduleBedtimeNotification() {
	if t.reminders == nil {
		return
	}
	today := weekkey.ISODate(t.now())
	t.reminders.CancelPrefix(reminderKind + today)
	t.reminders.Schedule(model.Reminder{
		ID:    reminderKind + today + ".bed",
		At:    t.BedTime(),
		Title: "Sleep Reminder",
		Body:  "Time to wind down for bed.",
	})
	t.log.Info("bedtime reminder scheduled", zap.Time("at", t.BedTime()))
}

// ReplaceWeek overwrites the current week's hours. Anything but seven
// entries zeroes the week.
func (t *Tracker) ReplaceWeek(hours []float64) {
	t.EnsureCurrentWeek()
	t.week.Hours = model.WeeklyHours{}
	if len(hours) == model.DaysPerWeek {
		for i, h := range hours {
			t.week.Hours[i] = math.Max(0, h)
		}
	}
	t.saveWeek()
	t.notify()
}

// ClearWeek zeroes the current week's hours.
func (t *Tracker) ClearWeek() {
	t.ReplaceWeek(nil)
}

// Condition labels a night's sleep. The (5, 6) gap falls back to Average.
func Condition(hours float64) model.SleepCondition {
	switch {
	case hours < 5:
		return model.SleepPoor
	case hours >= 6 && hours <= 7:
		return model.SleepAverage
	case hours > 8:
		return model.SleepExcellent
	case hours > 7:
		return model.SleepGood
	default:
		return model.SleepAverage
	}
}

// WeeklyAverage averages the days that have sleep logged, 0 if none.
func (t *Tracker) WeeklyAverage() float64 {
	sum, n := 0.0, 0
	for _, h := range t.week.Hours {
		if h > 0 {
			sum += h
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func (t *Tracker) Target() float64 { return t.target }

func (t *Tracker) WakeUpTime() time.Time { return t.wakeUp }

func (t *Tracker) Week() model.SleepWeekState { return t.week }

func (t *Tracker) TodayHours() float64 { return t.week.Hours[weekkey.DayIndex(t.now())] }

// Snapshot returns a copy of the observable state.
func (t *Tracker) Snapshot() Snapshot {
	today := t.TodayHours()
	return Snapshot{
		Target:       t.target,
		WakeUp:       t.wakeUp,
		BedTime:      t.BedTime(),
		BedTimeToday: t.BedTimeToday(),
		Week:         t.week,
		Today:        today,
		Condition:    Condition(today),
		Average:      t.WeeklyAverage(),
	}
}

// Subscribe registers fn to receive a snapshot after every change.
func (t *Tracker) Subscribe(fn func(Snapshot)) {
	t.observers = append(t.observers, fn)
}

func (t *Tracker) notify() {
	if len(t.observers) == 0 {
		return
	}
	snap := t.Snapshot()
	for _, fn := range t.observers {
		fn(snap)
	}
}
