// Package water schedules the day's hydration slots and keeps the week's
// completed milliliters.
//
// An Engine is not safe for concurrent use. All calls are expected to come
// from one goroutine (see package loop).
package water

import (
	"fmt"
	"math"
	"time"

	"HabitSentinel/internal/model"
	"HabitSentinel/internal/reminder"
	"HabitSentinel/internal/store"
	"HabitSentinel/internal/weekkey"

	"go.uber.org/zap"
)

const (
	DefaultTarget = 3.0
	MinTarget     = 2.7
	MaxTarget     = 4.0

	reminderTitle = "Hydration Reminder"
	reminderKind  = "water."
)

// Publisher receives the full week after each local change.
type Publisher interface {
	PublishWater(weekStart time.Time, totals model.WeeklyTotals)
}

// Archiver stores a finished week before it is reset.
type Archiver interface {
	ArchiveWeek(a model.WeekArchive) error
}

// Options configures an Engine. Store, Reminders and Log are required.
type Options struct {
	Store     store.Store
	Reminders reminder.Scheduler
	Publisher Publisher
	Archiver  Archiver
	Now       func() time.Time
	Log       *zap.Logger

	// Target bounds; zero values fall back to MinTarget and MaxTarget.
	MinTarget float64
	MaxTarget float64
	// Target used when nothing was persisted yet.
	DefaultTarget float64
}

// Snapshot is a copy of the engine's observable state.
type Snapshot struct {
	Target    float64
	Wake      time.Time
	Sleep     time.Time
	Slots     []model.WaterSlot
	Consumed  float64
	Remaining float64
	Progress  float64
	Week      model.WeekState
	TodayML   int
}

// Engine owns the day's slots, the daily target and the week's totals.
type Engine struct {
	store     store.Store
	reminders reminder.Scheduler
	publisher Publisher
	archiver  Archiver
	now       func() time.Time
	log       *zap.Logger

	minTarget float64
	maxTarget float64

	target    float64
	wake      time.Time
	sleep     time.Time
	slots     []model.WaterSlot
	week      model.WeekState
	observers []func(Snapshot)
}

// NewEngine creates an Engine and loads persisted week state.
func NewEngine(opts Options) *Engine {
	e := &Engine{
		store:     opts.Store,
		reminders: opts.Reminders,
		publisher: opts.Publisher,
		archiver:  opts.Archiver,
		now:       opts.Now,
		log:       opts.Log,
		minTarget: opts.MinTarget,
		maxTarget: opts.MaxTarget,
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.minTarget <= 0 {
		e.minTarget = MinTarget
	}
	if e.maxTarget <= 0 || e.maxTarget < e.minTarget {
		e.maxTarget = MaxTarget
	}

	e.target = e.clampTarget(DefaultTarget)
	if opts.DefaultTarget > 0 {
		e.target = e.clampTarget(opts.DefaultTarget)
	}
	var saved float64
	if store.GetJSON(e.store, store.KeyWaterTarget, &saved) {
		e.target = e.clampTarget(saved)
	}

	e.loadWeek()
	return e
}

func (e *Engine) loadWeek() {
	current := weekkey.MondayStart(e.now())

	var start time.Time
	var totals []int
	if store.GetJSON(e.store, store.KeyWaterWeekStart, &start) &&
		store.GetJSON(e.store, store.KeyWaterWeekTotals, &totals) &&
		len(totals) == model.DaysPerWeek {
		copy(e.week.Totals[:], totals)
		if weekkey.SameDay(current, start) {
			e.week.WeekStart = current
			return
		}
		e.week.WeekStart = start
		e.archive()
	}

	e.week = model.WeekState{WeekStart: current}
	e.saveWeek()
}

func (e *Engine) saveWeek() {
	if err := store.SetJSON(e.store, store.KeyWaterWeekStart, e.week.WeekStart); err != nil {
		e.log.Error("failed to save water week start", zap.Error(err))
	}
	if err := store.SetJSON(e.store, store.KeyWaterWeekTotals, e.week.Totals[:]); err != nil {
		e.log.Error("failed to save water week totals", zap.Error(err))
	}
}

func (e *Engine) publish() {
	if e.publisher != nil {
		e.publisher.PublishWater(e.week.WeekStart, e.week.Totals)
	}
}

// EnsureCurrentWeek resets the totals when the stored week start is no
// longer the Monday of now. Calling it repeatedly is harmless.
func (e *Engine) EnsureCurrentWeek() {
	current := weekkey.MondayStart(e.now())
	if weekkey.SameDay(current, e.week.WeekStart) {
		return
	}

	e.archive()
	e.log.Info("water week rolled over",
		zap.String("from", weekkey.ISODate(e.week.WeekStart)),
		zap.String("to", weekkey.ISODate(current)))
	e.week = model.WeekState{WeekStart: current}
	e.saveWeek()
	e.notify()
}

func (e *Engine) archive() {
	if e.archiver == nil {
		return
	}
	values := make([]float64, model.DaysPerWeek)
	for i, ml := range e.week.Totals {
		values[i] = float64(ml)
	}
	if err := e.archiver.ArchiveWeek(model.WeekArchive{
		Kind:       model.ArchiveWater,
		WeekStart:  e.week.WeekStart,
		Values:     values,
		ArchivedAt: e.now(),
	}); err != nil {
		e.log.Error("failed to archive water week", zap.Error(err))
	}
}

// SetTarget changes the daily target, clamped to the configured bounds.
// Slot amounts are left alone until the next rebalance.
func (e *Engine) SetTarget(liters float64) {
	e.EnsureCurrentWeek()
	e.target = e.clampTarget(liters)
	if err := store.SetJSON(e.store, store.KeyWaterTarget, e.target); err != nil {
		e.log.Error("failed to save water target", zap.Error(err))
	}
	e.notify()
}

func (e *Engine) clampTarget(liters float64) float64 {
	if math.IsNaN(liters) {
		return e.minTarget
	}
	return math.Min(e.maxTarget, math.Max(e.minTarget, liters))
}

// GenerateSchedule builds one slot per whole hour in [start, end). A window
// with start >= end yields no slots. Completed slots whose instant reappears
// keep their amount; every other slot gets an equal share of what remains.
func (e *Engine) GenerateSchedule(start, end time.Time) {
	e.EnsureCurrentWeek()
	e.wake, e.sleep = start, end

	if !start.Before(end) {
		e.slots = nil
		e.reschedule()
		e.notify()
		return
	}

	completed := make(map[int64]model.WaterSlot)
	for _, s := range e.slots {
		if s.Completed {
			completed[s.At.UnixNano()] = s
		}
	}

	var slots []model.WaterSlot
	open := 0
	for t := start; t.Before(end); t = t.Add(time.Hour) {
		if s, ok := completed[t.UnixNano()]; ok {
			slots = append(slots, s)
			continue
		}
		slots = append(slots, model.WaterSlot{At: t})
		open++
	}

	e.slots = slots
	share := 0.0
	if open > 0 {
		share = e.RemainingLiters() / float64(open)
	}
	for i := range e.slots {
		if !e.slots[i].Completed {
			e.slots[i].Liters = share
		}
	}

	e.log.Info("water schedule generated",
		zap.Int("slots", len(e.slots)), zap.Int("open", open), zap.Float64("share_liters", share))
	e.reschedule()
	e.notify()
}

// ToggleSlot flips the completion of slot index and moves its amount in or
// out of today's total. Indexes outside the schedule are ignored.
func (e *Engine) ToggleSlot(index int) {
	if index < 0 || index >= len(e.slots) {
		return
	}
	e.EnsureCurrentWeek()

	slot := &e.slots[index]
	slot.Completed = !slot.Completed
	ml := int(math.Round(slot.Liters * 1000))
	day := weekkey.DayIndex(e.now())
	if slot.Completed {
		e.week.Totals[day] += ml
	} else {
		e.week.Totals[day] = max(0, e.week.Totals[day]-ml)
	}
	e.saveWeek()
	e.publish()

	e.RebalanceRemaining()
}

// RebalanceRemaining spreads what is left of the target evenly over the
// uncompleted slots, overwriting their amounts.
func (e *Engine) RebalanceRemaining() {
	e.EnsureCurrentWeek()

	open := e.openSlots()
	if open > 0 {
		share := e.RemainingLiters() / float64(open)
		for i := range e.slots {
			if !e.slots[i].Completed {
				e.slots[i].Liters = share
			}
		}
	}
	e.reschedule()
	e.notify()
}

// ApplyExtraLitersEvenly adds extra liters on top of the uncompleted slots.
func (e *Engine) ApplyExtraLitersEvenly(extra float64) {
	if !(extra > 0) {
		return
	}
	e.EnsureCurrentWeek()

	open := e.openSlots()
	if open == 0 {
		return
	}
	add := extra / float64(open)
	for i := range e.slots {
		if !e.slots[i].Completed {
			e.slots[i].Liters += add
		}
	}
	e.log.Info("extra water applied", zap.Float64("extra_liters", extra), zap.Int("slots", open))
	e.reschedule()
	e.notify()
}

// ReplaceWeek overwrites the current week's totals with values from another
// source. Anything but seven entries zeroes the week.
func (e *Engine) ReplaceWeek(totals []int) {
	e.EnsureCurrentWeek()
	e.week.Totals = model.WeeklyTotals{}
	if len(totals) == model.DaysPerWeek {
		for i, ml := range totals {
			e.week.Totals[i] = max(0, ml)
		}
	}
	e.saveWeek()
	e.notify()
}

// ClearWeek zeroes the current week's totals.
func (e *Engine) ClearWeek() {
	e.ReplaceWeek(nil)
}

func (e *Engine) openSlots() int {
	n := 0
	for _, s := range e.slots {
		if !s.Completed {
			n++
		}
	}
	return n
}

// ConsumedLiters is the sum over completed slots.
func (e *Engine) ConsumedLiters() float64 {
	sum := 0.0
	for _, s := range e.slots {
		if s.Completed {
			sum += s.Liters
		}
	}
	return sum
}

// RemainingLiters is what is left of the target, never negative.
func (e *Engine) RemainingLiters() float64 {
	return math.Max(0, e.target-e.ConsumedLiters())
}

// Progress is consumed/target clamped to [0, 1].
func (e *Engine) Progress() float64 {
	if e.target <= 0 {
		return 0
	}
	return math.Min(1, math.Max(0, e.ConsumedLiters()/e.target))
}

// Target returns the daily target in liters.
func (e *Engine) Target() float64 { return e.target }

// Slots returns a copy of the current schedule.
func (e *Engine) Slots() []model.WaterSlot {
	return append([]model.WaterSlot(nil), e.slots...)
}

// Week returns the tracked week. It is not re-derived on read.
func (e *Engine) Week() model.WeekState { return e.week }

// Window returns the bounds of the last generated schedule.
func (e *Engine) Window() (start, end time.Time) { return e.wake, e.sleep }

// Snapshot returns a copy of the observable state.
func (e *Engine) Snapshot() Snapshot {
	return Snapshot{
		Target:    e.target,
		Wake:      e.wake,
		Sleep:     e.sleep,
		Slots:     e.Slots(),
		Consumed:  e.ConsumedLiters(),
		Remaining: e.RemainingLiters(),
		Progress:  e.Progress(),
		Week:      e.week,
		TodayML:   e.week.Totals[weekkey.DayIndex(e.now())],
	}
}

// Subscribe registers fn to receive a snapshot after every change.
func (e *Engine) Subscribe(fn func(Snapshot)) {
	e.observers = append(e.observers, fn)
}

func (e *Engine) notify() {
	if len(e.observers) == 0 {
		return
	}
	snap := e.Snapshot()
	for _, fn := range e.observers {
		fn(snap)
	}
}

// reschedule replaces today's pending reminders with one per open slot that
// is still ahead of now.
func (e *Engine) reschedule() {
	if e.reminders == nil {
		return
	}
	now := e.now()
	e.reminders.CancelPrefix(reminderKind + weekkey.ISODate(now))

	for _, s := range e.slots {
		if s.Completed || s.At.Before(now) || !weekkey.SameDay(now, s.At) {
			continue
		}
		e.reminders.Schedule(model.Reminder{
			ID:    ReminderID(s.At),
			At:    s.At,
			Title: reminderTitle,
			Body:  fmt.Sprintf("Time to drink %d mL of water.", int(math.Round(s.Liters*1000))),
		})
	}
}

// ReminderID is the notification id of the slot at t.
func ReminderID(t time.Time) string {
	return reminderKind + t.Format("2006-01-02.1504")
}
