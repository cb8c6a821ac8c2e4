// Package app ties the trackers to the signed-in session: remote week data
// is applied on sign-in and local week data is cleared on sign-out.
package app

import (
	"context"
	"sync"
	"time"

	"HabitSentinel/internal/cloudsync"
	"HabitSentinel/internal/loop"
	"HabitSentinel/internal/model"
	"HabitSentinel/internal/sleep"
	"HabitSentinel/internal/water"
	"HabitSentinel/internal/weekkey"

	"go.uber.org/zap"
)

// Fetcher reads the remote document of the week containing at.
type Fetcher interface {
	Fetch(ctx context.Context, uid string, at time.Time) (*model.WeekDocument, error)
}

// App owns the trackers. Water, Sleep, SignIn and SignOut must only be used
// from inside Loop.
type App struct {
	Loop    *loop.Loop
	Water   *water.Engine
	Sleep   *sleep.Tracker
	Session *cloudsync.Session

	fetcher Fetcher
	now     func() time.Time
	log     *zap.Logger
	pending sync.WaitGroup
}

// Options wires an App. Fetcher may be nil when no remote is configured.
type Options struct {
	Loop    *loop.Loop
	Water   *water.Engine
	Sleep   *sleep.Tracker
	Session *cloudsync.Session
	Fetcher Fetcher
	Now     func() time.Time
	Log     *zap.Logger
}

func New(opts Options) *App {
	a := &App{
		Loop:    opts.Loop,
		Water:   opts.Water,
		Sleep:   opts.Sleep,
		Session: opts.Session,
		fetcher: opts.Fetcher,
		now:     opts.Now,
		log:     opts.Log,
	}
	if a.now == nil {
		a.now = time.Now
	}
	return a
}

// SignIn activates uid and fetches its current week in the background. The
// result is applied on the loop, and only if uid is still the active
// identity by then.
func (a *App) SignIn(ctx context.Context, uid string) {
	gen := a.Session.SignIn(uid)
	a.log.Info("signed in", zap.String("uid", uid), zap.Uint64("generation", gen))
	if a.fetcher == nil {
		return
	}

	at := a.now()
	week := weekkey.ISODate(weekkey.MondayStart(at))
	a.pending.Add(1)
	go func() {
		defer a.pending.Done()
		doc, err := a.fetcher.Fetch(ctx, uid, at)
		if err != nil {
			a.log.Error("fetch remote week", zap.String("uid", uid), zap.Error(err))
			return
		}
		if err := a.Loop.Post(func() { a.applyRemote(gen, week, doc) }); err != nil {
			a.log.Warn("drop remote week, loop stopped", zap.String("uid", uid))
		}
	}()
}

// applyRemote replaces the local week with doc, the remote copy of week. A
// result that arrives after the week rolled over is dropped.
func (a *App) applyRemote(gen uint64, week string, doc *model.WeekDocument) {
	if !a.Session.Valid(gen) {
		a.log.Info("discard stale remote week", zap.Uint64("generation", gen))
		return
	}
	a.Water.EnsureCurrentWeek()
	a.Sleep.EnsureCurrentWeek()
	current := weekkey.ISODate(a.Water.Week().WeekStart)
	if week != current || (doc != nil && doc.WeekStart != "" && doc.WeekStart != current) {
		a.log.Info("discard remote week from before rollover",
			zap.String("week", week), zap.String("current", current))
		return
	}
	if doc == nil {
		doc = &model.WeekDocument{}
	}
	a.Water.ReplaceWeek(doc.WaterTotalsML)
	a.Sleep.ReplaceWeek(doc.SleepHours)
	a.log.Info("remote week applied", zap.String("week", doc.WeekStart))
}

// SignOut clears the identity and both trackers' weeks.
func (a *App) SignOut() {
	a.Session.SignOut()
	a.Water.ClearWeek()
	a.Sleep.ClearWeek()
	a.log.Info("signed out, local week cleared")
}

// Wait blocks until background fetches have handed their results to the loop.
func (a *App) Wait() {
	a.pending.Wait()
}
