package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"HabitSentinel/internal/cloudsync"
	"HabitSentinel/internal/loop"
	"HabitSentinel/internal/model"
	"HabitSentinel/internal/reminder"
	"HabitSentinel/internal/sleep"
	"HabitSentinel/internal/store"
	"HabitSentinel/internal/water"
	"HabitSentinel/internal/weekkey"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var now = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

type fakeFetcher struct {
	doc     *model.WeekDocument
	err     error
	release chan struct{}
}

func (f *fakeFetcher) Fetch(ctx context.Context, _ string, _ time.Time) (*model.WeekDocument, error) {
	if f.release != nil {
		<-f.release
	}
	return f.doc, f.err
}

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

func newApp(t *testing.T, f Fetcher) *App {
	t.Helper()
	return newAppWithClock(t, f, func() time.Time { return now })
}

func newAppWithClock(t *testing.T, f Fetcher, nowFn func() time.Time) *App {
	t.Helper()
	s := store.NewMemoryStore()
	center := reminder.NewCenter(nil, nowFn, zap.NewNop())
	l := loop.New(16)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go l.Run(ctx)

	return New(Options{
		Loop:    l,
		Water:   water.NewEngine(water.Options{Store: s, Reminders: center, Now: nowFn, Log: zap.NewNop()}),
		Sleep:   sleep.NewTracker(sleep.Options{Store: s, Reminders: center, Now: nowFn, Log: zap.NewNop()}),
		Session: cloudsync.NewSession(),
		Fetcher: f,
		Now:     nowFn,
		Log:     zap.NewNop(),
	})
}

func do(t *testing.T, a *App, fn func()) {
	t.Helper()
	require.NoError(t, a.Loop.Do(context.Background(), fn))
}

func seed(t *testing.T, a *App) {
	do(t, a, func() {
		a.Water.ReplaceWeek([]int{100, 200, 300, 400, 0, 0, 0})
		a.Sleep.ReplaceWeek([]float64{7, 7, 7, 7, 0, 0, 0})
	})
}

func TestSignIn_OverwritesWithRemoteWeek(t *testing.T) {
	a := newApp(t, &fakeFetcher{doc: &model.WeekDocument{
		WeekStart:     "2026-10-12",
		WaterTotalsML: []int{1000, 1500, 0, 0, 0, 0, 0},
		SleepHours:    []float64{8, 6.5, 0, 0, 0, 0, 0},
	}})
	seed(t, a)

	do(t, a, func() { a.SignIn(context.Background(), "u1") })
	a.Wait()
	do(t, a, func() {})

	do(t, a, func() {
		assert.Equal(t, model.WeeklyTotals{1000, 1500, 0, 0, 0, 0, 0}, a.Water.Week().Totals)
		assert.Equal(t, model.WeeklyHours{8, 6.5, 0, 0, 0, 0, 0}, a.Sleep.Week().Hours)
	})
}

func TestSignIn_MissingOrMalformedZeroes(t *testing.T) {
	docs := map[string]*model.WeekDocument{
		"absent":    nil,
		"malformed": {WeekStart: "2026-10-12", WaterTotalsML: []int{1, 2}, SleepHours: []float64{1}},
	}
	for name, doc := range docs {
		t.Run(name, func(t *testing.T) {
			a := newApp(t, &fakeFetcher{doc: doc})
			seed(t, a)

			do(t, a, func() { a.SignIn(context.Background(), "u1") })
			a.Wait()
			do(t, a, func() {})

			do(t, a, func() {
				assert.Equal(t, model.WeeklyTotals{}, a.Water.Week().Totals)
				assert.Equal(t, model.WeeklyHours{}, a.Sleep.Week().Hours)
			})
		})
	}
}

func TestSignIn_FetchErrorKeepsLocalWeek(t *testing.T) {
	a := newApp(t, &fakeFetcher{err: errors.New("offline")})
	seed(t, a)

	do(t, a, func() { a.SignIn(context.Background(), "u1") })
	a.Wait()
	do(t, a, func() {})

	do(t, a, func() {
		assert.Equal(t, model.WeeklyTotals{100, 200, 300, 400, 0, 0, 0}, a.Water.Week().Totals)
	})
}

func TestSignIn_StaleResponseAfterSignOutDiscarded(t *testing.T) {
	f := &fakeFetcher{
		doc:     &model.WeekDocument{WaterTotalsML: []int{9, 9, 9, 9, 9, 9, 9}},
		release: make(chan struct{}),
	}
	a := newApp(t, f)
	seed(t, a)

	do(t, a, func() { a.SignIn(context.Background(), "u1") })
	do(t, a, func() { a.SignOut() })
	close(f.release)
	a.Wait()
	do(t, a, func() {})

	do(t, a, func() {
		assert.Equal(t, model.WeeklyTotals{}, a.Water.Week().Totals)
		assert.Empty(t, a.Session.User())
	})
}

func TestSignOut_ClearsLocalWeek(t *testing.T) {
	a := newApp(t, nil)
	seed(t, a)
	do(t, a, func() { a.SignIn(context.Background(), "u1") })

	do(t, a, func() { a.SignOut() })

	do(t, a, func() {
		assert.Equal(t, model.WeeklyTotals{}, a.Water.Week().Totals)
		assert.Equal(t, model.WeeklyHours{}, a.Sleep.Week().Hours)
	})
}

func TestSignIn_ResultFromBeforeRolloverDiscarded(t *testing.T) {
	c := &clock{t: time.Date(2026, 10, 18, 23, 59, 0, 0, time.UTC)} // Sunday
	f := &fakeFetcher{
		doc: &model.WeekDocument{
			WeekStart:     "2026-10-12",
			WaterTotalsML: []int{9, 9, 9, 9, 9, 9, 9},
			SleepHours:    []float64{7, 7, 7, 7, 7, 7, 7},
		},
		release: make(chan struct{}),
	}
	a := newAppWithClock(t, f, c.Now)

	do(t, a, func() { a.SignIn(context.Background(), "u1") })
	c.Set(time.Date(2026, 10, 19, 0, 1, 0, 0, time.UTC))
	close(f.release)
	a.Wait()
	do(t, a, func() {})

	do(t, a, func() {
		assert.Equal(t, "2026-10-19", weekkey.ISODate(a.Water.Week().WeekStart))
		assert.Equal(t, model.WeeklyTotals{}, a.Water.Week().Totals)
		assert.Equal(t, model.WeeklyHours{}, a.Sleep.Week().Hours)
		assert.Equal(t, "u1", a.Session.User())
	})
}

func TestSignIn_DocumentForOtherWeekDiscarded(t *testing.T) {
	a := newApp(t, &fakeFetcher{doc: &model.WeekDocument{
		WeekStart:     "2026-10-05",
		WaterTotalsML: []int{9, 9, 9, 9, 9, 9, 9},
	}})
	seed(t, a)

	do(t, a, func() { a.SignIn(context.Background(), "u1") })
	a.Wait()
	do(t, a, func() {})

	do(t, a, func() {
		assert.Equal(t, model.WeeklyTotals{100, 200, 300, 400, 0, 0, 0}, a.Water.Week().Totals)
	})
}
