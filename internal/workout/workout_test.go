package workout

import (
	"math"
	"testing"
	"time"

	"HabitSentinel/internal/reminder"
	"HabitSentinel/internal/store"
	"HabitSentinel/internal/water"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeEngine struct {
	target  float64
	max     float64
	applied []float64
}

func (f *fakeEngine) Target() float64 { return f.target }

func (f *fakeEngine) SetTarget(l float64) {
	if f.max > 0 {
		l = math.Min(f.max, l)
	}
	f.target = l
}

func (f *fakeEngine) ApplyExtraLitersEvenly(x float64) { f.applied = append(f.applied, x) }

func TestLookup(t *testing.T) {
	s, err := Lookup("swimming")
	require.NoError(t, err)
	assert.Equal(t, 1.0, s.LitersPerHour)

	_, err = Lookup("curling")
	assert.Error(t, err)
}

func TestRecommendedAndSuggested(t *testing.T) {
	running, _ := Lookup("Running")
	tests := []struct {
		hours, recommended, suggested float64
	}{
		{0, 0, 3.0},
		{0.5, 0.4, 3.4},
		{1, 0.8, 3.8},
		{2, 1.6, 3.9},
		{-1, 0, 3.0},
		{20, 9.6, 3.9},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.recommended, Recommended(running, tt.hours), 1e-9, "hours %.1f", tt.hours)
		assert.InDelta(t, tt.suggested, SuggestedTarget(running, tt.hours), 1e-9, "hours %.1f", tt.hours)
	}
}

func TestApply_CapsAtTargetCap(t *testing.T) {
	e := &fakeEngine{target: 3.0}
	running, _ := Lookup("Running")

	added := Apply(e, running, 2)

	assert.InDelta(t, 0.9, added, 1e-9)
	assert.InDelta(t, 3.9, e.target, 1e-9)
	require.Len(t, e.applied, 1)
	assert.InDelta(t, 0.9, e.applied[0], 1e-9)
}

func TestApply_NothingAvailable(t *testing.T) {
	e := &fakeEngine{target: 3.9}
	yoga, _ := Lookup("Yoga")

	assert.Zero(t, Apply(e, yoga, 1))
	assert.Empty(t, e.applied)
	assert.Equal(t, 3.9, e.target)
}

func TestApply_RespectsEngineMaximum(t *testing.T) {
	e := &fakeEngine{target: 3.4, max: 3.5}
	swimming, _ := Lookup("Swimming")

	added := Apply(e, swimming, 2)

	assert.InDelta(t, 0.1, added, 1e-9)
	assert.Equal(t, 3.5, e.target)
	require.Len(t, e.applied, 1)
	assert.InDelta(t, 0.1, e.applied[0], 1e-9)
}

func TestApply_EngineAtMaximumAddsNothing(t *testing.T) {
	e := &fakeEngine{target: 3.5, max: 3.5}
	running, _ := Lookup("Running")

	assert.Zero(t, Apply(e, running, 1))
	assert.Empty(t, e.applied)
}

func TestApply_PlanStaysWithinLowMaximum(t *testing.T) {
	day := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)
	now := func() time.Time { return day.Add(8 * time.Hour) }
	e := water.NewEngine(water.Options{
		Store:     store.NewMemoryStore(),
		Reminders: reminder.NewCenter(nil, now, zap.NewNop()),
		Now:       now,
		Log:       zap.NewNop(),
		MaxTarget: 3.5,
	})
	e.SetTarget(3.4)
	e.GenerateSchedule(day.Add(9*time.Hour), day.Add(13*time.Hour))
	require.Len(t, e.Slots(), 4)

	swimming, _ := Lookup("Swimming")
	added := Apply(e, swimming, 2)

	planned := 0.0
	for _, s := range e.Slots() {
		planned += s.Liters
	}
	assert.InDelta(t, 0.1, added, 1e-9)
	assert.InDelta(t, 3.5, e.Target(), 1e-9)
	assert.InDelta(t, e.Target(), planned, 1e-9)
}
