package reminder

import (
	"context"
	"errors"
	"testing"
	"time"

	"HabitSentinel/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeDeliverer struct {
	got  []model.Reminder
	fail map[string]bool
}

func (f *fakeDeliverer) DeliverReminder(_ context.Context, r model.Reminder) error {
	if f.fail[r.ID] {
		return errors.New("boom")
	}
	f.got = append(f.got, r)
	return nil
}

func TestCenter_ScheduleReplacesSameID(t *testing.T) {
	c := NewCenter(nil, nil, zap.NewNop())
	at := time.Date(2026, 10, 15, 10, 0, 0, 0, time.UTC)

	c.Schedule(model.Reminder{ID: "water.2026-10-15.1000", At: at, Body: "first"})
	c.Schedule(model.Reminder{ID: "water.2026-10-15.1000", At: at, Body: "second"})

	pending := c.Pending()
	require.Len(t, pending, 1)
	assert.Equal(t, "second", pending[0].Body)
}

func TestCenter_CancelPrefix(t *testing.T) {
	c := NewCenter(nil, nil, zap.NewNop())
	at := time.Date(2026, 10, 15, 10, 0, 0, 0, time.UTC)
	c.Schedule(model.Reminder{ID: "water.2026-10-15.1000", At: at})
	c.Schedule(model.Reminder{ID: "water.2026-10-15.1100", At: at.Add(time.Hour)})
	c.Schedule(model.Reminder{ID: "water.2026-10-16.1000", At: at.Add(24 * time.Hour)})
	c.Schedule(model.Reminder{ID: "sleep.2026-10-15.bed", At: at.Add(12 * time.Hour)})

	assert.Equal(t, 2, c.CancelPrefix("water.2026-10-15"))

	var ids []string
	for _, r := range c.Pending() {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"sleep.2026-10-15.bed", "water.2026-10-16.1000"}, ids)
}

func TestCenter_DeliverDue(t *testing.T) {
	now := time.Date(2026, 10, 15, 11, 0, 0, 0, time.UTC)
	d := &fakeDeliverer{fail: map[string]bool{"water.2026-10-15.0900": true}}
	c := NewCenter(d, func() time.Time { return now }, zap.NewNop())

	c.Schedule(model.Reminder{ID: "water.2026-10-15.0900", At: now.Add(-2 * time.Hour)})
	c.Schedule(model.Reminder{ID: "water.2026-10-15.1000", At: now.Add(-time.Hour)})
	c.Schedule(model.Reminder{ID: "water.2026-10-15.1100", At: now})
	c.Schedule(model.Reminder{ID: "water.2026-10-15.1200", At: now.Add(time.Hour)})

	assert.Equal(t, 2, c.DeliverDue(context.Background()))
	require.Len(t, d.got, 2)
	assert.Equal(t, "water.2026-10-15.1000", d.got[0].ID)
	assert.Equal(t, "water.2026-10-15.1100", d.got[1].ID)

	pending := c.Pending()
	require.Len(t, pending, 1)
	assert.Equal(t, "water.2026-10-15.1200", pending[0].ID)
}
