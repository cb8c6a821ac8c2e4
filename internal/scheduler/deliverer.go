package scheduler

import (
	"context"
	"time"

	"HabitSentinel/internal/model"
	"HabitSentinel/internal/recorder"
	"HabitSentinel/internal/reminder"

	"go.uber.org/zap"
)

// RecordingDeliverer logs every successfully delivered reminder.
type RecordingDeliverer struct {
	Next     reminder.Deliverer
	Recorder recorder.Recorder
	Now      func() time.Time
	Log      *zap.Logger
}

func (d *RecordingDeliverer) DeliverReminder(ctx context.Context, r model.Reminder) error {
	if err := d.Next.DeliverReminder(ctx, r); err != nil {
		return err
	}
	now := time.Now
	if d.Now != nil {
		now = d.Now
	}
	if err := d.Recorder.RecordReminder(&recorder.ReminderEvent{
		ID:          r.ID,
		ScheduledAt: r.At,
		DeliveredAt: now(),
		Title:       r.Title,
	}); err != nil {
		d.Log.Error("record reminder", zap.String("id", r.ID), zap.Error(err))
	}
	return nil
}
