package recorder

import (
	"time"

	"HabitSentinel/internal/model"
)

// ReminderEvent records a reminder that was pushed to the user.
type ReminderEvent struct {
	ID          string
	ScheduledAt time.Time
	DeliveredAt time.Time
	Title       string
}

// Recorder persists historical data for later review.
type Recorder interface {
	ArchiveWeek(a model.WeekArchive) error
	RecordReminder(evt *ReminderEvent) error
	RecentWeeks(kind model.ArchiveKind, limit int) ([]model.WeekArchive, error)
	Close() error
}
