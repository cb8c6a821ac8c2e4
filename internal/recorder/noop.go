package recorder

import "HabitSentinel/internal/model"

// NoopRecorder is used when no history database is configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) ArchiveWeek(_ model.WeekArchive) error { return nil }
func (n *NoopRecorder) RecordReminder(_ *ReminderEvent) error { return nil }
func (n *NoopRecorder) Close() error                          { return nil }

func (n *NoopRecorder) RecentWeeks(_ model.ArchiveKind, _ int) ([]model.WeekArchive, error) {
	return nil, nil
}
