package model

import "time"

// WeekDocument is the remote per-user, per-week document. Nil slices mean the
// field is absent or could not be decoded.
type WeekDocument struct {
	WeekStart     string    `json:"weekStart"`
	WaterTotalsML []int     `json:"waterTotalsML"`
	SleepHours    []float64 `json:"sleepHours"`
}

// ArchiveKind identifies which tracker produced a WeekArchive.
type ArchiveKind string

const (
	ArchiveWater ArchiveKind = "WATER"
	ArchiveSleep ArchiveKind = "SLEEP"
)

// WeekArchive is a finished week captured just before a rollover reset.
type WeekArchive struct {
	Kind       ArchiveKind
	WeekStart  time.Time
	Values     []float64
	ArchivedAt time.Time
}
