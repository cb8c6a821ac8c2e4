package model

import "time"

// WeeklyHours holds logged sleep hours per day, Monday=0 .. Sunday=6.
type WeeklyHours [DaysPerWeek]float64

// SleepWeekState is the sleep week currently being tracked.
type SleepWeekState struct {
	WeekStart time.Time   `json:"week_start"`
	Hours     WeeklyHours `json:"hours"`
}

// SleepCondition labels a night of sleep by its length.
type SleepCondition string

const (
	SleepPoor      SleepCondition = "Poor"
	SleepAverage   SleepCondition = "Average"
	SleepGood      SleepCondition = "Good"
	SleepExcellent SleepCondition = "Excellent"
)
