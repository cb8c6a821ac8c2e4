package model

import "time"

// DaysPerWeek is the fixed length of every weekly array, Monday first.
const DaysPerWeek = 7

// WaterSlot is one hourly hydration slot. Slots are identified by At.
type WaterSlot struct {
	At        time.Time `json:"at"`
	Liters    float64   `json:"liters"`
	Completed bool      `json:"completed"`
}

// WeeklyTotals holds completed milliliters per day, Monday=0 .. Sunday=6.
type WeeklyTotals [DaysPerWeek]int

// WeekState is the water week currently being tracked.
type WeekState struct {
	WeekStart time.Time    `json:"week_start"`
	Totals    WeeklyTotals `json:"totals"`
}
