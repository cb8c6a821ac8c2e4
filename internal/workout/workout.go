// Package workout turns a workout into extra hydration for the day.
package workout

import (
	"fmt"
	"math"
	"strings"
)

const (
	// BaseTarget is the daily target a suggestion starts from.
	BaseTarget = 3.0
	// TargetCap bounds how far a workout can raise the daily target.
	TargetCap = 3.9
	// MaxHours is the longest workout accepted.
	MaxHours = 12.0
)

// Sport is an activity and its sweat-loss estimate.
type Sport struct {
	Name          string
	LitersPerHour float64
}

// Sports is the supported catalogue.
var Sports = []Sport{
	{"Running", 0.8},
	{"Cycling", 0.7},
	{"Soccer", 0.8},
	{"Basketball", 0.8},
	{"Swimming", 1.0},
	{"Tennis", 0.7},
	{"Football", 0.9},
	{"Hiking", 0.6},
	{"CrossFit", 0.9},
	{"Yoga", 0.4},
	{"Pilates", 0.4},
	{"Rowing", 0.9},
	{"Boxing", 0.9},
	{"Dance", 0.6},
	{"Skiing", 0.7},
}

// Lookup finds a sport by case-insensitive name.
func Lookup(name string) (Sport, error) {
	for _, s := range Sports {
		if strings.EqualFold(s.Name, name) {
			return s, nil
		}
	}
	return Sport{}, fmt.Errorf("unknown sport %q", name)
}

// Recommended is the extra water for hours of sport.
func Recommended(s Sport, hours float64) float64 {
	return math.Max(0, s.LitersPerHour*clampHours(hours))
}

// SuggestedTarget is the daily target a workout suggests, within
// [BaseTarget, TargetCap].
func SuggestedTarget(s Sport, hours float64) float64 {
	return math.Min(TargetCap, math.Max(BaseTarget, BaseTarget+Recommended(s, hours)))
}

func clampHours(h float64) float64 {
	if math.IsNaN(h) {
		return 0
	}
	return math.Min(MaxHours, math.Max(0, h))
}

// Engine is the part of the water engine a workout adjusts.
type Engine interface {
	Target() float64
	SetTarget(liters float64)
	ApplyExtraLitersEvenly(extra float64)
}

// Apply raises e's target by the workout's extra water, without going past
// TargetCap or the engine's own maximum, and spreads the increase over the
// open slots. It returns the liters actually added.
func Apply(e Engine, s Sport, hours float64) float64 {
	before := e.Target()
	extra := math.Min(Recommended(s, hours), math.Max(0, TargetCap-before))
	if extra <= 0 {
		return 0
	}
	e.SetTarget(before + extra)
	// SetTarget may clamp lower than TargetCap.
	extra = e.Target() - before
	if extra <= 0 {
		return 0
	}
	e.ApplyExtraLitersEvenly(extra)
	return extra
}
