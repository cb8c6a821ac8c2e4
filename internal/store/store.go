// Package store is the local key/value persistence used by the trackers to
// survive process restarts.
package store

import (
	"encoding/json"
	"fmt"
)

// Persistence keys.
const (
	KeyWaterWeekStart  = "water.week.start"
	KeyWaterWeekTotals = "water.week.totals"
	KeyWaterTarget     = "water.target"
	KeySleepWeekStart  = "sleep.week.start"
	KeySleepWeekHours  = "sleep.week.hours"
	KeySleepTarget     = "sleep.target"
	KeySleepWakeUp     = "sleep.wake"
)

// Store durably persists small values. Reads and writes are synchronous.
type Store interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte) error
	Delete(key string) error
	Close() error
}

// GetJSON decodes the value under key into v. It reports false when the key
// is absent or the stored value does not decode into v.
func GetJSON(s Store, key string, v any) bool {
	data, ok := s.Get(key)
	if !ok {
		return false
	}
	return json.Unmarshal(data, v) == nil
}

// SetJSON encodes v and stores it under key.
func SetJSON(s Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.Set(key, data); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}
