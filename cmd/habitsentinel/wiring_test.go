package main

import (
	"path/filepath"
	"testing"
	"time"

	"HabitSentinel/internal/config"
	"HabitSentinel/internal/recorder"
	"HabitSentinel/internal/reminder"
	"HabitSentinel/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	dir := t.TempDir()
	cfg.Storage.StateFile = filepath.Join(dir, "state", "habit.json")
	cfg.Storage.SQLitePath = filepath.Join(dir, "state", "habit.db")
	cfg.Database.HistoryPath = filepath.Join(dir, "history", "habit_history.db")
	return cfg
}

func TestOpenStore_Drivers(t *testing.T) {
	for _, driver := range []string{"memory", "file", "sqlite"} {
		t.Run(driver, func(t *testing.T) {
			cfg := testConfig(t)
			cfg.Storage.Driver = driver
			st, err := openStore(cfg, zap.NewNop())
			require.NoError(t, err)
			defer st.Close()
			require.NoError(t, st.Set("k", []byte(`1`)))
		})
	}
}

func TestOpenRecorder(t *testing.T) {
	cfg := testConfig(t)
	rec := openRecorder(cfg, zap.NewNop())
	defer rec.Close()
	_, ok := rec.(*recorder.SQLiteRecorder)
	assert.True(t, ok)

	cfg.Database.HistoryPath = ""
	_, ok = openRecorder(cfg, zap.NewNop()).(*recorder.NoopRecorder)
	assert.True(t, ok)
}

func TestNewTrackers_UsesConfiguredDefaults(t *testing.T) {
	cfg := testConfig(t)
	cfg.Water.TargetLiters = 3.5
	cfg.Sleep.TargetHours = 9
	cfg.Sleep.WakeUpTime = "06:15"
	now := func() time.Time { return time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC) }

	tr, err := newTrackers(cfg, trackerDeps{
		Store:     store.NewMemoryStore(),
		Reminders: reminder.NewCenter(nil, now, zap.NewNop()),
		Now:       now,
		Log:       zap.NewNop(),
	})
	require.NoError(t, err)
	assert.Equal(t, 3.5, tr.Water.Target())
	assert.Equal(t, 9.0, tr.Sleep.Target())
	assert.Equal(t, time.Date(2026, 10, 15, 6, 15, 0, 0, time.UTC), tr.Sleep.WakeUpTime())
}

func TestPlain(t *testing.T) {
	assert.Equal(t, "Week & <x>", plain("<b>Week</b> &amp; &lt;x&gt;"))
}
