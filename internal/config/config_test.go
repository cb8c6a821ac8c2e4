package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 3.0, cfg.Water.TargetLiters)
	assert.Equal(t, 2.7, cfg.Water.MinTarget)
	assert.Equal(t, 4.0, cfg.Water.MaxTarget)
	assert.Equal(t, "09:00", cfg.Water.WakeTime)
	assert.Equal(t, "21:00", cfg.Water.SleepTime)
	assert.Equal(t, 8.0, cfg.Sleep.TargetHours)
	assert.Equal(t, "0 0 0 * * 1", cfg.Schedule.RolloverCron)
	assert.Equal(t, "file", cfg.Storage.Driver)
	assert.Equal(t, 10*time.Second, cfg.Remote.Timeout)
	assert.NoError(t, cfg.ValidateTracking())
}

func TestLoad_YAMLAndEnv(t *testing.T) {
	path := writeConfig(t, `
telegram:
  bot_token: from-file
  chat_id: "42"
water:
  target_liters: 3.5
  wake_time: "08:30"
storage:
  driver: sqlite
remote:
  timeout: 3s
`)
	t.Setenv("TELEGRAM_BOT_TOKEN", "from-env")
	t.Setenv("SYNC_USER_ID", "user-1")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Telegram.BotToken)
	assert.Equal(t, "42", cfg.Telegram.ChatID)
	assert.Equal(t, 3.5, cfg.Water.TargetLiters)
	assert.Equal(t, "08:30", cfg.Water.WakeTime)
	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.Equal(t, "user-1", cfg.Remote.UserID)
	assert.Equal(t, 3*time.Second, cfg.Remote.Timeout)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_BadYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "water: [oops"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	cfg.Telegram.BotToken = ""
	cfg.Telegram.ChatID = ""
	assert.ErrorContains(t, cfg.Validate(), "telegram.bot_token")

	cfg.Telegram.BotToken = "t"
	assert.ErrorContains(t, cfg.Validate(), "telegram.chat_id")

	cfg.Telegram.ChatID = "1"
	cfg.Water.SleepTime = "9pm"
	assert.ErrorContains(t, cfg.Validate(), "water.sleep_time")

	cfg.Water.SleepTime = "21:00"
	cfg.Storage.Driver = "postgres"
	assert.ErrorContains(t, cfg.Validate(), "storage.driver")

	cfg.Storage.Driver = "memory"
	cfg.Timezone = "Mars/Olympus"
	assert.ErrorContains(t, cfg.Validate(), "timezone")
}

func TestParseClock(t *testing.T) {
	c, err := ParseClock("06:45")
	require.NoError(t, err)
	assert.Equal(t, 6, c.Hour())
	assert.Equal(t, 45, c.Minute())

	_, err = ParseClock("25:00")
	assert.Error(t, err)
}
