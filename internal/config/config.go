package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
		APIBase  string `yaml:"api_base"`
	} `yaml:"telegram"`
	Water struct {
		TargetLiters float64 `yaml:"target_liters"`
		MinTarget    float64 `yaml:"min_target"`
		MaxTarget    float64 `yaml:"max_target"`
		WakeTime     string  `yaml:"wake_time"`
		SleepTime    string  `yaml:"sleep_time"`
	} `yaml:"water"`
	Sleep struct {
		TargetHours float64 `yaml:"target_hours"`
		WakeUpTime  string  `yaml:"wake_up_time"`
	} `yaml:"sleep"`
	Schedule struct {
		ReminderCron      string `yaml:"reminder_cron"`
		RolloverCron      string `yaml:"rollover_cron"`
		DailyScheduleCron string `yaml:"daily_schedule_cron"`
	} `yaml:"schedule"`
	Storage struct {
		Driver     string `yaml:"driver"`
		StateFile  string `yaml:"state_file"`
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"storage"`
	Database struct {
		HistoryPath string `yaml:"history_path"`
	} `yaml:"database"`
	Remote struct {
		RedisURL string        `yaml:"redis_url"`
		UserID   string        `yaml:"user_id"`
		Timeout  time.Duration `yaml:"timeout"`
	} `yaml:"remote"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Timezone string `yaml:"timezone"`
	Proxy    string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies .env and environment
// variable overrides.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("WATER_TARGET_LITERS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Water.TargetLiters = f
		}
	}
	if v := os.Getenv("SLEEP_TARGET_HOURS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Sleep.TargetHours = f
		}
	}
	if v := os.Getenv("STORAGE_DRIVER"); v != "" {
		cfg.Storage.Driver = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Storage.SQLitePath = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Remote.RedisURL = v
	}
	if v := os.Getenv("SYNC_USER_ID"); v != "" {
		cfg.Remote.UserID = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("TZ"); v != "" && cfg.Timezone == "" {
		cfg.Timezone = v
	}

	// Defaults
	if cfg.Telegram.APIBase == "" {
		cfg.Telegram.APIBase = "https://api.telegram.org"
	}
	if cfg.Water.MinTarget == 0 {
		cfg.Water.MinTarget = 2.7
	}
	if cfg.Water.MaxTarget == 0 {
		cfg.Water.MaxTarget = 4.0
	}
	if cfg.Water.TargetLiters == 0 {
		cfg.Water.TargetLiters = 3.0
	}
	if cfg.Water.WakeTime == "" {
		cfg.Water.WakeTime = "09:00"
	}
	if cfg.Water.SleepTime == "" {
		cfg.Water.SleepTime = "21:00"
	}
	if cfg.Sleep.TargetHours == 0 {
		cfg.Sleep.TargetHours = 8
	}
	if cfg.Sleep.WakeUpTime == "" {
		cfg.Sleep.WakeUpTime = "07:00"
	}
	if cfg.Schedule.ReminderCron == "" {
		cfg.Schedule.ReminderCron = "0 * * * * *"
	}
	if cfg.Schedule.RolloverCron == "" {
		cfg.Schedule.RolloverCron = "0 0 0 * * 1"
	}
	if cfg.Schedule.DailyScheduleCron == "" {
		cfg.Schedule.DailyScheduleCron = "0 0 6 * * *"
	}
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = "file"
	}
	if cfg.Storage.StateFile == "" {
		cfg.Storage.StateFile = "data/habit_state.json"
	}
	if cfg.Storage.SQLitePath == "" {
		cfg.Storage.SQLitePath = "data/habit_state.db"
	}
	if cfg.Database.HistoryPath == "" {
		cfg.Database.HistoryPath = "data/habit_history.db"
	}
	if cfg.Remote.Timeout == 0 {
		cfg.Remote.Timeout = 10 * time.Second
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}

	return cfg, nil
}

// Validate checks that all required fields are set and consistent.
func (c *Config) Validate() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}
	if c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required")
	}
	return c.ValidateTracking()
}

// ValidateTracking checks everything except the Telegram credentials, for
// commands that never talk to the bot API.
func (c *Config) ValidateTracking() error {
	if c.Water.MinTarget <= 0 || c.Water.MinTarget > c.Water.MaxTarget {
		return fmt.Errorf("water.min_target must be positive and not above water.max_target")
	}
	for name, v := range map[string]string{
		"water.wake_time":    c.Water.WakeTime,
		"water.sleep_time":   c.Water.SleepTime,
		"sleep.wake_up_time": c.Sleep.WakeUpTime,
	} {
		if _, err := ParseClock(v); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	switch c.Storage.Driver {
	case "memory", "file", "sqlite":
	default:
		return fmt.Errorf("storage.driver must be one of memory, file, sqlite")
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("timezone: %w", err)
	}
	return nil
}

// Location resolves Timezone, defaulting to the process's local zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

// ParseClock parses an HH:MM clock time. Only the hour and minute of the
// result are meaningful.
func ParseClock(s string) (time.Time, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid clock time %q, want HH:MM", s)
	}
	return t, nil
}
