package main

import (
	"fmt"
	"strings"

	"HabitSentinel/internal/logging"
	"HabitSentinel/internal/notifier"
	"HabitSentinel/internal/reminder"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print today's plan and this week's totals from local state",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := cfg.ValidateTracking(); err != nil {
			return fmt.Errorf("config validation: %w", err)
		}
		log, err := logging.NewLogger("error", "console", "habitsentinel")
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		loc, err := cfg.Location()
		if err != nil {
			return fmt.Errorf("timezone: %w", err)
		}
		now := clockIn(loc)

		st, err := openStore(cfg, log)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer st.Close()
		rec := openRecorder(cfg, log)
		defer rec.Close()

		tr, err := newTrackers(cfg, trackerDeps{
			Store:     st,
			Reminders: reminder.NewCenter(nil, now, log),
			Archiver:  rec,
			Now:       now,
			Log:       log,
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, plain(notifier.FormatWeek(tr.Water.Snapshot(), tr.Sleep.Snapshot())))
		fmt.Fprintln(out)
		fmt.Fprintln(out, plain(notifier.FormatSleep(tr.Sleep.Snapshot())))
		return nil
	},
}

var htmlTags = strings.NewReplacer("<b>", "", "</b>", "", "<pre>", "", "</pre>", "", "&lt;", "<", "&gt;", ">", "&amp;", "&")

// plain strips the Telegram HTML markup for terminal output.
func plain(s string) string {
	return htmlTags.Replace(s)
}
