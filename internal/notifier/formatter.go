package notifier

import (
	"fmt"
	"html"
	"strings"

	"HabitSentinel/internal/model"
	"HabitSentinel/internal/sleep"
	"HabitSentinel/internal/water"
	"HabitSentinel/internal/weekkey"
	"HabitSentinel/internal/workout"
)

var dayNames = [model.DaysPerWeek]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// FormatStatus formats today's hydration plan.
func FormatStatus(s water.Snapshot) string {
	var b strings.Builder

	b.WriteString("💧 <b>Hydration</b>\n\n")
	b.WriteString(fmt.Sprintf("Progress: %s %.0f%%\n", progressBar(s.Progress, 10), s.Progress*100))
	b.WriteString(fmt.Sprintf("Target: %.2f L | Consumed: %.2f L | Remaining: %.2f L\n", s.Target, s.Consumed, s.Remaining))
	b.WriteString(fmt.Sprintf("Logged today: %d mL\n\n", s.TodayML))

	if len(s.Slots) == 0 {
		b.WriteString("No slots scheduled. Use /schedule HH:MM HH:MM.\n")
		return b.String()
	}
	b.WriteString(fmt.Sprintf("<b>Slots</b> (%s – %s):\n", s.Wake.Format("15:04"), s.Sleep.Format("15:04")))
	for i, slot := range s.Slots {
		mark := "⬜"
		if slot.Completed {
			mark = "✅"
		}
		b.WriteString(fmt.Sprintf("  %d. %s %s %d mL\n", i+1, slot.At.Format("15:04"), mark, liters2ML(slot.Liters)))
	}
	return b.String()
}

// FormatSleep formats the sleep target, bedtime and last night.
func FormatSleep(s sleep.Snapshot) string {
	var b strings.Builder
	b.WriteString("🌙 <b>Sleep</b>\n\n")
	b.WriteString(fmt.Sprintf("Target: %.2g h | Wake-up: %s\n", s.Target, s.WakeUp.Format("Mon 15:04")))
	b.WriteString(fmt.Sprintf("Bedtime: %s\n", s.BedTime.Format("Mon 15:04")))
	b.WriteString(fmt.Sprintf("Today: %.1f h (%s)\n", s.Today, s.Condition))
	b.WriteString(fmt.Sprintf("Weekly average: %.1f h\n", s.Average))
	return b.String()
}

// FormatWeek formats the week's water totals and sleep hours, Monday first.
func FormatWeek(w water.Snapshot, s sleep.Snapshot) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📅 <b>Week of %s</b>\n\n", weekkey.ISODate(w.Week.WeekStart)))
	b.WriteString("<pre>")
	b.WriteString("Day   Water    Sleep\n")
	totalML := 0
	for i := 0; i < model.DaysPerWeek; i++ {
		ml := w.Week.Totals[i]
		totalML += ml
		h := s.Week.Hours[i]
		sleepCol := "   –"
		if h > 0 {
			sleepCol = fmt.Sprintf("%4.1fh %s", h, sleep.Condition(h))
		}
		b.WriteString(fmt.Sprintf("%s %6d mL %s\n", dayNames[i], ml, sleepCol))
	}
	b.WriteString("</pre>\n")
	b.WriteString(fmt.Sprintf("Water total: %.2f L | Sleep avg: %.1f h", float64(totalML)/1000, s.Average))
	return b.String()
}

// FormatHistory formats archived weeks, newest first.
func FormatHistory(kind model.ArchiveKind, weeks []model.WeekArchive) string {
	if len(weeks) == 0 {
		return "No archived weeks yet."
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🗂 <b>%s history</b>\n\n", strings.ToLower(string(kind))))
	for _, w := range weeks {
		sum := 0.0
		for _, v := range w.Values {
			sum += v
		}
		switch kind {
		case model.ArchiveWater:
			b.WriteString(fmt.Sprintf("%s: %.2f L\n", weekkey.ISODate(w.WeekStart), sum/1000))
		default:
			b.WriteString(fmt.Sprintf("%s: %.1f h\n", weekkey.ISODate(w.WeekStart), sum))
		}
	}
	return b.String()
}

// FormatReminder formats a due reminder.
func FormatReminder(r model.Reminder) string {
	return fmt.Sprintf("⏰ <b>%s</b>\n%s", html.EscapeString(r.Title), html.EscapeString(r.Body))
}

// FormatSports lists the workout catalogue.
func FormatSports() string {
	var b strings.Builder
	b.WriteString("🏃 <b>Sports</b> (extra water per hour)\n\n")
	for _, s := range workout.Sports {
		b.WriteString(fmt.Sprintf("%s: %.1f L/h\n", s.Name, s.LitersPerHour))
	}
	return b.String()
}

// FormatHelp lists the supported commands.
func FormatHelp() string {
	return `<b>HabitSentinel</b>
/status - today's hydration plan
/week - this week's water and sleep
/schedule [HH:MM HH:MM] - rebuild today's slots
/done N - toggle slot N
/target L - set the daily water target
/workout SPORT HOURS - add water for a workout
/sports - list sports
/sleep H - log last night's sleep
/sleeptarget H - set the sleep target
/wake HH:MM - set the wake-up time
/bedtime - show bedtime and schedule its reminder
/history water|sleep - archived weeks
/signin UID - sync with a remote account
/signout - stop syncing and clear the week
/help - this message`
}

func progressBar(p float64, width int) string {
	filled := int(p*float64(width) + 0.5)
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return strings.Repeat("▓", filled) + strings.Repeat("░", width-filled)
}

func liters2ML(l float64) int {
	return int(l*1000 + 0.5)
}
