package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"HabitSentinel/internal/config"
	"HabitSentinel/internal/model"
	"HabitSentinel/internal/notifier"
	"HabitSentinel/internal/weekkey"
	"HabitSentinel/internal/workout"

	"go.uber.org/zap"
)

// HandleCommand processes a user command and returns a reply. Every command
// that touches the trackers runs on the app loop.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return notifier.FormatHelp()
	}
	name, args := strings.ToLower(fields[0]), fields[1:]
	// Strip the @botname suffix Telegram adds in group chats.
	if i := strings.IndexByte(name, '@'); i > 0 {
		name = name[:i]
	}

	switch name {
	case "/sports":
		return notifier.FormatSports()
	case "/history":
		return s.history(args)
	case "/signin":
		if len(args) != 1 {
			return "Usage: /signin UID"
		}
	case "/help", "/start":
		return notifier.FormatHelp()
	}

	var reply string
	err := s.App.Loop.Do(ctx, func() {
		s.App.Water.EnsureCurrentWeek()
		s.App.Sleep.EnsureCurrentWeek()
		reply = s.onLoop(name, args)
	})
	if err != nil {
		s.log.Error("handle command", zap.String("command", name), zap.Error(err))
		return "❌ Command failed, try again later."
	}
	return reply
}

func (s *Scheduler) onLoop(name string, args []string) string {
	w, sl := s.App.Water, s.App.Sleep
	switch name {
	case "/status":
		return notifier.FormatStatus(w.Snapshot()) + "\n" + notifier.FormatSleep(sl.Snapshot())

	case "/week":
		return notifier.FormatWeek(w.Snapshot(), sl.Snapshot())

	case "/schedule":
		wake, bed := s.waterWake, s.waterSleep
		if len(args) == 2 {
			var err1, err2 error
			wake, err1 = config.ParseClock(args[0])
			bed, err2 = config.ParseClock(args[1])
			if err1 != nil || err2 != nil {
				return "Usage: /schedule HH:MM HH:MM"
			}
		} else if len(args) != 0 {
			return "Usage: /schedule HH:MM HH:MM"
		}
		now := s.now()
		w.GenerateSchedule(weekkey.AtClock(now, wake), weekkey.AtClock(now, bed))
		return notifier.FormatStatus(w.Snapshot())

	case "/done":
		n, err := intArg(args)
		if err != nil || n < 1 || n > len(w.Slots()) {
			return fmt.Sprintf("Usage: /done N (1-%d)", len(w.Slots()))
		}
		w.ToggleSlot(n - 1)
		return notifier.FormatStatus(w.Snapshot())

	case "/target":
		l, err := floatArg(args)
		if err != nil {
			return "Usage: /target LITERS"
		}
		w.SetTarget(l)
		w.RebalanceRemaining()
		return fmt.Sprintf("🎯 Daily water target: %.2f L", w.Target())

	case "/workout":
		if len(args) != 2 {
			return "Usage: /workout SPORT HOURS"
		}
		sport, err := workout.Lookup(args[0])
		if err != nil {
			return fmt.Sprintf("Unknown sport %q, see /sports", args[0])
		}
		hours, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return "Usage: /workout SPORT HOURS"
		}
		extra := workout.Apply(w, sport, hours)
		if extra <= 0 {
			return fmt.Sprintf("Target already at %.2f L, nothing added.", w.Target())
		}
		return fmt.Sprintf("🏃 %s: +%.2f L, target now %.2f L", sport.Name, extra, w.Target())

	case "/sleep":
		h, err := floatArg(args)
		if err != nil {
			return "Usage: /sleep HOURS"
		}
		sl.UpdateTodaySleep(h)
		return notifier.FormatSleep(sl.Snapshot())

	case "/sleeptarget":
		h, err := floatArg(args)
		if err != nil {
			return "Usage: /sleeptarget HOURS"
		}
		sl.SetTarget(h)
		return notifier.FormatSleep(sl.Snapshot())

	case "/wake":
		if len(args) != 1 {
			return "Usage: /wake HH:MM"
		}
		clock, err := config.ParseClock(args[0])
		if err != nil {
			return "Usage: /wake HH:MM"
		}
		sl.SetWakeUpTime(nextOccurrence(s.now(), clock))
		s.scheduleBedtime()
		return notifier.FormatSleep(sl.Snapshot())

	case "/bedtime":
		if !s.scheduleBedtime() {
			return fmt.Sprintf("🛏 Bedtime %s has already passed.", sl.BedTime().Format("Mon 15:04"))
		}
		return fmt.Sprintf("🛏 Bedtime reminder set for %s", sl.BedTime().Format("Mon 15:04"))

	case "/signin":
		s.App.SignIn(s.Ctx, args[0])
		return fmt.Sprintf("🔗 Signed in as %s, loading this week…", args[0])

	case "/signout":
		s.App.SignOut()
		return "👋 Signed out, this week's data was cleared."

	default:
		return notifier.FormatHelp()
	}
}

func (s *Scheduler) history(args []string) string {
	kind := model.ArchiveWater
	if len(args) > 0 && strings.EqualFold(args[0], "sleep") {
		kind = model.ArchiveSleep
	}
	weeks, err := s.Recorder.RecentWeeks(kind, 8)
	if err != nil {
		s.log.Error("load history", zap.Error(err))
		return "❌ History unavailable."
	}
	return notifier.FormatHistory(kind, weeks)
}

func intArg(args []string) (int, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("want one argument")
	}
	return strconv.Atoi(args[0])
}

func floatArg(args []string) (float64, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("want one argument")
	}
	return strconv.ParseFloat(args[0], 64)
}
