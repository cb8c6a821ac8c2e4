// Package reminder holds pending local reminders and delivers them once due.
package reminder

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"HabitSentinel/internal/model"

	"go.uber.org/zap"
)

// Scheduler accepts reminders at absolute timestamps and cancels pending
// ones by id prefix.
type Scheduler interface {
	Schedule(r model.Reminder)
	CancelPrefix(prefix string) int
}

// Deliverer pushes a due reminder to the user.
type Deliverer interface {
	DeliverReminder(ctx context.Context, r model.Reminder) error
}

// Center is an in-process reminder queue. It is safe for concurrent use.
type Center struct {
	mu      sync.Mutex
	pending map[string]model.Reminder
	deliver Deliverer
	now     func() time.Time
	log     *zap.Logger
}

// NewCenter creates a Center. A nil now uses time.Now.
func NewCenter(deliver Deliverer, now func() time.Time, log *zap.Logger) *Center {
	if now == nil {
		now = time.Now
	}
	return &Center{
		pending: make(map[string]model.Reminder),
		deliver: deliver,
		now:     now,
		log:     log,
	}
}

// Schedule registers r, replacing any pending reminder with the same id.
func (c *Center) Schedule(r model.Reminder) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending[r.ID] = r
	c.log.Debug("reminder scheduled", zap.String("id", r.ID), zap.Time("at", r.At))
}

// CancelPrefix drops every pending reminder whose id starts with prefix and
// returns how many were removed.
func (c *Center) CancelPrefix(prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for id := range c.pending {
		if strings.HasPrefix(id, prefix) {
			delete(c.pending, id)
			n++
		}
	}
	if n > 0 {
		c.log.Debug("reminders cancelled", zap.String("prefix", prefix), zap.Int("count", n))
	}
	return n
}

// Pending returns the queued reminders ordered by time.
func (c *Center) Pending() []model.Reminder {
	c.mu.Lock()
	defer c.mu.Unlock()
	return sortedReminders(c.pending)
}

// DeliverDue removes all reminders due at or before now and hands them to
// the deliverer. Failed deliveries are logged and not retried.
func (c *Center) DeliverDue(ctx context.Context) int {
	now := c.now()

	c.mu.Lock()
	due := make(map[string]model.Reminder)
	for id, r := range c.pending {
		if !r.At.After(now) {
			due[id] = r
			delete(c.pending, id)
		}
	}
	c.mu.Unlock()

	delivered := 0
	for _, r := range sortedReminders(due) {
		if c.deliver == nil {
			continue
		}
		if err := c.deliver.DeliverReminder(ctx, r); err != nil {
			c.log.Error("deliver reminder", zap.String("id", r.ID), zap.Error(err))
			continue
		}
		delivered++
	}
	return delivered
}

func sortedReminders(m map[string]model.Reminder) []model.Reminder {
	out := make([]model.Reminder, 0, len(m))
	for _, r := range m {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].At.Equal(out[j].At) {
			return out[i].ID < out[j].ID
		}
		return out[i].At.Before(out[j].At)
	})
	return out
}
