package cloudsync

import (
	"context"
	"errors"
	"sync"
	"time"

	"HabitSentinel/internal/model"
	"HabitSentinel/internal/weekkey"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

// BreakerConfig tunes the circuit breaker around the remote.
type BreakerConfig struct {
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold uint32
}

// DefaultBreakerConfig trips after five consecutive failures and probes
// again after thirty seconds.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
	}
}

// Publisher forwards local week changes to the remote for the signed-in
// user. Pushes run in the background and never block the caller.
type Publisher struct {
	remote  Remote
	session *Session
	breaker *gobreaker.CircuitBreaker[any]
	timeout time.Duration
	log     *zap.Logger
	wg      sync.WaitGroup
}

// NewPublisher wraps remote. A nil remote makes every push a no-op.
func NewPublisher(remote Remote, session *Session, cfg BreakerConfig, timeout time.Duration, log *zap.Logger) *Publisher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	settings := gobreaker.Settings{
		Name:        "cloudsync",
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Info("circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	}
	return &Publisher{
		remote:  remote,
		session: session,
		breaker: gobreaker.NewCircuitBreaker[any](settings),
		timeout: timeout,
		log:     log,
	}
}

// PublishWater pushes the water totals of the week starting at weekStart.
func (p *Publisher) PublishWater(weekStart time.Time, totals model.WeeklyTotals) {
	p.push(weekStart, Fields{FieldWaterTotals: totals[:]})
}

// PublishSleep pushes the sleep hours of the week starting at weekStart.
func (p *Publisher) PublishSleep(weekStart time.Time, hours model.WeeklyHours) {
	p.push(weekStart, Fields{FieldSleepHours: hours[:]})
}

func (p *Publisher) push(weekStart time.Time, fields Fields) {
	if p.remote == nil {
		return
	}
	uid := p.session.User()
	if uid == "" {
		return
	}
	week := weekkey.ISODate(weekStart)
	fields[FieldWeekStart] = week

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		defer cancel()
		_, err := p.breaker.Execute(func() (any, error) {
			return nil, p.remote.SetFields(ctx, uid, week, fields)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				p.log.Warn("remote sync skipped, circuit open", zap.String("week", week))
				return
			}
			p.log.Error("remote sync failed", zap.String("uid", uid), zap.String("week", week), zap.Error(err))
		}
	}()
}

// Fetch reads the document of the week containing at for uid.
func (p *Publisher) Fetch(ctx context.Context, uid string, at time.Time) (*model.WeekDocument, error) {
	if p.remote == nil {
		return nil, nil
	}
	week := weekkey.ISODate(weekkey.MondayStart(at))
	doc, err := p.breaker.Execute(func() (any, error) {
		return p.remote.GetDocument(ctx, uid, week)
	})
	if err != nil {
		return nil, err
	}
	d, _ := doc.(*model.WeekDocument)
	return d, nil
}

// Wait blocks until in-flight pushes finish.
func (p *Publisher) Wait() {
	p.wg.Wait()
}
