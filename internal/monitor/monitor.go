// Package monitor runs the periodic sweep that turns overdue conversations
// into alerts. Classification ignores business hours; delivery does not.
package monitor

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/responsewatch/backend/internal/calendar"
	"github.com/responsewatch/backend/internal/metrics"
	"github.com/responsewatch/backend/internal/models"
	"github.com/responsewatch/backend/internal/notify"
	"github.com/responsewatch/backend/internal/tracker"
)

const (
	DefaultInterval    = 30 * time.Second
	DefaultSendTimeout = 20 * time.Second
)

type Options struct {
	Store    *tracker.Store
	Calendar *calendar.Calendar
	// Notifier may be nil, in which case nothing is ever sent.
	Notifier    notify.Notifier
	Metrics     *metrics.Metrics
	Interval    time.Duration
	SendTimeout time.Duration
	Now         func() time.Time
	Logger      zerolog.Logger
}

type Monitor struct {
	store       *tracker.Store
	calendar    *calendar.Calendar
	notifier    notify.Notifier
	metrics     *metrics.Metrics
	interval    time.Duration
	sendTimeout time.Duration
	now         func() time.Time
	logger      zerolog.Logger

	running atomic.Bool

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	doneCh  chan struct{}
}

func New(opts Options) *Monitor {
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	sendTimeout := opts.SendTimeout
	if sendTimeout <= 0 {
		sendTimeout = DefaultSendTimeout
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Monitor{
		store:       opts.Store,
		calendar:    opts.Calendar,
		notifier:    opts.Notifier,
		metrics:     opts.Metrics,
		interval:    interval,
		sendTimeout: sendTimeout,
		now:         now,
		logger:      opts.Logger,
	}
}

func (m *Monitor) Interval() time.Duration {
	return m.interval
}

// Start launches the sweep loop. Calling it twice is a no-op.
func (m *Monitor) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.started = true
	m.cancel = cancel
	m.doneCh = make(chan struct{})
	go m.loop(ctx, m.doneCh)
}

// Stop cancels any in-flight send and waits for the loop to exit.
func (m *Monitor) Stop() {
	m.mu.Lock()
	if !m.started {
		m.mu.Unlock()
		return
	}
	m.started = false
	cancel, done := m.cancel, m.doneCh
	m.mu.Unlock()

	cancel()
	<-done
}

func (m *Monitor) loop(ctx context.Context, done chan struct{}) {
	ticker := time.NewTicker(m.interval)
	defer func() { ticker.Stop(); close(done) }()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Tick(ctx)
		}
	}
}

type TickResult struct {
	Checked      int
	Warnings     int
	Criticals    int
	Sent         int
	Failed       int
	BusinessOpen bool
	// Skipped means another tick was still running.
	Skipped bool
}

// Tick runs one sweep. Concurrent calls do not overlap: a call made while a
// sweep is in progress returns immediately with Skipped set.
func (m *Monitor) Tick(ctx context.Context) TickResult {
	if !m.running.CompareAndSwap(false, true) {
		m.logger.Warn().Msg("previous sweep still running, skipping tick")
		return TickResult{Skipped: true}
	}
	defer m.running.Store(false)

	now := m.now()
	res := TickResult{BusinessOpen: m.calendar.IsOpen(now)}
	sweep := m.store.Sweep(now)
	res.Checked = sweep.Checked

	for _, o := range sweep.Overdue {
		if o.Tier == models.TierCritical {
			res.Criticals++
		} else {
			res.Warnings++
		}
		if !res.BusinessOpen || o.AlreadySent {
			continue
		}
		sent, err := m.safeAlert(ctx, o, now)
		switch {
		case err != nil:
			res.Failed++
		case sent:
			res.Sent++
		}
	}

	total, pending := m.store.Counts()
	m.metrics.Sweep(total, pending, res.Warnings, res.Criticals, res.BusinessOpen)

	if res.Checked > 0 {
		state := "after_hours"
		if res.BusinessOpen {
			state = "business_hours"
		}
		m.logger.Info().
			Str("state", state).
			Int("checked", res.Checked).
			Int("warnings", res.Warnings).
			Int("criticals", res.Criticals).
			Int("sent", res.Sent).
			Int("failed", res.Failed).
			Msg("sweep complete")
	}
	return res
}

func (m *Monitor) safeAlert(ctx context.Context, o tracker.Overdue, since time.Time) (sent bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic: %v", notify.ErrSendFailed, r)
			m.logger.Error().
				Str("conversation_id", o.Conversation.ConversationID).
				Interface("panic", r).
				Msg("alert panicked")
			m.metrics.AlertFailed(o.Tier)
		}
	}()
	return m.MaybeAlert(ctx, o, since)
}

// MaybeAlert delivers one alert unless the tier was already sent or the
// calendar is closed at send time. A failed send leaves no ledger entry, so
// the next tick tries again.
func (m *Monitor) MaybeAlert(ctx context.Context, o tracker.Overdue, since time.Time) (bool, error) {
	conv := o.Conversation
	if m.notifier == nil {
		return false, nil
	}
	if m.store.AlertSent(conv.ConversationID, o.Tier) {
		return false, nil
	}
	if !m.calendar.IsOpen(m.now()) {
		m.logger.Debug().
			Str("tier", string(o.Tier)).
			Str("conversation_id", conv.ConversationID).
			Msg("alert held until business hours")
		return false, nil
	}

	sendCtx, cancel := context.WithTimeout(ctx, m.sendTimeout)
	defer cancel()
	alert := notify.Alert{Conversation: conv, Tier: o.Tier, Elapsed: o.Elapsed, At: m.now()}
	if err := m.notifier.Notify(sendCtx, alert); err != nil {
		m.logger.Error().Err(err).
			Str("tier", string(o.Tier)).
			Str("conversation_id", conv.ConversationID).
			Msg("alert delivery failed")
		m.metrics.AlertFailed(o.Tier)
		return false, err
	}

	if !m.store.RecordAlert(conv.ConversationID, o.Tier, since, m.now()) {
		m.logger.Info().
			Str("conversation_id", conv.ConversationID).
			Msg("conversation answered while alert was in flight")
	}
	m.metrics.AlertSent(o.Tier)
	return true, nil
}
