package monitor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/responsewatch/backend/internal/calendar"
	"github.com/responsewatch/backend/internal/metrics"
	"github.com/responsewatch/backend/internal/models"
	"github.com/responsewatch/backend/internal/notify"
	"github.com/responsewatch/backend/internal/tracker"
)

const filter = "Support Team"

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type recordingNotifier struct {
	mu     sync.Mutex
	alerts []notify.Alert
	err    error
	hook   func(notify.Alert)
}

func (n *recordingNotifier) Notify(_ context.Context, a notify.Alert) error {
	if n.hook != nil {
		n.hook(a)
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.alerts = append(n.alerts, a)
	return nil
}

func (n *recordingNotifier) tiers() []models.Tier {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []models.Tier
	for _, a := range n.alerts {
		out = append(out, a.Tier)
	}
	return out
}

type fixture struct {
	clock    *fakeClock
	store    *tracker.Store
	notifier *recordingNotifier
	monitor  *Monitor
}

// Monday 2026-10-19 10:00 UTC; the calendar is UTC, open 8-22 on weekdays.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	clock := &fakeClock{t: time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)}
	schedule, err := calendar.ParseSchedule("mon-fri=8-22")
	require.NoError(t, err)
	store := tracker.NewStore(tracker.Options{
		AssignmentFilter: filter,
		Thresholds:       tracker.Thresholds{Warning: 5 * time.Minute, Critical: 15 * time.Minute},
		Now:              clock.Now,
		Logger:           zerolog.Nop(),
	})
	n := &recordingNotifier{}
	m := New(Options{
		Store:    store,
		Calendar: calendar.New(time.UTC, schedule),
		Notifier: n,
		Metrics:  metrics.New(),
		Now:      clock.Now,
		Logger:   zerolog.Nop(),
	})
	return &fixture{clock: clock, store: store, notifier: n, monitor: m}
}

func (f *fixture) inbound(contactID string) {
	f.store.RecordInbound(models.InboundEvent{
		ContactID:      contactID,
		ConversationID: "conv_" + contactID,
		MessageBody:    "hello",
		ChannelType:    "SMS",
		ContactName:    contactID,
		AssignedTo:     filter,
	})
}

func TestWarningSentOnceAcrossTicks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.inbound("c1")

	f.clock.Advance(6 * time.Minute)
	res := f.monitor.Tick(ctx)
	require.Equal(t, 1, res.Checked)
	require.Equal(t, 1, res.Warnings)
	require.Equal(t, 1, res.Sent)

	for i := 0; i < 5; i++ {
		f.clock.Advance(30 * time.Second)
		res = f.monitor.Tick(ctx)
		require.Zero(t, res.Sent)
	}
	require.Equal(t, []models.Tier{models.TierWarning}, f.notifier.tiers())

	f.clock.Advance(9 * time.Minute)
	res = f.monitor.Tick(ctx)
	require.Equal(t, 1, res.Criticals)
	require.Equal(t, 1, res.Sent)
	f.monitor.Tick(ctx)
	require.Equal(t, []models.Tier{models.TierWarning, models.TierCritical}, f.notifier.tiers())
}

func TestResponseClearsLedger(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.inbound("c1")
	f.clock.Advance(6 * time.Minute)
	f.monitor.Tick(ctx)
	require.Len(t, f.notifier.tiers(), 1)

	f.clock.Advance(time.Minute)
	f.store.RecordOutbound(models.OutboundEvent{ConversationID: "conv_c1"})
	res := f.monitor.Tick(ctx)
	require.Zero(t, res.Checked)

	f.clock.Advance(time.Minute)
	f.inbound("c1")
	f.clock.Advance(6 * time.Minute)
	res = f.monitor.Tick(ctx)
	require.Equal(t, 1, res.Sent)
	require.Equal(t, []models.Tier{models.TierWarning, models.TierWarning}, f.notifier.tiers())
}

func TestNewConversationsAreNotAlerted(t *testing.T) {
	f := newFixture(t)
	f.inbound("c1")
	f.clock.Advance(4 * time.Minute)

	res := f.monitor.Tick(context.Background())
	require.Equal(t, 1, res.Checked)
	require.Zero(t, res.Warnings)
	require.Empty(t, f.notifier.tiers())
}

func TestAfterHoursClassifiesButDoesNotSend(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.clock.Advance(11*time.Hour + 30*time.Minute) // 21:30
	f.inbound("c1")
	f.clock.Advance(40 * time.Minute) // 22:10, closed

	res := f.monitor.Tick(ctx)
	require.False(t, res.BusinessOpen)
	require.Equal(t, 1, res.Criticals)
	require.Zero(t, res.Sent)
	require.Empty(t, f.notifier.tiers())

	pending := f.store.ListPending()
	require.Len(t, pending, 1)
	require.Equal(t, models.TierCritical, pending[0].Status)

	// Tuesday 08:00 opens delivery; only the current tier is sent.
	f.clock.Advance(9*time.Hour + 50*time.Minute)
	res = f.monitor.Tick(ctx)
	require.True(t, res.BusinessOpen)
	require.Equal(t, []models.Tier{models.TierCritical}, f.notifier.tiers())
}

func TestFailedSendRetriesNextTick(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.inbound("c1")
	f.inbound("c2")
	f.clock.Advance(6 * time.Minute)

	f.notifier.err = errors.New("smtp down")
	res := f.monitor.Tick(ctx)
	require.Equal(t, 2, res.Failed)
	require.Zero(t, res.Sent)
	require.False(t, f.store.AlertSent("conv_c1", models.TierWarning))

	f.notifier.err = nil
	res = f.monitor.Tick(ctx)
	require.Equal(t, 2, res.Sent)
	require.True(t, f.store.AlertSent("conv_c1", models.TierWarning))
	require.True(t, f.store.AlertSent("conv_c2", models.TierWarning))
}

func TestPanickingNotifierDoesNotAbortSweep(t *testing.T) {
	f := newFixture(t)
	f.inbound("boom")
	f.inbound("fine")
	f.clock.Advance(6 * time.Minute)
	f.notifier.hook = func(a notify.Alert) {
		if a.Conversation.ConversationID == "conv_boom" {
			panic("template exploded")
		}
	}

	res := f.monitor.Tick(context.Background())
	require.Equal(t, 1, res.Failed)
	require.Equal(t, 1, res.Sent)
	require.True(t, f.store.AlertSent("conv_fine", models.TierWarning))
	require.False(t, f.store.AlertSent("conv_boom", models.TierWarning))
}

func TestResponseDuringSendDoesNotRecordLedger(t *testing.T) {
	f := newFixture(t)
	f.inbound("c1")
	f.clock.Advance(6 * time.Minute)
	f.notifier.hook = func(notify.Alert) {
		f.store.RecordOutbound(models.OutboundEvent{ConversationID: "conv_c1"})
	}

	res := f.monitor.Tick(context.Background())
	require.Equal(t, 1, res.Sent)
	require.False(t, f.store.AlertSent("conv_c1", models.TierWarning))
}

func TestReassignedConversationIsNotAlerted(t *testing.T) {
	f := newFixture(t)
	f.inbound("c1")
	f.store.RecordInbound(models.InboundEvent{ContactID: "c1", ConversationID: "conv_c1", AssignedTo: "Sales"})
	f.clock.Advance(20 * time.Minute)

	res := f.monitor.Tick(context.Background())
	require.Zero(t, res.Checked)
	require.Empty(t, f.notifier.tiers())
}

func TestNilNotifierNeverSends(t *testing.T) {
	f := newFixture(t)
	f.monitor.notifier = nil
	f.inbound("c1")
	f.clock.Advance(16 * time.Minute)

	res := f.monitor.Tick(context.Background())
	require.Equal(t, 1, res.Criticals)
	require.Zero(t, res.Sent)
	require.False(t, f.store.AlertSent("conv_c1", models.TierCritical))
}

func TestTicksDoNotOverlap(t *testing.T) {
	f := newFixture(t)
	f.inbound("c1")
	f.clock.Advance(6 * time.Minute)

	entered := make(chan struct{})
	release := make(chan struct{})
	f.notifier.hook = func(notify.Alert) {
		close(entered)
		<-release
	}

	done := make(chan TickResult)
	go func() { done <- f.monitor.Tick(context.Background()) }()
	<-entered

	require.True(t, f.monitor.Tick(context.Background()).Skipped)
	close(release)
	require.Equal(t, 1, (<-done).Sent)
}

func TestStartStop(t *testing.T) {
	f := newFixture(t)
	f.monitor.interval = 10 * time.Millisecond
	f.inbound("c1")
	f.clock.Advance(6 * time.Minute)

	f.monitor.Start()
	f.monitor.Start()
	require.Eventually(t, func() bool { return len(f.notifier.tiers()) == 1 }, time.Second, 5*time.Millisecond)
	f.monitor.Stop()
	f.monitor.Stop()
	require.Equal(t, []models.Tier{models.TierWarning}, f.notifier.tiers())
}
