package telemetry

import (
	"math"
	"testing"
	"time"
)

type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestSessionInitialState(t *testing.T) {
	clock := newFakeClock()
	s := NewSession(clock.now)

	m := s.Snapshot()
	wantMs := clock.t.UnixMilli()
	if m.StartTime != wantMs || m.LastActive != wantMs {
		t.Fatalf("fresh session timestamps: start=%d lastActive=%d, want both %d", m.StartTime, m.LastActive, wantMs)
	}
	if m.Keystrokes != 0 || m.PasteCount != 0 || m.ClickCount != 0 || m.EngagementTime != 0 {
		t.Fatalf("fresh session counters not zeroed: %+v", m)
	}
	if !s.Active() {
		t.Fatalf("fresh session should be active")
	}
}

func TestSessionIdleGate(t *testing.T) {
	cases := []struct {
		name string
		// gap between the last interaction and each of the following ticks
		gapBeforeTicks time.Duration
		ticks          int
		wantAccrued    int
	}{
		{name: "active_ticks_accrue", gapBeforeTicks: time.Second, ticks: 5, wantAccrued: 5},
		{name: "just_inside_window", gapBeforeTicks: 59 * time.Second, ticks: 1, wantAccrued: 1},
		{name: "exactly_at_window", gapBeforeTicks: 60 * time.Second, ticks: 1, wantAccrued: 0},
		{name: "beyond_window", gapBeforeTicks: 5 * time.Minute, ticks: 10, wantAccrued: 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clock := newFakeClock()
			s := NewSession(clock.now)
			s.Keystroke()

			clock.advance(tc.gapBeforeTicks)
			for i := 0; i < tc.ticks; i++ {
				s.Tick()
				clock.advance(time.Second)
			}

			// ticks taken while within the window keep being inside it since
			// each case starts its run with a single fixed gap
			got := s.Snapshot().EngagementTime
			if tc.name == "active_ticks_accrue" {
				if got != tc.wantAccrued {
					t.Fatalf("accrued=%d, want %d", got, tc.wantAccrued)
				}
				return
			}
			if tc.gapBeforeTicks >= IdleWindow && got != 0 {
				t.Fatalf("idle ticks accrued %d seconds, want 0", got)
			}
			if tc.gapBeforeTicks < IdleWindow && got < tc.wantAccrued {
				t.Fatalf("accrued=%d, want at least %d", got, tc.wantAccrued)
			}
		})
	}
}

func TestSessionInteractionResetsIdle(t *testing.T) {
	clock := newFakeClock()
	s := NewSession(clock.now)

	// go idle, confirm no accrual, then interact and confirm accrual resumes
	clock.advance(2 * time.Minute)
	s.Tick()
	if got := s.Snapshot().EngagementTime; got != 0 {
		t.Fatalf("idle tick accrued %d, want 0", got)
	}
	if s.Active() {
		t.Fatalf("session should be away after a 2-minute gap")
	}

	s.Click()
	if !s.Active() {
		t.Fatalf("interaction should flip the session back to active")
	}
	s.Tick()
	if got := s.Snapshot().EngagementTime; got != 1 {
		t.Fatalf("post-interaction tick accrued %d, want 1", got)
	}
}

// The away indicator and the accrual gate must never disagree: a tick accrues
// exactly when Active reports true at that instant.
func TestActivityMonitorMatchesAccrual(t *testing.T) {
	clock := newFakeClock()
	s := NewSession(clock.now)

	gaps := []time.Duration{
		0, time.Second, 30 * time.Second, 59 * time.Second,
		60 * time.Second, 61 * time.Second, 10 * time.Minute,
	}
	for _, gap := range gaps {
		clock.t = newFakeClock().t
		s = NewSession(clock.now)
		s.Keystroke()
		clock.advance(gap)

		before := s.Snapshot().EngagementTime
		active := s.Active()
		s.Tick()
		accrued := s.Snapshot().EngagementTime - before

		if active && accrued != 1 {
			t.Fatalf("gap=%v: active but accrued %d", gap, accrued)
		}
		if !active && accrued != 0 {
			t.Fatalf("gap=%v: away but accrued %d", gap, accrued)
		}
	}
}

func TestSessionCountersAndTouch(t *testing.T) {
	clock := newFakeClock()
	s := NewSession(clock.now)

	clock.advance(10 * time.Second)
	s.Keystroke()
	s.Keystroke()
	s.Paste()
	s.Click()
	s.Click()
	s.Click()

	m := s.Snapshot()
	if m.Keystrokes != 2 || m.PasteCount != 1 || m.ClickCount != 3 {
		t.Fatalf("counters: %+v", m)
	}
	if m.LastActive != clock.t.UnixMilli() {
		t.Fatalf("lastActive=%d, want %d", m.LastActive, clock.t.UnixMilli())
	}
}

func TestSessionSnapshotIsCopy(t *testing.T) {
	clock := newFakeClock()
	s := NewSession(clock.now)

	snap := s.Snapshot()
	s.Keystroke()
	if snap.Keystrokes != 0 {
		t.Fatalf("snapshot mutated by later events: %+v", snap)
	}
	if s.Snapshot().Keystrokes != 1 {
		t.Fatalf("live session missed the event")
	}
}

func TestCounterSaturation(t *testing.T) {
	counter := counterCap - 1
	satAdd(&counter, 1)
	if counter != counterCap {
		t.Fatalf("counter=%d, want cap %d", counter, counterCap)
	}
	satAdd(&counter, 1)
	if counter != counterCap {
		t.Fatalf("counter overflowed past cap: %d", counter)
	}
}

func TestSessionAddEventsBatch(t *testing.T) {
	clock := newFakeClock()
	s := NewSession(clock.now)

	clock.advance(2 * time.Minute)
	if s.Active() {
		t.Fatalf("session should be away before the batch")
	}

	// a batch carrying no events must not refresh the activity window
	s.AddEvents(0, 0, 0)
	s.AddEvents(-4, -1, 0)
	if s.Active() {
		t.Fatalf("eventless batch refreshed activity")
	}

	s.AddEvents(3, -5, 2)
	m := s.Snapshot()
	if m.Keystrokes != 3 || m.PasteCount != 0 || m.ClickCount != 2 {
		t.Fatalf("counters after batch: %+v", m)
	}
	if !s.Active() {
		t.Fatalf("batch with events should flip the session back to active")
	}
}

func TestSessionAddEventsSaturates(t *testing.T) {
	s := NewSession(newFakeClock().now)

	s.AddEvents(math.MaxInt64/2, 1, counterCap)
	s.AddEvents(counterCap, 0, 1)

	m := s.Snapshot()
	if m.Keystrokes != counterCap || m.ClickCount != counterCap {
		t.Fatalf("oversized counts did not saturate: %+v", m)
	}
	if m.PasteCount != 1 {
		t.Fatalf("pasteCount=%d, want 1", m.PasteCount)
	}
}
