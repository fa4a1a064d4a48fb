package telemetry

import (
	"math"
	"time"
)

// IdleWindow is the no-interaction gap after which a session stops accruing
// engagement time. The away indicator and the accrual rule share this value
// and the same clock so the UI never disagrees with what is being credited.
const IdleWindow = 60 * time.Second

// Metrics is the bounded summary of one work session on a resource. It is
// mutated in place by its owning Session and handed off by value on
// completion; only the derived Submission is ever persisted.
type Metrics struct {
	PasteCount     int   `gorm:"column:paste_count" json:"paste_count"`
	EngagementTime int   `gorm:"column:engagement_time" json:"engagement_time"`
	Keystrokes     int   `gorm:"column:keystrokes" json:"keystrokes"`
	ClickCount     int   `gorm:"column:click_count" json:"click_count"`
	StartTime      int64 `gorm:"column:start_time" json:"start_time"`
	LastActive     int64 `gorm:"column:last_active" json:"last_active"`
}

// counterCap keeps pathological event floods from ever overflowing a counter.
const counterCap = math.MaxInt32

func satAdd(counter *int, n int) {
	if *counter > counterCap-n {
		*counter = counterCap
		return
	}
	*counter += n
}

// Session accumulates interaction events for one open resource view. It is
// not safe for concurrent use; callers that feed it from multiple goroutines
// serialize access themselves (see services.SessionTracker).
type Session struct {
	now     func() time.Time
	metrics Metrics
}

// NewSession returns a fresh session whose start and last-active timestamps
// are both "now". A nil clock defaults to time.Now.
func NewSession(now func() time.Time) *Session {
	if now == nil {
		now = time.Now
	}
	ms := now().UnixMilli()
	return &Session{
		now: now,
		metrics: Metrics{
			StartTime:  ms,
			LastActive: ms,
		},
	}
}

func (s *Session) touch() {
	s.metrics.LastActive = s.now().UnixMilli()
}

func (s *Session) Keystroke() {
	satAdd(&s.metrics.Keystrokes, 1)
	s.touch()
}

func (s *Session) Paste() {
	satAdd(&s.metrics.PasteCount, 1)
	s.touch()
}

func (s *Session) Click() {
	satAdd(&s.metrics.ClickCount, 1)
	s.touch()
}

// AddEvents folds a batched event report in one step, however large the
// counts. Negative counts are dropped; a batch carrying at least one event
// refreshes the activity window exactly once.
func (s *Session) AddEvents(keystrokes, pastes, clicks int) {
	if keystrokes < 0 {
		keystrokes = 0
	}
	if pastes < 0 {
		pastes = 0
	}
	if clicks < 0 {
		clicks = 0
	}
	if keystrokes == 0 && pastes == 0 && clicks == 0 {
		return
	}
	satAdd(&s.metrics.Keystrokes, keystrokes)
	satAdd(&s.metrics.PasteCount, pastes)
	satAdd(&s.metrics.ClickCount, clicks)
	s.touch()
}

// Tick runs on a fixed 1-second cadence and credits one active second iff the
// last interaction was inside the idle window. This is the sole time-accrual
// rule; idle time never counts.
func (s *Session) Tick() {
	if s.Active() {
		satAdd(&s.metrics.EngagementTime, 1)
	}
}

// Active reports whether the user is currently considered active, derived
// from the same last-active timestamp and idle window Tick uses.
func (s *Session) Active() bool {
	return s.now().UnixMilli()-s.metrics.LastActive < IdleWindow.Milliseconds()
}

// Snapshot returns the accumulated metrics by value. Interaction events after
// a snapshot is taken are not reflected in it.
func (s *Session) Snapshot() Metrics {
	return s.metrics
}
