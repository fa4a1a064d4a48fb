package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fluxclass/fluxclass-backend/internal/pkg/logger"
	"github.com/fluxclass/fluxclass-backend/internal/telemetry"
)

// staleSessionAfter is how long a tracked session may sit without any
// reported interaction before the sweep finalizes it on the client's behalf
// (closed laptop, dead tab).
const staleSessionAfter = 30 * time.Minute

type sessionKey struct {
	userID     uuid.UUID
	resourceID string
}

type trackedSession struct {
	session       *telemetry.Session
	userName      string
	resourceTitle string
	classType     string
	lastReport    time.Time
}

// SessionTracker owns the server-side work sessions: one telemetry.Session
// per open (student, resource) view, ticked on a fixed 1-second cadence.
// Sessions themselves are single-owner and lock-free; the tracker's mutex is
// what serializes event reports against the ticker.
type SessionTracker struct {
	log        *logger.Logger
	engagement EngagementService
	now        func() time.Time

	mu       sync.Mutex
	sessions map[sessionKey]*trackedSession
}

func NewSessionTracker(log *logger.Logger, engagement EngagementService, now func() time.Time) *SessionTracker {
	if now == nil {
		now = time.Now
	}
	return &SessionTracker{
		log:        log.With("service", "SessionTracker"),
		engagement: engagement,
		now:        now,
		sessions:   map[sessionKey]*trackedSession{},
	}
}

// Start runs the 1-second tick loop until the context is cancelled.
func (t *SessionTracker) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				t.tickAll(ctx)
			}
		}
	}()
}

func (t *SessionTracker) tickAll(ctx context.Context) {
	t.mu.Lock()
	var stale []sessionKey
	for key, tracked := range t.sessions {
		tracked.session.Tick()
		if t.now().Sub(tracked.lastReport) > staleSessionAfter {
			stale = append(stale, key)
		}
	}
	t.mu.Unlock()

	for _, key := range stale {
		t.log.Info("finalizing stale session", "userID", key.userID, "resourceID", key.resourceID)
		t.Complete(ctx, key.userID, key.resourceID)
	}
}

// RecordEvents folds a client-side event report into the session, opening it
// on first contact. Counts are deltas since the previous report.
func (t *SessionTracker) RecordEvents(userID uuid.UUID, userName, resourceID, resourceTitle, classType string, keystrokes, pastes, clicks int) {
	if userID == uuid.Nil || resourceID == "" {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	key := sessionKey{userID: userID, resourceID: resourceID}
	tracked, ok := t.sessions[key]
	if !ok {
		tracked = &trackedSession{
			session:       telemetry.NewSession(t.now),
			userName:      userName,
			resourceTitle: resourceTitle,
			classType:     classType,
		}
		t.sessions[key] = tracked
	}
	tracked.lastReport = t.now()

	// constant work per report; the tick loop contends on the same mutex
	tracked.session.AddEvents(keystrokes, pastes, clicks)
}

// Active reports the away/active signal for an open session.
func (t *SessionTracker) Active(userID uuid.UUID, resourceID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	tracked, ok := t.sessions[sessionKey{userID: userID, resourceID: resourceID}]
	return ok && tracked.session.Active()
}

// Complete ends the session and hands its final snapshot, by value, to the
// engagement protocol. The submission itself is fire-and-forget: a store
// failure is logged and dropped, never surfaced to the closing view.
func (t *SessionTracker) Complete(ctx context.Context, userID uuid.UUID, resourceID string) {
	t.mu.Lock()
	key := sessionKey{userID: userID, resourceID: resourceID}
	tracked, ok := t.sessions[key]
	if ok {
		delete(t.sessions, key)
	}
	t.mu.Unlock()

	if !ok {
		return
	}

	snapshot := tracked.session.Snapshot()
	go func() {
		// detached from the request context: the view is free to unmount
		// without waiting on the write
		subCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		_, err := t.engagement.SubmitEngagement(subCtx, SubmitEngagementInput{
			UserID:        userID,
			UserName:      tracked.userName,
			ResourceID:    resourceID,
			ResourceTitle: tracked.resourceTitle,
			ClassType:     tracked.classType,
			Metrics:       snapshot,
		})
		if err != nil {
			t.log.Error("engagement submission dropped", "userID", userID, "resourceID", resourceID, "error", err)
		}
	}()
}
