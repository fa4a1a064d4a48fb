package telemetry

import "math"

// Status is the terminal classification of a submission.
type Status string

const (
	StatusFlagged       Status = "FLAGGED"
	StatusSuccess       Status = "SUCCESS"
	StatusSupportNeeded Status = "SUPPORT_NEEDED"
	StatusNormal        Status = "NORMAL"
	// StatusStarted marks time-only records (review reading time) that carry
	// engagement but no classified outcome and no XP.
	StatusStarted Status = "STARTED"
)

// MinSubmitSeconds is the engagement floor below which no submission is
// created at all. It is a caller-side guard, not a status.
const MinSubmitSeconds = 10

// Outcome pairs the status label with the time-based XP score. The two are
// orthogonal: a FLAGGED submission still earns its time-based XP. The flag
// is a review signal for the teacher, not a penalty.
type Outcome struct {
	Status Status `json:"status"`
	Score  int    `json:"score"`
}

// Classify assigns a terminal status and score to a finished metrics summary.
// Rules are evaluated top to bottom; the first match wins:
//
//  1. pasteCount ≥ flagPasteCount and engagementTime < flagMinEngagement
//     → FLAGGED (heavy pasting with implausibly little active time)
//  2. keystrokes < supportKeystrokes and engagementTime < supportMinEngagement
//     → SUPPORT_NEEDED (low interaction, likely stuck or disengaged)
//  3. keystrokes ≥ successMinKeystrokes → SUCCESS
//  4. otherwise → NORMAL
//
// Classify is pure: no I/O, deterministic for a given (metrics, thresholds).
func Classify(m Metrics, t Thresholds) Outcome {
	t = t.WithDefaults()

	status := StatusNormal
	switch {
	case m.PasteCount >= t.FlagPasteCount && m.EngagementTime < t.FlagMinEngagement:
		status = StatusFlagged
	case m.Keystrokes < t.SupportKeystrokes && m.EngagementTime < t.SupportMinEngagement:
		status = StatusSupportNeeded
	case m.Keystrokes >= t.SuccessMinKeystrokes:
		status = StatusSuccess
	}

	return Outcome{
		Status: status,
		Score:  Score(m.EngagementTime, t.XPPerMinute),
	}
}

// Score converts active seconds into XP: whole minutes (rounded) times the
// per-class rate.
func Score(engagementSeconds, xpPerMinute int) int {
	if engagementSeconds < 0 {
		return 0
	}
	minutes := int(math.Round(float64(engagementSeconds) / 60.0))
	return minutes * xpPerMinute
}
