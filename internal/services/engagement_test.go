package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/fluxclass/fluxclass-backend/internal/repos"
	"github.com/fluxclass/fluxclass-backend/internal/telemetry"
	"github.com/fluxclass/fluxclass-backend/internal/types"
)

type engagementFixture struct {
	svc        EngagementService
	userRepo   repos.UserRepo
	subRepo    repos.SubmissionRepo
	awardRepo  repos.QuestionAwardRepo
	configRepo repos.ClassConfigRepo
	user       *types.User
}

func newEngagementFixture(t *testing.T) *engagementFixture {
	t.Helper()
	db := newTestDB(t)
	log := mustTestLogger(t)
	userRepo := repos.NewUserRepo(db, log)
	subRepo := repos.NewSubmissionRepo(db, log)
	awardRepo := repos.NewQuestionAwardRepo(db, log)
	configRepo := repos.NewClassConfigRepo(db, log)

	return &engagementFixture{
		svc:        NewEngagementService(db, log, subRepo, awardRepo, userRepo, configRepo, nil),
		userRepo:   userRepo,
		subRepo:    subRepo,
		awardRepo:  awardRepo,
		configRepo: configRepo,
		user:       seedUser(t, userRepo),
	}
}

func (f *engagementFixture) ledger(t *testing.T) (xp, currency int) {
	t.Helper()
	rows, err := f.userRepo.GetByIDs(context.Background(), nil, []uuid.UUID{f.user.ID})
	if err != nil || len(rows) != 1 {
		t.Fatalf("ledger read: %v (%d rows)", err, len(rows))
	}
	return rows[0].XP, rows[0].Currency
}

func TestSubmitEngagementBelowFloorIsDropped(t *testing.T) {
	f := newEngagementFixture(t)
	ctx := context.Background()

	sub, err := f.svc.SubmitEngagement(ctx, SubmitEngagementInput{
		UserID:     f.user.ID,
		ResourceID: "res-1",
		Metrics:    telemetry.Metrics{EngagementTime: 9, Keystrokes: 500},
	})
	if err != nil {
		t.Fatalf("SubmitEngagement: %v", err)
	}
	if sub != nil {
		t.Fatalf("below-floor metrics must not create a submission, got %+v", sub)
	}

	rows, err := f.subRepo.List(ctx, nil, repos.SubmissionFilter{UserID: f.user.ID})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("submissions created for dropped metrics: %d", len(rows))
	}
	if xp, _ := f.ledger(t); xp != 0 {
		t.Fatalf("xp credited for dropped metrics: %d", xp)
	}
}

func TestSubmitEngagementSuccessPath(t *testing.T) {
	f := newEngagementFixture(t)
	ctx := context.Background()

	metrics := telemetry.Metrics{PasteCount: 0, EngagementTime: 600, Keystrokes: 500}
	sub, err := f.svc.SubmitEngagement(ctx, SubmitEngagementInput{
		UserID:        f.user.ID,
		UserName:      f.user.DisplayName,
		ResourceID:    "res-1",
		ResourceTitle: "Cell Structure",
		ClassType:     "biology",
		Metrics:       metrics,
	})
	if err != nil {
		t.Fatalf("SubmitEngagement: %v", err)
	}
	if sub == nil {
		t.Fatalf("expected a submission")
	}
	if sub.Status != telemetry.StatusSuccess {
		t.Fatalf("status=%s, want SUCCESS", sub.Status)
	}
	if sub.Score != 100 {
		t.Fatalf("score=%d, want 100", sub.Score)
	}
	if sub.Metrics != metrics {
		t.Fatalf("metrics snapshot mismatch: %+v", sub.Metrics)
	}

	xp, currency := f.ledger(t)
	if xp != 100 || currency != 10 {
		t.Fatalf("ledger: xp=%d currency=%d, want 100/10", xp, currency)
	}

	classRows, err := f.userRepo.GetClassXP(ctx, nil, f.user.ID)
	if err != nil || len(classRows) != 1 {
		t.Fatalf("class ledger: %v (%d rows)", err, len(classRows))
	}
	if classRows[0].ClassType != "biology" || classRows[0].XP != 100 {
		t.Fatalf("class ledger row: %+v", classRows[0])
	}
}

func TestSubmitEngagementUsesClassThresholds(t *testing.T) {
	f := newEngagementFixture(t)
	ctx := context.Background()

	err := f.configRepo.Upsert(ctx, nil, &types.ClassConfig{
		ID:        uuid.New(),
		ClassType: "biology",
		Thresholds: telemetry.Thresholds{
			FlagPasteCount:    5,
			FlagMinEngagement: 120,
		},
	})
	if err != nil {
		t.Fatalf("seed class config: %v", err)
	}

	sub, err := f.svc.SubmitEngagement(ctx, SubmitEngagementInput{
		UserID:     f.user.ID,
		ResourceID: "res-1",
		ClassType:  "biology",
		Metrics:    telemetry.Metrics{PasteCount: 6, EngagementTime: 50, Keystrokes: 100},
	})
	if err != nil {
		t.Fatalf("SubmitEngagement: %v", err)
	}
	if sub == nil || sub.Status != telemetry.StatusFlagged {
		t.Fatalf("submission: %+v, want FLAGGED", sub)
	}
	// flag is advisory: the time-based score is still paid
	if sub.Score != 10 {
		t.Fatalf("score=%d, want 10", sub.Score)
	}
	if xp, _ := f.ledger(t); xp != 10 {
		t.Fatalf("flagged submission xp=%d, want 10", xp)
	}
}

func TestSubmitReviewEngagementTracksTimeWithoutXP(t *testing.T) {
	f := newEngagementFixture(t)
	ctx := context.Background()

	sub, err := f.svc.SubmitReviewEngagement(ctx, ReviewEngagementInput{
		UserID:     f.user.ID,
		ResourceID: "res-review",
		ClassType:  "biology",
		Seconds:    300,
	})
	if err != nil {
		t.Fatalf("SubmitReviewEngagement: %v", err)
	}
	if sub == nil || sub.Status != telemetry.StatusStarted {
		t.Fatalf("submission: %+v, want STARTED", sub)
	}
	if sub.Score != 0 {
		t.Fatalf("review time must not score, got %d", sub.Score)
	}
	if sub.Metrics.EngagementTime != 300 {
		t.Fatalf("tracked seconds: %d, want 300", sub.Metrics.EngagementTime)
	}
	if xp, _ := f.ledger(t); xp != 0 {
		t.Fatalf("review time credited xp: %d", xp)
	}

	// under the floor: tracked nowhere, same guard as the main path
	sub, err = f.svc.SubmitReviewEngagement(ctx, ReviewEngagementInput{
		UserID:     f.user.ID,
		ResourceID: "res-review",
		Seconds:    5,
	})
	if err != nil || sub != nil {
		t.Fatalf("below-floor review: sub=%+v err=%v", sub, err)
	}
}

func TestAwardQuestionXPIdempotent(t *testing.T) {
	f := newEngagementFixture(t)
	ctx := context.Background()

	in := AwardQuestionXPInput{
		UserID:     f.user.ID,
		ResourceID: "res-1",
		QuestionID: "q-1",
		XPAmount:   25,
		ClassType:  "biology",
	}

	awarded, err := f.svc.AwardQuestionXP(ctx, in)
	if err != nil {
		t.Fatalf("first award: %v", err)
	}
	if !awarded {
		t.Fatalf("first award should pay")
	}
	xp, currency := f.ledger(t)
	if xp != 25 || currency != 2 {
		t.Fatalf("ledger after first award: xp=%d currency=%d", xp, currency)
	}

	awarded, err = f.svc.AwardQuestionXP(ctx, in)
	if err != nil {
		t.Fatalf("second award: %v", err)
	}
	if awarded {
		t.Fatalf("second award must not pay")
	}
	if xpAfter, _ := f.ledger(t); xpAfter != 25 {
		t.Fatalf("ledger changed on duplicate award: %d", xpAfter)
	}
}

func TestAwardQuestionXPValidation(t *testing.T) {
	f := newEngagementFixture(t)
	ctx := context.Background()

	if _, err := f.svc.AwardQuestionXP(ctx, AwardQuestionXPInput{
		UserID:     f.user.ID,
		ResourceID: "res-1",
		QuestionID: "q-1",
		XPAmount:   0,
	}); err == nil {
		t.Fatalf("zero amount should be rejected")
	}
	if _, err := f.svc.AwardQuestionXP(ctx, AwardQuestionXPInput{
		UserID:   f.user.ID,
		XPAmount: 10,
	}); err == nil {
		t.Fatalf("missing key fields should be rejected")
	}
}

// Two bursts of concurrent duplicate calls must pay exactly once: the
// conditional insert is the serialization point, so only one caller sees
// inserted=true.
func TestAwardQuestionXPRaceSafety(t *testing.T) {
	db := newTestDB(t)
	log := mustTestLogger(t)
	awardRepo := newFakeAwardRepo()
	userRepo := newFakeUserRepo()
	configRepo := repos.NewClassConfigRepo(db, log)
	subRepo := repos.NewSubmissionRepo(db, log)

	svc := NewEngagementService(db, log, subRepo, awardRepo, userRepo, configRepo, nil)
	userID := uuid.New()

	const callers = 16
	awards := make([]bool, callers)
	var g errgroup.Group
	for i := 0; i < callers; i++ {
		i := i
		g.Go(func() error {
			awarded, err := svc.AwardQuestionXP(context.Background(), AwardQuestionXPInput{
				UserID:     userID,
				ResourceID: "res-1",
				QuestionID: "q-1",
				XPAmount:   25,
				ClassType:  "biology",
			})
			awards[i] = awarded
			return err
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("concurrent awards: %v", err)
	}

	paid := 0
	for _, awarded := range awards {
		if awarded {
			paid++
		}
	}
	if paid != 1 {
		t.Fatalf("paid %d times, want exactly 1", paid)
	}
	if got := userRepo.totalXP(userID); got != 25 {
		t.Fatalf("ledger=%d, want 25", got)
	}
}
