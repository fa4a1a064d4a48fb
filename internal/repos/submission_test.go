package repos

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/fluxclass/fluxclass-backend/internal/telemetry"
	"github.com/fluxclass/fluxclass-backend/internal/types"
)

func TestSubmissionCreateAndList(t *testing.T) {
	db := newTestDB(t)
	log := mustTestLogger(t)
	userRepo := NewUserRepo(db, log)
	subRepo := NewSubmissionRepo(db, log)
	ctx := context.Background()

	user := seedUser(t, userRepo)

	mk := func(resource string, status telemetry.Status, archived bool, at time.Time) *types.Submission {
		return &types.Submission{
			ID:         uuid.New(),
			UserID:     user.ID,
			UserName:   user.DisplayName,
			ResourceID: resource,
			ClassType:  "biology",
			Metrics: telemetry.Metrics{
				EngagementTime: 120,
				Keystrokes:     300,
			},
			Status:      status,
			Score:       20,
			SubmittedAt: at,
			IsArchived:  archived,
		}
	}

	base := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	rows := []*types.Submission{
		mk("res-1", telemetry.StatusSuccess, false, base),
		mk("res-1", telemetry.StatusNormal, true, base.Add(time.Hour)),
		mk("res-2", telemetry.StatusFlagged, false, base.Add(2*time.Hour)),
	}
	if _, err := subRepo.Create(ctx, nil, rows); err != nil {
		t.Fatalf("Create: %v", err)
	}

	live, err := subRepo.List(ctx, nil, SubmissionFilter{ClassType: "biology"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(live) != 2 {
		t.Fatalf("live submissions: got %d, want 2 (archived excluded)", len(live))
	}
	if live[0].SubmittedAt.Before(live[1].SubmittedAt) {
		t.Fatalf("List should order newest first")
	}

	all, err := subRepo.List(ctx, nil, SubmissionFilter{ClassType: "biology", IncludeArchived: true})
	if err != nil {
		t.Fatalf("List all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("all submissions: got %d, want 3", len(all))
	}

	latest, err := subRepo.GetLatestByUserAndResource(ctx, nil, user.ID, "res-1")
	if err != nil {
		t.Fatalf("GetLatestByUserAndResource: %v", err)
	}
	if latest == nil || latest.Status != telemetry.StatusNormal {
		t.Fatalf("latest for res-1: %+v", latest)
	}

	missing, err := subRepo.GetLatestByUserAndResource(ctx, nil, user.ID, "res-404")
	if err != nil {
		t.Fatalf("GetLatestByUserAndResource missing: %v", err)
	}
	if missing != nil {
		t.Fatalf("missing resource should return nil, got %+v", missing)
	}
}

func TestSubmissionAdminAnnotations(t *testing.T) {
	db := newTestDB(t)
	log := mustTestLogger(t)
	userRepo := NewUserRepo(db, log)
	subRepo := NewSubmissionRepo(db, log)
	ctx := context.Background()

	user := seedUser(t, userRepo)
	row := &types.Submission{
		ID:          uuid.New(),
		UserID:      user.ID,
		ResourceID:  "res-1",
		Status:      telemetry.StatusNormal,
		SubmittedAt: time.Now(),
	}
	if _, err := subRepo.Create(ctx, nil, []*types.Submission{row}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := subRepo.SetPinned(ctx, nil, row.ID, true); err != nil {
		t.Fatalf("SetPinned: %v", err)
	}
	teacher := uuid.New()
	if err := subRepo.AppendComment(ctx, nil, row.ID, types.PrivateComment{
		AuthorID:  teacher,
		Body:      "talked to the student, resolved",
		CreatedAt: time.Now(),
	}); err != nil {
		t.Fatalf("AppendComment: %v", err)
	}
	if err := subRepo.AppendComment(ctx, nil, row.ID, types.PrivateComment{
		AuthorID:  teacher,
		Body:      "follow-up next week",
		CreatedAt: time.Now(),
	}); err != nil {
		t.Fatalf("AppendComment second: %v", err)
	}

	got, err := subRepo.GetByIDs(ctx, nil, []uuid.UUID{row.ID})
	if err != nil || len(got) != 1 {
		t.Fatalf("GetByIDs: %v (%d rows)", err, len(got))
	}
	if !got[0].IsPinned {
		t.Fatalf("pin flag not persisted")
	}
	if len(got[0].PrivateComments) != 2 {
		t.Fatalf("comments: got %d, want 2", len(got[0].PrivateComments))
	}
	if got[0].PrivateComments[0].Body != "talked to the student, resolved" {
		t.Fatalf("comment order: %+v", got[0].PrivateComments)
	}
	// classification assigned at creation stays put through annotations
	if got[0].Status != telemetry.StatusNormal {
		t.Fatalf("status mutated by annotation path: %s", got[0].Status)
	}
}
