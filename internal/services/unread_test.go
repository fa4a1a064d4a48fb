package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/fluxclass/fluxclass-backend/internal/realtime/seen"
	"github.com/fluxclass/fluxclass-backend/internal/repos"
	"github.com/fluxclass/fluxclass-backend/internal/types"
)

type unreadFixture struct {
	svc     UnreadService
	msgRepo repos.MessageRepo
	viewer  *types.User
}

func newUnreadFixture(t *testing.T) *unreadFixture {
	t.Helper()
	db := newTestDB(t)
	log := mustTestLogger(t)
	userRepo := repos.NewUserRepo(db, log)
	msgRepo := repos.NewMessageRepo(db, log)
	store := seen.NewMemoryStore()

	viewer := seedUser(t, userRepo, "biology")
	viewer.Groups = []string{"group-7"}
	if err := userRepo.Save(context.Background(), nil, viewer); err != nil {
		t.Fatalf("save viewer: %v", err)
	}

	return &unreadFixture{
		svc:     NewUnreadService(db, log, msgRepo, userRepo, store, nil),
		msgRepo: msgRepo,
		viewer:  viewer,
	}
}

func (f *unreadFixture) post(t *testing.T, channelID, channelType, classType, groupID string, author uuid.UUID, at time.Time) {
	t.Helper()
	_, err := f.msgRepo.Create(context.Background(), nil, []*types.Message{{
		ID:          uuid.New(),
		ChannelID:   channelID,
		ChannelType: channelType,
		ClassType:   classType,
		GroupID:     groupID,
		AuthorID:    author,
		Body:        "hello",
		CreatedAt:   at,
	}})
	if err != nil {
		t.Fatalf("post message: %v", err)
	}
}

func TestUnreadSkipsSelfAndInaccessible(t *testing.T) {
	f := newUnreadFixture(t)
	ctx := context.Background()
	other := uuid.New()
	now := time.Now()

	// visible: enrolled class channel, other author
	f.post(t, "chan-bio", types.ChannelTypeClass, "biology", "", other, now)
	// visible: member group channel
	f.post(t, "chan-g7", types.ChannelTypeGroup, "", "group-7", other, now)
	// skipped: authored by the viewer
	f.post(t, "chan-self", types.ChannelTypeClass, "biology", "", f.viewer.ID, now)
	// skipped: class the viewer is not enrolled in
	f.post(t, "chan-hist", types.ChannelTypeClass, "history", "", other, now)
	// skipped: group the viewer is not a member of
	f.post(t, "chan-g9", types.ChannelTypeGroup, "", "group-9", other, now)

	unread, err := f.svc.UnreadChannels(ctx, f.viewer.ID)
	if err != nil {
		t.Fatalf("UnreadChannels: %v", err)
	}
	want := []string{"chan-bio", "chan-g7"}
	if len(unread) != len(want) || unread[0] != want[0] || unread[1] != want[1] {
		t.Fatalf("unread=%v, want %v", unread, want)
	}
}

func TestUnreadRoundTrip(t *testing.T) {
	f := newUnreadFixture(t)
	ctx := context.Background()
	other := uuid.New()

	f.post(t, "chan-bio", types.ChannelTypeClass, "biology", "", other, time.Now().Add(-time.Minute))

	unread, err := f.svc.UnreadChannels(ctx, f.viewer.ID)
	if err != nil {
		t.Fatalf("UnreadChannels: %v", err)
	}
	if len(unread) != 1 || unread[0] != "chan-bio" {
		t.Fatalf("before mark-read: %v", unread)
	}

	if err := f.svc.MarkRead(ctx, f.viewer.ID, "chan-bio"); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}

	unread, err = f.svc.UnreadChannels(ctx, f.viewer.ID)
	if err != nil {
		t.Fatalf("UnreadChannels after mark: %v", err)
	}
	if len(unread) != 0 {
		t.Fatalf("after mark-read: %v, want empty", unread)
	}

	// a message newer than the watermark re-marks the channel
	f.post(t, "chan-bio", types.ChannelTypeClass, "biology", "", other, time.Now().Add(time.Second))
	unread, err = f.svc.UnreadChannels(ctx, f.viewer.ID)
	if err != nil {
		t.Fatalf("UnreadChannels after new message: %v", err)
	}
	if len(unread) != 1 || unread[0] != "chan-bio" {
		t.Fatalf("after newer message: %v", unread)
	}
}

func TestPostMessagePersists(t *testing.T) {
	f := newUnreadFixture(t)
	ctx := context.Background()

	msg := &types.Message{
		ChannelID:   "chan-bio",
		ChannelType: types.ChannelTypeClass,
		ClassType:   "biology",
		AuthorID:    f.viewer.ID,
		Body:        "anyone stuck on q3?",
	}
	if err := f.svc.PostMessage(ctx, msg); err != nil {
		t.Fatalf("PostMessage: %v", err)
	}
	if msg.ID == uuid.Nil || msg.CreatedAt.IsZero() {
		t.Fatalf("PostMessage should assign id and timestamp: %+v", msg)
	}

	rows, err := f.msgRepo.ListByChannel(ctx, nil, "chan-bio", 10)
	if err != nil || len(rows) != 1 {
		t.Fatalf("ListByChannel: %v (%d rows)", err, len(rows))
	}

	if err := f.svc.PostMessage(ctx, &types.Message{}); err == nil {
		t.Fatalf("empty message should be rejected")
	}
}
