package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/fluxclass/fluxclass-backend/internal/pkg/errors"
	"github.com/fluxclass/fluxclass-backend/internal/pkg/logger"
	"github.com/fluxclass/fluxclass-backend/internal/realtime"
	"github.com/fluxclass/fluxclass-backend/internal/realtime/bus"
	"github.com/fluxclass/fluxclass-backend/internal/realtime/seen"
	"github.com/fluxclass/fluxclass-backend/internal/repos"
	"github.com/fluxclass/fluxclass-backend/internal/types"
)

// unreadLookback bounds how far back the message window reaches. The unread
// set is a derived view recomputed from this window plus the watermark map;
// there is no incremental state to corrupt.
const unreadLookback = 7 * 24 * time.Hour

type UnreadService interface {
	// UnreadChannels returns the ids of channels with activity newer than the
	// viewer's watermark, excluding self-authored messages and channels the
	// viewer cannot access.
	UnreadChannels(ctx context.Context, userID uuid.UUID) ([]string, error)
	// MarkRead advances the viewer's watermark for one channel to now.
	MarkRead(ctx context.Context, userID uuid.UUID, channelID string) error
	// PostMessage persists a chat message and fans it out on the bus.
	PostMessage(ctx context.Context, msg *types.Message) error
}

type unreadService struct {
	db          *gorm.DB
	log         *logger.Logger
	messageRepo repos.MessageRepo
	userRepo    repos.UserRepo
	seenStore   seen.Store
	bus         bus.Bus
}

func NewUnreadService(
	db *gorm.DB,
	log *logger.Logger,
	messageRepo repos.MessageRepo,
	userRepo repos.UserRepo,
	seenStore seen.Store,
	eventBus bus.Bus,
) UnreadService {
	return &unreadService{
		db:          db,
		log:         log.With("service", "UnreadService"),
		messageRepo: messageRepo,
		userRepo:    userRepo,
		seenStore:   seenStore,
		bus:         eventBus,
	}
}

func (s *unreadService) UnreadChannels(ctx context.Context, userID uuid.UUID) ([]string, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("unread channels: %w", errors.ErrInvalidArgument)
	}

	var (
		viewer     *types.User
		messages   []*types.Message
		watermarks map[string]int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		users, err := s.userRepo.GetByIDs(gctx, nil, []uuid.UUID{userID})
		if err != nil {
			return fmt.Errorf("load viewer: %w", err)
		}
		if len(users) == 0 {
			return fmt.Errorf("load viewer: %w", errors.ErrNotFound)
		}
		viewer = users[0]
		return nil
	})
	g.Go(func() error {
		var err error
		messages, err = s.messageRepo.ListSince(gctx, nil, time.Now().Add(-unreadLookback), 0)
		if err != nil {
			return fmt.Errorf("load messages: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		watermarks, err = s.seenStore.Get(gctx, userID)
		if err != nil {
			return fmt.Errorf("load watermarks: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	unread := computeUnread(viewer, messages, watermarks)
	sort.Strings(unread)
	return unread, nil
}

// computeUnread is the pure core of the aggregation: skip self-authored
// messages, skip channels the viewer cannot access, then compare against the
// watermark (missing watermark reads as 0).
func computeUnread(viewer *types.User, messages []*types.Message, watermarks map[string]int64) []string {
	set := map[string]struct{}{}
	for _, msg := range messages {
		if msg.AuthorID == viewer.ID {
			continue
		}
		if !canAccessChannel(viewer, msg) {
			continue
		}
		if msg.CreatedAt.UnixMilli() > watermarks[msg.ChannelID] {
			set[msg.ChannelID] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for channel := range set {
		out = append(out, channel)
	}
	return out
}

func canAccessChannel(viewer *types.User, msg *types.Message) bool {
	switch msg.ChannelType {
	case types.ChannelTypeClass:
		return containsString(viewer.Classes, msg.ClassType)
	case types.ChannelTypeGroup:
		return containsString(viewer.Groups, msg.GroupID)
	default:
		return false
	}
}

func containsString(haystack []string, needle string) bool {
	if needle == "" {
		return false
	}
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

func (s *unreadService) MarkRead(ctx context.Context, userID uuid.UUID, channelID string) error {
	if userID == uuid.Nil || channelID == "" {
		return fmt.Errorf("mark read: %w", errors.ErrInvalidArgument)
	}
	if err := s.seenStore.Set(ctx, userID, channelID, time.Now().UnixMilli()); err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	return nil
}

func (s *unreadService) PostMessage(ctx context.Context, msg *types.Message) error {
	if msg == nil || msg.ChannelID == "" || msg.AuthorID == uuid.Nil {
		return fmt.Errorf("post message: %w", errors.ErrInvalidArgument)
	}
	if msg.ID == uuid.Nil {
		msg.ID = uuid.New()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}

	if _, err := s.messageRepo.Create(ctx, nil, []*types.Message{msg}); err != nil {
		return fmt.Errorf("post message: %w", err)
	}

	if s.bus != nil {
		err := s.bus.Publish(ctx, realtime.Message{
			Channel: msg.ChannelID,
			Event:   realtime.EventChatMessage,
			Data: map[string]interface{}{
				"message_id": msg.ID.String(),
				"author_id":  msg.AuthorID.String(),
				"created_at": msg.CreatedAt.UnixMilli(),
			},
		})
		if err != nil {
			s.log.Warn("message fan-out failed", "channel", msg.ChannelID, "error", err)
		}
	}
	return nil
}
