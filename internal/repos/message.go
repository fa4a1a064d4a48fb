package repos

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/fluxclass/fluxclass-backend/internal/pkg/logger"
	"github.com/fluxclass/fluxclass-backend/internal/types"
)

type MessageRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.Message) ([]*types.Message, error)
	// ListSince returns messages created after the cutoff, oldest first. The
	// unread aggregation recomputes from this window on every update rather
	// than keeping incremental state.
	ListSince(ctx context.Context, tx *gorm.DB, cutoff time.Time, limit int) ([]*types.Message, error)
	ListByChannel(ctx context.Context, tx *gorm.DB, channelID string, limit int) ([]*types.Message, error)
}

type messageRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMessageRepo(db *gorm.DB, baseLog *logger.Logger) MessageRepo {
	return &messageRepo{db: db, log: baseLog.With("repo", "MessageRepo")}
}

func (r *messageRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.Message) ([]*types.Message, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(rows) == 0 {
		return []*types.Message{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *messageRepo) ListSince(ctx context.Context, tx *gorm.DB, cutoff time.Time, limit int) ([]*types.Message, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if limit <= 0 {
		limit = 500
	}

	var results []*types.Message
	if err := transaction.WithContext(ctx).
		Where("created_at > ?", cutoff).
		Order("created_at ASC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *messageRepo) ListByChannel(ctx context.Context, tx *gorm.DB, channelID string, limit int) ([]*types.Message, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if channelID == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 100
	}

	var results []*types.Message
	if err := transaction.WithContext(ctx).
		Where("channel_id = ?", channelID).
		Order("created_at DESC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
