package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fluxclass/fluxclass-backend/internal/pkg/logger"
	"github.com/fluxclass/fluxclass-backend/internal/types"
)

type QuestionAwardRepo interface {
	// CreateIfAbsent conditionally inserts the award row keyed by
	// (user_id, resource_id, question_id). It reports whether the insert took
	// effect: false means the award was already recorded. Under two
	// concurrent calls with the same key the database's conflict handling
	// lets exactly one through, which is what makes the XP credit safe to
	// gate on the return value.
	CreateIfAbsent(ctx context.Context, tx *gorm.DB, row *types.QuestionAward) (bool, error)
	GetByUserAndResource(ctx context.Context, tx *gorm.DB, userID uuid.UUID, resourceID string) ([]*types.QuestionAward, error)
}

type questionAwardRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuestionAwardRepo(db *gorm.DB, baseLog *logger.Logger) QuestionAwardRepo {
	return &questionAwardRepo{db: db, log: baseLog.With("repo", "QuestionAwardRepo")}
}

func (r *questionAwardRepo) CreateIfAbsent(ctx context.Context, tx *gorm.DB, row *types.QuestionAward) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if row == nil {
		return false, nil
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}

	res := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "resource_id"}, {Name: "question_id"}},
			DoNothing: true,
		}).
		Create(row)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *questionAwardRepo) GetByUserAndResource(ctx context.Context, tx *gorm.DB, userID uuid.UUID, resourceID string) ([]*types.QuestionAward, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.QuestionAward
	if userID == uuid.Nil || resourceID == "" {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND resource_id = ?", userID, resourceID).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
