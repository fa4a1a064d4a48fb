package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fluxclass/fluxclass-backend/internal/pkg/logger"
	"github.com/fluxclass/fluxclass-backend/internal/types"
)

type UserRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.User) ([]*types.User, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.User, error)
	GetByEmails(ctx context.Context, tx *gorm.DB, emails []string) ([]*types.User, error)
	EmailExists(ctx context.Context, tx *gorm.DB, email string) (bool, error)
	Save(ctx context.Context, tx *gorm.DB, row *types.User) error
	TouchLastLogin(ctx context.Context, tx *gorm.DB, id uuid.UUID, at time.Time) error
	// IncrementXP applies an atomic credit to the user's total XP and
	// currency. Credits are expressed as increments, never read-modify-write,
	// because multiple award paths write the same ledger concurrently.
	IncrementXP(ctx context.Context, tx *gorm.DB, id uuid.UUID, xp, currency int) error
	// IncrementClassXP upserts-and-increments the per-class ledger row.
	IncrementClassXP(ctx context.Context, tx *gorm.DB, id uuid.UUID, classType string, xp int) error
	GetClassXP(ctx context.Context, tx *gorm.DB, id uuid.UUID) ([]*types.UserClassXP, error)
}

type userRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	return &userRepo{db: db, log: baseLog.With("repo", "UserRepo")}
}

func (r *userRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.User) ([]*types.User, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(rows) == 0 {
		return []*types.User{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *userRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.User, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.User
	if len(ids) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *userRepo) GetByEmails(ctx context.Context, tx *gorm.DB, emails []string) ([]*types.User, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.User
	if len(emails) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("email IN ?", emails).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *userRepo) EmailExists(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.User{}).
		Where("email = ?", email).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *userRepo) Save(ctx context.Context, tx *gorm.DB, row *types.User) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if row == nil {
		return nil
	}

	return transaction.WithContext(ctx).Save(row).Error
}

func (r *userRepo) TouchLastLogin(ctx context.Context, tx *gorm.DB, id uuid.UUID, at time.Time) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Model(&types.User{}).
		Where("id = ?", id).
		Update("last_login_at", at).Error
}

func (r *userRepo) IncrementXP(ctx context.Context, tx *gorm.DB, id uuid.UUID, xp, currency int) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if xp == 0 && currency == 0 {
		return nil
	}

	return transaction.WithContext(ctx).
		Model(&types.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"xp":       gorm.Expr("xp + ?", xp),
			"currency": gorm.Expr("currency + ?", currency),
		}).Error
}

func (r *userRepo) IncrementClassXP(ctx context.Context, tx *gorm.DB, id uuid.UUID, classType string, xp int) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if classType == "" || xp == 0 {
		return nil
	}

	row := &types.UserClassXP{
		ID:        uuid.New(),
		UserID:    id,
		ClassType: classType,
		XP:        xp,
	}
	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "class_type"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"xp":         gorm.Expr("user_class_xp.xp + ?", xp),
				"updated_at": time.Now(),
			}),
		}).
		Create(row).Error
}

func (r *userRepo) GetClassXP(ctx context.Context, tx *gorm.DB, id uuid.UUID) ([]*types.UserClassXP, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.UserClassXP
	if id == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("user_id = ?", id).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
