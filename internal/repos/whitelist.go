package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/fluxclass/fluxclass-backend/internal/pkg/logger"
	"github.com/fluxclass/fluxclass-backend/internal/types"
)

type WhitelistRepo interface {
	GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*types.WhitelistEntry, error)
	List(ctx context.Context, tx *gorm.DB) ([]*types.WhitelistEntry, error)
	Upsert(ctx context.Context, tx *gorm.DB, row *types.WhitelistEntry) error
	DeleteByEmail(ctx context.Context, tx *gorm.DB, email string) error
}

type whitelistRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewWhitelistRepo(db *gorm.DB, baseLog *logger.Logger) WhitelistRepo {
	return &whitelistRepo{db: db, log: baseLog.With("repo", "WhitelistRepo")}
}

func (r *whitelistRepo) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*types.WhitelistEntry, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if email == "" {
		return nil, nil
	}

	var result types.WhitelistEntry
	err := transaction.WithContext(ctx).
		Where("email = ?", email).
		First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *whitelistRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.WhitelistEntry, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.WhitelistEntry
	if err := transaction.WithContext(ctx).
		Order("email ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *whitelistRepo) Upsert(ctx context.Context, tx *gorm.DB, row *types.WhitelistEntry) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if row == nil {
		return nil
	}

	if err := transaction.WithContext(ctx).
		Where("email = ?", row.Email).
		Assign(map[string]interface{}{
			"role":    row.Role,
			"classes": row.Classes,
		}).
		FirstOrCreate(row).Error; err != nil {
		return err
	}
	return nil
}

func (r *whitelistRepo) DeleteByEmail(ctx context.Context, tx *gorm.DB, email string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if email == "" {
		return nil
	}

	return transaction.WithContext(ctx).
		Where("email = ?", email).
		Delete(&types.WhitelistEntry{}).Error
}
