package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/fluxclass/fluxclass-backend/internal/pkg/logger"
	"github.com/fluxclass/fluxclass-backend/internal/types"
)

type ClassConfigRepo interface {
	GetByClassType(ctx context.Context, tx *gorm.DB, classType string) (*types.ClassConfig, error)
	List(ctx context.Context, tx *gorm.DB) ([]*types.ClassConfig, error)
	Upsert(ctx context.Context, tx *gorm.DB, row *types.ClassConfig) error
}

type classConfigRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewClassConfigRepo(db *gorm.DB, baseLog *logger.Logger) ClassConfigRepo {
	return &classConfigRepo{db: db, log: baseLog.With("repo", "ClassConfigRepo")}
}

func (r *classConfigRepo) GetByClassType(ctx context.Context, tx *gorm.DB, classType string) (*types.ClassConfig, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if classType == "" {
		return nil, nil
	}

	var result types.ClassConfig
	err := transaction.WithContext(ctx).
		Where("class_type = ?", classType).
		First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *classConfigRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.ClassConfig, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.ClassConfig
	if err := transaction.WithContext(ctx).
		Order("class_type ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *classConfigRepo) Upsert(ctx context.Context, tx *gorm.DB, row *types.ClassConfig) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if row == nil {
		return nil
	}

	// Upsert by unique class_type. Zero-valued threshold fields stay unset
	// and fall back to the baseline policy at read time.
	if err := transaction.WithContext(ctx).
		Where("class_type = ?", row.ClassType).
		Assign(types.ClassConfig{Thresholds: row.Thresholds}).
		FirstOrCreate(row).Error; err != nil {
		return err
	}
	return nil
}
