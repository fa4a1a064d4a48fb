package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fluxclass/fluxclass-backend/internal/pkg/errors"
	"github.com/fluxclass/fluxclass-backend/internal/pkg/logger"
	"github.com/fluxclass/fluxclass-backend/internal/repos"
	"github.com/fluxclass/fluxclass-backend/internal/telemetry"
	"github.com/fluxclass/fluxclass-backend/internal/types"
)

// ClassConfigService manages per-class classification thresholds. Reads
// return the effective thresholds (stored overrides filled with the baseline
// policy) so callers never see partial zeros.
type ClassConfigService interface {
	Effective(ctx context.Context, classType string) (telemetry.Thresholds, error)
	List(ctx context.Context) ([]*types.ClassConfig, error)
	Put(ctx context.Context, classType string, thresholds telemetry.Thresholds) (*types.ClassConfig, error)
}

type classConfigService struct {
	db              *gorm.DB
	log             *logger.Logger
	classConfigRepo repos.ClassConfigRepo
}

func NewClassConfigService(db *gorm.DB, log *logger.Logger, classConfigRepo repos.ClassConfigRepo) ClassConfigService {
	return &classConfigService{
		db:              db,
		log:             log.With("service", "ClassConfigService"),
		classConfigRepo: classConfigRepo,
	}
}

func (s *classConfigService) Effective(ctx context.Context, classType string) (telemetry.Thresholds, error) {
	if classType == "" {
		return telemetry.Thresholds{}, fmt.Errorf("class config: %w", errors.ErrInvalidArgument)
	}
	row, err := s.classConfigRepo.GetByClassType(ctx, nil, classType)
	if err != nil {
		return telemetry.Thresholds{}, fmt.Errorf("class config: %w", err)
	}
	if row == nil {
		return telemetry.DefaultThresholds(), nil
	}
	return row.Thresholds.WithDefaults(), nil
}

func (s *classConfigService) List(ctx context.Context) ([]*types.ClassConfig, error) {
	rows, err := s.classConfigRepo.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("list class configs: %w", err)
	}
	return rows, nil
}

func (s *classConfigService) Put(ctx context.Context, classType string, thresholds telemetry.Thresholds) (*types.ClassConfig, error) {
	if classType == "" {
		return nil, fmt.Errorf("put class config: %w", errors.ErrInvalidArgument)
	}
	row := &types.ClassConfig{
		ID:         uuid.New(),
		ClassType:  classType,
		Thresholds: thresholds,
	}
	if err := s.classConfigRepo.Upsert(ctx, nil, row); err != nil {
		return nil, fmt.Errorf("put class config: %w", err)
	}
	return row, nil
}
