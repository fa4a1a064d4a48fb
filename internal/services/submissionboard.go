package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fluxclass/fluxclass-backend/internal/pkg/errors"
	"github.com/fluxclass/fluxclass-backend/internal/pkg/logger"
	"github.com/fluxclass/fluxclass-backend/internal/repos"
	"github.com/fluxclass/fluxclass-backend/internal/types"
)

// SubmissionBoardService backs the teacher-facing review board: listing
// classified submissions and annotating them. Annotations never touch the
// stored classification or score.
type SubmissionBoardService interface {
	List(ctx context.Context, filter repos.SubmissionFilter) ([]*types.Submission, error)
	SetPinned(ctx context.Context, id uuid.UUID, pinned bool) error
	SetArchived(ctx context.Context, id uuid.UUID, archived bool) error
	AddComment(ctx context.Context, id uuid.UUID, authorID uuid.UUID, body string) error
}

type submissionBoardService struct {
	db             *gorm.DB
	log            *logger.Logger
	submissionRepo repos.SubmissionRepo
}

func NewSubmissionBoardService(db *gorm.DB, log *logger.Logger, submissionRepo repos.SubmissionRepo) SubmissionBoardService {
	return &submissionBoardService{
		db:             db,
		log:            log.With("service", "SubmissionBoardService"),
		submissionRepo: submissionRepo,
	}
}

func (s *submissionBoardService) List(ctx context.Context, filter repos.SubmissionFilter) ([]*types.Submission, error) {
	rows, err := s.submissionRepo.List(ctx, nil, filter)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	return rows, nil
}

func (s *submissionBoardService) SetPinned(ctx context.Context, id uuid.UUID, pinned bool) error {
	if id == uuid.Nil {
		return fmt.Errorf("pin submission: %w", errors.ErrInvalidArgument)
	}
	if err := s.submissionRepo.SetPinned(ctx, nil, id, pinned); err != nil {
		return fmt.Errorf("pin submission: %w", err)
	}
	return nil
}

func (s *submissionBoardService) SetArchived(ctx context.Context, id uuid.UUID, archived bool) error {
	if id == uuid.Nil {
		return fmt.Errorf("archive submission: %w", errors.ErrInvalidArgument)
	}
	if err := s.submissionRepo.SetArchived(ctx, nil, id, archived); err != nil {
		return fmt.Errorf("archive submission: %w", err)
	}
	return nil
}

func (s *submissionBoardService) AddComment(ctx context.Context, id uuid.UUID, authorID uuid.UUID, body string) error {
	if id == uuid.Nil || authorID == uuid.Nil || body == "" {
		return fmt.Errorf("comment submission: %w", errors.ErrInvalidArgument)
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.submissionRepo.AppendComment(ctx, tx, id, types.PrivateComment{
			AuthorID:  authorID,
			Body:      body,
			CreatedAt: time.Now(),
		})
	})
	if err != nil {
		return fmt.Errorf("comment submission: %w", err)
	}
	return nil
}
