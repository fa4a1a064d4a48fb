package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fluxclass/fluxclass-backend/internal/pkg/logger"
	"github.com/fluxclass/fluxclass-backend/internal/types"
)

// SubmissionFilter narrows List; zero fields are ignored. Archived rows are
// excluded unless IncludeArchived is set.
type SubmissionFilter struct {
	UserID          uuid.UUID
	ResourceID      string
	ClassType       string
	IncludeArchived bool
}

type SubmissionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.Submission) ([]*types.Submission, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Submission, error)
	List(ctx context.Context, tx *gorm.DB, filter SubmissionFilter) ([]*types.Submission, error)
	GetLatestByUserAndResource(ctx context.Context, tx *gorm.DB, userID uuid.UUID, resourceID string) (*types.Submission, error)
	SetPinned(ctx context.Context, tx *gorm.DB, id uuid.UUID, pinned bool) error
	SetArchived(ctx context.Context, tx *gorm.DB, id uuid.UUID, archived bool) error
	AppendComment(ctx context.Context, tx *gorm.DB, id uuid.UUID, comment types.PrivateComment) error
}

type submissionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSubmissionRepo(db *gorm.DB, baseLog *logger.Logger) SubmissionRepo {
	return &submissionRepo{db: db, log: baseLog.With("repo", "SubmissionRepo")}
}

func (r *submissionRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.Submission) ([]*types.Submission, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(rows) == 0 {
		return []*types.Submission{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *submissionRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Submission, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Submission
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

func (r *submissionRepo) List(ctx context.Context, tx *gorm.DB, filter SubmissionFilter) ([]*types.Submission, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	q := transaction.WithContext(ctx).Model(&types.Submission{})
	if filter.UserID != uuid.Nil {
		q = q.Where("user_id = ?", filter.UserID)
	}
	if filter.ResourceID != "" {
		q = q.Where("resource_id = ?", filter.ResourceID)
	}
	if filter.ClassType != "" {
		q = q.Where("class_type = ?", filter.ClassType)
	}
	if !filter.IncludeArchived {
		q = q.Where("is_archived = ?", false)
	}

	var results []*types.Submission
	if err := q.Order("submitted_at DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *submissionRepo) GetLatestByUserAndResource(ctx context.Context, tx *gorm.DB, userID uuid.UUID, resourceID string) (*types.Submission, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.Submission
	err := transaction.WithContext(ctx).
		Where("user_id = ? AND resource_id = ?", userID, resourceID).
		Order("submitted_at DESC").
		First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *submissionRepo) SetPinned(ctx context.Context, tx *gorm.DB, id uuid.UUID, pinned bool) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Model(&types.Submission{}).
		Where("id = ?", id).
		Update("is_pinned", pinned).Error
}

func (r *submissionRepo) SetArchived(ctx context.Context, tx *gorm.DB, id uuid.UUID, archived bool) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Model(&types.Submission{}).
		Where("id = ?", id).
		Update("is_archived", archived).Error
}

func (r *submissionRepo) AppendComment(ctx context.Context, tx *gorm.DB, id uuid.UUID, comment types.PrivateComment) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	// read-modify-write on the comments array; callers run this inside a
	// transaction when they need it serialized
	var row types.Submission
	if err := transaction.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return err
	}
	row.PrivateComments = append(row.PrivateComments, comment)
	return transaction.WithContext(ctx).
		Model(&types.Submission{}).
		Where("id = ?", id).
		Update("private_comments", row.PrivateComments).Error
}
