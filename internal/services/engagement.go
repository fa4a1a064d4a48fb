package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fluxclass/fluxclass-backend/internal/pkg/errors"
	"github.com/fluxclass/fluxclass-backend/internal/pkg/logger"
	"github.com/fluxclass/fluxclass-backend/internal/realtime"
	"github.com/fluxclass/fluxclass-backend/internal/realtime/bus"
	"github.com/fluxclass/fluxclass-backend/internal/repos"
	"github.com/fluxclass/fluxclass-backend/internal/telemetry"
	"github.com/fluxclass/fluxclass-backend/internal/types"
)

// FluxPerXPDivisor converts XP credits into spendable currency: one Flux per
// ten XP, rounded down.
const FluxPerXPDivisor = 10

type SubmitEngagementInput struct {
	UserID        uuid.UUID
	UserName      string
	ResourceID    string
	ResourceTitle string
	ClassType     string
	Metrics       telemetry.Metrics
}

type ReviewEngagementInput struct {
	UserID        uuid.UUID
	UserName      string
	ResourceID    string
	ResourceTitle string
	ClassType     string
	Seconds       int
}

type AwardQuestionXPInput struct {
	UserID     uuid.UUID
	ResourceID string
	QuestionID string
	XPAmount   int
	ClassType  string
}

type EngagementService interface {
	// SubmitEngagement turns one finished session into a Submission plus an
	// XP credit, atomically. Metrics under the engagement floor are dropped
	// without creating anything; that is the normal guarded outcome, not an
	// error. Returns the created submission, or nil when guarded.
	SubmitEngagement(ctx context.Context, in SubmitEngagementInput) (*types.Submission, error)
	// SubmitReviewEngagement records time spent reading in a review-question
	// view. The time is tracked but deliberately never awards XP; only
	// correct answers do.
	SubmitReviewEngagement(ctx context.Context, in ReviewEngagementInput) (*types.Submission, error)
	// AwardQuestionXP credits a fixed XP amount for a first-time correct
	// answer, at most once per (user, resource, question). A repeat call
	// returns awarded=false and leaves the ledger untouched.
	AwardQuestionXP(ctx context.Context, in AwardQuestionXPInput) (bool, error)
}

type engagementService struct {
	db              *gorm.DB
	log             *logger.Logger
	submissionRepo  repos.SubmissionRepo
	awardRepo       repos.QuestionAwardRepo
	userRepo        repos.UserRepo
	classConfigRepo repos.ClassConfigRepo
	bus             bus.Bus
}

func NewEngagementService(
	db *gorm.DB,
	log *logger.Logger,
	submissionRepo repos.SubmissionRepo,
	awardRepo repos.QuestionAwardRepo,
	userRepo repos.UserRepo,
	classConfigRepo repos.ClassConfigRepo,
	eventBus bus.Bus,
) EngagementService {
	return &engagementService{
		db:              db,
		log:             log.With("service", "EngagementService"),
		submissionRepo:  submissionRepo,
		awardRepo:       awardRepo,
		userRepo:        userRepo,
		classConfigRepo: classConfigRepo,
		bus:             eventBus,
	}
}

// thresholdsFor loads the class policy, falling back to defaults when the
// class has none or the read fails. A misconfigured class must never block a
// submission.
func (s *engagementService) thresholdsFor(ctx context.Context, classType string) telemetry.Thresholds {
	if classType == "" {
		return telemetry.DefaultThresholds()
	}
	cfg, err := s.classConfigRepo.GetByClassType(ctx, nil, classType)
	if err != nil {
		s.log.Warn("class config read failed, using default thresholds", "classType", classType, "error", err)
		return telemetry.DefaultThresholds()
	}
	if cfg == nil {
		return telemetry.DefaultThresholds()
	}
	return cfg.Thresholds
}

func (s *engagementService) SubmitEngagement(ctx context.Context, in SubmitEngagementInput) (*types.Submission, error) {
	if in.UserID == uuid.Nil || in.ResourceID == "" {
		return nil, fmt.Errorf("submit engagement: %w", errors.ErrInvalidArgument)
	}
	if in.Metrics.EngagementTime < telemetry.MinSubmitSeconds {
		s.log.Debug("engagement below floor, dropping",
			"userID", in.UserID, "resourceID", in.ResourceID, "seconds", in.Metrics.EngagementTime)
		return nil, nil
	}

	outcome := telemetry.Classify(in.Metrics, s.thresholdsFor(ctx, in.ClassType))

	submission := &types.Submission{
		ID:            uuid.New(),
		UserID:        in.UserID,
		UserName:      in.UserName,
		ResourceID:    in.ResourceID,
		ResourceTitle: in.ResourceTitle,
		ClassType:     in.ClassType,
		Metrics:       in.Metrics,
		Status:        outcome.Status,
		Score:         outcome.Score,
		SubmittedAt:   time.Now(),
	}

	// the submission write and the XP credit are one atomic unit: a
	// submission without its credit (or the reverse) is an observable
	// inconsistency
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.submissionRepo.Create(ctx, tx, []*types.Submission{submission}); err != nil {
			return fmt.Errorf("create submission: %w", err)
		}
		if err := s.userRepo.IncrementXP(ctx, tx, in.UserID, outcome.Score, outcome.Score/FluxPerXPDivisor); err != nil {
			return fmt.Errorf("credit xp: %w", err)
		}
		if err := s.userRepo.IncrementClassXP(ctx, tx, in.UserID, in.ClassType, outcome.Score); err != nil {
			return fmt.Errorf("credit class xp: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, realtime.Message{
		Channel: "user:" + in.UserID.String(),
		Event:   realtime.EventSubmissionCreated,
		Data: map[string]interface{}{
			"resource_id": in.ResourceID,
			"status":      string(outcome.Status),
			"score":       outcome.Score,
		},
	})
	return submission, nil
}

func (s *engagementService) SubmitReviewEngagement(ctx context.Context, in ReviewEngagementInput) (*types.Submission, error) {
	if in.UserID == uuid.Nil || in.ResourceID == "" {
		return nil, fmt.Errorf("submit review engagement: %w", errors.ErrInvalidArgument)
	}
	if in.Seconds < telemetry.MinSubmitSeconds {
		return nil, nil
	}

	now := time.Now()
	submission := &types.Submission{
		ID:            uuid.New(),
		UserID:        in.UserID,
		UserName:      in.UserName,
		ResourceID:    in.ResourceID,
		ResourceTitle: in.ResourceTitle,
		ClassType:     in.ClassType,
		Metrics: telemetry.Metrics{
			EngagementTime: in.Seconds,
			StartTime:      now.Add(-time.Duration(in.Seconds) * time.Second).UnixMilli(),
			LastActive:     now.UnixMilli(),
		},
		// time-only: tracked for the teacher, no classification, no XP
		Status:      telemetry.StatusStarted,
		Score:       0,
		SubmittedAt: now,
	}

	if _, err := s.submissionRepo.Create(ctx, nil, []*types.Submission{submission}); err != nil {
		return nil, fmt.Errorf("create review submission: %w", err)
	}
	return submission, nil
}

func (s *engagementService) AwardQuestionXP(ctx context.Context, in AwardQuestionXPInput) (bool, error) {
	if in.UserID == uuid.Nil || in.ResourceID == "" || in.QuestionID == "" {
		return false, fmt.Errorf("award question xp: %w", errors.ErrInvalidArgument)
	}
	if in.XPAmount <= 0 {
		return false, fmt.Errorf("award question xp: amount must be positive: %w", errors.ErrInvalidArgument)
	}

	awarded := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inserted, err := s.awardRepo.CreateIfAbsent(ctx, tx, &types.QuestionAward{
			UserID:     in.UserID,
			ResourceID: in.ResourceID,
			QuestionID: in.QuestionID,
			XPAmount:   in.XPAmount,
			ClassType:  in.ClassType,
		})
		if err != nil {
			return fmt.Errorf("record award: %w", err)
		}
		if !inserted {
			// already paid; defined outcome, not an error
			return nil
		}
		if err := s.userRepo.IncrementXP(ctx, tx, in.UserID, in.XPAmount, in.XPAmount/FluxPerXPDivisor); err != nil {
			return fmt.Errorf("credit xp: %w", err)
		}
		if err := s.userRepo.IncrementClassXP(ctx, tx, in.UserID, in.ClassType, in.XPAmount); err != nil {
			return fmt.Errorf("credit class xp: %w", err)
		}
		awarded = true
		return nil
	})
	if err != nil {
		return false, err
	}

	if awarded {
		s.publish(ctx, realtime.Message{
			Channel: "user:" + in.UserID.String(),
			Event:   realtime.EventXPAwarded,
			Data: map[string]interface{}{
				"resource_id": in.ResourceID,
				"question_id": in.QuestionID,
				"xp":          in.XPAmount,
			},
		})
	}
	return awarded, nil
}

// publish is best-effort; a realtime hiccup never fails the protocol that
// already committed.
func (s *engagementService) publish(ctx context.Context, msg realtime.Message) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(ctx, msg); err != nil {
		s.log.Warn("realtime publish failed", "event", msg.Event, "error", err)
	}
}
