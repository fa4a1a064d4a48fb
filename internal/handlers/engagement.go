package handlers

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fluxclass/fluxclass-backend/internal/pkg/errors"
	"github.com/fluxclass/fluxclass-backend/internal/pkg/logger"
	"github.com/fluxclass/fluxclass-backend/internal/requestdata"
	"github.com/fluxclass/fluxclass-backend/internal/services"
	"github.com/fluxclass/fluxclass-backend/internal/telemetry"
)

type EngagementHandler struct {
	log        *logger.Logger
	engagement services.EngagementService
	tracker    *services.SessionTracker
}

func NewEngagementHandler(log *logger.Logger, engagement services.EngagementService, tracker *services.SessionTracker) *EngagementHandler {
	return &EngagementHandler{
		log:        log.With("handler", "EngagementHandler"),
		engagement: engagement,
		tracker:    tracker,
	}
}

// RecordEvents ingests one client event report into the server-side session.
// Counts are deltas since the previous report.
func (eh *EngagementHandler) RecordEvents(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, http.StatusUnauthorized, "unauthenticated", errors.ErrUnauthorized)
		return
	}
	var req struct {
		ResourceID    string `json:"resource_id"`
		ResourceTitle string `json:"resource_title"`
		ClassType     string `json:"class_type"`
		UserName      string `json:"user_name"`
		Keystrokes    int    `json:"keystrokes"`
		Pastes        int    `json:"pastes"`
		Clicks        int    `json:"clicks"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.ResourceID == "" {
		RespondError(c, http.StatusBadRequest, "invalid_body", fmt.Errorf("invalid request body"))
		return
	}
	eh.tracker.RecordEvents(rd.UserID, req.UserName, req.ResourceID, req.ResourceTitle, req.ClassType, req.Keystrokes, req.Pastes, req.Clicks)
	RespondOK(c, gin.H{"active": eh.tracker.Active(rd.UserID, req.ResourceID)})
}

// Active reports the away/active indicator for an open session.
func (eh *EngagementHandler) Active(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, http.StatusUnauthorized, "unauthenticated", errors.ErrUnauthorized)
		return
	}
	resourceID := c.Query("resource")
	if resourceID == "" {
		RespondError(c, http.StatusBadRequest, "missing_resource", fmt.Errorf("resource is required"))
		return
	}
	RespondOK(c, gin.H{"active": eh.tracker.Active(rd.UserID, resourceID)})
}

// Complete finalizes the caller's session for a resource. The resulting
// submission is stored fire-and-forget; the client never waits on the write.
func (eh *EngagementHandler) Complete(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, http.StatusUnauthorized, "unauthenticated", errors.ErrUnauthorized)
		return
	}
	var req struct {
		ResourceID string `json:"resource_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.ResourceID == "" {
		RespondError(c, http.StatusBadRequest, "invalid_body", fmt.Errorf("invalid request body"))
		return
	}
	eh.tracker.Complete(c.Request.Context(), rd.UserID, req.ResourceID)
	RespondOK(c, gin.H{"completed": true})
}

// Submit accepts a final metrics snapshot directly, for clients that track
// their own session locally. A store failure is logged and reported as an
// unrecorded submission rather than an error.
func (eh *EngagementHandler) Submit(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, http.StatusUnauthorized, "unauthenticated", errors.ErrUnauthorized)
		return
	}
	var req struct {
		ResourceID    string            `json:"resource_id"`
		ResourceTitle string            `json:"resource_title"`
		ClassType     string            `json:"class_type"`
		UserName      string            `json:"user_name"`
		Metrics       telemetry.Metrics `json:"metrics"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.ResourceID == "" {
		RespondError(c, http.StatusBadRequest, "invalid_body", fmt.Errorf("invalid request body"))
		return
	}
	submission, err := eh.engagement.SubmitEngagement(c.Request.Context(), services.SubmitEngagementInput{
		UserID:        rd.UserID,
		UserName:      req.UserName,
		ResourceID:    req.ResourceID,
		ResourceTitle: req.ResourceTitle,
		ClassType:     req.ClassType,
		Metrics:       req.Metrics,
	})
	if err != nil {
		eh.log.Error("engagement submission dropped", "userID", rd.UserID, "resourceID", req.ResourceID, "error", err)
		RespondOK(c, gin.H{"recorded": false})
		return
	}
	if submission == nil {
		RespondOK(c, gin.H{"recorded": false})
		return
	}
	RespondOK(c, gin.H{"recorded": true, "status": submission.Status, "score": submission.Score})
}

// ReviewTime records time spent in a review-question view. Tracked for
// visibility only; it never awards XP.
func (eh *EngagementHandler) ReviewTime(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, http.StatusUnauthorized, "unauthenticated", errors.ErrUnauthorized)
		return
	}
	var req struct {
		ResourceID    string `json:"resource_id"`
		ResourceTitle string `json:"resource_title"`
		ClassType     string `json:"class_type"`
		UserName      string `json:"user_name"`
		Seconds       int    `json:"seconds"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.ResourceID == "" {
		RespondError(c, http.StatusBadRequest, "invalid_body", fmt.Errorf("invalid request body"))
		return
	}
	_, err := eh.engagement.SubmitReviewEngagement(c.Request.Context(), services.ReviewEngagementInput{
		UserID:        rd.UserID,
		UserName:      req.UserName,
		ResourceID:    req.ResourceID,
		ResourceTitle: req.ResourceTitle,
		ClassType:     req.ClassType,
		Seconds:       req.Seconds,
	})
	if err != nil {
		eh.log.Error("review time dropped", "userID", rd.UserID, "resourceID", req.ResourceID, "error", err)
	}
	RespondOK(c, gin.H{"recorded": err == nil})
}

// QuestionAward credits first-time-correct XP for a review question. Repeat
// calls for the same question come back with awarded=false.
func (eh *EngagementHandler) QuestionAward(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, http.StatusUnauthorized, "unauthenticated", errors.ErrUnauthorized)
		return
	}
	var req struct {
		ResourceID string `json:"resource_id"`
		QuestionID string `json:"question_id"`
		XPAmount   int    `json:"xp_amount"`
		ClassType  string `json:"class_type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", fmt.Errorf("invalid request body"))
		return
	}
	awarded, err := eh.engagement.AwardQuestionXP(c.Request.Context(), services.AwardQuestionXPInput{
		UserID:     rd.UserID,
		ResourceID: req.ResourceID,
		QuestionID: req.QuestionID,
		XPAmount:   req.XPAmount,
		ClassType:  req.ClassType,
	})
	if stderrors.Is(err, errors.ErrInvalidArgument) {
		RespondError(c, http.StatusBadRequest, "invalid_award", err)
		return
	}
	if err != nil {
		eh.log.Error("question award failed", "userID", rd.UserID, "resourceID", req.ResourceID, "questionID", req.QuestionID, "error", err)
		RespondError(c, http.StatusInternalServerError, "award_failed", fmt.Errorf("failed to record award"))
		return
	}
	RespondOK(c, gin.H{"awarded": awarded})
}
