package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fluxclass/fluxclass-backend/internal/pkg/errors"
	"github.com/fluxclass/fluxclass-backend/internal/repos"
	"github.com/fluxclass/fluxclass-backend/internal/requestdata"
	"github.com/fluxclass/fluxclass-backend/internal/services"
)

type SubmissionHandler struct {
	board services.SubmissionBoardService
}

func NewSubmissionHandler(board services.SubmissionBoardService) *SubmissionHandler {
	return &SubmissionHandler{board: board}
}

func (sh *SubmissionHandler) List(c *gin.Context) {
	filter := repos.SubmissionFilter{
		ResourceID:      c.Query("resource"),
		ClassType:       c.Query("class"),
		IncludeArchived: c.Query("include_archived") == "true",
	}
	if raw := c.Query("user"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "invalid_user_id", err)
			return
		}
		filter.UserID = id
	}
	rows, err := sh.board.List(c.Request.Context(), filter)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "list_failed", fmt.Errorf("failed to list submissions"))
		return
	}
	RespondOK(c, gin.H{"submissions": rows})
}

func (sh *SubmissionHandler) Pin(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_submission_id", err)
		return
	}
	var req struct {
		Pinned bool `json:"pinned"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if err := sh.board.SetPinned(c.Request.Context(), id, req.Pinned); err != nil {
		RespondError(c, http.StatusBadRequest, "pin_failed", err)
		return
	}
	RespondOK(c, gin.H{"pinned": req.Pinned})
}

func (sh *SubmissionHandler) Archive(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_submission_id", err)
		return
	}
	var req struct {
		Archived bool `json:"archived"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if err := sh.board.SetArchived(c.Request.Context(), id, req.Archived); err != nil {
		RespondError(c, http.StatusBadRequest, "archive_failed", err)
		return
	}
	RespondOK(c, gin.H{"archived": req.Archived})
}

func (sh *SubmissionHandler) Comment(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, http.StatusUnauthorized, "unauthenticated", errors.ErrUnauthorized)
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_submission_id", err)
		return
	}
	var req struct {
		Body string `json:"body"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Body == "" {
		RespondError(c, http.StatusBadRequest, "invalid_body", fmt.Errorf("comment body is required"))
		return
	}
	if err := sh.board.AddComment(c.Request.Context(), id, rd.UserID, req.Body); err != nil {
		RespondError(c, http.StatusBadRequest, "comment_failed", err)
		return
	}
	RespondOK(c, gin.H{"commented": true})
}
