package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fluxclass/fluxclass-backend/internal/pkg/errors"
	"github.com/fluxclass/fluxclass-backend/internal/requestdata"
	"github.com/fluxclass/fluxclass-backend/internal/services"
	"github.com/fluxclass/fluxclass-backend/internal/types"
)

type UnreadHandler struct {
	unread services.UnreadService
}

func NewUnreadHandler(unread services.UnreadService) *UnreadHandler {
	return &UnreadHandler{unread: unread}
}

func (uh *UnreadHandler) ListUnread(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, http.StatusUnauthorized, "unauthenticated", errors.ErrUnauthorized)
		return
	}
	channels, err := uh.unread.UnreadChannels(c.Request.Context(), rd.UserID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "unread_failed", fmt.Errorf("failed to load unread channels"))
		return
	}
	if channels == nil {
		channels = []string{}
	}
	RespondOK(c, gin.H{"unread": channels})
}

func (uh *UnreadHandler) MarkRead(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, http.StatusUnauthorized, "unauthenticated", errors.ErrUnauthorized)
		return
	}
	channelID := c.Param("channelID")
	if err := uh.unread.MarkRead(c.Request.Context(), rd.UserID, channelID); err != nil {
		RespondError(c, http.StatusBadRequest, "mark_read_failed", err)
		return
	}
	RespondOK(c, gin.H{"marked": true})
}

func (uh *UnreadHandler) PostMessage(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, http.StatusUnauthorized, "unauthenticated", errors.ErrUnauthorized)
		return
	}
	var req struct {
		ChannelID   string `json:"channel_id"`
		ChannelType string `json:"channel_type"`
		ClassType   string `json:"class_type"`
		GroupID     string `json:"group_id"`
		Body        string `json:"body"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", fmt.Errorf("invalid request body"))
		return
	}
	msg := &types.Message{
		ChannelID:   req.ChannelID,
		ChannelType: req.ChannelType,
		ClassType:   req.ClassType,
		GroupID:     req.GroupID,
		AuthorID:    rd.UserID,
		Body:        req.Body,
	}
	if err := uh.unread.PostMessage(c.Request.Context(), msg); err != nil {
		RespondError(c, http.StatusBadRequest, "post_failed", err)
		return
	}
	RespondOK(c, gin.H{"message": msg})
}
