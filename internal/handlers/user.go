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

type UserHandler struct {
	userRepo repos.UserRepo
}

func NewUserHandler(userRepo repos.UserRepo) *UserHandler {
	return &UserHandler{userRepo: userRepo}
}

// GetMe returns the caller's profile plus the gamification read model: total
// XP, flux balance, per-class XP and the derived level.
func (uh *UserHandler) GetMe(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, http.StatusUnauthorized, "unauthenticated", errors.ErrUnauthorized)
		return
	}

	users, err := uh.userRepo.GetByIDs(c.Request.Context(), nil, []uuid.UUID{rd.UserID})
	if err != nil || len(users) == 0 {
		RespondError(c, http.StatusNotFound, "user_not_found", errors.ErrNotFound)
		return
	}
	user := users[0]

	classRows, err := uh.userRepo.GetClassXP(c.Request.Context(), nil, rd.UserID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "class_xp_failed", fmt.Errorf("failed to load class xp"))
		return
	}
	classXP := make(map[string]int, len(classRows))
	for _, row := range classRows {
		classXP[row.ClassType] = row.XP
	}

	level := services.Level(user.XP)
	RespondOK(c, gin.H{
		"user":          user,
		"class_xp":      classXP,
		"level":         level,
		"next_level_xp": services.XPForLevel(level + 1),
	})
}
