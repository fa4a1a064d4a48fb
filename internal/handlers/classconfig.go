package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fluxclass/fluxclass-backend/internal/services"
	"github.com/fluxclass/fluxclass-backend/internal/telemetry"
)

type ClassConfigHandler struct {
	configs services.ClassConfigService
}

func NewClassConfigHandler(configs services.ClassConfigService) *ClassConfigHandler {
	return &ClassConfigHandler{configs: configs}
}

// Get returns the effective thresholds for one class: stored overrides with
// unset fields filled from the baseline policy.
func (ch *ClassConfigHandler) Get(c *gin.Context) {
	classType := c.Param("classType")
	thresholds, err := ch.configs.Effective(c.Request.Context(), classType)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_class", err)
		return
	}
	RespondOK(c, gin.H{"class_type": classType, "thresholds": thresholds})
}

func (ch *ClassConfigHandler) List(c *gin.Context) {
	rows, err := ch.configs.List(c.Request.Context())
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "list_failed", fmt.Errorf("failed to list class configs"))
		return
	}
	RespondOK(c, gin.H{"configs": rows})
}

func (ch *ClassConfigHandler) Put(c *gin.Context) {
	classType := c.Param("classType")
	var req telemetry.Thresholds
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	row, err := ch.configs.Put(c.Request.Context(), classType, req)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "update_failed", err)
		return
	}
	RespondOK(c, gin.H{"config": row})
}
