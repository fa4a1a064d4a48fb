package types

import (
	"time"

	"github.com/google/uuid"

	"github.com/fluxclass/fluxclass-backend/internal/telemetry"
)

// ClassConfig holds the per-class policy a teacher can author. Threshold
// fields left at zero fall back to the embedded baseline policy at
// classification time.
type ClassConfig struct {
	ID         uuid.UUID            `gorm:"type:uuid;primaryKey" json:"id"`
	ClassType  string               `gorm:"column:class_type;uniqueIndex;not null" json:"class_type"`
	Name       string               `gorm:"column:name" json:"name"`
	Thresholds telemetry.Thresholds `gorm:"embedded;embeddedPrefix:thr_" json:"thresholds"`
	CreatedAt  time.Time            `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time            `gorm:"not null" json:"updated_at"`
}

func (ClassConfig) TableName() string { return "class_config" }
