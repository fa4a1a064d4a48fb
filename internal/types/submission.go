package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/fluxclass/fluxclass-backend/internal/telemetry"
)

// PrivateComment is a teacher-only annotation on a submission.
type PrivateComment struct {
	AuthorID  uuid.UUID `json:"author_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// Submission is one engagement record per (student, resource) session. The
// classification and score are assigned once at creation; the only later
// client-side mutations are the admin annotations (pin/archive/comments).
type Submission struct {
	ID              uuid.UUID                           `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          uuid.UUID                           `gorm:"type:uuid;not null;index" json:"user_id"`
	User            *User                               `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	UserName        string                              `gorm:"column:user_name" json:"user_name"`
	ResourceID      string                              `gorm:"column:resource_id;not null;index" json:"resource_id"`
	ResourceTitle   string                              `gorm:"column:resource_title" json:"resource_title"`
	ClassType       string                              `gorm:"column:class_type;index" json:"class_type"`
	Metrics         telemetry.Metrics                   `gorm:"embedded;embeddedPrefix:metric_" json:"metrics"`
	Status          telemetry.Status                    `gorm:"column:status;not null;index" json:"status"`
	Score           int                                 `gorm:"column:score;not null;default:0" json:"score"`
	SubmittedAt     time.Time                           `gorm:"column:submitted_at;not null" json:"submitted_at"`
	IsPinned        bool                                `gorm:"column:is_pinned;not null;default:false" json:"is_pinned"`
	IsArchived      bool                                `gorm:"column:is_archived;not null;default:false" json:"is_archived"`
	PrivateComments datatypes.JSONSlice[PrivateComment] `gorm:"column:private_comments" json:"private_comments"`
	CreatedAt       time.Time                           `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time                           `gorm:"not null" json:"updated_at"`
	DeletedAt       gorm.DeletedAt                      `gorm:"index" json:"deleted_at,omitempty"`
}

func (Submission) TableName() string { return "submission" }
