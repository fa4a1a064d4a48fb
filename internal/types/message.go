package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ChannelTypeClass = "class"
	ChannelTypeGroup = "group"
)

type Message struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ChannelID   string    `gorm:"column:channel_id;not null;index" json:"channel_id"`
	ChannelType string    `gorm:"column:channel_type;not null" json:"channel_type"`

	// ClassType for class channels, GroupID for group channels; the unread
	// aggregation checks the viewer's enrollment/membership against these.
	ClassType string         `gorm:"column:class_type" json:"class_type,omitempty"`
	GroupID   string         `gorm:"column:group_id" json:"group_id,omitempty"`
	AuthorID  uuid.UUID      `gorm:"type:uuid;not null;index" json:"author_id"`
	Body      string         `gorm:"column:body" json:"body"`
	CreatedAt time.Time      `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Message) TableName() string { return "message" }
