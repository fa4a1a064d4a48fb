package types

import (
	"time"

	"github.com/google/uuid"
)

// QuestionAward is the durable proof that XP for one bank question was
// already paid to one student on one resource. The unique key is what makes
// the award protocol safe under concurrent duplicate calls: the conditional
// insert on (user_id, resource_id, question_id) lets exactly one caller
// through. Rows are immutable once written.
type QuestionAward struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_award_key" json:"user_id"`
	User       *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	ResourceID string    `gorm:"column:resource_id;not null;uniqueIndex:idx_award_key" json:"resource_id"`
	QuestionID string    `gorm:"column:question_id;not null;uniqueIndex:idx_award_key" json:"question_id"`
	XPAmount   int       `gorm:"column:xp_amount;not null" json:"xp_amount"`
	ClassType  string    `gorm:"column:class_type" json:"class_type"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
}

func (QuestionAward) TableName() string { return "question_award" }
