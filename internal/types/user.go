package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
	RoleAdmin   = "admin"
)

type User struct {
	ID            uuid.UUID                  `gorm:"type:uuid;primaryKey" json:"id"`
	Email         string                     `gorm:"uniqueIndex;not null;column:email" json:"email"`
	Password      string                     `gorm:"not null;column:password" json:"-"`
	DisplayName   string                     `gorm:"column:display_name" json:"display_name"`
	Role          string                     `gorm:"column:role;not null;default:'student'" json:"role"`
	IsAdmin       bool                       `gorm:"column:is_admin;not null;default:false" json:"is_admin"`
	IsWhitelisted bool                       `gorm:"column:is_whitelisted;not null;default:false" json:"is_whitelisted"`
	Classes       datatypes.JSONSlice[string] `gorm:"column:classes" json:"classes"`
	Groups        datatypes.JSONSlice[string] `gorm:"column:groups" json:"groups"`
	XP            int                        `gorm:"column:xp;not null;default:0" json:"xp"`
	Currency      int                        `gorm:"column:currency;not null;default:0" json:"currency"`
	LastLoginAt   *time.Time                 `gorm:"column:last_login_at" json:"last_login_at,omitempty"`
	CreatedAt     time.Time                  `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time                  `gorm:"not null" json:"updated_at"`
	DeletedAt     gorm.DeletedAt             `gorm:"index" json:"deleted_at,omitempty"`
}

func (User) TableName() string { return "user" }

// UserClassXP is the per-class slice of the XP ledger. One row per
// (user, class); credits are applied as atomic increments, never
// read-modify-write.
type UserClassXP struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index:idx_user_class,unique" json:"user_id"`
	User      *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	ClassType string    `gorm:"column:class_type;not null;index:idx_user_class,unique" json:"class_type"`
	XP        int       `gorm:"column:xp;not null;default:0" json:"xp"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (UserClassXP) TableName() string { return "user_class_xp" }
