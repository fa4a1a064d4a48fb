package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// WhitelistEntry is the provisioning record an admin creates ahead of a
// student or teacher signing in. Bootstrap reads it to derive role and
// enrollment; it never writes back.
type WhitelistEntry struct {
	ID        uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	Email     string                      `gorm:"uniqueIndex;not null;column:email" json:"email"`
	Role      string                      `gorm:"column:role;not null;default:'student'" json:"role"`
	Classes   datatypes.JSONSlice[string] `gorm:"column:classes" json:"classes"`
	CreatedAt time.Time                   `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time                   `gorm:"not null" json:"updated_at"`
}

func (WhitelistEntry) TableName() string { return "whitelist_entry" }
