package model

import (
	"time"

	"github.com/google/uuid"
)

// ExternalIdentityModel mirrors the 'external_identities' table.
// A provider subject id maps to one user and a user has at most one identity per provider.
type ExternalIdentityModel struct {
	ExternalID  string    `gorm:"type:varchar(255);primaryKey"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_external_identities_user_provider"`
	Provider    string    `gorm:"type:varchar(50);not null;uniqueIndex:idx_external_identities_user_provider"`
	DisplayName string    `gorm:"type:varchar(255)"`
	CreatedAt   time.Time
}

// TableName explicitly sets the table name for GORM.
func (ExternalIdentityModel) TableName() string {
	return "external_identities"
}
