package entities

import (
	"time"

	"gorm.io/datatypes"
)

// DefaultTokenProfile is the single versioned row holding the system-wide
// default model-ID list. One row per scope; the deployment uses exactly one
// scope ("global").
type DefaultTokenProfile struct {
	Scope     string         `gorm:"type:varchar(32);primaryKey"`
	ModelIDs  datatypes.JSON `gorm:"type:jsonb;not null"`
	Version   int64          `gorm:"not null"`
	UpdatedBy string         `gorm:"type:varchar(128)"`
	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
}

func (DefaultTokenProfile) TableName() string {
	return "default_token_profiles"
}
