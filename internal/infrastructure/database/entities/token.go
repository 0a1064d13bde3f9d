package entities

import (
	"time"

	"gorm.io/datatypes"
)

// Token represents persisted API token metadata. The secret itself is never
// stored; only its hash plus a display suffix.
type Token struct {
	ID             string         `gorm:"type:uuid;primaryKey"`
	Name           string         `gorm:"type:varchar(128);not null"`
	Prefix         string         `gorm:"type:varchar(16);not null"`
	Suffix         string         `gorm:"type:varchar(8);not null"`
	Hash           string         `gorm:"type:char(64);uniqueIndex;not null"`
	EligibleModels datatypes.JSON `gorm:"type:jsonb"`
	Environment    string         `gorm:"type:varchar(32)"`
	CreatedBy      string         `gorm:"type:varchar(128)"`
	CreatedAt      time.Time      `gorm:"autoCreateTime"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime"`
}

func (Token) TableName() string {
	return "tokens"
}
