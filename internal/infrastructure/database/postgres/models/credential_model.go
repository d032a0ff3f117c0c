package models

import (
	"time"

	"github.com/google/uuid"
)

// AccountModel represents the database model for password accounts.
type AccountModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Username     string    `gorm:"type:varchar(100);not null;uniqueIndex"`
	PasswordHash string    `gorm:"type:varchar(255);not null"`
	Organization string    `gorm:"type:varchar(128);not null;index"`
	Role         string    `gorm:"type:varchar(20);not null"`
	IsActive     bool      `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

func (AccountModel) TableName() string {
	return "accounts"
}

// APIKeyModel represents the database model for device API keys.
type APIKeyModel struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey"`
	KeyHash      string     `gorm:"type:char(64);not null;uniqueIndex"`
	KeyPrefix    string     `gorm:"type:varchar(32);not null"`
	DeviceID     string     `gorm:"type:varchar(128);not null;index"`
	Organization string     `gorm:"type:varchar(128);not null;index"`
	PartnerID    string     `gorm:"type:varchar(64);not null;index"`
	CreatedAt    time.Time  `gorm:"not null"`
	LastUsedAt   *time.Time `gorm:"type:timestamptz"`
	RevokedAt    *time.Time `gorm:"type:timestamptz"`
}

func (APIKeyModel) TableName() string {
	return "api_keys"
}
