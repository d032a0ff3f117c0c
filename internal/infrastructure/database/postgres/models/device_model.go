package models

import (
	"time"
)

// DeviceModel represents the database model for Devices.
type DeviceModel struct {
	ID           string     `gorm:"type:varchar(128);primaryKey"`
	Organization string     `gorm:"type:varchar(128);not null;index"`
	Name         *string    `gorm:"type:varchar(255)"`
	Latitude     *float64   `gorm:"type:double precision"`
	Longitude    *float64   `gorm:"type:double precision"`
	Status       string     `gorm:"type:varchar(20);not null"`
	LastSeenAt   *time.Time `gorm:"type:timestamptz"`
	CreatedAt    time.Time  `gorm:"not null"`
	UpdatedAt    time.Time  `gorm:"not null"`
}

func (DeviceModel) TableName() string {
	return "devices"
}
