package models

import (
	"time"
)

// NetworkModel represents the database model for Networks.
type NetworkModel struct {
	ID                 string    `gorm:"type:varchar(64);primaryKey"`
	Organization       string    `gorm:"type:varchar(128);not null;index"`
	Name               string    `gorm:"type:varchar(255);not null"`
	Description        *string   `gorm:"type:text"`
	NetworkType        string    `gorm:"type:varchar(20);not null"`
	Status             string    `gorm:"type:varchar(20);not null"`
	SLAUptimeTarget    float64   `gorm:"type:double precision;not null"`
	SLALatencyTargetMs float64   `gorm:"type:double precision;not null"`
	CreatedAt          time.Time `gorm:"not null"`
	UpdatedAt          time.Time `gorm:"not null"`
}

func (NetworkModel) TableName() string {
	return "networks"
}

// NetworkDeviceModel is the network membership relation.
type NetworkDeviceModel struct {
	NetworkID string    `gorm:"type:varchar(64);primaryKey"`
	DeviceID  string    `gorm:"type:varchar(128);primaryKey;index"`
	AddedAt   time.Time `gorm:"not null"`
}

func (NetworkDeviceModel) TableName() string {
	return "network_devices"
}
