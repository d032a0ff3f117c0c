package models

import (
	"time"
)

// ReadingModel is one row of the append-only readings table. The composite
// primary key (device_id, timestamp) is the deduplication key.
type ReadingModel struct {
	DeviceID          string    `gorm:"type:varchar(128);primaryKey"`
	Timestamp         time.Time `gorm:"type:timestamptz;primaryKey"`
	Organization      string    `gorm:"type:varchar(128);not null;index:idx_readings_org_ts,priority:1"`
	LatencyMs         float64   `gorm:"type:double precision;not null"`
	PacketLossPercent float64   `gorm:"type:double precision;not null"`
	SignalStrength    *float64  `gorm:"type:double precision"`
	ThroughputMbps    *float64  `gorm:"type:double precision"`
	JitterMs          *float64  `gorm:"type:double precision"`
	Latitude          *float64  `gorm:"type:double precision"`
	Longitude         *float64  `gorm:"type:double precision"`
	Status            string    `gorm:"type:varchar(20);not null"`
	FirmwareVersion   *string   `gorm:"type:varchar(64)"`
	ErrorMessage      *string   `gorm:"type:text"`
	ReceivedAt        time.Time `gorm:"type:timestamptz;not null;index:idx_readings_org_ts,priority:2"`
}

func (ReadingModel) TableName() string {
	return "telemetry_readings"
}

// LatestReadingModel is the per-device latest reading projection.
type LatestReadingModel struct {
	DeviceID          string    `gorm:"type:varchar(128);primaryKey"`
	Timestamp         time.Time `gorm:"type:timestamptz;not null"`
	Organization      string    `gorm:"type:varchar(128);not null;index"`
	LatencyMs         float64   `gorm:"type:double precision;not null"`
	PacketLossPercent float64   `gorm:"type:double precision;not null"`
	SignalStrength    *float64  `gorm:"type:double precision"`
	ThroughputMbps    *float64  `gorm:"type:double precision"`
	JitterMs          *float64  `gorm:"type:double precision"`
	Latitude          *float64  `gorm:"type:double precision"`
	Longitude         *float64  `gorm:"type:double precision"`
	Status            string    `gorm:"type:varchar(20);not null"`
	FirmwareVersion   *string   `gorm:"type:varchar(64)"`
	ErrorMessage      *string   `gorm:"type:text"`
	ReceivedAt        time.Time `gorm:"type:timestamptz;not null"`
}

func (LatestReadingModel) TableName() string {
	return "device_latest_readings"
}
