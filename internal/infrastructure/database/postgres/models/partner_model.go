package models

import (
	"time"
)

// PartnerModel represents the database model for Partners.
type PartnerModel struct {
	ID               string    `gorm:"type:varchar(64);primaryKey"`
	Organization     string    `gorm:"type:varchar(128);not null;index"`
	Name             string    `gorm:"type:varchar(255);not null"`
	PartnerType      string    `gorm:"type:varchar(20);not null"`
	Tier             string    `gorm:"type:varchar(20);not null"`
	ContactEmail     *string   `gorm:"type:varchar(255)"`
	APIAccessEnabled bool      `gorm:"not null"`
	Status           string    `gorm:"type:varchar(20);not null"`
	CreatedAt        time.Time `gorm:"not null"`
	UpdatedAt        time.Time `gorm:"not null"`
}

func (PartnerModel) TableName() string {
	return "partners"
}

// All lists every model for migration.
func All() []interface{} {
	return []interface{}{
		&AccountModel{},
		&APIKeyModel{},
		&DeviceModel{},
		&ReadingModel{},
		&LatestReadingModel{},
		&NetworkModel{},
		&NetworkDeviceModel{},
		&PartnerModel{},
	}
}
