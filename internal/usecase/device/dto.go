package device

import (
	"time"

	domainDevice "spacelink-gateway/internal/domain/device"
)

type RegisterDeviceRequest struct {
	DeviceID     string   `json:"device_id" validate:"required,max=128"`
	Organization string   `json:"organization" validate:"omitempty,max=128"`
	Name         *string  `json:"name" validate:"omitempty,min=2,max=100"`
	Latitude     *float64 `json:"latitude" validate:"omitempty,min=-90,max=90"`
	Longitude    *float64 `json:"longitude" validate:"omitempty,min=-180,max=180"`
}

type DeviceFilterRequest struct {
	Organization string `form:"organization"`
	Status       string `form:"status" validate:"omitempty,oneof=active deactivated"`
	IsOnline     *bool  `form:"is_online"`
	Page         int    `form:"page" validate:"omitempty,min=1"`
	PageSize     int    `form:"page_size" validate:"omitempty,min=1,max=100"`
}

type DeviceResponse struct {
	DeviceID     string     `json:"device_id"`
	Organization string     `json:"organization"`
	Name         *string    `json:"name"`
	Latitude     *float64   `json:"latitude"`
	Longitude    *float64   `json:"longitude"`
	Status       string     `json:"status"`
	IsOnline     bool       `json:"is_online"`
	LastSeenAt   *time.Time `json:"last_seen_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

type DeviceListResponse struct {
	Devices    []DeviceResponse `json:"devices"`
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
	TotalPages int              `json:"total_pages"`
}

func ToDeviceResponse(d *domainDevice.Device, now time.Time) *DeviceResponse {
	return &DeviceResponse{
		DeviceID:     d.ID,
		Organization: d.Organization,
		Name:         d.Name,
		Latitude:     d.Latitude,
		Longitude:    d.Longitude,
		Status:       string(d.Status),
		IsOnline:     d.IsActive() && d.IsOnline(now),
		LastSeenAt:   d.LastSeenAt,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}
