package network

import (
	"time"

	domainNetwork "spacelink-gateway/internal/domain/network"
)

type CreateNetworkRequest struct {
	Name               string   `json:"name" validate:"required,max=200"`
	Description        *string  `json:"description" validate:"omitempty,max=1000"`
	NetworkType        string   `json:"network_type" validate:"required,oneof=wan lan satellite hybrid"`
	Organization       string   `json:"organization" validate:"omitempty,max=128"`
	SLAUptimeTarget    *float64 `json:"sla_uptime_target" validate:"omitempty,gt=0,lte=100"`
	SLALatencyTargetMs *float64 `json:"sla_latency_target_ms" validate:"omitempty,gt=0"`
	DeviceIDs          []string `json:"device_ids" validate:"omitempty,max=1000,dive,required,max=128"`
}

// UpdateNetworkRequest carries the mutable fields; nil leaves a field unchanged.
type UpdateNetworkRequest struct {
	Name               *string  `json:"name" validate:"omitempty,min=1,max=200"`
	Description        *string  `json:"description" validate:"omitempty,max=1000"`
	Status             *string  `json:"status" validate:"omitempty,oneof=active inactive"`
	SLAUptimeTarget    *float64 `json:"sla_uptime_target" validate:"omitempty,gt=0,lte=100"`
	SLALatencyTargetMs *float64 `json:"sla_latency_target_ms" validate:"omitempty,gt=0"`
}

type AddDeviceRequest struct {
	DeviceID string `json:"device_id" validate:"required,max=128"`
}

type NetworkResponse struct {
	NetworkID          string    `json:"network_id"`
	Organization       string    `json:"organization"`
	Name               string    `json:"name"`
	Description        *string   `json:"description"`
	NetworkType        string    `json:"network_type"`
	Status             string    `json:"status"`
	SLAUptimeTarget    float64   `json:"sla_uptime_target"`
	SLALatencyTargetMs float64   `json:"sla_latency_target_ms"`
	DeviceIDs          []string  `json:"device_ids"`
	DeviceCount        int       `json:"device_count"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func ToNetworkResponse(n *domainNetwork.Network) *NetworkResponse {
	ids := n.DeviceIDs
	if ids == nil {
		ids = []string{}
	}
	return &NetworkResponse{
		NetworkID:          n.ID,
		Organization:       n.Organization,
		Name:               n.Name,
		Description:        n.Description,
		NetworkType:        string(n.Type),
		Status:             n.Status,
		SLAUptimeTarget:    n.SLAUptimeTarget,
		SLALatencyTargetMs: n.SLALatencyTargetMs,
		DeviceIDs:          ids,
		DeviceCount:        len(ids),
		CreatedAt:          n.CreatedAt,
		UpdatedAt:          n.UpdatedAt,
	}
}
