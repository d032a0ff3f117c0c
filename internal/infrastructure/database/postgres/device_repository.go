package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	domainDevice "spacelink-gateway/internal/domain/device"
	"spacelink-gateway/internal/infrastructure/database/postgres/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DeviceRepository implements domainDevice.Repository
type DeviceRepository struct {
	db *DB
}

// NewDeviceRepository creates a new device repository
func NewDeviceRepository(db *DB) *DeviceRepository {
	return &DeviceRepository{db: db}
}

// CreateIfAbsent relies on the primary key: concurrent first submissions for the
// same device insert at most one row.
func (r *DeviceRepository) CreateIfAbsent(ctx context.Context, d *domainDevice.Device) (*domainDevice.Device, bool, error) {
	now := time.Now().UTC()
	if d.CreatedAt.IsZero() {
		d.CreatedAt = now
	}
	d.UpdatedAt = d.CreatedAt
	if d.Status == "" {
		d.Status = domainDevice.StatusActive
	}

	dbModel := toDeviceModel(d)
	result := r.db.DB.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(dbModel)
	if result.Error != nil {
		return nil, false, fmt.Errorf("failed to create device: %w", result.Error)
	}

	stored, err := r.GetByID(ctx, d.ID)
	if err != nil {
		return nil, false, err
	}

	return stored, result.RowsAffected == 1, nil
}

func (r *DeviceRepository) GetByID(ctx context.Context, deviceID string) (*domainDevice.Device, error) {
	var dbModel models.DeviceModel
	err := r.db.DB.WithContext(ctx).
		Where("id = ?", deviceID).
		First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainDevice.ErrDeviceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get device: %w", err)
	}

	return toDeviceEntity(&dbModel), nil
}

func (r *DeviceRepository) List(ctx context.Context, organization string) ([]*domainDevice.Device, error) {
	var dbModels []models.DeviceModel

	db := r.db.DB.WithContext(ctx).Model(&models.DeviceModel{})
	if organization != "" {
		db = db.Where("organization = ?", organization)
	}

	if err := db.Order("id ASC").Find(&dbModels).Error; err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}

	devices := make([]*domainDevice.Device, len(dbModels))
	for i := range dbModels {
		devices[i] = toDeviceEntity(&dbModels[i])
	}
	return devices, nil
}

func (r *DeviceRepository) Deactivate(ctx context.Context, deviceID string) error {
	result := r.db.DB.WithContext(ctx).
		Model(&models.DeviceModel{}).
		Where("id = ?", deviceID).
		Updates(map[string]interface{}{
			"status":     string(domainDevice.StatusDeactivated),
			"updated_at": time.Now().UTC(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to deactivate device: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainDevice.ErrDeviceNotFound
	}

	return nil
}

func (r *DeviceRepository) UpdateLastSeen(ctx context.Context, deviceID string, at time.Time) error {
	err := r.db.DB.WithContext(ctx).
		Model(&models.DeviceModel{}).
		Where("id = ? AND (last_seen_at IS NULL OR last_seen_at < ?)", deviceID, at).
		Update("last_seen_at", at).Error
	if err != nil {
		return fmt.Errorf("failed to update last seen: %w", err)
	}
	return nil
}

func toDeviceModel(d *domainDevice.Device) *models.DeviceModel {
	return &models.DeviceModel{
		ID:           d.ID,
		Organization: d.Organization,
		Name:         d.Name,
		Latitude:     d.Latitude,
		Longitude:    d.Longitude,
		Status:       string(d.Status),
		LastSeenAt:   d.LastSeenAt,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

func toDeviceEntity(m *models.DeviceModel) *domainDevice.Device {
	return &domainDevice.Device{
		ID:           m.ID,
		Organization: m.Organization,
		Name:         m.Name,
		Latitude:     m.Latitude,
		Longitude:    m.Longitude,
		Status:       domainDevice.Status(m.Status),
		LastSeenAt:   m.LastSeenAt,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}
