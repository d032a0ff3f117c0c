package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	domainTelemetry "spacelink-gateway/internal/domain/telemetry"
	"spacelink-gateway/internal/infrastructure/database/postgres/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var latestColumns = []string{
	"timestamp", "organization", "latency_ms", "packet_loss_percent", "signal_strength",
	"throughput_mbps", "jitter_ms", "latitude", "longitude", "status",
	"firmware_version", "error_message", "received_at",
}

// TelemetryRepository implements domainTelemetry.Repository on Postgres.
type TelemetryRepository struct {
	db *DB
}

func NewTelemetryRepository(db *DB) *TelemetryRepository {
	return &TelemetryRepository{db: db}
}

// Append inserts the reading and advances the latest projection in one
// transaction. The projection row only changes when the incoming timestamp is
// strictly newer than the stored one.
func (r *TelemetryRepository) Append(ctx context.Context, reading *domainTelemetry.Reading) (bool, error) {
	inserted := false

	err := r.db.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(toReadingModel(reading))
		if result.Error != nil {
			return fmt.Errorf("failed to insert reading: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return nil
		}
		inserted = true

		latest := models.LatestReadingModel(*toReadingModel(reading))
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "device_id"}},
			DoUpdates: clause.AssignmentColumns(latestColumns),
			Where: clause.Where{Exprs: []clause.Expression{
				clause.Expr{SQL: `"device_latest_readings"."timestamp" < excluded."timestamp"`},
			}},
		}).Create(&latest).Error
		if err != nil {
			return fmt.Errorf("failed to update latest reading: %w", err)
		}
		return nil
	})
	if err != nil {
		return false, err
	}

	return inserted, nil
}

func (r *TelemetryRepository) Latest(ctx context.Context, deviceID string) (*domainTelemetry.Reading, error) {
	var dbModel models.LatestReadingModel
	err := r.db.DB.WithContext(ctx).
		Where("device_id = ?", deviceID).
		First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainTelemetry.ErrNoReadings
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest reading: %w", err)
	}

	m := models.ReadingModel(dbModel)
	return toReadingEntity(&m), nil
}

func (r *TelemetryRepository) LatestByOrganization(ctx context.Context, organization string) ([]*domainTelemetry.Reading, error) {
	var dbModels []models.LatestReadingModel

	db := r.db.DB.WithContext(ctx).Model(&models.LatestReadingModel{})
	if organization != "" {
		db = db.Where("organization = ?", organization)
	}
	if err := db.Order("device_id ASC").Find(&dbModels).Error; err != nil {
		return nil, fmt.Errorf("failed to list latest readings: %w", err)
	}

	readings := make([]*domainTelemetry.Reading, len(dbModels))
	for i := range dbModels {
		m := models.ReadingModel(dbModels[i])
		readings[i] = toReadingEntity(&m)
	}
	return readings, nil
}

func (r *TelemetryRepository) Window(ctx context.Context, deviceIDs []string, from, to time.Time) ([]*domainTelemetry.Reading, error) {
	if len(deviceIDs) == 0 {
		return []*domainTelemetry.Reading{}, nil
	}

	var dbModels []models.ReadingModel
	err := r.db.DB.WithContext(ctx).
		Where("device_id IN ? AND timestamp >= ? AND timestamp <= ?", deviceIDs, from, to).
		Order("timestamp ASC").
		Find(&dbModels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query reading window: %w", err)
	}

	return toReadingEntities(dbModels), nil
}

func (r *TelemetryRepository) Query(ctx context.Context, filter domainTelemetry.Filter) ([]*domainTelemetry.Reading, error) {
	var dbModels []models.ReadingModel

	db := applyReadingFilter(r.db.DB.WithContext(ctx).Model(&models.ReadingModel{}), filter).
		Order("timestamp DESC")
	if filter.Limit > 0 {
		db = db.Limit(filter.Limit)
	}

	if err := db.Find(&dbModels).Error; err != nil {
		return nil, fmt.Errorf("failed to query readings: %w", err)
	}

	return toReadingEntities(dbModels), nil
}

func (r *TelemetryRepository) Count(ctx context.Context, filter domainTelemetry.Filter) (int64, error) {
	var total int64
	err := applyReadingFilter(r.db.DB.WithContext(ctx).Model(&models.ReadingModel{}), filter).
		Count(&total).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count readings: %w", err)
	}
	return total, nil
}

func applyReadingFilter(db *gorm.DB, filter domainTelemetry.Filter) *gorm.DB {
	if filter.Organization != "" {
		db = db.Where("organization = ?", filter.Organization)
	}
	if len(filter.DeviceIDs) > 0 {
		db = db.Where("device_id IN ?", filter.DeviceIDs)
	}
	if filter.Status != nil {
		db = db.Where("status = ?", string(*filter.Status))
	}
	if filter.Start != nil {
		db = db.Where("timestamp >= ?", *filter.Start)
	}
	if filter.End != nil {
		db = db.Where("timestamp <= ?", *filter.End)
	}
	return db
}

func toReadingModel(r *domainTelemetry.Reading) *models.ReadingModel {
	return &models.ReadingModel{
		DeviceID:          r.DeviceID,
		Timestamp:         r.Timestamp,
		Organization:      r.Organization,
		LatencyMs:         r.LatencyMs,
		PacketLossPercent: r.PacketLossPercent,
		SignalStrength:    r.SignalStrength,
		ThroughputMbps:    r.ThroughputMbps,
		JitterMs:          r.JitterMs,
		Latitude:          r.Latitude,
		Longitude:         r.Longitude,
		Status:            string(r.Status),
		FirmwareVersion:   r.FirmwareVersion,
		ErrorMessage:      r.ErrorMessage,
		ReceivedAt:        r.ReceivedAt,
	}
}

func toReadingEntity(m *models.ReadingModel) *domainTelemetry.Reading {
	return &domainTelemetry.Reading{
		DeviceID:          m.DeviceID,
		Organization:      m.Organization,
		Timestamp:         m.Timestamp.UTC(),
		LatencyMs:         m.LatencyMs,
		PacketLossPercent: m.PacketLossPercent,
		SignalStrength:    m.SignalStrength,
		ThroughputMbps:    m.ThroughputMbps,
		JitterMs:          m.JitterMs,
		Latitude:          m.Latitude,
		Longitude:         m.Longitude,
		Status:            domainTelemetry.Status(m.Status),
		FirmwareVersion:   m.FirmwareVersion,
		ErrorMessage:      m.ErrorMessage,
		ReceivedAt:        m.ReceivedAt.UTC(),
	}
}

func toReadingEntities(dbModels []models.ReadingModel) []*domainTelemetry.Reading {
	readings := make([]*domainTelemetry.Reading, len(dbModels))
	for i := range dbModels {
		readings[i] = toReadingEntity(&dbModels[i])
	}
	return readings
}
