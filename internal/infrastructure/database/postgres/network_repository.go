package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	domainNetwork "spacelink-gateway/internal/domain/network"
	"spacelink-gateway/internal/infrastructure/database/postgres/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NetworkRepository implements domainNetwork.Repository
type NetworkRepository struct {
	db *DB
}

func NewNetworkRepository(db *DB) *NetworkRepository {
	return &NetworkRepository{db: db}
}

func (r *NetworkRepository) Create(ctx context.Context, n *domainNetwork.Network) error {
	err := r.db.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(toNetworkModel(n)).Error; err != nil {
			if isDuplicateKey(err) {
				return domainNetwork.ErrNetworkAlreadyExists
			}
			return fmt.Errorf("failed to create network: %w", err)
		}

		if len(n.DeviceIDs) == 0 {
			return nil
		}
		members := make([]models.NetworkDeviceModel, len(n.DeviceIDs))
		for i, id := range n.DeviceIDs {
			members[i] = models.NetworkDeviceModel{NetworkID: n.ID, DeviceID: id, AddedAt: n.CreatedAt}
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&members).Error; err != nil {
			return fmt.Errorf("failed to add network members: %w", err)
		}
		return nil
	})
	return err
}

func (r *NetworkRepository) GetByID(ctx context.Context, networkID string) (*domainNetwork.Network, error) {
	var dbModel models.NetworkModel
	err := r.db.DB.WithContext(ctx).
		Where("id = ?", networkID).
		First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainNetwork.ErrNetworkNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get network: %w", err)
	}

	n := toNetworkEntity(&dbModel)
	if err := r.loadMembers(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

func (r *NetworkRepository) List(ctx context.Context, organization string) ([]*domainNetwork.Network, error) {
	var dbModels []models.NetworkModel

	db := r.db.DB.WithContext(ctx).Model(&models.NetworkModel{})
	if organization != "" {
		db = db.Where("organization = ?", organization)
	}
	if err := db.Order("created_at ASC").Find(&dbModels).Error; err != nil {
		return nil, fmt.Errorf("failed to list networks: %w", err)
	}

	networks := make([]*domainNetwork.Network, len(dbModels))
	for i := range dbModels {
		networks[i] = toNetworkEntity(&dbModels[i])
		if err := r.loadMembers(ctx, networks[i]); err != nil {
			return nil, err
		}
	}
	return networks, nil
}

func (r *NetworkRepository) Update(ctx context.Context, n *domainNetwork.Network) error {
	result := r.db.DB.WithContext(ctx).
		Model(&models.NetworkModel{}).
		Where("id = ?", n.ID).
		Updates(map[string]interface{}{
			"name":                  n.Name,
			"description":           n.Description,
			"status":                n.Status,
			"sla_uptime_target":     n.SLAUptimeTarget,
			"sla_latency_target_ms": n.SLALatencyTargetMs,
			"updated_at":            n.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update network: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainNetwork.ErrNetworkNotFound
	}
	return nil
}

func (r *NetworkRepository) Delete(ctx context.Context, networkID string) error {
	return r.db.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("network_id = ?", networkID).Delete(&models.NetworkDeviceModel{}).Error; err != nil {
			return fmt.Errorf("failed to delete network members: %w", err)
		}

		result := tx.Where("id = ?", networkID).Delete(&models.NetworkModel{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete network: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return domainNetwork.ErrNetworkNotFound
		}
		return nil
	})
}

func (r *NetworkRepository) AddDevice(ctx context.Context, networkID, deviceID string) error {
	if err := r.exists(ctx, networkID); err != nil {
		return err
	}

	member := &models.NetworkDeviceModel{NetworkID: networkID, DeviceID: deviceID, AddedAt: time.Now().UTC()}
	if err := r.db.DB.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(member).Error; err != nil {
		return fmt.Errorf("failed to add network member: %w", err)
	}
	return nil
}

func (r *NetworkRepository) RemoveDevice(ctx context.Context, networkID, deviceID string) error {
	if err := r.exists(ctx, networkID); err != nil {
		return err
	}

	result := r.db.DB.WithContext(ctx).
		Where("network_id = ? AND device_id = ?", networkID, deviceID).
		Delete(&models.NetworkDeviceModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to remove network member: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainNetwork.ErrMemberNotFound
	}
	return nil
}

func (r *NetworkRepository) exists(ctx context.Context, networkID string) error {
	var count int64
	err := r.db.DB.WithContext(ctx).
		Model(&models.NetworkModel{}).
		Where("id = ?", networkID).
		Count(&count).Error
	if err != nil {
		return fmt.Errorf("failed to check network: %w", err)
	}
	if count == 0 {
		return domainNetwork.ErrNetworkNotFound
	}
	return nil
}

func (r *NetworkRepository) loadMembers(ctx context.Context, n *domainNetwork.Network) error {
	var deviceIDs []string
	err := r.db.DB.WithContext(ctx).
		Model(&models.NetworkDeviceModel{}).
		Where("network_id = ?", n.ID).
		Order("device_id ASC").
		Pluck("device_id", &deviceIDs).Error
	if err != nil {
		return fmt.Errorf("failed to load network members: %w", err)
	}
	n.DeviceIDs = deviceIDs
	return nil
}

func toNetworkModel(n *domainNetwork.Network) *models.NetworkModel {
	return &models.NetworkModel{
		ID:                 n.ID,
		Organization:       n.Organization,
		Name:               n.Name,
		Description:        n.Description,
		NetworkType:        string(n.Type),
		Status:             n.Status,
		SLAUptimeTarget:    n.SLAUptimeTarget,
		SLALatencyTargetMs: n.SLALatencyTargetMs,
		CreatedAt:          n.CreatedAt,
		UpdatedAt:          n.UpdatedAt,
	}
}

func toNetworkEntity(m *models.NetworkModel) *domainNetwork.Network {
	return &domainNetwork.Network{
		ID:                 m.ID,
		Organization:       m.Organization,
		Name:               m.Name,
		Description:        m.Description,
		Type:               domainNetwork.Type(m.NetworkType),
		Status:             m.Status,
		SLAUptimeTarget:    m.SLAUptimeTarget,
		SLALatencyTargetMs: m.SLALatencyTargetMs,
		DeviceIDs:          []string{},
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}
