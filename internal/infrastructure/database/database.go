package database

import (
	"context"
	"fmt"

	"spacelink-gateway/internal/config"
	domainCredential "spacelink-gateway/internal/domain/credential"
	domainDevice "spacelink-gateway/internal/domain/device"
	domainNetwork "spacelink-gateway/internal/domain/network"
	domainPartner "spacelink-gateway/internal/domain/partner"
	domainTelemetry "spacelink-gateway/internal/domain/telemetry"
	"spacelink-gateway/internal/infrastructure/database/memory"
	"spacelink-gateway/internal/infrastructure/database/postgres"
	"spacelink-gateway/internal/logger"

	"go.uber.org/zap"
)

// Repositories bundles every store the gateway needs.
type Repositories struct {
	Driver   string
	Accounts domainCredential.AccountRepository
	APIKeys  domainCredential.APIKeyRepository
	Devices  domainDevice.Repository
	Readings domainTelemetry.Repository
	Networks domainNetwork.Repository
	Partners domainPartner.Repository

	health func() error
	close  func() error
}

// Health pings the backing store.
func (r *Repositories) Health() error {
	if r.health == nil {
		return nil
	}
	return r.health()
}

func (r *Repositories) Close() error {
	if r.close == nil {
		return nil
	}
	return r.close()
}

// NewMemory returns process-local repositories.
func NewMemory() *Repositories {
	return &Repositories{
		Driver:   config.StorageMemory,
		Accounts: memory.NewAccountRepository(),
		APIKeys:  memory.NewAPIKeyRepository(),
		Devices:  memory.NewDeviceRepository(),
		Readings: memory.NewTelemetryRepository(),
		Networks: memory.NewNetworkRepository(),
		Partners: memory.NewPartnerRepository(),
	}
}

// NewPostgres returns gorm-backed repositories over db.
func NewPostgres(db *postgres.DB) *Repositories {
	return &Repositories{
		Driver:   config.StoragePostgres,
		Accounts: postgres.NewAccountRepository(db),
		APIKeys:  postgres.NewAPIKeyRepository(db),
		Devices:  postgres.NewDeviceRepository(db),
		Readings: postgres.NewTelemetryRepository(db),
		Networks: postgres.NewNetworkRepository(db),
		Partners: postgres.NewPartnerRepository(db),
		health:   db.Health,
		close:    db.Close,
	}
}

// Open selects the storage driver from configuration.
func Open(ctx context.Context, cfg *config.Config) (*Repositories, error) {
	switch cfg.Storage.Driver {
	case config.StorageMemory:
		logger.Warn("Using in-memory storage, data is lost on restart")
		return NewMemory(), nil
	case config.StoragePostgres:
		db, err := postgres.NewDB(cfg)
		if err != nil {
			return nil, err
		}
		if cfg.Storage.AutoMigrate {
			if err := db.Migrate(ctx); err != nil {
				_ = db.Close()
				return nil, err
			}
		}
		logger.Info("Using postgres storage", zap.String("database", cfg.Database.DBName))
		return NewPostgres(db), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
