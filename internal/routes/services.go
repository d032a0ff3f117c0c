package routes

import (
	"spacelink-gateway/internal/config"
	"spacelink-gateway/internal/infrastructure/database"
	"spacelink-gateway/internal/usecase/auth"
	"spacelink-gateway/internal/usecase/device"
	"spacelink-gateway/internal/usecase/health"
	"spacelink-gateway/internal/usecase/network"
	"spacelink-gateway/internal/usecase/partner"
	"spacelink-gateway/internal/usecase/sla"
	"spacelink-gateway/internal/usecase/telemetry"
)

// Services holds the use cases behind the HTTP and MQTT surfaces.
type Services struct {
	Auth      *auth.Service
	Telemetry *telemetry.Service
	Devices   *device.Service
	Networks  *network.Service
	Partners  *partner.Service
	Health    *health.Scorer
	SLA       *sla.Evaluator
}

func NewServices(cfg *config.Config, repos *database.Repositories) *Services {
	authService := auth.NewService(repos.Accounts, repos.APIKeys, repos.Devices, repos.Partners, cfg)

	return &Services{
		Auth:      authService,
		Telemetry: telemetry.NewService(repos.Readings, repos.Devices),
		Devices:   device.NewService(repos.Devices),
		Networks:  network.NewService(repos.Networks, repos.Devices),
		Partners:  partner.NewService(repos.Partners, repos.Devices, repos.Readings, authService),
		Health:    health.NewScorer(repos.Readings, repos.Devices, repos.Networks, health.PolicyFromConfig(cfg.Health)),
		SLA:       sla.NewEvaluator(repos.Readings, repos.Networks),
	}
}
