package handler

import (
	"net/http"
	"time"

	"spacelink-gateway/internal/config"
	"spacelink-gateway/internal/logger"
	"spacelink-gateway/pkg/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HealthChecker pings the storage backend.
type HealthChecker interface {
	Health() error
}

type SystemHandler struct {
	storage HealthChecker
	cfg     *config.Config
}

func NewSystemHandler(storage HealthChecker, cfg *config.Config) *SystemHandler {
	return &SystemHandler{storage: storage, cfg: cfg}
}

// Liveness reports healthy while storage answers a ping.
func (h *SystemHandler) Liveness(c *gin.Context) {
	if err := h.storage.Health(); err != nil {
		logger.Warn("Storage health check failed", zap.Error(err))
		utils.SuccessResponse(c, http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
		return
	}

	utils.SuccessResponse(c, http.StatusOK, gin.H{"status": "healthy"})
}

func (h *SystemHandler) Status(c *gin.Context) {
	utils.SuccessResponse(c, http.StatusOK, gin.H{
		"service":     "spacelink-gateway",
		"version":     h.cfg.Server.Version,
		"environment": h.cfg.Server.Environment,
		"storage":     h.cfg.Storage.Driver,
		"time":        time.Now().UTC(),
	})
}
