package handler

import (
	"net/http"

	"spacelink-gateway/internal/usecase/health"
	"spacelink-gateway/internal/usecase/network"
	"spacelink-gateway/internal/usecase/sla"
	"spacelink-gateway/pkg/utils"

	"github.com/gin-gonic/gin"
)

type NetworkHandler struct {
	service   *network.Service
	scorer    *health.Scorer
	evaluator *sla.Evaluator
}

func NewNetworkHandler(service *network.Service, scorer *health.Scorer, evaluator *sla.Evaluator) *NetworkHandler {
	return &NetworkHandler{service: service, scorer: scorer, evaluator: evaluator}
}

func (h *NetworkHandler) RegisterRoutes(router *gin.RouterGroup) {
	networks := router.Group("/networks")
	{
		networks.POST("", h.CreateNetwork)
		networks.GET("", h.ListNetworks)
		networks.GET("/:id", h.GetNetwork)
		networks.PATCH("/:id", h.UpdateNetwork)
		networks.DELETE("/:id", h.DeleteNetwork)
		networks.POST("/:id/devices", h.AddDevice)
		networks.DELETE("/:id/devices/:device_id", h.RemoveDevice)
		networks.GET("/:id/health", h.Health)
		networks.GET("/:id/sla", h.SLA)
	}
}

func (h *NetworkHandler) CreateNetwork(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var req network.CreateNetworkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	n, err := h.service.CreateNetwork(c.Request.Context(), p, &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, n)
}

func (h *NetworkHandler) ListNetworks(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	networks, err := h.service.ListNetworks(c.Request.Context(), p, c.Query("organization"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, networks)
}

func (h *NetworkHandler) GetNetwork(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	n, err := h.service.GetNetwork(c.Request.Context(), p, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, n)
}

func (h *NetworkHandler) UpdateNetwork(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var req network.UpdateNetworkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	n, err := h.service.UpdateNetwork(c.Request.Context(), p, c.Param("id"), &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, n)
}

func (h *NetworkHandler) DeleteNetwork(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	if err := h.service.DeleteNetwork(c.Request.Context(), p, c.Param("id")); err != nil {
		respondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *NetworkHandler) AddDevice(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var req network.AddDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	n, err := h.service.AddDevice(c.Request.Context(), p, c.Param("id"), &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, n)
}

func (h *NetworkHandler) RemoveDevice(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	n, err := h.service.RemoveDevice(c.Request.Context(), p, c.Param("id"), c.Param("device_id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, n)
}

func (h *NetworkHandler) Health(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	hours, err := hoursParam(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	score, err := h.scorer.ScoreNetwork(c.Request.Context(), p, c.Param("id"), hours)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, score)
}

func (h *NetworkHandler) SLA(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var req sla.WindowRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondQueryError(c, err)
		return
	}

	report, err := h.evaluator.Evaluate(c.Request.Context(), p, c.Param("id"), req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, report)
}
