package handler

import (
	"net/http"

	"spacelink-gateway/internal/usecase/device"
	"spacelink-gateway/pkg/utils"

	"github.com/gin-gonic/gin"
)

type DeviceHandler struct {
	service *device.Service
}

func NewDeviceHandler(service *device.Service) *DeviceHandler {
	return &DeviceHandler{service: service}
}

func (h *DeviceHandler) RegisterRoutes(router *gin.RouterGroup) {
	devices := router.Group("/devices")
	{
		devices.POST("", h.RegisterDevice)
		devices.GET("", h.ListDevices)
		devices.GET("/:id", h.GetDevice)
		devices.POST("/:id/deactivate", h.DeactivateDevice)
	}
}

func (h *DeviceHandler) RegisterDevice(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var req device.RegisterDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	d, err := h.service.RegisterDevice(c.Request.Context(), p, &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, d)
}

func (h *DeviceHandler) GetDevice(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	d, err := h.service.GetDevice(c.Request.Context(), p, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, d)
}

func (h *DeviceHandler) ListDevices(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var filter device.DeviceFilterRequest
	if err := c.ShouldBindQuery(&filter); err != nil {
		respondQueryError(c, err)
		return
	}

	devices, err := h.service.ListDevices(c.Request.Context(), p, &filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, devices)
}

func (h *DeviceHandler) DeactivateDevice(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	d, err := h.service.DeactivateDevice(c.Request.Context(), p, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, d)
}
