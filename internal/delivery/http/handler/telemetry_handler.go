package handler

import (
	"net/http"
	"strconv"

	"spacelink-gateway/internal/usecase/health"
	"spacelink-gateway/internal/usecase/telemetry"
	appErrors "spacelink-gateway/pkg/errors"
	"spacelink-gateway/pkg/utils"

	"github.com/gin-gonic/gin"
)

type TelemetryHandler struct {
	service *telemetry.Service
	scorer  *health.Scorer
}

func NewTelemetryHandler(service *telemetry.Service, scorer *health.Scorer) *TelemetryHandler {
	return &TelemetryHandler{service: service, scorer: scorer}
}

// RegisterDeviceRoutes mounts the submission endpoints. router must be
// authenticated by API key.
func (h *TelemetryHandler) RegisterDeviceRoutes(router *gin.RouterGroup) {
	router.POST("/telemetry/send", h.Send)
	router.POST("/telemetry/batch", h.SendBatch)
}

func (h *TelemetryHandler) RegisterRoutes(router *gin.RouterGroup) {
	t := router.Group("/telemetry")
	{
		t.GET("", h.Query)
		t.GET("/latest", h.Latest)
		t.GET("/stats/summary", h.Summary)
		t.GET("/devices/:id/latest", h.DeviceLatest)
		t.GET("/devices/:id/history", h.History)
		t.GET("/devices/:id/health", h.DeviceHealth)
	}
}

func (h *TelemetryHandler) Send(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var req telemetry.ReadingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	ack, err := h.service.Submit(c.Request.Context(), p, &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, ack)
}

func (h *TelemetryHandler) SendBatch(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var req telemetry.BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.service.SubmitBatch(c.Request.Context(), p, req.Telemetry)
	if err != nil {
		respondWithError(c, err)
		return
	}

	status := http.StatusOK
	if result.Accepted == 0 {
		status = http.StatusBadRequest
	} else if result.Rejected > 0 {
		status = http.StatusMultiStatus
	}
	utils.SuccessResponse(c, status, result)
}

func (h *TelemetryHandler) Latest(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	readings, err := h.service.Latest(c.Request.Context(), p, c.Query("organization"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, readings)
}

func (h *TelemetryHandler) Query(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var req telemetry.QueryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondQueryError(c, err)
		return
	}

	readings, err := h.service.Query(c.Request.Context(), p, &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, readings)
}

func (h *TelemetryHandler) Summary(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	summary, err := h.service.Summary(c.Request.Context(), p, c.Query("organization"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, summary)
}

func (h *TelemetryHandler) DeviceLatest(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	reading, err := h.service.DeviceLatest(c.Request.Context(), p, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, reading)
}

func (h *TelemetryHandler) History(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	hours, err := hoursParam(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	readings, err := h.service.History(c.Request.Context(), p, c.Param("id"), hours)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, readings)
}

func (h *TelemetryHandler) DeviceHealth(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	hours, err := hoursParam(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	score, err := h.scorer.ScoreDevice(c.Request.Context(), p, c.Param("id"), hours)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, score)
}

// hoursParam reads ?hours=N; absent means 0 so the service applies its default.
func hoursParam(c *gin.Context) (int, error) {
	raw := c.Query("hours")
	if raw == "" {
		return 0, nil
	}
	hours, err := strconv.Atoi(raw)
	if err != nil {
		return 0, appErrors.NewValidationError("hours", "hours must be an integer")
	}
	return hours, nil
}
