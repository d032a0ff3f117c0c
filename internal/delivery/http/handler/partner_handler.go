package handler

import (
	"net/http"

	"spacelink-gateway/internal/usecase/partner"
	appErrors "spacelink-gateway/pkg/errors"
	"spacelink-gateway/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type PartnerHandler struct {
	service *partner.Service
}

func NewPartnerHandler(service *partner.Service) *PartnerHandler {
	return &PartnerHandler{service: service}
}

func (h *PartnerHandler) RegisterRoutes(router *gin.RouterGroup) {
	partners := router.Group("/partners")
	{
		partners.POST("", h.OnboardPartner)
		partners.GET("", h.ListPartners)
		partners.GET("/:id", h.GetPartner)
		partners.PATCH("/:id", h.UpdatePartner)
		partners.POST("/:id/suspend", h.SuspendPartner)
		partners.POST("/:id/activate", h.ActivatePartner)
		partners.GET("/:id/integration-status", h.IntegrationStatus)
		partners.POST("/:id/api-keys/generate", h.GenerateAPIKey)
		partners.GET("/:id/api-keys", h.ListAPIKeys)
		partners.POST("/:id/api-keys/:key_id/revoke", h.RevokeAPIKey)
	}
}

func (h *PartnerHandler) OnboardPartner(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var req partner.OnboardPartnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	created, err := h.service.OnboardPartner(c.Request.Context(), p, &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, created)
}

func (h *PartnerHandler) ListPartners(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	partners, err := h.service.ListPartners(c.Request.Context(), p, c.Query("organization"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, partners)
}

func (h *PartnerHandler) GetPartner(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	found, err := h.service.GetPartner(c.Request.Context(), p, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, found)
}

func (h *PartnerHandler) UpdatePartner(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var req partner.UpdatePartnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	updated, err := h.service.UpdatePartner(c.Request.Context(), p, c.Param("id"), &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, updated)
}

func (h *PartnerHandler) SuspendPartner(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	updated, err := h.service.SuspendPartner(c.Request.Context(), p, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, updated)
}

func (h *PartnerHandler) ActivatePartner(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	updated, err := h.service.ActivatePartner(c.Request.Context(), p, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, updated)
}

func (h *PartnerHandler) IntegrationStatus(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	status, err := h.service.IntegrationStatus(c.Request.Context(), p, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, status)
}

// GenerateAPIKey issues a key for ?device_id=. The plaintext key appears in this
// response only.
func (h *PartnerHandler) GenerateAPIKey(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	key, err := h.service.GenerateAPIKey(c.Request.Context(), p, c.Param("id"), c.Query("device_id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, key)
}

func (h *PartnerHandler) ListAPIKeys(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	keys, err := h.service.ListAPIKeys(c.Request.Context(), p, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, keys)
}

func (h *PartnerHandler) RevokeAPIKey(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	keyID, err := uuid.Parse(c.Param("key_id"))
	if err != nil {
		respondWithError(c, appErrors.NewValidationError("key_id", "Invalid API key ID"))
		return
	}

	if err := h.service.RevokeAPIKey(c.Request.Context(), p, c.Param("id"), keyID); err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, gin.H{"key_id": keyID, "revoked": true})
}
