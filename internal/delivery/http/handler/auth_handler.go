package handler

import (
	"net/http"

	"spacelink-gateway/internal/middleware"
	"spacelink-gateway/internal/usecase/auth"
	"spacelink-gateway/pkg/utils"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	service *auth.Service
}

func NewAuthHandler(service *auth.Service) *AuthHandler {
	return &AuthHandler{service: service}
}

func (h *AuthHandler) RegisterPublicRoutes(router *gin.RouterGroup) {
	router.POST("/auth/token", h.IssueToken)
}

func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/auth/me", h.Me)

	users := router.Group("/users")
	users.Use(middleware.AdminOnly())
	{
		users.POST("", h.CreateAccount)
		users.GET("", h.ListAccounts)
	}
}

// IssueToken exchanges form-encoded credentials for a bearer token.
func (h *AuthHandler) IssueToken(c *gin.Context) {
	var req auth.TokenRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBindError(c, err)
		return
	}

	token, err := h.service.IssueToken(c.Request.Context(), &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, token)
}

func (h *AuthHandler) Me(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	utils.SuccessResponse(c, http.StatusOK, auth.ToPrincipalResponse(p))
}

func (h *AuthHandler) CreateAccount(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var req auth.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	account, err := h.service.CreateAccount(c.Request.Context(), p, &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, account)
}

func (h *AuthHandler) ListAccounts(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	accounts, err := h.service.ListAccounts(c.Request.Context(), p)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, accounts)
}
