package middleware

import (
	"context"
	"net/http"
	"strings"

	"spacelink-gateway/internal/rbac"
	appErrors "spacelink-gateway/pkg/errors"
	"spacelink-gateway/pkg/utils"

	"github.com/gin-gonic/gin"
)

const (
	PrincipalKey = "principal"
	APIKeyHeader = "X-API-Key"
)

// BearerValidator resolves a bearer token to a principal.
type BearerValidator interface {
	ValidateBearer(token string) (rbac.Principal, error)
}

// APIKeyValidator resolves a device API key to a principal.
type APIKeyValidator interface {
	ValidateAPIKey(ctx context.Context, key string) (rbac.Principal, error)
}

func AuthMiddleware(validator BearerValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.ErrorResponse(c, http.StatusUnauthorized, appErrors.CodeTokenInvalid, "Authorization header required")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			utils.ErrorResponse(c, http.StatusUnauthorized, appErrors.CodeTokenInvalid, "Invalid authorization header format")
			return
		}

		principal, err := validator.ValidateBearer(strings.TrimSpace(parts[1]))
		if err != nil {
			utils.ErrorResponse(c, http.StatusUnauthorized, appErrors.Code(err), "Invalid or expired token")
			return
		}

		setPrincipal(c, principal)
		c.Next()
	}
}

func APIKeyMiddleware(validator APIKeyValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := strings.TrimSpace(c.GetHeader(APIKeyHeader))
		if key == "" {
			utils.ErrorResponse(c, http.StatusUnauthorized, appErrors.CodeInvalidAPIKey, "X-API-Key header required")
			return
		}

		principal, err := validator.ValidateAPIKey(c.Request.Context(), key)
		if err != nil {
			status := http.StatusUnauthorized
			if appErrors.Code(err) == appErrors.CodeInternal {
				status = http.StatusInternalServerError
			}
			utils.ErrorResponse(c, status, appErrors.Code(err), "Invalid or revoked API key")
			return
		}

		setPrincipal(c, principal)
		c.Next()
	}
}

func setPrincipal(c *gin.Context, p rbac.Principal) {
	c.Set(PrincipalKey, p)
	c.Request = c.Request.WithContext(rbac.WithPrincipal(c.Request.Context(), p))
}

// GetPrincipal returns the principal stored by the auth middlewares.
func GetPrincipal(c *gin.Context) (rbac.Principal, bool) {
	if v, exists := c.Get(PrincipalKey); exists {
		if p, ok := v.(rbac.Principal); ok {
			return p, true
		}
	}
	return rbac.PrincipalFrom(c.Request.Context())
}
