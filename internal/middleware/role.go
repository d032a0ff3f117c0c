package middleware

import (
	"net/http"

	"spacelink-gateway/internal/rbac"
	appErrors "spacelink-gateway/pkg/errors"
	"spacelink-gateway/pkg/utils"

	"github.com/gin-gonic/gin"
)

// RequireAction rejects principals whose role never grants action. Tenancy is
// checked later by the services, which know the owning organization.
func RequireAction(action rbac.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := GetPrincipal(c)
		if !ok {
			utils.ErrorResponse(c, http.StatusUnauthorized, appErrors.CodeTokenInvalid, "Principal not found in context")
			return
		}

		if err := rbac.AuthorizeAction(principal, action); err != nil {
			utils.ErrorResponse(c, http.StatusForbidden, appErrors.Code(err), "Insufficient permissions")
			return
		}

		c.Next()
	}
}

func AdminOnly() gin.HandlerFunc {
	return RequireAction(rbac.ActionManageUsers)
}
