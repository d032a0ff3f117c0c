package handler

import (
	"errors"
	"net/http"

	"spacelink-gateway/internal/logger"
	"spacelink-gateway/internal/middleware"
	"spacelink-gateway/internal/rbac"
	appErrors "spacelink-gateway/pkg/errors"
	"spacelink-gateway/pkg/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// StatusFor maps an error code to its HTTP status.
func StatusFor(code string) int {
	switch code {
	case appErrors.CodeValidation, appErrors.CodeCrossTenantMembership, appErrors.CodeWeakPassword:
		return http.StatusBadRequest
	case appErrors.CodeInvalidCredentials, appErrors.CodeTokenExpired, appErrors.CodeTokenInvalid, appErrors.CodeInvalidAPIKey:
		return http.StatusUnauthorized
	case appErrors.CodeForbidden, appErrors.CodeTenantMismatch, appErrors.CodeDeviceMismatch,
		appErrors.CodeDeviceInactive, appErrors.CodePartnerSuspended, appErrors.CodeAPIAccessDisabled:
		return http.StatusForbidden
	case appErrors.CodeNotFound:
		return http.StatusNotFound
	case appErrors.CodeAlreadyExists, "INVALID_STATUS_TRANSITION":
		return http.StatusConflict
	case appErrors.CodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

// respondWithError writes the error body for err. Internal errors are logged and
// their message is not returned.
func respondWithError(c *gin.Context, err error) {
	code := appErrors.Code(err)
	status := StatusFor(code)

	var validationErr *appErrors.ValidationError
	if errors.As(err, &validationErr) {
		utils.ValidationErrorResponse(c, status, code, validationErr.Field, validationErr.Message)
		return
	}

	if status == http.StatusInternalServerError {
		logger.WithRequestID(middleware.GetRequestID(c)).Error("Request failed",
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		utils.ErrorResponse(c, status, code, "internal server error")
		return
	}

	utils.ErrorResponse(c, status, code, err.Error())
}

func respondBindError(c *gin.Context, err error) {
	utils.ValidationErrorResponse(c, http.StatusBadRequest, appErrors.CodeValidation, "body", "Invalid request body: "+err.Error())
}

func respondQueryError(c *gin.Context, err error) {
	utils.ValidationErrorResponse(c, http.StatusBadRequest, appErrors.CodeValidation, "query", "Invalid query parameters: "+err.Error())
}

// principal returns the authenticated principal or writes a 401.
func principal(c *gin.Context) (rbac.Principal, bool) {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, appErrors.CodeTokenInvalid, "User not authenticated")
		return rbac.Principal{}, false
	}
	return p, true
}
