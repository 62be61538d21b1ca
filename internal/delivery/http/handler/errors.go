package handler

import (
	"errors"
	"net/http"

	domainAccount "bloodlink/internal/domain/account"
	"bloodlink/internal/domain/blood"
	domainRequest "bloodlink/internal/domain/request"
	"bloodlink/internal/logger"
	"bloodlink/internal/middleware"
	appErrors "bloodlink/pkg/errors"
	"bloodlink/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func respondWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var appErr *appErrors.AppError
	if errors.As(err, &appErr) {
		utils.ErrorResponse(c, statusForCode(appErr.Code), appErr.Message)
		return
	}

	switch {
	case errors.Is(err, domainAccount.ErrAccountAlreadyExists):
		utils.ErrorResponse(c, http.StatusConflict, "User already exists with this email")
	case errors.Is(err, domainRequest.ErrRequestClosed):
		utils.ErrorResponse(c, http.StatusConflict, "Blood request is no longer active")
	case errors.Is(err, appErrors.ErrInvalidCredentials):
		utils.ErrorResponse(c, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, appErrors.ErrTokenRevoked),
		errors.Is(err, appErrors.ErrInvalidToken),
		errors.Is(err, appErrors.ErrUnauthorized):
		utils.ErrorResponse(c, http.StatusUnauthorized, "Not authorized")
	case errors.Is(err, domainAccount.ErrAccountInactive):
		utils.ErrorResponse(c, http.StatusForbidden, "Account is inactive")
	case errors.Is(err, domainRequest.ErrNotOwner),
		errors.Is(err, appErrors.ErrInsufficientPermissions):
		utils.ErrorResponse(c, http.StatusForbidden, "Access denied")
	case errors.Is(err, domainAccount.ErrAccountNotFound):
		utils.ErrorResponse(c, http.StatusNotFound, "User not found")
	case errors.Is(err, domainRequest.ErrRequestNotFound):
		utils.ErrorResponse(c, http.StatusNotFound, "Blood request not found")
	case errors.Is(err, blood.ErrInvalidBloodType),
		errors.Is(err, domainAccount.ErrDonorProfileRequired),
		errors.Is(err, domainAccount.ErrHospitalProfileRequired),
		errors.Is(err, domainAccount.ErrLocationIncomplete),
		errors.Is(err, domainAccount.ErrInvalidRole),
		errors.Is(err, appErrors.ErrInvalidInput):
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
	default:
		logger.Error("Internal server error",
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
			zap.Error(err),
		)
		utils.ErrorResponse(c, http.StatusInternalServerError, "Internal server error")
	}
}

func statusForCode(code string) int {
	switch code {
	case appErrors.CodeValidation:
		return http.StatusBadRequest
	case appErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case appErrors.CodeForbidden:
		return http.StatusForbidden
	case appErrors.CodeNotFound:
		return http.StatusNotFound
	case appErrors.CodeConflict, appErrors.CodeInvalidTransition:
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

// currentAccount fetches the account set by the auth middleware, writing a
// 401 when it is missing.
func currentAccount(c *gin.Context) (*domainAccount.Account, bool) {
	account, ok := middleware.GetAccount(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "User not authenticated")
		return nil, false
	}
	return account, true
}

func parseIDParam(c *gin.Context, name, message string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, message)
		return uuid.Nil, false
	}
	return id, true
}
