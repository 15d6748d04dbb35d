package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arda/classplanner/internal/app/models/dto"
	"github.com/arda/classplanner/internal/pkg/apperrors"
	"github.com/arda/classplanner/internal/pkg/logger"
)

// HandleAPIError maps service errors onto HTTP responses. Conflict and
// transition errors are expected outcomes: they answer 409 with the
// detail the service attached, never 500.
func HandleAPIError(c *gin.Context, err error) {
	var custom *apperrors.CustomError
	message := err.Error()
	var details map[string]interface{}
	if errors.As(err, &custom) {
		if custom.Message != "" {
			message = custom.Message
		}
		details = custom.Details
	}

	switch {
	case errors.Is(err, apperrors.ErrScheduleConflict):
		detail := dto.NewErrorDetail(dto.ErrorCodeScheduleConflict, message)
		if details != nil {
			detail = detail.WithDetails(details)
		}
		c.JSON(http.StatusConflict, dto.APIResponse{Error: detail})

	case errors.Is(err, apperrors.ErrInvalidTransition):
		c.JSON(http.StatusConflict, dto.APIResponse{
			Error: dto.NewErrorDetail(dto.ErrorCodeInvalidTransition, message),
		})

	case errors.Is(err, apperrors.ErrEmptyBatch):
		c.JSON(http.StatusUnprocessableEntity, dto.APIResponse{
			Error: dto.NewErrorDetail(dto.ErrorCodeEmptyBatch, message),
		})

	case apperrors.Is(err, apperrors.ErrSessionNotFound,
		apperrors.ErrTemplateNotFound,
		apperrors.ErrExamNotFound,
		apperrors.ErrUserNotFound,
		apperrors.ErrResourceNotFound):
		c.JSON(http.StatusNotFound, dto.APIResponse{
			Error: dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, message),
		})

	case apperrors.Is(err, apperrors.ErrValidationFailed, apperrors.ErrBadRequest):
		c.JSON(http.StatusBadRequest, dto.APIResponse{
			Error: dto.NewErrorDetail(dto.ErrorCodeValidationFailed, message),
		})

	case errors.Is(err, apperrors.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, dto.APIResponse{
			Error: dto.NewErrorDetail(dto.ErrorCodeInvalidCredentials, "Invalid credentials"),
		})

	case apperrors.Is(err, apperrors.ErrTokenExpired):
		c.JSON(http.StatusUnauthorized, dto.APIResponse{
			Error: dto.NewErrorDetail(dto.ErrorCodeExpiredToken, "Token expired"),
		})

	case apperrors.Is(err, apperrors.ErrTokenInvalid, apperrors.ErrInvalidFormat):
		c.JSON(http.StatusUnauthorized, dto.APIResponse{
			Error: dto.NewErrorDetail(dto.ErrorCodeInvalidToken, "Invalid token"),
		})

	case errors.Is(err, apperrors.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, dto.APIResponse{
			Error: dto.NewErrorDetail(dto.ErrorCodeForbidden, "Permission denied"),
		})

	case errors.Is(err, apperrors.ErrEmailAlreadyExists):
		c.JSON(http.StatusConflict, dto.APIResponse{
			Error: dto.NewErrorDetail(dto.ErrorCodeResourceAlreadyExists, "Email already exists"),
		})

	default:
		logger.Error().Err(err).Str("path", c.FullPath()).Msg("Unhandled API error")
		c.JSON(http.StatusInternalServerError, dto.APIResponse{
			Error: dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error"),
		})
	}
}
