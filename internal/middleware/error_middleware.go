package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/studentrecords/internal/app/models/dto"
	"github.com/yigit/studentrecords/internal/pkg/apperrors"
	"github.com/yigit/studentrecords/internal/pkg/logger"
)

// HandleAPIError maps service errors to an HTTP status and error body
func HandleAPIError(c *gin.Context, err error) {
	var validationErr *apperrors.ValidationError
	if errors.As(err, &validationErr) {
		body := dto.NewValidationErrors()
		for _, v := range validationErr.Violations {
			body.AddError(v.Field, v.Value, v.Message)
		}
		c.JSON(http.StatusBadRequest, body)
		return
	}

	switch {
	case errors.Is(err, apperrors.ErrUnsupportedImageType):
		c.JSON(http.StatusUnsupportedMediaType, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeUnsupportedMediaType, apperrors.ErrUnsupportedImageType.Error()).WithField("file")))
	case errors.Is(err, apperrors.ErrImageTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeFileTooLarge, apperrors.ErrImageTooLarge.Error()).WithField("file")))
	case errors.Is(err, apperrors.ErrResourceNotFound):
		c.JSON(http.StatusNotFound, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, messageOf(err, "Resource not found"))))
	case errors.Is(err, apperrors.ErrConflict):
		c.JSON(http.StatusConflict, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeResourceAlreadyExists, messageOf(err, "Resource already exists")).WithField(conflictField(err))))
	case errors.Is(err, apperrors.ErrBadRequest):
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeInvalidRequest, messageOf(err, "Bad request"))))
	default:
		logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Unhandled error")
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")))
	}
}

// messageOf returns the message of the outermost CustomError, or fallback
func messageOf(err error, fallback string) string {
	var customErr *apperrors.CustomError
	if errors.As(err, &customErr) && customErr.Message != "" {
		return customErr.Message
	}
	return fallback
}

func conflictField(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrStudentIDAlreadyExists):
		return "studentId"
	case errors.Is(err, apperrors.ErrBadgeNumberAlreadyExists):
		return "badgeNumber"
	}
	return ""
}
