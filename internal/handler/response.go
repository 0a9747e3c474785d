package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mediarelay/internal/domain"
	"mediarelay/internal/middleware"
)

// ErrorResponseBody is the JSON body of every failed request.
type ErrorResponseBody struct {
	Error   string `json:"error" example:"Upload failed"`
	Details string `json:"details,omitempty" example:"Invalid image file"`
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, msg, details string) {
	c.JSON(status, ErrorResponseBody{Error: msg, Details: details})
}

// MapDomainError translates domain errors to HTTP status codes and client messages.
func MapDomainError(err error) (status int, msg string) {
	switch {
	case errors.Is(err, domain.ErrNoFilesProvided):
		return http.StatusBadRequest, "No files uploaded"
	case errors.Is(err, domain.ErrNoURLProvided):
		return http.StatusBadRequest, "No URL provided"
	case errors.Is(err, domain.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, "File too large"
	case errors.Is(err, domain.ErrUploadFailed):
		return http.StatusInternalServerError, "Upload failed"
	case errors.Is(err, domain.ErrDeleteFailed):
		return http.StatusInternalServerError, "Delete failed"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

// HandleError maps a domain error and sends the appropriate error response. Store
// failures carry the underlying message in details.
func HandleError(c *gin.Context, log *zap.Logger, err error) {
	status, msg := MapDomainError(err)

	var details string
	var storeErr *domain.StoreError
	switch {
	case errors.As(err, &storeErr):
		details = storeErr.Details()
	case errors.Is(err, domain.ErrFileTooLarge):
		details = err.Error()
	}

	if status >= 500 {
		log.Error("request failed",
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err))
	}
	RespondError(c, status, msg, details)
}
