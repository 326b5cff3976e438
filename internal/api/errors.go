package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/pathfinder/internal/httputil"
	"github.com/persistorai/pathfinder/internal/metrics"
	"github.com/persistorai/pathfinder/internal/models"
)

// Error code constants for standardized API responses.
const (
	ErrCodeInvalidRequest  = "invalid_request"
	ErrCodeNotFound        = "not_found"
	ErrCodeInternalError   = "internal_error"
	ErrCodeValidationError = "validation_error"
	ErrCodeInvalidStage    = "invalid_stage"
	ErrCodeMemoryLimit     = "memory_limit_exceeded"
	ErrCodeTimeout         = "timeout"
)

// respondError writes a standardized JSON error response, pulling the request
// ID from the Gin context (set by the request ID middleware).
func respondError(c *gin.Context, status int, code, message string) {
	metrics.ErrorsTotal.WithLabelValues(code).Inc()
	httputil.RespondError(c, status, code, message)
}

var validationErrors = []error{
	models.ErrInvalidArgument,
	models.ErrMissingCollection,
	models.ErrMissingStart,
	models.ErrMissingEnd,
	models.ErrMissingField,
	models.ErrMissingDocuments,
	models.ErrUnknownAlgorithm,
	models.ErrNegativeWeight,
}

func isValidation(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}

	return false
}

// respondServiceError maps a service error onto a status code. Unexpected
// errors are logged with op and hidden behind a generic 500.
func respondServiceError(c *gin.Context, log *logrus.Logger, err error, op string) {
	switch {
	case errors.Is(err, models.ErrMemoryLimitExceeded):
		respondError(c, http.StatusInsufficientStorage, ErrCodeMemoryLimit, err.Error())
	case errors.Is(err, models.ErrCollectionNotFound):
		respondError(c, http.StatusNotFound, ErrCodeNotFound, "collection not found")
	case errors.Is(err, models.ErrNodeNotFound):
		respondError(c, http.StatusNotFound, ErrCodeNotFound, "document not found")
	case errors.Is(err, models.ErrInvalidStageSpec):
		respondError(c, http.StatusBadRequest, ErrCodeInvalidStage, err.Error())
	case isValidation(err):
		respondError(c, http.StatusBadRequest, ErrCodeValidationError, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		respondError(c, http.StatusGatewayTimeout, ErrCodeTimeout, "query timed out")
	default:
		log.WithError(err).WithField("request_id", httputil.RequestID(c)).Error(op)
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")
	}
}

// bindJSON decodes the request body into dst, answering 400 or 413 itself.
func bindJSON(c *gin.Context, dst any) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return true
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		respondError(c, http.StatusRequestEntityTooLarge, ErrCodeInvalidRequest, "request body too large")

		return false
	}

	respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid JSON body")

	return false
}
