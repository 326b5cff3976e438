package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/persistorai/pathfinder/internal/httputil"
	"github.com/persistorai/pathfinder/internal/metrics"
)

// respondError counts the rejection and writes the shared error body.
func respondError(c *gin.Context, code int, errCode, message string) {
	metrics.ErrorsTotal.WithLabelValues(errCode).Inc()
	httputil.RespondError(c, code, errCode, message)
}
