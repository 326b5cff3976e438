package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/pathfinder/internal/domain"
	"github.com/persistorai/pathfinder/internal/models"
)

// LookupHandler serves the graph lookup endpoint.
type LookupHandler struct {
	svc domain.LookupService
	log *logrus.Logger
}

// NewLookupHandler creates a LookupHandler.
func NewLookupHandler(svc domain.LookupService, log *logrus.Logger) *LookupHandler {
	return &LookupHandler{svc: svc, log: log}
}

// Run handles POST /api/v1/lookup.
func (h *LookupHandler) Run(c *gin.Context) {
	var req models.LookupRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.svc.Lookup(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, h.log, err, "running lookup")

		return
	}

	if res.Results == nil {
		res.Results = []models.Document{}
	}

	c.JSON(http.StatusOK, res)
}
