package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/pathfinder/internal/domain"
	"github.com/persistorai/pathfinder/internal/models"
)

// PathHandler serves path search endpoints.
type PathHandler struct {
	svc domain.PathService
	log *logrus.Logger
}

// NewPathHandler creates a PathHandler.
func NewPathHandler(svc domain.PathService, log *logrus.Logger) *PathHandler {
	return &PathHandler{svc: svc, log: log}
}

// Find handles POST /api/v1/paths.
func (h *PathHandler) Find(c *gin.Context) {
	var req models.PathRequest
	if !bindJSON(c, &req) {
		return
	}

	h.run(c, req)
}

// Get handles GET /api/v1/paths/:collection/:from/:to.
func (h *PathHandler) Get(c *gin.Context) {
	req := models.PathRequest{
		Collection:     c.Param("collection"),
		Start:          c.Param("from"),
		End:            c.Param("to"),
		Algorithm:      models.Algorithm(c.Query("algorithm")),
		AdjacencyField: c.Query("field"),
		IDField:        c.Query("id_field"),
		WeightField:    c.Query("weight_field"),
	}

	if v := c.Query("max_depth"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "max_depth must be an integer")

			return
		}

		req.MaxDepth = &n
	}

	if v := c.Query("stop_at_first_meeting"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "stop_at_first_meeting must be a boolean")

			return
		}

		req.StopAtFirstMeeting = &b
	}

	h.run(c, req)
}

func (h *PathHandler) run(c *gin.Context, req models.PathRequest) {
	path, err := h.svc.FindPath(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, h.log, err, "finding path")

		return
	}

	c.JSON(http.StatusOK, path)
}
