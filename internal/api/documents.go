package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/pathfinder/internal/domain"
	"github.com/persistorai/pathfinder/internal/models"
)

// DocumentHandler serves document load and read endpoints.
type DocumentHandler struct {
	svc domain.DocumentService
	log *logrus.Logger
}

// NewDocumentHandler creates a DocumentHandler.
func NewDocumentHandler(svc domain.DocumentService, log *logrus.Logger) *DocumentHandler {
	return &DocumentHandler{svc: svc, log: log}
}

// Upsert handles POST /api/v1/collections/:collection/documents.
func (h *DocumentHandler) Upsert(c *gin.Context) {
	var req models.BulkDocumentsRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.svc.UpsertDocuments(c.Request.Context(), c.Param("collection"), req)
	if err != nil {
		respondServiceError(c, h.log, err, "upserting documents")

		return
	}

	c.JSON(http.StatusOK, res)
}

// Get handles GET /api/v1/collections/:collection/documents/:id.
func (h *DocumentHandler) Get(c *gin.Context) {
	doc, err := h.svc.GetDocument(c.Request.Context(), c.Param("collection"), c.Param("id"))
	if err != nil {
		respondServiceError(c, h.log, err, "getting document")

		return
	}

	c.JSON(http.StatusOK, doc)
}
