package handlers

import (
	"net/http"

	"linkbuckets/internal/services"

	"github.com/gin-gonic/gin"
)

type IngestHandler struct {
	ingest *services.IngestService
}

func NewIngestHandler(ingest *services.IngestService) *IngestHandler {
	return &IngestHandler{ingest: ingest}
}

type ingestRequest struct {
	RawText string               `json:"rawText"`
	Slug    string               `json:"slug"`
	Editing *services.EditTarget `json:"editing,omitempty"`
}

// Create accepts one text submission and routes it through the ingestion
// pipeline. POST /api/ingest
func (h *IngestHandler) Create(c *gin.Context) {
	var req ingestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid JSON body"})
		return
	}

	result, err := h.ingest.Ingest(c.Request.Context(), req.RawText, req.Slug, req.Editing)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, result)
}
