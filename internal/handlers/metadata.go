package handlers

import (
	"fmt"
	"net/http"

	"linkbuckets/internal/services"

	"github.com/gin-gonic/gin"
)

type MetadataHandler struct {
	metadata *services.MetadataService
}

func NewMetadataHandler(metadata *services.MetadataService) *MetadataHandler {
	return &MetadataHandler{metadata: metadata}
}

// Process runs one enrichment batch synchronously. POST /api/metadata
func (h *MetadataHandler) Process(c *gin.Context) {
	result, err := h.metadata.ProcessPending(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	message := "No pending URLs to process"
	if result.Processed > 0 {
		message = fmt.Sprintf("Processed %d URLs", result.Processed)
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    message,
		"processed":  result.Processed,
		"successful": result.Successful,
		"failed":     result.Failed,
	})
}

// Stats reports enrichment state counts. GET /api/metadata
func (h *MetadataHandler) Stats(c *gin.Context) {
	stats, err := h.metadata.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "stats": stats})
}
