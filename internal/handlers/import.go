package handlers

import (
	"net/http"

	"linkbuckets/internal/services"

	"github.com/gin-gonic/gin"
)

type ImportHandler struct {
	importer *services.RSSImporter
}

func NewImportHandler(importer *services.RSSImporter) *ImportHandler {
	return &ImportHandler{importer: importer}
}

type rssImportRequest struct {
	Slug    string `json:"slug"`
	FeedURL string `json:"feedUrl"`
	Limit   int    `json:"limit"`
}

// RSS imports a feed's item links into a bucket as one post.
// POST /api/import/rss
func (h *ImportHandler) RSS(c *gin.Context) {
	var req rssImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid JSON body"})
		return
	}

	result, err := h.importer.Import(c.Request.Context(), req.Slug, req.FeedURL, req.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, result)
}
