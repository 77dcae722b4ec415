package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"linkbuckets/internal/models"
	"linkbuckets/internal/services"
	"linkbuckets/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type URLHandler struct {
	db     *gorm.DB
	reader *services.ReaderService
}

func NewURLHandler(database *gorm.DB, reader *services.ReaderService) *URLHandler {
	return &URLHandler{db: database, reader: reader}
}

// List returns every saved URL, each tagged with the post it belongs to,
// optionally restricted to one bucket. GET /api/urls?bucket=
func (h *URLHandler) List(c *gin.Context) {
	query := h.db.WithContext(c.Request.Context()).
		Preload("URL").
		Preload("Post.Owner").
		Joins("JOIN posts ON posts.id = post_urls.post_id").
		Order("posts.created_at DESC, post_urls.position ASC")

	if bucket := c.Query("bucket"); bucket != "" {
		query = query.
			Joins("JOIN users ON users.id = posts.owner_id").
			Where("users.username = ?", bucket)
	}

	var links []models.PostURL
	if err := query.Find(&links).Error; err != nil {
		respondError(c, err)
		return
	}

	out := make([]gin.H, 0, len(links))
	for _, link := range links {
		out = append(out, gin.H{
			"id":          link.URL.ID,
			"url":         link.URL.URL,
			"domain":      link.URL.Domain,
			"title":       link.URL.Title,
			"description": link.URL.Description,
			"image1":      link.URL.Image1,
			"saves":       link.URL.Saves,
			"clicks":      link.URL.Clicks,
			"createdAt":   link.URL.CreatedAt,
			"post": gin.H{
				"id":        link.Post.ID,
				"title":     link.Post.Title,
				"createdAt": link.Post.CreatedAt,
				"owner":     toOwner(link.Post.Owner),
			},
		})
	}
	respondOK(c, out)
}

type saveRequest struct {
	URLID  uint   `json:"urlId"`
	Action string `json:"action"`
}

// Save adjusts a URL's save counter. action is "save" or "unsave"; the count
// never goes below zero. POST /api/urls/save
func (h *URLHandler) Save(c *gin.Context) {
	var req saveRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.URLID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Missing required field: urlId"})
		return
	}
	if req.Action != "save" && req.Action != "unsave" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid action. Must be 'save' or 'unsave'"})
		return
	}

	ctx := c.Request.Context()
	var row models.URL
	err := h.db.WithContext(ctx).First(&row, req.URLID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "URL not found"})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	delta := 1
	if req.Action == "unsave" {
		delta = -1
	}
	err = h.db.WithContext(ctx).Model(&models.URL{}).Where("id = ?", row.ID).
		Update("saves", gorm.Expr("saves + ?", delta)).Error
	if err != nil {
		respondError(c, err)
		return
	}

	var updated models.URL
	if err := h.db.WithContext(ctx).First(&updated, row.ID).Error; err != nil {
		respondError(c, err)
		return
	}
	// A decrement can land below zero; write the clamp back.
	if updated.Saves < 0 {
		err := h.db.WithContext(ctx).Model(&models.URL{}).Where("id = ?", row.ID).
			Update("saves", 0).Error
		if err != nil {
			respondError(c, err)
			return
		}
		updated.Saves = 0
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "newSaveCount": updated.Saves})
}

// Click increments a URL's click counter. POST /api/urls/:id/click
func (h *URLHandler) Click(c *gin.Context) {
	urlID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid URL ID"})
		return
	}

	result := h.db.WithContext(c.Request.Context()).Model(&models.URL{}).
		Where("id = ?", urlID).
		Update("clicks", gorm.Expr("clicks + 1"))
	if result.Error != nil {
		respondError(c, result.Error)
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "URL not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Content fetches and extracts the readable article body for a saved URL.
// GET /api/urls/:id/content
func (h *URLHandler) Content(c *gin.Context) {
	urlID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid URL ID"})
		return
	}

	ctx := c.Request.Context()
	var row models.URL
	err = h.db.WithContext(ctx).First(&row, urlID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "URL not found"})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	article, err := h.reader.FetchArticle(ctx, row.URL)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "error": "Could not extract article content"})
		return
	}
	if article.Title == "" {
		article.Title = utils.GetDisplayTitle(row.Title, row.Domain, row.URL)
	}

	respondOK(c, gin.H{
		"url":     row.URL,
		"title":   article.Title,
		"excerpt": article.Excerpt,
		"content": article.Content,
	})
}
