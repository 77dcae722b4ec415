package handlers

import (
	"errors"
	"net/http"
	"regexp"
	"strconv"

	"linkbuckets/internal/models"
	"linkbuckets/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var hexColorRe = regexp.MustCompile(`(?i)^#[0-9a-f]{6}$`)

type UserHandler struct {
	db *gorm.DB
}

func NewUserHandler(database *gorm.DB) *UserHandler {
	return &UserHandler{db: database}
}

// GetByUsername returns one bucket profile with its stats.
// GET /api/users/:username
func (h *UserHandler) GetByUsername(c *gin.Context) {
	var user models.User
	err := h.db.WithContext(c.Request.Context()).
		Where("username = ?", c.Param("username")).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "User not found"})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	h.respondProfile(c, user)
}

// GetByID returns one bucket profile with its stats. GET /api/users/id/:id
func (h *UserHandler) GetByID(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid user ID"})
		return
	}

	var user models.User
	err = h.db.WithContext(c.Request.Context()).First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "User not found"})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	h.respondProfile(c, user)
}

type updateUserRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Image1      *string `json:"image1"`
	Image2      *string `json:"image2"`
	Color1      *string `json:"color1"`
	Color2      *string `json:"color2"`
}

// Update patches a bucket's presentation fields. Absent fields stay
// untouched. PATCH /api/users/id/:id
func (h *UserHandler) Update(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid user ID"})
		return
	}

	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid JSON body"})
		return
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Image1 != nil {
		updates["image1"] = *req.Image1
	}
	if req.Image2 != nil {
		updates["image2"] = *req.Image2
	}
	for column, value := range map[string]*string{"color1": req.Color1, "color2": req.Color2} {
		if value == nil {
			continue
		}
		if !hexColorRe.MatchString(*value) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Colors must be hex values like #1A2B3C"})
			return
		}
		updates[column] = *value
	}
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "No fields to update"})
		return
	}

	ctx := c.Request.Context()
	var user models.User
	err = h.db.WithContext(ctx).First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "User not found"})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.db.WithContext(ctx).Model(&user).Updates(updates).Error; err != nil {
		respondError(c, err)
		return
	}
	h.respondProfile(c, user)
}

// respondProfile renders the bucket with aggregate stats and the markdown
// description rendered to sanitized HTML.
func (h *UserHandler) respondProfile(c *gin.Context, user models.User) {
	ctx := c.Request.Context()

	var totalPosts int64
	if err := h.db.WithContext(ctx).Model(&models.Post{}).
		Where("owner_id = ?", user.ID).Count(&totalPosts).Error; err != nil {
		respondError(c, err)
		return
	}

	var totalURLs int64
	if err := h.db.WithContext(ctx).Model(&models.PostURL{}).
		Joins("JOIN posts ON posts.id = post_urls.post_id").
		Where("posts.owner_id = ?", user.ID).Count(&totalURLs).Error; err != nil {
		respondError(c, err)
		return
	}

	var uniqueDomains int64
	err := h.db.WithContext(ctx).Model(&models.PostURL{}).
		Joins("JOIN posts ON posts.id = post_urls.post_id").
		Joins("JOIN urls ON urls.id = post_urls.url_id").
		Where("posts.owner_id = ?", user.ID).
		Distinct("urls.domain").Count(&uniqueDomains).Error
	if err != nil {
		respondError(c, err)
		return
	}

	profile := gin.H{
		"id":        user.ID,
		"username":  user.Username,
		"title":     user.Title,
		"image1":    user.Image1,
		"image2":    user.Image2,
		"color1":    user.Color1,
		"color2":    user.Color2,
		"type":      user.Type,
		"createdAt": user.CreatedAt,
		"stats": gin.H{
			"totalPosts":    totalPosts,
			"totalURLs":     totalURLs,
			"uniqueDomains": uniqueDomains,
		},
	}
	profile["description"] = user.Description
	if user.Description != nil && *user.Description != "" {
		profile["descriptionHtml"] = utils.RenderMarkdown(*user.Description)
	}
	respondOK(c, profile)
}
