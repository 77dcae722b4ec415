package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"linkbuckets/internal/grouping"
	"linkbuckets/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type PostHandler struct {
	db *gorm.DB
}

func NewPostHandler(database *gorm.DB) *PostHandler {
	return &PostHandler{db: database}
}

// loadPosts fetches posts newest-first with owner and ordered URLs, optionally
// restricted to one bucket, already mapped to the API shape.
func (h *PostHandler) loadPosts(c *gin.Context, bucket string) ([]grouping.Post, error) {
	query := h.db.WithContext(c.Request.Context()).
		Preload("Owner").
		Preload("URLs", func(db *gorm.DB) *gorm.DB {
			return db.Order("post_urls.position ASC")
		}).
		Preload("URLs.URL").
		Order("posts.created_at DESC")

	if bucket != "" {
		query = query.
			Joins("JOIN users ON users.id = posts.owner_id").
			Where("users.username = ?", bucket)
	}

	var rows []models.Post
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	posts := make([]grouping.Post, 0, len(rows))
	for _, row := range rows {
		posts = append(posts, toGroupingPost(row))
	}
	return posts, nil
}

func toGroupingPost(row models.Post) grouping.Post {
	urls := make([]grouping.URL, 0, len(row.URLs))
	for _, link := range row.URLs {
		urls = append(urls, grouping.URL{
			ID:          link.URL.ID,
			URL:         link.URL.URL,
			Domain:      link.URL.Domain,
			Title:       link.URL.Title,
			Description: link.URL.Description,
			Image1:      link.URL.Image1,
			Saves:       link.URL.Saves,
			Clicks:      link.URL.Clicks,
			CreatedAt:   link.URL.CreatedAt,
		})
	}
	return grouping.Post{
		ID:        row.ID,
		Title:     row.Title,
		CreatedAt: row.CreatedAt,
		Owner:     toOwner(row.Owner),
		URLs:      urls,
	}
}

func toOwner(user models.User) grouping.Owner {
	return grouping.Owner{
		ID:       user.ID,
		Username: user.Username,
		Title:    user.Title,
		Color1:   user.Color1,
		Color2:   user.Color2,
	}
}

// List returns posts, optionally for one bucket. GET /api/posts?bucket=
func (h *PostHandler) List(c *gin.Context) {
	posts, err := h.loadPosts(c, c.Query("bucket"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, posts)
}

// Feed returns grouped posts, optionally filtered to a bucket and a
// comma-separated domain selection. GET /api/feed?bucket=&domains=
func (h *PostHandler) Feed(c *gin.Context) {
	posts, err := h.loadPosts(c, c.Query("bucket"))
	if err != nil {
		respondError(c, err)
		return
	}

	groups := grouping.GroupPosts(posts)

	if raw := c.Query("domains"); raw != "" {
		selected := make(map[string]bool)
		for _, domain := range strings.Split(raw, ",") {
			if domain = strings.TrimSpace(domain); domain != "" {
				selected[domain] = true
			}
		}
		groups = grouping.FilterGroupedPosts(groups, selected)
	}
	respondOK(c, groups)
}

// Detail returns one post with its owner, ordered URLs and the raw prompt
// text it was created from. GET /api/posts/:postId
func (h *PostHandler) Detail(c *gin.Context) {
	postID, err := strconv.ParseUint(c.Param("postId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid post ID"})
		return
	}

	var row models.Post
	err = h.db.WithContext(c.Request.Context()).
		Preload("Owner").
		Preload("Prompt").
		Preload("URLs", func(db *gorm.DB) *gorm.DB {
			return db.Order("post_urls.position ASC")
		}).
		Preload("URLs.URL").
		First(&row, postID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Post not found"})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	post := toGroupingPost(row)

	urls := make([]gin.H, 0, len(row.URLs))
	for i, link := range row.URLs {
		urls = append(urls, gin.H{
			"order": link.Position,
			"url":   post.URLs[i],
		})
	}

	detail := gin.H{
		"id":        post.ID,
		"title":     post.Title,
		"createdAt": post.CreatedAt,
		"owner":     post.Owner,
		"urls":      urls,
	}
	if row.Prompt != nil {
		detail["prompt"] = gin.H{"id": row.Prompt.ID, "rawText": row.Prompt.RawText}
	}
	respondOK(c, detail)
}
