package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"time"

	"linkbuckets/internal/models"
	"linkbuckets/internal/prompt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var slugRe = regexp.MustCompile(`^[a-z0-9_-]{1,32}$`)

// Slugs that can never be claimed as bucket names.
var reservedSlugs = map[string]bool{
	"api":    true,
	"static": true,
	"admin":  true,
	"www":    true,
	"app":    true,
	"assets": true,
}

// Palette assigned to buckets created lazily on first ingestion.
var bucketColors = []string{
	"#FF6B6B", "#4ECDC4", "#45B7D1", "#96CEB4", "#FFEAA7",
	"#DDA0DD", "#98D8C8", "#F7DC6F", "#BB8FCE", "#85C1E9",
	"#F8C471", "#82E0AA", "#F1948A", "#85C1E9", "#D7BDE2",
}

// Enricher is the background trigger fired after ingestion writes. The
// metadata service implements it.
type Enricher interface {
	ProcessPending(ctx context.Context) (ProcessResult, error)
}

// EditTarget selects what an ingestion edits: the bucket profile or one of
// its posts.
type EditTarget struct {
	Type string `json:"type"` // "user" or "post"
	ID   uint   `json:"id,omitempty"`
}

// IngestResult is the data half of the ingestion response.
type IngestResult struct {
	UserID   uint  `json:"userId"`
	PostID   *uint `json:"postId,omitempty"`
	PromptID *uint `json:"promptId,omitempty"`
}

// IngestService turns raw text submissions into Prompt/Post/URL rows. Every
// successful write that can leave URLs pending kicks the enricher in the
// background; that trigger is fire-and-forget and its errors never reach the
// submitting request.
type IngestService struct {
	db       *gorm.DB
	enricher Enricher
	log      logrus.FieldLogger
}

func NewIngestService(database *gorm.DB, enricher Enricher, logger logrus.FieldLogger) *IngestService {
	return &IngestService{
		db:       database,
		enricher: enricher,
		log:      logger.WithField("component", "ingest"),
	}
}

// Ingest validates and dispatches one submission. editing nil means create.
func (s *IngestService) Ingest(ctx context.Context, rawText, slug string, editing *EditTarget) (IngestResult, error) {
	if rawText == "" || slug == "" {
		return IngestResult{}, invalid("Missing required fields: rawText and slug")
	}
	if !slugRe.MatchString(slug) {
		return IngestResult{}, invalid("Invalid slug format. Must be 1-32 characters, lowercase letters, numbers, underscore, or dash only.")
	}
	if reservedSlugs[slug] {
		return IngestResult{}, invalid("Slug is reserved and cannot be used.")
	}

	if editing == nil {
		return s.create(ctx, rawText, slug)
	}
	switch editing.Type {
	case "user":
		return s.editUser(ctx, rawText, slug)
	case "post":
		return s.editPost(ctx, rawText, slug, editing.ID)
	default:
		return IngestResult{}, invalid("Invalid edit type")
	}
}

func (s *IngestService) create(ctx context.Context, rawText, slug string) (IngestResult, error) {
	user, err := s.findOrCreateBucket(ctx, slug)
	if err != nil {
		return IngestResult{}, err
	}

	parsed := prompt.Parse(rawText)
	if len(parsed.Mentions) > 0 {
		s.log.WithFields(logrus.Fields{"slug": slug, "mentions": parsed.Mentions}).Debug("Prompt mentions")
	}

	promptRow := models.Prompt{RawText: rawText, UserID: user.ID}
	if err := s.db.WithContext(ctx).Create(&promptRow).Error; err != nil {
		return IngestResult{}, fmt.Errorf("create prompt: %w", err)
	}

	post := models.Post{
		OwnerID:  user.ID,
		PromptID: &promptRow.ID,
		Title:    nullableString(parsed.Title),
	}
	if err := s.db.WithContext(ctx).Create(&post).Error; err != nil {
		return IngestResult{}, fmt.Errorf("create post: %w", err)
	}

	if len(parsed.URLs) > 0 {
		if err := s.attachURLs(ctx, parsed.URLs, post.ID); err != nil {
			return IngestResult{}, err
		}
	}

	s.triggerEnrichment()
	return IngestResult{UserID: user.ID, PostID: &post.ID, PromptID: &promptRow.ID}, nil
}

// editUser updates the bucket profile: first non-empty line becomes the
// title, second the description.
func (s *IngestService) editUser(ctx context.Context, rawText, slug string) (IngestResult, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("username = ?", slug).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return IngestResult{}, notFound("User not found")
	}
	if err != nil {
		return IngestResult{}, fmt.Errorf("find user: %w", err)
	}

	var lines []string
	for _, line := range strings.Split(rawText, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}

	updates := map[string]interface{}{"title": nil, "description": nil}
	if len(lines) > 0 {
		updates["title"] = lines[0]
	}
	if len(lines) > 1 {
		updates["description"] = lines[1]
	}
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", user.ID).Updates(updates).Error; err != nil {
		return IngestResult{}, fmt.Errorf("update user: %w", err)
	}

	return IngestResult{UserID: user.ID}, nil
}

// editPost replaces a post's prompt text, title and URL list. Ownership is
// checked against the request slug before any write.
func (s *IngestService) editPost(ctx context.Context, rawText, slug string, postID uint) (IngestResult, error) {
	if postID == 0 {
		return IngestResult{}, invalid("Post ID required for post editing")
	}

	var post models.Post
	err := s.db.WithContext(ctx).Preload("Owner").First(&post, postID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return IngestResult{}, notFound("Post not found")
	}
	if err != nil {
		return IngestResult{}, fmt.Errorf("find post: %w", err)
	}

	if post.Owner.Username != slug {
		return IngestResult{}, forbidden("Unauthorized: Post does not belong to this bucket")
	}

	parsed := prompt.Parse(rawText)

	if post.PromptID != nil {
		err := s.db.WithContext(ctx).Model(&models.Prompt{}).Where("id = ?", *post.PromptID).
			Update("raw_text", rawText).Error
		if err != nil {
			return IngestResult{}, fmt.Errorf("update prompt: %w", err)
		}
	}

	err = s.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", post.ID).
		Update("title", nullableString(parsed.Title)).Error
	if err != nil {
		return IngestResult{}, fmt.Errorf("update post: %w", err)
	}

	if err := s.db.WithContext(ctx).Where("post_id = ?", post.ID).Delete(&models.PostURL{}).Error; err != nil {
		return IngestResult{}, fmt.Errorf("clear post urls: %w", err)
	}
	if len(parsed.URLs) > 0 {
		if err := s.attachURLs(ctx, parsed.URLs, post.ID); err != nil {
			return IngestResult{}, err
		}
	}

	s.triggerEnrichment()
	return IngestResult{UserID: post.OwnerID, PostID: &post.ID, PromptID: post.PromptID}, nil
}

// attachURLs upserts each canonical URL and links it to the post in order.
// A URL that already exists is reset to PENDING so its metadata is fetched
// again; the existing title and description stay in place until that fetch
// completes.
func (s *IngestService) attachURLs(ctx context.Context, urls []string, postID uint) error {
	for i, canonical := range urls {
		var row models.URL
		err := s.db.WithContext(ctx).Where("url = ?", canonical).First(&row).Error
		switch {
		case err == nil:
			err := s.db.WithContext(ctx).Model(&models.URL{}).Where("id = ?", row.ID).Updates(map[string]interface{}{
				"metadata_status": models.MetadataPending,
				"updated_at":      time.Now(),
			}).Error
			if err != nil {
				return fmt.Errorf("reset url %s: %w", canonical, err)
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			row = models.URL{
				URL:            canonical,
				Domain:         prompt.ExtractDomain(canonical),
				MetadataStatus: models.MetadataPending,
			}
			if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
				return fmt.Errorf("create url %s: %w", canonical, err)
			}
		default:
			return fmt.Errorf("find url %s: %w", canonical, err)
		}

		link := models.PostURL{PostID: postID, URLID: row.ID, Position: i}
		if err := s.db.WithContext(ctx).Create(&link).Error; err != nil {
			return fmt.Errorf("link url %s: %w", canonical, err)
		}
	}
	return nil
}

func (s *IngestService) findOrCreateBucket(ctx context.Context, slug string) (models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("username = ?", slug).First(&user).Error
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, fmt.Errorf("find user: %w", err)
	}

	user = models.User{
		Username: slug,
		Color1:   randomColor(),
		Color2:   randomColor(),
		Type:     models.UserTypeUser,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return models.User{}, fmt.Errorf("create user: %w", err)
	}
	s.log.WithField("username", slug).Info("Bucket created")
	return user, nil
}

// triggerEnrichment kicks one background enrichment batch. The submitting
// request never waits for it and never sees its errors.
func (s *IngestService) triggerEnrichment() {
	if s.enricher == nil {
		return
	}
	go func() {
		if _, err := s.enricher.ProcessPending(context.Background()); err != nil {
			s.log.WithError(err).Error("Background metadata enrichment failed")
		}
	}()
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func randomColor() string {
	return bucketColors[rand.Intn(len(bucketColors))]
}
