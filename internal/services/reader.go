package services

import (
	"context"
	"fmt"
	"net/http"
	"time"

	readability "github.com/go-shiori/go-readability"
	"github.com/microcosm-cc/bluemonday"
	"github.com/sirupsen/logrus"
)

// Article is the readable extraction of a fetched page.
type Article struct {
	Title   string `json:"title"`
	Excerpt string `json:"excerpt"`
	Content string `json:"content"` // sanitized HTML
}

// ReaderService fetches a stored URL and extracts a sanitized, readable
// article body for the reader view.
type ReaderService struct {
	client    *http.Client
	sanitizer *bluemonday.Policy
	log       logrus.FieldLogger
}

func NewReaderService(logger logrus.FieldLogger) *ReaderService {
	return &ReaderService{
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		sanitizer: bluemonday.UGCPolicy(),
		log:       logger.WithField("component", "reader"),
	}
}

// FetchArticle downloads the page and runs readability extraction, then
// sanitizes the resulting HTML.
func (s *ReaderService) FetchArticle(ctx context.Context, rawURL string) (Article, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Article{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := s.client.Do(req)
	if err != nil {
		return Article{}, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Article{}, fmt.Errorf("fetch %s: HTTP status %d", rawURL, resp.StatusCode)
	}

	article, err := readability.FromReader(resp.Body, resp.Request.URL)
	if err != nil {
		return Article{}, fmt.Errorf("extract article from %s: %w", rawURL, err)
	}

	return Article{
		Title:   article.Title,
		Excerpt: article.Excerpt,
		Content: s.sanitizer.Sanitize(article.Content),
	}, nil
}
