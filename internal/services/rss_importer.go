package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/sirupsen/logrus"
)

const (
	defaultImportItems = 10
	maxImportItems     = 50
)

// RSSImporter turns the links of an RSS/Atom feed into a bucket post through
// the standard ingestion pipeline, so canonicalization, dedup and metadata
// enrichment all apply to imported links.
type RSSImporter struct {
	parser *gofeed.Parser
	ingest *IngestService
	log    logrus.FieldLogger
}

func NewRSSImporter(ingest *IngestService, logger logrus.FieldLogger) *RSSImporter {
	httpClient := &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        10,
			IdleConnTimeout:     30 * time.Second,
			MaxIdleConnsPerHost: 2,
		},
	}

	parser := gofeed.NewParser()
	parser.Client = httpClient

	return &RSSImporter{
		parser: parser,
		ingest: ingest,
		log:    logger.WithField("component", "rss_importer"),
	}
}

// Import fetches the feed and ingests up to limit item links as one post
// titled after the feed. limit outside (0, maxImportItems] falls back to the
// default.
func (im *RSSImporter) Import(ctx context.Context, slug, feedURL string, limit int) (IngestResult, error) {
	if feedURL == "" {
		return IngestResult{}, invalid("Missing required field: feedUrl")
	}
	if limit <= 0 || limit > maxImportItems {
		limit = defaultImportItems
	}

	feed, err := im.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return IngestResult{}, fmt.Errorf("parse feed %s: %w", feedURL, err)
	}

	var b strings.Builder
	if title := strings.TrimSpace(feed.Title); title != "" {
		b.WriteString(title)
		b.WriteString("\n")
	}

	count := 0
	for _, item := range feed.Items {
		if item.Link == "" {
			continue
		}
		b.WriteString(item.Link)
		b.WriteString("\n")
		count++
		if count >= limit {
			break
		}
	}
	if count == 0 {
		return IngestResult{}, invalid("Feed has no linkable items")
	}

	im.log.WithFields(logrus.Fields{"feed": feedURL, "slug": slug, "items": count}).Info("Importing feed links")
	return im.ingest.Ingest(ctx, b.String(), slug, nil)
}
