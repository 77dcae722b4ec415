package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
)

// Per-fetch timeout. There is no overall batch deadline; a hanging fetch is
// bounded only by this.
const fetchTimeout = 5 * time.Second

// PageMetadata is what the enrichment worker extracts from a fetched page.
// Empty fields mean the page did not declare them.
type PageMetadata struct {
	Title       string
	Description string
	Image       string
}

// MetadataFetcher resolves Open Graph style metadata for a URL.
type MetadataFetcher interface {
	Fetch(ctx context.Context, rawURL string) (PageMetadata, error)
}

// OpenGraphFetcher fetches a page over HTTP and reads Open Graph,
// Twitter-card and Dublin Core metadata out of its meta tags, in that
// priority order.
type OpenGraphFetcher struct {
	client *http.Client
	log    logrus.FieldLogger
}

func NewOpenGraphFetcher(logger logrus.FieldLogger) *OpenGraphFetcher {
	return &OpenGraphFetcher{
		client: &http.Client{
			Timeout: fetchTimeout,
		},
		log: logger.WithField("component", "og_fetcher"),
	}
}

func (f *OpenGraphFetcher) Fetch(ctx context.Context, rawURL string) (PageMetadata, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return PageMetadata{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return PageMetadata{}, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return PageMetadata{}, fmt.Errorf("fetch %s: HTTP status %d", rawURL, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return PageMetadata{}, fmt.Errorf("parse %s: %w", rawURL, err)
	}

	meta := collectMetaTags(doc)
	md := PageMetadata{
		Title:       firstNonEmpty(meta["og:title"], meta["twitter:title"], meta["dc.title"]),
		Description: firstNonEmpty(meta["og:description"], meta["twitter:description"], meta["dc.description"]),
		Image:       firstNonEmpty(meta["og:image"], meta["twitter:image"]),
	}

	// A relative image is resolved against the fetched page's origin, not
	// the full request path. If it cannot be resolved, the image is dropped
	// rather than failing the whole record.
	if md.Image != "" && !strings.HasPrefix(md.Image, "http") {
		origin := &url.URL{Scheme: resp.Request.URL.Scheme, Host: resp.Request.URL.Host}
		ref, err := url.Parse(md.Image)
		if err != nil {
			f.log.WithField("url", rawURL).WithError(err).Debug("Dropping unresolvable image URL")
			md.Image = ""
		} else {
			md.Image = origin.ResolveReference(ref).String()
		}
	}

	return md, nil
}

// collectMetaTags maps lowercased property/name attributes to their first
// content value. Keeping only the first occurrence means a page declaring
// several og:image tags yields the first one.
func collectMetaTags(doc *goquery.Document) map[string]string {
	meta := make(map[string]string)
	doc.Find("meta").Each(func(_ int, s *goquery.Selection) {
		key, ok := s.Attr("property")
		if !ok {
			key, ok = s.Attr("name")
		}
		if !ok {
			return
		}
		key = strings.ToLower(strings.TrimSpace(key))
		content := strings.TrimSpace(s.AttrOr("content", ""))
		if key == "" || content == "" {
			return
		}
		if _, exists := meta[key]; !exists {
			meta[key] = content
		}
	})
	return meta
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
