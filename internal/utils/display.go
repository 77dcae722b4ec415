package utils

import (
	"net/url"
	"strings"
)

// CleanDomain strips a leading www. for display.
func CleanDomain(domain string) string {
	return strings.TrimPrefix(domain, "www.")
}

// GetDisplayTitle picks the best human-readable label for a saved URL:
// the stored title, then the cleaned domain, then the URL's own hostname,
// and finally the raw URL.
func GetDisplayTitle(title *string, domain, rawURL string) string {
	if title != nil {
		if t := strings.TrimSpace(*title); t != "" {
			return t
		}
	}
	if domain != "" && domain != "unknown" {
		return CleanDomain(domain)
	}
	if u, err := url.Parse(rawURL); err == nil && u.Hostname() != "" {
		return CleanDomain(u.Hostname())
	}
	return rawURL
}
