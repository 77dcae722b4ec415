package prompt

import (
	"net/url"
	"strings"
)

// Query parameters stripped during canonicalization.
var trackingParams = map[string]bool{
	"utm_source":   true,
	"utm_medium":   true,
	"utm_campaign": true,
	"utm_term":     true,
	"utm_content":  true,
	"fbclid":       true,
	"gclid":        true,
	"ref":          true,
	"source":       true,
}

// Domains known to support HTTPS. http URLs pointing at them, or at one of
// their subdomains, are upgraded.
var secureDomains = []string{
	"github.com", "youtube.com", "twitter.com", "facebook.com",
	"instagram.com", "linkedin.com", "reddit.com", "stackoverflow.com",
	"medium.com", "dev.to", "vercel.com", "netlify.com",
}

// Canonicalize normalizes a URL into the stable form used as the dedup key
// for stored URLs: lowercased hostname, tracking parameters removed, https
// upgrade for well-known domains and no trailing slash on a bare root path.
//
// It never fails: input that cannot be parsed is returned unchanged. The
// function is idempotent, Canonicalize(Canonicalize(x)) == Canonicalize(x).
func Canonicalize(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}

	host := strings.ToLower(u.Hostname())
	if port := u.Port(); port != "" {
		u.Host = host + ":" + port
	} else {
		u.Host = host
	}

	u.RawQuery = stripTracking(u.RawQuery)

	if u.Scheme == "http" && isSecureDomain(host) {
		u.Scheme = "https"
	}

	if u.Path == "/" && u.RawQuery == "" && u.Fragment == "" {
		u.Path = ""
	}

	return u.String()
}

// stripTracking removes known tracking parameters while preserving the
// relative order of everything else. url.Values cannot be used here because
// its Encode sorts keys alphabetically.
func stripTracking(rawQuery string) string {
	if rawQuery == "" {
		return ""
	}
	var kept []string
	for _, pair := range strings.Split(rawQuery, "&") {
		if pair == "" {
			continue
		}
		key := pair
		if i := strings.IndexByte(pair, '='); i >= 0 {
			key = pair[:i]
		}
		if decoded, err := url.QueryUnescape(key); err == nil {
			key = decoded
		}
		if trackingParams[key] {
			continue
		}
		kept = append(kept, pair)
	}
	return strings.Join(kept, "&")
}

func isSecureDomain(host string) bool {
	for _, d := range secureDomains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

// ExtractDomain returns the hostname of a URL, or "unknown" when the URL
// cannot be parsed. Used to fill the denormalized domain column on stored
// URLs.
func ExtractDomain(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return u.Hostname()
}
