// Package prompt turns freeform pasted text into a title, a deduplicatable
// list of canonical URLs and a list of @mentions.
package prompt

import (
	"net/url"
	"regexp"
	"strings"
)

// ParsedPrompt is the result of parsing one raw text submission.
type ParsedPrompt struct {
	Title    string   // empty when no usable title line was found
	URLs     []string // canonicalized, in encountered order
	Mentions []string // lowercased, deduplicated, first-seen order
}

var mentionRe = regexp.MustCompile(`(?i)@([a-z0-9_-]+)`)

// Parse extracts a title, URLs and @username mentions from raw user input.
//
// Format:
//   - every line that parses as an http/https/ftp/ftps URL is collected, in order
//   - the first non-URL line is the only title candidate, win or lose: mentions
//     are stripped from it, and if nothing remains the post stays untitled even
//     when a later non-URL line exists
//   - @mentions are collected from anywhere in the raw text
//   - all other lines are ignored
//
// Empty or whitespace-only input yields an empty result, not an error.
func Parse(rawText string) ParsedPrompt {
	parsed := ParsedPrompt{URLs: []string{}, Mentions: []string{}}
	if strings.TrimSpace(rawText) == "" {
		return parsed
	}

	// Mentions come from the raw text, not the split lines, so a mention on
	// a URL line still counts.
	seen := make(map[string]bool)
	for _, m := range mentionRe.FindAllStringSubmatch(rawText, -1) {
		name := strings.ToLower(m[1])
		if !seen[name] {
			seen[name] = true
			parsed.Mentions = append(parsed.Mentions, name)
		}
	}

	titleTried := false
	for _, line := range strings.Split(rawText, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if isValidURL(line) {
			parsed.URLs = append(parsed.URLs, Canonicalize(line))
		} else if !titleTried {
			// The single title attempt is consumed here whether or not
			// anything survives mention stripping.
			titleTried = true
			parsed.Title = strings.TrimSpace(mentionRe.ReplaceAllString(line, ""))
		}
	}
	return parsed
}

// isValidURL reports whether a line is a URL with one of the accepted web
// schemes. Bare domains without a scheme are not URLs.
func isValidURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	switch u.Scheme {
	case "http", "https", "ftp", "ftps":
		return u.Host != ""
	}
	return false
}
