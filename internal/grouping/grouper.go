// Package grouping merges posts that share a normalized title into single
// display units for the aggregated feed, and defines the JSON shapes the
// feed API exposes.
package grouping

import (
	"sort"
	"strings"
	"time"
)

// Owner is the bucket attribution attached to posts and grouped URLs.
type Owner struct {
	ID       uint    `json:"id"`
	Username string  `json:"username"`
	Title    *string `json:"title"`
	Color1   string  `json:"color1"`
	Color2   string  `json:"color2"`
}

// URL is one URL as displayed inside a post.
type URL struct {
	ID          uint      `json:"id"`
	URL         string    `json:"url"`
	Domain      string    `json:"domain"`
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Image1      *string   `json:"image1"`
	Saves       int       `json:"saves"`
	Clicks      int       `json:"clicks"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Post is one post with its owner and ordered URLs, the input unit for
// grouping and the shape returned by the posts listing.
type Post struct {
	ID        uint      `json:"id"`
	Title     *string   `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
	Owner     Owner     `json:"owner"`
	URLs      []URL     `json:"urls"`
}

// PostRef is the denormalized post reference carried on every grouped URL.
type PostRef struct {
	ID        uint      `json:"id"`
	Title     *string   `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
	Owner     Owner     `json:"owner"`
}

// URLWithPost is a URL tagged with the post it came from.
type URLWithPost struct {
	URL
	Post PostRef `json:"post"`
}

// GroupedPost merges every post sharing a normalized title into one display
// unit. It is computed per request and never persisted.
type GroupedPost struct {
	Title          string        `json:"title"`
	CanonicalOwner Owner         `json:"canonicalOwner"`
	Posts          []PostRef     `json:"posts"`
	URLs           []URLWithPost `json:"urls"`
}

// normalizeTitle computes the group key. Nil titles key as the empty string,
// so every untitled post across every bucket lands in the same group; callers
// that care pre-filter by bucket.
func normalizeTitle(title *string) string {
	if title == nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(*title))
}

// GroupPosts merges posts sharing a normalized title. The canonical owner is
// the owner of the first post encountered for a key and never changes
// afterwards. URLs are concatenated across contributing posts without
// deduplication. Groups come back sorted by their most recent post, newest
// first; for a fixed input order the output is fully deterministic.
func GroupPosts(posts []Post) []GroupedPost {
	var order []string
	groups := make(map[string]*GroupedPost)
	members := make(map[string]map[uint]bool)

	for _, post := range posts {
		key := normalizeTitle(post.Title)
		ref := PostRef{ID: post.ID, Title: post.Title, CreatedAt: post.CreatedAt, Owner: post.Owner}

		urls := make([]URLWithPost, 0, len(post.URLs))
		for _, u := range post.URLs {
			urls = append(urls, URLWithPost{URL: u, Post: ref})
		}

		group, ok := groups[key]
		if !ok {
			title := "Untitled"
			if post.Title != nil && *post.Title != "" {
				title = *post.Title
			}
			groups[key] = &GroupedPost{
				Title:          title,
				CanonicalOwner: post.Owner,
				Posts:          []PostRef{ref},
				URLs:           urls,
			}
			members[key] = map[uint]bool{post.ID: true}
			order = append(order, key)
			continue
		}

		if !members[key][post.ID] {
			members[key][post.ID] = true
			group.Posts = append(group.Posts, ref)
		}
		// URLs are appended even for a repeated post id.
		group.URLs = append(group.URLs, urls...)
	}

	out := make([]GroupedPost, 0, len(order))
	for _, key := range order {
		out = append(out, *groups[key])
	}

	// Most recently active group first. Stable, so groups with equal
	// activity keep insertion order.
	sort.SliceStable(out, func(i, j int) bool {
		return lastActivity(out[i].Posts).After(lastActivity(out[j].Posts))
	})
	return out
}

func lastActivity(posts []PostRef) time.Time {
	var max time.Time
	for _, p := range posts {
		if p.CreatedAt.After(max) {
			max = p.CreatedAt
		}
	}
	return max
}

// FilterGroupedPosts narrows each group's URLs to those whose domain is in
// the selection and drops groups left with no matching URLs. An empty
// selection is a no-op and returns the input unchanged.
func FilterGroupedPosts(groups []GroupedPost, selectedDomains map[string]bool) []GroupedPost {
	if len(selectedDomains) == 0 {
		return groups
	}
	filtered := make([]GroupedPost, 0, len(groups))
	for _, group := range groups {
		urls := make([]URLWithPost, 0, len(group.URLs))
		for _, u := range group.URLs {
			if u.Domain != "" && selectedDomains[u.Domain] {
				urls = append(urls, u)
			}
		}
		if len(urls) == 0 {
			continue
		}
		group.URLs = urls
		filtered = append(filtered, group)
	}
	return filtered
}
