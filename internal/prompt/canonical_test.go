package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalizeTrackingAndUpgrade(t *testing.T) {
	got := Canonicalize("http://GitHub.COM/repo?utm_source=x&keep=1")
	assert.Equal(t, "https://github.com/repo?keep=1", got)
}

func TestCanonicalizeIdempotent(t *testing.T) {
	inputs := []string{
		"http://GitHub.COM/repo?utm_source=x&keep=1",
		"https://example.com/",
		"https://example.com/path/?b=2&utm_medium=m&a=1",
		"http://sub.reddit.com/r/golang",
		"https://example.com:8080/",
		"ftp://files.example.com/pub/file.txt",
		"https://example.com/#section",
		"http://plain.org/page?ref=hn",
	}
	for _, in := range inputs {
		once := Canonicalize(in)
		assert.Equal(t, once, Canonicalize(once), "input %q", in)
	}
}

func TestCanonicalizePreservesQueryOrder(t *testing.T) {
	got := Canonicalize("https://example.com/p?b=2&utm_source=x&a=1&gclid=g&z=3")
	assert.Equal(t, "https://example.com/p?b=2&a=1&z=3", got)
}

func TestCanonicalizeDropsBareRootSlash(t *testing.T) {
	assert.Equal(t, "https://example.com", Canonicalize("https://example.com/"))
	assert.Equal(t, "https://example.com", Canonicalize("https://example.com/?utm_source=x"))

	// Kept when anything else hangs off the root.
	assert.Equal(t, "https://example.com/?q=1", Canonicalize("https://example.com/?q=1"))
	assert.Equal(t, "https://example.com/#top", Canonicalize("https://example.com/#top"))
	// Non-root trailing slashes are untouched.
	assert.Equal(t, "https://example.com/path/", Canonicalize("https://example.com/path/"))
}

func TestCanonicalizeUpgradesSecureDomainsOnly(t *testing.T) {
	assert.Equal(t, "https://github.com/x", Canonicalize("http://github.com/x"))
	assert.Equal(t, "https://gist.github.com/x", Canonicalize("http://gist.github.com/x"))
	assert.Equal(t, "https://dev.to/article", Canonicalize("http://dev.to/article"))

	// Not on the allow-list: scheme unchanged.
	assert.Equal(t, "http://example.com/x", Canonicalize("http://example.com/x"))
	// Suffix match must respect the dot boundary.
	assert.Equal(t, "http://notgithub.com/x", Canonicalize("http://notgithub.com/x"))
	// https input is never downgraded.
	assert.Equal(t, "https://example.com/x", Canonicalize("https://example.com/x"))
}

func TestCanonicalizeLowercasesHostOnly(t *testing.T) {
	got := Canonicalize("https://Example.COM/CaseSensitive/Path?Q=Value")
	assert.Equal(t, "https://example.com/CaseSensitive/Path?Q=Value", got)
}

func TestCanonicalizeKeepsPort(t *testing.T) {
	assert.Equal(t, "http://localhost:3000/api", Canonicalize("http://LOCALHOST:3000/api"))
}

func TestCanonicalizeUnparsableReturnsInput(t *testing.T) {
	for _, in := range []string{
		"http://exa mple.com/path",
		"not a url at all",
		"://missing-scheme",
		"",
	} {
		assert.Equal(t, in, Canonicalize(in), "input %q", in)
	}
}

func TestExtractDomain(t *testing.T) {
	assert.Equal(t, "github.com", ExtractDomain("https://github.com/owner/repo"))
	assert.Equal(t, "sub.example.com", ExtractDomain("http://sub.example.com:8080/x"))
	assert.Equal(t, "unknown", ExtractDomain("not a url"))
}
