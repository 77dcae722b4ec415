package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanDomain(t *testing.T) {
	assert.Equal(t, "example.com", CleanDomain("www.example.com"))
	assert.Equal(t, "example.com", CleanDomain("example.com"))
	assert.Equal(t, "blog.example.com", CleanDomain("blog.example.com"))
}

func TestGetDisplayTitle(t *testing.T) {
	title := "A Real Title"
	blank := "   "

	assert.Equal(t, "A Real Title", GetDisplayTitle(&title, "example.com", "https://example.com/x"))
	assert.Equal(t, "example.com", GetDisplayTitle(&blank, "www.example.com", "https://example.com/x"))
	assert.Equal(t, "example.com", GetDisplayTitle(nil, "www.example.com", "https://example.com/x"))
	assert.Equal(t, "example.com", GetDisplayTitle(nil, "unknown", "https://www.example.com/x"))
	assert.Equal(t, "not a url", GetDisplayTitle(nil, "", "not a url"))
}

func TestRenderMarkdownSanitizes(t *testing.T) {
	out := RenderMarkdown("# Hello\n\n<script>alert(1)</script>\n\n[site](https://example.com)")
	assert.Contains(t, out, "Hello")
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, `href="https://example.com"`)
	assert.Contains(t, out, `target="_blank"`)
}

func TestRenderMarkdownGFMTable(t *testing.T) {
	out := RenderMarkdown("| a | b |\n|---|---|\n| 1 | 2 |")
	assert.True(t, strings.Contains(out, "<table>"))
}
