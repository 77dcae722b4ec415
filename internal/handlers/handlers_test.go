package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"linkbuckets/internal/db"
	"linkbuckets/internal/models"
	"linkbuckets/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// newTestAPI wires the API routes over a private in-memory database. The
// enrichment trigger is disabled so tests never race background goroutines.
func newTestAPI(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	database, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(database))

	log := testLogger()
	ingest := services.NewIngestService(database, nil, log)
	metadata := services.NewMetadataService(database, services.NewOpenGraphFetcher(log), log)
	reader := services.NewReaderService(log)

	r := gin.New()
	api := r.Group("/api")
	{
		ingestHandler := NewIngestHandler(ingest)
		postHandler := NewPostHandler(database)
		urlHandler := NewURLHandler(database, reader)
		userHandler := NewUserHandler(database)
		metadataHandler := NewMetadataHandler(metadata)

		api.POST("/ingest", ingestHandler.Create)
		api.GET("/posts", postHandler.List)
		api.GET("/posts/:postId", postHandler.Detail)
		api.GET("/feed", postHandler.Feed)
		api.GET("/urls", urlHandler.List)
		api.POST("/urls/save", urlHandler.Save)
		api.POST("/urls/:id/click", urlHandler.Click)
		api.GET("/urls/:id/content", urlHandler.Content)
		api.GET("/users/:username", userHandler.GetByUsername)
		api.GET("/users/id/:id", userHandler.GetByID)
		api.PATCH("/users/id/:id", userHandler.Update)
		api.GET("/metadata", metadataHandler.Stats)
		api.POST("/metadata", metadataHandler.Process)
	}
	return r, database
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestIngestEndpoint(t *testing.T) {
	r, database := newTestAPI(t)

	w := doJSON(t, r, http.MethodPost, "/api/ingest", gin.H{
		"rawText": "Reading List\nhttps://example.com/one\nhttps://example.com/two",
		"slug":    "alice",
	})
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["success"])
	data := body["data"].(map[string]interface{})
	assert.NotZero(t, data["userId"])
	assert.NotZero(t, data["postId"])

	var count int64
	require.NoError(t, database.Model(&models.PostURL{}).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestIngestEndpointValidationAndOwnership(t *testing.T) {
	r, _ := newTestAPI(t)

	// Reserved slug.
	w := doJSON(t, r, http.MethodPost, "/api/ingest", gin.H{"rawText": "x", "slug": "api"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, false, decodeBody(t, w)["success"])

	// Editing someone else's post.
	w = doJSON(t, r, http.MethodPost, "/api/ingest", gin.H{"rawText": "Mine\nhttps://example.com", "slug": "alice"})
	require.Equal(t, http.StatusOK, w.Code)
	postID := decodeBody(t, w)["data"].(map[string]interface{})["postId"].(float64)

	w = doJSON(t, r, http.MethodPost, "/api/ingest", gin.H{
		"rawText": "Stolen",
		"slug":    "mallory",
		"editing": gin.H{"type": "post", "id": postID},
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestPostsListAndDetail(t *testing.T) {
	r, _ := newTestAPI(t)

	w := doJSON(t, r, http.MethodPost, "/api/ingest", gin.H{
		"rawText": "Go Links\nhttps://go.dev\nhttps://pkg.go.dev",
		"slug":    "alice",
	})
	require.Equal(t, http.StatusOK, w.Code)
	postID := decodeBody(t, w)["data"].(map[string]interface{})["postId"].(float64)

	w = doJSON(t, r, http.MethodGet, "/api/posts?bucket=alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	posts := decodeBody(t, w)["data"].([]interface{})
	require.Len(t, posts, 1)
	post := posts[0].(map[string]interface{})
	assert.Equal(t, "Go Links", post["title"])
	urls := post["urls"].([]interface{})
	require.Len(t, urls, 2)
	assert.Equal(t, "https://go.dev", urls[0].(map[string]interface{})["url"])

	// Another bucket's filter excludes it.
	w = doJSON(t, r, http.MethodGet, "/api/posts?bucket=bob", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeBody(t, w)["data"])

	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/posts/%d", int(postID)), nil)
	require.Equal(t, http.StatusOK, w.Code)
	detail := decodeBody(t, w)["data"].(map[string]interface{})
	prompt := detail["prompt"].(map[string]interface{})
	assert.Contains(t, prompt["rawText"], "Go Links")

	w = doJSON(t, r, http.MethodGet, "/api/posts/99999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFeedGroupsAndFilters(t *testing.T) {
	r, _ := newTestAPI(t)

	for _, req := range []gin.H{
		{"rawText": "Shared Title\nhttps://go.dev", "slug": "alice"},
		{"rawText": "  shared title \nhttps://example.com", "slug": "bob"},
	} {
		w := doJSON(t, r, http.MethodPost, "/api/ingest", req)
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := doJSON(t, r, http.MethodGet, "/api/feed", nil)
	require.Equal(t, http.StatusOK, w.Code)
	groups := decodeBody(t, w)["data"].([]interface{})
	require.Len(t, groups, 1)
	group := groups[0].(map[string]interface{})
	assert.Equal(t, "Shared Title", group["title"])
	assert.Len(t, group["posts"], 2)
	assert.Len(t, group["urls"], 2)
	owner := group["canonicalOwner"].(map[string]interface{})
	assert.Equal(t, "alice", owner["username"])

	w = doJSON(t, r, http.MethodGet, "/api/feed?domains=go.dev", nil)
	require.Equal(t, http.StatusOK, w.Code)
	groups = decodeBody(t, w)["data"].([]interface{})
	require.Len(t, groups, 1)
	assert.Len(t, groups[0].(map[string]interface{})["urls"], 1)

	w = doJSON(t, r, http.MethodGet, "/api/feed?domains=nomatch.test", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeBody(t, w)["data"])
}

func TestSaveClampsAtZero(t *testing.T) {
	r, database := newTestAPI(t)

	row := models.URL{URL: "https://example.com", Domain: "example.com", MetadataStatus: models.MetadataPending}
	require.NoError(t, database.Create(&row).Error)

	w := doJSON(t, r, http.MethodPost, "/api/urls/save", gin.H{"urlId": row.ID, "action": "unsave"})
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.EqualValues(t, 0, body["newSaveCount"])

	// The stored value is clamped too, not just the response.
	var stored models.URL
	require.NoError(t, database.First(&stored, row.ID).Error)
	assert.Equal(t, 0, stored.Saves)

	for i := 1; i <= 2; i++ {
		w = doJSON(t, r, http.MethodPost, "/api/urls/save", gin.H{"urlId": row.ID, "action": "save"})
		require.Equal(t, http.StatusOK, w.Code)
		assert.EqualValues(t, i, decodeBody(t, w)["newSaveCount"])
	}
	require.NoError(t, database.First(&stored, row.ID).Error)
	assert.Equal(t, 2, stored.Saves)

	w = doJSON(t, r, http.MethodPost, "/api/urls/save", gin.H{"urlId": row.ID, "action": "boost"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/urls/save", gin.H{"urlId": 99999, "action": "save"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestClickIncrements(t *testing.T) {
	r, database := newTestAPI(t)

	row := models.URL{URL: "https://example.com", Domain: "example.com", MetadataStatus: models.MetadataPending}
	require.NoError(t, database.Create(&row).Error)

	for i := 0; i < 3; i++ {
		w := doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/urls/%d/click", row.ID), nil)
		require.Equal(t, http.StatusOK, w.Code)
	}

	var updated models.URL
	require.NoError(t, database.First(&updated, row.ID).Error)
	assert.Equal(t, 3, updated.Clicks)

	w := doJSON(t, r, http.MethodPost, "/api/urls/99999/click", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUserProfileAndUpdate(t *testing.T) {
	r, _ := newTestAPI(t)

	w := doJSON(t, r, http.MethodPost, "/api/ingest", gin.H{
		"rawText": "Links\nhttps://go.dev\nhttps://go.dev/blog",
		"slug":    "alice",
	})
	require.Equal(t, http.StatusOK, w.Code)
	userID := decodeBody(t, w)["data"].(map[string]interface{})["userId"].(float64)

	w = doJSON(t, r, http.MethodGet, "/api/users/alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	profile := decodeBody(t, w)["data"].(map[string]interface{})
	stats := profile["stats"].(map[string]interface{})
	assert.EqualValues(t, 1, stats["totalPosts"])
	assert.EqualValues(t, 2, stats["totalURLs"])
	assert.EqualValues(t, 1, stats["uniqueDomains"])

	w = doJSON(t, r, http.MethodPatch, fmt.Sprintf("/api/users/id/%d", int(userID)), gin.H{
		"description": "**Curated** links",
		"color1":      "#1A2B3C",
	})
	require.Equal(t, http.StatusOK, w.Code)
	profile = decodeBody(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "#1A2B3C", profile["color1"])
	assert.Contains(t, profile["descriptionHtml"], "<strong>Curated</strong>")

	w = doJSON(t, r, http.MethodPatch, fmt.Sprintf("/api/users/id/%d", int(userID)), gin.H{
		"color1": "red",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/users/ghost", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestURLContentEndpoint(t *testing.T) {
	r, database := newTestAPI(t)

	// Enough body for extraction, but no title anywhere: the response falls
	// back to the stored domain as the display title.
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		io.WriteString(w, `<html><body><article>
			<p>Goroutines are multiplexed onto a small number of operating system
			threads by the runtime scheduler, which keeps blocking operations from
			tying up a thread for longer than necessary.</p>
			<p>The scheduler uses per-processor run queues with work stealing, so a
			processor that drains its own queue takes runnable goroutines from a
			random peer instead of sitting idle while work piles up elsewhere.</p>
			<p>Network pollers integrate with the scheduler directly, parking a
			goroutine that waits on a socket and waking it when the descriptor is
			ready, without consuming a thread in the meantime.</p>
			<script>alert("xss")</script>
		</article></body></html>`)
	}))
	t.Cleanup(page.Close)

	row := models.URL{URL: page.URL, Domain: "www.example.com", MetadataStatus: models.MetadataPending}
	require.NoError(t, database.Create(&row).Error)

	w := doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/urls/%d/content", row.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeBody(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "example.com", data["title"])
	assert.Equal(t, page.URL, data["url"])
	content := data["content"].(string)
	assert.Contains(t, content, "work stealing")
	assert.NotContains(t, content, "<script")

	w = doJSON(t, r, http.MethodGet, "/api/urls/99999/content", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	dead := models.URL{URL: "http://127.0.0.1:1/article", Domain: "dead.test", MetadataStatus: models.MetadataPending}
	require.NoError(t, database.Create(&dead).Error)
	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/urls/%d/content", dead.ID), nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestMetadataStatsEndpoint(t *testing.T) {
	r, database := newTestAPI(t)

	for i, status := range []string{models.MetadataPending, models.MetadataSuccess, models.MetadataFailed} {
		require.NoError(t, database.Create(&models.URL{
			URL:            fmt.Sprintf("https://stats%d.com", i),
			Domain:         fmt.Sprintf("stats%d.com", i),
			MetadataStatus: status,
		}).Error)
	}

	w := doJSON(t, r, http.MethodGet, "/api/metadata", nil)
	require.Equal(t, http.StatusOK, w.Code)
	stats := decodeBody(t, w)["stats"].(map[string]interface{})
	assert.EqualValues(t, 1, stats["pending"])
	assert.EqualValues(t, 1, stats["successful"])
	assert.EqualValues(t, 1, stats["failed"])
	assert.EqualValues(t, 3, stats["total"])
}
