package router

import (
	"linkbuckets/internal/handlers"
	"linkbuckets/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Deps carries everything the API routes need.
type Deps struct {
	DB       *gorm.DB
	Ingest   *services.IngestService
	Metadata *services.MetadataService
	Reader   *services.ReaderService
	Importer *services.RSSImporter
}

// RegisterRoutes wires every API route onto the engine.
func RegisterRoutes(r *gin.Engine, deps Deps) {
	ingestHandler := handlers.NewIngestHandler(deps.Ingest)
	postHandler := handlers.NewPostHandler(deps.DB)
	urlHandler := handlers.NewURLHandler(deps.DB, deps.Reader)
	userHandler := handlers.NewUserHandler(deps.DB)
	metadataHandler := handlers.NewMetadataHandler(deps.Metadata)
	importHandler := handlers.NewImportHandler(deps.Importer)

	api := r.Group("/api")
	{
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

		api.POST("/metadata", metadataHandler.Process)
		api.GET("/metadata", metadataHandler.Stats)

		api.POST("/import/rss", importHandler.RSS)
	}
}
