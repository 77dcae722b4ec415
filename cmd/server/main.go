package main

import (
	"os"

	"linkbuckets/internal/db"
	"linkbuckets/internal/middleware"
	"linkbuckets/internal/router"
	"linkbuckets/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if err := godotenv.Load(); err != nil {
		logger.Info("No .env file found, reading env vars from system")
	}

	if level, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		logger.SetLevel(level)
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = "host=localhost user=postgres password=postgres dbname=linkbuckets port=5432 sslmode=disable"
	}

	database, err := db.Open(dsn, logger)
	if err != nil {
		logger.WithError(err).Fatal("Database initialization failed")
	}

	fetcher := services.NewOpenGraphFetcher(logger)
	metadata := services.NewMetadataService(database, fetcher, logger)
	ingest := services.NewIngestService(database, metadata, logger)
	reader := services.NewReaderService(logger)
	importer := services.NewRSSImporter(ingest, logger)

	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(middleware.RequestLogger(logger))
	r.Use(gin.Recovery())

	router.RegisterRoutes(r, router.Deps{
		DB:       database,
		Ingest:   ingest,
		Metadata: metadata,
		Reader:   reader,
		Importer: importer,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	logger.WithField("port", port).Info("Server starting")
	if err := r.Run(":" + port); err != nil {
		logger.WithError(err).Fatal("Server stopped")
	}
}
