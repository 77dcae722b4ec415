package db

import (
	"fmt"

	"linkbuckets/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Open connects to Postgres, runs migrations and seeds the built-in buckets.
// The returned handle is passed explicitly into services and handlers; there
// is no package-level singleton.
func Open(dsn string, logger logrus.FieldLogger) (*gorm.DB, error) {
	database, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	logger.Info("Database connection established")

	if err := Migrate(database); err != nil {
		return nil, err
	}
	logger.Info("Database migration completed")

	if err := seedBuckets(database, logger); err != nil {
		return nil, err
	}
	return database, nil
}

// Migrate creates or updates the schema. Exported so tests can run it
// against their own database handle.
func Migrate(database *gorm.DB) error {
	err := database.AutoMigrate(
		&models.User{},
		&models.Prompt{},
		&models.Post{},
		&models.URL{},
		&models.PostURL{},
	)
	if err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	return nil
}

// seedBuckets creates the built-in system and anonymous buckets if they do
// not exist yet. Safe to run on every startup.
func seedBuckets(database *gorm.DB, logger logrus.FieldLogger) error {
	system := "System"
	anonymous := "Anonymous"
	frontPage := "Front page community posts"

	seeds := []models.User{
		{Username: "system", Title: &system, Type: models.UserTypeSystem, Color1: "#000000", Color2: "#ffffff"},
		{Username: "anonymous", Title: &anonymous, Description: &frontPage, Type: models.UserTypeUser, Color1: "#6366f1", Color2: "#8b5cf6"},
	}

	for _, seed := range seeds {
		var existing models.User
		err := database.Where("username = ?", seed.Username).First(&existing).Error
		if err == nil {
			continue
		}
		if err != gorm.ErrRecordNotFound {
			return fmt.Errorf("check seed bucket %s: %w", seed.Username, err)
		}
		if err := database.Create(&seed).Error; err != nil {
			return fmt.Errorf("create seed bucket %s: %w", seed.Username, err)
		}
		logger.WithField("username", seed.Username).Info("Seed bucket created")
	}
	return nil
}
