package db

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"tirefinder/pkg/models"
)

// NewDatabase creates a new database connection
func NewDatabase() (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_SSLMODE"),
		os.Getenv("DB_TIMEZONE"),
	)

	config := &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Error),
		DisableForeignKeyConstraintWhenMigrating: false,
	}

	database, err := gorm.Open(postgres.Open(dsn), config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return database, nil
}

// AutoMigrate runs database migrations using GORM
func AutoMigrate(database *gorm.DB) error {
	log.Info().Msg("Running GORM AutoMigrate...")

	if err := database.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		log.Warn().Err(err).Msg("Could not create uuid-ossp extension")
	}

	if err := database.AutoMigrate(models.GetAllModels()...); err != nil {
		return fmt.Errorf("failed to run GORM AutoMigrate: %w", err)
	}

	if err := createCustomIndexes(database); err != nil {
		log.Warn().Err(err).Msg("Failed to create some custom indexes")
	}

	log.Info().Msg("GORM AutoMigrate completed successfully")
	return nil
}

// createCustomIndexes creates any custom indexes that GORM might not handle
func createCustomIndexes(database *gorm.DB) error {
	indexes := []string{
		// Case-insensitive name lookup for CSV imports matching on shop_name
		`CREATE INDEX IF NOT EXISTS idx_shops_name ON shops (name)`,

		// Directory browsing filters
		`CREATE INDEX IF NOT EXISTS idx_shops_city_province ON shops (province, city) WHERE deleted_at IS NULL`,

		// Full text search over shop name and description
		`CREATE INDEX IF NOT EXISTS idx_shops_search ON shops USING gin(to_tsvector('english', coalesce(name, '') || ' ' || coalesce(description, '') || ' ' || coalesce(city, '')))`,

		// Moderation queue scans
		`CREATE INDEX IF NOT EXISTS idx_reviews_status_created ON reviews (status, created_at)`,

		// One approved rating lookup per shop
		`CREATE INDEX IF NOT EXISTS idx_reviews_shop_status ON reviews (shop_id, status)`,
	}

	for _, idx := range indexes {
		if err := database.Exec(idx).Error; err != nil {
			log.Warn().Err(err).Str("index", idx).Msg("Failed to create index")
		}
	}

	return nil
}

// SeedInitialData creates initial system data
func SeedInitialData(database *gorm.DB) error {
	var userCount int64
	if err := database.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&userCount).Error; err != nil {
		return fmt.Errorf("failed to check existing users: %w", err)
	}

	if userCount == 0 {
		adminEmail := os.Getenv("ADMIN_EMAIL")
		adminPassword := os.Getenv("ADMIN_PASSWORD_HASH")
		if adminEmail == "" || adminPassword == "" {
			log.Warn().Msg("ADMIN_EMAIL or ADMIN_PASSWORD_HASH not set, skipping admin seed")
			return nil
		}

		adminUser := models.User{
			Email:    adminEmail,
			Password: adminPassword,
			Name:     "Administrator",
			Role:     models.RoleAdmin,
			IsActive: true,
		}

		if err := database.Create(&adminUser).Error; err != nil {
			return fmt.Errorf("failed to create admin user: %w", err)
		}

		log.Info().Str("email", adminEmail).Msg("Admin user created successfully")
	}

	return nil
}

// RunMigrations is the main migration function called from main.go
func RunMigrations(database *gorm.DB) error {
	log.Info().Msg("Starting database migrations...")

	if err := AutoMigrate(database); err != nil {
		return fmt.Errorf("AutoMigrate failed: %w", err)
	}

	if err := SeedInitialData(database); err != nil {
		return fmt.Errorf("seed failed: %w", err)
	}

	log.Info().Msg("Database migrations completed")
	return nil
}
