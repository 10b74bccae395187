package app

import (
	"os"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"tirefinder/internal/auth"
	"tirefinder/internal/hours"
	"tirefinder/internal/repo"
	"tirefinder/internal/services"
)

// Services holds all application services
type Services struct {
	DB                    *gorm.DB
	AuthService           *auth.Service
	UserRepo              *repo.UserRepository
	ShopRepo              *repo.ShopRepository
	ReviewRepo            *repo.ReviewRepository
	HoursService          *hours.Service
	HoursImportJobService *services.HoursImportJobService
	EmailService          *services.EmailService
	StorageService        *services.StorageService
	EmbeddingService      *services.EmbeddingService
}

// NewServices creates a new services container
func NewServices(db *gorm.DB) *Services {
	userRepo := repo.NewUserRepository(db)
	shopRepo := repo.NewShopRepository(db)
	reviewRepo := repo.NewReviewRepository(db)

	authService := auth.NewService(userRepo)
	hoursService := hours.NewService(shopRepo)
	hoursImportJobService := services.NewHoursImportJobService(db, shopRepo)

	// Email service is optional, admins just lose notifications without it
	emailService, err := services.NewEmailService()
	if err != nil {
		log.Warn().Err(err).Msg("email service not configured")
		emailService = nil
	}

	// Storage service is optional, photo uploads fail without it
	storageService, err := services.NewStorageService()
	if err != nil {
		log.Warn().Err(err).Msg("storage service not configured")
		storageService = nil
	}

	// Embedding service is optional, semantic search falls back to SQL
	var embeddingService *services.EmbeddingService
	openaiAPIKey := os.Getenv("OPENAI_API_KEY")
	qdrantURL := os.Getenv("QDRANT_URL")
	qdrantPassword := os.Getenv("QDRANT_PASSWORD")
	if qdrantURL == "" {
		qdrantURL = "localhost:6334" // default gRPC port
	}

	if openaiAPIKey != "" {
		embeddingService, err = services.NewEmbeddingService(openaiAPIKey, qdrantURL, qdrantPassword)
		if err != nil {
			log.Warn().Err(err).Msg("failed to initialize embedding service")
			embeddingService = nil
		} else if err := embeddingService.CheckQdrantHealth(); err != nil {
			log.Warn().Err(err).Msg("Qdrant connection unhealthy, semantic search may be unavailable")
		}
	}

	return &Services{
		DB:                    db,
		AuthService:           authService,
		UserRepo:              userRepo,
		ShopRepo:              shopRepo,
		ReviewRepo:            reviewRepo,
		HoursService:          hoursService,
		HoursImportJobService: hoursImportJobService,
		EmailService:          emailService,
		StorageService:        storageService,
		EmbeddingService:      embeddingService,
	}
}
