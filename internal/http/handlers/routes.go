package handlers

import (
	"tirefinder/internal/app"
	"tirefinder/internal/http/middleware"

	"github.com/labstack/echo/v4"
)

// SetupRoutes sets up all API routes
func SetupRoutes(api *echo.Group, services *app.Services) {
	// WebSocket handler doubles as the import progress notifier
	wsHandler := NewWebSocketHandler(services.AuthService)
	services.HoursImportJobService.SetNotifier(wsHandler)

	// Auth routes (no authentication required)
	authHandler := NewAuthHandler(services.AuthService, services.EmailService)
	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.RefreshToken)
	auth.POST("/forgot-password", authHandler.ForgotPassword)
	auth.POST("/reset-password", authHandler.ResetPassword)

	// Public directory routes
	shopHandler := NewShopHandler(services.ShopRepo, services.EmbeddingService)
	api.GET("/shops", shopHandler.List)
	api.GET("/shops/:id", shopHandler.GetByID)
	api.GET("/shops/slug/:slug", shopHandler.GetBySlug)
	api.GET("/meta/provinces", shopHandler.Provinces)
	api.GET("/meta/cities", shopHandler.Cities)
	api.GET("/search/semantic", shopHandler.Search)

	reviewHandler := NewReviewHandler(services.ReviewRepo, services.ShopRepo, services.EmailService)
	api.GET("/shops/:id/reviews", reviewHandler.ListByShop)
	api.POST("/shops/:id/reviews", reviewHandler.Create)

	// WebSocket endpoint (handles authentication manually via query parameter)
	api.GET("/ws/imports", wsHandler.HandleWebSocket)

	// Protected routes (require authentication)
	protected := api.Group("")
	protected.Use(middleware.JWTAuth(services.AuthService))

	profileAuth := protected.Group("/auth")
	profileAuth.PUT("/profile", authHandler.UpdateProfile)
	profileAuth.PUT("/change-password", authHandler.ChangePassword)

	protected.GET("/reviews/mine", reviewHandler.ListMine)

	// Admin routes
	admin := protected.Group("/admin")
	admin.Use(middleware.AdminOnly())

	adminShopHandler := NewAdminShopHandler(services.DB, services.ShopRepo, services.StorageService, services.EmbeddingService)
	admin.GET("/shops", adminShopHandler.List)
	admin.POST("/shops", adminShopHandler.Create)
	admin.PUT("/shops/:id", adminShopHandler.Update)
	admin.DELETE("/shops/:id", adminShopHandler.Delete)
	admin.POST("/shops/:id/photo", adminShopHandler.UploadPhoto)

	adminReviewHandler := NewAdminReviewHandler(services.ReviewRepo, services.ShopRepo)
	admin.GET("/reviews", adminReviewHandler.ListByStatus)
	admin.PUT("/reviews/:id", adminReviewHandler.Moderate)
	admin.DELETE("/reviews/:id", adminReviewHandler.Delete)

	adminHoursHandler := NewAdminHoursHandler(services.HoursService, services.HoursImportJobService)
	adminHours := admin.Group("/hours")
	adminHours.POST("/import", adminHoursHandler.ImportAsync)
	adminHours.POST("/import/sync", adminHoursHandler.ImportSync)
	adminHours.GET("/import/jobs", adminHoursHandler.ListJobs)
	adminHours.GET("/import/jobs/:id", adminHoursHandler.GetJobProgress)
	adminHours.GET("/export", adminHoursHandler.Export)

	userHandler := NewUserHandler(services.DB, services.UserRepo)
	admin.GET("/users", userHandler.List)
	admin.GET("/stats", userHandler.Stats)
}
