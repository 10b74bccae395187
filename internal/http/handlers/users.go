package handlers

import (
	"net/http"

	"tirefinder/internal/repo"
	"tirefinder/pkg/models"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// UserHandler handles admin user management and directory statistics
type UserHandler struct {
	db       *gorm.DB
	userRepo *repo.UserRepository
}

// NewUserHandler creates a new user handler
func NewUserHandler(db *gorm.DB, userRepo *repo.UserRepository) *UserHandler {
	return &UserHandler{
		db:       db,
		userRepo: userRepo,
	}
}

// List godoc
// @Summary List users
// @Description List registered users
// @Tags admin-users
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} models.PaginationResult[models.User]
// @Failure 500 {object} map[string]string
// @Router /admin/users [get]
func (h *UserHandler) List(c echo.Context) error {
	limit, offset := parsePagination(c)

	result, err := h.userRepo.List(limit, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to list users"})
	}

	return c.JSON(http.StatusOK, result)
}

// DirectoryStats is the admin dashboard summary
type DirectoryStats struct {
	TotalShops      int64 `json:"total_shops"`
	ActiveShops     int64 `json:"active_shops"`
	ShopsWithHours  int64 `json:"shops_with_hours"`
	PendingReviews  int64 `json:"pending_reviews"`
	ApprovedReviews int64 `json:"approved_reviews"`
	TotalUsers      int64 `json:"total_users"`
	ImportJobs      int64 `json:"import_jobs"`
}

// Stats godoc
// @Summary Directory statistics
// @Description Summary counts for the admin dashboard
// @Tags admin-users
// @Produce json
// @Success 200 {object} handlers.DirectoryStats
// @Failure 500 {object} map[string]string
// @Router /admin/stats [get]
func (h *UserHandler) Stats(c echo.Context) error {
	var stats DirectoryStats

	if err := h.db.Model(&models.Shop{}).Count(&stats.TotalShops).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to compute stats"})
	}
	h.db.Model(&models.Shop{}).Where("is_active = ?", true).Count(&stats.ActiveShops)
	h.db.Model(&models.Shop{}).Where("hours_last_updated IS NOT NULL").Count(&stats.ShopsWithHours)
	h.db.Model(&models.Review{}).Where("status = ?", models.ReviewStatusPending).Count(&stats.PendingReviews)
	h.db.Model(&models.Review{}).Where("status = ?", models.ReviewStatusApproved).Count(&stats.ApprovedReviews)
	h.db.Model(&models.User{}).Count(&stats.TotalUsers)
	h.db.Model(&models.HoursImportJob{}).Count(&stats.ImportJobs)

	return c.JSON(http.StatusOK, stats)
}
