package handlers

import (
	"net/http"

	"tirefinder/internal/repo"
	"tirefinder/pkg/models"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// AdminReviewHandler handles review moderation endpoints
type AdminReviewHandler struct {
	reviewRepo *repo.ReviewRepository
	shopRepo   *repo.ShopRepository
}

// NewAdminReviewHandler creates a new admin review handler
func NewAdminReviewHandler(reviewRepo *repo.ReviewRepository, shopRepo *repo.ShopRepository) *AdminReviewHandler {
	return &AdminReviewHandler{
		reviewRepo: reviewRepo,
		shopRepo:   shopRepo,
	}
}

// ListByStatus godoc
// @Summary List reviews by status
// @Description List reviews in a moderation state, oldest first
// @Tags admin-reviews
// @Produce json
// @Param status query string false "Review status (pending, approved, rejected)" default(pending)
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} models.PaginationResult[models.Review]
// @Failure 400 {object} map[string]string
// @Router /admin/reviews [get]
func (h *AdminReviewHandler) ListByStatus(c echo.Context) error {
	status := models.ReviewStatus(c.QueryParam("status"))
	if status == "" {
		status = models.ReviewStatusPending
	}
	switch status {
	case models.ReviewStatusPending, models.ReviewStatusApproved, models.ReviewStatusRejected:
	default:
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid status"})
	}

	limit, offset := parsePagination(c)

	result, err := h.reviewRepo.ListByStatus(status, limit, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to list reviews"})
	}

	return c.JSON(http.StatusOK, result)
}

// Moderate godoc
// @Summary Moderate review
// @Description Approve or reject a pending review and refresh the shop rating
// @Tags admin-reviews
// @Accept json
// @Produce json
// @Param id path string true "Review ID"
// @Param request body models.ModerateReviewRequest true "Moderation decision"
// @Success 200 {object} models.Review
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /admin/reviews/{id} [put]
func (h *AdminReviewHandler) Moderate(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid review id"})
	}

	review, err := h.reviewRepo.GetByID(id)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "review not found"})
	}

	var req models.ModerateReviewRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	if err := h.reviewRepo.UpdateStatus(id, req.Status); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to update review"})
	}
	review.Status = req.Status

	// Approved reviews feed the shop's aggregate rating
	if err := h.shopRepo.RefreshRating(review.ShopID); err != nil {
		log.Warn().Err(err).Str("shop_id", review.ShopID.String()).Msg("failed to refresh shop rating")
	}

	return c.JSON(http.StatusOK, review)
}

// Delete godoc
// @Summary Delete review
// @Description Delete a review and refresh the shop rating
// @Tags admin-reviews
// @Produce json
// @Param id path string true "Review ID"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /admin/reviews/{id} [delete]
func (h *AdminReviewHandler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid review id"})
	}

	review, err := h.reviewRepo.GetByID(id)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "review not found"})
	}

	if err := h.reviewRepo.Delete(id); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to delete review"})
	}

	if err := h.shopRepo.RefreshRating(review.ShopID); err != nil {
		log.Warn().Err(err).Str("shop_id", review.ShopID.String()).Msg("failed to refresh shop rating")
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "review deleted"})
}
