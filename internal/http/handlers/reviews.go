package handlers

import (
	"net/http"

	"tirefinder/internal/repo"
	"tirefinder/internal/services"
	"tirefinder/pkg/models"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// ReviewHandler handles public review endpoints
type ReviewHandler struct {
	reviewRepo   *repo.ReviewRepository
	shopRepo     *repo.ShopRepository
	emailService *services.EmailService
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(reviewRepo *repo.ReviewRepository, shopRepo *repo.ShopRepository, emailService *services.EmailService) *ReviewHandler {
	return &ReviewHandler{
		reviewRepo:   reviewRepo,
		shopRepo:     shopRepo,
		emailService: emailService,
	}
}

// Create godoc
// @Summary Submit a review
// @Description Submit a review for a shop; it stays hidden until approved by a moderator
// @Tags reviews
// @Accept json
// @Produce json
// @Param id path string true "Shop ID"
// @Param request body models.CreateReviewRequest true "Review data"
// @Success 201 {object} models.Review
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /shops/{id}/reviews [post]
func (h *ReviewHandler) Create(c echo.Context) error {
	shopID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid shop id"})
	}

	shop, err := h.shopRepo.GetByID(shopID)
	if err != nil || !shop.IsActive {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "shop not found"})
	}

	var req models.CreateReviewRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	review := &models.Review{
		ShopID:      shopID,
		AuthorName:  req.AuthorName,
		AuthorEmail: req.AuthorEmail,
		Rating:      req.Rating,
		Comment:     req.Comment,
		Status:      models.ReviewStatusPending,
	}

	// Attach the account when the submitter is logged in
	if userID, ok := c.Get("user_id").(uuid.UUID); ok {
		review.UserID = &userID
	}

	if err := h.reviewRepo.Create(review); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to create review"})
	}

	if h.emailService != nil {
		if err := h.emailService.SendReviewSubmittedEmail(shop.Name, review.AuthorName, review.Rating); err != nil {
			log.Warn().Err(err).Msg("failed to send review notification")
		}
	}

	return c.JSON(http.StatusCreated, review)
}

// ListByShop godoc
// @Summary List shop reviews
// @Description List approved reviews for a shop, newest first
// @Tags reviews
// @Produce json
// @Param id path string true "Shop ID"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} models.PaginationResult[models.Review]
// @Failure 400 {object} map[string]string
// @Router /shops/{id}/reviews [get]
func (h *ReviewHandler) ListByShop(c echo.Context) error {
	shopID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid shop id"})
	}

	limit, offset := parsePagination(c)

	result, err := h.reviewRepo.ListByShop(shopID, models.ReviewStatusApproved, limit, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to list reviews"})
	}

	return c.JSON(http.StatusOK, result)
}

// ListMine godoc
// @Summary List own reviews
// @Description List reviews submitted by the authenticated user, any status
// @Tags reviews
// @Produce json
// @Success 200 {array} models.Review
// @Failure 401 {object} map[string]string
// @Router /reviews/mine [get]
func (h *ReviewHandler) ListMine(c echo.Context) error {
	userID, ok := c.Get("user_id").(uuid.UUID)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "user_id not found"})
	}

	reviews, err := h.reviewRepo.ListByUser(userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to list reviews"})
	}

	return c.JSON(http.StatusOK, reviews)
}
