package repo

import (
	"tirefinder/pkg/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReviewRepository handles review data access
type ReviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository creates a new review repository
func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Create creates a new review
func (r *ReviewRepository) Create(review *models.Review) error {
	return r.db.Create(review).Error
}

// GetByID gets a review by ID
func (r *ReviewRepository) GetByID(id uuid.UUID) (*models.Review, error) {
	var review models.Review
	if err := r.db.Preload("Shop").Where("id = ?", id).First(&review).Error; err != nil {
		return nil, err
	}
	return &review, nil
}

// ListByShop lists reviews for a shop filtered by status, newest first
func (r *ReviewRepository) ListByShop(shopID uuid.UUID, status models.ReviewStatus, limit, offset int) (*models.PaginationResult[models.Review], error) {
	query := r.db.Model(&models.Review{}).Where("shop_id = ?", shopID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var reviews []models.Review
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&reviews).Error; err != nil {
		return nil, err
	}

	page := (offset / limit) + 1
	totalPages := int((total + int64(limit) - 1) / int64(limit))

	return &models.PaginationResult[models.Review]{
		Data:       reviews,
		Total:      total,
		Page:       page,
		PerPage:    limit,
		TotalPages: totalPages,
	}, nil
}

// ListByStatus lists reviews across all shops by status, oldest first so the
// moderation queue is FIFO
func (r *ReviewRepository) ListByStatus(status models.ReviewStatus, limit, offset int) (*models.PaginationResult[models.Review], error) {
	query := r.db.Model(&models.Review{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var reviews []models.Review
	if err := query.Preload("Shop").Order("created_at ASC").Limit(limit).Offset(offset).Find(&reviews).Error; err != nil {
		return nil, err
	}

	page := (offset / limit) + 1
	totalPages := int((total + int64(limit) - 1) / int64(limit))

	return &models.PaginationResult[models.Review]{
		Data:       reviews,
		Total:      total,
		Page:       page,
		PerPage:    limit,
		TotalPages: totalPages,
	}, nil
}

// ListByUser lists reviews submitted by a user, newest first
func (r *ReviewRepository) ListByUser(userID uuid.UUID) ([]models.Review, error) {
	var reviews []models.Review
	err := r.db.Preload("Shop").Where("user_id = ?", userID).Order("created_at DESC").Find(&reviews).Error
	return reviews, err
}

// UpdateStatus sets the moderation status of a review
func (r *ReviewRepository) UpdateStatus(id uuid.UUID, status models.ReviewStatus) error {
	return r.db.Model(&models.Review{}).Where("id = ?", id).Update("status", status).Error
}

// Delete soft deletes a review
func (r *ReviewRepository) Delete(id uuid.UUID) error {
	return r.db.Where("id = ?", id).Delete(&models.Review{}).Error
}
