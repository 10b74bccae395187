package repo

import (
	"context"
	"fmt"
	"strings"

	"tirefinder/internal/hours"
	"tirefinder/pkg/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ShopRepository handles shop data access
type ShopRepository struct {
	db *gorm.DB
}

// NewShopRepository creates a new shop repository
func NewShopRepository(db *gorm.DB) *ShopRepository {
	return &ShopRepository{db: db}
}

// ShopListFilter narrows public shop listings
type ShopListFilter struct {
	City            string
	Province        string
	Query           string
	Sort            string // name, rating, recent
	IncludeInactive bool
}

// List lists shops with pagination and filters
func (r *ShopRepository) List(limit, offset int, filter ShopListFilter) (*models.PaginationResult[models.Shop], error) {
	query := r.db.Model(&models.Shop{})

	if !filter.IncludeInactive {
		query = query.Where("is_active = true")
	}
	if filter.City != "" {
		query = query.Where("LOWER(city) = LOWER(?)", filter.City)
	}
	if filter.Province != "" {
		query = query.Where("UPPER(province) = UPPER(?)", filter.Province)
	}
	if filter.Query != "" {
		like := "%" + strings.ToLower(filter.Query) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ? OR LOWER(city) LIKE ?", like, like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count shops: %w", err)
	}

	switch filter.Sort {
	case "rating":
		query = query.Order("rating_avg DESC, rating_count DESC, name ASC")
	case "recent":
		query = query.Order("created_at DESC")
	default:
		query = query.Order("name ASC")
	}

	var shops []models.Shop
	if err := query.Limit(limit).Offset(offset).Find(&shops).Error; err != nil {
		return nil, fmt.Errorf("failed to list shops: %w", err)
	}

	page := (offset / limit) + 1
	totalPages := int((total + int64(limit) - 1) / int64(limit))

	return &models.PaginationResult[models.Shop]{
		Data:       shops,
		Total:      total,
		Page:       page,
		PerPage:    limit,
		TotalPages: totalPages,
	}, nil
}

// GetByID gets a shop by ID
func (r *ShopRepository) GetByID(id uuid.UUID) (*models.Shop, error) {
	var shop models.Shop
	if err := r.db.Where("id = ?", id).First(&shop).Error; err != nil {
		return nil, err
	}
	return &shop, nil
}

// GetBySlug gets a shop by its URL slug
func (r *ShopRepository) GetBySlug(slug string) (*models.Shop, error) {
	var shop models.Shop
	if err := r.db.Where("slug = ?", slug).First(&shop).Error; err != nil {
		return nil, err
	}
	return &shop, nil
}

// Create creates a new shop
func (r *ShopRepository) Create(shop *models.Shop) error {
	return r.db.Create(shop).Error
}

// Update updates a shop
func (r *ShopRepository) Update(shop *models.Shop) error {
	return r.db.Save(shop).Error
}

// Delete soft deletes a shop
func (r *ShopRepository) Delete(id uuid.UUID) error {
	return r.db.Where("id = ?", id).Delete(&models.Shop{}).Error
}

// Cities returns the distinct cities with at least one active shop
func (r *ShopRepository) Cities(province string) ([]string, error) {
	query := r.db.Model(&models.Shop{}).Where("is_active = true AND city != ''")
	if province != "" {
		query = query.Where("UPPER(province) = UPPER(?)", province)
	}

	var cities []string
	if err := query.Distinct("city").Order("city ASC").Pluck("city", &cities).Error; err != nil {
		return nil, err
	}
	return cities, nil
}

// Provinces returns the distinct provinces with at least one active shop
func (r *ShopRepository) Provinces() ([]string, error) {
	var provinces []string
	err := r.db.Model(&models.Shop{}).
		Where("is_active = true AND province != ''").
		Distinct("province").
		Order("province ASC").
		Pluck("province", &provinces).Error
	return provinces, err
}

// RefreshRating recomputes the cached rating from approved reviews
func (r *ShopRepository) RefreshRating(shopID uuid.UUID) error {
	var result struct {
		Avg   float64
		Count int64
	}
	err := r.db.Model(&models.Review{}).
		Select("COALESCE(AVG(rating), 0) as avg, COUNT(*) as count").
		Where("shop_id = ? AND status = ?", shopID, models.ReviewStatusApproved).
		Scan(&result).Error
	if err != nil {
		return err
	}

	return r.db.Model(&models.Shop{}).Where("id = ?", shopID).Updates(map[string]interface{}{
		"rating_avg":   result.Avg,
		"rating_count": result.Count,
	}).Error
}

// hours.ShopStore implementation

// dayColumn maps a recognized day name to its shops column
func dayColumn(day string) string {
	return "hours_" + day
}

func hoursUpdateValues(upd hours.HoursUpdate) map[string]interface{} {
	values := map[string]interface{}{
		"hours_last_updated": upd.LastUpdated,
	}
	for day, value := range upd.Days {
		values[dayColumn(day)] = value
	}
	if upd.Is24Hours != nil {
		values["is_24_hours"] = *upd.Is24Hours
	}
	return values
}

// UpdateHoursByID applies a partial hours update to the shop with the given
// identifier. Malformed identifiers resolve to no shop rather than erroring.
func (r *ShopRepository) UpdateHoursByID(ctx context.Context, id string, upd hours.HoursUpdate) (int64, error) {
	shopID, err := uuid.Parse(id)
	if err != nil {
		return 0, nil
	}

	result := r.db.WithContext(ctx).Model(&models.Shop{}).
		Where("id = ?", shopID).
		Updates(hoursUpdateValues(upd))
	return result.RowsAffected, result.Error
}

// UpdateHoursByName applies a partial hours update to the shop with the given
// exact display name. When several shops share a name the oldest record wins,
// so resolution stays deterministic across runs.
func (r *ShopRepository) UpdateHoursByName(ctx context.Context, name string, upd hours.HoursUpdate) (int64, error) {
	var shop models.Shop
	err := r.db.WithContext(ctx).Select("id").
		Where("name = ?", name).
		Order("created_at ASC, id ASC").
		First(&shop).Error
	if err == gorm.ErrRecordNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	result := r.db.WithContext(ctx).Model(&models.Shop{}).
		Where("id = ?", shop.ID).
		Updates(hoursUpdateValues(upd))
	return result.RowsAffected, result.Error
}

// ListForExport returns shops ordered by name (id as tiebreaker) so repeated
// exports of an unchanged data set are byte-identical.
func (r *ShopRepository) ListForExport(ctx context.Context, sel hours.Selector) ([]hours.ExportShop, error) {
	query := r.db.WithContext(ctx).Model(&models.Shop{}).Order("name ASC, id ASC")
	if sel.City != "" {
		query = query.Where("LOWER(city) = LOWER(?)", sel.City)
	}
	if sel.Province != "" {
		query = query.Where("UPPER(province) = UPPER(?)", sel.Province)
	}

	var shops []models.Shop
	if err := query.Find(&shops).Error; err != nil {
		return nil, err
	}

	out := make([]hours.ExportShop, 0, len(shops))
	for _, shop := range shops {
		out = append(out, hours.ExportShop{
			ID:        shop.ID.String(),
			Name:      shop.Name,
			Address:   shop.Address,
			Phone:     shop.Phone,
			City:      shop.City,
			Province:  shop.Province,
			Days:      shop.DayHours(),
			Is24Hours: shop.Is24Hours,
			IsOpenNow: shop.IsOpenNow,
		})
	}
	return out, nil
}
