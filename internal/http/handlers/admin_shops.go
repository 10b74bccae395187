package handlers

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"tirefinder/internal/repo"
	"tirefinder/internal/services"
	"tirefinder/pkg/models"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// AdminShopHandler handles shop management endpoints
type AdminShopHandler struct {
	db               *gorm.DB
	shopRepo         *repo.ShopRepository
	storageService   *services.StorageService
	embeddingService *services.EmbeddingService
}

// NewAdminShopHandler creates a new admin shop handler
func NewAdminShopHandler(db *gorm.DB, shopRepo *repo.ShopRepository, storageService *services.StorageService, embeddingService *services.EmbeddingService) *AdminShopHandler {
	return &AdminShopHandler{
		db:               db,
		shopRepo:         shopRepo,
		storageService:   storageService,
		embeddingService: embeddingService,
	}
}

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(name string) string {
	slug := strings.ToLower(name)
	slug = slugPattern.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

// uniqueSlug appends a short suffix when the natural slug is taken
func (h *AdminShopHandler) uniqueSlug(name string) string {
	slug := slugify(name)
	if _, err := h.shopRepo.GetBySlug(slug); err != nil {
		return slug
	}
	return fmt.Sprintf("%s-%s", slug, uuid.New().String()[:8])
}

func (h *AdminShopHandler) reindexShop(shop *models.Shop) {
	if h.embeddingService == nil {
		return
	}
	go func() {
		if err := h.embeddingService.UpsertShopEmbedding(h.db, shop); err != nil {
			log.Warn().Err(err).Str("shop_id", shop.ID.String()).Msg("failed to index shop")
		}
	}()
}

// List godoc
// @Summary List shops (admin)
// @Description List all shops including inactive ones
// @Tags admin-shops
// @Produce json
// @Param city query string false "Filter by city"
// @Param province query string false "Filter by province"
// @Param q query string false "Name or description search"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} models.PaginationResult[models.Shop]
// @Failure 500 {object} map[string]string
// @Router /admin/shops [get]
func (h *AdminShopHandler) List(c echo.Context) error {
	limit, offset := parsePagination(c)

	filter := repo.ShopListFilter{
		City:            c.QueryParam("city"),
		Province:        c.QueryParam("province"),
		Query:           c.QueryParam("q"),
		Sort:            c.QueryParam("sort"),
		IncludeInactive: true,
	}

	result, err := h.shopRepo.List(limit, offset, filter)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to list shops"})
	}

	return c.JSON(http.StatusOK, result)
}

// Create godoc
// @Summary Create shop
// @Description Create a new shop
// @Tags admin-shops
// @Accept json
// @Produce json
// @Param request body models.CreateShopRequest true "Shop data"
// @Success 201 {object} models.Shop
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /admin/shops [post]
func (h *AdminShopHandler) Create(c echo.Context) error {
	var req models.CreateShopRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	shop := &models.Shop{
		Name:        req.Name,
		Slug:        h.uniqueSlug(req.Name),
		Description: req.Description,
		Address:     req.Address,
		City:        req.City,
		Province:    strings.ToUpper(req.Province),
		PostalCode:  req.PostalCode,
		Phone:       req.Phone,
		Email:       req.Email,
		Website:     req.Website,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		IsActive:    true,
	}

	if err := h.shopRepo.Create(shop); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to create shop"})
	}

	h.reindexShop(shop)

	return c.JSON(http.StatusCreated, shop)
}

// Update godoc
// @Summary Update shop
// @Description Update shop fields; only the fields present in the payload change
// @Tags admin-shops
// @Accept json
// @Produce json
// @Param id path string true "Shop ID"
// @Param request body models.UpdateShopRequest true "Shop data"
// @Success 200 {object} models.Shop
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /admin/shops/{id} [put]
func (h *AdminShopHandler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid shop id"})
	}

	shop, err := h.shopRepo.GetByID(id)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "shop not found"})
	}

	var req models.UpdateShopRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	if req.Name != nil && *req.Name != shop.Name {
		shop.Name = *req.Name
		shop.Slug = h.uniqueSlug(*req.Name)
	}
	if req.Description != nil {
		shop.Description = *req.Description
	}
	if req.Address != nil {
		shop.Address = *req.Address
	}
	if req.City != nil {
		shop.City = *req.City
	}
	if req.Province != nil {
		shop.Province = strings.ToUpper(*req.Province)
	}
	if req.PostalCode != nil {
		shop.PostalCode = *req.PostalCode
	}
	if req.Phone != nil {
		shop.Phone = *req.Phone
	}
	if req.Email != nil {
		shop.Email = *req.Email
	}
	if req.Website != nil {
		shop.Website = *req.Website
	}
	if req.Latitude != nil {
		shop.Latitude = req.Latitude
	}
	if req.Longitude != nil {
		shop.Longitude = req.Longitude
	}
	if req.IsActive != nil {
		shop.IsActive = *req.IsActive
	}

	if err := h.shopRepo.Update(shop); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to update shop"})
	}

	h.reindexShop(shop)

	return c.JSON(http.StatusOK, shop)
}

// Delete godoc
// @Summary Delete shop
// @Description Soft delete a shop and drop it from the search index
// @Tags admin-shops
// @Produce json
// @Param id path string true "Shop ID"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /admin/shops/{id} [delete]
func (h *AdminShopHandler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid shop id"})
	}

	if _, err := h.shopRepo.GetByID(id); err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "shop not found"})
	}

	if err := h.shopRepo.Delete(id); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to delete shop"})
	}

	if h.embeddingService != nil {
		if err := h.embeddingService.DeleteShopEmbedding(id.String()); err != nil {
			log.Warn().Err(err).Str("shop_id", id.String()).Msg("failed to remove shop from index")
		}
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "shop deleted"})
}

// UploadPhoto godoc
// @Summary Upload shop photo
// @Description Upload a photo for a shop, replacing the previous one
// @Tags admin-shops
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Shop ID"
// @Param file formData file true "Image file"
// @Success 200 {object} models.Shop
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /admin/shops/{id}/photo [post]
func (h *AdminShopHandler) UploadPhoto(c echo.Context) error {
	if h.storageService == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "storage not configured"})
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid shop id"})
	}

	shop, err := h.shopRepo.GetByID(id)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "shop not found"})
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "file is required"})
	}

	url, key, err := h.storageService.UploadShopPhoto(fileHeader, shop.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	// Remove the previous photo after the new one is in place
	if shop.PhotoS3Key != "" {
		if err := h.storageService.DeleteFile(shop.PhotoS3Key); err != nil {
			log.Warn().Err(err).Str("key", shop.PhotoS3Key).Msg("failed to delete old photo")
		}
	}

	shop.PhotoURL = url
	shop.PhotoS3Key = key
	if err := h.shopRepo.Update(shop); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to update shop"})
	}

	return c.JSON(http.StatusOK, shop)
}
