package handlers

import (
	"net/http"
	"strconv"

	"tirefinder/internal/repo"
	"tirefinder/internal/services"
	"tirefinder/pkg/models"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// ShopHandler handles the public shop directory endpoints
type ShopHandler struct {
	shopRepo         *repo.ShopRepository
	embeddingService *services.EmbeddingService
}

// NewShopHandler creates a new shop handler
func NewShopHandler(shopRepo *repo.ShopRepository, embeddingService *services.EmbeddingService) *ShopHandler {
	return &ShopHandler{
		shopRepo:         shopRepo,
		embeddingService: embeddingService,
	}
}

func parsePagination(c echo.Context) (limit, offset int) {
	limit = 20
	if l, err := strconv.Atoi(c.QueryParam("limit")); err == nil && l > 0 && l <= 100 {
		limit = l
	}
	page := 1
	if p, err := strconv.Atoi(c.QueryParam("page")); err == nil && p > 0 {
		page = p
	}
	return limit, (page - 1) * limit
}

// List godoc
// @Summary List shops
// @Description List active shops with optional filters
// @Tags shops
// @Produce json
// @Param city query string false "Filter by city"
// @Param province query string false "Filter by two-letter province code"
// @Param q query string false "Name or description search"
// @Param sort query string false "Sort order (name, rating, recent)"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} models.PaginationResult[models.Shop]
// @Failure 500 {object} map[string]string
// @Router /shops [get]
func (h *ShopHandler) List(c echo.Context) error {
	limit, offset := parsePagination(c)

	filter := repo.ShopListFilter{
		City:     c.QueryParam("city"),
		Province: c.QueryParam("province"),
		Query:    c.QueryParam("q"),
		Sort:     c.QueryParam("sort"),
	}

	result, err := h.shopRepo.List(limit, offset, filter)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to list shops"})
	}

	return c.JSON(http.StatusOK, result)
}

// GetByID godoc
// @Summary Get shop by ID
// @Description Get a single shop with its details
// @Tags shops
// @Produce json
// @Param id path string true "Shop ID"
// @Success 200 {object} models.Shop
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /shops/{id} [get]
func (h *ShopHandler) GetByID(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid shop id"})
	}

	shop, err := h.shopRepo.GetByID(id)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "shop not found"})
	}

	return c.JSON(http.StatusOK, shop)
}

// GetBySlug godoc
// @Summary Get shop by slug
// @Description Get a single shop by its URL slug
// @Tags shops
// @Produce json
// @Param slug path string true "Shop slug"
// @Success 200 {object} models.Shop
// @Failure 404 {object} map[string]string
// @Router /shops/slug/{slug} [get]
func (h *ShopHandler) GetBySlug(c echo.Context) error {
	shop, err := h.shopRepo.GetBySlug(c.Param("slug"))
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "shop not found"})
	}

	return c.JSON(http.StatusOK, shop)
}

// Provinces godoc
// @Summary List provinces
// @Description List provinces that have at least one active shop
// @Tags shops
// @Produce json
// @Success 200 {array} string
// @Failure 500 {object} map[string]string
// @Router /meta/provinces [get]
func (h *ShopHandler) Provinces(c echo.Context) error {
	provinces, err := h.shopRepo.Provinces()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to list provinces"})
	}

	return c.JSON(http.StatusOK, provinces)
}

// Cities godoc
// @Summary List cities
// @Description List cities that have at least one active shop
// @Tags shops
// @Produce json
// @Param province query string false "Filter by two-letter province code"
// @Success 200 {array} string
// @Failure 500 {object} map[string]string
// @Router /meta/cities [get]
func (h *ShopHandler) Cities(c echo.Context) error {
	cities, err := h.shopRepo.Cities(c.QueryParam("province"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to list cities"})
	}

	return c.JSON(http.StatusOK, cities)
}

// Search godoc
// @Summary Semantic shop search
// @Description Search shops by free text; uses the vector index when available and falls back to SQL search
// @Tags shops
// @Produce json
// @Param q query string true "Search query"
// @Param limit query int false "Max results"
// @Success 200 {array} models.Shop
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /search/semantic [get]
func (h *ShopHandler) Search(c echo.Context) error {
	query := c.QueryParam("q")
	if query == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "q is required"})
	}

	limit := 10
	if l, err := strconv.Atoi(c.QueryParam("limit")); err == nil && l > 0 && l <= 50 {
		limit = l
	}

	if h.embeddingService != nil {
		hits, err := h.embeddingService.SearchShops(query, uint64(limit))
		if err == nil {
			shops := make([]models.Shop, 0, len(hits))
			for _, hit := range hits {
				id, err := uuid.Parse(hit.ShopID)
				if err != nil {
					continue
				}
				shop, err := h.shopRepo.GetByID(id)
				if err != nil || !shop.IsActive {
					continue
				}
				shops = append(shops, *shop)
			}
			return c.JSON(http.StatusOK, shops)
		}
	}

	// Fallback to plain SQL search
	result, err := h.shopRepo.List(limit, 0, repo.ShopListFilter{Query: query})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "search failed"})
	}

	return c.JSON(http.StatusOK, result.Data)
}
