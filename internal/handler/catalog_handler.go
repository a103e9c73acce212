package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/cbc_bookstore/internal/service"
	"github.com/GTDGit/cbc_bookstore/internal/utils"
)

// CatalogHandler handles the public catalog endpoints.
type CatalogHandler struct {
	catalogService *service.CatalogService
}

// NewCatalogHandler constructs a CatalogHandler.
func NewCatalogHandler(catalogService *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// GetGrades handles GET /api/grades
func (h *CatalogHandler) GetGrades(c *gin.Context) {
	grades, err := h.catalogService.GetGrades(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Grades retrieved", grades)
}

// GetSubjects handles GET /api/subjects
func (h *CatalogHandler) GetSubjects(c *gin.Context) {
	subjects, err := h.catalogService.GetSubjects(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Subjects retrieved", subjects)
}

// GetCategories handles GET /api/categories
func (h *CatalogHandler) GetCategories(c *gin.Context) {
	categories, err := h.catalogService.GetCategories(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Categories retrieved", categories)
}

// GetProducts handles GET /api/products
// Query: grade_ids, subject_ids, category_ids (comma-separated), min_price,
// max_price, search, sort (price_low|price_high), page, limit.
func (h *CatalogHandler) GetProducts(c *gin.Context) {
	filter := service.ParseProductFilter(c.Request.URL.Query())

	result, err := h.catalogService.ListProducts(c.Request.Context(), filter)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.SuccessWithPagination(c, http.StatusOK, "Products retrieved successfully",
		result.Products, result.Page, result.Limit, result.TotalItems)
}

// GetProduct handles GET /api/products/:id
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		utils.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID")
		return
	}

	product, err := h.catalogService.GetProduct(c.Request.Context(), id)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Product retrieved", product)
}
