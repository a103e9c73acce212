package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/cbc_bookstore/internal/service"
	"github.com/GTDGit/cbc_bookstore/internal/utils"
)

// AdminProductHandler handles secret-gated product writes. Routes must be
// wrapped by the admin middleware.
type AdminProductHandler struct {
	adminService *service.ProductAdminService
}

// NewAdminProductHandler constructs an AdminProductHandler.
func NewAdminProductHandler(adminService *service.ProductAdminService) *AdminProductHandler {
	return &AdminProductHandler{adminService: adminService}
}

// UpsertProduct handles POST /api/admin/products
func (h *AdminProductHandler) UpsertProduct(c *gin.Context) {
	var req service.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	product, created, err := h.adminService.Upsert(c.Request.Context(), &req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	if created {
		utils.Success(c, http.StatusCreated, "Product created successfully", product)
		return
	}
	utils.Success(c, http.StatusOK, "Product updated successfully", product)
}

// UpdateProduct handles PUT /api/products/:id
func (h *AdminProductHandler) UpdateProduct(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		utils.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID")
		return
	}

	var req service.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	product, err := h.adminService.Update(c.Request.Context(), id, &req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Product updated successfully", product)
}
