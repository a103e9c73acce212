package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/cbc_bookstore/internal/service"
	"github.com/GTDGit/cbc_bookstore/internal/utils"
)

// CheckoutHandler handles order placement.
type CheckoutHandler struct {
	checkoutService *service.CheckoutService
}

// NewCheckoutHandler constructs a CheckoutHandler.
func NewCheckoutHandler(checkoutService *service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{checkoutService: checkoutService}
}

// Checkout handles POST /api/checkout and POST /api/checkout/mpesa
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	var req service.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	result, err := h.checkoutService.PlaceOrder(c.Request.Context(), &req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.Success(c, http.StatusOK, "Payment request sent. Check your phone.", result)
}
