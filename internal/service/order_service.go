package service

import (
	"context"

	"github.com/GTDGit/cbc_bookstore/internal/models"
	"github.com/GTDGit/cbc_bookstore/internal/repository"
)

// OrderService serves the admin order listing.
type OrderService struct {
	orderRepo *repository.OrderRepository
}

// NewOrderService constructs an OrderService.
func NewOrderService(orderRepo *repository.OrderRepository) *OrderService {
	return &OrderService{orderRepo: orderRepo}
}

// ListOrders returns all orders newest first with their line items.
func (s *OrderService) ListOrders(ctx context.Context) ([]models.Order, error) {
	return s.orderRepo.ListWithItems(ctx)
}
