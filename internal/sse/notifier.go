package sse

import (
	"time"

	"github.com/GTDGit/cbc_bookstore/internal/models"
)

// OrderNotifier is the interface services use to emit order events.
type OrderNotifier interface {
	NotifyOrderCreated(order *models.Order, itemCount int)
}

// HubNotifier implements OrderNotifier using the SSE Hub.
type HubNotifier struct {
	hub *Hub
}

// NewHubNotifier creates a notifier backed by the given Hub.
func NewHubNotifier(hub *Hub) *HubNotifier {
	return &HubNotifier{hub: hub}
}

func (n *HubNotifier) NotifyOrderCreated(order *models.Order, itemCount int) {
	if n.hub.ClientCount() == 0 {
		return
	}
	n.hub.Broadcast(&OrderEvent{
		Event:          EventOrderCreated,
		OrderID:        order.ID,
		CustomerName:   order.CustomerName,
		DeliveryOption: string(order.DeliveryOption),
		TotalAmount:    order.TotalAmount.StringFixed(2),
		ItemCount:      itemCount,
		Status:         string(order.Status),
		Timestamp:      time.Now(),
	})
}

// NopNotifier is a no-op implementation for when SSE is not needed.
type NopNotifier struct{}

func (n *NopNotifier) NotifyOrderCreated(order *models.Order, itemCount int) {}
