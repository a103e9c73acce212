package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DeliveryOption enumerates how an order reaches the customer.
type DeliveryOption string

const (
	DeliveryPickup   DeliveryOption = "pickup"
	DeliveryDelivery DeliveryOption = "delivery"
)

// Valid reports whether d is a known delivery option.
func (d DeliveryOption) Valid() bool {
	return d == DeliveryPickup || d == DeliveryDelivery
}

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

// OrderPending is the only status written today; payment confirmation
// callbacks are not handled.
const OrderPending OrderStatus = "pending"

// Order is a placed checkout. Items is populated by listing queries only.
type Order struct {
	ID               int             `db:"id" json:"id"`
	CustomerName     string          `db:"customer_name" json:"customer_name"`
	Phone            string          `db:"phone" json:"phone"`
	Location         string          `db:"location" json:"location"`
	DeliveryOption   DeliveryOption  `db:"delivery_option" json:"delivery_option"`
	TotalAmount      decimal.Decimal `db:"total_amount" json:"total_amount"`
	Status           OrderStatus     `db:"status" json:"status"`
	PaymentReference *string         `db:"payment_reference" json:"payment_reference,omitempty"`
	CreatedAt        time.Time       `db:"created_at" json:"created_at"`

	Items []OrderItem `db:"-" json:"items"`
}

// OrderItem is one product line of an order. Price is the unit price captured
// at checkout and is independent of later product price changes.
type OrderItem struct {
	ID        int             `db:"id" json:"id"`
	OrderID   int             `db:"order_id" json:"order_id"`
	ProductID int             `db:"product_id" json:"product_id"`
	Title     string          `db:"title" json:"title"`
	Quantity  int             `db:"quantity" json:"quantity"`
	Price     decimal.Decimal `db:"price" json:"price"`
}

// Subtotal returns price × quantity for the line.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
