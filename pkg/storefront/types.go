package storefront

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Delivery options accepted at checkout.
const (
	DeliveryPickup   = "pickup"
	DeliveryDelivery = "delivery"
)

// Lookup is a grade, subject or category.
type Lookup struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Product is a catalog entry as served by the API.
type Product struct {
	ID           int             `json:"id"`
	Title        string          `json:"title"`
	GradeID      *int            `json:"grade_id"`
	SubjectID    *int            `json:"subject_id"`
	CategoryID   *int            `json:"category_id"`
	Price        decimal.Decimal `json:"price"`
	Image        string          `json:"image"`
	Publisher    string          `json:"publisher"`
	ISBN         string          `json:"isbn"`
	Description  string          `json:"description"`
	Stock        int             `json:"stock"`
	GradeName    string          `json:"grade_name"`
	SubjectName  string          `json:"subject_name"`
	CategoryName string          `json:"category_name"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Pagination is the listing metadata returned with a product page.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalItems int `json:"totalItems"`
	TotalPages int `json:"totalPages"`
}

// ProductPage is one page of a catalog listing.
type ProductPage struct {
	Products   []Product
	Pagination Pagination
}

// CheckoutDetails are the customer fields collected at checkout.
type CheckoutDetails struct {
	CustomerName   string
	Phone          string
	Location       string
	DeliveryOption string
}

// PaymentAcknowledgement is the STK push acknowledgement of a placed order.
type PaymentAcknowledgement struct {
	MerchantRequestID   string `json:"MerchantRequestID"`
	CheckoutRequestID   string `json:"CheckoutRequestID"`
	ResponseCode        string `json:"ResponseCode"`
	ResponseDescription string `json:"ResponseDescription"`
	CustomerMessage     string `json:"CustomerMessage"`
}

// CheckoutResult is the outcome of a successful checkout.
type CheckoutResult struct {
	Success                bool                    `json:"success"`
	OrderID                int                     `json:"order_id"`
	TotalAmount            decimal.Decimal         `json:"total_amount"`
	Status                 string                  `json:"status"`
	PaymentAcknowledgement *PaymentAcknowledgement `json:"payment_acknowledgement"`
}

// APIError is a non-success response from the API.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("storefront api: %d %s: %s", e.StatusCode, e.Code, e.Message)
}

type checkoutItem struct {
	ProductID int             `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

type checkoutRequest struct {
	CustomerName   string          `json:"customer_name"`
	Phone          string          `json:"phone"`
	Location       string          `json:"location"`
	DeliveryOption string          `json:"delivery_option"`
	Amount         decimal.Decimal `json:"amount"`
	Items          []checkoutItem  `json:"items"`
}
