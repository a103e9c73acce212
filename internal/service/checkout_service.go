package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/GTDGit/cbc_bookstore/internal/metrics"
	"github.com/GTDGit/cbc_bookstore/internal/models"
	"github.com/GTDGit/cbc_bookstore/internal/repository"
	"github.com/GTDGit/cbc_bookstore/internal/sse"
	"github.com/GTDGit/cbc_bookstore/internal/utils"
	"github.com/GTDGit/cbc_bookstore/pkg/mpesa"
)

var errPaymentInitiation = errors.New("payment initiation failed")

// Column widths of the orders table.
const (
	maxCustomerNameLen = 255
	maxPhoneDigits     = 20
)

// CheckoutItem is one cart line submitted at checkout.
type CheckoutItem struct {
	ProductID int             `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// CheckoutRequest is the checkout payload. Amount is optional; when present
// it must equal the total computed by the server.
type CheckoutRequest struct {
	CustomerName   string                `json:"customer_name"`
	Phone          string                `json:"phone"`
	Location       string                `json:"location"`
	DeliveryOption models.DeliveryOption `json:"delivery_option"`
	Amount         *decimal.Decimal      `json:"amount,omitempty"`
	Items          []CheckoutItem        `json:"items"`
}

// CheckoutResult is returned for a placed order.
type CheckoutResult struct {
	Success                bool                   `json:"success"`
	OrderID                int                    `json:"order_id"`
	TotalAmount            decimal.Decimal        `json:"total_amount"`
	Status                 models.OrderStatus     `json:"status"`
	PaymentAcknowledgement *mpesa.STKPushResponse `json:"payment_acknowledgement"`
}

// CheckoutService places orders and initiates their payment.
type CheckoutService struct {
	orderRepo   *repository.OrderRepository
	payments    mpesa.STKPusher
	notifier    sse.OrderNotifier
	deliveryFee decimal.Decimal
}

// NewCheckoutService constructs a CheckoutService. A nil notifier disables
// order events.
func NewCheckoutService(orderRepo *repository.OrderRepository, payments mpesa.STKPusher, notifier sse.OrderNotifier, deliveryFee decimal.Decimal) *CheckoutService {
	if notifier == nil {
		notifier = &sse.NopNotifier{}
	}
	return &CheckoutService{
		orderRepo:   orderRepo,
		payments:    payments,
		notifier:    notifier,
		deliveryFee: deliveryFee,
	}
}

// CalculateTotal returns Σ price×quantity over items plus fee when the
// option is delivery.
func CalculateTotal(items []CheckoutItem, option models.DeliveryOption, fee decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	if option == models.DeliveryDelivery {
		total = total.Add(fee)
	}
	return total
}

// mergeItems combines lines for the same product. Lines for one product with
// different prices are rejected.
func mergeItems(items []CheckoutItem) ([]CheckoutItem, error) {
	merged := make([]CheckoutItem, 0, len(items))
	index := make(map[int]int, len(items))
	for _, it := range items {
		if i, ok := index[it.ProductID]; ok {
			if !merged[i].Price.Equal(it.Price) {
				return nil, fmt.Errorf("%w: conflicting prices for product %d", utils.ErrValidation, it.ProductID)
			}
			merged[i].Quantity += it.Quantity
			continue
		}
		index[it.ProductID] = len(merged)
		merged = append(merged, it)
	}
	return merged, nil
}

func (s *CheckoutService) validate(req *CheckoutRequest) error {
	req.CustomerName = strings.TrimSpace(req.CustomerName)
	req.Location = strings.TrimSpace(req.Location)
	req.Phone = mpesa.NormalizePhone(req.Phone)

	if req.CustomerName == "" {
		return fmt.Errorf("%w: customer name is required", utils.ErrValidation)
	}
	if utf8.RuneCountInString(req.CustomerName) > maxCustomerNameLen {
		return fmt.Errorf("%w: customer name must be at most %d characters", utils.ErrValidation, maxCustomerNameLen)
	}
	if req.Phone == "" {
		return fmt.Errorf("%w: phone number is required", utils.ErrValidation)
	}
	if len(req.Phone) > maxPhoneDigits {
		return fmt.Errorf("%w: phone number must be at most %d digits", utils.ErrValidation, maxPhoneDigits)
	}
	if !req.DeliveryOption.Valid() {
		return fmt.Errorf("%w: delivery option must be pickup or delivery", utils.ErrValidation)
	}
	if req.DeliveryOption == models.DeliveryDelivery && req.Location == "" {
		return fmt.Errorf("%w: location is required for delivery", utils.ErrValidation)
	}
	if len(req.Items) == 0 {
		return fmt.Errorf("%w: cart is empty", utils.ErrValidation)
	}
	for i, it := range req.Items {
		switch {
		case it.ProductID <= 0:
			return fmt.Errorf("%w: item %d: invalid product id", utils.ErrValidation, i)
		case it.Quantity < 1:
			return fmt.Errorf("%w: item %d: quantity must be at least 1", utils.ErrValidation, i)
		case it.Price.IsNegative():
			return fmt.Errorf("%w: item %d: price must be >= 0", utils.ErrValidation, i)
		}
	}
	return nil
}

// PlaceOrder validates req, then inserts the order and all of its items and
// initiates payment inside one transaction. Any failure leaves no rows
// behind.
func (s *CheckoutService) PlaceOrder(ctx context.Context, req *CheckoutRequest) (*CheckoutResult, error) {
	if err := s.validate(req); err != nil {
		metrics.RecordCheckoutFailure("validation")
		return nil, err
	}

	items, err := mergeItems(req.Items)
	if err != nil {
		metrics.RecordCheckoutFailure("validation")
		return nil, err
	}

	total := CalculateTotal(items, req.DeliveryOption, s.deliveryFee)
	if req.Amount != nil && !req.Amount.Equal(total) {
		metrics.RecordCheckoutFailure("amount_mismatch")
		return nil, fmt.Errorf("%w: amount %s does not match order total %s",
			utils.ErrValidation, req.Amount.StringFixed(2), total.StringFixed(2))
	}
	if !total.IsPositive() {
		metrics.RecordCheckoutFailure("validation")
		return nil, fmt.Errorf("%w: order total must be positive", utils.ErrValidation)
	}

	order := &models.Order{
		CustomerName:   req.CustomerName,
		Phone:          req.Phone,
		Location:       req.Location,
		DeliveryOption: req.DeliveryOption,
		TotalAmount:    total,
		Status:         models.OrderPending,
	}

	var ack *mpesa.STKPushResponse
	err = s.orderRepo.RunInTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.orderRepo.CreateOrderTx(ctx, tx, order); err != nil {
			return err
		}
		for _, it := range items {
			line := &models.OrderItem{
				OrderID:   order.ID,
				ProductID: it.ProductID,
				Quantity:  it.Quantity,
				Price:     it.Price,
			}
			if err := s.orderRepo.CreateItemTx(ctx, tx, line); err != nil {
				return err
			}
		}

		resp, err := s.payments.STKPush(ctx, mpesa.STKPushRequest{
			PhoneNumber:      order.Phone,
			Amount:           total,
			AccountReference: "ORDER-" + strconv.Itoa(order.ID),
			TransactionDesc:  "CBC Bookstore order",
		})
		if err != nil {
			return fmt.Errorf("%w: %w", errPaymentInitiation, err)
		}
		if !resp.Accepted() {
			return fmt.Errorf("%w: %s", errPaymentInitiation, resp.ResponseDescription)
		}
		ack = resp

		ref := resp.CheckoutRequestID
		order.PaymentReference = &ref
		return s.orderRepo.SetPaymentReferenceTx(ctx, tx, order.ID, ref)
	})
	if err != nil {
		metrics.RecordCheckoutFailure(failureReason(err, ack))
		log.Error().Err(err).Str("phone", order.Phone).Int("items", len(items)).Msg("Checkout failed")
		if ack != nil && !errors.Is(err, utils.ErrValidation) {
			// The payment prompt already went out but nothing was persisted.
			return nil, fmt.Errorf("%w: %w", utils.ErrPartialOrder, err)
		}
		return nil, err
	}

	metrics.OrdersPlacedTotal.WithLabelValues(string(order.DeliveryOption)).Inc()
	metrics.OrderAmountObserved.Observe(total.InexactFloat64())
	log.Info().
		Int("order_id", order.ID).
		Str("total", total.StringFixed(2)).
		Str("delivery_option", string(order.DeliveryOption)).
		Str("payment_reference", ack.CheckoutRequestID).
		Msg("Order placed")

	s.notifier.NotifyOrderCreated(order, len(items))

	return &CheckoutResult{
		Success:                true,
		OrderID:                order.ID,
		TotalAmount:            total,
		Status:                 order.Status,
		PaymentAcknowledgement: ack,
	}, nil
}

func failureReason(err error, ack *mpesa.STKPushResponse) string {
	switch {
	case errors.Is(err, utils.ErrValidation):
		return "validation"
	case ack != nil:
		return "commit"
	case errors.Is(err, errPaymentInitiation):
		return "payment"
	default:
		return "persistence"
	}
}
