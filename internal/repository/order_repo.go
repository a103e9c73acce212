package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/GTDGit/cbc_bookstore/internal/database"
	"github.com/GTDGit/cbc_bookstore/internal/metrics"
	"github.com/GTDGit/cbc_bookstore/internal/models"
	"github.com/GTDGit/cbc_bookstore/internal/utils"
)

// OrderRepository handles data access for orders and their line items.
type OrderRepository struct {
	db *sqlx.DB
}

// NewOrderRepository creates a new OrderRepository.
func NewOrderRepository(db *sqlx.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// RunInTx executes fn inside one transaction; see database.WithTx.
func (r *OrderRepository) RunInTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	return database.WithTx(ctx, r.db, fn)
}

// CreateOrderTx inserts the order header and fills in its id, status and
// creation time.
func (r *OrderRepository) CreateOrderTx(ctx context.Context, tx *sqlx.Tx, order *models.Order) error {
	defer metrics.TrackDBOperation("order_create")(time.Now())

	const q = `
        INSERT INTO orders (customer_name, phone, location, delivery_option, total_amount, status)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at`

	if order.Status == "" {
		order.Status = models.OrderPending
	}
	err := tx.QueryRowxContext(ctx, q,
		order.CustomerName,
		order.Phone,
		order.Location,
		order.DeliveryOption,
		order.TotalAmount,
		order.Status,
	).Scan(&order.ID, &order.CreatedAt)
	if err != nil {
		return translateWriteError("create order", err)
	}
	return nil
}

// CreateItemTx inserts one order line referencing item.OrderID.
func (r *OrderRepository) CreateItemTx(ctx context.Context, tx *sqlx.Tx, item *models.OrderItem) error {
	defer metrics.TrackDBOperation("order_item_create")(time.Now())

	const q = `
        INSERT INTO order_items (order_id, product_id, quantity, price)
        VALUES ($1, $2, $3, $4)
        RETURNING id`

	if err := tx.QueryRowxContext(ctx, q, item.OrderID, item.ProductID, item.Quantity, item.Price).Scan(&item.ID); err != nil {
		return translateWriteError("create order item", err)
	}
	return nil
}

// SetPaymentReferenceTx records the payment request id of an order.
func (r *OrderRepository) SetPaymentReferenceTx(ctx context.Context, tx *sqlx.Tx, orderID int, reference string) error {
	const q = `UPDATE orders SET payment_reference = $2 WHERE id = $1`
	if _, err := tx.ExecContext(ctx, q, orderID, reference); err != nil {
		return fmt.Errorf("%w: set payment reference: %w", utils.ErrQueryFailure, err)
	}
	return nil
}

// ListWithItems returns all orders newest first, each with its line items.
// Items are fetched in a second query and grouped by order id in memory.
func (r *OrderRepository) ListWithItems(ctx context.Context) ([]models.Order, error) {
	defer metrics.TrackDBOperation("order_list")(time.Now())

	const ordersQuery = `
        SELECT id, customer_name, phone, location, delivery_option, total_amount,
               status, payment_reference, created_at
        FROM orders
        ORDER BY created_at DESC, id DESC`

	orders := []models.Order{}
	if err := r.db.SelectContext(ctx, &orders, ordersQuery); err != nil {
		return nil, fmt.Errorf("%w: list orders: %w", utils.ErrQueryFailure, err)
	}
	if len(orders) == 0 {
		return orders, nil
	}

	ids := make([]int64, len(orders))
	for i := range orders {
		ids[i] = int64(orders[i].ID)
	}

	const itemsQuery = `
        SELECT oi.id, oi.order_id, oi.product_id, COALESCE(p.title, '') AS title,
               oi.quantity, oi.price
        FROM order_items oi
        LEFT JOIN products p ON p.id = oi.product_id
        WHERE oi.order_id = ANY($1)
        ORDER BY oi.order_id, oi.id`

	var items []models.OrderItem
	if err := r.db.SelectContext(ctx, &items, itemsQuery, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("%w: list order items: %w", utils.ErrQueryFailure, err)
	}

	byOrder := make(map[int][]models.OrderItem, len(orders))
	for _, it := range items {
		byOrder[it.OrderID] = append(byOrder[it.OrderID], it)
	}
	for i := range orders {
		if lines, ok := byOrder[orders[i].ID]; ok {
			orders[i].Items = lines
		} else {
			orders[i].Items = []models.OrderItem{}
		}
	}
	return orders, nil
}
