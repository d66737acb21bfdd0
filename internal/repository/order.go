package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ironkart/ironkart/internal/domain/order"
)

const (
	insertCustomerSQL = `INSERT INTO customers (id, name, phone, email, address)
		VALUES ($1, $2, $3, $4, $5)`

	insertOrderSQL = `INSERT INTO orders
		(id, order_number, customer_id, subtotal, shipping, tax, total_amount,
		 order_status, payment_status, payment_method, payment_id, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	insertOrderItemSQL = `INSERT INTO order_items
		(id, order_id, product_id, product_name, product_price, quantity, subtotal)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	orderColumns = `id, order_number, customer_id, subtotal, shipping, tax, total_amount,
		order_status, payment_status, payment_method, COALESCE(payment_id, ''),
		COALESCE(notes, ''), created_at, updated_at`

	listOrdersSQL = `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC`

	getOrderByIDSQL = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	listOrderItemsSQL = `SELECT id, order_id, product_id, product_name, product_price, quantity, subtotal
		FROM order_items WHERE order_id = $1 ORDER BY created_at, id`

	updateOrderStatusSQL = `UPDATE orders
		SET order_status = $2,
			payment_status = COALESCE(NULLIF($3, ''), payment_status),
			updated_at = now()
		WHERE id = $1`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// CreateCheckout persists the customer, order, and order items in a single
// transaction so a failure leaves no partial order records behind.
func (r *OrderRepository) CreateCheckout(ctx context.Context, c *order.Customer, o *order.Order) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning checkout tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, insertCustomerSQL,
		c.ID, c.Name, c.Phone, c.Email, c.Address,
	); err != nil {
		return fmt.Errorf("creating customer %q: %w", c.ID, err)
	}

	if _, err := tx.Exec(ctx, insertOrderSQL,
		o.ID, o.Number, o.CustomerID, o.Subtotal, o.Shipping, o.Tax, o.Total,
		o.Status, o.PaymentStatus, o.PaymentMethod, o.PaymentID, o.Notes,
	); err != nil {
		return fmt.Errorf("creating order %q: %w", o.ID, err)
	}

	for _, item := range o.Items {
		if _, err := tx.Exec(ctx, insertOrderItemSQL,
			item.ID, item.OrderID, item.ProductID, item.ProductName,
			item.ProductPrice, item.Quantity, item.Subtotal,
		); err != nil {
			return fmt.Errorf("creating order item %q: %w", item.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing checkout tx: %w", err)
	}
	return nil
}

// List returns all orders newest first, without items.
func (r *OrderRepository) List(ctx context.Context) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listOrdersSQL)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	return pgx.CollectRows(rows, scanOrder)
}

// GetByID returns a single order with its items.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, getOrderByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}

	itemRows, err := r.pool.Query(ctx, listOrderItemsSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting order items for %q: %w", id, err)
	}
	o.Items, err = pgx.CollectRows(itemRows, func(row pgx.CollectableRow) (order.Item, error) {
		var item order.Item
		err := row.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.ProductName,
			&item.ProductPrice, &item.Quantity, &item.Subtotal)
		return item, err
	})
	if err != nil {
		return nil, fmt.Errorf("getting order items for %q: %w", id, err)
	}
	return &o, nil
}

// UpdateStatus sets the order status. An empty paymentStatus keeps the stored
// payment status unchanged. Returns order.ErrNotFound when the order does not
// exist.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id, status, paymentStatus string) error {
	tag, err := r.pool.Exec(ctx, updateOrderStatusSQL, id, status, paymentStatus)
	if err != nil {
		return fmt.Errorf("updating status for order %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var o order.Order
	err := row.Scan(
		&o.ID, &o.Number, &o.CustomerID, &o.Subtotal, &o.Shipping, &o.Tax, &o.Total,
		&o.Status, &o.PaymentStatus, &o.PaymentMethod, &o.PaymentID,
		&o.Notes, &o.CreatedAt, &o.UpdatedAt,
	)
	return o, err
}
