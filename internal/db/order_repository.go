package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ecomm-labs/ecommerce-backend/internal/models"
)

var ErrOrderNotFound = errors.New("Order not found")

type OrderRepository struct {
	db *sql.DB
}

func NewOrderRepository(database *PostgresDB) *OrderRepository {
	return &OrderRepository{db: database.Conn}
}

const orderColumns = "pk, sk, created_at, payment, total_price, shipping_type, carrier, products"

func scanOrder(row interface{ Scan(...any) error }) (*models.Order, error) {
	var o models.Order
	var productsJSON []byte
	err := row.Scan(&o.PK, &o.SK, &o.CreatedAt,
		&o.Billing.Payment, &o.Billing.TotalPrice,
		&o.Shipping.Type, &o.Shipping.Carrier, &productsJSON)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(productsJSON, &o.Products); err != nil {
		return nil, fmt.Errorf("failed to decode order products: %w", err)
	}
	return &o, nil
}

// Create inserts a new order row keyed (email, order id).
func (r *OrderRepository) Create(ctx context.Context, order *models.Order) error {
	productsJSON, err := json.Marshal(order.Products)
	if err != nil {
		return fmt.Errorf("failed to encode order products: %w", err)
	}

	query := `
		INSERT INTO orders (pk, sk, created_at, payment, total_price, shipping_type, carrier, products)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = r.db.ExecContext(ctx, query,
		order.PK, order.SK, order.CreatedAt,
		order.Billing.Payment, order.Billing.TotalPrice,
		order.Shipping.Type, order.Shipping.Carrier, productsJSON)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	return nil
}

// GetAll scans the whole table up to limit.
func (r *OrderRepository) GetAll(ctx context.Context, limit int) ([]models.Order, error) {
	query := fmt.Sprintf("SELECT %s FROM orders ORDER BY pk, sk LIMIT $1", orderColumns)
	return r.queryOrders(ctx, query, limit)
}

// GetByEmail returns every order in one customer's partition.
func (r *OrderRepository) GetByEmail(ctx context.Context, email string) ([]models.Order, error) {
	query := fmt.Sprintf("SELECT %s FROM orders WHERE pk = $1 ORDER BY sk", orderColumns)
	return r.queryOrders(ctx, query, email)
}

func (r *OrderRepository) queryOrders(ctx context.Context, query string, args ...any) ([]models.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, *o)
	}

	return orders, rows.Err()
}

// GetOne looks up a single order by its full key.
func (r *OrderRepository) GetOne(ctx context.Context, email, orderID string) (*models.Order, error) {
	query := fmt.Sprintf("SELECT %s FROM orders WHERE pk = $1 AND sk = $2", orderColumns)

	o, err := scanOrder(r.db.QueryRowContext(ctx, query, email, orderID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	return o, nil
}

// Delete removes an order and returns the just-removed record.
func (r *OrderRepository) Delete(ctx context.Context, email, orderID string) (*models.Order, error) {
	query := fmt.Sprintf("DELETE FROM orders WHERE pk = $1 AND sk = $2 RETURNING %s", orderColumns)

	o, err := scanOrder(r.db.QueryRowContext(ctx, query, email, orderID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to delete order: %w", err)
	}

	return o, nil
}
