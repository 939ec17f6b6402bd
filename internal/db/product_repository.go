package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/ecomm-labs/ecommerce-backend/internal/models"
)

// ErrProductNotFound is returned when a conditional write finds no row.
// The message doubles as the HTTP error body.
var ErrProductNotFound = errors.New("Product not found")

type ProductRepository struct {
	db *sql.DB
}

func NewProductRepository(database *PostgresDB) *ProductRepository {
	return &ProductRepository{db: database.Conn}
}

const productColumns = "id, product_name, code, price, model, product_url"

func scanProduct(row interface{ Scan(...any) error }) (*models.Product, error) {
	var p models.Product
	err := row.Scan(&p.ID, &p.ProductName, &p.Code, &p.Price, &p.Model, &p.ProductURL)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetAll returns products up to limit.
func (r *ProductRepository) GetAll(ctx context.Context, limit int) ([]models.Product, error) {
	query := fmt.Sprintf("SELECT %s FROM products ORDER BY id LIMIT $1", productColumns)

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *p)
	}

	return products, rows.Err()
}

// GetByID returns a single product, or (nil, nil) when absent.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	query := fmt.Sprintf("SELECT %s FROM products WHERE id = $1", productColumns)

	p, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return p, nil
}

// GetByIDs resolves many ids in a single batched query. Missing ids are
// simply absent from the result; callers compare lengths.
func (r *ProductRepository) GetByIDs(ctx context.Context, ids []string) ([]models.Product, error) {
	query := fmt.Sprintf("SELECT %s FROM products WHERE id = ANY($1)", productColumns)

	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to batch get products: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *p)
	}

	return products, rows.Err()
}

// Create inserts a new product under a fresh id.
func (r *ProductRepository) Create(ctx context.Context, input models.ProductInput) (*models.Product, error) {
	query := fmt.Sprintf(`
		INSERT INTO products (id, product_name, code, price, model, product_url)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING %s
	`, productColumns)

	p, err := scanProduct(r.db.QueryRowContext(ctx, query,
		uuid.NewString(), input.ProductName, input.Code, input.Price, input.Model, input.ProductURL))
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return p, nil
}

// Update overwrites every mutable field. The WHERE clause is the
// conditional-write guard: no row means ErrProductNotFound.
func (r *ProductRepository) Update(ctx context.Context, id string, input models.ProductInput) (*models.Product, error) {
	query := fmt.Sprintf(`
		UPDATE products
		SET product_name = $2, code = $3, price = $4, model = $5, product_url = $6
		WHERE id = $1
		RETURNING %s
	`, productColumns)

	p, err := scanProduct(r.db.QueryRowContext(ctx, query,
		id, input.ProductName, input.Code, input.Price, input.Model, input.ProductURL))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	return p, nil
}

// Delete removes a product and returns the just-removed record.
func (r *ProductRepository) Delete(ctx context.Context, id string) (*models.Product, error) {
	query := fmt.Sprintf("DELETE FROM products WHERE id = $1 RETURNING %s", productColumns)

	p, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to delete product: %w", err)
	}

	return p, nil
}
