package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"storefront/internal/domain"

	"github.com/lib/pq"
)

var (
	ErrProductNotFound = errors.New("product not found")
)

// ProductRepository defines the interface for product data access. Every
// implementation returns products in insertion order.
type ProductRepository interface {
	List(ctx context.Context) ([]*domain.Product, error)
	FindByID(ctx context.Context, id string) (*domain.Product, error)
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id string) error
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a ProductRepository backed by the products table
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

// sizes and colors travel as array literals so the driver only ever sees text
const productColumns = `id, name, description, price, category_id, image_url, sizes::text, colors::text, featured, created_at`

// List retrieves every product; filtering happens client side
func (r *productRepository) List(ctx context.Context) ([]*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY seq ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// FindByID retrieves a product by ID using parameterized queries
func (r *productRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	return product, nil
}

// Create inserts a new product into the database using parameterized queries
func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO products (id, name, description, price, category_id, image_url, sizes, colors, featured, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7::text::text[], $8::text::text[], $9, $10)
	`

	sizes, colors, err := encodeLabels(product)
	if err != nil {
		return fmt.Errorf("failed to encode product labels: %w", err)
	}

	_, err = r.db.ExecContext(
		ctx,
		query,
		product.ID,
		product.Name,
		product.Description,
		product.Price,
		product.CategoryID,
		product.ImageURL,
		sizes,
		colors,
		product.Featured,
		product.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// Update rewrites the mutable fields of a product. id and created_at are
// never part of the SET clause.
func (r *productRepository) Update(ctx context.Context, product *domain.Product) error {
	query := `
		UPDATE products
		SET name = $2, description = $3, price = $4, category_id = $5,
		    image_url = $6, sizes = $7::text::text[], colors = $8::text::text[], featured = $9
		WHERE id = $1
	`

	sizes, colors, err := encodeLabels(product)
	if err != nil {
		return fmt.Errorf("failed to encode product labels: %w", err)
	}

	result, err := r.db.ExecContext(
		ctx,
		query,
		product.ID,
		product.Name,
		product.Description,
		product.Price,
		product.CategoryID,
		product.ImageURL,
		sizes,
		colors,
		product.Featured,
	)

	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// Delete removes a product from the database using parameterized queries
func (r *productRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM products WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

func encodeLabels(product *domain.Product) (string, string, error) {
	sizes, err := encodeTextArray(product.Sizes)
	if err != nil {
		return "", "", err
	}
	colors, err := encodeTextArray(product.Colors)
	if err != nil {
		return "", "", err
	}
	return sizes, colors, nil
}

// encodeTextArray renders labels as a Postgres array literal
func encodeTextArray(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	v, err := pq.StringArray(values).Value()
	if err != nil {
		return "", err
	}
	literal, _ := v.(string)
	return literal, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	var sizes, colors pq.StringArray
	product := &domain.Product{}
	err := row.Scan(
		&product.ID,
		&product.Name,
		&product.Description,
		&product.Price,
		&product.CategoryID,
		&product.ImageURL,
		&sizes,
		&colors,
		&product.Featured,
		&product.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	product.Sizes = []string(sizes)
	product.Colors = []string(colors)
	if product.Sizes == nil {
		product.Sizes = []string{}
	}
	if product.Colors == nil {
		product.Colors = []string{}
	}
	product.CreatedAt = product.CreatedAt.UTC()
	return product, nil
}
